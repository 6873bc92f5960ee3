// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

import (
	"fmt"

	"github.com/protocore/protocore/encoding/wire"
)

// Value is a union over the Go types that represent protobuf values:
//
//	+------------+-------------------------------------+
//	| Go type    | Protobuf kind                       |
//	+------------+-------------------------------------+
//	| bool       | BoolKind                            |
//	| int32      | Int32Kind, Sint32Kind, Sfixed32Kind |
//	| int64      | Int64Kind, Sint64Kind, Sfixed64Kind |
//	| uint32     | Uint32Kind, Fixed32Kind             |
//	| uint64     | Uint64Kind, Fixed64Kind             |
//	| float32    | FloatKind                           |
//	| float64    | DoubleKind                          |
//	| string     | StringKind                          |
//	| []byte     | BytesKind                           |
//	| EnumNumber | EnumKind                            |
//	+------------+-------------------------------------+
//
// Composite values (messages, lists and maps) are carried as opaque
// interface values by the packages that define them.
//
// The zero Value is invalid.
type Value struct {
	v interface{}
}

// ValueOf returns a Value initialized with v.
// It panics for nil.
func ValueOf(v interface{}) Value {
	if v == nil {
		panic("invalid nil value")
	}
	return Value{v}
}

func ValueOfBool(v bool) Value       { return Value{v} }
func ValueOfInt32(v int32) Value     { return Value{v} }
func ValueOfInt64(v int64) Value     { return Value{v} }
func ValueOfUint32(v uint32) Value   { return Value{v} }
func ValueOfUint64(v uint64) Value   { return Value{v} }
func ValueOfFloat32(v float32) Value { return Value{v} }
func ValueOfFloat64(v float64) Value { return Value{v} }
func ValueOfString(v string) Value   { return Value{v} }
func ValueOfBytes(v []byte) Value    { return Value{v} }
func ValueOfEnum(v EnumNumber) Value { return Value{v} }

// IsValid reports whether v is populated.
func (v Value) IsValid() bool { return v.v != nil }

// Interface returns v as an interface{}.
func (v Value) Interface() interface{} { return v.v }

func (v Value) panicMessage(want string) string {
	return fmt.Sprintf("type mismatch: cannot convert %T to %s", v.v, want)
}

// Bool returns v as a bool and panics if the type is not a bool.
func (v Value) Bool() bool {
	if x, ok := v.v.(bool); ok {
		return x
	}
	panic(v.panicMessage("bool"))
}

// Int returns v as an int64 and panics if the type is not an int32 or int64.
func (v Value) Int() int64 {
	switch x := v.v.(type) {
	case int32:
		return int64(x)
	case int64:
		return x
	}
	panic(v.panicMessage("int"))
}

// Uint returns v as a uint64 and panics if the type is not a uint32 or uint64.
func (v Value) Uint() uint64 {
	switch x := v.v.(type) {
	case uint32:
		return uint64(x)
	case uint64:
		return x
	}
	panic(v.panicMessage("uint"))
}

// Float returns v as a float64 and panics if the type is not a float32 or float64.
func (v Value) Float() float64 {
	switch x := v.v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	panic(v.panicMessage("float"))
}

// String returns v as a string. Since this method implements fmt.Stringer,
// this returns the formatted value for any non-string type.
func (v Value) String() string {
	if x, ok := v.v.(string); ok {
		return x
	}
	return fmt.Sprint(v.v)
}

// Bytes returns v as a []byte and panics if the type is not a []byte.
func (v Value) Bytes() []byte {
	if x, ok := v.v.([]byte); ok {
		return x
	}
	panic(v.panicMessage("bytes"))
}

// Enum returns v as an EnumNumber and panics if the type is not an EnumNumber.
func (v Value) Enum() EnumNumber {
	if x, ok := v.v.(EnumNumber); ok {
		return x
	}
	panic(v.panicMessage("enum"))
}

// MapKey returns v as a MapKey and panics for invalid MapKey types.
func (v Value) MapKey() MapKey {
	switch v.v.(type) {
	case bool, int32, int64, uint32, uint64, string:
		return MapKey(v)
	}
	panic(v.panicMessage("map key"))
}

// MapKey is used to index maps, where the Go type of the MapKey must match
// the specified key Kind (see MessageDescriptor.IsMapEntry).
// The following shows what Go type is used to represent each proto Kind:
//
//	+---------+-------------------------------------+
//	| Go type | Protobuf kind                       |
//	+=========+=====================================+
//	| bool    | BoolKind                            |
//	| int32   | Int32Kind, Sint32Kind, Sfixed32Kind |
//	| int64   | Int64Kind, Sint64Kind, Sfixed64Kind |
//	| uint32  | Uint32Kind, Fixed32Kind             |
//	| uint64  | Uint64Kind, Fixed64Kind             |
//	| string  | StringKind                          |
//	+---------+-------------------------------------+
//
// A MapKey is constructed and accessed through a Value:
//
//	k := ValueOf("hash").MapKey() // convert string to MapKey
//	s := k.String()               // convert MapKey to string
//
// The MapKey is a strict subset of valid types used in Value;
// converting a Value to a MapKey with an invalid type panics.
type MapKey Value

func (k MapKey) IsValid() bool          { return Value(k).IsValid() }
func (k MapKey) Interface() interface{} { return Value(k).Interface() }
func (k MapKey) Bool() bool             { return Value(k).Bool() }
func (k MapKey) Int() int64             { return Value(k).Int() }
func (k MapKey) Uint() uint64           { return Value(k).Uint() }
func (k MapKey) String() string         { return Value(k).String() }
func (k MapKey) Value() Value           { return Value(k) }

// RawFields is the raw bytes for an ordered sequence of fields.
// Each field contains both the tag (representing field number and wire type),
// and also the wire data itself.
//
// Once stored, the content of a RawFields must be treated as immutable.
// The capacity of RawFields may be treated as mutable only for the use-case of
// appending additional data to store back into unknown fields.
type RawFields []byte

// IsValid reports whether RawFields is syntactically correct wire format.
func (b RawFields) IsValid() bool {
	for len(b) > 0 {
		_, _, n := wire.ConsumeField(b)
		if n < 0 {
			return false
		}
		b = b[n:]
	}
	return true
}
