// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import (
	"math"
	"unicode/utf8"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/reflect/protodesc"
	pref "github.com/protocore/protocore/reflect/protoreflect"
)

// ExtensionResolver finds the extensions of a message while decoding.
// *protoregistry.Files implements it.
type ExtensionResolver interface {
	FindExtensionByNumber(message pref.FullName, num pref.FieldNumber) (*protodesc.Field, error)
}

// UnmarshalOptions configures the unmarshaler.
type UnmarshalOptions struct {
	// AllowPartial accepts messages with missing required fields.
	AllowPartial bool

	// DiscardUnknown drops unknown fields instead of keeping them in the
	// message.
	DiscardUnknown bool

	// Resolver looks up extensions. Without it every extension field is
	// treated as unknown.
	Resolver ExtensionResolver

	// RecursionLimit bounds the nesting of messages and groups.
	// Zero means wire.DefaultRecursionLimit.
	RecursionLimit int
}

const (
	messageSetItemNumber    wire.Number = 1
	messageSetTypeIDNumber  wire.Number = 2
	messageSetMessageNumber wire.Number = 3
)

// errUnknown signals that a field must be kept as an unknown field.
var errUnknown = errors.New("BUG: internal error (unknown)")

// Unmarshal parses the wire-format message in b and merges it into m.
func Unmarshal(b []byte, m *Message) error {
	return UnmarshalOptions{}.Unmarshal(b, m)
}

// Unmarshal parses the wire-format message in b and merges it into m.
//
// Repeated scalar fields are accepted in both the packed and the expanded
// encoding. Values of closed enums that the enum does not declare are kept
// as unknown fields.
func (o UnmarshalOptions) Unmarshal(b []byte, m *Message) error {
	depth := o.RecursionLimit
	if depth == 0 {
		depth = wire.DefaultRecursionLimit
	}
	if err := o.unmarshalMessage(b, m, depth); err != nil {
		return err
	}
	if o.AllowPartial {
		return nil
	}
	return m.CheckInitialized()
}

func (o UnmarshalOptions) unmarshalMessage(b []byte, m *Message, depth int) error {
	if depth < 0 {
		return errors.New("exceeded maximum recursion depth")
	}
	m.invalidate()
	md := m.desc
	for len(b) > 0 {
		num, typ, tagLen := wire.ConsumeTag(b)
		if tagLen < 0 {
			return wire.ParseError(tagLen)
		}

		var n int
		err := errUnknown
		switch {
		case md.IsMessageSet() && num == messageSetItemNumber && typ == wire.StartGroupType:
			n, err = o.unmarshalMessageSetItem(b[tagLen:], m, depth)
		default:
			fd := md.Fields().ByNumber(num)
			if fd == nil && md.IsExtensionNumber(num) && o.Resolver != nil {
				fd, _ = o.Resolver.FindExtensionByNumber(md.FullName(), num)
			}
			if fd != nil {
				n, err = o.unmarshalField(b[tagLen:], num, typ, m, fd, depth)
			}
		}
		switch {
		case err == errUnknown:
			n = wire.ConsumeFieldValue(num, typ, b[tagLen:])
			if n < 0 {
				return wire.ParseError(n)
			}
			if !o.DiscardUnknown {
				m.unknown = append(m.unknown, b[:tagLen+n]...)
			}
		case err != nil:
			return err
		}
		b = b[tagLen+n:]
	}
	return nil
}

func (o UnmarshalOptions) unmarshalField(b []byte, num wire.Number, typ wire.Type, m *Message, fd *protodesc.Field, depth int) (int, error) {
	kind := fd.Kind()
	switch {
	case fd.IsMap():
		if typ != wire.BytesType {
			return 0, errUnknown
		}
		v, n := wire.ConsumeBytes(b)
		if n < 0 {
			return 0, wire.ParseError(n)
		}
		if err := o.unmarshalMapEntry(v, fd, m.Mutable(fd).Interface().(*Map), depth); err != nil {
			return 0, err
		}
		return n, nil
	case fd.IsList():
		list := m.Mutable(fd).Interface().(*List)
		if typ == wire.BytesType && kind.IsPackable() {
			v, n := wire.ConsumeBytes(b)
			if n < 0 {
				return 0, wire.ParseError(n)
			}
			for len(v) > 0 {
				val, k := consumeScalar(kind, v)
				if k < 0 {
					return 0, wire.ParseError(k)
				}
				v = v[k:]
				if isUnknownEnum(fd, val) {
					if !o.DiscardUnknown {
						m.unknown = wire.AppendTag(m.unknown, num, wire.VarintType)
						m.unknown = wire.AppendVarint(m.unknown, uint64(int64(val.Enum())))
					}
					continue
				}
				list.Append(val)
			}
			return n, nil
		}
		if typ != wireType(fd) {
			return 0, errUnknown
		}
		if fd.Message() != nil {
			msg := New(fd.Message())
			n, err := o.consumeMessage(b, num, typ, msg, depth)
			if err != nil {
				return 0, err
			}
			list.Append(pref.ValueOf(msg))
			return n, nil
		}
		val, n, err := consumeValue(fd, b)
		if err != nil {
			return 0, err
		}
		list.Append(val)
		return n, nil
	}

	if typ != wireType(fd) {
		return 0, errUnknown
	}
	if fd.Message() != nil {
		msg := m.Mutable(fd).Interface().(*Message)
		return o.consumeMessage(b, num, typ, msg, depth)
	}
	val, n, err := consumeValue(fd, b)
	if err != nil {
		return 0, err
	}
	m.Set(fd, val)
	return n, nil
}

// consumeMessage merges the message or group in b into msg.
func (o UnmarshalOptions) consumeMessage(b []byte, num wire.Number, typ wire.Type, msg *Message, depth int) (int, error) {
	var v []byte
	var n int
	if typ == wire.StartGroupType {
		v, n = wire.ConsumeGroup(num, b)
	} else {
		v, n = wire.ConsumeBytes(b)
	}
	if n < 0 {
		return 0, wire.ParseError(n)
	}
	if err := o.unmarshalMessage(v, msg, depth-1); err != nil {
		return 0, err
	}
	return n, nil
}

// unmarshalMapEntry decodes one map entry into mp. Missing keys and values
// take their defaults. An entry whose value is an undeclared number of a
// closed enum is kept whole as an unknown field.
func (o UnmarshalOptions) unmarshalMapEntry(b []byte, fd *protodesc.Field, mp *Map, depth int) error {
	kfd, vfd := fd.MapKey(), fd.MapValue()
	key := kfd.Default()
	var val pref.Value
	if vfd.Message() != nil {
		val = pref.ValueOf(New(vfd.Message()))
	} else {
		val = vfd.Default()
	}
	for len(b) > 0 {
		num, typ, n := wire.ConsumeTag(b)
		if n < 0 {
			return wire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch {
		case num == 1 && typ == wireType(kfd):
			key, n, err = consumeValue(kfd, b)
		case num == 2 && typ == wireType(vfd) && vfd.Message() != nil:
			n, err = o.consumeMessage(b, num, typ, val.Interface().(*Message), depth)
		case num == 2 && typ == wireType(vfd):
			val, n, err = consumeValue(vfd, b)
		default:
			n = wire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				err = wire.ParseError(n)
			}
		}
		if err != nil {
			return err
		}
		b = b[n:]
	}
	mp.Set(key.MapKey(), val)
	return nil
}

// unmarshalMessageSetItem decodes one item group of a MessageSet. Items
// whose type_id does not resolve to a known extension stay unknown.
func (o UnmarshalOptions) unmarshalMessageSetItem(b []byte, m *Message, depth int) (int, error) {
	v, n := wire.ConsumeGroup(messageSetItemNumber, b)
	if n < 0 {
		return 0, wire.ParseError(n)
	}
	var typeID wire.Number
	var payload []byte
	for len(v) > 0 {
		num, typ, k := wire.ConsumeTag(v)
		if k < 0 {
			return 0, wire.ParseError(k)
		}
		v = v[k:]
		switch {
		case num == messageSetTypeIDNumber && typ == wire.VarintType:
			x, k := wire.ConsumeVarint(v)
			if k < 0 {
				return 0, wire.ParseError(k)
			}
			typeID = wire.Number(x)
			v = v[k:]
		case num == messageSetMessageNumber && typ == wire.BytesType:
			x, k := wire.ConsumeBytes(v)
			if k < 0 {
				return 0, wire.ParseError(k)
			}
			payload = append(payload, x...)
			v = v[k:]
		default:
			k := wire.ConsumeFieldValue(num, typ, v)
			if k < 0 {
				return 0, wire.ParseError(k)
			}
			v = v[k:]
		}
	}
	if typeID < wire.MinValidNumber || o.Resolver == nil {
		return 0, errUnknown
	}
	xd, err := o.Resolver.FindExtensionByNumber(m.desc.FullName(), typeID)
	if err != nil || xd.Kind() != pref.MessageKind {
		return 0, errUnknown
	}
	msg := m.Mutable(xd).Interface().(*Message)
	if err := o.unmarshalMessage(payload, msg, depth-1); err != nil {
		return 0, err
	}
	return n, nil
}

func wireType(fd *protodesc.Field) wire.Type {
	return fd.Kind().WireType()
}

// consumeValue decodes a scalar value of fd, enforcing UTF-8 where the
// field requires it. An undeclared closed enum value yields errUnknown.
func consumeValue(fd *protodesc.Field, b []byte) (pref.Value, int, error) {
	v, n := consumeScalar(fd.Kind(), b)
	if n < 0 {
		return pref.Value{}, 0, wire.ParseError(n)
	}
	if isUnknownEnum(fd, v) {
		return pref.Value{}, 0, errUnknown
	}
	if fd.Kind() == pref.StringKind && fd.RequiresUTF8Validation() && !utf8.ValidString(v.String()) {
		return pref.Value{}, 0, errors.InvalidUTF8(string(fd.FullName()))
	}
	return v, n, nil
}

func isUnknownEnum(fd *protodesc.Field, v pref.Value) bool {
	if fd.Kind() != pref.EnumKind {
		return false
	}
	ed := fd.Enum()
	return ed != nil && ed.IsClosed() && ed.FindValueByNumber(v.Enum()) == nil
}

func consumeScalar(kind pref.Kind, b []byte) (pref.Value, int) {
	switch kind {
	case pref.BoolKind, pref.EnumKind,
		pref.Int32Kind, pref.Sint32Kind, pref.Uint32Kind,
		pref.Int64Kind, pref.Sint64Kind, pref.Uint64Kind:
		v, n := wire.ConsumeVarint(b)
		if n < 0 {
			return pref.Value{}, n
		}
		switch kind {
		case pref.BoolKind:
			return pref.ValueOfBool(wire.DecodeBool(v)), n
		case pref.EnumKind:
			return pref.ValueOfEnum(pref.EnumNumber(int32(v))), n
		case pref.Int32Kind:
			return pref.ValueOfInt32(int32(v)), n
		case pref.Sint32Kind:
			return pref.ValueOfInt32(wire.DecodeZigZag32(uint32(v))), n
		case pref.Uint32Kind:
			return pref.ValueOfUint32(uint32(v)), n
		case pref.Int64Kind:
			return pref.ValueOfInt64(int64(v)), n
		case pref.Sint64Kind:
			return pref.ValueOfInt64(wire.DecodeZigZag64(v)), n
		default:
			return pref.ValueOfUint64(v), n
		}
	case pref.Sfixed32Kind, pref.Fixed32Kind, pref.FloatKind:
		v, n := wire.ConsumeFixed32(b)
		if n < 0 {
			return pref.Value{}, n
		}
		switch kind {
		case pref.Sfixed32Kind:
			return pref.ValueOfInt32(int32(v)), n
		case pref.Fixed32Kind:
			return pref.ValueOfUint32(v), n
		default:
			return pref.ValueOfFloat32(math.Float32frombits(v)), n
		}
	case pref.Sfixed64Kind, pref.Fixed64Kind, pref.DoubleKind:
		v, n := wire.ConsumeFixed64(b)
		if n < 0 {
			return pref.Value{}, n
		}
		switch kind {
		case pref.Sfixed64Kind:
			return pref.ValueOfInt64(int64(v)), n
		case pref.Fixed64Kind:
			return pref.ValueOfUint64(v), n
		default:
			return pref.ValueOfFloat64(math.Float64frombits(v)), n
		}
	case pref.StringKind:
		v, n := wire.ConsumeBytes(b)
		if n < 0 {
			return pref.Value{}, n
		}
		return pref.ValueOfString(string(v)), n
	case pref.BytesKind:
		v, n := wire.ConsumeBytes(b)
		if n < 0 {
			return pref.Value{}, n
		}
		return pref.ValueOfBytes(append([]byte{}, v...)), n
	}
	panic(errors.New("invalid kind %v", kind))
}

// CheckInitialized reports the first required field that is not set in m
// or in any message nested in it.
func (m *Message) CheckInitialized() error {
	fields := m.desc.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if fd.Cardinality() == pref.Required && !m.Has(fd) {
			return errors.New("required field %v not set", fd.FullName())
		}
	}
	var err error
	m.Range(func(fd *protodesc.Field, v pref.Value) bool {
		switch {
		case fd.IsMap():
			if fd.MapValue().Message() == nil {
				return true
			}
			v.Interface().(*Map).Range(func(_ pref.MapKey, v pref.Value) bool {
				err = v.Interface().(*Message).CheckInitialized()
				return err == nil
			})
		case fd.IsList():
			if fd.Message() == nil {
				return true
			}
			for _, v := range v.Interface().(*List).list {
				if err = v.Interface().(*Message).CheckInitialized(); err != nil {
					break
				}
			}
		case fd.Message() != nil:
			err = v.Interface().(*Message).CheckInitialized()
		}
		return err == nil
	})
	return err
}
