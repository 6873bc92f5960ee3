// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package defval marshals and unmarshals the textual form of default values
// used by google.protobuf.FieldDescriptorProto.default_value.
package defval

import (
	"fmt"
	"math"
	"strconv"

	"github.com/protocore/protocore/internal/errors"
	pref "github.com/protocore/protocore/reflect/protoreflect"
)

// Unmarshal deserializes the default string s according to the given kind k.
// On an enum kind, a Value of type string holding the enum identifier is
// returned. It is the caller's responsibility to resolve the identifier.
//
// Integers accept decimal, hexadecimal and octal forms, floats accept
// "inf", "-inf" and "nan", and bytes use C escaping.
func Unmarshal(s string, k pref.Kind) (pref.Value, error) {
	switch k {
	case pref.BoolKind:
		switch s {
		case "true":
			return pref.ValueOfBool(true), nil
		case "false":
			return pref.ValueOfBool(false), nil
		}
	case pref.EnumKind:
		// Descriptor default_value uses the enum identifier.
		if pref.Name(s).IsValid() {
			return pref.ValueOfString(s), nil
		}
	case pref.Int32Kind, pref.Sint32Kind, pref.Sfixed32Kind:
		if v, err := strconv.ParseInt(s, 0, 32); err == nil {
			return pref.ValueOfInt32(int32(v)), nil
		}
	case pref.Int64Kind, pref.Sint64Kind, pref.Sfixed64Kind:
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			return pref.ValueOfInt64(v), nil
		}
	case pref.Uint32Kind, pref.Fixed32Kind:
		if v, err := strconv.ParseUint(s, 0, 32); err == nil {
			return pref.ValueOfUint32(uint32(v)), nil
		}
	case pref.Uint64Kind, pref.Fixed64Kind:
		if v, err := strconv.ParseUint(s, 0, 64); err == nil {
			return pref.ValueOfUint64(v), nil
		}
	case pref.FloatKind, pref.DoubleKind:
		var v float64
		var err error
		switch s {
		case "-inf":
			v = math.Inf(-1)
		case "inf":
			v = math.Inf(+1)
		case "nan":
			v = math.NaN()
		default:
			v, err = strconv.ParseFloat(s, 64)
		}
		if err == nil {
			if k == pref.FloatKind {
				return pref.ValueOfFloat32(float32(v)), nil
			}
			return pref.ValueOfFloat64(v), nil
		}
	case pref.StringKind:
		// String values are already unescaped and can be used as is.
		return pref.ValueOfString(s), nil
	case pref.BytesKind:
		if b, ok := unmarshalBytes(s); ok {
			return pref.ValueOfBytes(b), nil
		}
	}
	return pref.Value{}, errors.New("invalid default value for %v: %q", k, s)
}

// Marshal serializes v as the default string according to the given kind k.
// Enums are serialized in numeric form.
func Marshal(v pref.Value, k pref.Kind) (string, error) {
	switch k {
	case pref.BoolKind:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case pref.EnumKind:
		return strconv.FormatInt(int64(v.Enum()), 10), nil
	case pref.Int32Kind, pref.Sint32Kind, pref.Sfixed32Kind, pref.Int64Kind, pref.Sint64Kind, pref.Sfixed64Kind:
		return strconv.FormatInt(v.Int(), 10), nil
	case pref.Uint32Kind, pref.Fixed32Kind, pref.Uint64Kind, pref.Fixed64Kind:
		return strconv.FormatUint(v.Uint(), 10), nil
	case pref.FloatKind, pref.DoubleKind:
		f := v.Float()
		switch {
		case math.IsInf(f, -1):
			return "-inf", nil
		case math.IsInf(f, +1):
			return "inf", nil
		case math.IsNaN(f):
			return "nan", nil
		default:
			if k == pref.FloatKind {
				return strconv.FormatFloat(f, 'g', -1, 32), nil
			}
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
	case pref.StringKind:
		// String values are serialized as is without any escaping.
		return v.String(), nil
	case pref.BytesKind:
		return marshalBytes(v.Bytes()), nil
	}
	return "", errors.New("invalid default value for %v: %v", k, v)
}

// unmarshalBytes deserializes bytes by applying C unescaping.
func unmarshalBytes(s string) ([]byte, bool) {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b = append(b, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, false
		}
		switch c = s[i]; c {
		case 'a':
			b = append(b, '\a')
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case 'n':
			b = append(b, '\n')
		case 'r':
			b = append(b, '\r')
		case 't':
			b = append(b, '\t')
		case 'v':
			b = append(b, '\v')
		case '?', '\\', '\'', '"':
			b = append(b, c)
		case 'x', 'X':
			// One or two hex digits.
			j := i + 1
			for j < len(s) && j < i+3 && isHex(s[j]) {
				j++
			}
			if j == i+1 {
				return nil, false
			}
			v, _ := strconv.ParseUint(s[i+1:j], 16, 8)
			b = append(b, byte(v))
			i = j - 1
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// One to three octal digits.
			j := i
			for j < len(s) && j < i+3 && '0' <= s[j] && s[j] <= '7' {
				j++
			}
			v, err := strconv.ParseUint(s[i:j], 8, 16)
			if err != nil || v > math.MaxUint8 {
				return nil, false
			}
			b = append(b, byte(v))
			i = j - 1
		default:
			return nil, false
		}
	}
	return b, true
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// marshalBytes serializes bytes by using C escaping.
// To match the exact output of protoc, this is identical to the
// CEscape function in strutil.cc of the protoc source code.
func marshalBytes(b []byte) string {
	var s []byte
	for _, c := range b {
		switch c {
		case '\n':
			s = append(s, `\n`...)
		case '\r':
			s = append(s, `\r`...)
		case '\t':
			s = append(s, `\t`...)
		case '"':
			s = append(s, `\"`...)
		case '\'':
			s = append(s, `\'`...)
		case '\\':
			s = append(s, `\\`...)
		default:
			if printableASCII := c >= 0x20 && c <= 0x7e; printableASCII {
				s = append(s, c)
			} else {
				s = append(s, fmt.Sprintf(`\%03o`, c)...)
			}
		}
	}
	return string(s)
}
