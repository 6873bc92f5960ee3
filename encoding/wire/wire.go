// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire parses and formats the protobuf wire encoding.
//
// The functions here are stateless. Sizes are computed by bit-length
// branching, appends and puts never allocate more than the destination
// requires, and every Consume function is the exact inverse of the
// corresponding Append function.
//
// Parsing functions report errors as negative lengths; see ParseError.
package wire

import (
	"io"
	"math"

	"github.com/protocore/protocore/internal/errors"
)

// Number represents the field number.
type Number int32

const (
	MinValidNumber      Number = 1
	FirstReservedNumber Number = 19000
	LastReservedNumber  Number = 19999
	MaxValidNumber      Number = 1<<29 - 1

	DefaultRecursionLimit = 10000
)

// IsValid reports whether the field number is semantically valid.
//
// Note that while numbers within the reserved range are semantically invalid,
// they are syntactically valid in the wire format.
// Implementations may treat records with reserved field numbers as unknown.
func (n Number) IsValid() bool {
	return MinValidNumber <= n && n < FirstReservedNumber || LastReservedNumber < n && n <= MaxValidNumber
}

// Type represents the wire type.
type Type int8

const (
	VarintType     Type = 0
	Fixed64Type    Type = 1
	BytesType      Type = 2
	StartGroupType Type = 3
	EndGroupType   Type = 4
	Fixed32Type    Type = 5
)

func (t Type) String() string {
	switch t {
	case VarintType:
		return "varint"
	case Fixed64Type:
		return "fixed64"
	case BytesType:
		return "bytes"
	case StartGroupType:
		return "start_group"
	case EndGroupType:
		return "end_group"
	case Fixed32Type:
		return "fixed32"
	default:
		return "<unknown wire type>"
	}
}

const (
	// MaxVarintLen32 is the maximum length of a varint-encoded uint32.
	MaxVarintLen32 = 5
	// MaxVarintLen64 is the maximum length of a varint-encoded uint64.
	// Negative int32 values are sign extended and also take this many bytes.
	MaxVarintLen64 = 10

	Fixed32Len = 4
	Fixed64Len = 8
)

const (
	_ = -iota
	errCodeTruncated
	errCodeFieldNumber
	errCodeOverflow
	errCodeReserved
	errCodeEndGroup
	errCodeRecursionDepth
)

var (
	errFieldNumber    = errors.New("invalid field number")
	errOverflow       = errors.New("variable length integer overflow")
	errReserved       = errors.New("cannot parse reserved wire type")
	errEndGroup       = errors.New("mismatching end group marker")
	errRecursionDepth = errors.New("exceeded maximum recursion depth")
	errParse          = errors.New("parse error")
)

// ParseError converts an error code into an error value.
// This returns nil if n is a non-negative number.
func ParseError(n int) error {
	if n >= 0 {
		return nil
	}
	switch n {
	case errCodeTruncated:
		return io.ErrUnexpectedEOF
	case errCodeFieldNumber:
		return errFieldNumber
	case errCodeOverflow:
		return errOverflow
	case errCodeReserved:
		return errReserved
	case errCodeEndGroup:
		return errEndGroup
	case errCodeRecursionDepth:
		return errRecursionDepth
	default:
		return errParse
	}
}

// EncodeTag encodes the field Number and wire Type into its unified form.
func EncodeTag(num Number, typ Type) uint64 {
	return uint64(num)<<3 | uint64(typ&7)
}

// DecodeTag decodes the field Number and wire Type from its unified form.
// The Number is -1 if the decoded field number overflows int32.
// Other than overflow, this does not check for field number validity.
func DecodeTag(x uint64) (Number, Type) {
	// NOTE: MessageSet allows for larger field numbers than normal.
	if x>>3 > uint64(math.MaxInt32) {
		return -1, 0
	}
	return Number(x >> 3), Type(x & 7)
}

// SizeTag returns the encoded size of a field tag.
func SizeTag(num Number) int {
	return SizeVarint32(uint32(num) << 3) // wire type has no effect on size
}

// SizeVarint32 returns the encoded size of a varint-encoded uint32.
// The size is within 1 and 5, inclusive.
func SizeVarint32(v uint32) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	}
	return 5
}

// SizeVarint64 returns the encoded size of a varint-encoded uint64.
// The size is within 1 and 10, inclusive.
func SizeVarint64(v uint64) int {
	// Halve the search space on the high bits first.
	n := 1
	if v >= 1<<35 {
		n += 4
		v >>= 28
	}
	if v >= 1<<21 {
		n += 2
		v >>= 14
	}
	if v >= 1<<14 {
		n++
		v >>= 7
	}
	if v >= 1<<7 {
		n++
		v >>= 7
	}
	if v >= 1<<7 {
		n++
	}
	return n
}

// SizeVarint is an alias for SizeVarint64.
func SizeVarint(v uint64) int {
	return SizeVarint64(v)
}

// SizeVarintInt32 returns the encoded size of an int32 written as a varint.
// Negative values are sign extended to 64 bits and always take 10 bytes.
func SizeVarintInt32(v int32) int {
	if v >= 0 {
		return SizeVarint32(uint32(v))
	}
	return MaxVarintLen64
}

// EncodeZigZag32 encodes an int32 as a zig-zag-encoded uint32.
// Values of small magnitude, positive or negative, map to small numbers.
func EncodeZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// DecodeZigZag32 decodes a zig-zag-encoded uint32 as an int32.
func DecodeZigZag32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// EncodeZigZag64 encodes an int64 as a zig-zag-encoded uint64.
func EncodeZigZag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// DecodeZigZag64 decodes a zig-zag-encoded uint64 as an int64.
func DecodeZigZag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EncodeBool encodes a bool as a uint64.
//	false => 0
//	true  => 1
func EncodeBool(x bool) uint64 {
	if x {
		return 1
	}
	return 0
}

// DecodeBool decodes a uint64 as a bool.
//	0    => false
//	!= 0 => true
func DecodeBool(x uint64) bool {
	return x != 0
}

// SizeFixed32 returns the encoded size of a fixed32; which is always 4.
func SizeFixed32() int {
	return Fixed32Len
}

// SizeFixed64 returns the encoded size of a fixed64; which is always 8.
func SizeFixed64() int {
	return Fixed64Len
}

// SizeBytes returns the encoded size of a length-prefixed bytes value,
// given only the length.
func SizeBytes(n int) int {
	return SizeVarint32(uint32(n)) + n
}

// SizeGroup returns the encoded size of a group, given only the length.
func SizeGroup(num Number, n int) int {
	return n + SizeTag(num)
}
