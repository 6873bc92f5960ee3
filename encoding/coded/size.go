// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"github.com/protocore/protocore/encoding/wire"
)

// SizeTag returns the size of a field tag.
func SizeTag(num wire.Number) int { return wire.SizeTag(num) }

// SizeLength returns the size of a length prefix plus the n bytes it covers.
func SizeLength(n int) int { return wire.SizeVarint32(uint32(n)) + n }

func SizeInt32NoTag(v int32) int     { return wire.SizeVarintInt32(v) }
func SizeUint32NoTag(v uint32) int   { return wire.SizeVarint32(v) }
func SizeSint32NoTag(v int32) int    { return wire.SizeVarint32(wire.EncodeZigZag32(v)) }
func SizeFixed32NoTag(uint32) int    { return wire.Fixed32Len }
func SizeSfixed32NoTag(int32) int    { return wire.Fixed32Len }
func SizeInt64NoTag(v int64) int     { return wire.SizeVarint64(uint64(v)) }
func SizeUint64NoTag(v uint64) int   { return wire.SizeVarint64(v) }
func SizeSint64NoTag(v int64) int    { return wire.SizeVarint64(wire.EncodeZigZag64(v)) }
func SizeFixed64NoTag(uint64) int    { return wire.Fixed64Len }
func SizeSfixed64NoTag(int64) int    { return wire.Fixed64Len }
func SizeFloatNoTag(float32) int     { return wire.Fixed32Len }
func SizeDoubleNoTag(float64) int    { return wire.Fixed64Len }
func SizeBoolNoTag(bool) int         { return 1 }
func SizeEnumNoTag(v int32) int      { return wire.SizeVarintInt32(v) }
func SizeBytesNoTag(v []byte) int    { return SizeLength(len(v)) }
func SizeMessageNoTag(m Message) int { return SizeLength(m.Size()) }
func SizeGroupNoTag(m Message) int   { return m.Size() }

// SizeStringNoTag matches WriteStringNoTag, including the U+FFFD
// replacement of invalid UTF-8.
func SizeStringNoTag(v string) int {
	n, _ := encodedLen(v)
	return SizeLength(n)
}

func SizeInt32(num wire.Number, v int32) int    { return wire.SizeTag(num) + SizeInt32NoTag(v) }
func SizeUint32(num wire.Number, v uint32) int  { return wire.SizeTag(num) + SizeUint32NoTag(v) }
func SizeSint32(num wire.Number, v int32) int   { return wire.SizeTag(num) + SizeSint32NoTag(v) }
func SizeFixed32(num wire.Number, v uint32) int { return wire.SizeTag(num) + wire.Fixed32Len }
func SizeSfixed32(num wire.Number, v int32) int { return wire.SizeTag(num) + wire.Fixed32Len }
func SizeInt64(num wire.Number, v int64) int    { return wire.SizeTag(num) + SizeInt64NoTag(v) }
func SizeUint64(num wire.Number, v uint64) int  { return wire.SizeTag(num) + SizeUint64NoTag(v) }
func SizeSint64(num wire.Number, v int64) int   { return wire.SizeTag(num) + SizeSint64NoTag(v) }
func SizeFixed64(num wire.Number, v uint64) int { return wire.SizeTag(num) + wire.Fixed64Len }
func SizeSfixed64(num wire.Number, v int64) int { return wire.SizeTag(num) + wire.Fixed64Len }
func SizeFloat(num wire.Number, v float32) int  { return wire.SizeTag(num) + wire.Fixed32Len }
func SizeDouble(num wire.Number, v float64) int { return wire.SizeTag(num) + wire.Fixed64Len }
func SizeBool(num wire.Number, v bool) int      { return wire.SizeTag(num) + 1 }
func SizeEnum(num wire.Number, v int32) int     { return wire.SizeTag(num) + SizeEnumNoTag(v) }
func SizeString(num wire.Number, v string) int  { return wire.SizeTag(num) + SizeStringNoTag(v) }
func SizeBytes(num wire.Number, v []byte) int   { return wire.SizeTag(num) + SizeBytesNoTag(v) }
func SizeMessage(num wire.Number, m Message) int {
	return wire.SizeTag(num) + SizeMessageNoTag(m)
}

// SizeGroup includes both the START_GROUP and END_GROUP tags.
func SizeGroup(num wire.Number, m Message) int {
	return 2*wire.SizeTag(num) + SizeGroupNoTag(m)
}

// SizeMessageSetExtension matches WriteMessageSetExtension.
func SizeMessageSetExtension(num wire.Number, m Message) int {
	return 2*wire.SizeTag(messageSetItemNumber) +
		SizeUint32(messageSetTypeIDNumber, uint32(num)) +
		SizeMessage(messageSetMessageNumber, m)
}

// SizeRawMessageSetExtension matches WriteRawMessageSetExtension.
func SizeRawMessageSetExtension(num wire.Number, b []byte) int {
	return 2*wire.SizeTag(messageSetItemNumber) +
		SizeUint32(messageSetTypeIDNumber, uint32(num)) +
		SizeBytes(messageSetMessageNumber, b)
}
