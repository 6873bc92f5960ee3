// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"github.com/protocore/protocore/encoding/wire"
)

// Packed repeated fields are written as a single length-delimited record
// holding the untagged elements back to back. An empty list writes nothing.

func (e *Encoder) writePackedHeader(num wire.Number, n int) error {
	if err := e.w.WriteTag(num, wire.BytesType); err != nil {
		return err
	}
	return e.w.WriteVarint32(uint32(n))
}

func sizePacked(num wire.Number, n int) int {
	return wire.SizeTag(num) + SizeLength(n)
}

func (e *Encoder) WritePackedInt32(num wire.Number, vs []int32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeInt32s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.WriteInt32NoTag(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedUint32(num wire.Number, vs []uint32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeUint32s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteVarint32(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedSint32(num wire.Number, vs []int32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeSint32s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteVarint32(wire.EncodeZigZag32(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedFixed32(num wire.Number, vs []uint32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed32Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteFixed32(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedSfixed32(num wire.Number, vs []int32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed32Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteFixed32(uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedInt64(num wire.Number, vs []int64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeInt64s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteVarint64(uint64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedUint64(num wire.Number, vs []uint64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeUint64s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteVarint64(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedSint64(num wire.Number, vs []int64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, sizeSint64s(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteVarint64(wire.EncodeZigZag64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedFixed64(num wire.Number, vs []uint64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed64Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteFixed64(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedSfixed64(num wire.Number, vs []int64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed64Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.w.WriteFixed64(uint64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedFloat(num wire.Number, vs []float32) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed32Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.WriteFloatNoTag(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedDouble(num wire.Number, vs []float64) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)*wire.Fixed64Len); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.WriteDoubleNoTag(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedBool(num wire.Number, vs []bool) error {
	if len(vs) == 0 {
		return nil
	}
	if err := e.writePackedHeader(num, len(vs)); err != nil {
		return err
	}
	for _, v := range vs {
		if err := e.WriteBoolNoTag(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) WritePackedEnum(num wire.Number, vs []int32) error {
	return e.WritePackedInt32(num, vs)
}

func sizeInt32s(vs []int32) (n int) {
	for _, v := range vs {
		n += wire.SizeVarintInt32(v)
	}
	return n
}

func sizeUint32s(vs []uint32) (n int) {
	for _, v := range vs {
		n += wire.SizeVarint32(v)
	}
	return n
}

func sizeSint32s(vs []int32) (n int) {
	for _, v := range vs {
		n += wire.SizeVarint32(wire.EncodeZigZag32(v))
	}
	return n
}

func sizeInt64s(vs []int64) (n int) {
	for _, v := range vs {
		n += wire.SizeVarint64(uint64(v))
	}
	return n
}

func sizeUint64s(vs []uint64) (n int) {
	for _, v := range vs {
		n += wire.SizeVarint64(v)
	}
	return n
}

func sizeSint64s(vs []int64) (n int) {
	for _, v := range vs {
		n += wire.SizeVarint64(wire.EncodeZigZag64(v))
	}
	return n
}

func SizePackedInt32(num wire.Number, vs []int32) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeInt32s(vs))
}

func SizePackedUint32(num wire.Number, vs []uint32) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeUint32s(vs))
}

func SizePackedSint32(num wire.Number, vs []int32) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeSint32s(vs))
}

func SizePackedInt64(num wire.Number, vs []int64) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeInt64s(vs))
}

func SizePackedUint64(num wire.Number, vs []uint64) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeUint64s(vs))
}

func SizePackedSint64(num wire.Number, vs []int64) int {
	if len(vs) == 0 {
		return 0
	}
	return sizePacked(num, sizeSint64s(vs))
}

func SizePackedFixed32(num wire.Number, vs []uint32) int { return sizePackedFixed(num, len(vs), wire.Fixed32Len) }
func SizePackedSfixed32(num wire.Number, vs []int32) int { return sizePackedFixed(num, len(vs), wire.Fixed32Len) }
func SizePackedFloat(num wire.Number, vs []float32) int  { return sizePackedFixed(num, len(vs), wire.Fixed32Len) }
func SizePackedFixed64(num wire.Number, vs []uint64) int { return sizePackedFixed(num, len(vs), wire.Fixed64Len) }
func SizePackedSfixed64(num wire.Number, vs []int64) int { return sizePackedFixed(num, len(vs), wire.Fixed64Len) }
func SizePackedDouble(num wire.Number, vs []float64) int { return sizePackedFixed(num, len(vs), wire.Fixed64Len) }
func SizePackedBool(num wire.Number, vs []bool) int      { return sizePackedFixed(num, len(vs), 1) }
func SizePackedEnum(num wire.Number, vs []int32) int     { return SizePackedInt32(num, vs) }

func sizePackedFixed(num wire.Number, n, width int) int {
	if n == 0 {
		return 0
	}
	return sizePacked(num, n*width)
}
