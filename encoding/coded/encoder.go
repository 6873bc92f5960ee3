// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"io"
	"math"

	"github.com/protocore/protocore/encoding/wire"
)

// MessageSet wire layout.
const (
	messageSetItemNumber    wire.Number = 1
	messageSetTypeIDNumber  wire.Number = 2
	messageSetMessageNumber wire.Number = 3
)

// Encoder writes typed protobuf values onto a Writer.
//
// Every scalar kind has a tagged form, WriteX(num, v), and an untagged
// form, WriteXNoTag(v). Each has a Size counterpart in this package that
// reports exactly how many bytes it writes.
type Encoder struct {
	w             Writer
	deterministic bool
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w Writer) *Encoder {
	return &Encoder{w: w}
}

// NewArrayEncoder returns an Encoder writing into b.
func NewArrayEncoder(b []byte) *Encoder {
	return NewEncoder(NewArrayWriter(b))
}

// NewStreamEncoder returns an Encoder buffering output for w.
func NewStreamEncoder(w io.Writer, bufferSize int) *Encoder {
	return NewEncoder(NewStreamWriter(w, bufferSize))
}

// NewByteOutputEncoder returns an Encoder buffering output for out.
func NewByteOutputEncoder(out ByteOutput, bufferSize int) *Encoder {
	return NewEncoder(NewByteOutputWriter(out, bufferSize))
}

// Writer returns the underlying output strategy.
func (e *Encoder) Writer() Writer { return e.w }

// SetDeterministic toggles deterministic serialization.
//
// In deterministic mode map entries are written in key order. The output
// is stable for equal messages within one build of a program; it is not a
// canonical form across versions or implementations.
func (e *Encoder) SetDeterministic(v bool) { e.deterministic = v }

// Deterministic reports whether deterministic serialization is enabled.
func (e *Encoder) Deterministic() bool { return e.deterministic }

// Flush pushes buffered output to the sink.
func (e *Encoder) Flush() error { return e.w.Flush() }

// SpaceLeft reports the free space of an array-backed encoder.
func (e *Encoder) SpaceLeft() (int, error) { return e.w.SpaceLeft() }

// TotalBytesWritten reports the number of bytes written so far.
func (e *Encoder) TotalBytesWritten() int { return e.w.TotalBytesWritten() }

// CheckNoSpaceLeft verifies that an array-backed encoder filled its
// array exactly.
func (e *Encoder) CheckNoSpaceLeft() error {
	n, err := e.w.SpaceLeft()
	if err != nil {
		return err
	}
	if n != 0 {
		return errSpaceLeftOver
	}
	return nil
}

// WriteTag writes a field tag.
func (e *Encoder) WriteTag(num wire.Number, typ wire.Type) error {
	return e.w.WriteTag(num, typ)
}

func (e *Encoder) WriteInt32(num wire.Number, v int32) error {
	if err := e.w.WriteTag(num, wire.VarintType); err != nil {
		return err
	}
	return e.WriteInt32NoTag(v)
}

func (e *Encoder) WriteUint32(num wire.Number, v uint32) error {
	if err := e.w.WriteTag(num, wire.VarintType); err != nil {
		return err
	}
	return e.w.WriteVarint32(v)
}

func (e *Encoder) WriteSint32(num wire.Number, v int32) error {
	return e.WriteUint32(num, wire.EncodeZigZag32(v))
}

func (e *Encoder) WriteFixed32(num wire.Number, v uint32) error {
	return e.w.WriteTagFixed32(num, v)
}

func (e *Encoder) WriteSfixed32(num wire.Number, v int32) error {
	return e.w.WriteTagFixed32(num, uint32(v))
}

func (e *Encoder) WriteInt64(num wire.Number, v int64) error {
	return e.w.WriteTagVarint(num, uint64(v))
}

func (e *Encoder) WriteUint64(num wire.Number, v uint64) error {
	return e.w.WriteTagVarint(num, v)
}

func (e *Encoder) WriteSint64(num wire.Number, v int64) error {
	return e.w.WriteTagVarint(num, wire.EncodeZigZag64(v))
}

func (e *Encoder) WriteFixed64(num wire.Number, v uint64) error {
	return e.w.WriteTagFixed64(num, v)
}

func (e *Encoder) WriteSfixed64(num wire.Number, v int64) error {
	return e.w.WriteTagFixed64(num, uint64(v))
}

func (e *Encoder) WriteFloat(num wire.Number, v float32) error {
	return e.w.WriteTagFixed32(num, math.Float32bits(v))
}

func (e *Encoder) WriteDouble(num wire.Number, v float64) error {
	return e.w.WriteTagFixed64(num, math.Float64bits(v))
}

func (e *Encoder) WriteBool(num wire.Number, v bool) error {
	return e.w.WriteTagVarint(num, wire.EncodeBool(v))
}

// WriteEnum writes an enum value; negative values take 10 bytes like int32.
func (e *Encoder) WriteEnum(num wire.Number, v int32) error {
	return e.WriteInt32(num, v)
}

func (e *Encoder) WriteString(num wire.Number, v string) error {
	if err := e.w.WriteTag(num, wire.BytesType); err != nil {
		return err
	}
	return e.w.WriteString(v)
}

func (e *Encoder) WriteBytes(num wire.Number, v []byte) error {
	if err := e.w.WriteTag(num, wire.BytesType); err != nil {
		return err
	}
	return e.WriteBytesNoTag(v)
}

// WriteMessage writes m as a length-delimited field.
// The length prefix comes from m.CachedSize, so m.Size must have been
// called since m was last modified.
func (e *Encoder) WriteMessage(num wire.Number, m Message) error {
	if err := e.w.WriteTag(num, wire.BytesType); err != nil {
		return err
	}
	return e.WriteMessageNoTag(m)
}

// WriteGroup writes m delimited by START_GROUP and END_GROUP tags.
func (e *Encoder) WriteGroup(num wire.Number, m Message) error {
	if err := e.w.WriteTag(num, wire.StartGroupType); err != nil {
		return err
	}
	return e.WriteGroupNoTag(num, m)
}

// WriteMessageSetExtension writes m as a MessageSet item for the
// extension field num.
func (e *Encoder) WriteMessageSetExtension(num wire.Number, m Message) error {
	if err := e.w.WriteTag(messageSetItemNumber, wire.StartGroupType); err != nil {
		return err
	}
	if err := e.WriteUint32(messageSetTypeIDNumber, uint32(num)); err != nil {
		return err
	}
	if err := e.WriteMessage(messageSetMessageNumber, m); err != nil {
		return err
	}
	return e.w.WriteTag(messageSetItemNumber, wire.EndGroupType)
}

// WriteRawMessageSetExtension is like WriteMessageSetExtension for an
// already serialized message.
func (e *Encoder) WriteRawMessageSetExtension(num wire.Number, b []byte) error {
	if err := e.w.WriteTag(messageSetItemNumber, wire.StartGroupType); err != nil {
		return err
	}
	if err := e.WriteUint32(messageSetTypeIDNumber, uint32(num)); err != nil {
		return err
	}
	if err := e.WriteBytes(messageSetMessageNumber, b); err != nil {
		return err
	}
	return e.w.WriteTag(messageSetItemNumber, wire.EndGroupType)
}

// WriteInt32NoTag sign extends negative values to 64 bits.
func (e *Encoder) WriteInt32NoTag(v int32) error {
	if v >= 0 {
		return e.w.WriteVarint32(uint32(v))
	}
	return e.w.WriteVarint64(uint64(int64(v)))
}

func (e *Encoder) WriteUint32NoTag(v uint32) error  { return e.w.WriteVarint32(v) }
func (e *Encoder) WriteSint32NoTag(v int32) error   { return e.w.WriteVarint32(wire.EncodeZigZag32(v)) }
func (e *Encoder) WriteFixed32NoTag(v uint32) error { return e.w.WriteFixed32(v) }
func (e *Encoder) WriteSfixed32NoTag(v int32) error { return e.w.WriteFixed32(uint32(v)) }
func (e *Encoder) WriteInt64NoTag(v int64) error    { return e.w.WriteVarint64(uint64(v)) }
func (e *Encoder) WriteUint64NoTag(v uint64) error  { return e.w.WriteVarint64(v) }
func (e *Encoder) WriteSint64NoTag(v int64) error   { return e.w.WriteVarint64(wire.EncodeZigZag64(v)) }
func (e *Encoder) WriteFixed64NoTag(v uint64) error { return e.w.WriteFixed64(v) }
func (e *Encoder) WriteSfixed64NoTag(v int64) error { return e.w.WriteFixed64(uint64(v)) }
func (e *Encoder) WriteFloatNoTag(v float32) error  { return e.w.WriteFixed32(math.Float32bits(v)) }
func (e *Encoder) WriteDoubleNoTag(v float64) error { return e.w.WriteFixed64(math.Float64bits(v)) }
func (e *Encoder) WriteBoolNoTag(v bool) error      { return e.w.WriteRawByte(byte(wire.EncodeBool(v))) }
func (e *Encoder) WriteEnumNoTag(v int32) error     { return e.WriteInt32NoTag(v) }
func (e *Encoder) WriteStringNoTag(v string) error  { return e.w.WriteString(v) }

func (e *Encoder) WriteBytesNoTag(v []byte) error {
	if err := e.w.WriteVarint32(uint32(len(v))); err != nil {
		return err
	}
	return e.w.WriteRaw(v)
}

// WriteMessageNoTag writes the length prefix and contents of m.
func (e *Encoder) WriteMessageNoTag(m Message) error {
	if err := e.w.WriteVarint32(uint32(m.CachedSize())); err != nil {
		return err
	}
	return m.MarshalTo(e)
}

// WriteGroupNoTag writes the contents of m and the END_GROUP tag for num.
func (e *Encoder) WriteGroupNoTag(num wire.Number, m Message) error {
	if err := m.MarshalTo(e); err != nil {
		return err
	}
	return e.w.WriteTag(num, wire.EndGroupType)
}

// WriteRawBytes writes b verbatim.
func (e *Encoder) WriteRawBytes(b []byte) error { return e.w.WriteRaw(b) }

// WriteRawByte writes a single byte.
func (e *Encoder) WriteRawByte(b byte) error { return e.w.WriteRawByte(b) }

// WriteLazy writes b verbatim, allowing the sink to retain it.
func (e *Encoder) WriteLazy(b []byte) error { return e.w.WriteLazy(b) }
