// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"fmt"

	"github.com/protocore/protocore/encoding/wire"
)

// OutOfSpaceError is returned when a write into an ArrayWriter would run
// past the end of its range. Nothing of the failed write is stored.
type OutOfSpaceError struct {
	Position int // index of the next byte to be written
	Limit    int // index one past the last writable byte
	Length   int // size of the rejected write
}

func (e *OutOfSpaceError) Error() string {
	return fmt.Sprintf("proto: out of space: position %d, limit %d, length %d", e.Position, e.Limit, e.Length)
}

// ArrayWriter writes directly into a fixed slice.
//
// It is the strategy to use when the exact size of the output is known
// ahead of time, which is how Marshal uses it.
type ArrayWriter struct {
	buf    []byte
	offset int
	limit  int
	pos    int
}

// NewArrayWriter returns a writer covering all of b.
func NewArrayWriter(b []byte) *ArrayWriter {
	return &ArrayWriter{buf: b, limit: len(b)}
}

// NewArrayWriterRange returns a writer covering b[offset:offset+length].
// It panics if the range does not lie within b.
func NewArrayWriterRange(b []byte, offset, length int) *ArrayWriter {
	if offset < 0 || length < 0 || offset > len(b) || len(b)-offset < length {
		panic(fmt.Sprintf("coded: array range [%d:%d+%d] out of bounds for length %d", offset, offset, length, len(b)))
	}
	return &ArrayWriter{buf: b, offset: offset, limit: offset + length, pos: offset}
}

// Bytes returns the bytes written so far.
func (w *ArrayWriter) Bytes() []byte {
	return w.buf[w.offset:w.pos]
}

func (w *ArrayWriter) check(n int) error {
	if w.limit-w.pos < n {
		return &OutOfSpaceError{Position: w.pos, Limit: w.limit, Length: n}
	}
	return nil
}

func (w *ArrayWriter) WriteTag(num wire.Number, typ wire.Type) error {
	return w.WriteVarint32(uint32(wire.EncodeTag(num, typ)))
}

func (w *ArrayWriter) WriteVarint32(v uint32) error {
	if err := w.check(wire.SizeVarint32(v)); err != nil {
		return err
	}
	w.pos += wire.PutVarint32(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteVarint64(v uint64) error {
	if err := w.check(wire.SizeVarint64(v)); err != nil {
		return err
	}
	w.pos += wire.PutVarint(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteFixed32(v uint32) error {
	if err := w.check(wire.Fixed32Len); err != nil {
		return err
	}
	w.pos += wire.PutFixed32(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteFixed64(v uint64) error {
	if err := w.check(wire.Fixed64Len); err != nil {
		return err
	}
	w.pos += wire.PutFixed64(w.buf[w.pos:], v)
	return nil
}

// writeTag stores the tag once n further bytes of value are known to fit
// after it.
func (w *ArrayWriter) writeTag(num wire.Number, typ wire.Type, n int) error {
	tag := uint32(wire.EncodeTag(num, typ))
	if err := w.check(wire.SizeVarint32(tag) + n); err != nil {
		return err
	}
	w.pos += wire.PutVarint32(w.buf[w.pos:], tag)
	return nil
}

func (w *ArrayWriter) WriteTagVarint(num wire.Number, v uint64) error {
	if err := w.writeTag(num, wire.VarintType, wire.SizeVarint64(v)); err != nil {
		return err
	}
	w.pos += wire.PutVarint(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteTagFixed32(num wire.Number, v uint32) error {
	if err := w.writeTag(num, wire.Fixed32Type, wire.Fixed32Len); err != nil {
		return err
	}
	w.pos += wire.PutFixed32(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteTagFixed64(num wire.Number, v uint64) error {
	if err := w.writeTag(num, wire.Fixed64Type, wire.Fixed64Len); err != nil {
		return err
	}
	w.pos += wire.PutFixed64(w.buf[w.pos:], v)
	return nil
}

func (w *ArrayWriter) WriteRawByte(b byte) error {
	if err := w.check(1); err != nil {
		return err
	}
	w.buf[w.pos] = b
	w.pos++
	return nil
}

func (w *ArrayWriter) WriteRaw(b []byte) error {
	if err := w.check(len(b)); err != nil {
		return err
	}
	w.pos += copy(w.buf[w.pos:], b)
	return nil
}

// WriteLazy is the same as WriteRaw; the bytes are copied immediately.
func (w *ArrayWriter) WriteLazy(b []byte) error {
	return w.WriteRaw(b)
}

func (w *ArrayWriter) WriteString(s string) error {
	// If the length prefix has the same width for the smallest and the
	// largest possible encoding, encode in place and backfill the prefix.
	maxLen := len(s) * maxUTF8Expansion
	minPrefix := wire.SizeVarint64(uint64(len(s)))
	maxPrefix := wire.SizeVarint64(uint64(maxLen))
	if minPrefix == maxPrefix && w.limit-w.pos >= maxPrefix+maxLen {
		start := w.pos + minPrefix
		n := encodeUTF8(w.buf[start:w.limit], s)
		wire.PutVarint32(w.buf[w.pos:], uint32(n))
		w.pos = start + n
		return nil
	}

	n, _ := encodedLen(s)
	prefix := wire.SizeVarint32(uint32(n))
	if err := w.check(prefix + n); err != nil {
		return err
	}
	w.pos += wire.PutVarint32(w.buf[w.pos:], uint32(n))
	w.pos += encodeUTF8(w.buf[w.pos:w.limit], s)
	return nil
}

// Flush is a no-op.
func (w *ArrayWriter) Flush() error { return nil }

func (w *ArrayWriter) SpaceLeft() (int, error) {
	return w.limit - w.pos, nil
}

func (w *ArrayWriter) TotalBytesWritten() int {
	return w.pos - w.offset
}

// CheckNoSpaceLeft reports an error unless the writer's range has been
// filled exactly. It detects a size computation that disagrees with
// what was written.
func (w *ArrayWriter) CheckNoSpaceLeft() error {
	if w.pos != w.limit {
		return errSpaceLeftOver
	}
	return nil
}
