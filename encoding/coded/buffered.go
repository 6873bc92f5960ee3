// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"io"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
)

// bufferedWriter holds the scratch buffer logic shared by StreamWriter and
// ByteOutputWriter. The buffer* methods assume the caller has already made
// room with flushIfNotAvailable.
type bufferedWriter struct {
	buf     []byte
	pos     int
	flushed int // bytes already handed to the sink

	out io.Writer
	// lazy hands b to the sink without copying, or is nil when the sink
	// has no such notion.
	lazy func(b []byte) (int, error)
}

func newBufferedWriter(out io.Writer, size int) bufferedWriter {
	return bufferedWriter{buf: make([]byte, bufferSize(size)), out: out}
}

func (w *bufferedWriter) flushIfNotAvailable(n int) error {
	if len(w.buf)-w.pos < n {
		return w.doFlush()
	}
	return nil
}

func (w *bufferedWriter) doFlush() error {
	if w.pos == 0 {
		return nil
	}
	n := w.pos
	w.pos = 0
	return w.send(w.buf[:n], false)
}

// send writes b straight to the sink, bypassing the scratch buffer.
func (w *bufferedWriter) send(b []byte, lazy bool) error {
	var n int
	var err error
	if lazy && w.lazy != nil {
		n, err = w.lazy(b)
	} else {
		n, err = w.out.Write(b)
	}
	w.flushed += n
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errors.Wrap(err, "flush %d bytes", len(b))
	}
	return nil
}

func (w *bufferedWriter) bufferByte(b byte) {
	w.buf[w.pos] = b
	w.pos++
}

func (w *bufferedWriter) bufferTag(num wire.Number, typ wire.Type) {
	w.bufferVarint32(uint32(wire.EncodeTag(num, typ)))
}

func (w *bufferedWriter) bufferVarint32(v uint32) {
	w.pos += wire.PutVarint32(w.buf[w.pos:], v)
}

func (w *bufferedWriter) bufferVarint64(v uint64) {
	w.pos += wire.PutVarint(w.buf[w.pos:], v)
}

func (w *bufferedWriter) bufferFixed32(v uint32) {
	w.pos += wire.PutFixed32(w.buf[w.pos:], v)
}

func (w *bufferedWriter) bufferFixed64(v uint64) {
	w.pos += wire.PutFixed64(w.buf[w.pos:], v)
}

func (w *bufferedWriter) WriteTag(num wire.Number, typ wire.Type) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen32); err != nil {
		return err
	}
	w.bufferTag(num, typ)
	return nil
}

func (w *bufferedWriter) WriteVarint32(v uint32) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen32); err != nil {
		return err
	}
	w.bufferVarint32(v)
	return nil
}

func (w *bufferedWriter) WriteVarint64(v uint64) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen64); err != nil {
		return err
	}
	w.bufferVarint64(v)
	return nil
}

func (w *bufferedWriter) WriteFixed32(v uint32) error {
	if err := w.flushIfNotAvailable(wire.Fixed32Len); err != nil {
		return err
	}
	w.bufferFixed32(v)
	return nil
}

func (w *bufferedWriter) WriteFixed64(v uint64) error {
	if err := w.flushIfNotAvailable(wire.Fixed64Len); err != nil {
		return err
	}
	w.bufferFixed64(v)
	return nil
}

func (w *bufferedWriter) WriteTagVarint(num wire.Number, v uint64) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen32 + wire.MaxVarintLen64); err != nil {
		return err
	}
	w.bufferTag(num, wire.VarintType)
	w.bufferVarint64(v)
	return nil
}

func (w *bufferedWriter) WriteTagFixed32(num wire.Number, v uint32) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen32 + wire.Fixed32Len); err != nil {
		return err
	}
	w.bufferTag(num, wire.Fixed32Type)
	w.bufferFixed32(v)
	return nil
}

func (w *bufferedWriter) WriteTagFixed64(num wire.Number, v uint64) error {
	if err := w.flushIfNotAvailable(wire.MaxVarintLen32 + wire.Fixed64Len); err != nil {
		return err
	}
	w.bufferTag(num, wire.Fixed64Type)
	w.bufferFixed64(v)
	return nil
}

func (w *bufferedWriter) WriteRawByte(b byte) error {
	if err := w.flushIfNotAvailable(1); err != nil {
		return err
	}
	w.bufferByte(b)
	return nil
}

func (w *bufferedWriter) WriteRaw(b []byte) error {
	if len(w.buf)-w.pos >= len(b) {
		w.pos += copy(w.buf[w.pos:], b)
		return nil
	}
	// Fill the scratch buffer, flush it, then either buffer the remainder
	// or send it directly when it would not fit anyway.
	n := copy(w.buf[w.pos:], b)
	w.pos += n
	b = b[n:]
	if err := w.doFlush(); err != nil {
		return err
	}
	if len(b) <= len(w.buf) {
		w.pos = copy(w.buf, b)
		return nil
	}
	return w.send(b, false)
}

func (w *bufferedWriter) WriteLazy(b []byte) error {
	if w.lazy == nil {
		return w.WriteRaw(b)
	}
	if err := w.doFlush(); err != nil {
		return err
	}
	return w.send(b, true)
}

func (w *bufferedWriter) WriteString(s string) error {
	maxLen := len(s) * maxUTF8Expansion
	maxPrefix := wire.SizeVarint64(uint64(maxLen))

	// Too large for the scratch buffer even when empty: encode exactly
	// once and hand the result to the sink without another copy.
	if maxPrefix+maxLen > len(w.buf) {
		b := encodeString(s)
		if err := w.WriteVarint32(uint32(len(b))); err != nil {
			return err
		}
		return w.WriteLazy(b)
	}

	if err := w.flushIfNotAvailable(maxPrefix + maxLen); err != nil {
		return err
	}
	minPrefix := wire.SizeVarint64(uint64(len(s)))
	if minPrefix == maxPrefix {
		start := w.pos + minPrefix
		n := encodeUTF8(w.buf[start:], s)
		wire.PutVarint32(w.buf[w.pos:], uint32(n))
		w.pos = start + n
		return nil
	}
	n, _ := encodedLen(s)
	w.bufferVarint32(uint32(n))
	w.pos += encodeUTF8(w.buf[w.pos:], s)
	return nil
}

func (w *bufferedWriter) Flush() error {
	return w.doFlush()
}

func (w *bufferedWriter) SpaceLeft() (int, error) {
	return 0, ErrSpaceLeftUnsupported
}

func (w *bufferedWriter) TotalBytesWritten() int {
	return w.flushed + w.pos
}

// StreamWriter buffers output and flushes it to an io.Writer.
// Callers must call Flush once done.
type StreamWriter struct {
	bufferedWriter
}

// NewStreamWriter returns a StreamWriter with a scratch buffer of the given
// size; non-positive sizes select DefaultBufferSize. The buffer is never
// smaller than two maximal varints.
func NewStreamWriter(w io.Writer, size int) *StreamWriter {
	return &StreamWriter{newBufferedWriter(w, size)}
}

// ByteOutput is a sink that can take ownership of a byte slice.
type ByteOutput interface {
	io.Writer
	// WriteLazy is like Write, except that the receiver may retain b.
	// The caller does not modify b afterwards.
	WriteLazy(b []byte) (int, error)
}

// ByteOutputWriter buffers small writes and passes large payloads, such as
// big strings or WriteLazy data, to its ByteOutput without copying.
// Callers must call Flush once done.
type ByteOutputWriter struct {
	bufferedWriter
}

// NewByteOutputWriter returns a ByteOutputWriter over out.
func NewByteOutputWriter(out ByteOutput, size int) *ByteOutputWriter {
	w := &ByteOutputWriter{newBufferedWriter(out, size)}
	w.lazy = out.WriteLazy
	return w
}

// WriteRaw buffers b if it fits and otherwise flushes and writes b directly.
func (w *ByteOutputWriter) WriteRaw(b []byte) error {
	if len(w.buf)-w.pos >= len(b) {
		w.pos += copy(w.buf[w.pos:], b)
		return nil
	}
	if err := w.doFlush(); err != nil {
		return err
	}
	return w.send(b, false)
}

var (
	_ Writer = (*ArrayWriter)(nil)
	_ Writer = (*StreamWriter)(nil)
	_ Writer = (*ByteOutputWriter)(nil)
)
