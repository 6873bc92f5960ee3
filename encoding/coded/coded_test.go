// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"google.golang.org/protobuf/encoding/protowire"
	"pgregory.net/rapid"

	"github.com/protocore/protocore/encoding/wire"
)

// testMessage is a hand written message with an int32, a string and a
// nested message.
type testMessage struct {
	id    int32
	name  string
	child *testMessage
	cache SizeCache
}

func (m *testMessage) Size() int {
	n := 0
	if m.id != 0 {
		n += SizeInt32(1, m.id)
	}
	if m.name != "" {
		n += SizeString(2, m.name)
	}
	if m.child != nil {
		n += SizeMessage(3, m.child)
	}
	m.cache.Store(n)
	return n
}

func (m *testMessage) CachedSize() int {
	n, _ := m.cache.Load()
	return n
}

func (m *testMessage) MarshalTo(e *Encoder) error {
	if m.id != 0 {
		if err := e.WriteInt32(1, m.id); err != nil {
			return err
		}
	}
	if m.name != "" {
		if err := e.WriteString(2, m.name); err != nil {
			return err
		}
	}
	if m.child != nil {
		if err := e.WriteMessage(3, m.child); err != nil {
			return err
		}
	}
	return nil
}

func (m *testMessage) appendWire(b []byte) []byte {
	if m.id != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.id))
	}
	if m.name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.name)
	}
	if m.child != nil {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m.child.appendWire(nil))
	}
	return b
}

// lazyOutput records how bytes reach a ByteOutput.
type lazyOutput struct {
	bytes.Buffer
	lazy [][]byte
}

func (o *lazyOutput) WriteLazy(b []byte) (int, error) {
	o.lazy = append(o.lazy, b)
	return o.Write(b)
}

// fatalf is the part of testing.TB that *rapid.T also provides.
type fatalf interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// strategies runs f against every writer and returns what each produced.
func strategies(t fatalf, size int, f func(e *Encoder) error) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}

	var sw bytes.Buffer
	e := NewStreamEncoder(&sw, 1)
	if err := f(e); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("stream flush: %v", err)
	}
	out["stream"] = sw.Bytes()

	var bo lazyOutput
	e = NewByteOutputEncoder(&bo, 1)
	if err := f(e); err != nil {
		t.Fatalf("byte output: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("byte output flush: %v", err)
	}
	out["byteoutput"] = bo.Bytes()

	ab := make([]byte, size)
	e = NewArrayEncoder(ab)
	if err := f(e); err != nil {
		t.Fatalf("array: %v", err)
	}
	if err := e.CheckNoSpaceLeft(); err != nil {
		t.Fatalf("array: %v", err)
	}
	out["array"] = ab
	return out
}

func checkAll(t fatalf, got map[string][]byte, want []byte) {
	t.Helper()
	for name, b := range got {
		if !bytes.Equal(b, want) {
			t.Fatalf("%s wrote %x, want %x", name, b, want)
		}
	}
}

func TestScalars(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		write func(e *Encoder) error
		want  []byte
	}{{
		name:  "int32 negative",
		size:  SizeInt32(1, -1),
		write: func(e *Encoder) error { return e.WriteInt32(1, -1) },
		want:  []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
	}, {
		name:  "sint32 negative",
		size:  SizeSint32(1, -1),
		write: func(e *Encoder) error { return e.WriteSint32(1, -1) },
		want:  []byte{0x08, 0x01},
	}, {
		name:  "uint32 tag 37",
		size:  SizeUint32(37, 150),
		write: func(e *Encoder) error { return e.WriteUint32(37, 150) },
		want:  []byte{0xa8, 0x02, 0x96, 0x01},
	}, {
		name:  "fixed32",
		size:  SizeFixed32(1, 1),
		write: func(e *Encoder) error { return e.WriteFixed32(1, 1) },
		want:  []byte{0x0d, 0x01, 0x00, 0x00, 0x00},
	}, {
		name:  "sfixed64 min",
		size:  SizeSfixed64(2, math.MinInt64),
		write: func(e *Encoder) error { return e.WriteSfixed64(2, math.MinInt64) },
		want:  []byte{0x11, 0, 0, 0, 0, 0, 0, 0, 0x80},
	}, {
		name:  "double",
		size:  SizeDouble(1, 1.0),
		write: func(e *Encoder) error { return e.WriteDouble(1, 1.0) },
		want:  []byte{0x09, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f},
	}, {
		name:  "bool",
		size:  SizeBool(1, true),
		write: func(e *Encoder) error { return e.WriteBool(1, true) },
		want:  []byte{0x08, 0x01},
	}, {
		name:  "string",
		size:  SizeString(2, "testing"),
		write: func(e *Encoder) error { return e.WriteString(2, "testing") },
		want:  []byte{0x12, 0x07, 't', 'e', 's', 't', 'i', 'n', 'g'},
	}, {
		name:  "bytes empty",
		size:  SizeBytes(1, nil),
		write: func(e *Encoder) error { return e.WriteBytes(1, nil) },
		want:  []byte{0x0a, 0x00},
	}, {
		name:  "uint64 max",
		size:  SizeUint64(1, math.MaxUint64),
		write: func(e *Encoder) error { return e.WriteUint64(1, math.MaxUint64) },
		want:  []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.size != len(tt.want) {
				t.Fatalf("size = %d, want %d", tt.size, len(tt.want))
			}
			checkAll(t, strategies(t, tt.size, tt.write), tt.want)
		})
	}
}

func TestScalarProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		num := wire.Number(rapid.Int32Range(1, int32(wire.MaxValidNumber)).Draw(t, "num"))
		i32 := rapid.Int32().Draw(t, "i32")
		u64 := rapid.Uint64().Draw(t, "u64")
		s64 := rapid.Int64().Draw(t, "s64")
		f32 := rapid.Float32().Draw(t, "f32")

		var want []byte
		pn := protowire.Number(num)
		want = protowire.AppendTag(want, pn, protowire.VarintType)
		want = protowire.AppendVarint(want, uint64(int64(i32)))
		want = protowire.AppendTag(want, pn, protowire.VarintType)
		want = protowire.AppendVarint(want, u64)
		want = protowire.AppendTag(want, pn, protowire.VarintType)
		want = protowire.AppendVarint(want, protowire.EncodeZigZag(s64))
		want = protowire.AppendTag(want, pn, protowire.Fixed32Type)
		want = protowire.AppendFixed32(want, math.Float32bits(f32))

		size := SizeInt32(num, i32) + SizeUint64(num, u64) + SizeSint64(num, s64) + SizeFloat(num, f32)
		got := strategies(t, size, func(e *Encoder) error {
			if err := e.WriteInt32(num, i32); err != nil {
				return err
			}
			if err := e.WriteUint64(num, u64); err != nil {
				return err
			}
			if err := e.WriteSint64(num, s64); err != nil {
				return err
			}
			return e.WriteFloat(num, f32)
		})
		checkAll(t, got, want)
	})
}

func TestStringProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		want := protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), s)
		checkAll(t, strategies(t, SizeString(1, s), func(e *Encoder) error {
			return e.WriteString(1, s)
		}), want)
	})
}

func TestInvalidUTF8(t *testing.T) {
	logger, hook := test.NewNullLogger()
	SetLogger(logger)
	defer SetLogger(nil)

	s := "a\xffb\xc0"
	want := []byte{0x0a, 0x08, 'a', 0xef, 0xbf, 0xbd, 'b', 0xef, 0xbf, 0xbd}
	if got := SizeString(1, s); got != len(want) {
		t.Fatalf("SizeString(%q) = %d, want %d", s, got, len(want))
	}
	checkAll(t, strategies(t, len(want), func(e *Encoder) error {
		return e.WriteString(1, s)
	}), want)

	if len(hook.Entries) == 0 {
		t.Fatal("no warning logged for invalid UTF-8")
	}
	if got := hook.LastEntry().Level; got != logrus.WarnLevel {
		t.Errorf("log level = %v, want %v", got, logrus.WarnLevel)
	}
}

func TestLargeStringIsWrittenLazily(t *testing.T) {
	s := string(bytes.Repeat([]byte("x"), 100))
	var out lazyOutput
	e := NewByteOutputEncoder(&out, 32)
	if err := e.WriteString(1, s); err != nil {
		t.Fatal(err)
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(out.lazy) != 1 || string(out.lazy[0]) != s {
		t.Errorf("lazy writes = %q, want a single write of the string payload", out.lazy)
	}
	want := protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), s)
	if diff := cmp.Diff(want, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if got := e.TotalBytesWritten(); got != len(want) {
		t.Errorf("TotalBytesWritten() = %d, want %d", got, len(want))
	}
}

func TestStreamLargeRaw(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 70)
	var buf bytes.Buffer
	e := NewStreamEncoder(&buf, 1)
	if err := e.WriteRawByte(0x01); err != nil {
		t.Fatal(err)
	}
	if err := e.WriteRawBytes(payload); err != nil {
		t.Fatal(err)
	}
	if got := e.TotalBytesWritten(); got != 71 {
		t.Errorf("TotalBytesWritten() = %d, want 71", got)
	}
	if err := e.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := append([]byte{0x01}, payload...); !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("stream wrote %x, want %x", buf.Bytes(), want)
	}
}

func TestArrayOverflow(t *testing.T) {
	const n = 8
	w := NewArrayWriter(make([]byte, n))
	if err := w.WriteRaw(make([]byte, n)); err != nil {
		t.Fatalf("WriteRaw(%d bytes) = %v", n, err)
	}
	err := w.WriteRawByte(1)
	var oos *OutOfSpaceError
	if !errors.As(err, &oos) {
		t.Fatalf("WriteRawByte() = %v, want *OutOfSpaceError", err)
	}
	if diff := cmp.Diff(&OutOfSpaceError{Position: n, Limit: n, Length: 1}, oos); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
	if err := w.CheckNoSpaceLeft(); err != nil {
		t.Errorf("CheckNoSpaceLeft() = %v", err)
	}

	// A rejected write stores nothing.
	buf := make([]byte, 4)
	w = NewArrayWriterRange(buf, 1, 2)
	if err := w.WriteFixed32(0xffffffff); err == nil {
		t.Fatal("WriteFixed32 into 2 bytes succeeded")
	}
	if !bytes.Equal(buf, make([]byte, 4)) {
		t.Errorf("buffer modified by failed write: %x", buf)
	}
	if left, _ := w.SpaceLeft(); left != 2 {
		t.Errorf("SpaceLeft() = %d, want 2", left)
	}
}

func TestArrayTagValueOverflow(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *ArrayWriter) error
	}{
		{"varint", func(w *ArrayWriter) error { return w.WriteTagVarint(1, 300) }},
		{"fixed32", func(w *ArrayWriter) error { return w.WriteTagFixed32(1, 42) }},
		{"fixed64", func(w *ArrayWriter) error { return w.WriteTagFixed64(1, 42) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Room for the tag but not the value.
			buf := make([]byte, 2)
			w := NewArrayWriter(buf)
			err := tt.write(w)
			var oos *OutOfSpaceError
			if !errors.As(err, &oos) {
				t.Fatalf("write = %v, want *OutOfSpaceError", err)
			}
			if oos.Position != 0 || oos.Limit != 2 {
				t.Errorf("error = %+v, want position 0 and limit 2", oos)
			}
			if !bytes.Equal(buf, []byte{0, 0}) {
				t.Errorf("buffer modified by failed write: %x", buf)
			}
			if got := w.TotalBytesWritten(); got != 0 {
				t.Errorf("TotalBytesWritten() = %d, want 0", got)
			}
		})
	}
}

func TestArrayRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewArrayWriterRange with an invalid range did not panic")
		}
	}()
	NewArrayWriterRange(make([]byte, 4), 3, 2)
}

func TestSpaceLeftUnsupported(t *testing.T) {
	e := NewStreamEncoder(io.Discard, 0)
	if _, err := e.SpaceLeft(); err != ErrSpaceLeftUnsupported {
		t.Errorf("SpaceLeft() error = %v, want %v", err, ErrSpaceLeftUnsupported)
	}
}

func TestSinkError(t *testing.T) {
	r, w := io.Pipe()
	r.Close()
	e := NewStreamEncoder(w, 0)
	if err := e.WriteString(1, "hello"); err != nil {
		t.Fatalf("buffered write failed early: %v", err)
	}
	err := e.Flush()
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Flush() = %v, want wrapped %v", err, io.ErrClosedPipe)
	}
}

func TestPacked(t *testing.T) {
	vs := []int32{1, 2, 300}
	want := []byte{0x0a, 0x04, 0x01, 0x02, 0xac, 0x02}
	if got := SizePackedInt32(1, vs); got != len(want) {
		t.Fatalf("SizePackedInt32() = %d, want %d", got, len(want))
	}
	checkAll(t, strategies(t, len(want), func(e *Encoder) error {
		return e.WritePackedInt32(1, vs)
	}), want)

	if got := SizePackedInt32(1, nil); got != 0 {
		t.Errorf("SizePackedInt32(empty) = %d, want 0", got)
	}
	checkAll(t, strategies(t, 0, func(e *Encoder) error {
		return e.WritePackedInt32(1, nil)
	}), []byte{})
}

func TestPackedProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s64 := rapid.SliceOf(rapid.Int64()).Draw(t, "s64")
		dbl := rapid.SliceOf(rapid.Float64()).Draw(t, "dbl")
		bls := rapid.SliceOf(rapid.Bool()).Draw(t, "bools")

		var want []byte
		appendPacked := func(num protowire.Number, payload []byte) {
			if len(payload) == 0 {
				return
			}
			want = protowire.AppendTag(want, num, protowire.BytesType)
			want = protowire.AppendBytes(want, payload)
		}
		var p []byte
		for _, v := range s64 {
			p = protowire.AppendVarint(p, protowire.EncodeZigZag(v))
		}
		appendPacked(1, p)
		p = nil
		for _, v := range dbl {
			p = protowire.AppendFixed64(p, math.Float64bits(v))
		}
		appendPacked(2, p)
		p = nil
		for _, v := range bls {
			p = protowire.AppendVarint(p, protowire.EncodeBool(v))
		}
		appendPacked(3, p)

		size := SizePackedSint64(1, s64) + SizePackedDouble(2, dbl) + SizePackedBool(3, bls)
		checkAll(t, strategies(t, size, func(e *Encoder) error {
			if err := e.WritePackedSint64(1, s64); err != nil {
				return err
			}
			if err := e.WritePackedDouble(2, dbl); err != nil {
				return err
			}
			return e.WritePackedBool(3, bls)
		}), want)
	})
}

func TestGroupAndMessageSet(t *testing.T) {
	m := &testMessage{id: 5}

	var want []byte
	want = protowire.AppendTag(want, 4, protowire.StartGroupType)
	want = protowire.AppendTag(want, 1, protowire.VarintType)
	want = protowire.AppendVarint(want, 5)
	want = protowire.AppendTag(want, 4, protowire.EndGroupType)

	want = protowire.AppendTag(want, 1, protowire.StartGroupType)
	want = protowire.AppendTag(want, 2, protowire.VarintType)
	want = protowire.AppendVarint(want, 1000)
	want = protowire.AppendTag(want, 3, protowire.BytesType)
	want = protowire.AppendBytes(want, m.appendWire(nil))
	want = protowire.AppendTag(want, 1, protowire.EndGroupType)

	want = protowire.AppendTag(want, 1, protowire.StartGroupType)
	want = protowire.AppendTag(want, 2, protowire.VarintType)
	want = protowire.AppendVarint(want, 1001)
	want = protowire.AppendTag(want, 3, protowire.BytesType)
	want = protowire.AppendBytes(want, []byte{0x08, 0x05})
	want = protowire.AppendTag(want, 1, protowire.EndGroupType)

	size := SizeGroup(4, m) + SizeMessageSetExtension(1000, m) + SizeRawMessageSetExtension(1001, []byte{0x08, 0x05})
	if size != len(want) {
		t.Fatalf("size = %d, want %d", size, len(want))
	}
	checkAll(t, strategies(t, size, func(e *Encoder) error {
		if err := e.WriteGroup(4, m); err != nil {
			return err
		}
		if err := e.WriteMessageSetExtension(1000, m); err != nil {
			return err
		}
		return e.WriteRawMessageSetExtension(1001, []byte{0x08, 0x05})
	}), want)
}

func TestMarshal(t *testing.T) {
	m := &testMessage{
		id:   -3,
		name: "outer",
		child: &testMessage{
			id:   7,
			name: "inner",
		},
	}
	want := m.appendWire(nil)

	got, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
	if got := m.child.CachedSize(); got != len(m.child.appendWire(nil)) {
		t.Errorf("child CachedSize() = %d, want %d", got, len(m.child.appendWire(nil)))
	}

	prefix := []byte("hdr")
	got, err = MarshalOptions{}.MarshalAppend(prefix, m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(append([]byte("hdr"), want...), got); diff != "" {
		t.Errorf("MarshalAppend() mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := (MarshalOptions{}).MarshalTo(&buf, m); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("MarshalTo() mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := (MarshalOptions{}).MarshalDelimitedTo(&buf, m); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(protowire.AppendBytes(nil, want), buf.Bytes()); diff != "" {
		t.Errorf("MarshalDelimitedTo() mismatch (-want +got):\n%s", diff)
	}
}

// liar reports a size that disagrees with what it writes.
type liar struct{ size, write int }

func (l liar) Size() int       { return l.size }
func (l liar) CachedSize() int { return l.size }
func (l liar) MarshalTo(e *Encoder) error {
	return e.WriteRawBytes(make([]byte, l.write))
}

func TestMarshalSizeMismatch(t *testing.T) {
	if _, err := Marshal(liar{size: 4, write: 2}); err != errSpaceLeftOver {
		t.Errorf("Marshal(short write) error = %v, want %v", err, errSpaceLeftOver)
	}
	_, err := Marshal(liar{size: 2, write: 4})
	var oos *OutOfSpaceError
	if !errors.As(err, &oos) {
		t.Errorf("Marshal(long write) error = %v, want *OutOfSpaceError", err)
	}
}

func TestSizeCache(t *testing.T) {
	var c SizeCache
	if _, ok := c.Load(); ok {
		t.Fatal("zero SizeCache reports a stored size")
	}
	c.Store(0)
	if n, ok := c.Load(); !ok || n != 0 {
		t.Errorf("Load() = (%d, %v), want (0, true)", n, ok)
	}
	c.Reset()
	if _, ok := c.Load(); ok {
		t.Error("Load() after Reset reports a stored size")
	}
}
