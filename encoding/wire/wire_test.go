// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
	"pgregory.net/rapid"
)

func TestVarint(t *testing.T) {
	tests := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{150, []byte{0x96, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, tt := range tests {
		got := AppendVarint(nil, tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("AppendVarint(%d) = %x, want %x", tt.in, got, tt.want)
		}
		if n := SizeVarint64(tt.in); n != len(tt.want) {
			t.Errorf("SizeVarint64(%d) = %d, want %d", tt.in, n, len(tt.want))
		}
		v, n := ConsumeVarint(tt.want)
		if n != len(tt.want) || v != tt.in {
			t.Errorf("ConsumeVarint(%x) = (%d, %d), want (%d, %d)", tt.want, v, n, tt.in, len(tt.want))
		}
		buf := make([]byte, MaxVarintLen64)
		if n := PutVarint(buf, tt.in); !bytes.Equal(buf[:n], tt.want) {
			t.Errorf("PutVarint(%d) = %x, want %x", tt.in, buf[:n], tt.want)
		}
	}
}

func TestSizeVarintBoundaries(t *testing.T) {
	for shift := 0; shift < 64; shift++ {
		for _, v := range []uint64{1<<shift - 1, 1 << shift} {
			want := protowire.SizeVarint(v)
			if got := SizeVarint64(v); got != want {
				t.Errorf("SizeVarint64(%#x) = %d, want %d", v, got, want)
			}
			if v <= math.MaxUint32 {
				if got := SizeVarint32(uint32(v)); got != want {
					t.Errorf("SizeVarint32(%#x) = %d, want %d", v, got, want)
				}
			}
		}
	}
	if got := SizeVarint64(math.MaxUint64); got != MaxVarintLen64 {
		t.Errorf("SizeVarint64(MaxUint64) = %d, want %d", got, MaxVarintLen64)
	}
}

func TestNegativeInt32(t *testing.T) {
	neg := int32(-1)
	got := AppendVarint(nil, uint64(int64(neg)))
	want := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("encode(-1) = %x, want %x", got, want)
	}
	if n := SizeVarintInt32(-1); n != 10 {
		t.Errorf("SizeVarintInt32(-1) = %d, want 10", n)
	}
	if n := SizeVarintInt32(math.MaxInt32); n != 5 {
		t.Errorf("SizeVarintInt32(MaxInt32) = %d, want 5", n)
	}
}

func TestTag(t *testing.T) {
	if got, want := EncodeTag(1, VarintType), uint64(0x08); got != want {
		t.Errorf("EncodeTag(1, varint) = %#x, want %#x", got, want)
	}
	num, typ := DecodeTag(EncodeTag(37, VarintType))
	if num != 37 || typ != VarintType {
		t.Errorf("DecodeTag(EncodeTag(37, varint)) = (%d, %v), want (37, varint)", num, typ)
	}
	if got := SizeTag(MaxValidNumber); got != 5 {
		t.Errorf("SizeTag(MaxValidNumber) = %d, want 5", got)
	}
	if num, _ := DecodeTag(math.MaxUint64); num != -1 {
		t.Errorf("DecodeTag(overflow) number = %d, want -1", num)
	}
}

func TestZigZag(t *testing.T) {
	tests := []struct {
		in   int64
		want uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{math.MaxInt32, math.MaxUint32 - 1},
		{math.MinInt32, math.MaxUint32},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	}
	for _, tt := range tests {
		if got := EncodeZigZag64(tt.in); got != tt.want {
			t.Errorf("EncodeZigZag64(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if tt.in >= math.MinInt32 && tt.in <= math.MaxInt32 {
			if got := EncodeZigZag32(int32(tt.in)); uint64(got) != tt.want {
				t.Errorf("EncodeZigZag32(%d) = %d, want %d", tt.in, got, tt.want)
			}
		}
	}
}

func TestFixed(t *testing.T) {
	if got, want := AppendFixed32(nil, 0x01020304), []byte{0x04, 0x03, 0x02, 0x01}; !bytes.Equal(got, want) {
		t.Errorf("AppendFixed32 = %x, want %x", got, want)
	}
	if got, want := AppendFixed64(nil, 0x0102030405060708), []byte{8, 7, 6, 5, 4, 3, 2, 1}; !bytes.Equal(got, want) {
		t.Errorf("AppendFixed64 = %x, want %x", got, want)
	}
	if _, n := ConsumeFixed64([]byte{1, 2, 3}); ParseError(n) != io.ErrUnexpectedEOF {
		t.Errorf("ConsumeFixed64(short) error = %v, want %v", ParseError(n), io.ErrUnexpectedEOF)
	}
}

func TestConsumeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int
	}{
		{"empty", nil, errCodeTruncated},
		{"truncated", []byte{0x80}, errCodeTruncated},
		{"overflow", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, errCodeOverflow},
		{"too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, errCodeOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, n := ConsumeVarint(tt.in); n != tt.want {
				t.Errorf("ConsumeVarint(%x) = %d, want %d", tt.in, n, tt.want)
			}
		})
	}
}

func TestConsumeField(t *testing.T) {
	var b []byte
	b = AppendTag(b, 1, StartGroupType)
	b = AppendTag(b, 2, VarintType)
	b = AppendVarint(b, 150)
	b = AppendTag(b, 3, BytesType)
	b = AppendString(b, "abc")
	b = AppendTag(b, 1, EndGroupType)

	num, typ, n := ConsumeField(b)
	if num != 1 || typ != StartGroupType || n != len(b) {
		t.Fatalf("ConsumeField() = (%d, %v, %d), want (1, start_group, %d)", num, typ, n, len(b))
	}
	v, n := ConsumeGroup(1, b[1:])
	if n != len(b)-1 {
		t.Fatalf("ConsumeGroup() length = %d, want %d", n, len(b)-1)
	}
	if diff := cmp.Diff(b[1:len(b)-1], v); diff != "" {
		t.Errorf("ConsumeGroup() value mismatch (-want +got):\n%s", diff)
	}

	bad := append(append([]byte(nil), b[:len(b)-1]...), byte(EncodeTag(2, EndGroupType)))
	if _, _, n := ConsumeField(bad); ParseError(n) != errEndGroup {
		t.Errorf("ConsumeField(mismatched end group) error = %v, want %v", ParseError(n), errEndGroup)
	}
}

func TestVarintProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64().Draw(t, "v")
		b := AppendVarint(nil, v)
		if len(b) != SizeVarint64(v) {
			t.Fatalf("len(AppendVarint(%d)) = %d, SizeVarint64 = %d", v, len(b), SizeVarint64(v))
		}
		got, n := ConsumeVarint(b)
		if got != v || n != len(b) {
			t.Fatalf("ConsumeVarint(AppendVarint(%d)) = (%d, %d)", v, got, n)
		}
		if want := protowire.AppendVarint(nil, v); !bytes.Equal(b, want) {
			t.Fatalf("AppendVarint(%d) = %x, protowire = %x", v, b, want)
		}

		u := rapid.Uint32().Draw(t, "u")
		if SizeVarint32(u) != SizeVarint64(uint64(u)) {
			t.Fatalf("SizeVarint32(%d) = %d, SizeVarint64 = %d", u, SizeVarint32(u), SizeVarint64(uint64(u)))
		}
	})
}

func TestZigZagProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Int32().Draw(t, "x")
		if got := DecodeZigZag32(EncodeZigZag32(x)); got != x {
			t.Fatalf("DecodeZigZag32(EncodeZigZag32(%d)) = %d", x, got)
		}
		y := rapid.Int64().Draw(t, "y")
		if got := DecodeZigZag64(EncodeZigZag64(y)); got != y {
			t.Fatalf("DecodeZigZag64(EncodeZigZag64(%d)) = %d", y, got)
		}
		if got, want := EncodeZigZag64(y), protowire.EncodeZigZag(y); got != want {
			t.Fatalf("EncodeZigZag64(%d) = %d, protowire = %d", y, got, want)
		}
	})
}

func TestTagProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		num := Number(rapid.Int32Range(int32(MinValidNumber), int32(MaxValidNumber)).Draw(t, "num"))
		typ := Type(rapid.IntRange(0, 5).Draw(t, "typ"))
		gotNum, gotTyp := DecodeTag(EncodeTag(num, typ))
		if gotNum != num || gotTyp != typ {
			t.Fatalf("DecodeTag(EncodeTag(%d, %v)) = (%d, %v)", num, typ, gotNum, gotTyp)
		}
		if got, want := AppendTag(nil, num, typ), protowire.AppendTag(nil, protowire.Number(num), protowire.Type(typ)); !bytes.Equal(got, want) {
			t.Fatalf("AppendTag(%d, %v) = %x, protowire = %x", num, typ, got, want)
		}
	})
}
