// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defval

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	pref "github.com/protocore/protocore/reflect/protoreflect"
)

func Test(t *testing.T) {
	V := pref.ValueOf
	tests := []struct {
		val  pref.Value
		kind pref.Kind
		str  string
	}{
		{V(bool(true)), pref.BoolKind, "true"},
		{V(int32(-0x1234)), pref.Int32Kind, "-4660"},
		{V(uint64(math.MaxUint64)), pref.Uint64Kind, "18446744073709551615"},
		{V(float32(math.Pi)), pref.FloatKind, "3.1415927"},
		{V(float64(math.Pi)), pref.DoubleKind, "3.141592653589793"},
		{V(math.Inf(-1)), pref.DoubleKind, "-inf"},
		{V(string("hello, \xde\xad\xbe\xef\n")), pref.StringKind, "hello, \xde\xad\xbe\xef\n"},
		{V([]byte("hello, \xde\xad\xbe\xef\n")), pref.BytesKind, "hello, \\336\\255\\276\\357\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			gotStr, err := Marshal(tt.val, tt.kind)
			if err != nil {
				t.Fatalf("Marshal(%v, %v) error: %v", tt.val, tt.kind, err)
			}
			if gotStr != tt.str {
				t.Errorf("Marshal(%v, %v) = %q, want %q", tt.val, tt.kind, gotStr, tt.str)
			}

			gotVal, err := Unmarshal(tt.str, tt.kind)
			if err != nil {
				t.Fatalf("Unmarshal(%q, %v) error: %v", tt.str, tt.kind, err)
			}
			if diff := cmp.Diff(tt.val.Interface(), gotVal.Interface()); diff != "" {
				t.Errorf("Unmarshal(%q, %v) mismatch (-want +got):\n%s", tt.str, tt.kind, diff)
			}
		})
	}
}

func TestUnmarshalForms(t *testing.T) {
	tests := []struct {
		in   string
		kind pref.Kind
		want interface{}
	}{
		{"0x10", pref.Int32Kind, int32(16)},
		{"-0x10", pref.Sint64Kind, int64(-16)},
		{"010", pref.Uint32Kind, uint32(8)},
		{"FOO", pref.EnumKind, "FOO"},
		{`\x41\101\"\?`, pref.BytesKind, []byte(`AA"?`)},
		{`\0`, pref.BytesKind, []byte{0}},
	}
	for _, tt := range tests {
		got, err := Unmarshal(tt.in, tt.kind)
		if err != nil {
			t.Errorf("Unmarshal(%q, %v) error: %v", tt.in, tt.kind, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got.Interface()); diff != "" {
			t.Errorf("Unmarshal(%q, %v) mismatch (-want +got):\n%s", tt.in, tt.kind, diff)
		}
	}

	nan, err := Unmarshal("nan", pref.FloatKind)
	if err != nil || !math.IsNaN(nan.Float()) {
		t.Errorf("Unmarshal(nan) = %v, %v", nan, err)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind pref.Kind
	}{
		{"yes", pref.BoolKind},
		{"1.5", pref.Int32Kind},
		{"4294967296", pref.Uint32Kind},
		{"-1", pref.Uint64Kind},
		{"1FOO", pref.EnumKind},
		{`\q`, pref.BytesKind},
		{`\`, pref.BytesKind},
		{`\777`, pref.BytesKind},
		{"", pref.MessageKind},
	}
	for _, tt := range tests {
		if _, err := Unmarshal(tt.in, tt.kind); err == nil {
			t.Errorf("Unmarshal(%q, %v) succeeded, want error", tt.in, tt.kind)
		}
	}
}
