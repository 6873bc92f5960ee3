// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	pref "github.com/protocore/protocore/reflect/protoreflect"
)

func TestFields(t *testing.T) {
	type fieldsKind struct {
		kind   pref.Kind
		fields string
	}
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum
	tests := []struct {
		inFields []fieldsKind
		wantMsg  *descriptorpb.DescriptorProto
		wantErr  string
	}{{
		inFields: []fieldsKind{{pref.MessageKind, ""}},
		wantMsg:  &descriptorpb.DescriptorProto{Name: proto.String("M")},
	}, {
		inFields: []fieldsKind{{pref.MessageKind, "987654321"}},
		wantErr:  "invalid field: 987654321",
	}, {
		inFields: []fieldsKind{{pref.MessageKind, "-1"}},
		wantErr:  "invalid field: -1",
	}, {
		inFields: []fieldsKind{{pref.MessageKind, "k"}},
		wantErr:  "invalid field: k",
	}, {
		inFields: []fieldsKind{{pref.MessageKind, "1.2"}, {pref.Int32Kind, "1"}},
		wantErr:  "field 1 of int32 type cannot have sub-fields",
	}, {
		inFields: []fieldsKind{{pref.Int32Kind, "1"}, {pref.MessageKind, "1.2"}},
		wantErr:  "field 1 of int32 type cannot have sub-fields",
	}, {
		inFields: []fieldsKind{{pref.Int32Kind, "30"}, {pref.Int32Kind, "30"}},
		wantErr:  "field 30 already set as int32 type",
	}, {
		inFields: []fieldsKind{
			{pref.Int32Kind, "10.20.31"},
			{pref.MessageKind, "  10.20.30, 10.21   "},
			{pref.GroupKind, "10"},
		},
		wantMsg: &descriptorpb.DescriptorProto{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("f10"),
				Number:   proto.Int32(10),
				Label:    optional(),
				Type:     descriptorpb.FieldDescriptorProto_TYPE_GROUP.Enum(),
				TypeName: proto.String(".M.M10"),
			}},
			NestedType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M10"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:     proto.String("f20"),
					Number:   proto.Int32(20),
					Label:    optional(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
					TypeName: proto.String(".M.M10.M20"),
				}, {
					Name:     proto.String("f21"),
					Number:   proto.Int32(21),
					Label:    optional(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
					TypeName: proto.String(".M.M10.M21"),
				}},
				NestedType: []*descriptorpb.DescriptorProto{{
					Name: proto.String("M20"),
					Field: []*descriptorpb.FieldDescriptorProto{{
						Name:     proto.String("f30"),
						Number:   proto.Int32(30),
						Label:    optional(),
						Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
						TypeName: proto.String(".M.M10.M20.M30"),
					}, {
						Name:   proto.String("f31"),
						Number: proto.Int32(31),
						Label:  repeated(),
						Type:   descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(),
					}},
					NestedType: []*descriptorpb.DescriptorProto{{
						Name: proto.String("M30"),
					}},
				}, {
					Name: proto.String("M21"),
				}},
			}},
		},
	}}

	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			var fields fields
			for i, tc := range tt.inFields {
				gotErr := fields.Set(tc.fields, tc.kind)
				if gotErr != nil {
					if tt.wantErr == "" || !strings.Contains(fmt.Sprint(gotErr), tt.wantErr) {
						t.Fatalf("fields %d, Set(%q, %v) = %v, want %v", i, tc.fields, tc.kind, gotErr, tt.wantErr)
					}
					return
				}
			}
			if tt.wantErr != "" {
				t.Fatalf("all Set calls succeeded, want %v error", tt.wantErr)
			}
			gotMsg := fields.messageDescriptor("M")
			if diff := cmp.Diff(tt.wantMsg, gotMsg, protocmp.Transform()); diff != "" {
				t.Errorf("messageDescriptor() mismatch (-want +got):\n%s", diff)
			}
			md, err := fields.Descriptor()
			require.NoError(t, err)
			require.Equal(t, pref.FullName("M"), md.FullName())
		})
	}
}

func TestDecodeWithFieldFlags(t *testing.T) {
	// f1: 150, f2 {f1: "hi"}, unknown 3: 7
	msg := []byte{0x08, 0x96, 0x01, 0x12, 0x04, 0x0a, 0x02, 'h', 'i', 0x18, 0x07}

	tests := []struct {
		name string
		args []string
		want string
	}{{
		name: "text",
		args: []string{"decode", "--ints", "1", "--messages", "2", "--strings", "2.1"},
		want: strings.Join([]string{
			"f1: [150]",
			"f2 {",
			`  f1: ["hi"]`,
			"}",
			"unknown {",
			"  3: 7",
			"}",
			"",
		}, "\n"),
	}, {
		name: "undescribed fields are unknown",
		args: []string{"decode", "--ints", "1"},
		want: strings.Join([]string{
			"f1: [150]",
			"unknown {",
			"  2: CgJoaQ==",
			"  3: 7",
			"}",
			"",
		}, "\n"),
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestState(t)
			ts.stdin.Write(msg)
			ts.expectCode(t, 0, tt.args...)
			require.Equal(t, tt.want, ts.stdout.String())
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	ts := newTestState(t)
	ts.stdin.Write([]byte{0x08, 0x96, 0x01, 0x12, 0x04, 0x0a, 0x02, 'h', 'i'})
	ts.expectCode(t, 0, "decode", "-o", "yaml", "--ints", "1", "--messages", "2", "--strings", "2.1")
	require.Equal(t, "f1: [150]\nf2:\n  f1: [\"hi\"]\n", ts.stdout.String())
}

func TestDecodeWithType(t *testing.T) {
	ts := newTestState(t)
	path := ts.writeFile(t, "set.pb", testDescriptorSet(t))
	// id: 5, inner {name: "x"}, kind: 1
	ts.stdin.Write([]byte{0x08, 0x05, 0x12, 0x03, 0x0a, 0x01, 'x', 0x18, 0x01})
	ts.expectCode(t, 0, "decode", "-d", path, "--type", ".app.Outer")
	require.Equal(t, strings.Join([]string{
		"id: 5",
		"inner {",
		`  name: "x"`,
		"}",
		"kind: KIND_ONE",
		"",
	}, "\n"), ts.stdout.String())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		input   []byte
		wantErr string
	}{{
		name:    "type without descriptor set",
		args:    []string{"decode", "--type", "app.Outer"},
		wantErr: "--type requires --descriptor-set",
	}, {
		name:    "type and field flags",
		args:    []string{"decode", "--type", "app.Outer", "--ints", "1"},
		wantErr: "cannot be combined",
	}, {
		name:    "bad field flag",
		args:    []string{"decode", "--ints", "0"},
		wantErr: "invalid field: 0",
	}, {
		name:    "truncated",
		args:    []string{"decode", "--ints", "1"},
		input:   []byte{0x08},
		wantErr: "decoding message",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestState(t)
			ts.stdin.Write(tt.input)
			ts.expectCode(t, 1, tt.args...)
			require.Contains(t, ts.stderr.String(), tt.wantErr)
		})
	}
}
