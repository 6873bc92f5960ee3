// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"
	"pgregory.net/rapid"

	"github.com/protocore/protocore/reflect/protoreflect"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	required = descriptorpb.FieldDescriptorProto_LABEL_REQUIRED.Enum()

	typeInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum()
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
	typeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM.Enum()
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
)

func int32Field(name string, num int32) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  optional,
		Type:   typeInt32,
	}
}

func mustBuild(t *testing.T, fd *descriptorpb.FileDescriptorProto, deps []*File, opts BuildOptions) *File {
	t.Helper()
	f, err := NewFile(fd, deps, opts)
	if err != nil {
		t.Fatalf("NewFile(%q): %v", fd.GetName(), err)
	}
	return f
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		fd      *descriptorpb.FileDescriptorProto
		opts    BuildOptions
		wantErr string
		wantSym protoreflect.FullName
	}{{
		name: "duplicate message",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("dup.proto"),
			Package: proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{
				{Name: proto.String("Foo")},
				{Name: proto.String("Foo")},
			},
		},
		wantErr: `"Foo" is already defined in "pkg".`,
		wantSym: "pkg.Foo",
	}, {
		name: "duplicate field number",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("dup-number.proto"),
			Package: proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name:  proto.String("Msg"),
				Field: []*descriptorpb.FieldDescriptorProto{int32Field("a", 5), int32Field("b", 5)},
			}},
		},
		wantErr: `Field number 5 has already been used in "pkg.Msg" by field "a".`,
		wantSym: "pkg.Msg.b",
	}, {
		// Bar resolves to pkg.Foo.Bar, so Bar.Baz must be pkg.Foo.Bar.Baz;
		// the top-level pkg.Bar.Baz is not considered.
		name: "scoped lookup does not fall through",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("scope.proto"),
			Package: proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name:       proto.String("Foo"),
				NestedType: []*descriptorpb.DescriptorProto{{Name: proto.String("Bar")}},
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:     proto.String("baz"),
					Number:   proto.Int32(1),
					Label:    optional,
					Type:     typeMessage,
					TypeName: proto.String("Bar.Baz"),
				}},
			}, {
				Name:       proto.String("Bar"),
				NestedType: []*descriptorpb.DescriptorProto{{Name: proto.String("Baz")}},
			}},
		},
		wantErr: `"Bar.Baz" is not defined.`,
		wantSym: "pkg.Foo.baz",
	}, {
		name: "enum collides with message",
		fd: &descriptorpb.FileDescriptorProto{
			Name:        proto.String("collide.proto"),
			Package:     proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Msg")}},
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name:  proto.String("Msg"),
				Value: []*descriptorpb.EnumValueDescriptorProto{{Name: proto.String("ZERO"), Number: proto.Int32(0)}},
			}},
		},
		wantErr: `"Msg" is already defined in "pkg".`,
	}, {
		name: "enum value collides with sibling",
		fd: &descriptorpb.FileDescriptorProto{
			Name:        proto.String("enum-scope.proto"),
			Package:     proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("ZERO")}},
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name:  proto.String("Kind"),
				Value: []*descriptorpb.EnumValueDescriptorProto{{Name: proto.String("ZERO"), Number: proto.Int32(0)}},
			}},
		},
		wantErr: `"ZERO" is already defined in "pkg".`,
	}, {
		name: "invalid identifier",
		fd: &descriptorpb.FileDescriptorProto{
			Name:        proto.String("ident.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("1Foo")}},
		},
		wantErr: `"1Foo" is not a valid identifier.`,
	}, {
		name: "empty enum",
		fd: &descriptorpb.FileDescriptorProto{
			Name:     proto.String("empty-enum.proto"),
			EnumType: []*descriptorpb.EnumDescriptorProto{{Name: proto.String("E")}},
		},
		wantErr: "Enums must contain at least one value.",
	}, {
		name: "proto3 enum starts at one",
		fd: &descriptorpb.FileDescriptorProto{
			Name:   proto.String("enum3.proto"),
			Syntax: proto.String("proto3"),
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name:  proto.String("E"),
				Value: []*descriptorpb.EnumValueDescriptorProto{{Name: proto.String("ONE"), Number: proto.Int32(1)}},
			}},
		},
		wantErr: "The first enum value must be zero in proto3.",
	}, {
		name: "proto3 required field",
		fd: &descriptorpb.FileDescriptorProto{
			Name:   proto.String("required3.proto"),
			Syntax: proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:   proto.String("f"),
					Number: proto.Int32(1),
					Label:  required,
					Type:   typeInt32,
				}},
			}},
		},
		wantErr: "Required fields are not allowed in proto3.",
	}, {
		name: "packed on singular field",
		fd: &descriptorpb.FileDescriptorProto{
			Name: proto.String("packed.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:    proto.String("f"),
					Number:  proto.Int32(1),
					Label:   optional,
					Type:    typeInt32,
					Options: &descriptorpb.FieldOptions{Packed: proto.Bool(true)},
				}},
			}},
		},
		wantErr: "[packed = true] can only be specified for repeated primitive fields.",
	}, {
		name: "field number in reserved implementation range",
		fd: &descriptorpb.FileDescriptorProto{
			Name: proto.String("impl-range.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name:  proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{int32Field("f", 19000)},
			}},
		},
		wantErr: "Field numbers 19000 through 19999 are reserved",
	}, {
		name: "extension outside declared range",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("ext-range.proto"),
			Package: proto.String("pkg"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				ExtensionRange: []*descriptorpb.DescriptorProto_ExtensionRange{{
					Start: proto.Int32(100),
					End:   proto.Int32(200),
				}},
			}},
			Extension: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("x"),
				Number:   proto.Int32(200),
				Label:    optional,
				Type:     typeInt32,
				Extendee: proto.String(".pkg.M"),
			}},
		},
		wantErr: `"pkg.M" does not declare 200 as an extension number.`,
	}, {
		name: "overlapping extension ranges",
		fd: &descriptorpb.FileDescriptorProto{
			Name: proto.String("ext-overlap.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				ExtensionRange: []*descriptorpb.DescriptorProto_ExtensionRange{
					{Start: proto.Int32(100), End: proto.Int32(200)},
					{Start: proto.Int32(150), End: proto.Int32(300)},
				},
			}},
		},
		wantErr: "overlaps with already-defined range",
	}, {
		name: "missing import",
		fd: &descriptorpb.FileDescriptorProto{
			Name:       proto.String("missing.proto"),
			Dependency: []string{"nowhere.proto"},
		},
		wantErr: `Import "nowhere.proto" was not provided.`,
	}, {
		name: "bad public import index",
		fd: &descriptorpb.FileDescriptorProto{
			Name:             proto.String("public.proto"),
			PublicDependency: []int32{3},
		},
		wantErr: "invalid or duplicate public import index: 3",
	}, {
		name: "enum type is never a placeholder",
		fd: &descriptorpb.FileDescriptorProto{
			Name: proto.String("enum-placeholder.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:     proto.String("color"),
					Number:   proto.Int32(1),
					Label:    optional,
					Type:     typeEnum,
					TypeName: proto.String(".other.Color"),
				}},
			}},
		},
		opts:    BuildOptions{AllowUnknownDependencies: true, Logger: quietLogger()},
		wantErr: `".other.Color" is not defined.`,
	}, {
		name: "bad enum default",
		fd: &descriptorpb.FileDescriptorProto{
			Name: proto.String("enum-default.proto"),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				EnumType: []*descriptorpb.EnumDescriptorProto{{
					Name:  proto.String("E"),
					Value: []*descriptorpb.EnumValueDescriptorProto{{Name: proto.String("A"), Number: proto.Int32(0)}},
				}},
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:         proto.String("e"),
					Number:       proto.Int32(1),
					Label:        optional,
					Type:         typeEnum,
					TypeName:     proto.String("E"),
					DefaultValue: proto.String("B"),
				}},
			}},
		},
		wantErr: `Enum type "M.E" has no value named "B".`,
	}, {
		name: "unsupported edition",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("edition.proto"),
			Syntax:  proto.String("editions"),
			Edition: descriptorpb.Edition_EDITION_99997_TEST_ONLY.Enum(),
		},
		wantErr: "Edition 99997 is not supported.",
	}, {
		name: "packed option under editions",
		fd: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("edition-packed.proto"),
			Syntax:  proto.String("editions"),
			Edition: descriptorpb.Edition_EDITION_2023.Enum(),
			MessageType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:    proto.String("f"),
					Number:  proto.Int32(1),
					Label:   repeated,
					Type:    typeInt32,
					Options: &descriptorpb.FieldOptions{Packed: proto.Bool(true)},
				}},
			}},
		},
		wantErr: "Field option packed is not allowed under editions.",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(tt.fd, nil, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("NewFile: got err = %v; want error containing %q", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NewFile: error %T is not a *ValidationError", err)
			}
			if verr.File != tt.fd.GetName() {
				t.Errorf("ValidationError.File = %q, want %q", verr.File, tt.fd.GetName())
			}
			if tt.wantSym != "" && verr.Symbol != tt.wantSym {
				t.Errorf("ValidationError.Symbol = %q, want %q", verr.Symbol, tt.wantSym)
			}
		})
	}
}

func TestDuplicateInIndirectImport(t *testing.T) {
	c := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:        proto.String("c.proto"),
		Package:     proto.String("pkg"),
		MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Foo")}},
	}, nil, BuildOptions{})
	b := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:       proto.String("b.proto"),
		Package:    proto.String("pkg"),
		Dependency: []string{"c.proto"},
	}, []*File{c}, BuildOptions{})

	// c.proto is not visible from a.proto, but still shares its namespace.
	_, err := NewFile(&descriptorpb.FileDescriptorProto{
		Name:        proto.String("a.proto"),
		Package:     proto.String("pkg"),
		Dependency:  []string{"b.proto"},
		MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Foo")}},
	}, []*File{b}, BuildOptions{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("NewFile(a.proto) = %v, want a *ValidationError", err)
	}
	if want := `"pkg.Foo" is already defined in file "c.proto".`; verr.Description != want {
		t.Errorf("error = %q, want %q", verr.Description, want)
	}

	// Visibility is unchanged: a.proto may not refer to pkg.Foo.
	_, err = NewFile(&descriptorpb.FileDescriptorProto{
		Name:       proto.String("a.proto"),
		Package:    proto.String("pkg"),
		Dependency: []string{"b.proto"},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Bar"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("foo"),
				Number:   proto.Int32(1),
				Label:    optional,
				Type:     typeMessage,
				TypeName: proto.String(".pkg.Foo"),
			}},
		}},
	}, []*File{b}, BuildOptions{})
	if err == nil || !strings.Contains(err.Error(), "is not defined") {
		t.Errorf("NewFile(a.proto) referring to pkg.Foo = %v, want a not defined error", err)
	}
}

func TestBuildFromMalformed(t *testing.T) {
	// name: length 5 but only one byte follows.
	_, err := BuildFrom([]byte{0x0a, 0x05, 'a'}, nil, BuildOptions{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("BuildFrom: got %v, want a *ValidationError", err)
	}
	if !strings.Contains(verr.Description, "malformed descriptor") || verr.Unwrap() == nil {
		t.Errorf("BuildFrom: got %v, want a wrapped decode error", verr)
	}
}

func TestScopedLookup(t *testing.T) {
	f := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("lookup.proto"),
		Package: proto.String("a.b"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Outer"),
			NestedType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("Inner"),
			}, {
				Name: proto.String("Shadow"),
			}},
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("shadow"),
				Number:   proto.Int32(1),
				Label:    optional,
				Type:     typeMessage,
				TypeName: proto.String("Shadow"),
			}, {
				Name:     proto.String("inner"),
				Number:   proto.Int32(2),
				Label:    optional,
				Type:     typeMessage,
				TypeName: proto.String("b.Outer.Inner"),
			}},
		}, {
			Name: proto.String("Shadow"),
		}},
	}, nil, BuildOptions{})

	outer := f.Messages().ByName("Outer")
	if got := outer.FindFieldByName("shadow").Message().FullName(); got != "a.b.Outer.Shadow" {
		t.Errorf("shadow resolved to %q, want the innermost a.b.Outer.Shadow", got)
	}
	if got := outer.FindFieldByName("inner").Message().FullName(); got != "a.b.Outer.Inner" {
		t.Errorf("inner resolved to %q, want a.b.Outer.Inner", got)
	}

	tests := []struct {
		name, relativeTo string
		want             protoreflect.FullName
		wantErr          bool
	}{
		{name: "Inner", relativeTo: "a.b.Outer.inner", want: "a.b.Outer.Inner"},
		{name: "Shadow", relativeTo: "a.b.Outer.shadow", want: "a.b.Outer.Shadow"},
		{name: "Shadow", relativeTo: "a.b.Outer", want: "a.b.Shadow"},
		{name: ".a.b.Shadow", relativeTo: "a.b.Outer.shadow", want: "a.b.Shadow"},
		{name: "Outer.inner", relativeTo: "a.b.Shadow", want: "a.b.Outer.inner"},
		{name: "Missing", relativeTo: "a.b.Outer", wantErr: true},
		{name: "Outer.Missing", relativeTo: "a.b.Shadow", wantErr: true},
	}
	for _, tt := range tests {
		d, err := f.LookupSymbol(tt.name, protoreflect.FullName(tt.relativeTo))
		if (err != nil) != tt.wantErr {
			t.Errorf("LookupSymbol(%q, %q): err = %v, wantErr %v", tt.name, tt.relativeTo, err, tt.wantErr)
			continue
		}
		if err == nil && d.FullName() != tt.want {
			t.Errorf("LookupSymbol(%q, %q) = %q, want %q", tt.name, tt.relativeTo, d.FullName(), tt.want)
		}
	}

	if d := f.FindSymbol("a.b.Outer.Inner"); d == nil || d.FullName() != "a.b.Outer.Inner" {
		t.Errorf("FindSymbol(a.b.Outer.Inner) = %v", d)
	}
	if d := f.FindSymbol("a.b"); d != nil {
		t.Errorf("FindSymbol(a.b) = %v, want nil for a package", d)
	}
	if f.FindMessageByName("a.b.Outer.Inner") == nil {
		t.Errorf("FindMessageByName(a.b.Outer.Inner) = nil")
	}
}

func TestFieldsByNumber(t *testing.T) {
	f := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name: proto.String("numbers.proto"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name:  proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{int32Field("c", 30), int32Field("a", 1), int32Field("b", 7)},
		}},
	}, nil, BuildOptions{})
	m := f.Messages().Get(0)

	var got []string
	for _, fd := range m.Fields().SortedByNumber() {
		got = append(got, string(fd.Name()))
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("SortedByNumber mismatch (-want +got):\n%s", diff)
	}
	if fd := m.FindFieldByNumber(7); fd == nil || fd.Name() != "b" {
		t.Errorf("FindFieldByNumber(7) = %v, want b", fd)
	}
	if fd := m.FindFieldByNumber(8); fd != nil {
		t.Errorf("FindFieldByNumber(8) = %v, want nil", fd.Name())
	}
	if m.Fields().Get(0).Name() != "c" {
		t.Errorf("declaration order not kept: Get(0) = %v", m.Fields().Get(0).Name())
	}
}

func TestEnumValues(t *testing.T) {
	f := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("alias.proto"),
		Package: proto.String("pkg"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name:    proto.String("Color"),
			Options: &descriptorpb.EnumOptions{AllowAlias: proto.Bool(true)},
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("RED"), Number: proto.Int32(2)},
				{Name: proto.String("NONE"), Number: proto.Int32(0)},
				{Name: proto.String("CRIMSON"), Number: proto.Int32(2)},
				{Name: proto.String("BLUE"), Number: proto.Int32(1)},
			},
		}},
	}, nil, BuildOptions{})
	e := f.Enums().Get(0)

	if got := e.Values().Distinct(); got != 3 {
		t.Errorf("Distinct() = %d, want 3", got)
	}
	if !e.AllowAlias() {
		t.Errorf("AllowAlias() = false, want true")
	}
	if v := e.FindValueByNumber(2); v == nil || v.Name() != "RED" {
		t.Errorf("FindValueByNumber(2) = %v, want the first declared alias RED", v)
	}
	if v := e.FindValueByName("CRIMSON"); v == nil || v.Number() != 2 {
		t.Errorf("FindValueByName(CRIMSON) = %v", v)
	}
	// Values are siblings of the enum, not its children.
	if v := f.FindDescriptorByName("pkg.BLUE"); v == nil {
		t.Errorf("FindDescriptorByName(pkg.BLUE) = nil")
	}
	if v := f.FindDescriptorByName("pkg.Color.BLUE"); v != nil {
		t.Errorf("FindDescriptorByName(pkg.Color.BLUE) = %v, want nil", v.FullName())
	}
}

func TestEnumAliasWithoutOption(t *testing.T) {
	values := []*descriptorpb.EnumValueDescriptorProto{
		{Name: proto.String("NONE"), Number: proto.Int32(0)},
		{Name: proto.String("RED"), Number: proto.Int32(1)},
		{Name: proto.String("CRIMSON"), Number: proto.Int32(1)},
	}
	for _, allow := range []bool{false, true} {
		t.Run(fmt.Sprint("allow_alias=", allow), func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			enum := &descriptorpb.EnumDescriptorProto{Name: proto.String("Color"), Value: values}
			if allow {
				enum.Options = &descriptorpb.EnumOptions{AllowAlias: proto.Bool(true)}
			}
			f := mustBuild(t, &descriptorpb.FileDescriptorProto{
				Name:     proto.String("alias.proto"),
				Package:  proto.String("pkg"),
				EnumType: []*descriptorpb.EnumDescriptorProto{enum},
			}, nil, BuildOptions{Logger: logger})

			e := f.Enums().Get(0)
			if e.AllowAlias() != allow {
				t.Errorf("AllowAlias() = %v, want %v", e.AllowAlias(), allow)
			}
			if v := e.FindValueByNumber(1); v == nil || v.Name() != "RED" {
				t.Errorf("FindValueByNumber(1) = %v, want RED", v)
			}
			entries := hook.AllEntries()
			if allow {
				if len(entries) != 0 {
					t.Errorf("got %d log entries, want none", len(entries))
				}
				return
			}
			if len(entries) != 1 || entries[0].Level != logrus.WarnLevel {
				t.Fatalf("got %d log entries, want one warning", len(entries))
			}
			if got := entries[0].Data["enum"]; got != "pkg.Color" {
				t.Errorf("warning enum = %v, want pkg.Color", got)
			}
		})
	}
}

func TestUnknownEnumValues(t *testing.T) {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("unknown.proto"),
		Package: proto.String("pkg"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name:  proto.String("Kind"),
			Value: []*descriptorpb.EnumValueDescriptorProto{{Name: proto.String("ZERO"), Number: proto.Int32(0)}},
		}},
	}

	t.Run("Concurrent", func(t *testing.T) {
		e := mustBuild(t, fd, nil, BuildOptions{}).Enums().Get(0)
		known := e.FindValueByNumber(0)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := protoreflect.EnumNumber(0); n < 32; n++ {
					v := e.FindValueByNumberCreatingIfUnknown(n)
					switch {
					case n == 0 && v != known:
						t.Errorf("known value 0 was synthesized")
					case n != 0 && (!v.IsUnknown() || v.Number() != n):
						t.Errorf("FindValueByNumberCreatingIfUnknown(%d) = %v", n, v.Name())
					}
				}
			}()
		}
		wg.Wait()

		v := e.FindValueByNumberCreatingIfUnknown(17)
		if got, want := v.Name(), protoreflect.Name("UNKNOWN_ENUM_VALUE_Kind_17"); got != want {
			t.Errorf("Name() = %q, want %q", got, want)
		}
		if v.Enum() != e || v.Index() != -1 {
			t.Errorf("synthesized value not attached to its enum: %v, %d", v.Enum(), v.Index())
		}
		if e.FindValueByNumberCreatingIfUnknown(17) != v {
			t.Errorf("cached value was not reused")
		}
		if e.FindValueByNumber(17) != nil {
			t.Errorf("synthesized value leaked into the declared values")
		}
	})

	t.Run("Bounded", func(t *testing.T) {
		e := mustBuild(t, fd, nil, BuildOptions{UnknownEnumValueCacheSize: 1}).Enums().Get(0)
		v := e.FindValueByNumberCreatingIfUnknown(100)
		e.FindValueByNumberCreatingIfUnknown(101)
		if e.FindValueByNumberCreatingIfUnknown(100) == v {
			t.Errorf("evicted value was returned from the cache")
		}
	})
}

func TestDefaults(t *testing.T) {
	f := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name: proto.String("defaults.proto"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:         proto.String("i"),
				Number:       proto.Int32(1),
				Label:        optional,
				Type:         typeInt32,
				DefaultValue: proto.String("-5"),
			}, {
				Name:         proto.String("s"),
				Number:       proto.Int32(2),
				Label:        optional,
				Type:         typeString,
				DefaultValue: proto.String("hello"),
			}, {
				Name:     proto.String("first"),
				Number:   proto.Int32(3),
				Label:    optional,
				Type:     typeEnum,
				TypeName: proto.String("E"),
			}, {
				Name:         proto.String("second"),
				Number:       proto.Int32(4),
				Label:        optional,
				Type:         typeEnum,
				TypeName:     proto.String("E"),
				DefaultValue: proto.String("TWO"),
			}, int32Field("plain", 5)},
			// Declared after the fields that use it.
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name: proto.String("E"),
				Value: []*descriptorpb.EnumValueDescriptorProto{
					{Name: proto.String("ONE"), Number: proto.Int32(1)},
					{Name: proto.String("TWO"), Number: proto.Int32(2)},
				},
			}},
		}},
	}, nil, BuildOptions{})
	m := f.Messages().Get(0)

	if got := m.FindFieldByName("i").Default().Int(); got != -5 {
		t.Errorf("i default = %d, want -5", got)
	}
	if got := m.FindFieldByName("s").Default().String(); got != "hello" {
		t.Errorf("s default = %q, want hello", got)
	}
	if got := m.FindFieldByName("first").Default().Enum(); got != 1 {
		t.Errorf("first default = %d, want the first value 1", got)
	}
	second := m.FindFieldByName("second")
	if got := second.Default().Enum(); got != 2 {
		t.Errorf("second default = %d, want 2", got)
	}
	if got := second.DefaultText(); got != "TWO" {
		t.Errorf("second DefaultText = %q, want TWO", got)
	}
	if got := m.FindFieldByName("plain").Default().Int(); got != 0 {
		t.Errorf("plain default = %d, want 0", got)
	}
}

func TestFeatures(t *testing.T) {
	repeatedInt32 := func(name string, num int32, opts *descriptorpb.FieldOptions) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:    proto.String(name),
			Number:  proto.Int32(num),
			Label:   repeated,
			Type:    typeInt32,
			Options: opts,
		}
	}

	proto2 := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name: proto.String("packed2.proto"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{
				repeatedInt32("plain", 1, nil),
				repeatedInt32("packed", 2, &descriptorpb.FieldOptions{Packed: proto.Bool(true)}),
			},
		}},
	}, nil, BuildOptions{}).Messages().Get(0)
	proto3 := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:   proto.String("packed3.proto"),
		Syntax: proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{
				repeatedInt32("plain", 1, nil),
				repeatedInt32("unpacked", 2, &descriptorpb.FieldOptions{Packed: proto.Bool(false)}),
			},
		}},
	}, nil, BuildOptions{}).Messages().Get(0)
	editions := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("packed-editions.proto"),
		Syntax:  proto.String("editions"),
		Edition: descriptorpb.Edition_EDITION_2023.Enum(),
		Options: &descriptorpb.FileOptions{
			Features: &descriptorpb.FeatureSet{
				RepeatedFieldEncoding: descriptorpb.FeatureSet_EXPANDED.Enum(),
			},
		},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{
				repeatedInt32("plain", 1, nil),
				repeatedInt32("packed", 2, &descriptorpb.FieldOptions{
					Features: &descriptorpb.FeatureSet{
						RepeatedFieldEncoding: descriptorpb.FeatureSet_PACKED.Enum(),
					},
				}),
				{
					Name:   proto.String("req"),
					Number: proto.Int32(3),
					Label:  optional,
					Type:   typeInt32,
					Options: &descriptorpb.FieldOptions{
						Features: &descriptorpb.FeatureSet{
							FieldPresence: descriptorpb.FeatureSet_LEGACY_REQUIRED.Enum(),
						},
					},
				},
				{
					Name:     proto.String("child"),
					Number:   proto.Int32(4),
					Label:    optional,
					Type:     typeMessage,
					TypeName: proto.String("M"),
					Options: &descriptorpb.FieldOptions{
						Features: &descriptorpb.FeatureSet{
							MessageEncoding: descriptorpb.FeatureSet_DELIMITED.Enum(),
						},
					},
				},
			},
		}},
	}, nil, BuildOptions{}).Messages().Get(0)

	tests := []struct {
		m     *Message
		field protoreflect.Name
		want  bool
	}{
		{proto2, "plain", false},
		{proto2, "packed", true},
		{proto3, "plain", true},
		{proto3, "unpacked", false},
		{editions, "plain", false},
		{editions, "packed", true},
	}
	for _, tt := range tests {
		fd := tt.m.FindFieldByName(tt.field)
		if got := fd.IsPacked(); got != tt.want {
			t.Errorf("%v.IsPacked() = %v, want %v", fd.FullName(), got, tt.want)
		}
	}

	if got := editions.FindFieldByName("req").Cardinality(); got != protoreflect.Required {
		t.Errorf("LEGACY_REQUIRED field has cardinality %v, want required", got)
	}
	if got := editions.FindFieldByName("child").Kind(); got != protoreflect.GroupKind {
		t.Errorf("DELIMITED message field has kind %v, want group", got)
	}
	if !proto3.FindFieldByName("plain").Syntax().IsValid() {
		t.Errorf("Syntax() of a proto3 field is invalid")
	}
}

func TestPlaceholders(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	f := mustBuild(t, &descriptorpb.FileDescriptorProto{
		Name:       proto.String("placeholder.proto"),
		Package:    proto.String("pkg"),
		Dependency: []string{"other.proto"},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("M"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("other"),
				Number:   proto.Int32(1),
				Label:    optional,
				Type:     typeMessage,
				TypeName: proto.String(".other.Missing"),
			}},
		}},
	}, nil, BuildOptions{AllowUnknownDependencies: true, Logger: logger})

	if imp := f.Imports()[0]; !imp.IsPlaceholder() || imp.Path() != "other.proto" {
		t.Errorf("import = %v (placeholder %v), want placeholder other.proto", imp.Path(), imp.IsPlaceholder())
	}
	msg := f.Messages().Get(0).FindFieldByName("other").Message()
	if !msg.IsPlaceholder() || msg.FullName() != "other.Missing" {
		t.Fatalf("field type = %v (placeholder %v), want placeholder other.Missing", msg.FullName(), msg.IsPlaceholder())
	}
	if got, want := msg.ParentFile().Path(), "other.Missing"+placeholderSuffix; got != want {
		t.Errorf("placeholder file = %q, want %q", got, want)
	}

	var symbols []string
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.WarnLevel {
			t.Errorf("unexpected %v entry: %s", e.Level, e.Message)
		}
		if s, ok := e.Data["symbol"]; ok {
			symbols = append(symbols, fmt.Sprint(s))
		}
	}
	if diff := cmp.Diff([]string{"other.Missing"}, symbols); diff != "" {
		t.Errorf("placeholder warnings mismatch (-want +got):\n%s", diff)
	}
	if len(hook.AllEntries()) != 2 {
		t.Errorf("got %d log entries, want one per placeholder import and type", len(hook.AllEntries()))
	}
}

func TestToFileDescriptorProto(t *testing.T) {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("roundtrip.proto"),
		Package: proto.String("rt"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{GoPackage: proto.String("example.com/rt")},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Item"),
			Field: []*descriptorpb.FieldDescriptorProto{{
				Name:     proto.String("id"),
				Number:   proto.Int32(1),
				Label:    optional,
				Type:     typeInt32,
				JsonName: proto.String("identifier"),
			}, {
				Name:     proto.String("kind"),
				Number:   proto.Int32(2),
				Label:    optional,
				Type:     typeEnum,
				TypeName: proto.String(".rt.Item.Kind"),
			}, {
				Name:     proto.String("labels"),
				Number:   proto.Int32(3),
				Label:    repeated,
				Type:     typeMessage,
				TypeName: proto.String(".rt.Item.LabelsEntry"),
			}, {
				Name:           proto.String("note"),
				Number:         proto.Int32(4),
				Label:          optional,
				Type:           typeString,
				OneofIndex:     proto.Int32(0),
				Proto3Optional: proto.Bool(true),
			}},
			NestedType: []*descriptorpb.DescriptorProto{{
				Name: proto.String("LabelsEntry"),
				Field: []*descriptorpb.FieldDescriptorProto{{
					Name:   proto.String("key"),
					Number: proto.Int32(1),
					Label:  optional,
					Type:   typeString,
				}, {
					Name:   proto.String("value"),
					Number: proto.Int32(2),
					Label:  optional,
					Type:   typeString,
				}},
				Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
			}},
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name: proto.String("Kind"),
				Value: []*descriptorpb.EnumValueDescriptorProto{
					{Name: proto.String("KIND_UNSPECIFIED"), Number: proto.Int32(0)},
					{Name: proto.String("KIND_BOOK"), Number: proto.Int32(1)},
				},
			}},
			OneofDecl:     []*descriptorpb.OneofDescriptorProto{{Name: proto.String("_note")}},
			ReservedRange: []*descriptorpb.DescriptorProto_ReservedRange{{Start: proto.Int32(10), End: proto.Int32(20)}},
			ReservedName:  []string{"old"},
		}},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Store"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:            proto.String("Watch"),
				InputType:       proto.String(".rt.Item"),
				OutputType:      proto.String(".rt.Item"),
				ServerStreaming: proto.Bool(true),
			}},
		}},
	}
	f := mustBuild(t, fd, nil, BuildOptions{})

	if diff := cmp.Diff(fd, ToFileDescriptorProto(f), protocmp.Transform()); diff != "" {
		t.Errorf("ToFileDescriptorProto mismatch (-want +got):\n%s", diff)
	}

	m := f.Messages().Get(0)
	if !m.FindFieldByName("labels").IsMap() {
		t.Errorf("labels is not a map")
	}
	if o := m.FindFieldByName("note").ContainingOneof(); o == nil || !o.IsSynthetic() {
		t.Errorf("note is not in a synthetic oneof")
	}
	if fd := m.FindFieldByJSONName("identifier"); fd == nil || fd.Name() != "id" {
		t.Errorf("FindFieldByJSONName(identifier) = %v", fd)
	}
	if out := f.Services().Get(0).Methods().Get(0).Output(); out != m {
		t.Errorf("method output = %v, want %v", out.FullName(), m.FullName())
	}
}

func TestJSONName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"foo", "foo"},
		{"foo_bar", "fooBar"},
		{"foo_bar_baz", "fooBarBaz"},
		{"_foo", "Foo"},
		{"foo__bar", "fooBar"},
		{"foo_1", "foo1"},
	}
	for _, tt := range tests {
		if got := jsonName(protoreflect.Name(tt.in)); got != tt.want {
			t.Errorf("jsonName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z_][a-z0-9_]{0,16}`).Draw(t, "name")
		got := jsonName(protoreflect.Name(s))
		if strings.Contains(got, "_") {
			t.Fatalf("jsonName(%q) = %q contains an underscore", s, got)
		}
		if len(got) != len(s)-strings.Count(s, "_") {
			t.Fatalf("jsonName(%q) = %q: only underscores may be dropped", s, got)
		}
	})
}

func quietLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}
