// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb_test

import (
	"flag"
	"fmt"
	"testing"

	"google.golang.org/protobuf/proto"
	gprotodesc "google.golang.org/protobuf/reflect/protodesc"
	gdynamicpb "google.golang.org/protobuf/types/dynamicpb"

	"github.com/protocore/protocore/encoding/coded"
	pref "github.com/protocore/protocore/reflect/protoreflect"
	"github.com/protocore/protocore/types/dynamicpb"
)

// The results of these microbenchmarks are unlikely to correspond well
// to real world peformance. They are mainly useful as a quick check to
// detect unexpected regressions and for profiling specific cases.

var benchRef = flag.Bool("ref", false, "benchmark the google.golang.org/protobuf implementation")

const (
	intValue   = 1 << 30
	floatValue = 3.14159265
	strValue   = "hello world"

	maxRecurseLevel = 3
)

func makeMessage(b *testing.B) *dynamicpb.Message {
	md := build(b, proto3File()).FindMessageByName("test.All")
	m := dynamicpb.New(md)
	fillMessage(m, 0)
	return m
}

func fillMessage(m *dynamicpb.Message, level int) {
	if level > maxRecurseLevel {
		return
	}
	fields := m.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		switch {
		case fd.IsMap():
			setMap(m.Mutable(fd).Interface().(*dynamicpb.Map))
		case fd.IsList():
			setList(m.Mutable(fd).Interface().(*dynamicpb.List), fd.Kind(), level)
		case fd.Message() != nil:
			fillMessage(m.Mutable(fd).Interface().(*dynamicpb.Message), level+1)
		default:
			m.Set(fd, scalarField(fd.Kind()))
		}
	}
}

func scalarField(kind pref.Kind) pref.Value {
	switch kind {
	case pref.Int32Kind, pref.Sint32Kind, pref.Sfixed32Kind:
		return pref.ValueOf(int32(intValue))

	case pref.Int64Kind, pref.Sint64Kind, pref.Sfixed64Kind:
		return pref.ValueOf(int64(intValue))

	case pref.Uint64Kind, pref.Fixed64Kind:
		return pref.ValueOf(uint64(intValue))

	case pref.DoubleKind:
		return pref.ValueOf(float64(floatValue))

	case pref.BytesKind:
		return pref.ValueOf([]byte(strValue))

	case pref.StringKind:
		return pref.ValueOf(strValue)

	case pref.EnumKind:
		return pref.ValueOf(pref.EnumNumber(1))
	}

	panic(fmt.Sprintf("Field.Kind %v is not used by the benchmark message", kind))
}

func setList(list *dynamicpb.List, kind pref.Kind, level int) {
	switch kind {
	case pref.MessageKind, pref.GroupKind:
		for i := 0; i < 10; i++ {
			m := list.NewMessage()
			fillMessage(m, level+1)
			list.Append(pref.ValueOf(m))
		}
	default:
		for i := 0; i < 100; i++ {
			list.Append(scalarField(kind))
		}
	}
}

func setMap(mmap *dynamicpb.Map) {
	for i := 0; i < 10; i++ {
		mmap.Set(pref.ValueOf(fmt.Sprint(strValue, i)).MapKey(), pref.ValueOf(int32(i)))
	}
}

func BenchmarkMarshal(b *testing.B) {
	m := makeMessage(b)
	if *benchRef {
		ref := refMessage(b, m)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := proto.Marshal(ref); err != nil {
				b.Fatal(err)
			}
		}
		return
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Marshal(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshalDeterministic(b *testing.B) {
	m := makeMessage(b)
	if *benchRef {
		ref := refMessage(b, m)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := (proto.MarshalOptions{Deterministic: true}).Marshal(ref); err != nil {
				b.Fatal(err)
			}
		}
		return
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (coded.MarshalOptions{Deterministic: true}).Marshal(m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	m := makeMessage(b)
	in, err := m.Marshal()
	if err != nil {
		b.Fatal(err)
	}
	if *benchRef {
		ref := refMessage(b, m)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := proto.Unmarshal(in, ref.ProtoReflect().New().Interface()); err != nil {
				b.Fatal(err)
			}
		}
		return
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dynamicpb.Unmarshal(in, dynamicpb.New(m.Descriptor())); err != nil {
			b.Fatal(err)
		}
	}
}

// refMessage returns m decoded into the reference dynamic message type.
func refMessage(b *testing.B, m *dynamicpb.Message) *gdynamicpb.Message {
	b.Helper()
	gfd, err := gprotodesc.NewFile(proto3File(), nil)
	if err != nil {
		b.Fatal(err)
	}
	in, err := m.Marshal()
	if err != nil {
		b.Fatal(err)
	}
	ref := gdynamicpb.NewMessage(gfd.Messages().ByName("All"))
	if err := proto.Unmarshal(in, ref); err != nil {
		b.Fatal(err)
	}
	return ref
}
