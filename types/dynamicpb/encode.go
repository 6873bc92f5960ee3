// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import (
	"github.com/protocore/protocore/encoding/coded"
	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/internal/mapsort"
	"github.com/protocore/protocore/reflect/protodesc"
	pref "github.com/protocore/protocore/reflect/protoreflect"
)

// Size returns the encoded size of m and stores it, along with the sizes
// of all nested messages, for use by MarshalTo.
func (m *Message) Size() int {
	n := 0
	for _, num := range m.populated() {
		fd := m.fieldByNumber(pref.FieldNumber(num))
		n += m.sizeField(fd, m.known[pref.FieldNumber(num)])
	}
	n += len(m.unknown)
	m.sizeCache.Store(n)
	return n
}

// CachedSize returns the size stored by the last call to Size.
func (m *Message) CachedSize() int {
	if n, ok := m.sizeCache.Load(); ok {
		return n
	}
	return m.Size()
}

// MarshalTo writes the fields of m in field number order followed by the
// unknown fields.
func (m *Message) MarshalTo(e *coded.Encoder) error {
	for _, num := range m.populated() {
		fd := m.fieldByNumber(pref.FieldNumber(num))
		if err := m.writeField(e, fd, m.known[pref.FieldNumber(num)]); err != nil {
			return err
		}
	}
	if len(m.unknown) > 0 {
		return e.WriteRawBytes(m.unknown)
	}
	return nil
}

// Marshal returns the wire encoding of m.
func (m *Message) Marshal() ([]byte, error) {
	return coded.Marshal(m)
}

// isMessageSetItem reports whether fd is encoded as an item of the
// MessageSet wire format.
func (m *Message) isMessageSetItem(fd *protodesc.Field) bool {
	return m.desc.IsMessageSet() && fd.IsExtension() && fd.Kind() == pref.MessageKind && fd.Cardinality() != pref.Repeated
}

func (m *Message) sizeField(fd *protodesc.Field, v pref.Value) int {
	num := fd.Number()
	switch {
	case fd.IsMap():
		n := 0
		v.Interface().(*Map).Range(func(k pref.MapKey, v pref.Value) bool {
			n += coded.SizeMessage(num, &mapEntry{field: fd, key: k, val: v})
			return true
		})
		return n
	case fd.IsPacked():
		list := v.Interface().(*List)
		return coded.SizeTag(num) + coded.SizeLength(sizePayload(fd, list))
	case fd.IsList():
		n := 0
		for _, v := range v.Interface().(*List).list {
			n += sizeSingular(num, fd, v)
		}
		return n
	case m.isMessageSetItem(fd):
		return coded.SizeMessageSetExtension(num, v.Interface().(*Message))
	}
	return sizeSingular(num, fd, v)
}

func (m *Message) writeField(e *coded.Encoder, fd *protodesc.Field, v pref.Value) error {
	num := fd.Number()
	switch {
	case fd.IsMap():
		mp := v.Interface().(*Map)
		keys := mp.keys()
		if e.Deterministic() {
			mapsort.Sort(keys, fd.MapKey().Kind())
		}
		for _, k := range keys {
			entry := &mapEntry{field: fd, key: k, val: mp.Get(k)}
			entry.Size()
			if err := e.WriteMessage(num, entry); err != nil {
				return err
			}
		}
		return nil
	case fd.IsPacked():
		list := v.Interface().(*List)
		if err := e.WriteTag(num, wire.BytesType); err != nil {
			return err
		}
		if err := e.WriteUint32NoTag(uint32(sizePayload(fd, list))); err != nil {
			return err
		}
		for _, v := range list.list {
			if err := writeNoTag(e, fd.Kind(), v); err != nil {
				return err
			}
		}
		return nil
	case fd.IsList():
		for _, v := range v.Interface().(*List).list {
			if err := writeSingular(e, num, fd, v); err != nil {
				return err
			}
		}
		return nil
	case m.isMessageSetItem(fd):
		return e.WriteMessageSetExtension(num, v.Interface().(*Message))
	}
	return writeSingular(e, num, fd, v)
}

func sizePayload(fd *protodesc.Field, list *List) int {
	n := 0
	for _, v := range list.list {
		n += sizeNoTag(fd.Kind(), v)
	}
	return n
}

func sizeSingular(num wire.Number, fd *protodesc.Field, v pref.Value) int {
	switch fd.Kind() {
	case pref.MessageKind:
		return coded.SizeMessage(num, v.Interface().(*Message))
	case pref.GroupKind:
		return coded.SizeGroup(num, v.Interface().(*Message))
	}
	return coded.SizeTag(num) + sizeNoTag(fd.Kind(), v)
}

func sizeNoTag(kind pref.Kind, v pref.Value) int {
	switch kind {
	case pref.BoolKind:
		return coded.SizeBoolNoTag(v.Bool())
	case pref.EnumKind:
		return coded.SizeEnumNoTag(int32(v.Enum()))
	case pref.Int32Kind:
		return coded.SizeInt32NoTag(int32(v.Int()))
	case pref.Sint32Kind:
		return coded.SizeSint32NoTag(int32(v.Int()))
	case pref.Uint32Kind:
		return coded.SizeUint32NoTag(uint32(v.Uint()))
	case pref.Int64Kind:
		return coded.SizeInt64NoTag(v.Int())
	case pref.Sint64Kind:
		return coded.SizeSint64NoTag(v.Int())
	case pref.Uint64Kind:
		return coded.SizeUint64NoTag(v.Uint())
	case pref.Sfixed32Kind, pref.Fixed32Kind, pref.FloatKind:
		return wire.Fixed32Len
	case pref.Sfixed64Kind, pref.Fixed64Kind, pref.DoubleKind:
		return wire.Fixed64Len
	case pref.StringKind:
		return coded.SizeStringNoTag(v.String())
	case pref.BytesKind:
		return coded.SizeBytesNoTag(v.Bytes())
	}
	panic(errors.New("invalid kind %v", kind))
}

func writeSingular(e *coded.Encoder, num wire.Number, fd *protodesc.Field, v pref.Value) error {
	switch fd.Kind() {
	case pref.MessageKind:
		return e.WriteMessage(num, v.Interface().(*Message))
	case pref.GroupKind:
		return e.WriteGroup(num, v.Interface().(*Message))
	}
	if err := e.WriteTag(num, fd.Kind().WireType()); err != nil {
		return err
	}
	return writeNoTag(e, fd.Kind(), v)
}

func writeNoTag(e *coded.Encoder, kind pref.Kind, v pref.Value) error {
	switch kind {
	case pref.BoolKind:
		return e.WriteBoolNoTag(v.Bool())
	case pref.EnumKind:
		return e.WriteEnumNoTag(int32(v.Enum()))
	case pref.Int32Kind:
		return e.WriteInt32NoTag(int32(v.Int()))
	case pref.Sint32Kind:
		return e.WriteSint32NoTag(int32(v.Int()))
	case pref.Uint32Kind:
		return e.WriteUint32NoTag(uint32(v.Uint()))
	case pref.Int64Kind:
		return e.WriteInt64NoTag(v.Int())
	case pref.Sint64Kind:
		return e.WriteSint64NoTag(v.Int())
	case pref.Uint64Kind:
		return e.WriteUint64NoTag(v.Uint())
	case pref.Sfixed32Kind:
		return e.WriteSfixed32NoTag(int32(v.Int()))
	case pref.Fixed32Kind:
		return e.WriteFixed32NoTag(uint32(v.Uint()))
	case pref.FloatKind:
		return e.WriteFloatNoTag(float32(v.Float()))
	case pref.Sfixed64Kind:
		return e.WriteSfixed64NoTag(v.Int())
	case pref.Fixed64Kind:
		return e.WriteFixed64NoTag(v.Uint())
	case pref.DoubleKind:
		return e.WriteDoubleNoTag(v.Float())
	case pref.StringKind:
		return e.WriteStringNoTag(v.String())
	case pref.BytesKind:
		return e.WriteBytesNoTag(v.Bytes())
	}
	return errors.New("invalid kind %v", kind)
}

// mapEntry is the synthesized message holding one entry of a map field.
// Both the key and the value are always written.
type mapEntry struct {
	field *protodesc.Field
	key   pref.MapKey
	val   pref.Value
	size  int
}

func (x *mapEntry) Size() int {
	x.size = sizeSingular(1, x.field.MapKey(), x.key.Value()) + sizeSingular(2, x.field.MapValue(), x.val)
	return x.size
}

func (x *mapEntry) CachedSize() int { return x.size }

func (x *mapEntry) MarshalTo(e *coded.Encoder) error {
	if err := writeSingular(e, 1, x.field.MapKey(), x.key.Value()); err != nil {
		return err
	}
	return writeSingular(e, 2, x.field.MapValue(), x.val)
}
