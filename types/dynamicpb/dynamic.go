// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynamicpb creates protocol buffer messages from linked
// descriptors.
//
// A Message holds the values of any message type known only through a
// *protodesc.Message. It encodes itself with the coded package and decodes
// the wire format with Unmarshal.
//
// Field values are protoreflect.Value. Singular message fields hold a
// *Message, repeated fields a *List and map fields a *Map.
package dynamicpb

import (
	"math"

	"github.com/protocore/protocore/encoding/coded"
	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/internal/set"
	"github.com/protocore/protocore/reflect/protodesc"
	pref "github.com/protocore/protocore/reflect/protoreflect"
)

// A Message is a dynamically constructed protocol buffer message.
//
// Message implements coded.Message, so it can be marshaled with the coded
// package. A Message is not safe for concurrent mutation.
type Message struct {
	desc    *protodesc.Message
	known   map[pref.FieldNumber]pref.Value
	ext     map[pref.FieldNumber]*protodesc.Field
	unknown pref.RawFields

	sizeCache coded.SizeCache
	parent    *Message // message whose field, list or map last stored m
}

var _ coded.Message = (*Message)(nil)

// New creates a new empty message of the type described by desc.
func New(desc *protodesc.Message) *Message {
	return &Message{
		desc:  desc,
		known: make(map[pref.FieldNumber]pref.Value),
		ext:   make(map[pref.FieldNumber]*protodesc.Field),
	}
}

// Descriptor returns the message descriptor.
func (m *Message) Descriptor() *protodesc.Message {
	return m.desc
}

// Len returns the number of populated fields, extensions included.
func (m *Message) Len() int {
	n := 0
	for num, v := range m.known {
		if isSet(m.fieldByNumber(num), v) {
			n++
		}
	}
	return n
}

// Range visits every populated field, extensions included, in field number
// order until f returns false.
func (m *Message) Range(f func(*protodesc.Field, pref.Value) bool) {
	for _, num := range m.populated() {
		fd := m.fieldByNumber(pref.FieldNumber(num))
		if !f(fd, m.known[pref.FieldNumber(num)]) {
			return
		}
	}
}

// populated returns the numbers of the populated fields in increasing
// order.
func (m *Message) populated() []int {
	var nums set.Ints
	for num, v := range m.known {
		if isSet(m.fieldByNumber(num), v) {
			nums.Set(int(num))
		}
	}
	return nums.Sorted()
}

func (m *Message) fieldByNumber(num pref.FieldNumber) *protodesc.Field {
	if xd := m.ext[num]; xd != nil {
		return xd
	}
	return m.desc.Fields().ByNumber(num)
}

// Has reports whether a field is populated.
func (m *Message) Has(fd *protodesc.Field) bool {
	m.checkField(fd)
	v, ok := m.known[fd.Number()]
	if !ok {
		return false
	}
	return isSet(fd, v)
}

// Clear clears a field.
func (m *Message) Clear(fd *protodesc.Field) {
	m.checkField(fd)
	num := fd.Number()
	delete(m.known, num)
	delete(m.ext, num)
	m.invalidate()
}

// Get returns the value of a field. An unpopulated scalar field yields its
// default. An unpopulated composite field yields an empty value that is
// not attached to m; use Mutable to modify it in place.
func (m *Message) Get(fd *protodesc.Field) pref.Value {
	m.checkField(fd)
	if v, ok := m.known[fd.Number()]; ok {
		return v
	}
	switch {
	case fd.IsMap():
		return pref.ValueOf(newMap(fd))
	case fd.IsList():
		return pref.ValueOf(newList(fd))
	case fd.Message() != nil:
		return pref.ValueOf(New(fd.Message()))
	}
	return fd.Default()
}

// Mutable returns a mutable reference to a composite field, populating
// it if necessary. It panics for scalar fields.
func (m *Message) Mutable(fd *protodesc.Field) pref.Value {
	m.checkField(fd)
	if fd.Message() == nil && fd.Cardinality() != pref.Repeated {
		panic(errors.New("%v: getting mutable reference to non-composite type", fd.FullName()))
	}
	m.invalidate()
	if v, ok := m.known[fd.Number()]; ok {
		return v
	}
	var v pref.Value
	switch {
	case fd.IsMap():
		v = pref.ValueOf(newMap(fd))
	case fd.IsList():
		v = pref.ValueOf(newList(fd))
	default:
		v = pref.ValueOf(New(fd.Message()))
	}
	m.store(fd, v)
	return v
}

// Set stores a value in a field. Setting a member of a oneof clears the
// other members.
func (m *Message) Set(fd *protodesc.Field, v pref.Value) {
	m.checkField(fd)
	switch {
	case fd.IsMap():
		mv, ok := v.Interface().(*Map)
		if !ok || mv.field != fd {
			panic(errors.New("%v: assigning invalid type %T", fd.FullName(), v.Interface()))
		}
	case fd.IsList():
		lv, ok := v.Interface().(*List)
		if !ok || lv.field != fd {
			panic(errors.New("%v: assigning invalid type %T", fd.FullName(), v.Interface()))
		}
	default:
		typecheckSingular(fd, v)
	}
	m.store(fd, v)
	m.invalidate()
}

func (m *Message) store(fd *protodesc.Field, v pref.Value) {
	m.clearOtherOneofFields(fd)
	if fd.IsExtension() {
		m.ext[fd.Number()] = fd
	}
	m.known[fd.Number()] = v
	m.adopt(v)
}

// adopt makes m the owner of a composite value, so that mutating it
// through its own methods drops the memoized size of m.
func (m *Message) adopt(v pref.Value) {
	switch x := v.Interface().(type) {
	case *Message:
		x.parent = m
	case *List:
		x.owner = m
		for _, e := range x.list {
			m.adopt(e)
		}
	case *Map:
		x.owner = m
		for _, e := range x.mapv {
			m.adopt(e)
		}
	}
}

// invalidate drops the memoized size of m and of the messages holding it.
// Size fills in a message and everything beneath it, so a message with
// no memoized size has none memoized above it either and the walk stops.
func (m *Message) invalidate() {
	m.sizeCache.Reset()
	for p := m.parent; p != nil; p = p.parent {
		if _, ok := p.sizeCache.Load(); !ok {
			return
		}
		p.sizeCache.Reset()
	}
}

func (m *Message) clearOtherOneofFields(fd *protodesc.Field) {
	od := fd.ContainingOneof()
	if od == nil {
		return
	}
	num := fd.Number()
	for _, f := range od.Fields() {
		if n := f.Number(); n != num {
			delete(m.known, n)
		}
	}
}

// NewMessage returns a newly-allocated message assignable to a field.
func (m *Message) NewMessage(fd *protodesc.Field) *Message {
	m.checkField(fd)
	md := fd.Message()
	if fd.Cardinality() == pref.Repeated || md == nil {
		panic(errors.New("%v: field is not of non-repeated message type", fd.FullName()))
	}
	return New(md)
}

// WhichOneof reports which field in a oneof is populated, returning nil if
// none are populated.
func (m *Message) WhichOneof(od *protodesc.Oneof) *protodesc.Field {
	for _, fd := range od.Fields() {
		if m.Has(fd) {
			return fd
		}
	}
	return nil
}

// GetUnknown returns the raw unknown fields.
func (m *Message) GetUnknown() pref.RawFields {
	return m.unknown
}

// SetUnknown sets the raw unknown fields.
func (m *Message) SetUnknown(r pref.RawFields) {
	m.unknown = r
	m.invalidate()
}

// checkField panics unless fd is a field of m or an extension of m's type.
func (m *Message) checkField(fd *protodesc.Field) {
	if fd.IsExtension() {
		if fd.ContainingMessage().FullName() != m.desc.FullName() {
			panic(errors.New("%v: extension field extends %v, not %v", fd.FullName(), fd.ContainingMessage().FullName(), m.desc.FullName()))
		}
		if xd := m.ext[fd.Number()]; xd != nil && xd != fd {
			panic(errors.New("%v: field number %d is already held by extension %v", fd.FullName(), fd.Number(), xd.FullName()))
		}
		return
	}
	if m.desc.Fields().ByNumber(fd.Number()) != fd {
		panic(errors.New("%v: field descriptor does not belong to this message", fd.FullName()))
	}
}

// A List is the value of a repeated, non-map field. Once stored in a
// message, changes made through the List reset that message's size.
type List struct {
	field *protodesc.Field
	list  []pref.Value
	owner *Message
}

func newList(fd *protodesc.Field) *List {
	return &List{field: fd}
}

func (x *List) Len() int {
	if x == nil {
		return 0
	}
	return len(x.list)
}

func (x *List) Get(n int) pref.Value {
	return x.list[n]
}

func (x *List) Set(n int, v pref.Value) {
	typecheckSingular(x.field, v)
	x.list[n] = v
	x.changed(v)
}

func (x *List) Append(v pref.Value) {
	typecheckSingular(x.field, v)
	x.list = append(x.list, v)
	x.changed(v)
}

func (x *List) Truncate(n int) {
	// Zero truncated elements to avoid keeping data live.
	for i := n; i < len(x.list); i++ {
		x.list[i] = pref.Value{}
	}
	x.list = x.list[:n]
	x.changed(pref.Value{})
}

func (x *List) changed(v pref.Value) {
	if x.owner == nil {
		return
	}
	if v.IsValid() {
		x.owner.adopt(v)
	}
	x.owner.invalidate()
}

// NewMessage returns a new message assignable to the list.
func (x *List) NewMessage() *Message {
	md := x.field.Message()
	if md == nil {
		panic(errors.New("list is not of message type"))
	}
	return New(md)
}

// A Map is the value of a map field. Like a List, it resets the size of
// the message it is stored in when changed.
type Map struct {
	field *protodesc.Field
	mapv  map[interface{}]pref.Value
	owner *Message
}

func newMap(fd *protodesc.Field) *Map {
	return &Map{field: fd, mapv: make(map[interface{}]pref.Value)}
}

func (x *Map) Get(k pref.MapKey) pref.Value { return x.mapv[k.Interface()] }
func (x *Map) Set(k pref.MapKey, v pref.Value) {
	typecheckSingular(x.field.MapKey(), k.Value())
	typecheckSingular(x.field.MapValue(), v)
	x.mapv[k.Interface()] = v
	x.changed(v)
}
func (x *Map) Has(k pref.MapKey) bool { return x.Get(k).IsValid() }
func (x *Map) Clear(k pref.MapKey) {
	delete(x.mapv, k.Interface())
	x.changed(pref.Value{})
}
func (x *Map) Len() int { return len(x.mapv) }

func (x *Map) changed(v pref.Value) {
	if x.owner == nil {
		return
	}
	if v.IsValid() {
		x.owner.adopt(v)
	}
	x.owner.invalidate()
}

// NewMessage returns a new message assignable as a value of the map.
func (x *Map) NewMessage() *Message {
	md := x.field.MapValue().Message()
	if md == nil {
		panic(errors.New("map value is not of message type"))
	}
	return New(md)
}

// Range visits the entries in an undefined order until f returns false.
func (x *Map) Range(f func(pref.MapKey, pref.Value) bool) {
	for k, v := range x.mapv {
		if !f(pref.ValueOf(k).MapKey(), v) {
			return
		}
	}
}

func (x *Map) keys() []pref.MapKey {
	ks := make([]pref.MapKey, 0, len(x.mapv))
	for k := range x.mapv {
		ks = append(ks, pref.ValueOf(k).MapKey())
	}
	return ks
}

// isSet reports whether v is worth serializing: fields with implicit
// presence holding their zero value and empty lists and maps are not.
func isSet(fd *protodesc.Field, v pref.Value) bool {
	switch {
	case fd.IsMap():
		return v.Interface().(*Map).Len() > 0
	case fd.IsList():
		return v.Interface().(*List).Len() > 0
	case fd.HasPresence():
		return true
	}
	switch fd.Kind() {
	case pref.BoolKind:
		return v.Bool()
	case pref.EnumKind:
		return v.Enum() != 0
	case pref.Int32Kind, pref.Sint32Kind, pref.Int64Kind, pref.Sint64Kind, pref.Sfixed32Kind, pref.Sfixed64Kind:
		return v.Int() != 0
	case pref.Uint32Kind, pref.Uint64Kind, pref.Fixed32Kind, pref.Fixed64Kind:
		return v.Uint() != 0
	case pref.FloatKind, pref.DoubleKind:
		return v.Float() != 0 || math.Signbit(v.Float())
	case pref.StringKind:
		return v.String() != ""
	case pref.BytesKind:
		return len(v.Bytes()) > 0
	}
	return true
}

func typecheckSingular(fd *protodesc.Field, v pref.Value) {
	vi := v.Interface()
	var ok bool
	switch fd.Kind() {
	case pref.BoolKind:
		_, ok = vi.(bool)
	case pref.EnumKind:
		// We could check against the valid set of enum values, but do not.
		_, ok = vi.(pref.EnumNumber)
	case pref.Int32Kind, pref.Sint32Kind, pref.Sfixed32Kind:
		_, ok = vi.(int32)
	case pref.Uint32Kind, pref.Fixed32Kind:
		_, ok = vi.(uint32)
	case pref.Int64Kind, pref.Sint64Kind, pref.Sfixed64Kind:
		_, ok = vi.(int64)
	case pref.Uint64Kind, pref.Fixed64Kind:
		_, ok = vi.(uint64)
	case pref.FloatKind:
		_, ok = vi.(float32)
	case pref.DoubleKind:
		_, ok = vi.(float64)
	case pref.StringKind:
		_, ok = vi.(string)
	case pref.BytesKind:
		_, ok = vi.([]byte)
	case pref.MessageKind, pref.GroupKind:
		var m *Message
		m, ok = vi.(*Message)
		if ok && m.desc.FullName() != fd.Message().FullName() {
			panic(errors.New("%v: assigning invalid message type %v", fd.FullName(), m.desc.FullName()))
		}
	}
	if !ok {
		panic(errors.New("%v: assigning invalid type %T", fd.FullName(), v.Interface()))
	}
}
