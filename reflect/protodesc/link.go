// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"github.com/protocore/protocore/internal/defval"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// linkFile runs the cross-link phase. Every symbol of the file exists at
// this point; references are resolved in place.
func (b *builder) linkFile() error {
	f := b.file

	// Enums are indexed first since field defaults resolve against them.
	for i := range f.enums.list {
		indexEnum(&f.enums.list[i])
	}
	for i := range f.messages.list {
		indexMessageEnums(&f.messages.list[i])
	}

	f.messages.index()
	f.enums.index()
	f.extensions.index()
	f.services.index()
	for i := range f.messages.list {
		if err := b.linkMessage(&f.messages.list[i]); err != nil {
			return err
		}
	}
	for i := range f.extensions.list {
		if err := b.linkExtension(&f.extensions.list[i]); err != nil {
			return err
		}
	}
	for i := range f.services.list {
		if err := b.linkService(&f.services.list[i]); err != nil {
			return err
		}
	}
	return nil
}

func indexEnum(e *Enum) {
	e.values.index()
	e.reservedRanges.index()
	e.reservedNames.index()
}

func indexMessageEnums(m *Message) {
	for i := range m.enums.list {
		indexEnum(&m.enums.list[i])
	}
	for i := range m.messages.list {
		indexMessageEnums(&m.messages.list[i])
	}
}

func (b *builder) linkMessage(m *Message) error {
	for i := range m.fields.list {
		fd := &m.fields.list[i]
		fd.containingMessage = m
		if fd.extendee != "" {
			return b.errorf(fd.fullName, "Non-extension field may not have extendee.")
		}
		if err := b.linkFieldType(fd); err != nil {
			return err
		}
		if fd.hasOneofIndex {
			if fd.oneofIndex < 0 || int(fd.oneofIndex) >= len(m.oneofs.list) {
				return b.errorf(fd.fullName, "FieldDescriptorProto.oneof_index %d is out of range for type %q.", fd.oneofIndex, string(m.fullName))
			}
			o := &m.oneofs.list[fd.oneofIndex]
			fd.containingOneof = o
			o.fields = append(o.fields, fd)
		}
		if err := b.linkDefault(fd); err != nil {
			return err
		}
	}

	// The number view is sorted stably; equal neighbors are duplicates and
	// the later declaration is the one reported.
	m.fields.index()
	for i := 1; i < len(m.fields.byNumber); i++ {
		prev, cur := m.fields.byNumber[i-1], m.fields.byNumber[i]
		if prev.number == cur.number {
			return b.errorf(cur.fullName, "Field number %d has already been used in %q by field %q.", cur.number, string(m.fullName), string(prev.Name()))
		}
	}

	m.oneofs.index()
	m.messages.index()
	m.enums.index()
	m.extensions.index()
	m.extensionRanges.index()
	m.reservedRanges.index()
	m.reservedNames.index()

	for i := range m.extensions.list {
		if err := b.linkExtension(&m.extensions.list[i]); err != nil {
			return err
		}
	}
	for i := range m.messages.list {
		if err := b.linkMessage(&m.messages.list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) linkExtension(x *Field) error {
	if x.extendee == "" {
		return b.errorf(x.fullName, "FieldDescriptorProto.extendee not set for extension field.")
	}
	s, err := b.lookupType(x.extendee, x.fullName, true)
	if err != nil {
		return err
	}
	m, ok := s.desc.(*Message)
	if !ok {
		return b.errorf(x.fullName, "%q is not a message type.", x.extendee)
	}
	x.containingMessage = m
	if x.hasOneofIndex {
		return b.errorf(x.fullName, "FieldDescriptorProto.oneof_index set on extension %q.", string(x.Name()))
	}
	if err := b.linkFieldType(x); err != nil {
		return err
	}
	return b.linkDefault(x)
}

func isComposite(k protoreflect.Kind) bool {
	return k == protoreflect.MessageKind || k == protoreflect.GroupKind || k == protoreflect.EnumKind
}

// linkFieldType resolves the type_name of a message, group or enum field.
// A field without a declared type takes the kind of whatever type_name
// resolves to.
func (b *builder) linkFieldType(fd *Field) error {
	if fd.typeName == "" {
		switch {
		case fd.kind == 0:
			return b.errorf(fd.fullName, "Field has no type.")
		case isComposite(fd.kind):
			return b.errorf(fd.fullName, "Field with %v type is missing type_name.", fd.kind)
		}
		return nil
	}
	if fd.kind != 0 && !isComposite(fd.kind) {
		return b.errorf(fd.fullName, "Field with primitive type %v has type_name.", fd.kind)
	}

	s, err := b.lookupType(fd.typeName, fd.fullName, fd.kind != protoreflect.EnumKind)
	if err != nil {
		return err
	}
	switch d := s.desc.(type) {
	case *Message:
		if fd.kind == protoreflect.EnumKind {
			return b.errorf(fd.fullName, "%q is not an enum type.", fd.typeName)
		}
		if fd.kind == 0 {
			fd.kind = protoreflect.MessageKind
		}
		fd.message = d
	case *Enum:
		if fd.kind == protoreflect.MessageKind || fd.kind == protoreflect.GroupKind {
			return b.errorf(fd.fullName, "%q is not a message type.", fd.typeName)
		}
		fd.kind = protoreflect.EnumKind
		fd.enum = d
	default:
		return b.errorf(fd.fullName, "%q is not a type.", fd.typeName)
	}

	if b.file.syntax == protoreflect.Editions && fd.kind == protoreflect.MessageKind &&
		fd.features.messageEncoding == messageDelimited && !fd.message.isMapEntry {
		fd.kind = protoreflect.GroupKind
	}
	return nil
}

// linkDefault resolves the default value of fd. Enum defaults name a value
// of the linked enum; without an explicit default, an enum field defaults
// to the first declared value.
func (b *builder) linkDefault(fd *Field) error {
	if !fd.hasDefault {
		if fd.enum != nil && fd.cardinality != protoreflect.Repeated && len(fd.enum.values.list) > 0 {
			fd.defaultEnumValue = &fd.enum.values.list[0]
			fd.defaultValue = protoreflect.ValueOfEnum(fd.defaultEnumValue.number)
		}
		return nil
	}
	switch {
	case fd.cardinality == protoreflect.Repeated:
		return b.errorf(fd.fullName, "Repeated fields can't have default values.")
	case fd.kind == protoreflect.MessageKind || fd.kind == protoreflect.GroupKind:
		return b.errorf(fd.fullName, "Messages can't have default values.")
	}
	v, err := defval.Unmarshal(fd.defaultText, fd.kind)
	if err != nil {
		return b.errorf(fd.fullName, "Couldn't parse default value %q.", fd.defaultText)
	}
	if fd.kind == protoreflect.EnumKind {
		ev := fd.enum.values.ByName(protoreflect.Name(v.String()))
		if ev == nil {
			return b.errorf(fd.fullName, "Enum type %q has no value named %q.", string(fd.enum.fullName), v.String())
		}
		fd.defaultEnumValue = ev
		v = protoreflect.ValueOfEnum(ev.number)
	}
	fd.defaultValue = v
	return nil
}

func (b *builder) linkService(s *Service) error {
	s.methods.index()
	for i := range s.methods.list {
		m := &s.methods.list[i]
		var err error
		if m.input, err = b.linkMethodType(m, m.inputName); err != nil {
			return err
		}
		if m.output, err = b.linkMethodType(m, m.outputName); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) linkMethodType(m *Method, name string) (*Message, error) {
	s, err := b.lookupType(name, m.fullName, true)
	if err != nil {
		return nil, err
	}
	md, ok := s.desc.(*Message)
	if !ok {
		return nil, b.errorf(m.fullName, "%q is not a message type.", name)
	}
	return md, nil
}
