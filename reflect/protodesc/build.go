// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"unicode/utf8"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/fieldnum"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// field is one decoded field of an encoded message. Varint and fixed
// values land in v, length-delimited values in b.
type field struct {
	num wire.Number
	typ wire.Type
	v   uint64
	b   []byte
}

// rangeFields calls f for each field of the encoded message b.
// Fields of unknown numbers are passed through as well.
func rangeFields(b []byte, f func(field)) error {
	for len(b) > 0 {
		num, typ, n := wire.ConsumeTag(b)
		if n < 0 {
			return wire.ParseError(n)
		}
		b = b[n:]
		fld := field{num: num, typ: typ}
		switch typ {
		case wire.VarintType:
			fld.v, n = wire.ConsumeVarint(b)
		case wire.Fixed32Type:
			var v uint32
			v, n = wire.ConsumeFixed32(b)
			fld.v = uint64(v)
		case wire.Fixed64Type:
			fld.v, n = wire.ConsumeFixed64(b)
		case wire.BytesType:
			fld.b, n = wire.ConsumeBytes(b)
		default:
			n = wire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return wire.ParseError(n)
		}
		b = b[n:]
		f(fld)
	}
	return nil
}

// appendInt32s decodes a repeated int32 field in either packed or
// unpacked form.
func appendInt32s(s []int32, fld field) ([]int32, error) {
	switch fld.typ {
	case wire.VarintType:
		return append(s, int32(fld.v)), nil
	case wire.BytesType:
		for b := fld.b; len(b) > 0; {
			v, n := wire.ConsumeVarint(b)
			if n < 0 {
				return s, wire.ParseError(n)
			}
			s = append(s, int32(v))
			b = b[n:]
		}
	}
	return s, nil
}

func stringOf(b []byte) (string, bool) {
	return string(b), utf8.Valid(b)
}

// The unmarshal methods below implement the build phase. Each descriptor
// decodes its own fields, allocates exact-size slices for its children so
// their addresses never change, registers itself in the symbol table and
// then recurses. References to other declarations are kept as strings and
// resolved during cross-linking.

func (b *builder) unmarshalFile(raw []byte) error {
	f := b.file
	var rawMessages, rawEnums, rawExtensions, rawServices [][]byte
	var deps []string
	var public, weak []int32
	var syntax string
	var decodeErr error
	collect := func(s *[]int32, fld field) {
		var err error
		if *s, err = appendInt32s(*s, fld); err != nil {
			decodeErr = err
		}
	}
	err := rangeFields(raw, func(fld field) {
		switch fld.typ {
		case wire.VarintType:
			switch fld.num {
			case fieldnum.FileDescriptorProto_Edition:
				f.edition = Edition(fld.v)
			case fieldnum.FileDescriptorProto_PublicDependency:
				collect(&public, fld)
			case fieldnum.FileDescriptorProto_WeakDependency:
				collect(&weak, fld)
			}
		case wire.BytesType:
			switch fld.num {
			case fieldnum.FileDescriptorProto_Name:
				f.path = string(fld.b)
			case fieldnum.FileDescriptorProto_Package:
				f.fullName = protoreflect.FullName(fld.b)
			case fieldnum.FileDescriptorProto_Dependency:
				deps = append(deps, string(fld.b))
			case fieldnum.FileDescriptorProto_PublicDependency:
				collect(&public, fld)
			case fieldnum.FileDescriptorProto_WeakDependency:
				collect(&weak, fld)
			case fieldnum.FileDescriptorProto_MessageType:
				rawMessages = append(rawMessages, fld.b)
			case fieldnum.FileDescriptorProto_EnumType:
				rawEnums = append(rawEnums, fld.b)
			case fieldnum.FileDescriptorProto_Service:
				rawServices = append(rawServices, fld.b)
			case fieldnum.FileDescriptorProto_Extension:
				rawExtensions = append(rawExtensions, fld.b)
			case fieldnum.FileDescriptorProto_Options:
				f.options = fld.b
			case fieldnum.FileDescriptorProto_Syntax:
				syntax = string(fld.b)
			}
		}
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return b.malformed("", err)
	}

	switch syntax {
	case "", "proto2":
		f.syntax = protoreflect.Proto2
		f.edition = EditionProto2
	case "proto3":
		f.syntax = protoreflect.Proto3
		f.edition = EditionProto3
	case "editions":
		f.syntax = protoreflect.Editions
		if f.edition < Edition2023 || f.edition > Edition2024 {
			return b.errorf("", "Edition %d is not supported.", f.edition)
		}
	default:
		return b.errorf("", "Unrecognized syntax: %s", syntax)
	}
	if f.features, err = editionDefaults(f.edition).resolve(f.options, fieldnum.FileOptions_Features); err != nil {
		return b.malformed("", err)
	}

	if f.fullName != "" && !f.fullName.IsValid() {
		return b.errorf("", "%q is not a valid package name.", string(f.fullName))
	}
	if err := b.resolveImports(deps, public, weak); err != nil {
		return err
	}
	if err := b.addPackage(f.fullName); err != nil {
		return err
	}

	f.messages.list = make([]Message, len(rawMessages))
	for i, raw := range rawMessages {
		if err := b.unmarshalMessage(&f.messages.list[i], raw, f, f.fullName, f.features, i); err != nil {
			return err
		}
	}
	f.enums.list = make([]Enum, len(rawEnums))
	for i, raw := range rawEnums {
		if err := b.unmarshalEnum(&f.enums.list[i], raw, f, f.fullName, f.features, i); err != nil {
			return err
		}
	}
	f.extensions.list = make([]Field, len(rawExtensions))
	for i, raw := range rawExtensions {
		x := &f.extensions.list[i]
		x.isExtension = true
		if err := b.unmarshalField(x, raw, f, f.fullName, f.features, i); err != nil {
			return err
		}
	}
	f.services.list = make([]Service, len(rawServices))
	for i, raw := range rawServices {
		if err := b.unmarshalService(&f.services.list[i], raw, f, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) unmarshalMessage(m *Message, raw []byte, parent protoreflect.Descriptor, scope protoreflect.FullName, fs features, i int) error {
	m.init(b.file, parent, i)
	var rawFields, rawNested, rawEnums, rawExtensions, rawOneofs [][]byte
	var rawExtRanges, rawReserved [][]byte
	var name []byte
	err := rangeFields(raw, func(fld field) {
		if fld.typ != wire.BytesType {
			return
		}
		switch fld.num {
		case fieldnum.DescriptorProto_Name:
			name = fld.b
		case fieldnum.DescriptorProto_Field:
			rawFields = append(rawFields, fld.b)
		case fieldnum.DescriptorProto_NestedType:
			rawNested = append(rawNested, fld.b)
		case fieldnum.DescriptorProto_EnumType:
			rawEnums = append(rawEnums, fld.b)
		case fieldnum.DescriptorProto_ExtensionRange:
			rawExtRanges = append(rawExtRanges, fld.b)
		case fieldnum.DescriptorProto_Extension:
			rawExtensions = append(rawExtensions, fld.b)
		case fieldnum.DescriptorProto_Options:
			m.options = fld.b
		case fieldnum.DescriptorProto_OneofDecl:
			rawOneofs = append(rawOneofs, fld.b)
		case fieldnum.DescriptorProto_ReservedRange:
			rawReserved = append(rawReserved, fld.b)
		case fieldnum.DescriptorProto_ReservedName:
			m.reservedNames.list = append(m.reservedNames.list, protoreflect.Name(fld.b))
		}
	})
	m.fullName = scope.Append(protoreflect.Name(name))
	if err != nil {
		return b.malformed(m.fullName, err)
	}
	if err := b.addSymbol(messageSymbol, m); err != nil {
		return err
	}
	if m.features, err = fs.resolve(m.options, fieldnum.MessageOptions_Features); err != nil {
		return b.malformed(m.fullName, err)
	}
	err = rangeFields(m.options, func(fld field) {
		if fld.typ != wire.VarintType {
			return
		}
		switch fld.num {
		case fieldnum.MessageOptions_MessageSetWireFormat:
			m.isMessageSet = wire.DecodeBool(fld.v)
		case fieldnum.MessageOptions_MapEntry:
			m.isMapEntry = wire.DecodeBool(fld.v)
		}
	})
	if err != nil {
		return b.malformed(m.fullName, err)
	}

	for _, raw := range rawExtRanges {
		var r [2]protoreflect.FieldNumber
		var opts []byte
		err := rangeFields(raw, func(fld field) {
			switch {
			case fld.num == fieldnum.DescriptorProto_ExtensionRange_Start && fld.typ == wire.VarintType:
				r[0] = protoreflect.FieldNumber(fld.v)
			case fld.num == fieldnum.DescriptorProto_ExtensionRange_End && fld.typ == wire.VarintType:
				r[1] = protoreflect.FieldNumber(fld.v)
			case fld.num == fieldnum.DescriptorProto_ExtensionRange_Options && fld.typ == wire.BytesType:
				opts = fld.b
			}
		})
		if err != nil {
			return b.malformed(m.fullName, err)
		}
		m.extensionRanges.list = append(m.extensionRanges.list, r)
		m.extRangeOptions = append(m.extRangeOptions, opts)
	}
	for _, raw := range rawReserved {
		var r [2]protoreflect.FieldNumber
		err := rangeFields(raw, func(fld field) {
			switch {
			case fld.num == fieldnum.DescriptorProto_ReservedRange_Start && fld.typ == wire.VarintType:
				r[0] = protoreflect.FieldNumber(fld.v)
			case fld.num == fieldnum.DescriptorProto_ReservedRange_End && fld.typ == wire.VarintType:
				r[1] = protoreflect.FieldNumber(fld.v)
			}
		})
		if err != nil {
			return b.malformed(m.fullName, err)
		}
		m.reservedRanges.list = append(m.reservedRanges.list, r)
	}

	// Oneofs come first so that member fields can inherit their features.
	m.oneofs.list = make([]Oneof, len(rawOneofs))
	for i, raw := range rawOneofs {
		if err := b.unmarshalOneof(&m.oneofs.list[i], raw, m, i); err != nil {
			return err
		}
	}
	m.fields.list = make([]Field, len(rawFields))
	for i, raw := range rawFields {
		if err := b.unmarshalField(&m.fields.list[i], raw, m, m.fullName, m.features, i); err != nil {
			return err
		}
	}
	m.messages.list = make([]Message, len(rawNested))
	for i, raw := range rawNested {
		if err := b.unmarshalMessage(&m.messages.list[i], raw, m, m.fullName, m.features, i); err != nil {
			return err
		}
	}
	m.enums.list = make([]Enum, len(rawEnums))
	for i, raw := range rawEnums {
		if err := b.unmarshalEnum(&m.enums.list[i], raw, m, m.fullName, m.features, i); err != nil {
			return err
		}
	}
	m.extensions.list = make([]Field, len(rawExtensions))
	for i, raw := range rawExtensions {
		x := &m.extensions.list[i]
		x.isExtension = true
		if err := b.unmarshalField(x, raw, m, m.fullName, m.features, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) unmarshalOneof(o *Oneof, raw []byte, parent *Message, i int) error {
	o.init(b.file, parent, i)
	var name []byte
	err := rangeFields(raw, func(fld field) {
		if fld.typ != wire.BytesType {
			return
		}
		switch fld.num {
		case fieldnum.OneofDescriptorProto_Name:
			name = fld.b
		case fieldnum.OneofDescriptorProto_Options:
			o.options = fld.b
		}
	})
	o.fullName = parent.fullName.Append(protoreflect.Name(name))
	if err != nil {
		return b.malformed(o.fullName, err)
	}
	if o.features, err = parent.features.resolve(o.options, fieldnum.OneofOptions_Features); err != nil {
		return b.malformed(o.fullName, err)
	}
	return b.addSymbol(oneofSymbol, o)
}

// unmarshalField decodes a message field or an extension. fs holds the
// features of the enclosing scope; oneof members resolve from their oneof.
func (b *builder) unmarshalField(f *Field, raw []byte, parent protoreflect.Descriptor, scope protoreflect.FullName, fs features, i int) error {
	f.init(b.file, parent, i)
	var name []byte
	var typ int32
	var hasType bool
	var badUTF8 bool
	err := rangeFields(raw, func(fld field) {
		switch fld.typ {
		case wire.VarintType:
			switch fld.num {
			case fieldnum.FieldDescriptorProto_Number:
				f.number = protoreflect.FieldNumber(fld.v)
			case fieldnum.FieldDescriptorProto_Label:
				f.cardinality = protoreflect.Cardinality(fld.v)
			case fieldnum.FieldDescriptorProto_Type:
				typ, hasType = int32(fld.v), true
			case fieldnum.FieldDescriptorProto_OneofIndex:
				f.oneofIndex, f.hasOneofIndex = int32(fld.v), true
			case fieldnum.FieldDescriptorProto_Proto3Optional:
				f.proto3Optional = wire.DecodeBool(fld.v)
			}
		case wire.BytesType:
			switch fld.num {
			case fieldnum.FieldDescriptorProto_Name:
				name = fld.b
			case fieldnum.FieldDescriptorProto_Extendee:
				f.extendee = string(fld.b)
			case fieldnum.FieldDescriptorProto_TypeName:
				f.typeName = string(fld.b)
			case fieldnum.FieldDescriptorProto_DefaultValue:
				var ok bool
				f.defaultText, ok = stringOf(fld.b)
				f.hasDefault = true
				badUTF8 = badUTF8 || !ok
			case fieldnum.FieldDescriptorProto_Options:
				f.options = fld.b
			case fieldnum.FieldDescriptorProto_JsonName:
				f.jsonName, f.hasJSONName = string(fld.b), true
			}
		}
	})
	f.fullName = scope.Append(protoreflect.Name(name))
	if err != nil {
		return b.malformed(f.fullName, err)
	}
	if badUTF8 {
		return b.errorf(f.fullName, "Default value is not valid UTF-8.")
	}
	if err := b.addSymbol(fieldSymbol, f); err != nil {
		return err
	}
	if hasType {
		f.kind = protoreflect.Kind(typ)
		if !f.kind.IsValid() {
			return b.errorf(f.fullName, "Invalid field type %d.", typ)
		}
	}
	if f.cardinality == 0 {
		f.cardinality = protoreflect.Optional
	}

	if m, ok := parent.(*Message); ok && !f.isExtension && f.hasOneofIndex {
		if int(f.oneofIndex) >= 0 && int(f.oneofIndex) < len(m.oneofs.list) {
			fs = m.oneofs.list[f.oneofIndex].features
		}
	}
	if f.features, err = fs.resolve(f.options, fieldnum.FieldOptions_Features); err != nil {
		return b.malformed(f.fullName, err)
	}
	err = rangeFields(f.options, func(fld field) {
		if fld.typ != wire.VarintType {
			return
		}
		switch fld.num {
		case fieldnum.FieldOptions_Packed:
			packed := wire.DecodeBool(fld.v)
			f.packed = &packed
		case fieldnum.FieldOptions_Weak:
			f.isWeak = wire.DecodeBool(fld.v)
		case fieldnum.FieldOptions_Lazy:
			f.isLazy = wire.DecodeBool(fld.v)
		}
	})
	if err != nil {
		return b.malformed(f.fullName, err)
	}
	if b.file.syntax == protoreflect.Editions && f.features.fieldPresence == presenceLegacyRequired {
		f.cardinality = protoreflect.Required
	}
	if !f.hasJSONName {
		f.jsonName = jsonName(f.Name())
	}
	return nil
}

// jsonName derives the JSON name of a field by removing underscores and
// capitalizing the letter that follows each of them.
func jsonName(s protoreflect.Name) string {
	var b []byte
	var upper bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
			upper = true
		case upper && 'a' <= c && c <= 'z':
			b = append(b, c-'a'+'A')
			upper = false
		default:
			b = append(b, c)
			upper = false
		}
	}
	return string(b)
}

func (b *builder) unmarshalEnum(e *Enum, raw []byte, parent protoreflect.Descriptor, scope protoreflect.FullName, fs features, i int) error {
	e.init(b.file, parent, i)
	var rawValues, rawReserved [][]byte
	var name []byte
	err := rangeFields(raw, func(fld field) {
		if fld.typ != wire.BytesType {
			return
		}
		switch fld.num {
		case fieldnum.EnumDescriptorProto_Name:
			name = fld.b
		case fieldnum.EnumDescriptorProto_Value:
			rawValues = append(rawValues, fld.b)
		case fieldnum.EnumDescriptorProto_Options:
			e.options = fld.b
		case fieldnum.EnumDescriptorProto_ReservedRange:
			rawReserved = append(rawReserved, fld.b)
		case fieldnum.EnumDescriptorProto_ReservedName:
			e.reservedNames.list = append(e.reservedNames.list, protoreflect.Name(fld.b))
		}
	})
	e.fullName = scope.Append(protoreflect.Name(name))
	if err != nil {
		return b.malformed(e.fullName, err)
	}
	if err := b.addSymbol(enumSymbol, e); err != nil {
		return err
	}
	if e.features, err = fs.resolve(e.options, fieldnum.EnumOptions_Features); err != nil {
		return b.malformed(e.fullName, err)
	}
	err = rangeFields(e.options, func(fld field) {
		if fld.num == fieldnum.EnumOptions_AllowAlias && fld.typ == wire.VarintType {
			e.allowAlias = wire.DecodeBool(fld.v)
		}
	})
	if err != nil {
		return b.malformed(e.fullName, err)
	}
	for _, raw := range rawReserved {
		var r [2]protoreflect.EnumNumber
		err := rangeFields(raw, func(fld field) {
			switch {
			case fld.num == fieldnum.EnumDescriptorProto_EnumReservedRange_Start && fld.typ == wire.VarintType:
				r[0] = protoreflect.EnumNumber(fld.v)
			case fld.num == fieldnum.EnumDescriptorProto_EnumReservedRange_End && fld.typ == wire.VarintType:
				r[1] = protoreflect.EnumNumber(fld.v)
			}
		})
		if err != nil {
			return b.malformed(e.fullName, err)
		}
		e.reservedRanges.list = append(e.reservedRanges.list, r)
	}

	// Enum values are scoped as siblings of their enum.
	e.values.list = make([]EnumValue, len(rawValues))
	for i, raw := range rawValues {
		v := &e.values.list[i]
		v.init(b.file, e, i)
		var name []byte
		err := rangeFields(raw, func(fld field) {
			switch {
			case fld.num == fieldnum.EnumValueDescriptorProto_Name && fld.typ == wire.BytesType:
				name = fld.b
			case fld.num == fieldnum.EnumValueDescriptorProto_Number && fld.typ == wire.VarintType:
				v.number = protoreflect.EnumNumber(fld.v)
			case fld.num == fieldnum.EnumValueDescriptorProto_Options && fld.typ == wire.BytesType:
				v.options = fld.b
			}
		})
		v.fullName = scope.Append(protoreflect.Name(name))
		if err != nil {
			return b.malformed(v.fullName, err)
		}
		if err := b.addSymbol(enumValueSymbol, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) unmarshalService(s *Service, raw []byte, parent *File, i int) error {
	s.init(b.file, parent, i)
	var rawMethods [][]byte
	var name []byte
	err := rangeFields(raw, func(fld field) {
		if fld.typ != wire.BytesType {
			return
		}
		switch fld.num {
		case fieldnum.ServiceDescriptorProto_Name:
			name = fld.b
		case fieldnum.ServiceDescriptorProto_Method:
			rawMethods = append(rawMethods, fld.b)
		case fieldnum.ServiceDescriptorProto_Options:
			s.options = fld.b
		}
	})
	s.fullName = parent.fullName.Append(protoreflect.Name(name))
	if err != nil {
		return b.malformed(s.fullName, err)
	}
	if err := b.addSymbol(serviceSymbol, s); err != nil {
		return err
	}

	s.methods.list = make([]Method, len(rawMethods))
	for i, raw := range rawMethods {
		m := &s.methods.list[i]
		m.init(b.file, s, i)
		var name []byte
		err := rangeFields(raw, func(fld field) {
			switch fld.typ {
			case wire.VarintType:
				switch fld.num {
				case fieldnum.MethodDescriptorProto_ClientStreaming:
					m.isStreamingClient = wire.DecodeBool(fld.v)
				case fieldnum.MethodDescriptorProto_ServerStreaming:
					m.isStreamingServer = wire.DecodeBool(fld.v)
				}
			case wire.BytesType:
				switch fld.num {
				case fieldnum.MethodDescriptorProto_Name:
					name = fld.b
				case fieldnum.MethodDescriptorProto_InputType:
					m.inputName = string(fld.b)
				case fieldnum.MethodDescriptorProto_OutputType:
					m.outputName = string(fld.b)
				case fieldnum.MethodDescriptorProto_Options:
					m.options = fld.b
				}
			}
		})
		m.fullName = s.fullName.Append(protoreflect.Name(name))
		if err != nil {
			return b.malformed(m.fullName, err)
		}
		if err := b.addSymbol(methodSymbol, m); err != nil {
			return err
		}
	}
	return nil
}
