// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// validateFile checks the linked file for the structural rules that the
// build and cross-link phases do not already enforce.
func (b *builder) validateFile() error {
	f := b.file
	for i := range f.enums.list {
		if err := b.validateEnum(&f.enums.list[i]); err != nil {
			return err
		}
	}
	for i := range f.messages.list {
		if err := b.validateMessage(&f.messages.list[i]); err != nil {
			return err
		}
	}
	for i := range f.extensions.list {
		if err := b.validateExtension(&f.extensions.list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) validateEnum(e *Enum) error {
	if len(e.values.list) == 0 {
		return b.errorf(e.fullName, "Enums must contain at least one value.")
	}
	if !e.IsClosed() && e.values.list[0].number != 0 {
		if b.file.syntax == protoreflect.Proto3 {
			return b.errorf(e.values.list[0].fullName, "The first enum value must be zero in proto3.")
		}
		return b.errorf(e.values.list[0].fullName, "The first enum value must be zero for open enums.")
	}
	for _, r := range e.reservedRanges.list {
		if r[0] > r[1] {
			return b.errorf(e.fullName, "Reserved range end number must be greater than start number.")
		}
	}
	for i := range e.values.list {
		v := &e.values.list[i]
		if e.IsReservedNumber(v.number) {
			return b.errorf(v.fullName, "Enum value %q uses reserved number %d.", string(v.Name()), v.number)
		}
		if e.IsReservedName(v.Name()) {
			return b.errorf(v.fullName, "Enum value %q uses reserved name %q.", string(v.Name()), string(v.Name()))
		}
	}
	if n := e.values.Distinct(); n < len(e.values.list) && !e.AllowAlias() {
		b.logger.WithFields(logrus.Fields{
			"file":    b.file.path,
			"enum":    string(e.fullName),
			"aliases": len(e.values.list) - n,
		}).Warn("protodesc: enum values share a number without allow_alias")
	}
	return nil
}

// maxExtensionNumber is the largest exclusive end of an extension range.
// MessageSet items are not limited to the field number space.
func (m *Message) maxExtensionNumber() protoreflect.FieldNumber {
	if m.isMessageSet {
		return math.MaxInt32
	}
	return wire.MaxValidNumber + 1
}

func (b *builder) validateMessage(m *Message) error {
	for i := range m.enums.list {
		if err := b.validateEnum(&m.enums.list[i]); err != nil {
			return err
		}
	}

	for _, r := range m.reservedRanges.list {
		switch {
		case r[0] <= 0:
			return b.errorf(m.fullName, "Reserved numbers must be positive integers.")
		case r[1] <= r[0]:
			return b.errorf(m.fullName, "Reserved range end number must be greater than start number.")
		}
	}
	if i, j, ok := m.reservedRanges.overlap(); ok {
		r0, r1 := m.reservedRanges.list[i], m.reservedRanges.list[j]
		return b.errorf(m.fullName, "Reserved range %d to %d overlaps with already-defined range %d to %d.", r1[0], r1[1]-1, r0[0], r0[1]-1)
	}
	for _, r := range m.extensionRanges.list {
		switch {
		case r[0] <= 0:
			return b.errorf(m.fullName, "Extension numbers must be positive integers.")
		case r[1] <= r[0]:
			return b.errorf(m.fullName, "Extension range end number must be greater than start number.")
		case r[1] > m.maxExtensionNumber():
			return b.errorf(m.fullName, "Extension numbers cannot be greater than %d.", m.maxExtensionNumber()-1)
		}
		for _, rr := range m.reservedRanges.list {
			if r[0] < rr[1] && rr[0] < r[1] {
				return b.errorf(m.fullName, "Extension range %d to %d overlaps with reserved range %d to %d.", r[0], r[1]-1, rr[0], rr[1]-1)
			}
		}
	}
	if i, j, ok := m.extensionRanges.overlap(); ok {
		r0, r1 := m.extensionRanges.list[i], m.extensionRanges.list[j]
		return b.errorf(m.fullName, "Extension range %d to %d overlaps with already-defined range %d to %d.", r1[0], r1[1]-1, r0[0], r0[1]-1)
	}

	if m.isMessageSet {
		if b.file.syntax == protoreflect.Proto3 {
			return b.errorf(m.fullName, "MessageSet is not supported in proto3.")
		}
		if len(m.fields.list) > 0 {
			return b.errorf(m.fullName, "MessageSets cannot have fields, only extensions.")
		}
	}
	if m.isMapEntry {
		if err := b.validateMapEntry(m); err != nil {
			return err
		}
	}

	jsonNames := make(map[string]*Field, len(m.fields.list))
	for i := range m.fields.list {
		fd := &m.fields.list[i]
		if err := b.validateField(fd); err != nil {
			return err
		}
		if m.IsReservedNumber(fd.number) {
			return b.errorf(fd.fullName, "Field %q uses reserved number %d.", string(fd.Name()), fd.number)
		}
		if m.IsReservedName(fd.Name()) {
			return b.errorf(fd.fullName, "Field %q uses reserved name %q.", string(fd.Name()), string(fd.Name()))
		}
		for _, r := range m.extensionRanges.list {
			if r[0] <= fd.number && fd.number < r[1] {
				return b.errorf(fd.fullName, "Extension range %d to %d includes field %q (%d).", r[0], r[1]-1, string(fd.Name()), fd.number)
			}
		}
		if b.file.syntax == protoreflect.Proto3 {
			key := strings.ToLower(jsonName(fd.Name()))
			if prev, ok := jsonNames[key]; ok {
				return b.errorf(fd.fullName, "The JSON camel-case name of field %q conflicts with field %q. This is not allowed in proto3.", string(fd.Name()), string(prev.Name()))
			}
			jsonNames[key] = fd
		}
	}

	if err := b.validateOneofs(m); err != nil {
		return err
	}
	for i := range m.extensions.list {
		if err := b.validateExtension(&m.extensions.list[i]); err != nil {
			return err
		}
	}
	for i := range m.messages.list {
		if err := b.validateMessage(&m.messages.list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) validateOneofs(m *Message) error {
	seenSynthetic := false
	for i := range m.oneofs.list {
		o := &m.oneofs.list[i]
		if len(o.fields) == 0 {
			return b.errorf(o.fullName, "Oneof must have at least one field.")
		}
		// Member fields must be declared consecutively.
		first := o.fields[0].index
		for j, fd := range o.fields {
			if fd.index != first+j {
				return b.errorf(fd.fullName, "Fields in the same oneof must be defined consecutively. %q cannot be defined before the completion of the %q oneof definition.", string(m.fields.list[first+j].Name()), string(o.Name()))
			}
			if fd.cardinality != protoreflect.Optional {
				return b.errorf(fd.fullName, "Fields in oneofs must not have labels (required / optional / repeated).")
			}
		}
		if o.IsSynthetic() {
			seenSynthetic = true
		} else if seenSynthetic {
			return b.errorf(o.fullName, "Synthetic oneofs must be after all other oneofs.")
		}
	}
	return nil
}

func (b *builder) validateMapEntry(m *Message) error {
	key := m.fields.ByNumber(1)
	val := m.fields.ByNumber(2)
	switch {
	case !strings.HasSuffix(string(m.Name()), "Entry"):
		return b.errorf(m.fullName, "Map entry message name must end with \"Entry\".")
	case len(m.fields.list) != 2 || key == nil || val == nil || key.Name() != "key" || val.Name() != "value":
		return b.errorf(m.fullName, "Map entry must have exactly a key field numbered 1 and a value field numbered 2.")
	case key.cardinality == protoreflect.Repeated || val.cardinality == protoreflect.Repeated:
		return b.errorf(m.fullName, "Map entry fields must not be repeated.")
	case len(m.extensions.list) > 0 || len(m.messages.list) > 0 || len(m.enums.list) > 0 || len(m.oneofs.list) > 0:
		return b.errorf(m.fullName, "Map entry must not declare nested types, extensions or oneofs.")
	}
	switch key.kind {
	case protoreflect.FloatKind, protoreflect.DoubleKind, protoreflect.BytesKind,
		protoreflect.MessageKind, protoreflect.GroupKind, protoreflect.EnumKind:
		return b.errorf(key.fullName, "Key in map fields cannot be float/double, bytes, enum or message types.")
	}
	return nil
}

// validateField checks the rules shared by message fields and extensions.
func (b *builder) validateField(fd *Field) error {
	switch {
	case fd.number <= 0:
		return b.errorf(fd.fullName, "Field numbers must be positive integers.")
	case fd.number > wire.MaxValidNumber && !(fd.isExtension && fd.containingMessage.isMessageSet):
		return b.errorf(fd.fullName, "Field numbers cannot be greater than %d.", wire.MaxValidNumber)
	case wire.FirstReservedNumber <= fd.number && fd.number <= wire.LastReservedNumber:
		return b.errorf(fd.fullName, "Field numbers %d through %d are reserved for the protocol buffer library implementation.", wire.FirstReservedNumber, wire.LastReservedNumber)
	case !fd.cardinality.IsValid():
		return b.errorf(fd.fullName, "Invalid label %d.", fd.cardinality)
	}

	if fd.packed != nil {
		if b.file.syntax == protoreflect.Editions {
			return b.errorf(fd.fullName, "Field option packed is not allowed under editions. Use the repeated_field_encoding feature instead.")
		}
		if *fd.packed && (fd.cardinality != protoreflect.Repeated || !fd.kind.IsPackable()) {
			return b.errorf(fd.fullName, "[packed = true] can only be specified for repeated primitive fields.")
		}
	}

	switch b.file.syntax {
	case protoreflect.Proto3:
		switch {
		case fd.cardinality == protoreflect.Required:
			return b.errorf(fd.fullName, "Required fields are not allowed in proto3.")
		case fd.hasDefault:
			return b.errorf(fd.fullName, "Explicit default values are not allowed in proto3.")
		case fd.kind == protoreflect.GroupKind:
			return b.errorf(fd.fullName, "Groups are not supported in proto3 syntax.")
		case fd.enum != nil && fd.enum.IsClosed() && !fd.isExtension:
			return b.errorf(fd.fullName, "Enum type %q is not an open enum, but is used in %q which is a proto3 message type.", string(fd.enum.fullName), string(fd.containingMessage.fullName))
		}
	case protoreflect.Proto2:
		if fd.proto3Optional {
			return b.errorf(fd.fullName, "proto3_optional is only allowed in proto3 files.")
		}
	}
	if fd.proto3Optional {
		if fd.containingOneof == nil || !fd.containingOneof.IsSynthetic() {
			return b.errorf(fd.fullName, "Fields with proto3_optional set must be the only member of a oneof.")
		}
	}
	return nil
}

func (b *builder) validateExtension(x *Field) error {
	if err := b.validateField(x); err != nil {
		return err
	}
	m := x.containingMessage
	if m.IsPlaceholder() {
		return nil
	}
	if !m.IsExtensionNumber(x.number) {
		return b.errorf(x.fullName, "%q does not declare %d as an extension number.", string(m.fullName), x.number)
	}
	if x.cardinality == protoreflect.Required {
		return b.errorf(x.fullName, "The extension %q cannot be required.", string(x.fullName))
	}
	if m.isMessageSet && (x.cardinality != protoreflect.Optional || x.kind != protoreflect.MessageKind) {
		return b.errorf(x.fullName, "Extensions of MessageSets must be optional messages.")
	}
	if b.file.syntax == protoreflect.Proto3 && !isOptionsMessage(m.fullName) {
		return b.errorf(x.fullName, "Extensions in proto3 are only allowed for defining options.")
	}
	return nil
}

func isOptionsMessage(name protoreflect.FullName) bool {
	return name.Parent() == "google.protobuf" && strings.HasSuffix(string(name.Name()), "Options")
}
