// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"github.com/sirupsen/logrus"

	"github.com/protocore/protocore/internal/defval"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// Edition is a value of the google.protobuf.Edition enumeration.
type Edition int32

const (
	EditionUnknown Edition = 0
	EditionProto2  Edition = 998
	EditionProto3  Edition = 999
	Edition2023    Edition = 1000
	Edition2024    Edition = 1001
)

// base carries the fields shared by every descriptor.
type base struct {
	file     *File
	parent   protoreflect.Descriptor
	index    int
	fullName protoreflect.FullName
}

func (d *base) Parent() protoreflect.Descriptor { return d.parent }
func (d *base) Index() int                      { return d.index }
func (d *base) Syntax() protoreflect.Syntax     { return d.file.syntax }
func (d *base) Name() protoreflect.Name         { return d.fullName.Name() }
func (d *base) FullName() protoreflect.FullName { return d.fullName }
func (d *base) IsPlaceholder() bool             { return false }
func (d *base) ParentFile() *File               { return d.file }

func (d *base) init(f *File, p protoreflect.Descriptor, i int) { d.file, d.parent, d.index = f, p, i }

// Import is a file imported by another file.
type Import struct {
	*File

	IsPublic bool
	IsWeak   bool
}

// File is a linked google.protobuf.FileDescriptorProto.
//
// A File and every descriptor beneath it are immutable once BuildFrom
// returns and may be read concurrently.
type File struct {
	base
	path        string
	edition     Edition
	syntax      protoreflect.Syntax
	imports     []Import
	messages    Messages
	enums       Enums
	extensions  Extensions
	services    Services
	options     []byte
	features    features
	placeholder bool

	symbols   symbolTable
	visible   []*File // imports and their public imports, transitively
	logger    logrus.FieldLogger
	cacheSize int
}

func (f *File) Parent() protoreflect.Descriptor { return nil }
func (f *File) Index() int                      { return 0 }
func (f *File) Syntax() protoreflect.Syntax     { return f.syntax }
func (f *File) IsPlaceholder() bool             { return f.placeholder }

// Path is the file path relative to the root of the source tree.
func (f *File) Path() string { return f.path }

// Package is the protobuf package the file declares.
func (f *File) Package() protoreflect.FullName { return f.fullName }

// Edition reports the edition of an editions file, or the equivalent legacy
// edition for proto2 and proto3 files.
func (f *File) Edition() Edition { return f.edition }

func (f *File) Imports() []Import       { return f.imports }
func (f *File) Messages() *Messages     { return &f.messages }
func (f *File) Enums() *Enums           { return &f.enums }
func (f *File) Extensions() *Extensions { return &f.extensions }
func (f *File) Services() *Services     { return &f.services }

// Options returns the encoded google.protobuf.FileOptions.
func (f *File) Options() []byte { return f.options }

// Message is a linked google.protobuf.DescriptorProto.
type Message struct {
	base
	fields          Fields
	oneofs          Oneofs
	messages        Messages
	enums           Enums
	extensions      Extensions
	extensionRanges FieldRanges
	extRangeOptions [][]byte
	reservedRanges  FieldRanges
	reservedNames   Names
	options         []byte
	features        features
	isMapEntry      bool
	isMessageSet    bool
	placeholder     bool
}

func (m *Message) IsPlaceholder() bool { return m.placeholder }

func (m *Message) Fields() *Fields               { return &m.fields }
func (m *Message) Oneofs() *Oneofs               { return &m.oneofs }
func (m *Message) Messages() *Messages           { return &m.messages }
func (m *Message) Enums() *Enums                 { return &m.enums }
func (m *Message) Extensions() *Extensions       { return &m.extensions }
func (m *Message) ExtensionRanges() *FieldRanges { return &m.extensionRanges }
func (m *Message) ReservedRanges() *FieldRanges  { return &m.reservedRanges }
func (m *Message) ReservedNames() *Names         { return &m.reservedNames }
func (m *Message) Options() []byte               { return m.options }
func (m *Message) IsMapEntry() bool              { return m.isMapEntry }
func (m *Message) IsMessageSet() bool            { return m.isMessageSet }

// ExtensionRangeOptions returns the raw options of the i-th extension range.
func (m *Message) ExtensionRangeOptions(i int) []byte { return m.extRangeOptions[i] }

// FindFieldByName returns the field with the given short name, or nil.
func (m *Message) FindFieldByName(s protoreflect.Name) *Field { return m.fields.ByName(s) }

// FindFieldByJSONName returns the field with the given JSON name, or nil.
func (m *Message) FindFieldByJSONName(s string) *Field { return m.fields.ByJSONName(s) }

// FindFieldByNumber returns the field with the given number, or nil.
func (m *Message) FindFieldByNumber(n protoreflect.FieldNumber) *Field { return m.fields.ByNumber(n) }

// IsExtensionNumber reports whether n lies within an extension range.
func (m *Message) IsExtensionNumber(n protoreflect.FieldNumber) bool { return m.extensionRanges.Has(n) }

// IsReservedNumber reports whether n lies within a reserved range.
func (m *Message) IsReservedNumber(n protoreflect.FieldNumber) bool { return m.reservedRanges.Has(n) }

// IsReservedName reports whether s is a reserved field name.
func (m *Message) IsReservedName(s protoreflect.Name) bool { return m.reservedNames.Has(s) }

// Field is a linked google.protobuf.FieldDescriptorProto.
// It describes both message fields and extension fields.
type Field struct {
	base
	number         protoreflect.FieldNumber
	cardinality    protoreflect.Cardinality
	kind           protoreflect.Kind
	typeName       string
	extendee       string
	jsonName       string
	hasJSONName    bool
	defaultText    string
	hasDefault     bool
	oneofIndex     int32
	hasOneofIndex  bool
	proto3Optional bool
	options        []byte
	packed         *bool
	isWeak         bool
	isLazy         bool
	isExtension    bool
	features       features

	containingMessage *Message
	containingOneof   *Oneof
	message           *Message
	enum              *Enum
	defaultValue      protoreflect.Value
	defaultEnumValue  *EnumValue
}

func (f *Field) Number() protoreflect.FieldNumber      { return f.number }
func (f *Field) Cardinality() protoreflect.Cardinality { return f.cardinality }
func (f *Field) Kind() protoreflect.Kind               { return f.kind }
func (f *Field) IsExtension() bool                     { return f.isExtension }
func (f *Field) IsWeak() bool                          { return f.isWeak }
func (f *Field) IsLazy() bool                          { return f.isLazy }
func (f *Field) IsList() bool                          { return f.cardinality == protoreflect.Repeated && !f.IsMap() }
func (f *Field) Options() []byte                       { return f.options }

// JSONName is the field name in JSON, either declared or derived by
// camel-casing the field name.
func (f *Field) JSONName() string { return f.jsonName }

// HasJSONName reports whether the JSON name was declared explicitly.
func (f *Field) HasJSONName() bool { return f.hasJSONName }

// HasOptionalKeyword reports whether the field was declared with the
// optional keyword in a proto3 file.
func (f *Field) HasOptionalKeyword() bool { return f.proto3Optional }

// IsPacked reports whether repeated values use the packed encoding.
// An explicit packed option wins over the resolved repeated_field_encoding
// feature, which defaults to expanded in proto2 and packed otherwise.
func (f *Field) IsPacked() bool {
	if f.cardinality != protoreflect.Repeated || !f.kind.IsPackable() {
		return false
	}
	if f.packed != nil {
		return *f.packed
	}
	return f.features.repeatedFieldEncoding == repeatedPacked
}

// IsMap reports whether the field is a map, that is a repeated field of
// a synthesized map entry message.
func (f *Field) IsMap() bool {
	return f.cardinality == protoreflect.Repeated && f.message != nil && f.message.isMapEntry
}

// MapKey returns the key field of a map field, or nil.
func (f *Field) MapKey() *Field {
	if !f.IsMap() {
		return nil
	}
	return f.message.fields.ByNumber(1)
}

// MapValue returns the value field of a map field, or nil.
func (f *Field) MapValue() *Field {
	if !f.IsMap() {
		return nil
	}
	return f.message.fields.ByNumber(2)
}

// HasPresence reports whether the field distinguishes between unpopulated
// and default values.
func (f *Field) HasPresence() bool {
	if f.cardinality == protoreflect.Repeated {
		return false
	}
	return f.isExtension || f.message != nil || f.containingOneof != nil ||
		f.features.fieldPresence != presenceImplicit
}

// HasDefault reports whether the field declares an explicit default value.
func (f *Field) HasDefault() bool { return f.hasDefault }

// Default returns the default value of a scalar field. For enums it is the
// declared default or the first value of the enum. Message and repeated
// fields have no default and return an invalid Value.
func (f *Field) Default() protoreflect.Value {
	if f.defaultValue.IsValid() || f.cardinality == protoreflect.Repeated {
		return f.defaultValue
	}
	return zeroValue(f.kind)
}

// DefaultEnumValue returns the enum value of the default, or nil if the
// field is not an enum.
func (f *Field) DefaultEnumValue() *EnumValue { return f.defaultEnumValue }

// ContainingMessage is the message that holds the field. For extensions it
// is the extended message.
func (f *Field) ContainingMessage() *Message { return f.containingMessage }

// ContainingOneof is the oneof the field belongs to, or nil.
func (f *Field) ContainingOneof() *Oneof { return f.containingOneof }

// ExtensionScope is the message the extension is declared in, or nil for
// extensions declared at file scope and for message fields.
func (f *Field) ExtensionScope() *Message {
	if !f.isExtension {
		return nil
	}
	m, _ := f.parent.(*Message)
	return m
}

// Message is the message type of a message or group field.
func (f *Field) Message() *Message { return f.message }

// Enum is the enum type of an enum field.
func (f *Field) Enum() *Enum { return f.enum }

func zeroValue(k protoreflect.Kind) protoreflect.Value {
	switch k {
	case protoreflect.BoolKind:
		return protoreflect.ValueOfBool(false)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.ValueOfInt32(0)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.ValueOfInt64(0)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.ValueOfUint32(0)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.ValueOfUint64(0)
	case protoreflect.FloatKind:
		return protoreflect.ValueOfFloat32(0)
	case protoreflect.DoubleKind:
		return protoreflect.ValueOfFloat64(0)
	case protoreflect.StringKind:
		return protoreflect.ValueOfString("")
	case protoreflect.BytesKind:
		return protoreflect.ValueOfBytes(nil)
	}
	return protoreflect.Value{}
}

// DefaultText returns the default in the textual form used by
// FieldDescriptorProto.default_value.
func (f *Field) DefaultText() string {
	if !f.hasDefault {
		return ""
	}
	if f.defaultEnumValue != nil {
		return string(f.defaultEnumValue.Name())
	}
	s, err := defval.Marshal(f.defaultValue, f.kind)
	if err != nil {
		return f.defaultText
	}
	return s
}

// Oneof is a linked google.protobuf.OneofDescriptorProto.
type Oneof struct {
	base
	fields   []*Field
	options  []byte
	features features
}

func (o *Oneof) Fields() []*Field { return o.fields }
func (o *Oneof) Options() []byte  { return o.options }

// IsSynthetic reports whether the oneof was synthesized for a proto3
// optional field.
func (o *Oneof) IsSynthetic() bool {
	return len(o.fields) == 1 && o.fields[0].proto3Optional
}

// Enum is a linked google.protobuf.EnumDescriptorProto.
type Enum struct {
	base
	values         EnumValues
	reservedRanges EnumRanges
	reservedNames  Names
	options        []byte
	allowAlias     bool
	features       features
	unknown        unknownValues
}

func (e *Enum) Values() *EnumValues         { return &e.values }
func (e *Enum) ReservedRanges() *EnumRanges { return &e.reservedRanges }
func (e *Enum) ReservedNames() *Names       { return &e.reservedNames }
func (e *Enum) Options() []byte             { return e.options }

// AllowAlias reports whether the enum sets the allow_alias option, which
// declares that several values may share a number.
func (e *Enum) AllowAlias() bool { return e.allowAlias }

// IsClosed reports whether unrecognized numbers are rejected for fields of
// this enum type, as proto2 enums are.
func (e *Enum) IsClosed() bool { return e.features.enumType == enumClosed }

// FindValueByName returns the value with the given short name, or nil.
func (e *Enum) FindValueByName(s protoreflect.Name) *EnumValue { return e.values.ByName(s) }

// FindValueByNumber returns the first declared value with the given number,
// or nil.
func (e *Enum) FindValueByNumber(n protoreflect.EnumNumber) *EnumValue { return e.values.ByNumber(n) }

// IsReservedNumber reports whether n lies within a reserved range.
func (e *Enum) IsReservedNumber(n protoreflect.EnumNumber) bool { return e.reservedRanges.Has(n) }

// IsReservedName reports whether s is a reserved value name.
func (e *Enum) IsReservedName(s protoreflect.Name) bool { return e.reservedNames.Has(s) }

// EnumValue is a linked google.protobuf.EnumValueDescriptorProto.
//
// The full name of an enum value is a sibling of its enum, not a child:
// value FOO of enum pkg.E is named pkg.FOO.
type EnumValue struct {
	base
	number  protoreflect.EnumNumber
	options []byte
	unknown bool
}

func (v *EnumValue) Number() protoreflect.EnumNumber { return v.number }
func (v *EnumValue) Options() []byte                 { return v.options }

// IsUnknown reports whether the value was synthesized for a number the enum
// does not declare. Such values have an Index of -1.
func (v *EnumValue) IsUnknown() bool { return v.unknown }

// Enum returns the enum that declares v.
func (v *EnumValue) Enum() *Enum { return v.parent.(*Enum) }

// Service is a linked google.protobuf.ServiceDescriptorProto.
type Service struct {
	base
	methods Methods
	options []byte
}

func (s *Service) Methods() *Methods { return &s.methods }
func (s *Service) Options() []byte   { return s.options }

// FindMethodByName returns the method with the given short name, or nil.
func (s *Service) FindMethodByName(n protoreflect.Name) *Method { return s.methods.ByName(n) }

// Method is a linked google.protobuf.MethodDescriptorProto.
type Method struct {
	base
	inputName         string
	outputName        string
	input             *Message
	output            *Message
	isStreamingClient bool
	isStreamingServer bool
	options           []byte
}

func (m *Method) Input() *Message         { return m.input }
func (m *Method) Output() *Message        { return m.output }
func (m *Method) IsStreamingClient() bool { return m.isStreamingClient }
func (m *Method) IsStreamingServer() bool { return m.isStreamingServer }
func (m *Method) Options() []byte         { return m.options }

var (
	_ protoreflect.Descriptor = (*File)(nil)
	_ protoreflect.Descriptor = (*Message)(nil)
	_ protoreflect.Descriptor = (*Field)(nil)
	_ protoreflect.Descriptor = (*Oneof)(nil)
	_ protoreflect.Descriptor = (*Enum)(nil)
	_ protoreflect.Descriptor = (*EnumValue)(nil)
	_ protoreflect.Descriptor = (*Service)(nil)
	_ protoreflect.Descriptor = (*Method)(nil)
)
