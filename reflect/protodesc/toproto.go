// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocore/protocore/reflect/protoreflect"
)

// ToFileDescriptorProto converts a File to a
// google.protobuf.FileDescriptorProto.
//
// Options are decoded from the raw bytes retained on each descriptor;
// extensions on options stay in the unknown fields of the options message.
func ToFileDescriptorProto(file *File) *descriptorpb.FileDescriptorProto {
	p := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(file.Path()),
		Options: optionsOf(file.options, &descriptorpb.FileOptions{}),
	}
	if file.fullName != "" {
		p.Package = proto.String(string(file.fullName))
	}
	for i, imp := range file.imports {
		p.Dependency = append(p.Dependency, imp.Path())
		if imp.IsPublic {
			p.PublicDependency = append(p.PublicDependency, int32(i))
		}
		if imp.IsWeak {
			p.WeakDependency = append(p.WeakDependency, int32(i))
		}
	}
	for i := range file.messages.list {
		p.MessageType = append(p.MessageType, ToDescriptorProto(&file.messages.list[i]))
	}
	for i := range file.enums.list {
		p.EnumType = append(p.EnumType, ToEnumDescriptorProto(&file.enums.list[i]))
	}
	for i := range file.services.list {
		p.Service = append(p.Service, ToServiceDescriptorProto(&file.services.list[i]))
	}
	for i := range file.extensions.list {
		p.Extension = append(p.Extension, ToFieldDescriptorProto(&file.extensions.list[i]))
	}
	switch file.syntax {
	case protoreflect.Proto3:
		p.Syntax = proto.String("proto3")
	case protoreflect.Editions:
		p.Syntax = proto.String("editions")
		p.Edition = descriptorpb.Edition(file.edition).Enum()
	}
	return p
}

// ToDescriptorProto converts a Message to a
// google.protobuf.DescriptorProto.
func ToDescriptorProto(message *Message) *descriptorpb.DescriptorProto {
	p := &descriptorpb.DescriptorProto{
		Name:    proto.String(string(message.Name())),
		Options: optionsOf(message.options, &descriptorpb.MessageOptions{}),
	}
	for i := range message.fields.list {
		p.Field = append(p.Field, ToFieldDescriptorProto(&message.fields.list[i]))
	}
	for i := range message.extensions.list {
		p.Extension = append(p.Extension, ToFieldDescriptorProto(&message.extensions.list[i]))
	}
	for i := range message.messages.list {
		p.NestedType = append(p.NestedType, ToDescriptorProto(&message.messages.list[i]))
	}
	for i := range message.enums.list {
		p.EnumType = append(p.EnumType, ToEnumDescriptorProto(&message.enums.list[i]))
	}
	for i, xrange := range message.extensionRanges.list {
		p.ExtensionRange = append(p.ExtensionRange, &descriptorpb.DescriptorProto_ExtensionRange{
			Start:   proto.Int32(int32(xrange[0])),
			End:     proto.Int32(int32(xrange[1])),
			Options: optionsOf(message.extRangeOptions[i], &descriptorpb.ExtensionRangeOptions{}),
		})
	}
	for i := range message.oneofs.list {
		p.OneofDecl = append(p.OneofDecl, ToOneofDescriptorProto(&message.oneofs.list[i]))
	}
	for _, rrange := range message.reservedRanges.list {
		p.ReservedRange = append(p.ReservedRange, &descriptorpb.DescriptorProto_ReservedRange{
			Start: proto.Int32(int32(rrange[0])),
			End:   proto.Int32(int32(rrange[1])),
		})
	}
	for _, name := range message.reservedNames.list {
		p.ReservedName = append(p.ReservedName, string(name))
	}
	return p
}

// ToFieldDescriptorProto converts a Field to a
// google.protobuf.FieldDescriptorProto.
func ToFieldDescriptorProto(field *Field) *descriptorpb.FieldDescriptorProto {
	p := &descriptorpb.FieldDescriptorProto{
		Name:    proto.String(string(field.Name())),
		Number:  proto.Int32(int32(field.Number())),
		Label:   descriptorpb.FieldDescriptorProto_Label(field.Cardinality()).Enum(),
		Type:    descriptorpb.FieldDescriptorProto_Type(field.Kind()).Enum(),
		Options: optionsOf(field.options, &descriptorpb.FieldOptions{}),
	}
	if field.IsExtension() {
		p.Extendee = fullNameOf(field.ContainingMessage())
	}
	switch field.Kind() {
	case protoreflect.EnumKind:
		p.TypeName = fullNameOf(field.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		p.TypeName = fullNameOf(field.Message())
	}
	if field.HasJSONName() {
		p.JsonName = proto.String(field.JSONName())
	}
	if field.HasDefault() {
		p.DefaultValue = proto.String(field.DefaultText())
	}
	if oneof := field.ContainingOneof(); oneof != nil {
		p.OneofIndex = proto.Int32(int32(oneof.Index()))
	}
	if field.HasOptionalKeyword() {
		p.Proto3Optional = proto.Bool(true)
	}
	return p
}

// ToOneofDescriptorProto converts a Oneof to a
// google.protobuf.OneofDescriptorProto.
func ToOneofDescriptorProto(oneof *Oneof) *descriptorpb.OneofDescriptorProto {
	return &descriptorpb.OneofDescriptorProto{
		Name:    proto.String(string(oneof.Name())),
		Options: optionsOf(oneof.options, &descriptorpb.OneofOptions{}),
	}
}

// ToEnumDescriptorProto converts an Enum to a
// google.protobuf.EnumDescriptorProto.
func ToEnumDescriptorProto(enum *Enum) *descriptorpb.EnumDescriptorProto {
	p := &descriptorpb.EnumDescriptorProto{
		Name:    proto.String(string(enum.Name())),
		Options: optionsOf(enum.options, &descriptorpb.EnumOptions{}),
	}
	for i := range enum.values.list {
		p.Value = append(p.Value, ToEnumValueDescriptorProto(&enum.values.list[i]))
	}
	for _, rrange := range enum.reservedRanges.list {
		p.ReservedRange = append(p.ReservedRange, &descriptorpb.EnumDescriptorProto_EnumReservedRange{
			Start: proto.Int32(int32(rrange[0])),
			End:   proto.Int32(int32(rrange[1])),
		})
	}
	for _, name := range enum.reservedNames.list {
		p.ReservedName = append(p.ReservedName, string(name))
	}
	return p
}

// ToEnumValueDescriptorProto converts an EnumValue to a
// google.protobuf.EnumValueDescriptorProto.
func ToEnumValueDescriptorProto(value *EnumValue) *descriptorpb.EnumValueDescriptorProto {
	return &descriptorpb.EnumValueDescriptorProto{
		Name:    proto.String(string(value.Name())),
		Number:  proto.Int32(int32(value.Number())),
		Options: optionsOf(value.options, &descriptorpb.EnumValueOptions{}),
	}
}

// ToServiceDescriptorProto converts a Service to a
// google.protobuf.ServiceDescriptorProto.
func ToServiceDescriptorProto(service *Service) *descriptorpb.ServiceDescriptorProto {
	p := &descriptorpb.ServiceDescriptorProto{
		Name:    proto.String(string(service.Name())),
		Options: optionsOf(service.options, &descriptorpb.ServiceOptions{}),
	}
	for i := range service.methods.list {
		p.Method = append(p.Method, ToMethodDescriptorProto(&service.methods.list[i]))
	}
	return p
}

// ToMethodDescriptorProto converts a Method to a
// google.protobuf.MethodDescriptorProto.
func ToMethodDescriptorProto(method *Method) *descriptorpb.MethodDescriptorProto {
	p := &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(string(method.Name())),
		InputType:  fullNameOf(method.Input()),
		OutputType: fullNameOf(method.Output()),
		Options:    optionsOf(method.options, &descriptorpb.MethodOptions{}),
	}
	if method.IsStreamingClient() {
		p.ClientStreaming = proto.Bool(true)
	}
	if method.IsStreamingServer() {
		p.ServerStreaming = proto.Bool(true)
	}
	return p
}

// optionsOf decodes raw into m. It returns nil for absent options and for
// options that fail to decode.
func optionsOf[M proto.Message](raw []byte, m M) M {
	var zero M
	if raw == nil {
		return zero
	}
	if err := proto.Unmarshal(raw, m); err != nil {
		return zero
	}
	return m
}

func fullNameOf(d protoreflect.Descriptor) *string {
	if d == nil {
		return nil
	}
	return proto.String("." + string(d.FullName()))
}
