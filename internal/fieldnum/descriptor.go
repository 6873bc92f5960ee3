// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fieldnum contains the field numbers of google/protobuf/descriptor.proto
// that the raw descriptor decoder and encoder need.
package fieldnum

import (
	"github.com/protocore/protocore/encoding/wire"
)

// Field numbers for google.protobuf.FileDescriptorSet.
const (
	FileDescriptorSet_File = 1 // repeated google.protobuf.FileDescriptorProto
)

// Field numbers for google.protobuf.FileDescriptorProto.
const (
	FileDescriptorProto_Name             = 1  // optional string
	FileDescriptorProto_Package          = 2  // optional string
	FileDescriptorProto_Dependency       = 3  // repeated string
	FileDescriptorProto_MessageType      = 4  // repeated google.protobuf.DescriptorProto
	FileDescriptorProto_EnumType         = 5  // repeated google.protobuf.EnumDescriptorProto
	FileDescriptorProto_Service          = 6  // repeated google.protobuf.ServiceDescriptorProto
	FileDescriptorProto_Extension        = 7  // repeated google.protobuf.FieldDescriptorProto
	FileDescriptorProto_Options          = 8  // optional google.protobuf.FileOptions
	FileDescriptorProto_SourceCodeInfo   = 9  // optional google.protobuf.SourceCodeInfo
	FileDescriptorProto_PublicDependency = 10 // repeated int32
	FileDescriptorProto_WeakDependency   = 11 // repeated int32
	FileDescriptorProto_Syntax           = 12 // optional string
	FileDescriptorProto_Edition          = 14 // optional google.protobuf.Edition
)

// Field numbers for google.protobuf.DescriptorProto.
const (
	DescriptorProto_Name           = 1  // optional string
	DescriptorProto_Field          = 2  // repeated google.protobuf.FieldDescriptorProto
	DescriptorProto_NestedType     = 3  // repeated google.protobuf.DescriptorProto
	DescriptorProto_EnumType       = 4  // repeated google.protobuf.EnumDescriptorProto
	DescriptorProto_ExtensionRange = 5  // repeated google.protobuf.DescriptorProto.ExtensionRange
	DescriptorProto_Extension      = 6  // repeated google.protobuf.FieldDescriptorProto
	DescriptorProto_Options        = 7  // optional google.protobuf.MessageOptions
	DescriptorProto_OneofDecl      = 8  // repeated google.protobuf.OneofDescriptorProto
	DescriptorProto_ReservedRange  = 9  // repeated google.protobuf.DescriptorProto.ReservedRange
	DescriptorProto_ReservedName   = 10 // repeated string
)

// Field numbers for google.protobuf.DescriptorProto.ExtensionRange.
const (
	DescriptorProto_ExtensionRange_Start   = 1 // optional int32
	DescriptorProto_ExtensionRange_End     = 2 // optional int32
	DescriptorProto_ExtensionRange_Options = 3 // optional google.protobuf.ExtensionRangeOptions
)

// Field numbers for google.protobuf.DescriptorProto.ReservedRange.
const (
	DescriptorProto_ReservedRange_Start = 1 // optional int32
	DescriptorProto_ReservedRange_End   = 2 // optional int32
)

// Field numbers for google.protobuf.FieldDescriptorProto.
const (
	FieldDescriptorProto_Name           = 1  // optional string
	FieldDescriptorProto_Extendee       = 2  // optional string
	FieldDescriptorProto_Number         = 3  // optional int32
	FieldDescriptorProto_Label          = 4  // optional google.protobuf.FieldDescriptorProto.Label
	FieldDescriptorProto_Type           = 5  // optional google.protobuf.FieldDescriptorProto.Type
	FieldDescriptorProto_TypeName       = 6  // optional string
	FieldDescriptorProto_DefaultValue   = 7  // optional string
	FieldDescriptorProto_Options        = 8  // optional google.protobuf.FieldOptions
	FieldDescriptorProto_OneofIndex     = 9  // optional int32
	FieldDescriptorProto_JsonName       = 10 // optional string
	FieldDescriptorProto_Proto3Optional = 17 // optional bool
)

// Field numbers for google.protobuf.OneofDescriptorProto.
const (
	OneofDescriptorProto_Name    = 1 // optional string
	OneofDescriptorProto_Options = 2 // optional google.protobuf.OneofOptions
)

// Field numbers for google.protobuf.EnumDescriptorProto.
const (
	EnumDescriptorProto_Name          = 1 // optional string
	EnumDescriptorProto_Value         = 2 // repeated google.protobuf.EnumValueDescriptorProto
	EnumDescriptorProto_Options       = 3 // optional google.protobuf.EnumOptions
	EnumDescriptorProto_ReservedRange = 4 // repeated google.protobuf.EnumDescriptorProto.EnumReservedRange
	EnumDescriptorProto_ReservedName  = 5 // repeated string
)

// Field numbers for google.protobuf.EnumDescriptorProto.EnumReservedRange.
const (
	EnumDescriptorProto_EnumReservedRange_Start = 1 // optional int32
	EnumDescriptorProto_EnumReservedRange_End   = 2 // optional int32
)

// Field numbers for google.protobuf.EnumValueDescriptorProto.
const (
	EnumValueDescriptorProto_Name    = 1 // optional string
	EnumValueDescriptorProto_Number  = 2 // optional int32
	EnumValueDescriptorProto_Options = 3 // optional google.protobuf.EnumValueOptions
)

// Field numbers for google.protobuf.ServiceDescriptorProto.
const (
	ServiceDescriptorProto_Name    = 1 // optional string
	ServiceDescriptorProto_Method  = 2 // repeated google.protobuf.MethodDescriptorProto
	ServiceDescriptorProto_Options = 3 // optional google.protobuf.ServiceOptions
)

// Field numbers for google.protobuf.MethodDescriptorProto.
const (
	MethodDescriptorProto_Name            = 1 // optional string
	MethodDescriptorProto_InputType       = 2 // optional string
	MethodDescriptorProto_OutputType      = 3 // optional string
	MethodDescriptorProto_Options         = 4 // optional google.protobuf.MethodOptions
	MethodDescriptorProto_ClientStreaming = 5 // optional bool
	MethodDescriptorProto_ServerStreaming = 6 // optional bool
)

// Field numbers for google.protobuf.FileOptions.
const (
	FileOptions_Features = 50 // optional google.protobuf.FeatureSet
)

// Field numbers for google.protobuf.MessageOptions.
const (
	MessageOptions_MessageSetWireFormat = 1  // optional bool
	MessageOptions_Deprecated           = 3  // optional bool
	MessageOptions_MapEntry             = 7  // optional bool
	MessageOptions_Features             = 12 // optional google.protobuf.FeatureSet
)

// Field numbers for google.protobuf.FieldOptions.
const (
	FieldOptions_Packed     = 2  // optional bool
	FieldOptions_Deprecated = 3  // optional bool
	FieldOptions_Lazy       = 5  // optional bool
	FieldOptions_Weak       = 10 // optional bool
	FieldOptions_Features   = 21 // optional google.protobuf.FeatureSet
)

// Field numbers for google.protobuf.EnumOptions.
const (
	EnumOptions_AllowAlias = 2 // optional bool
	EnumOptions_Deprecated = 3 // optional bool
	EnumOptions_Features   = 7 // optional google.protobuf.FeatureSet
)

// Field numbers for google.protobuf.OneofOptions.
const (
	OneofOptions_Features = 1 // optional google.protobuf.FeatureSet
)

// Field numbers for google.protobuf.FeatureSet.
const (
	FeatureSet_FieldPresence         = 1 // optional google.protobuf.FeatureSet.FieldPresence
	FeatureSet_EnumType              = 2 // optional google.protobuf.FeatureSet.EnumType
	FeatureSet_RepeatedFieldEncoding = 3 // optional google.protobuf.FeatureSet.RepeatedFieldEncoding
	FeatureSet_Utf8Validation        = 4 // optional google.protobuf.FeatureSet.Utf8Validation
	FeatureSet_MessageEncoding       = 5 // optional google.protobuf.FeatureSet.MessageEncoding
	FeatureSet_JsonFormat            = 6 // optional google.protobuf.FeatureSet.JsonFormat
)

// Map entry field numbers.
const (
	MapEntry_Key   wire.Number = 1
	MapEntry_Value wire.Number = 2
)
