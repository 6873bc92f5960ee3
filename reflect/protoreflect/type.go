// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

// Descriptor provides a set of accessors that are common to every descriptor.
// Each descriptor type wraps the equivalent google.protobuf.XXXDescriptorProto,
// but provides efficient lookup and immutability.
//
// Descriptors are compared by identity. Two descriptors built from the same
// declaration in two separate builds are distinct values.
type Descriptor interface {
	// Parent returns the parent containing this descriptor declaration.
	// The following shows the mapping from child type to possible parent types:
	//
	//	+---------------------+-----------------------------------+
	//	| Child type          | Possible parent types             |
	//	+---------------------+-----------------------------------+
	//	| File                | nil                               |
	//	| Message             | File, Message                     |
	//	| Field               | File, Message                     |
	//	| Oneof               | Message                           |
	//	| Enum                | File, Message                     |
	//	| EnumValue           | Enum                              |
	//	| Service             | File                              |
	//	| Method              | Service                           |
	//	+---------------------+-----------------------------------+
	Parent() Descriptor

	// Index returns the the index of this descriptor within its parent.
	// It returns 0 if the descriptor does not have a parent.
	Index() int

	// Syntax is the protobuf syntax.
	Syntax() Syntax // e.g., Proto2 or Proto3

	// Name is the short name of the declaration (i.e., FullName.Name).
	Name() Name // e.g., "Any"

	// FullName is the fully-qualified name of the declaration.
	//
	// The FullName is a concatenation of the full name of the type that this
	// type is declared within and the declaration name. For example,
	// field "foo_field" in message "proto.package.MyMessage" is
	// uniquely identified as "proto.package.MyMessage.foo_field".
	// Enum values are an exception to the rule: they are scoped as
	// siblings of their enum, not children.
	FullName() FullName // e.g., "google.protobuf.Any"

	// IsPlaceholder reports whether type information is missing since a
	// dependency is not resolved, in which case only name information is known.
	IsPlaceholder() bool
}
