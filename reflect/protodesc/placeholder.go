// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"github.com/protocore/protocore/reflect/protoreflect"
)

// Placeholders stand in for declarations that live in files which were
// not supplied to the build. They carry names only.

const placeholderSuffix = ".placeholder.proto"

// newPlaceholderFile returns an empty file for an import that was not
// supplied to the build.
func newPlaceholderFile(path string, pkg protoreflect.FullName) *File {
	f := &File{
		path:        path,
		syntax:      protoreflect.Proto2,
		edition:     EditionProto2,
		features:    editionDefaults(EditionProto2),
		placeholder: true,
	}
	f.file = f
	f.fullName = pkg
	f.symbols = symbolTable{file: f, names: make(map[protoreflect.FullName]symbol)}
	for p := pkg; p != ""; p = p.Parent() {
		f.symbols.names[p] = symbol{kind: packageSymbol, file: f, placeholder: true}
	}
	return f
}

// newPlaceholderMessage returns a message named name declared in its own
// placeholder file, whose package is the parent of name.
func newPlaceholderMessage(name protoreflect.FullName) *Message {
	f := newPlaceholderFile(string(name)+placeholderSuffix, name.Parent())
	f.messages.list = make([]Message, 1)
	m := &f.messages.list[0]
	m.init(f, f, 0)
	m.fullName = name
	m.features = f.features
	m.placeholder = true
	f.messages.index()
	f.symbols.names[name] = symbol{kind: messageSymbol, desc: m, file: f}
	return m
}
