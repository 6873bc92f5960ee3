// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/protocore/protocore/reflect/protoreflect"
)

type symbolKind int8

const (
	packageSymbol symbolKind = iota + 1
	messageSymbol
	enumSymbol
	enumValueSymbol
	fieldSymbol
	oneofSymbol
	serviceSymbol
	methodSymbol
)

func (k symbolKind) String() string {
	switch k {
	case packageSymbol:
		return "package"
	case messageSymbol:
		return "message"
	case enumSymbol:
		return "enum"
	case enumValueSymbol:
		return "enum value"
	case fieldSymbol:
		return "field"
	case oneofSymbol:
		return "oneof"
	case serviceSymbol:
		return "service"
	case methodSymbol:
		return "method"
	default:
		return "<unknown>"
	}
}

// symbol is an entry in a symbol table. Packages carry no descriptor.
type symbol struct {
	kind        symbolKind
	desc        protoreflect.Descriptor
	file        *File
	placeholder bool // package registered on behalf of a placeholder
}

func (s symbol) isType() bool {
	return s.kind == messageSymbol || s.kind == enumSymbol
}

func (s symbol) isAggregate() bool {
	return s.isType() || s.kind == packageSymbol || s.kind == serviceSymbol
}

type searchFilter int8

const (
	typesOnly searchFilter = iota
	aggregatesOnly
	allSymbols
)

func (f searchFilter) match(s symbol) bool {
	switch f {
	case typesOnly:
		return s.isType()
	case aggregatesOnly:
		return s.isAggregate()
	default:
		return true
	}
}

// symbolTable maps the full names declared by one file to their
// descriptors. Lookups consult the file's own table first and then the
// tables of every visible dependency.
type symbolTable struct {
	file  *File
	names map[protoreflect.FullName]symbol
}

// findSymbol returns the symbol named name that passes the filter.
func (t *symbolTable) findSymbol(name protoreflect.FullName, filter searchFilter) (symbol, bool) {
	if s, ok := t.names[name]; ok && filter.match(s) {
		return s, true
	}
	for _, dep := range t.file.visible {
		if s, ok := dep.symbols.names[name]; ok && filter.match(s) {
			return s, true
		}
	}
	return symbol{}, false
}

// defined returns an existing symbol named name for which skip reports
// false. Unlike scoped lookups it searches every file reachable through
// imports, public or not, as full names are unique across all of them.
func (b *builder) defined(name protoreflect.FullName, skip func(symbol) bool) (symbol, bool) {
	if s, ok := b.file.symbols.names[name]; ok && !skip(s) {
		return s, true
	}
	for _, d := range b.closure {
		if s, ok := d.symbols.names[name]; ok && !skip(s) {
			return s, true
		}
	}
	return symbol{}, false
}

func isPlaceholderPackage(s symbol) bool { return s.kind == packageSymbol && s.placeholder }
func isPackage(s symbol) bool            { return s.kind == packageSymbol }

// addSymbol registers d under its full name. A prior package entry that
// was registered for a placeholder is replaced; any other prior entry is
// a duplicate definition.
func (b *builder) addSymbol(kind symbolKind, d protoreflect.Descriptor) error {
	name := d.FullName()
	if d.Name() == "" {
		return b.errorf(name, "Missing name.")
	}
	if !d.Name().IsValid() {
		return b.errorf(name, "%q is not a valid identifier.", d.Name())
	}
	t := &b.file.symbols
	if old, ok := b.defined(name, isPlaceholderPackage); ok {
		if old.file != b.file {
			return b.errorf(name, "%q is already defined in file %q.", string(name), old.file.path)
		}
		if parent := name.Parent(); parent != "" {
			return b.errorf(name, "%q is already defined in %q.", string(name.Name()), string(parent))
		}
		return b.errorf(name, "%q is already defined.", string(name))
	}
	t.names[name] = symbol{kind: kind, desc: d, file: b.file}
	return nil
}

// addPackage registers name and all of its ancestors as packages.
// Packages declared by several files merge.
func (b *builder) addPackage(name protoreflect.FullName) error {
	if name == "" {
		return nil
	}
	if err := b.addPackage(name.Parent()); err != nil {
		return err
	}
	if !name.Name().IsValid() {
		return b.errorf(name, "%q is not a valid identifier.", name.Name())
	}
	if old, ok := b.defined(name, isPackage); ok {
		return b.errorf(name, "%q is already defined (as something other than a package) in file %q.", string(name), old.file.path)
	}
	t := &b.file.symbols
	if _, ok := t.names[name]; ok {
		return nil
	}
	t.names[name] = symbol{kind: packageSymbol, file: b.file}
	return nil
}

// lookupSymbol resolves name as written in a declaration whose full name
// is relativeTo.
//
// A name with a leading dot is fully qualified. Otherwise the first
// component of name is searched for as an aggregate in each enclosing scope
// of relativeTo, innermost first. Once the first component is found the
// rest of the name must resolve inside that scope; the search does not fall
// through to outer scopes.
func (b *builder) lookupSymbol(name string, relativeTo protoreflect.FullName, filter searchFilter) (symbol, error) {
	s, full, ok := b.resolve(name, relativeTo, filter)
	if ok {
		return s, nil
	}
	return symbol{}, b.unresolved(name, full, relativeTo)
}

// lookupType resolves the name of a message or enum type. If the build
// allows unknown dependencies and placeholderOK is set, an unresolved
// name yields a placeholder message. Enum references never pass
// placeholderOK, as a placeholder cannot stand in for an enum.
func (b *builder) lookupType(name string, relativeTo protoreflect.FullName, placeholderOK bool) (symbol, error) {
	s, full, ok := b.resolve(name, relativeTo, typesOnly)
	if ok {
		return s, nil
	}
	if placeholderOK && b.opts.AllowUnknownDependencies && full.IsValid() {
		b.logger.WithFields(logrus.Fields{
			"symbol": string(full),
			"file":   b.file.path,
		}).Warn("protodesc: type not found, using a placeholder message")
		m := newPlaceholderMessage(full)
		b.file.visible = append(b.file.visible, m.file)
		return symbol{kind: messageSymbol, desc: m, file: m.file}, nil
	}
	return symbol{}, b.unresolved(name, full, relativeTo)
}

// resolve implements the scoped search. The returned name is the last
// candidate tried, which is what a placeholder is named after.
func (b *builder) resolve(name string, relativeTo protoreflect.FullName, filter searchFilter) (symbol, protoreflect.FullName, bool) {
	t := &b.file.symbols
	if strings.HasPrefix(name, ".") {
		full := protoreflect.FullName(name[1:])
		s, ok := t.findSymbol(full, filter)
		return s, full, ok
	}
	first := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		first = name[:i]
	}
	scope := string(relativeTo)
	for {
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			full := protoreflect.FullName(name)
			s, ok := t.findSymbol(full, filter)
			return s, full, ok
		}
		scope = scope[:i]
		full := protoreflect.FullName(scope + "." + first)
		if first == name {
			if s, ok := t.findSymbol(full, filter); ok {
				return s, full, true
			}
			continue
		}
		if _, ok := t.findSymbol(full, aggregatesOnly); ok {
			full = protoreflect.FullName(scope + "." + name)
			s, ok := t.findSymbol(full, filter)
			return s, full, ok
		}
	}
}

func (b *builder) unresolved(name string, full, relativeTo protoreflect.FullName) error {
	if hint := b.undeclared(full); hint != "" {
		return b.errorf(relativeTo, "%q cannot be resolved: found %s without import of %s.", name, string(full), hint)
	}
	return b.errorf(relativeTo, "%q is not defined.", name)
}

// undeclared returns the path of a file that was passed to the build but
// not imported and that defines name.
func (b *builder) undeclared(name protoreflect.FullName) string {
	for _, f := range b.unused {
		if _, ok := f.symbols.names[name]; ok {
			return f.path
		}
	}
	return ""
}

// FindSymbol returns the descriptor declared under the full name, searching
// the file itself and then its visible dependencies. Packages and unknown
// names yield nil.
func (f *File) FindSymbol(name protoreflect.FullName) protoreflect.Descriptor {
	s, ok := f.symbols.findSymbol(name, allSymbols)
	if !ok {
		return nil
	}
	return s.desc
}

// FindDescriptorByName returns the descriptor declared in this file under
// the full name, or nil.
func (f *File) FindDescriptorByName(name protoreflect.FullName) protoreflect.Descriptor {
	return f.symbols.names[name].desc
}

// RangeSymbols calls fn for every full name declared in the file,
// packages included, until fn returns false. The descriptor is nil for
// packages.
func (f *File) RangeSymbols(fn func(protoreflect.FullName, protoreflect.Descriptor) bool) {
	for name, s := range f.symbols.names {
		if !fn(name, s.desc) {
			return
		}
	}
}

// LookupSymbol resolves name relative to the declaration named relativeTo
// using the same scoping rules as the build. Placeholders are never
// produced.
func (f *File) LookupSymbol(name string, relativeTo protoreflect.FullName) (protoreflect.Descriptor, error) {
	b := &builder{file: f, logger: f.logger}
	s, err := b.lookupSymbol(name, relativeTo, allSymbols)
	if err != nil {
		return nil, err
	}
	return s.desc, nil
}

// FindMessageByName returns the message declared in this file under the
// full name, or nil.
func (f *File) FindMessageByName(name protoreflect.FullName) *Message {
	m, _ := f.FindDescriptorByName(name).(*Message)
	return m
}

// FindEnumByName returns the enum declared in this file under the full
// name, or nil.
func (f *File) FindEnumByName(name protoreflect.FullName) *Enum {
	e, _ := f.FindDescriptorByName(name).(*Enum)
	return e
}

// FindExtensionByName returns the extension declared in this file under
// the full name, or nil.
func (f *File) FindExtensionByName(name protoreflect.FullName) *Field {
	x, _ := f.FindDescriptorByName(name).(*Field)
	if x == nil || !x.isExtension {
		return nil
	}
	return x
}

// FindServiceByName returns the service declared in this file under the
// full name, or nil.
func (f *File) FindServiceByName(name protoreflect.FullName) *Service {
	s, _ := f.FindDescriptorByName(name).(*Service)
	return s
}
