// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protodesc builds linked descriptor graphs from encoded
// google.protobuf.FileDescriptorProto messages.
//
// A build runs in two phases. The build phase decodes the file top-down,
// allocates every descriptor and registers its full name in the file's
// symbol table. The cross-link phase then resolves every name reference
// (field types, extendees, method types, enum defaults) using scoped name
// resolution and validates the result. Any failure aborts the whole file
// with a *ValidationError.
package protodesc

import (
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/internal/set"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// BuildOptions configures BuildFrom.
type BuildOptions struct {
	// AllowUnknownDependencies permits imports that were not supplied and
	// type references that cannot be resolved. Missing imports become
	// placeholder files and unresolved message types become placeholder
	// messages. Unresolved enum types are always an error.
	AllowUnknownDependencies bool

	// Logger receives warnings about placeholders.
	// If nil, logrus.StandardLogger is used.
	Logger logrus.FieldLogger

	// UnknownEnumValueCacheSize bounds how many synthesized unknown values
	// each enum keeps. If zero, DefaultUnknownEnumValueCacheSize is used.
	UnknownEnumValueCacheSize int
}

type builder struct {
	file    *File
	opts    BuildOptions
	logger  logrus.FieldLogger
	deps    []*File
	unused  []*File // supplied but not imported
	closure []*File // every file reachable through imports
}

// BuildFrom builds a file from the encoded FileDescriptorProto raw.
// deps holds the already built files that raw imports. Files in deps
// that raw does not import are ignored.
//
// The returned file is immutable and safe for concurrent use.
func BuildFrom(raw []byte, deps []*File, opts BuildOptions) (*File, error) {
	f := &File{cacheSize: opts.UnknownEnumValueCacheSize}
	f.file = f
	f.symbols = symbolTable{file: f, names: make(map[protoreflect.FullName]symbol)}
	f.logger = opts.Logger
	if f.logger == nil {
		f.logger = logrus.StandardLogger()
	}
	b := &builder{file: f, opts: opts, logger: f.logger, deps: deps}
	if err := b.unmarshalFile(raw); err != nil {
		return nil, err
	}
	if err := b.linkFile(); err != nil {
		return nil, err
	}
	if err := b.validateFile(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFile builds a file from a FileDescriptorProto message.
// It is equivalent to BuildFrom on the marshaled message.
func NewFile(fd *descriptorpb.FileDescriptorProto, deps []*File, opts BuildOptions) (*File, error) {
	raw, err := proto.Marshal(fd)
	if err != nil {
		return nil, errors.Wrap(err, "marshal %q", fd.GetName())
	}
	return BuildFrom(raw, deps, opts)
}

// resolveImports matches the declared imports against the supplied files
// and computes the set of files whose declarations are visible: every
// import plus the public imports of those files, transitively.
func (b *builder) resolveImports(paths []string, public, weak []int32) error {
	f := b.file
	byPath := make(map[string]*File, len(b.deps))
	for _, d := range b.deps {
		if d != nil {
			byPath[d.path] = d
		}
	}

	var seen set.Strings
	f.imports = make([]Import, len(paths))
	for i, path := range paths {
		if seen.Has(path) {
			return b.errorf("", "Import %q was listed twice.", path)
		}
		seen.Set(path)
		d := byPath[path]
		if d == nil {
			if !b.opts.AllowUnknownDependencies {
				return b.errorf("", "Import %q was not provided.", path)
			}
			b.logger.WithFields(logrus.Fields{
				"file":   f.path,
				"import": path,
			}).Warn("protodesc: import not provided, using a placeholder file")
			d = newPlaceholderFile(path, "")
		}
		f.imports[i].File = d
	}

	var publicSeen, weakSeen set.Ints
	for _, i := range public {
		if i < 0 || int(i) >= len(paths) || publicSeen.Has(int(i)) {
			return b.errorf("", "invalid or duplicate public import index: %d", i)
		}
		publicSeen.Set(int(i))
		f.imports[i].IsPublic = true
	}
	for _, i := range weak {
		if i < 0 || int(i) >= len(paths) || weakSeen.Has(int(i)) {
			return b.errorf("", "invalid or duplicate weak import index: %d", i)
		}
		weakSeen.Set(int(i))
		f.imports[i].IsWeak = true
	}

	var visible set.Strings
	var add func(d *File)
	add = func(d *File) {
		if visible.Has(d.path) {
			return
		}
		visible.Set(d.path)
		f.visible = append(f.visible, d)
		for _, imp := range d.imports {
			if imp.IsPublic {
				add(imp.File)
			}
		}
	}
	for _, imp := range f.imports {
		add(imp.File)
	}

	var reached set.Strings
	var walk func(d *File)
	walk = func(d *File) {
		if reached.Has(d.path) {
			return
		}
		reached.Set(d.path)
		b.closure = append(b.closure, d)
		for _, imp := range d.imports {
			walk(imp.File)
		}
	}
	for _, imp := range f.imports {
		walk(imp.File)
	}

	for _, d := range b.deps {
		if d != nil && !seen.Has(d.path) {
			b.unused = append(b.unused, d)
		}
	}
	return nil
}
