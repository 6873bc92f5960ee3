// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protoregistry provides a registry of linked file descriptors.
//
// The Files registry contains files built by protodesc and provides the
// ability to iterate over the files or look up a specific descriptor within
// them. A whole google.protobuf.FileDescriptorSet can be built and
// registered at once with BuildFileSet.
package protoregistry

import (
	"strings"
	"sync"

	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/reflect/protodesc"
	"github.com/protocore/protocore/reflect/protoreflect"
)

// NotFound is a sentinel error value to indicate that the descriptor was
// not found.
var NotFound = errors.New("not found")

// Files is a registry for looking up or iterating over files and the
// descriptors contained within them.
// The Find and Range methods are safe for concurrent use, also while
// files are being registered.
type Files struct {
	mu sync.RWMutex

	// The map of descsByName contains:
	//	*protodesc.Enum
	//	*protodesc.EnumValue
	//	*protodesc.Message
	//	*protodesc.Field (extensions only)
	//	*protodesc.Service
	//	*packageDescriptor
	//
	// Only top-level declarations are registered. Enum values are at the
	// top-level since they are in the same scope as the parent enum.
	descsByName map[protoreflect.FullName]interface{}
	filesByPath map[string]*protodesc.File

	// extensionsByMessage indexes every extension, nested ones included,
	// by the extended message and field number.
	extensionsByMessage map[protoreflect.FullName]map[protoreflect.FieldNumber]*protodesc.Field
}

type packageDescriptor struct {
	files []*protodesc.File
}

// NewFiles returns a registry initialized with the provided set of files.
// Files with a namespace conflict with a pre-existing file are not registered.
func NewFiles(files ...*protodesc.File) *Files {
	r := new(Files)
	r.Register(files...) // ignore errors; first takes precedence
	return r
}

// Register registers the provided list of files.
//
// If any descriptor within a file conflicts with the descriptor of any
// previously registered file (e.g., two enums with the same full name),
// then that file is not registered and an error is returned.
// Placeholder files are never registered.
func (r *Files) Register(files ...*protodesc.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.descsByName == nil {
		r.descsByName = map[protoreflect.FullName]interface{}{
			"": &packageDescriptor{},
		}
		r.filesByPath = make(map[string]*protodesc.File)
		r.extensionsByMessage = make(map[protoreflect.FullName]map[protoreflect.FieldNumber]*protodesc.Field)
	}
	var firstErr error
	for _, file := range files {
		if err := r.registerFile(file); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Files) registerFile(fd *protodesc.File) error {
	path := fd.Path()
	if fd.IsPlaceholder() {
		return errors.New("file %q is a placeholder", path)
	}
	if r.filesByPath[path] != nil {
		return errors.New("file %q is already registered", path)
	}

	for name := fd.Package(); name != ""; name = name.Parent() {
		switch r.descsByName[name].(type) {
		case nil, *packageDescriptor:
		default:
			return errors.New("file %q has a name conflict over %v", path, name)
		}
	}
	var err error
	rangeTopLevelDescriptors(fd, func(d protoreflect.Descriptor) {
		if err == nil && r.descsByName[d.FullName()] != nil {
			err = errors.New("file %q has a name conflict over %v", path, d.FullName())
		}
	})
	if err != nil {
		return err
	}
	rangeExtensions(fd.Extensions(), fd.Messages(), func(xd *protodesc.Field) {
		if err != nil {
			return
		}
		if prev := r.extensionsByMessage[xd.ContainingMessage().FullName()][xd.Number()]; prev != nil {
			err = errors.New("file %q extends %v with field number %d, already used by %v", path, xd.ContainingMessage().FullName(), xd.Number(), prev.FullName())
		}
	})
	if err != nil {
		return err
	}

	for name := fd.Package(); name != ""; name = name.Parent() {
		if r.descsByName[name] == nil {
			r.descsByName[name] = &packageDescriptor{}
		}
	}
	p := r.descsByName[fd.Package()].(*packageDescriptor)
	p.files = append(p.files, fd)
	rangeTopLevelDescriptors(fd, func(d protoreflect.Descriptor) {
		r.descsByName[d.FullName()] = d
	})
	rangeExtensions(fd.Extensions(), fd.Messages(), func(xd *protodesc.Field) {
		name := xd.ContainingMessage().FullName()
		if r.extensionsByMessage[name] == nil {
			r.extensionsByMessage[name] = make(map[protoreflect.FieldNumber]*protodesc.Field)
		}
		r.extensionsByMessage[name][xd.Number()] = xd
	})
	r.filesByPath[path] = fd
	return nil
}

// FindDescriptorByName looks up a descriptor by the full name.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindDescriptorByName(name protoreflect.FullName) (protoreflect.Descriptor, error) {
	if r == nil {
		return nil, NotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := name
	suffix := nameSuffix("")
	for prefix != "" {
		if d, ok := r.descsByName[prefix]; ok {
			switch d := d.(type) {
			case *protodesc.Enum:
				if d.FullName() == name {
					return d, nil
				}
			case *protodesc.EnumValue:
				if d.FullName() == name {
					return d, nil
				}
			case *protodesc.Message:
				if d.FullName() == name {
					return d, nil
				}
				if d := findDescriptorInMessage(d, suffix); d != nil && d.FullName() == name {
					return d, nil
				}
			case *protodesc.Field:
				if d.FullName() == name {
					return d, nil
				}
			case *protodesc.Service:
				if d.FullName() == name {
					return d, nil
				}
				if d := d.Methods().ByName(suffix.Pop()); d != nil && d.FullName() == name {
					return d, nil
				}
			}
			return nil, NotFound
		}
		prefix = prefix.Parent()
		suffix = nameSuffix(name[len(prefix)+len("."):])
	}
	return nil, NotFound
}

func findDescriptorInMessage(md *protodesc.Message, suffix nameSuffix) protoreflect.Descriptor {
	name := suffix.Pop()
	if suffix == "" {
		if ed := md.Enums().ByName(name); ed != nil {
			return ed
		}
		for i := md.Enums().Len() - 1; i >= 0; i-- {
			if vd := md.Enums().Get(i).Values().ByName(name); vd != nil {
				return vd
			}
		}
		if xd := md.Extensions().ByName(name); xd != nil {
			return xd
		}
		if fd := md.Fields().ByName(name); fd != nil {
			return fd
		}
		if od := md.Oneofs().ByName(name); od != nil {
			return od
		}
	}
	if md := md.Messages().ByName(name); md != nil {
		if suffix == "" {
			return md
		}
		return findDescriptorInMessage(md, suffix)
	}
	return nil
}

type nameSuffix string

func (s *nameSuffix) Pop() (name protoreflect.Name) {
	if i := strings.IndexByte(string(*s), '.'); i >= 0 {
		name, *s = protoreflect.Name((*s)[:i]), (*s)[i+1:]
	} else {
		name, *s = protoreflect.Name((*s)), ""
	}
	return name
}

// FindMessageByName looks up a message by the message's full name.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindMessageByName(name protoreflect.FullName) (*protodesc.Message, error) {
	d, _ := r.FindDescriptorByName(name)
	if d, ok := d.(*protodesc.Message); ok {
		return d, nil
	}
	return nil, NotFound
}

// FindEnumByName looks up an enum by the enum's full name.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindEnumByName(name protoreflect.FullName) (*protodesc.Enum, error) {
	d, _ := r.FindDescriptorByName(name)
	if d, ok := d.(*protodesc.Enum); ok {
		return d, nil
	}
	return nil, NotFound
}

// FindExtensionByName looks up an extension field by the field's full name.
// Note that this is the full name of the field as determined by
// where the extension is declared and is unrelated to the full name of the
// message being extended.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindExtensionByName(name protoreflect.FullName) (*protodesc.Field, error) {
	d, _ := r.FindDescriptorByName(name)
	if d, ok := d.(*protodesc.Field); ok && d.IsExtension() {
		return d, nil
	}
	return nil, NotFound
}

// FindServiceByName looks up a service by the service's full name.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindServiceByName(name protoreflect.FullName) (*protodesc.Service, error) {
	d, _ := r.FindDescriptorByName(name)
	if d, ok := d.(*protodesc.Service); ok {
		return d, nil
	}
	return nil, NotFound
}

// FindExtensionByNumber looks up the extension of the message named message
// with field number num.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindExtensionByNumber(message protoreflect.FullName, num protoreflect.FieldNumber) (*protodesc.Field, error) {
	if r == nil {
		return nil, NotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if xd, ok := r.extensionsByMessage[message][num]; ok {
		return xd, nil
	}
	return nil, NotFound
}

// RangeExtensionsByMessage iterates over all registered extensions of the
// message named message. The iteration order is undefined.
func (r *Files) RangeExtensionsByMessage(message protoreflect.FullName, f func(*protodesc.Field) bool) {
	if r == nil {
		return
	}
	r.mu.RLock()
	xds := make([]*protodesc.Field, 0, len(r.extensionsByMessage[message]))
	for _, xd := range r.extensionsByMessage[message] {
		xds = append(xds, xd)
	}
	r.mu.RUnlock()
	for _, xd := range xds {
		if !f(xd) {
			return
		}
	}
}

// FindFileByPath looks up a file by the path.
//
// This returns (nil, NotFound) if not found.
func (r *Files) FindFileByPath(path string) (*protodesc.File, error) {
	if r == nil {
		return nil, NotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fd, ok := r.filesByPath[path]; ok {
		return fd, nil
	}
	return nil, NotFound
}

// NumFiles reports the number of registered files.
func (r *Files) NumFiles() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filesByPath)
}

// RangeFiles iterates over all registered files.
// The iteration order is undefined.
func (r *Files) RangeFiles(f func(*protodesc.File) bool) {
	for _, file := range r.snapshot("", true) {
		if !f(file) {
			return
		}
	}
}

// RangeFilesByPackage iterates over all registered files in a given proto
// package. The iteration order is undefined.
func (r *Files) RangeFilesByPackage(name protoreflect.FullName, f func(*protodesc.File) bool) {
	for _, file := range r.snapshot(name, false) {
		if !f(file) {
			return
		}
	}
}

// snapshot copies the files to iterate over so that f may call back into
// the registry.
func (r *Files) snapshot(pkg protoreflect.FullName, all bool) []*protodesc.File {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if all {
		files := make([]*protodesc.File, 0, len(r.filesByPath))
		for _, file := range r.filesByPath {
			files = append(files, file)
		}
		return files
	}
	p, ok := r.descsByName[pkg].(*packageDescriptor)
	if !ok {
		return nil
	}
	return append([]*protodesc.File(nil), p.files...)
}

// rangeTopLevelDescriptors iterates over all top-level descriptors in a file
// which will be directly entered into the registry.
func rangeTopLevelDescriptors(fd *protodesc.File, f func(protoreflect.Descriptor)) {
	eds := fd.Enums()
	for i := eds.Len() - 1; i >= 0; i-- {
		f(eds.Get(i))
		vds := eds.Get(i).Values()
		for i := vds.Len() - 1; i >= 0; i-- {
			f(vds.Get(i))
		}
	}
	mds := fd.Messages()
	for i := mds.Len() - 1; i >= 0; i-- {
		f(mds.Get(i))
	}
	xds := fd.Extensions()
	for i := xds.Len() - 1; i >= 0; i-- {
		f(xds.Get(i))
	}
	sds := fd.Services()
	for i := sds.Len() - 1; i >= 0; i-- {
		f(sds.Get(i))
	}
}

func rangeExtensions(xds *protodesc.Extensions, mds *protodesc.Messages, f func(*protodesc.Field)) {
	for i := 0; i < xds.Len(); i++ {
		f(xds.Get(i))
	}
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		rangeExtensions(md.Extensions(), md.Messages(), f)
	}
}
