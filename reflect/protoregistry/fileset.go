// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoregistry

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
	"github.com/protocore/protocore/internal/fieldnum"
	"github.com/protocore/protocore/reflect/protodesc"
)

// BuildFileSet builds every file of the encoded google.protobuf.FileDescriptorSet
// raw and returns a registry holding them.
func BuildFileSet(ctx context.Context, raw []byte, opts protodesc.BuildOptions) (*Files, error) {
	r := new(Files)
	if err := r.RegisterFileSet(ctx, raw, opts); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterFileSet builds and registers every file of the encoded
// google.protobuf.FileDescriptorSet raw. The files may appear in any order.
// Imports are resolved against the set first and then against the files
// already in r.
//
// Files are built in dependency layers: a layer holds the files whose
// imports all lie in earlier layers, and the files of one layer are built
// concurrently. The first failure stops the build; files of completed
// layers stay registered.
func (r *Files) RegisterFileSet(ctx context.Context, raw []byte, opts protodesc.BuildOptions) error {
	headers, err := scanFileSet(raw)
	if err != nil {
		return err
	}
	order, err := r.layers(headers, opts.AllowUnknownDependencies)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	byPath := make(map[string]int, len(headers))
	for i, h := range headers {
		byPath[h.path] = i
	}
	built := make([]*protodesc.File, len(headers))
	for n, layer := range order {
		logger.WithFields(logrus.Fields{
			"layer": n,
			"files": len(layer),
		}).Debug("protoregistry: building layer")

		g, gctx := errgroup.WithContext(ctx)
		for _, i := range layer {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				var deps []*protodesc.File
				for _, path := range headers[i].deps {
					if j, ok := byPath[path]; ok {
						deps = append(deps, built[j])
					} else if f, err := r.FindFileByPath(path); err == nil {
						deps = append(deps, f)
					}
				}
				f, err := protodesc.BuildFrom(headers[i].raw, deps, opts)
				if err != nil {
					return err
				}
				built[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		// Registration follows the set order for reproducible conflicts.
		for _, i := range layer {
			if err := r.Register(built[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// fileHeader is the part of a FileDescriptorProto needed to order the
// build.
type fileHeader struct {
	path string
	deps []string
	raw  []byte
}

// scanFileSet splits a FileDescriptorSet into its files and reads the path
// and imports of each.
func scanFileSet(b []byte) ([]fileHeader, error) {
	var headers []fileHeader
	for len(b) > 0 {
		num, typ, n := wire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorSet")
		}
		b = b[n:]
		if num != fieldnum.FileDescriptorSet_File || typ != wire.BytesType {
			n = wire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorSet")
			}
			b = b[n:]
			continue
		}
		v, n := wire.ConsumeBytes(b)
		if n < 0 {
			return nil, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorSet")
		}
		b = b[n:]
		h, err := scanFile(v)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

func scanFile(b []byte) (fileHeader, error) {
	h := fileHeader{raw: b}
	for len(b) > 0 {
		num, typ, n := wire.ConsumeTag(b)
		if n < 0 {
			return h, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorProto")
		}
		b = b[n:]
		if typ == wire.BytesType && (num == fieldnum.FileDescriptorProto_Name || num == fieldnum.FileDescriptorProto_Dependency) {
			v, n := wire.ConsumeBytes(b)
			if n < 0 {
				return h, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorProto")
			}
			b = b[n:]
			if num == fieldnum.FileDescriptorProto_Name {
				h.path = string(v)
			} else {
				h.deps = append(h.deps, string(v))
			}
			continue
		}
		n = wire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return h, errors.Wrap(wire.ParseError(n), "malformed FileDescriptorProto")
		}
		b = b[n:]
	}
	return h, nil
}

// layers groups the indexes of headers by import depth. An import that is
// neither in the set nor registered in r is an error unless allowUnknown
// is set, in which case the build substitutes a placeholder.
func (r *Files) layers(headers []fileHeader, allowUnknown bool) ([][]int, error) {
	byPath := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := byPath[h.path]; ok {
			return nil, errors.New("file %q appears twice in the set", h.path)
		}
		byPath[h.path] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(headers))
	depth := make([]int, len(headers))
	var stack []string
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			start := 0
			for start < len(stack) && stack[start] != headers[i].path {
				start++
			}
			cycle := append(append([]string(nil), stack[start:]...), headers[i].path)
			return errors.New("import cycle: %s", strings.Join(cycle, " -> "))
		}
		state[i] = visiting
		stack = append(stack, headers[i].path)
		for _, path := range headers[i].deps {
			j, ok := byPath[path]
			if !ok {
				if _, err := r.FindFileByPath(path); err != nil && !allowUnknown {
					return errors.New("file %q imports %q, which is neither in the set nor registered", headers[i].path, path)
				}
				continue
			}
			if err := visit(j); err != nil {
				return err
			}
			if depth[j]+1 > depth[i] {
				depth[i] = depth[j] + 1
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = done
		return nil
	}

	var order [][]int
	for i := range headers {
		if err := visit(i); err != nil {
			return nil, err
		}
		for len(order) <= depth[i] {
			order = append(order, nil)
		}
	}
	for i := range headers {
		order[depth[i]] = append(order[depth[i]], i)
	}
	return order, nil
}
