// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/protocore/protocore/reflect/protodesc"
	"github.com/protocore/protocore/reflect/protoreflect"
	"github.com/protocore/protocore/reflect/protoregistry"
)

type lookupResult struct {
	Query  string        `yaml:"query"`
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	File   string        `yaml:"file"`
	Field  *fieldSummary `yaml:"field,omitempty"`
	Number *int32        `yaml:"number,omitempty"`
}

type lookupCmd struct {
	gs         *globalState
	file       string
	relativeTo string
}

func getLookupCmd(gs *globalState) *cobra.Command {
	c := &lookupCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "lookup NAME...",
		Short: "Resolve names against a descriptor set",
		Long: `Look up each NAME in the descriptor set.

By default NAME is a full name. With --file, NAME is resolved the way a
reference written in that file is: relative to the --relative-to scope,
searching enclosing scopes outward, and only through the file's imports.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().StringVar(&c.file, "file", "", "resolve names as written in this file path")
	cmd.Flags().StringVar(&c.relativeTo, "relative-to", "", "full name of the declaration the names appear in")
	return cmd
}

func (c *lookupCmd) run(cmd *cobra.Command, args []string) error {
	r, err := c.gs.loadFiles()
	if err != nil {
		return err
	}
	var scope *protodesc.File
	if c.file != "" {
		if scope, err = r.FindFileByPath(c.file); err != nil {
			return errors.Errorf("file %q is not in the descriptor set", c.file)
		}
	}

	results := make([]lookupResult, 0, len(args))
	for _, name := range args {
		var d protoreflect.Descriptor
		if scope != nil {
			relativeTo := protoreflect.FullName(c.relativeTo)
			if relativeTo == "" {
				// A name written at file scope resolves relative to the package.
				relativeTo = scope.Package().Append("_")
			}
			d, err = scope.LookupSymbol(name, relativeTo)
		} else {
			full := protoreflect.FullName(strings.TrimPrefix(name, "."))
			d, err = r.FindDescriptorByName(full)
			if err != nil && isPackage(r, full) {
				d, err = nil, nil
			}
		}
		if err != nil {
			return errors.Wrapf(err, "lookup %q", name)
		}
		if d == nil {
			return errors.Errorf("lookup %q: %q is a package", name, name)
		}
		results = append(results, describeDescriptor(name, d))
	}

	if c.gs.cfg.Format == formatYAML {
		return writeYAML(cmd.OutOrStdout(), results)
	}
	p := &printer{w: cmd.OutOrStdout()}
	for _, res := range results {
		line := res.Query + ": " + res.Kind + " " + res.Name + " in " + res.File
		switch {
		case res.Field != nil:
			p.printf("%s", line)
			p.indent()
			p.fields([]fieldSummary{*res.Field})
			p.dedent()
		case res.Number != nil:
			p.printf("%s = %d", line, *res.Number)
		default:
			p.printf("%s", line)
		}
	}
	return p.err
}

func describeDescriptor(query string, d protoreflect.Descriptor) lookupResult {
	res := lookupResult{Query: query, Name: string(d.FullName())}
	if pf, ok := d.(interface{ ParentFile() *protodesc.File }); ok {
		res.File = pf.ParentFile().Path()
	}
	switch d := d.(type) {
	case *protodesc.Message:
		res.Kind = "message"
	case *protodesc.Enum:
		res.Kind = "enum"
	case *protodesc.EnumValue:
		res.Kind = "enum value"
		n := int32(d.Number())
		res.Number = &n
	case *protodesc.Field:
		res.Kind = "field"
		if d.IsExtension() {
			res.Kind = "extension"
		}
		s := summarizeField(d)
		res.Field = &s
	case *protodesc.Oneof:
		res.Kind = "oneof"
	case *protodesc.Service:
		res.Kind = "service"
	case *protodesc.Method:
		res.Kind = "method"
	default:
		res.Kind = "descriptor"
	}
	return res
}

func isPackage(r *protoregistry.Files, name protoreflect.FullName) (found bool) {
	r.RangeFilesByPackage(name, func(*protodesc.File) bool {
		found = true
		return false
	})
	return found
}
