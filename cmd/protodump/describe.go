// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/protocore/protocore/reflect/protodesc"
	"github.com/protocore/protocore/reflect/protoreflect"
)

type fileSummary struct {
	Path       string           `yaml:"path"`
	Package    string           `yaml:"package,omitempty"`
	Syntax     string           `yaml:"syntax"`
	Imports    []string         `yaml:"imports,omitempty"`
	Messages   []messageSummary `yaml:"messages,omitempty"`
	Enums      []enumSummary    `yaml:"enums,omitempty"`
	Extensions []fieldSummary   `yaml:"extensions,omitempty"`
	Services   []serviceSummary `yaml:"services,omitempty"`
}

type messageSummary struct {
	Name       string           `yaml:"name"`
	MapEntry   bool             `yaml:"map_entry,omitempty"`
	MessageSet bool             `yaml:"message_set,omitempty"`
	Fields     []fieldSummary   `yaml:"fields,omitempty"`
	Messages   []messageSummary `yaml:"messages,omitempty"`
	Enums      []enumSummary    `yaml:"enums,omitempty"`
	Extensions []fieldSummary   `yaml:"extensions,omitempty"`
}

type fieldSummary struct {
	Name     string `yaml:"name"`
	Number   int32  `yaml:"number"`
	Label    string `yaml:"label"`
	Type     string `yaml:"type"`
	Extendee string `yaml:"extendee,omitempty"`
	Oneof    string `yaml:"oneof,omitempty"`
	Default  string `yaml:"default,omitempty"`
	Packed   bool   `yaml:"packed,omitempty"`
}

type enumSummary struct {
	Name   string             `yaml:"name"`
	Closed bool               `yaml:"closed,omitempty"`
	Values []enumValueSummary `yaml:"values"`
}

type enumValueSummary struct {
	Name   string `yaml:"name"`
	Number int32  `yaml:"number"`
}

type serviceSummary struct {
	Name    string          `yaml:"name"`
	Methods []methodSummary `yaml:"methods,omitempty"`
}

type methodSummary struct {
	Name            string `yaml:"name"`
	Input           string `yaml:"input"`
	Output          string `yaml:"output"`
	ClientStreaming bool   `yaml:"client_streaming,omitempty"`
	ServerStreaming bool   `yaml:"server_streaming,omitempty"`
}

type describeCmd struct {
	gs    *globalState
	files []string
}

func getDescribeCmd(gs *globalState) *cobra.Command {
	c := &describeCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "describe [DESCRIPTOR_SET]",
		Short: "Print the files of a descriptor set",
		Long: `Build every file of an encoded google.protobuf.FileDescriptorSet and
print its messages, enums, extensions and services.

The set is read from the argument, the --descriptor-set flag or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().StringSliceVar(&c.files, "file", nil, "only describe these file paths")
	return cmd
}

func (c *describeCmd) run(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		c.gs.cfg.DescriptorSet = args[0]
	}
	r, err := c.gs.loadFiles()
	if err != nil {
		return err
	}
	var files []*protodesc.File
	if len(c.files) > 0 {
		for _, path := range c.files {
			f, err := r.FindFileByPath(path)
			if err != nil {
				return errors.Errorf("file %q is not in the descriptor set", path)
			}
			files = append(files, f)
		}
	} else {
		r.RangeFiles(func(f *protodesc.File) bool {
			files = append(files, f)
			return true
		})
		sort.Slice(files, func(i, j int) bool { return files[i].Path() < files[j].Path() })
	}

	summaries := make([]fileSummary, len(files))
	for i, f := range files {
		summaries[i] = summarizeFile(f)
	}
	if c.gs.cfg.Format == formatYAML {
		return writeYAML(cmd.OutOrStdout(), summaries)
	}
	p := &printer{w: cmd.OutOrStdout()}
	for _, s := range summaries {
		p.file(s)
	}
	return p.err
}

func summarizeFile(f *protodesc.File) fileSummary {
	s := fileSummary{
		Path:    f.Path(),
		Package: string(f.Package()),
		Syntax:  f.Syntax().String(),
	}
	if f.Syntax() == protoreflect.Editions {
		s.Syntax = fmt.Sprintf("edition %d", f.Edition())
	}
	for _, imp := range f.Imports() {
		path := imp.Path()
		if imp.IsPublic {
			path += " (public)"
		}
		s.Imports = append(s.Imports, path)
	}
	s.Messages = summarizeMessages(f.Messages())
	s.Enums = summarizeEnums(f.Enums())
	s.Extensions = summarizeExtensions(f.Extensions())
	for i := 0; i < f.Services().Len(); i++ {
		sd := f.Services().Get(i)
		ss := serviceSummary{Name: string(sd.FullName())}
		for j := 0; j < sd.Methods().Len(); j++ {
			md := sd.Methods().Get(j)
			ss.Methods = append(ss.Methods, methodSummary{
				Name:            string(md.Name()),
				Input:           string(md.Input().FullName()),
				Output:          string(md.Output().FullName()),
				ClientStreaming: md.IsStreamingClient(),
				ServerStreaming: md.IsStreamingServer(),
			})
		}
		s.Services = append(s.Services, ss)
	}
	return s
}

func summarizeMessages(mds *protodesc.Messages) []messageSummary {
	var out []messageSummary
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		ms := messageSummary{
			Name:       string(md.FullName()),
			MapEntry:   md.IsMapEntry(),
			MessageSet: md.IsMessageSet(),
			Messages:   summarizeMessages(md.Messages()),
			Enums:      summarizeEnums(md.Enums()),
			Extensions: summarizeExtensions(md.Extensions()),
		}
		for j := 0; j < md.Fields().Len(); j++ {
			ms.Fields = append(ms.Fields, summarizeField(md.Fields().Get(j)))
		}
		out = append(out, ms)
	}
	return out
}

func summarizeEnums(eds *protodesc.Enums) []enumSummary {
	var out []enumSummary
	for i := 0; i < eds.Len(); i++ {
		ed := eds.Get(i)
		es := enumSummary{Name: string(ed.FullName()), Closed: ed.IsClosed()}
		for j := 0; j < ed.Values().Len(); j++ {
			vd := ed.Values().Get(j)
			es.Values = append(es.Values, enumValueSummary{Name: string(vd.Name()), Number: int32(vd.Number())})
		}
		out = append(out, es)
	}
	return out
}

func summarizeExtensions(xds *protodesc.Extensions) []fieldSummary {
	var out []fieldSummary
	for i := 0; i < xds.Len(); i++ {
		out = append(out, summarizeField(xds.Get(i)))
	}
	return out
}

func summarizeField(fd *protodesc.Field) fieldSummary {
	s := fieldSummary{
		Name:    string(fd.Name()),
		Number:  int32(fd.Number()),
		Label:   fd.Cardinality().String(),
		Type:    fieldType(fd),
		Default: fd.DefaultText(),
		Packed:  fd.IsPacked(),
	}
	if fd.IsExtension() {
		s.Extendee = string(fd.ContainingMessage().FullName())
	}
	if od := fd.ContainingOneof(); od != nil && !od.IsSynthetic() {
		s.Oneof = string(od.Name())
	}
	return s
}

func fieldType(fd *protodesc.Field) string {
	switch {
	case fd.IsMap():
		return fmt.Sprintf("map<%s, %s>", fieldType(fd.MapKey()), fieldType(fd.MapValue()))
	case fd.Message() != nil:
		return string(fd.Message().FullName())
	case fd.Enum() != nil:
		return string(fd.Enum().FullName())
	}
	return fd.Kind().String()
}

func (p *printer) file(s fileSummary) {
	header := "file " + s.Path
	if s.Package != "" {
		header += " (package " + s.Package + ", " + s.Syntax + ")"
	} else {
		header += " (" + s.Syntax + ")"
	}
	p.block(header, func() {
		for _, imp := range s.Imports {
			p.printf("import %s", imp)
		}
		p.messages(s.Messages)
		p.enums(s.Enums)
		p.fields(s.Extensions)
		for _, sd := range s.Services {
			p.block("service "+sd.Name, func() {
				for _, md := range sd.Methods {
					in, out := md.Input, md.Output
					if md.ClientStreaming {
						in = "stream " + in
					}
					if md.ServerStreaming {
						out = "stream " + out
					}
					p.printf("rpc %s(%s) returns (%s)", md.Name, in, out)
				}
			})
		}
	})
}

func (p *printer) messages(ms []messageSummary) {
	for _, m := range ms {
		header := "message " + m.Name
		var attrs []string
		if m.MapEntry {
			attrs = append(attrs, "map entry")
		}
		if m.MessageSet {
			attrs = append(attrs, "message set")
		}
		if len(attrs) > 0 {
			header += " (" + strings.Join(attrs, ", ") + ")"
		}
		p.block(header, func() {
			p.fields(m.Fields)
			p.messages(m.Messages)
			p.enums(m.Enums)
			p.fields(m.Extensions)
		})
	}
}

func (p *printer) fields(fs []fieldSummary) {
	for _, f := range fs {
		line := fmt.Sprintf("%d %s %s %s", f.Number, f.Label, f.Type, f.Name)
		var attrs []string
		if f.Extendee != "" {
			attrs = append(attrs, "extends "+f.Extendee)
		}
		if f.Oneof != "" {
			attrs = append(attrs, "oneof "+f.Oneof)
		}
		if f.Default != "" {
			attrs = append(attrs, "default "+f.Default)
		}
		if f.Packed {
			attrs = append(attrs, "packed")
		}
		if len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		p.printf("%s", line)
	}
}

func (p *printer) enums(es []enumSummary) {
	for _, e := range es {
		header := "enum " + e.Name
		if e.Closed {
			header += " (closed)"
		}
		p.block(header, func() {
			for _, v := range e.Values {
				p.printf("%s = %d", v.Name, v.Number)
			}
		})
	}
}

