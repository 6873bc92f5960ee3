// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printer writes the indented text output. The first write error sticks
// and is reported by the caller.
type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), fmt.Sprintf(format, args...))
}

func (p *printer) indent() { p.depth++ }
func (p *printer) dedent() { p.depth-- }

// block prints header, then body indented, then a closing brace.
func (p *printer) block(header string, body func()) {
	p.printf("%s {", header)
	p.indent()
	body()
	p.dedent()
	p.printf("}")
}

// mapping prints a YAML mapping node in a text format close to the
// protobuf text format: scalars as "key: value", nested mappings as blocks.
func (p *printer) mapping(n *yaml.Node) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch val.Kind {
		case yaml.MappingNode:
			p.block(key, func() { p.mapping(val) })
		case yaml.SequenceNode:
			if allScalars(val) {
				vs := make([]string, len(val.Content))
				for j, v := range val.Content {
					vs[j] = scalarText(v)
				}
				p.printf("%s: [%s]", key, strings.Join(vs, ", "))
				continue
			}
			for _, v := range val.Content {
				if v.Kind == yaml.MappingNode {
					p.block(key, func() { p.mapping(v) })
				} else {
					p.printf("%s: %s", key, scalarText(v))
				}
			}
		default:
			p.printf("%s: %s", key, scalarText(val))
		}
	}
}

func allScalars(n *yaml.Node) bool {
	for _, v := range n.Content {
		if v.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

func scalarText(n *yaml.Node) string {
	if n.Tag == "!!str" {
		return strconv.Quote(n.Value)
	}
	return n.Value
}

func scalarNode(tag, value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	if tag == "!!str" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func appendPair(m *yaml.Node, key string, val *yaml.Node) {
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	m.Content = append(m.Content, k, val)
}
