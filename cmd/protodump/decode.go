// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"gopkg.in/yaml.v3"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/reflect/protodesc"
	"github.com/protocore/protocore/reflect/protoreflect"
	"github.com/protocore/protocore/types/dynamicpb"
)

type decodeCmd struct {
	gs       *globalState
	typeName string
	fields   fields
}

func getDecodeCmd(gs *globalState) *cobra.Command {
	c := &decodeCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "decode [INPUT]...",
		Short: "Print the structure of an encoded message",
		Long: strings.Join([]string{
			"Print structured representations of encoded protocol buffer messages.",
			"",
			"With --type the message is decoded as the named message of the descriptor",
			"set. Otherwise, since the wire format is not fully self-describing, type",
			"information can be provided using the field flags (e.g., --messages).",
			"Each field list is a comma-separated list of field identifiers,",
			"where each field identifier is a dot-separated list of field numbers,",
			"identifying each field relative to the root message.",
			"",
			"For example, \"--messages 1,3,3.1 --float32s 1.2 --bools 3.1.2\" represents:",
			"",
			"	message M {",
			"		optional M1 f1 = 1;           // --messages 1",
			"		message M1 {",
			"			repeated float f2 = 2;    // --float32s 1.2",
			"		}",
			"		optional M3 f3 = 3;           // --messages 3",
			"		message M3 {",
			"			optional M1 f1 = 1;       // --messages 3.1",
			"			message M1 {",
			"				repeated bool f2 = 2; // --bools 3.1.2",
			"			}",
			"		}",
			"	}",
			"",
			"Scalar fields are repeated so that every occurrence is shown.",
			"Fields that are not described are printed as unknown fields.",
			"",
			"If no inputs are specified, the wire data is read from stdin, otherwise",
			"the contents of each input file are concatenated and treated as one",
			"large message.",
		}, "\n"),
		RunE: c.run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&c.typeName, "type", "t", "", "full name of the message type in the descriptor set")
	c.fields.addFlags(flags)
	return cmd
}

func (c *decodeCmd) run(cmd *cobra.Command, args []string) error {
	var md *protodesc.Message
	switch {
	case c.typeName != "" && len(c.fields) > 0:
		return errors.New("--type cannot be combined with field flags")
	case c.typeName != "":
		if c.gs.cfg.DescriptorSet == "" || c.gs.cfg.DescriptorSet == "-" {
			return errors.New("--type requires --descriptor-set")
		}
		r, err := c.gs.loadFiles()
		if err != nil {
			return err
		}
		if md, err = r.FindMessageByName(protoreflect.FullName(strings.TrimPrefix(c.typeName, "."))); err != nil {
			return errors.Errorf("message %q is not in the descriptor set", c.typeName)
		}
	default:
		var err error
		if md, err = c.fields.Descriptor(); err != nil {
			return errors.Wrap(err, "descriptor error")
		}
	}

	var buf []byte
	if len(args) == 0 {
		b, err := readInput("", c.gs.stdin)
		if err != nil {
			return err
		}
		buf = b
	}
	for _, path := range args {
		b, err := readInput(path, nil)
		if err != nil {
			return err
		}
		buf = append(buf, b...)
	}

	m := dynamicpb.New(md)
	if err := (dynamicpb.UnmarshalOptions{AllowPartial: true}).Unmarshal(buf, m); err != nil {
		return errors.Wrap(err, "decoding message")
	}
	if n := m.Size(); n != len(buf) {
		c.gs.logger.WithFields(logrus.Fields{
			"input":   len(buf),
			"encoded": n,
		}).Warn("re-encoded size differs from the input")
	}
	node := messageNode(m)
	if c.gs.cfg.Format == formatYAML {
		return writeYAML(cmd.OutOrStdout(), node)
	}
	p := &printer{w: cmd.OutOrStdout()}
	p.mapping(node)
	return p.err
}

// messageNode renders m as a YAML mapping keyed by field name in field
// number order. Unknown fields are listed under "unknown" by number.
func messageNode(m *dynamicpb.Message) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	m.Range(func(fd *protodesc.Field, v protoreflect.Value) bool {
		name := string(fd.Name())
		if fd.IsExtension() {
			name = "[" + string(fd.FullName()) + "]"
		}
		appendPair(n, name, fieldNode(fd, v))
		return true
	})
	if u := m.GetUnknown(); len(u) > 0 {
		appendPair(n, "unknown", unknownNode(u))
	}
	return n
}

func fieldNode(fd *protodesc.Field, v protoreflect.Value) *yaml.Node {
	switch {
	case fd.IsMap():
		n := &yaml.Node{Kind: yaml.SequenceNode}
		mp := v.Interface().(*dynamicpb.Map)
		var keys []protoreflect.MapKey
		mp.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
			keys = append(keys, k)
			return true
		})
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			entry := &yaml.Node{Kind: yaml.MappingNode}
			appendPair(entry, "key", scalarValueNode(fd.MapKey(), k.Value()))
			appendPair(entry, "value", fieldNode(fd.MapValue(), mp.Get(k)))
			n.Content = append(n.Content, entry)
		}
		return n
	case fd.IsList():
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		list := v.Interface().(*dynamicpb.List)
		for i := 0; i < list.Len(); i++ {
			if fd.Message() != nil {
				n.Style = 0
				n.Content = append(n.Content, messageNode(list.Get(i).Interface().(*dynamicpb.Message)))
			} else {
				n.Content = append(n.Content, scalarValueNode(fd, list.Get(i)))
			}
		}
		return n
	case fd.Message() != nil:
		return messageNode(v.Interface().(*dynamicpb.Message))
	}
	return scalarValueNode(fd, v)
}

func scalarValueNode(fd *protodesc.Field, v protoreflect.Value) *yaml.Node {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return scalarNode("!!bool", strconv.FormatBool(v.Bool()))
	case protoreflect.EnumKind:
		if ed := fd.Enum(); ed != nil {
			if vd := ed.FindValueByNumber(v.Enum()); vd != nil {
				return &yaml.Node{Kind: yaml.ScalarNode, Value: string(vd.Name())}
			}
		}
		return scalarNode("!!int", strconv.FormatInt(int64(v.Enum()), 10))
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return scalarNode("!!int", strconv.FormatInt(v.Int(), 10))
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return scalarNode("!!int", strconv.FormatUint(v.Uint(), 10))
	case protoreflect.FloatKind:
		return scalarNode("!!float", strconv.FormatFloat(v.Float(), 'g', -1, 32))
	case protoreflect.DoubleKind:
		return scalarNode("!!float", strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case protoreflect.StringKind:
		return scalarNode("!!str", v.String())
	case protoreflect.BytesKind:
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString(v.Bytes()))
	}
	return scalarNode("!!str", fmt.Sprint(v.Interface()))
}

// unknownNode lists raw fields by number. Varints and fixed-width values
// are shown as integers, length-delimited values and groups as bytes.
func unknownNode(b []byte) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for len(b) > 0 {
		num, typ, tagLen := wire.ConsumeTag(b)
		m := -1
		if tagLen >= 0 {
			m = wire.ConsumeFieldValue(num, typ, b[tagLen:])
		}
		if m < 0 {
			appendPair(n, "malformed", scalarNode("!!binary", base64.StdEncoding.EncodeToString(b)))
			break
		}
		v := b[tagLen : tagLen+m]
		key := strconv.Itoa(int(num))
		switch typ {
		case wire.VarintType:
			x, _ := wire.ConsumeVarint(v)
			appendPair(n, key, scalarNode("!!int", strconv.FormatUint(x, 10)))
		case wire.Fixed32Type:
			x, _ := wire.ConsumeFixed32(v)
			appendPair(n, key, scalarNode("!!int", strconv.FormatUint(uint64(x), 10)))
		case wire.Fixed64Type:
			x, _ := wire.ConsumeFixed64(v)
			appendPair(n, key, scalarNode("!!int", strconv.FormatUint(x, 10)))
		case wire.BytesType:
			x, _ := wire.ConsumeBytes(v)
			appendPair(n, key, scalarNode("!!binary", base64.StdEncoding.EncodeToString(x)))
		default:
			x, _ := wire.ConsumeGroup(num, v)
			appendPair(n, key, scalarNode("!!binary", base64.StdEncoding.EncodeToString(x)))
		}
		b = b[tagLen+m:]
	}
	return n
}

// fields is a tree of fields, keyed by a field number.
// Fields representing messages or groups have sub-fields.
type fields map[wire.Number]*field
type field struct {
	kind protoreflect.Kind
	sub  fields // only for MessageKind or GroupKind
}

// Set parses s as a comma-separated list (see the help above for the format)
// and treats each field identifier as the specified kind.
func (fs *fields) Set(s string, k protoreflect.Kind) error {
	if *fs == nil {
		*fs = make(fields)
	}
	for _, s := range strings.Split(s, ",") {
		if err := fs.set("", strings.TrimSpace(s), k); err != nil {
			return err
		}
	}
	return nil
}
func (fs fields) set(prefix, s string, k protoreflect.Kind) error {
	if s == "" {
		return nil
	}

	// Parse next field number.
	i := strings.IndexByte(s, '.')
	if i < 0 {
		i = len(s)
	}
	prefix = strings.TrimPrefix(prefix+"."+s[:i], ".")
	n, _ := strconv.ParseInt(s[:i], 10, 32)
	num := wire.Number(n)
	if num < wire.MinValidNumber || wire.MaxValidNumber < num {
		return errors.Errorf("invalid field: %v", prefix)
	}
	s = strings.TrimPrefix(s[i:], ".")

	// Handle the current field.
	if fs[num] == nil {
		fs[num] = &field{0, make(fields)}
	}
	if len(s) == 0 {
		if fs[num].kind.IsValid() {
			return errors.Errorf("field %v already set as %v type", prefix, fs[num].kind)
		}
		fs[num].kind = k
	}
	if err := fs[num].sub.set(prefix, s, k); err != nil {
		return err
	}

	// Verify that only messages or groups can have sub-fields.
	k2 := fs[num].kind
	if k2 > 0 && k2 != protoreflect.MessageKind && k2 != protoreflect.GroupKind && len(fs[num].sub) > 0 {
		return errors.Errorf("field %v of %v type cannot have sub-fields", prefix, k2)
	}
	return nil
}

// Descriptor returns the field tree as a message descriptor.
func (fs fields) Descriptor() (*protodesc.Message, error) {
	f, err := protodesc.NewFile(fs.fileDescriptorProto(), nil, protodesc.BuildOptions{})
	if err != nil {
		return nil, err
	}
	return f.Messages().Get(0), nil
}

func (fs fields) fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:        proto.String("protodump.proto"),
		Syntax:      proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{fs.messageDescriptor("M")},
	}
}

func (fs fields) messageDescriptor(name protoreflect.FullName) *descriptorpb.DescriptorProto {
	m := &descriptorpb.DescriptorProto{Name: proto.String(string(name.Name()))}
	for _, n := range fs.sortedNums() {
		k := fs[n].kind
		if !k.IsValid() {
			k = protoreflect.MessageKind
		}
		f := &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(fmt.Sprintf("f%d", n)),
			Number: proto.Int32(int32(n)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   descriptorpb.FieldDescriptorProto_Type(k).Enum(),
		}
		switch k {
		case protoreflect.MessageKind, protoreflect.GroupKind:
			s := name.Append(protoreflect.Name(fmt.Sprintf("M%d", n)))
			f.TypeName = proto.String("." + string(s))
			m.NestedType = append(m.NestedType, fs[n].sub.messageDescriptor(s))
		default:
			f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
		}
		m.Field = append(m.Field, f)
	}
	return m
}

func (fs fields) sortedNums() (ns []wire.Number) {
	for n := range fs {
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	return ns
}

// addFlags registers one flag per kind, each adding to the tree.
func (fs *fields) addFlags(flags *pflag.FlagSet) {
	for _, f := range []struct {
		name  string
		kind  protoreflect.Kind
		usage string
	}{
		{"bools", protoreflect.BoolKind, "List of bool fields"},
		{"ints", protoreflect.Int64Kind, "List of int32 or int64 fields"},
		{"sints", protoreflect.Sint64Kind, "List of sint32 or sint64 fields"},
		{"uints", protoreflect.Uint64Kind, "List of enum, uint32, or uint64 fields"},
		{"uint32s", protoreflect.Fixed32Kind, "List of fixed32 fields"},
		{"int32s", protoreflect.Sfixed32Kind, "List of sfixed32 fields"},
		{"float32s", protoreflect.FloatKind, "List of float fields"},
		{"uint64s", protoreflect.Fixed64Kind, "List of fixed64 fields"},
		{"int64s", protoreflect.Sfixed64Kind, "List of sfixed64 fields"},
		{"float64s", protoreflect.DoubleKind, "List of double fields"},
		{"strings", protoreflect.StringKind, "List of string fields"},
		{"bytes", protoreflect.BytesKind, "List of bytes fields"},
		{"messages", protoreflect.MessageKind, "List of message fields"},
		{"groups", protoreflect.GroupKind, "List of group fields"},
	} {
		flags.Var(&kindFields{fs: fs, kind: f.kind}, f.name, f.usage)
	}
}

// kindFields implements pflag.Value for one kind of field list.
type kindFields struct {
	fs   *fields
	kind protoreflect.Kind
	set  []string
}

func (p *kindFields) String() string { return strings.Join(p.set, ",") }
func (p *kindFields) Type() string   { return "fields" }
func (p *kindFields) Set(s string) error {
	if err := p.fs.Set(s, p.kind); err != nil {
		return err
	}
	p.set = append(p.set, s)
	return nil
}
