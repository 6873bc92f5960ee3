// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"sort"

	"github.com/protocore/protocore/reflect/protoreflect"
)

// The list types below are populated during the build and indexed once
// during cross-linking. They are read-only afterwards, so lookups need no
// synchronization.

type Messages struct {
	list   []Message
	byName map[protoreflect.Name]*Message
}

func (p *Messages) Len() int                            { return len(p.list) }
func (p *Messages) Get(i int) *Message                  { return &p.list[i] }
func (p *Messages) ByName(s protoreflect.Name) *Message { return p.byName[s] }

func (p *Messages) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Message, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

type Enums struct {
	list   []Enum
	byName map[protoreflect.Name]*Enum
}

func (p *Enums) Len() int                         { return len(p.list) }
func (p *Enums) Get(i int) *Enum                  { return &p.list[i] }
func (p *Enums) ByName(s protoreflect.Name) *Enum { return p.byName[s] }

func (p *Enums) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Enum, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

// Fields lists the fields of a message in declaration order and indexes
// them by name, JSON name and number.
type Fields struct {
	list     []Field
	byName   map[protoreflect.Name]*Field
	byJSON   map[string]*Field
	byNumber []*Field // sorted by field number
}

func (p *Fields) Len() int                          { return len(p.list) }
func (p *Fields) Get(i int) *Field                  { return &p.list[i] }
func (p *Fields) ByName(s protoreflect.Name) *Field { return p.byName[s] }
func (p *Fields) ByJSONName(s string) *Field        { return p.byJSON[s] }

// ByNumber returns the field with number n using a binary search over the
// number-sorted view.
func (p *Fields) ByNumber(n protoreflect.FieldNumber) *Field {
	i := sort.Search(len(p.byNumber), func(i int) bool { return p.byNumber[i].number >= n })
	if i < len(p.byNumber) && p.byNumber[i].number == n {
		return p.byNumber[i]
	}
	return nil
}

// SortedByNumber returns the fields ordered by field number.
func (p *Fields) SortedByNumber() []*Field { return p.byNumber }

// index builds the name maps and the number-sorted view. The sort is
// stable so that duplicate numbers stay in declaration order and the
// duplicate check reports the later declaration.
func (p *Fields) index() {
	if len(p.list) == 0 {
		return
	}
	p.byName = make(map[protoreflect.Name]*Field, len(p.list))
	p.byJSON = make(map[string]*Field, len(p.list))
	p.byNumber = make([]*Field, len(p.list))
	for i := range p.list {
		f := &p.list[i]
		p.byName[f.Name()] = f
		if _, ok := p.byJSON[f.jsonName]; !ok {
			p.byJSON[f.jsonName] = f
		}
		p.byNumber[i] = f
	}
	sort.SliceStable(p.byNumber, func(i, j int) bool {
		return p.byNumber[i].number < p.byNumber[j].number
	})
}

// Extensions lists extension fields. Extensions of a single scope may
// extend different messages and reuse numbers, so there is no number index.
type Extensions struct {
	list   []Field
	byName map[protoreflect.Name]*Field
}

func (p *Extensions) Len() int                          { return len(p.list) }
func (p *Extensions) Get(i int) *Field                  { return &p.list[i] }
func (p *Extensions) ByName(s protoreflect.Name) *Field { return p.byName[s] }

func (p *Extensions) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Field, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

type Oneofs struct {
	list   []Oneof
	byName map[protoreflect.Name]*Oneof
}

func (p *Oneofs) Len() int                          { return len(p.list) }
func (p *Oneofs) Get(i int) *Oneof                  { return &p.list[i] }
func (p *Oneofs) ByName(s protoreflect.Name) *Oneof { return p.byName[s] }

func (p *Oneofs) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Oneof, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

// EnumValues lists enum values in declaration order. The number view is
// sorted and holds one value per distinct number: the first declared.
type EnumValues struct {
	list     []EnumValue
	byName   map[protoreflect.Name]*EnumValue
	byNumber []*EnumValue
}

func (p *EnumValues) Len() int                              { return len(p.list) }
func (p *EnumValues) Get(i int) *EnumValue                  { return &p.list[i] }
func (p *EnumValues) ByName(s protoreflect.Name) *EnumValue { return p.byName[s] }

// Distinct reports the number of distinct numbers among the values.
func (p *EnumValues) Distinct() int { return len(p.byNumber) }

func (p *EnumValues) ByNumber(n protoreflect.EnumNumber) *EnumValue {
	i := sort.Search(len(p.byNumber), func(i int) bool { return p.byNumber[i].number >= n })
	if i < len(p.byNumber) && p.byNumber[i].number == n {
		return p.byNumber[i]
	}
	return nil
}

func (p *EnumValues) index() {
	if len(p.list) == 0 {
		return
	}
	p.byName = make(map[protoreflect.Name]*EnumValue, len(p.list))
	sorted := make([]*EnumValue, len(p.list))
	for i := range p.list {
		v := &p.list[i]
		p.byName[v.Name()] = v
		sorted[i] = v
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].number < sorted[j].number
	})
	// Aliases are legal; keep the first declared value for each number.
	distinct := sorted[:1]
	for _, v := range sorted[1:] {
		if v.number != distinct[len(distinct)-1].number {
			distinct = append(distinct, v)
		}
	}
	p.byNumber = distinct[:len(distinct):len(distinct)]
}

type Services struct {
	list   []Service
	byName map[protoreflect.Name]*Service
}

func (p *Services) Len() int                            { return len(p.list) }
func (p *Services) Get(i int) *Service                  { return &p.list[i] }
func (p *Services) ByName(s protoreflect.Name) *Service { return p.byName[s] }

func (p *Services) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Service, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

type Methods struct {
	list   []Method
	byName map[protoreflect.Name]*Method
}

func (p *Methods) Len() int                           { return len(p.list) }
func (p *Methods) Get(i int) *Method                  { return &p.list[i] }
func (p *Methods) ByName(s protoreflect.Name) *Method { return p.byName[s] }

func (p *Methods) index() {
	if len(p.list) > 0 {
		p.byName = make(map[protoreflect.Name]*Method, len(p.list))
		for i := range p.list {
			p.byName[p.list[i].Name()] = &p.list[i]
		}
	}
}

type Names struct {
	list []protoreflect.Name
	has  map[protoreflect.Name]struct{}
}

func (p *Names) Len() int                    { return len(p.list) }
func (p *Names) Get(i int) protoreflect.Name { return p.list[i] }
func (p *Names) Has(s protoreflect.Name) bool {
	_, ok := p.has[s]
	return ok
}

func (p *Names) index() {
	if len(p.list) > 0 {
		p.has = make(map[protoreflect.Name]struct{}, len(p.list))
		for _, s := range p.list {
			p.has[s] = struct{}{}
		}
	}
}

// FieldRanges is a list of field number ranges.
// Each range is start inclusive and end exclusive.
type FieldRanges struct {
	list   [][2]protoreflect.FieldNumber
	sorted [][2]protoreflect.FieldNumber
}

func (p *FieldRanges) Len() int                              { return len(p.list) }
func (p *FieldRanges) Get(i int) [2]protoreflect.FieldNumber { return p.list[i] }
func (p *FieldRanges) Has(n protoreflect.FieldNumber) bool {
	for ls := p.sorted; len(ls) > 0; {
		i := len(ls) / 2
		switch r := ls[i]; {
		case n < r[0]:
			ls = ls[:i] // search lower
		case n >= r[1]:
			ls = ls[i+1:] // search upper
		default:
			return true
		}
	}
	return false
}

// overlap returns the indexes of the first two overlapping ranges in
// declaration order, if any.
func (p *FieldRanges) overlap() (int, int, bool) {
	for i := range p.list {
		for j := i + 1; j < len(p.list); j++ {
			if p.list[i][0] < p.list[j][1] && p.list[j][0] < p.list[i][1] {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (p *FieldRanges) index() {
	p.sorted = append([][2]protoreflect.FieldNumber(nil), p.list...)
	sort.Slice(p.sorted, func(i, j int) bool {
		return p.sorted[i][0] < p.sorted[j][0]
	})
}

// EnumRanges is a list of enum number ranges.
// Each range is start inclusive and end inclusive.
type EnumRanges struct {
	list   [][2]protoreflect.EnumNumber
	sorted [][2]protoreflect.EnumNumber
}

func (p *EnumRanges) Len() int                             { return len(p.list) }
func (p *EnumRanges) Get(i int) [2]protoreflect.EnumNumber { return p.list[i] }
func (p *EnumRanges) Has(n protoreflect.EnumNumber) bool {
	for ls := p.sorted; len(ls) > 0; {
		i := len(ls) / 2
		switch r := ls[i]; {
		case n < r[0]:
			ls = ls[:i] // search lower
		case n > r[1]:
			ls = ls[i+1:] // search upper
		default:
			return true
		}
	}
	return false
}

func (p *EnumRanges) index() {
	p.sorted = append([][2]protoreflect.EnumNumber(nil), p.list...)
	sort.Slice(p.sorted, func(i, j int) bool {
		return p.sorted[i][0] < p.sorted[j][0]
	})
}
