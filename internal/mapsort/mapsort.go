// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mapsort provides the key ordering used for deterministic
// serialization of map fields.
package mapsort

import (
	"fmt"
	"sort"

	pref "github.com/protocore/protocore/reflect/protoreflect"
)

// Sort sorts keys of the given kind in place.
//
// Integers sort numerically, false sorts before true, and strings sort by
// byte-wise comparison. The order is stable within one build of a program,
// which is all deterministic serialization promises.
func Sort(keys []pref.MapKey, kind pref.Kind) {
	sort.Sort(mapKeys(keys, kind))
}

// Range calls f for each key of keys in sorted order until f returns false.
// keys is sorted in place.
func Range(keys []pref.MapKey, kind pref.Kind, f func(pref.MapKey) bool) {
	Sort(keys, kind)
	for _, k := range keys {
		if !f(k) {
			return
		}
	}
}

// mapKeys returns a sort.Interface to be used for sorting the map keys.
// Map fields may have key types of non-float scalars, strings and enums.
func mapKeys(vs []pref.MapKey, kind pref.Kind) sort.Interface {
	s := mapKeySorter{vs: vs}

	// Type specialization per https://developers.google.com/protocol-buffers/docs/proto#maps.
	switch kind {
	case pref.Int32Kind, pref.Sint32Kind, pref.Sfixed32Kind, pref.Int64Kind, pref.Sint64Kind, pref.Sfixed64Kind:
		s.less = func(a, b pref.MapKey) bool { return a.Int() < b.Int() }
	case pref.Uint32Kind, pref.Fixed32Kind, pref.Uint64Kind, pref.Fixed64Kind:
		s.less = func(a, b pref.MapKey) bool { return a.Uint() < b.Uint() }
	case pref.BoolKind:
		s.less = func(a, b pref.MapKey) bool { return !a.Bool() && b.Bool() } // false < true
	case pref.StringKind:
		s.less = func(a, b pref.MapKey) bool { return a.String() < b.String() }
	default:
		panic(fmt.Sprintf("unsupported map key kind: %v", kind))
	}

	return s
}

type mapKeySorter struct {
	vs   []pref.MapKey
	less func(a, b pref.MapKey) bool
}

func (s mapKeySorter) Len() int      { return len(s.vs) }
func (s mapKeySorter) Swap(i, j int) { s.vs[i], s.vs[j] = s.vs[j], s.vs[i] }
func (s mapKeySorter) Less(i, j int) bool {
	return s.less(s.vs[i], s.vs[j])
}
