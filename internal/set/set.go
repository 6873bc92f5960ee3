// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package set provides small set types for field numbers, indexes and names.
//
// The API for every set is:
//
//	// Len reports the number of elements in the set.
//	func (Set) Len() int
//
//	// Has reports whether an item is in the set.
//	func (Set) Has(T) bool
//
//	// Set inserts the item into the set.
//	func (Set) Set(T)
//
//	// Clear removes the item from the set.
//	func (Set) Clear(T)
//
// The zero value of every set is empty and ready to use.
package set

import (
	"math/bits"
	"sort"
)

// Ints represents a set of non-negative integers. Values below 64 are
// kept in a bitmap; larger values spill into a map.
type Ints struct {
	lo uint64
	hi map[int]struct{}
}

func (s *Ints) Len() int {
	return bits.OnesCount64(s.lo) + len(s.hi)
}
func (s *Ints) Has(n int) bool {
	if uint(n) < 64 {
		return s.lo&(1<<uint(n)) != 0
	}
	_, ok := s.hi[n]
	return ok
}
func (s *Ints) Set(n int) {
	if n < 0 {
		panic("set: negative element")
	}
	if n < 64 {
		s.lo |= 1 << uint(n)
		return
	}
	if s.hi == nil {
		s.hi = make(map[int]struct{})
	}
	s.hi[n] = struct{}{}
}
func (s *Ints) Clear(n int) {
	if uint(n) < 64 {
		s.lo &^= 1 << uint(n)
		return
	}
	delete(s.hi, n)
}

// Sorted returns the elements in increasing order.
func (s *Ints) Sorted() []int {
	out := make([]int, 0, s.Len())
	for lo := s.lo; lo != 0; lo &= lo - 1 {
		out = append(out, bits.TrailingZeros64(lo))
	}
	n := len(out)
	for v := range s.hi {
		out = append(out, v)
	}
	sort.Ints(out[n:])
	return out
}

// Strings represents a set of strings.
type Strings map[string]struct{}

func (ss *Strings) Len() int {
	return len(*ss)
}
func (ss *Strings) Has(s string) bool {
	_, ok := (*ss)[s]
	return ok
}
func (ss *Strings) Set(s string) {
	if *ss == nil {
		*ss = make(map[string]struct{})
	}
	(*ss)[s] = struct{}{}
}
func (ss *Strings) Clear(s string) {
	delete(*ss, s)
}
