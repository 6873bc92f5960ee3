// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors implements functions to manipulate errors.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// New formats a string according to the format specifier and arguments and
// returns an error that has a "proto" prefix.
func New(f string, x ...interface{}) error {
	for i := 0; i < len(x); i++ {
		if e, ok := x[i].(*prefixError); ok {
			x[i] = e.s // avoid "proto: " prefix when chaining
		}
	}
	return &prefixError{s: fmt.Sprintf(f, x...)}
}

type prefixError struct{ s string }

func (e *prefixError) Error() string { return "proto: " + e.s }

// Wrap annotates err with a formatted message and the "proto" prefix.
// The original error remains reachable through errors.Is, errors.As,
// and pkg/errors.Cause. Wrap returns nil if err is nil.
func Wrap(err error, f string, x ...interface{}) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*prefixError); ok {
		return &prefixError{s: fmt.Sprintf(f, x...) + ": " + e.s}
	}
	return pkgerrors.WithMessage(err, "proto: "+fmt.Sprintf(f, x...))
}

// Cause returns the underlying cause of err, if any.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// InvalidUTF8 reports that a string field holds malformed UTF-8.
func InvalidUTF8(name string) error {
	return New("field %v contains invalid UTF-8", name)
}
