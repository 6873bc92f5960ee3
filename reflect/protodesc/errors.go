// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"fmt"

	"github.com/protocore/protocore/reflect/protoreflect"
)

// ValidationError reports a descriptor that could not be built.
// The whole file fails; no partially built graph is returned.
type ValidationError struct {
	File        string                // path of the file being built
	Symbol      protoreflect.FullName // offending declaration; empty for file-level problems
	Description string

	Err error // underlying decode error, if any
}

func (e *ValidationError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("proto: %s: %s", e.File, e.Description)
	}
	return fmt.Sprintf("proto: %s: %s: %s", e.File, e.Symbol, e.Description)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (b *builder) errorf(sym protoreflect.FullName, f string, x ...interface{}) error {
	return &ValidationError{
		File:        b.file.path,
		Symbol:      sym,
		Description: fmt.Sprintf(f, x...),
	}
}

func (b *builder) malformed(sym protoreflect.FullName, err error) error {
	return &ValidationError{
		File:        b.file.path,
		Symbol:      sym,
		Description: "malformed descriptor: " + err.Error(),
		Err:         err,
	}
}
