// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"io"
	"sync/atomic"

	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
)

// Message is a value that knows its own wire encoding.
type Message interface {
	// Size computes the encoded size of the message, stores it for
	// CachedSize, and returns it. Sizes of nested messages are computed
	// and stored along the way.
	Size() int
	// CachedSize returns the size stored by the last call to Size.
	CachedSize() int
	// MarshalTo writes the fields of the message, without any
	// length prefix, to e.
	MarshalTo(e *Encoder) error
}

// SizeCache memoizes the encoded size of a message.
// The zero value is an empty cache. It is safe for concurrent use.
type SizeCache struct {
	v atomic.Int32 // size+1; zero means unset
}

// Load returns the stored size, if any.
func (c *SizeCache) Load() (int, bool) {
	v := c.v.Load()
	return int(v) - 1, v != 0
}

// Store records n.
func (c *SizeCache) Store(n int) { c.v.Store(int32(n) + 1) }

// Reset drops the stored size; owners call it on every mutation.
func (c *SizeCache) Reset() { c.v.Store(0) }

// MarshalOptions configures the marshaler.
type MarshalOptions struct {
	// Deterministic orders map entries by key.
	Deterministic bool
}

// Marshal returns the wire encoding of m.
func Marshal(m Message) ([]byte, error) {
	return MarshalOptions{}.MarshalAppend(nil, m)
}

// Marshal returns the wire encoding of m.
func (o MarshalOptions) Marshal(m Message) ([]byte, error) {
	return o.MarshalAppend(nil, m)
}

// MarshalAppend appends the wire encoding of m to b.
//
// The size of m is computed first and the message is encoded straight into
// an exactly sized region. A mismatch between the computed and the written
// size is reported as an error.
func (o MarshalOptions) MarshalAppend(b []byte, m Message) ([]byte, error) {
	n := m.Size()
	start := len(b)
	if cap(b)-start < n {
		nb := make([]byte, start, start+n)
		copy(nb, b)
		b = nb
	}
	b = b[:start+n]
	e := NewEncoder(NewArrayWriterRange(b, start, n))
	e.SetDeterministic(o.Deterministic)
	if err := m.MarshalTo(e); err != nil {
		return b[:start], err
	}
	if err := e.CheckNoSpaceLeft(); err != nil {
		return b[:start], err
	}
	return b, nil
}

// MarshalTo writes the wire encoding of m to w through a StreamWriter.
func (o MarshalOptions) MarshalTo(w io.Writer, m Message) error {
	m.Size()
	e := NewStreamEncoder(w, 0)
	e.SetDeterministic(o.Deterministic)
	if err := m.MarshalTo(e); err != nil {
		return err
	}
	return e.Flush()
}

// MarshalDelimitedTo writes m to w preceded by its varint length.
func (o MarshalOptions) MarshalDelimitedTo(w io.Writer, m Message) error {
	n := m.Size()
	e := NewStreamEncoder(w, 0)
	e.SetDeterministic(o.Deterministic)
	if err := e.WriteUint32NoTag(uint32(n)); err != nil {
		return err
	}
	if err := m.MarshalTo(e); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	if got, want := e.TotalBytesWritten(), wire.SizeVarint32(uint32(n))+n; got != want {
		return errors.New("size changed during marshal: wrote %d bytes, expected %d", got, want)
	}
	return nil
}
