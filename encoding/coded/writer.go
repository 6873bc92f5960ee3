// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coded writes protobuf values onto one of several output strategies.
//
// A Writer is the low level byte sink: it knows how to place tags, varints,
// fixed-width integers, raw bytes and length-prefixed strings, and nothing
// about field types. Three implementations are provided:
//
//	ArrayWriter       writes into a caller supplied slice, bounds checked
//	StreamWriter      buffers into a scratch slice and flushes to an io.Writer
//	ByteOutputWriter  like StreamWriter, but large payloads are handed to
//	                  the sink without copying through ByteOutput.WriteLazy
//
// The Encoder builds the typed field surface on top of a Writer.
// Neither type is safe for concurrent use.
package coded

import (
	"github.com/protocore/protocore/encoding/wire"
	"github.com/protocore/protocore/internal/errors"
)

// Writer is the contract shared by every output strategy.
type Writer interface {
	// WriteTag writes the varint-encoded tag for a field.
	WriteTag(num wire.Number, typ wire.Type) error
	// WriteVarint32 writes v as a varint, which takes at most 5 bytes.
	WriteVarint32(v uint32) error
	// WriteVarint64 writes v as a varint, which takes at most 10 bytes.
	WriteVarint64(v uint64) error
	// WriteFixed32 writes v as 4 little-endian bytes.
	WriteFixed32(v uint32) error
	// WriteFixed64 writes v as 8 little-endian bytes.
	WriteFixed64(v uint64) error

	// WriteTagVarint writes a VARINT tag followed by v.
	WriteTagVarint(num wire.Number, v uint64) error
	// WriteTagFixed32 writes a FIXED32 tag followed by v.
	WriteTagFixed32(num wire.Number, v uint32) error
	// WriteTagFixed64 writes a FIXED64 tag followed by v.
	WriteTagFixed64(num wire.Number, v uint64) error

	// WriteRawByte writes a single byte.
	WriteRawByte(b byte) error
	// WriteRaw writes b verbatim. The Writer does not retain b.
	WriteRaw(b []byte) error
	// WriteLazy writes b verbatim. The Writer may retain b until the next
	// Flush and the caller must not modify it until then.
	WriteLazy(b []byte) error
	// WriteString writes s as a length-prefixed UTF-8 value.
	// Invalid UTF-8 is replaced byte by byte with U+FFFD.
	WriteString(s string) error

	// Flush pushes any buffered bytes to the underlying sink.
	Flush() error
	// SpaceLeft reports the number of bytes that may still be written.
	// Stream-backed writers return ErrSpaceLeftUnsupported.
	SpaceLeft() (int, error)
	// TotalBytesWritten reports the number of bytes accepted so far,
	// whether or not they have been flushed.
	TotalBytesWritten() int
}

// ErrSpaceLeftUnsupported is returned by SpaceLeft on writers that are not
// backed by a fixed size array.
var ErrSpaceLeftUnsupported = errors.New("SpaceLeft is only supported by array-backed writers")

var errSpaceLeftOver = errors.New("did not write as much data as expected")

// DefaultBufferSize is the scratch buffer size used when a
// non-positive size is requested.
const DefaultBufferSize = 4096

// minBufferSize guarantees that a tag and a 64-bit varint always fit
// after a single flush.
const minBufferSize = 2 * wire.MaxVarintLen64

func bufferSize(n int) int {
	if n <= 0 {
		n = DefaultBufferSize
	}
	if n < minBufferSize {
		n = minBufferSize
	}
	return n
}
