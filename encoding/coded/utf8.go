// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// maxUTF8Expansion bounds the encoded size of a string relative to its
// length: valid bytes are copied as is and each invalid byte becomes the
// three byte encoding of U+FFFD.
const maxUTF8Expansion = 3

// encodedLen reports how many bytes encodeUTF8 writes for s.
func encodedLen(s string) (n int, valid bool) {
	valid = true
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			valid = false
			n += len(string(utf8.RuneError))
			i++
			continue
		}
		n += size
		i += size
	}
	return n, valid
}

// encodeUTF8 copies s into dst, replacing every byte that is not part of a
// valid UTF-8 sequence with U+FFFD. dst must have room for
// len(s)*maxUTF8Expansion bytes, or for encodedLen(s) bytes.
//
// The output no longer round trips to s when a replacement was made,
// which is logged as a warning.
func encodeUTF8(dst []byte, s string) int {
	n := 0
	replaced := 0
	for i := 0; i < len(s); {
		if c := s[i]; c < utf8.RuneSelf {
			dst[n] = c
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			n += utf8.EncodeRune(dst[n:], utf8.RuneError)
			replaced++
			i++
			continue
		}
		n += copy(dst[n:], s[i:i+size])
		i += size
	}
	if replaced > 0 {
		logger().WithFields(logrus.Fields{
			"length":   len(s),
			"replaced": replaced,
		}).Warn("proto: string field is not valid UTF-8, invalid bytes replaced with U+FFFD; the value will not round trip")
	}
	return n
}

// encodeString returns the exact encoding of s.
func encodeString(s string) []byte {
	n, _ := encodedLen(s)
	b := make([]byte, n)
	encodeUTF8(b, s)
	return b
}
