// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protodesc

import (
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/protocore/protocore/reflect/protoreflect"
)

// DefaultUnknownEnumValueCacheSize bounds the number of synthesized
// values each enum keeps when BuildOptions leaves the size unset.
const DefaultUnknownEnumValueCacheSize = 64

// unknownValues caches the values synthesized for numbers an enum does not
// declare. The cache is the only state mutated after a build.
type unknownValues struct {
	mu    sync.Mutex
	cache *lru.Cache // protected by mu; allocated on first use
}

// FindValueByNumberCreatingIfUnknown returns the value declared with
// number n, or a synthesized value named UNKNOWN_ENUM_VALUE_<Enum>_<n>.
//
// Declared values are found without locking. Synthesized values are kept
// in a bounded LRU cache, so repeated calls for the same unknown number
// usually return the same *EnumValue; once evicted, a new one is made.
func (e *Enum) FindValueByNumberCreatingIfUnknown(n protoreflect.EnumNumber) *EnumValue {
	if v := e.values.ByNumber(n); v != nil {
		return v
	}

	u := &e.unknown
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cache == nil {
		size := e.file.cacheSize
		if size <= 0 {
			size = DefaultUnknownEnumValueCacheSize
		}
		u.cache = lru.New(size)
	}
	if v, ok := u.cache.Get(n); ok {
		return v.(*EnumValue)
	}
	name := protoreflect.Name(fmt.Sprintf("UNKNOWN_ENUM_VALUE_%s_%d", e.Name(), n))
	v := &EnumValue{number: n, unknown: true}
	v.init(e.file, e, -1)
	v.fullName = e.fullName.Append(name)
	u.cache.Add(n, v)
	return v
}
