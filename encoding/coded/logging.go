// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coded

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type loggerHolder struct{ l logrus.FieldLogger }

var currentLogger atomic.Value // of loggerHolder

// SetLogger sets the logger used to report recovered encoding problems,
// such as strings that are not valid UTF-8.
// A nil logger restores logrus.StandardLogger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	currentLogger.Store(loggerHolder{l})
}

func logger() logrus.FieldLogger {
	if h, ok := currentLogger.Load().(loggerHolder); ok {
		return h.l
	}
	return logrus.StandardLogger()
}
