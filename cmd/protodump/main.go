// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// protodump inspects encoded FileDescriptorSets and wire-format messages.
//
// The describe subcommand prints the files of a descriptor set, lookup
// resolves names against it, decode prints a wire-format message and varint
// shows how integers are encoded. Run "protodump help" for details.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], newGlobalState(ctx))
	stop()
	os.Exit(code)
}
