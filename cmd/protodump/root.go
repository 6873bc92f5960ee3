// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/protocore/protocore/encoding/coded"
	"github.com/protocore/protocore/reflect/protodesc"
	"github.com/protocore/protocore/reflect/protoregistry"
)

// globalState is what the commands need from the process. Tests replace
// the streams and the environment.
type globalState struct {
	ctx       context.Context
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv func(string) (string, bool)
	logger    *logrus.Logger
	cfg       config
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:       ctx,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.WarnLevel,
		},
		cfg: defaultConfig(),
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "protodump",
		Short:         "inspect protocol buffer descriptors and wire data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := gs.cfg.applyEnv(cmd.Flags(), gs.lookupEnv); err != nil {
				return err
			}
			level, _ := logrus.ParseLevel(gs.cfg.LogLevel)
			gs.logger.SetLevel(level)
			coded.SetLogger(gs.logger)
			return nil
		},
	}
	cmd.SetIn(gs.stdin)
	cmd.SetOut(gs.stdout)
	cmd.SetErr(gs.stderr)
	cmd.PersistentFlags().AddFlagSet(gs.cfg.flagSet())
	cmd.AddCommand(
		getDescribeCmd(gs),
		getLookupCmd(gs),
		getDecodeCmd(gs),
		getVarintCmd(gs),
	)
	return cmd
}

// run executes the command line args and returns the process exit code.
func run(ctx context.Context, args []string, gs *globalState) int {
	gs.ctx = ctx
	cmd := newRootCommand(gs)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		gs.logger.WithError(err).Error("protodump failed")
		return 1
	}
	return 0
}

// loadFiles builds the descriptor set named by the configuration, or read
// from stdin when none is named.
func (gs *globalState) loadFiles() (*protoregistry.Files, error) {
	raw, err := readInput(gs.cfg.DescriptorSet, gs.stdin)
	if err != nil {
		return nil, err
	}
	gs.logger.WithField("bytes", len(raw)).Debug("building descriptor set")
	return protoregistry.BuildFileSet(gs.ctx, raw, protodesc.BuildOptions{
		AllowUnknownDependencies: gs.cfg.AllowUnknown,
		Logger:                   gs.logger,
	})
}
