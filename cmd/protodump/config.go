// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/mstoykov/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// config holds the options shared by every subcommand. Each option is a
// persistent flag that may also be set through the PROTODUMP_* environment
// variable named in its tag; a flag given on the command line wins.
type config struct {
	DescriptorSet string `envconfig:"PROTODUMP_DESCRIPTOR_SET"`
	Format        string `envconfig:"PROTODUMP_FORMAT"`
	LogLevel      string `envconfig:"PROTODUMP_LOG_LEVEL"`
	AllowUnknown  bool   `envconfig:"PROTODUMP_ALLOW_UNKNOWN"`
}

const (
	formatText = "text"
	formatYAML = "yaml"
)

func defaultConfig() config {
	return config{
		Format:   formatText,
		LogLevel: logrus.WarnLevel.String(),
	}
}

func (c *config) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&c.DescriptorSet, "descriptor-set", "d", c.DescriptorSet,
		"encoded google.protobuf.FileDescriptorSet, optionally gzip or zstd compressed")
	flags.StringVarP(&c.Format, "format", "o", c.Format, "output format: text or yaml")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&c.AllowUnknown, "allow-unknown", c.AllowUnknown,
		"build files whose imports or types are missing, using placeholders")
	return flags
}

// applyEnv fills every option not given on the command line from the
// environment.
func (c *config) applyEnv(flags *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var env config
	if err := envconfig.Process("", &env, lookup); err != nil {
		return errors.Wrap(err, "invalid environment")
	}
	if !flags.Changed("descriptor-set") && env.DescriptorSet != "" {
		c.DescriptorSet = env.DescriptorSet
	}
	if !flags.Changed("format") && env.Format != "" {
		c.Format = env.Format
	}
	if !flags.Changed("log-level") && env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if !flags.Changed("allow-unknown") && env.AllowUnknown {
		c.AllowUnknown = true
	}
	return c.validate()
}

func (c config) validate() error {
	switch c.Format {
	case formatText, formatYAML:
	default:
		return errors.Errorf("unknown output format %q", c.Format)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	return nil
}
