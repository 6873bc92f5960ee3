// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/protocore/protocore/encoding/wire"
)

type varintResult struct {
	Value   string `yaml:"value"`
	Encoded string `yaml:"encoded"`
	Size    int    `yaml:"size"`
}

type varintCmd struct {
	gs     *globalState
	zigzag bool
	decode bool
}

func getVarintCmd(gs *globalState) *cobra.Command {
	c := &varintCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "varint VALUE...",
		Short: "Encode or decode base-128 varints",
		Long: `Encode each decimal VALUE as a varint and print its bytes in hex.

With --decode each VALUE is a hex string holding one varint, which is
decoded back to its decimal value. --zigzag applies the signed ZigZag
mapping used by sint32 and sint64 fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().BoolVar(&c.zigzag, "zigzag", false, "use the ZigZag mapping for signed values")
	cmd.Flags().BoolVar(&c.decode, "decode", false, "decode hex-encoded varints")
	return cmd
}

func (c *varintCmd) run(cmd *cobra.Command, args []string) error {
	results := make([]varintResult, 0, len(args))
	for _, arg := range args {
		var res varintResult
		var err error
		if c.decode {
			res, err = c.decodeVarint(arg)
		} else {
			res, err = c.encodeVarint(arg)
		}
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if c.gs.cfg.Format == formatYAML {
		return writeYAML(cmd.OutOrStdout(), results)
	}
	p := &printer{w: cmd.OutOrStdout()}
	for _, res := range results {
		p.printf("%s => %s (%d bytes)", res.Value, res.Encoded, res.Size)
	}
	return p.err
}

func (c *varintCmd) encodeVarint(s string) (varintResult, error) {
	var v uint64
	if c.zigzag {
		x, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return varintResult{}, errors.Wrapf(err, "invalid signed value %q", s)
		}
		v = wire.EncodeZigZag64(x)
	} else {
		x, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return varintResult{}, errors.Wrapf(err, "invalid value %q", s)
		}
		v = x
	}
	b := wire.AppendVarint(nil, v)
	return varintResult{Value: s, Encoded: hex.EncodeToString(b), Size: wire.SizeVarint(v)}, nil
}

func (c *varintCmd) decodeVarint(s string) (varintResult, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return varintResult{}, errors.Wrapf(err, "invalid hex %q", s)
	}
	v, n := wire.ConsumeVarint(b)
	if n < 0 {
		return varintResult{}, errors.Wrapf(wire.ParseError(n), "decoding %q", s)
	}
	if n != len(b) {
		return varintResult{}, errors.Errorf("decoding %q: %d trailing bytes", s, len(b)-n)
	}
	res := varintResult{Value: strconv.FormatUint(v, 10), Encoded: hex.EncodeToString(b), Size: n}
	if c.zigzag {
		res.Value = strconv.FormatInt(wire.DecodeZigZag64(v), 10)
	}
	return res, nil
}
