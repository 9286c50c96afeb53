// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/luci/luci-go/common/logging"
	"github.com/spf13/cobra"

	"github.com/FrancescAlted/bloscpack"
)

var (
	noCheckExtension bool
)

var decompressCmd = &cobra.Command{
	Use:     "decompress <in> [<out>]",
	Aliases: []string{"d"},
	Short:   "decompress a bloscpack container",
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runDecompress,
}

func init() {
	decompressCmd.Flags().BoolVarP(&noCheckExtension, "no-check-extension", "e", false, "skip the .blp extension check")
}

// checkExtension enforces the CLI-layer-only .blp suffix requirement (spec
// §6 DecompressOptions "check_extension").
func checkExtension(path string) error {
	if noCheckExtension {
		return nil
	}
	if !strings.HasSuffix(path, ".blp") {
		return usageErrorf("%q does not have a .blp extension (use -e/--no-check-extension to skip)", path)
	}
	return nil
}

func runDecompress(cmd *cobra.Command, args []string) error {
	in := args[0]
	if err := checkExtension(in); err != nil {
		return err
	}
	out := strings.TrimSuffix(in, ".blp")
	if len(args) == 2 {
		out = args[1]
	}
	if err := checkOutputPath(out); err != nil {
		return err
	}

	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer dst.Close()

	ctx := newContext()
	logging.Infof(ctx, "decompressing %s -> %s", in, out)

	opts := bloscpack.DefaultDecompressOptions()
	opts.Nthreads = nthreads

	meta, hasMeta, err := bloscpack.DecompressStream(src, dst, opts)
	if err != nil {
		return err
	}
	if hasMeta {
		logging.Debugf(ctx, "metadata: %s", meta)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: decompressed to %s\n", in, out)
	return nil
}
