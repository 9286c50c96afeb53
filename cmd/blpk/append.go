// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/luci/luci-go/common/logging"
	"github.com/spf13/cobra"

	"github.com/FrancescAlted/bloscpack"
)

var appendFlagsVal compressFlags

var appendCmd = &cobra.Command{
	Use:     "append <orig> <new>",
	Aliases: []string{"a"},
	Short:   "append data from <new> onto an existing bloscpack container <orig>",
	Args:    cobra.ExactArgs(2),
	RunE:    runAppend,
}

func init() {
	appendFlagsVal.register(appendCmd, false)
	appendCmd.Flags().BoolVarP(&noCheckExtension, "no-check-extension", "e", false, "skip the .blp extension check")
}

func runAppend(cmd *cobra.Command, args []string) error {
	orig, newData := args[0], args[1]
	if err := checkExtension(orig); err != nil {
		return err
	}

	codec, err := appendFlagsVal.codecValue()
	if err != nil {
		return usageErrorf("%s", err)
	}
	checksum, err := appendFlagsVal.checksumValue()
	if err != nil {
		return usageErrorf("%s", err)
	}
	var metadata []byte
	if appendFlagsVal.metadata != "" {
		metadata, err = os.ReadFile(appendFlagsVal.metadata)
		if err != nil {
			return usageErrorf("reading --metadata file: %s", err)
		}
	}

	cfg := bloscpack.NewCompressConfig(
		bloscpack.WithTypesize(appendFlagsVal.typesize),
		bloscpack.WithLevel(appendFlagsVal.level),
		bloscpack.WithShuffle(appendFlagsVal.shuffle),
		bloscpack.WithCodec(codec),
		bloscpack.WithChecksum(checksum),
		bloscpack.WithMetadata(metadata),
		bloscpack.WithNthreads(nthreads),
	)

	target, err := os.OpenFile(orig, os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	defer target.Close()

	source, err := os.Open(newData)
	if err != nil {
		return err
	}
	defer source.Close()

	ctx := newContext()
	logging.Infof(ctx, "appending %s onto %s", newData, orig)

	stats, err := bloscpack.AppendStream(target, source, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: now %d chunks, %d bytes appended\n", orig, stats.Nchunks, stats.NbytesIn)
	return nil
}
