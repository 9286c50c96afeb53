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

var compressFlagsVal compressFlags

var compressCmd = &cobra.Command{
	Use:     "compress <in> [<out>]",
	Aliases: []string{"c"},
	Short:   "compress a file into a bloscpack container",
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runCompress,
}

func init() {
	compressFlagsVal.register(compressCmd, true)
}

func runCompress(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := in + ".blp"
	if len(args) == 2 {
		out = args[1]
	}
	if err := checkOutputPath(out); err != nil {
		return err
	}

	codec, err := compressFlagsVal.codecValue()
	if err != nil {
		return usageErrorf("%s", err)
	}
	checksum, err := compressFlagsVal.checksumValue()
	if err != nil {
		return usageErrorf("%s", err)
	}
	chunkSize, err := compressFlagsVal.chunkSizeValue()
	if err != nil {
		return err
	}
	var metadata []byte
	if compressFlagsVal.metadata != "" {
		metadata, err = os.ReadFile(compressFlagsVal.metadata)
		if err != nil {
			return usageErrorf("reading --metadata file: %s", err)
		}
	}

	cfg := bloscpack.NewCompressConfig(
		bloscpack.WithTypesize(compressFlagsVal.typesize),
		bloscpack.WithLevel(compressFlagsVal.level),
		bloscpack.WithShuffle(compressFlagsVal.shuffle),
		bloscpack.WithCodec(codec),
		bloscpack.WithChunkSize(chunkSize),
		bloscpack.WithChecksum(checksum),
		bloscpack.WithOffsets(compressFlagsVal.offsets),
		bloscpack.WithMetadata(metadata),
		bloscpack.WithNthreads(nthreads),
	)

	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(out, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer dst.Close()

	ctx := newContext()
	logging.Infof(ctx, "compressing %s -> %s", in, out)

	stats, err := bloscpack.CompressStream(src, dst, cfg)
	if err != nil {
		return err
	}

	logging.Debugf(ctx, "nchunks=%d chunk_size=%d last_chunk=%d", stats.Nchunks, stats.ChunkSize, stats.LastChunk)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes -> %d bytes (%.2fx)\n", out, stats.NbytesIn, stats.NbytesOut, stats.CompressionRatio())
	return nil
}
