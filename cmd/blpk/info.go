// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FrancescAlted/bloscpack"
)

var infoCmd = &cobra.Command{
	Use:     "info <file>",
	Aliases: []string{"i"},
	Short:   "print a bloscpack container's headers without decoding any chunk",
	Args:    cobra.ExactArgs(1),
	RunE:    runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := bloscpack.Inspect(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	h := info.Header
	fmt.Fprintf(out, "format_version: %d\n", h.FormatVersion)
	fmt.Fprintf(out, "offsets:        %t\n", h.Offsets)
	fmt.Fprintf(out, "metadata:       %t\n", h.Metadata)
	fmt.Fprintf(out, "checksum:       %s\n", h.ChecksumID)
	fmt.Fprintf(out, "typesize:       %d\n", h.Typesize)
	fmt.Fprintf(out, "chunk_size:     %d\n", h.ChunkSize)
	fmt.Fprintf(out, "last_chunk:     %d\n", h.LastChunk)
	fmt.Fprintf(out, "nchunks:        %d\n", h.Nchunks)
	fmt.Fprintf(out, "max_app_chunks: %d\n", h.MaxAppChunks)

	if info.MetaHeader != nil {
		mh := info.MetaHeader
		fmt.Fprintf(out, "meta_codec:      %s\n", mh.MetaCodecID)
		fmt.Fprintf(out, "meta_checksum:   %s\n", mh.MetaChecksumID)
		fmt.Fprintf(out, "meta_size:       %d\n", mh.MetaSize)
		fmt.Fprintf(out, "meta_comp_size:  %d\n", mh.MetaCompSize)
		fmt.Fprintf(out, "max_meta_size:   %d\n", mh.MaxMetaSize)
		fmt.Fprintf(out, "metadata value:  %s\n", info.Metadata)
	}

	const previewN = 8
	n := previewN
	if len(info.Offsets) < n {
		n = len(info.Offsets)
	}
	if n > 0 {
		fmt.Fprintf(out, "first offsets:   %v\n", info.Offsets[:n])
	}

	return nil
}
