// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FrancescAlted/bloscpack"
	"github.com/FrancescAlted/bloscpack/bpk"
)

// compressFlags holds the CompressConfig-shaped flags shared by the
// compress and append subcommands.
type compressFlags struct {
	typesize  int
	level     int
	shuffle   bool
	codec     string
	chunkSize string
	checksum  string
	offsets   bool
	metadata  string
}

// register adds the CompressConfig-shaped flags to cmd. withChunkLayout
// also adds --chunk-size and --offsets, which only make sense for a fresh
// container: append reuses the target file's existing chunk_size and
// offsets setting instead.
func (f *compressFlags) register(cmd *cobra.Command, withChunkLayout bool) {
	cmd.Flags().IntVar(&f.typesize, "typesize", 8, "element size in bytes (1..255)")
	cmd.Flags().IntVar(&f.level, "level", 7, "compression level (0..9)")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", true, "enable byte shuffling before compression")
	cmd.Flags().StringVar(&f.codec, "codec", "blosclz", "block codec: blosclz, lz4, lz4hc, snappy, zlib")
	cmd.Flags().StringVar(&f.checksum, "checksum", "adler32", "checksum: none, adler32, crc32, md5, sha1, sha224, sha256, sha384, sha512")
	cmd.Flags().StringVarP(&f.metadata, "metadata", "m", "", "path to a JSON file to attach as container metadata")
	if withChunkLayout {
		cmd.Flags().StringVar(&f.chunkSize, "chunk-size", "1048576", "chunk size in bytes, or \"max\"")
		cmd.Flags().BoolVar(&f.offsets, "offsets", true, "write a random-access offsets table")
	}
}

func (f *compressFlags) codecValue() (bpk.Codec, error) {
	return bpk.CodecByName(f.codec)
}

func (f *compressFlags) checksumValue() (bpk.ChecksumScheme, error) {
	return bpk.ChecksumByName(f.checksum)
}

// chunkSizeValue resolves the --chunk-size flag. "max" maps to
// bloscpack.ChunkSizeMax; any other value is parsed as a plain integer and
// handed to CompressConfig.Validate unchanged, so an out-of-range value
// (e.g. -1) surfaces as the core's ChunkSizeOutOfRange rather than a CLI
// usage error.
func (f *compressFlags) chunkSizeValue() (int, error) {
	if f.chunkSize == "max" {
		return bloscpack.ChunkSizeMax, nil
	}
	var n int
	if _, err := fmt.Sscanf(f.chunkSize, "%d", &n); err != nil {
		return 0, usageErrorf("invalid --chunk-size %q", f.chunkSize)
	}
	return n, nil
}
