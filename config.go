// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"math"

	"github.com/FrancescAlted/bloscpack/bpk"
)

// ChunkSizeMax requests the largest chunk size that still respects the
// block codec's per-call limit and the input length. It is math.MinInt32
// rather than -1 so that it can never collide with a genuinely invalid
// chunk_size a caller passes in (including -1 itself, which must be
// rejected by Validate, not treated as a request for the max).
const ChunkSizeMax = math.MinInt32

// CompressConfig holds the parameters of the writer pipeline. Construct one
// with NewCompressConfig and zero or more CompressOptions.
type CompressConfig struct {
	Typesize  int
	Level     int
	Shuffle   bool
	Codec     bpk.Codec
	ChunkSize int // bytes, or ChunkSizeMax
	Checksum  bpk.ChecksumScheme
	Offsets   bool
	Metadata  []byte // raw JSON, or nil
	Nthreads  int
}

// DefaultCompressConfig returns the baseline compression configuration.
func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Typesize:  8,
		Level:     7,
		Shuffle:   true,
		Codec:     bpk.CodecBloscLZ,
		ChunkSize: 1048576,
		Checksum:  bpk.ChecksumAdler32,
		Offsets:   true,
		Metadata:  nil,
		Nthreads:  1,
	}
}

// CompressOption mutates a CompressConfig; see WithTypesize et al.
type CompressOption func(*CompressConfig)

// NewCompressConfig builds a CompressConfig from DefaultCompressConfig plus
// the given options.
func NewCompressConfig(opts ...CompressOption) CompressConfig {
	cfg := DefaultCompressConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func WithTypesize(t int) CompressOption { return func(c *CompressConfig) { c.Typesize = t } }
func WithLevel(l int) CompressOption    { return func(c *CompressConfig) { c.Level = l } }
func WithShuffle(on bool) CompressOption { return func(c *CompressConfig) { c.Shuffle = on } }
func WithCodec(codec bpk.Codec) CompressOption {
	return func(c *CompressConfig) { c.Codec = codec }
}
func WithChunkSize(n int) CompressOption { return func(c *CompressConfig) { c.ChunkSize = n } }
func WithChecksum(csum bpk.ChecksumScheme) CompressOption {
	return func(c *CompressConfig) { c.Checksum = csum }
}
func WithOffsets(on bool) CompressOption { return func(c *CompressConfig) { c.Offsets = on } }
func WithMetadata(json []byte) CompressOption {
	return func(c *CompressConfig) { c.Metadata = json }
}
func WithNthreads(n int) CompressOption { return func(c *CompressConfig) { c.Nthreads = n } }

// Validate checks the configuration for errors before any I/O happens.
func (c CompressConfig) Validate() error {
	if err := bpk.ChecksumScheme(c.Checksum).Valid(); err != nil {
		return err
	}
	if c.Typesize < 1 || c.Typesize > 255 {
		return bpk.ErrTypesizeInvalid
	}
	if c.Nthreads < 1 || c.Nthreads > 256 {
		return bpk.ErrNthreadsOutOfRange
	}
	if c.ChunkSize != ChunkSizeMax && c.ChunkSize <= 0 {
		return bpk.ErrChunkSizeOutOfRange
	}
	if c.ChunkSize != ChunkSizeMax && c.ChunkSize > bpk.MaxBufferSize {
		return bpk.ErrChunkSizeOutOfRange
	}
	return nil
}

// resolveChunkSize picks the largest chunk size that is both <= the codec
// limit and <= the input length, for ChunkSizeMax.
func resolveChunkSize(cfg CompressConfig, inputLen int64) int {
	if cfg.ChunkSize != ChunkSizeMax {
		return cfg.ChunkSize
	}
	limit := int64(bpk.MaxBufferSize)
	if inputLen > 0 && inputLen < limit {
		limit = inputLen
	}
	if limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	return int(limit)
}

// DecompressOptions holds the parameters of the reader pipeline.
type DecompressOptions struct {
	Nthreads int
}

// DefaultDecompressOptions returns the reader pipeline defaults.
func DefaultDecompressOptions() DecompressOptions {
	return DecompressOptions{Nthreads: 1}
}
