// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	blosc "github.com/mrjoshuak/go-blosc"
	"github.com/luci/luci-go/common/errors"
)

// Codec identifies one of the block codec's named algorithms.
type Codec byte

// Algorithms known to the block codec. The bloscpack header does not store
// the data codec (each chunk's own framing does), but the metadata header
// stores the metadata codec as this numeric value in meta_codec_id, so the
// values are part of the wire format and must not be renumbered.
const (
	CodecBloscLZ Codec = iota
	CodecLZ4
	CodecLZ4HC
	CodecSnappy
	CodecZlib
)

var codecNames = map[Codec]string{
	CodecBloscLZ: "blosclz",
	CodecLZ4:     "lz4",
	CodecLZ4HC:   "lz4hc",
	CodecSnappy:  "snappy",
	CodecZlib:    "zlib",
}

var codecsByName = map[string]Codec{
	"blosclz": CodecBloscLZ,
	"lz4":     CodecLZ4,
	"lz4hc":   CodecLZ4HC,
	"snappy":  CodecSnappy,
	"zlib":    CodecZlib,
}

// CodecByName resolves one of the known algorithm names.
func CodecByName(name string) (Codec, error) {
	c, ok := codecsByName[name]
	if !ok {
		return 0, errors.Annotate(ErrUnknownCodec).Reason("%(name)q").D("name", name).Err()
	}
	return c, nil
}

// String returns the algorithm name, e.g. "lz4hc".
func (c Codec) String() string {
	if n, ok := codecNames[c]; ok {
		return n
	}
	return "unknown"
}

func (c Codec) bloscCodec() (blosc.Codec, error) {
	switch c {
	case CodecBloscLZ:
		// The bound block codec implementation does not carry a native
		// blosclz backend (see DESIGN.md Open Questions); blosclz requests
		// fail rather than silently substituting another algorithm.
		return 0, errors.Annotate(ErrUnknownCodec).Reason("blosclz is not available in this build").Err()
	case CodecLZ4:
		return blosc.LZ4, nil
	case CodecLZ4HC:
		return blosc.LZ4HC, nil
	case CodecSnappy:
		return blosc.Snappy, nil
	case CodecZlib:
		return blosc.ZLIB, nil
	}
	return 0, errors.Annotate(ErrUnknownCodec).Reason("id 0x%(id)x").D("id", byte(c)).Err()
}

// MaxBufferSize is the block codec's per-call size limit. Callers (the
// writer pipeline) choose chunk_size to stay within it.
const MaxBufferSize = 1<<31 - 1

// CompressBlock compresses buf through the block codec with the given
// parameters and returns the codec's self-describing framed output. nthreads
// is validated but not passed to the bound pure-Go backend, which always
// compresses on a single thread.
func CompressBlock(buf []byte, codec Codec, level int, shuffle bool, typesize, nthreads int) ([]byte, error) {
	if err := validateTypesize(typesize); err != nil {
		return nil, err
	}
	if err := validateNthreads(nthreads); err != nil {
		return nil, err
	}
	if len(buf) > MaxBufferSize {
		return nil, errors.Reason("bpk: buffer of %(n)d bytes exceeds codec limit %(max)d").
			D("n", len(buf)).D("max", MaxBufferSize).Err()
	}
	bc, err := codec.bloscCodec()
	if err != nil {
		return nil, err
	}
	shuffleMode := blosc.NoShuffle
	if shuffle {
		shuffleMode = blosc.Shuffle1
	}
	if len(buf) == 0 {
		// go-blosc rejects zero-length input; frame it by hand instead.
		return compressEmpty(typesize), nil
	}
	return blosc.CompressWithOptions(buf, blosc.Options{
		Codec:    bc,
		Level:    level,
		Shuffle:  shuffleMode,
		TypeSize: typesize,
	})
}

// compressEmpty builds a valid, self-describing empty frame without calling
// into go-blosc (which rejects zero-length input outright).
func compressEmpty(typesize int) []byte {
	h := blosc.Header{
		Version:    blosc.FormatVersion,
		VersionLZ:  uint8(blosc.LZ4),
		Flags:      0x2, // memcpy
		TypeSize:   uint8(typesize),
		NBytesOrig: 0,
		BlockSize:  0,
		NBytesComp: blosc.HeaderSize,
	}
	return h.Bytes()
}

// DecompressBlock reverses CompressBlock. The framed bytes are
// self-describing; only a thread count is additionally accepted.
func DecompressBlock(framed []byte, nthreads int) ([]byte, error) {
	if err := validateNthreads(nthreads); err != nil {
		return nil, err
	}
	h, err := blosc.ParseHeader(framed)
	if err != nil {
		return nil, errors.Annotate(err).Reason("bpk: decode block header").Err()
	}
	if h.NBytesOrig == 0 {
		return []byte{}, nil
	}
	return blosc.Decompress(framed)
}

// blosc.Codec -> Codec is the reverse of (Codec).bloscCodec, used by
// FrameCodec to recover which algorithm a chunk was actually compressed
// with.
var codecsByBlosc = map[blosc.Codec]Codec{
	blosc.LZ4:    CodecLZ4,
	blosc.LZ4HC:  CodecLZ4HC,
	blosc.Snappy: CodecSnappy,
	blosc.ZLIB:   CodecZlib,
}

// FrameCodec reports which algorithm produced a framed block, read from the
// block codec's own self-describing header. The bloscpack header never
// records this, only the per-chunk framing does.
func FrameCodec(framed []byte) (Codec, error) {
	h, err := blosc.ParseHeader(framed)
	if err != nil {
		return 0, errors.Annotate(err).Reason("bpk: decode block header").Err()
	}
	c, ok := codecsByBlosc[blosc.Codec(h.VersionLZ)]
	if !ok {
		return 0, errors.Annotate(ErrUnknownCodec).Reason("frame codec id 0x%(id)x").D("id", h.VersionLZ).Err()
	}
	return c, nil
}

// FramedSize returns the number of bytes occupied by one framed block,
// including its own header, without decompressing it. Used to recover
// chunk boundaries when reading sequentially without an offsets table.
func FramedSize(framed []byte) (int, error) {
	h, err := blosc.ParseHeader(framed)
	if err != nil {
		return 0, errors.Annotate(err).Reason("bpk: decode block header").Err()
	}
	return int(h.NBytesComp), nil
}

func validateTypesize(typesize int) error {
	if typesize < 1 || typesize > 255 {
		return errors.Annotate(ErrTypesizeInvalid).Reason("%(t)d").D("t", typesize).Err()
	}
	return nil
}

func validateNthreads(nthreads int) error {
	if nthreads < 1 || nthreads > 256 {
		return errors.Annotate(ErrNthreadsOutOfRange).Reason("%(n)d").D("n", nthreads).Err()
	}
	return nil
}
