// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"fmt"

	"github.com/luci/luci-go/common/errors"
)

// Format errors.
var (
	// ErrBadMagic is returned when the first 4 bytes of a stream are not
	// "blpk".
	ErrBadMagic = errors.New("bpk: bad magic")

	// ErrUnsupportedVersion is returned when format_version is not one this
	// package understands.
	ErrUnsupportedVersion = errors.New("bpk: unsupported format version")

	// ErrMalformedHeader is returned for reserved-bit violations or impossible
	// field combinations.
	ErrMalformedHeader = errors.New("bpk: malformed header")

	// ErrTruncatedChunk is returned when a chunk record ends before its framed
	// length plus checksum digest is fully readable.
	ErrTruncatedChunk = errors.New("bpk: truncated chunk")

	// ErrTruncatedFile is returned when a required region (offsets, metadata)
	// runs past the available bytes.
	ErrTruncatedFile = errors.New("bpk: truncated file")
)

// Configuration errors.
var (
	ErrUnknownCodec        = errors.New("bpk: unknown codec")
	ErrUnknownChecksum     = errors.New("bpk: unknown checksum")
	ErrChunkSizeOutOfRange = errors.New("bpk: chunk_size out of range")
	ErrTypesizeInvalid     = errors.New("bpk: typesize invalid")
	ErrNthreadsOutOfRange  = errors.New("bpk: nthreads out of range")
)

// Capacity errors.
var (
	ErrAppendCapacityExceeded = errors.New("bpk: append capacity exceeded")
	ErrMetaTooLarge           = errors.New("bpk: metadata too large")
	ErrOffsetsDisabled        = errors.New("bpk: offsets disabled")
)

// ChunkChecksumMismatch is returned when a chunk record's trailing digest
// does not match the digest recomputed over the framed bytes.
type ChunkChecksumMismatch struct {
	Index    int
	Scheme   ChecksumScheme
	Nominal  []byte
	Computed []byte
}

func (e *ChunkChecksumMismatch) Error() string {
	return fmt.Sprintf("bpk: chunk %d checksum mismatch (%s): got %x want %x",
		e.Index, e.Scheme, e.Computed, e.Nominal)
}

// MetaChecksumMismatch is returned when the metadata blob's checksum does
// not match its stored digest.
type MetaChecksumMismatch struct {
	Scheme   ChecksumScheme
	Nominal  []byte
	Computed []byte
}

func (e *MetaChecksumMismatch) Error() string {
	return fmt.Sprintf("bpk: metadata checksum mismatch (%s): got %x want %x",
		e.Scheme, e.Computed, e.Nominal)
}

// DecompressedSizeMismatch is returned when a sequential decompress
// produces a total byte count other than (nchunks-1)*chunk_size+last_chunk.
type DecompressedSizeMismatch struct {
	Got, Want int64
}

func (e *DecompressedSizeMismatch) Error() string {
	return fmt.Sprintf("bpk: decompressed %d bytes, header declares %d", e.Got, e.Want)
}
