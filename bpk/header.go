// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"encoding/binary"
	"io"

	"github.com/luci/luci-go/common/errors"
)

// NoChunkSize is the chunk_size sentinel meaning "variable / not
// applicable".
const NoChunkSize uint32 = 0xFFFFFFFF

// UnknownNchunks is the nchunks sentinel meaning "unknown", forbidden in a
// finalized file but legal momentarily while a writer is still counting.
const UnknownNchunks int64 = -1

// Options bits within Header.Options.
const (
	optOffsets  = 1 << 0
	optMetadata = 1 << 1
	optReserved = ^byte(optOffsets | optMetadata)
)

// Header is the fixed 32 byte bloscpack_header.
type Header struct {
	FormatVersion byte
	Offsets       bool
	Metadata      bool
	ChecksumID    ChecksumScheme
	Typesize      byte
	ChunkSize     uint32
	LastChunk     uint32
	Nchunks       int64
	MaxAppChunks  int64
}

// Validate checks the invariants that are checkable from the header fields
// alone.
func (h Header) Validate() error {
	if h.FormatVersion != FormatVersion {
		return errors.Annotate(ErrUnsupportedVersion).Reason("%(v)d").D("v", h.FormatVersion).Err()
	}
	if !h.Offsets && h.MaxAppChunks != 0 {
		return errors.Annotate(ErrMalformedHeader).
			Reason("max_app_chunks must be 0 when offsets are disabled").Err()
	}
	if h.ChunkSize != NoChunkSize && h.LastChunk > h.ChunkSize {
		return errors.Annotate(ErrMalformedHeader).
			Reason("last_chunk (%(l)d) exceeds chunk_size (%(c)d)").
			D("l", h.LastChunk).D("c", h.ChunkSize).Err()
	}
	return nil
}

// WriteTo serializes the header to exactly HeaderSize bytes.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	buf[4] = h.FormatVersion
	var opts byte
	if h.Offsets {
		opts |= optOffsets
	}
	if h.Metadata {
		opts |= optMetadata
	}
	buf[5] = opts
	buf[6] = byte(h.ChecksumID)
	buf[7] = h.Typesize
	binary.LittleEndian.PutUint32(buf[8:12], h.ChunkSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.LastChunk)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.Nchunks))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.MaxAppChunks))
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadHeader parses the 32 byte bloscpack header from r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, errors.Annotate(ErrTruncatedFile).Reason("reading bloscpack header: %(e)s").D("e", err).Err()
	}
	return DecodeHeader(buf)
}

// DecodeHeader parses a 32 byte buffer into a Header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.Annotate(ErrTruncatedFile).Reason("short header: %(n)d bytes").D("n", len(buf)).Err()
	}
	if err := checkMagic(buf); err != nil {
		return Header{}, errors.Annotate(ErrBadMagic).Reason("%(e)s").D("e", err).Err()
	}
	opts := buf[5]
	if opts&optReserved != 0 {
		return Header{}, errors.Annotate(ErrMalformedHeader).
			Reason("reserved option bits set: 0x%(o)x").D("o", opts).Err()
	}
	h := Header{
		FormatVersion: buf[4],
		Offsets:       opts&optOffsets != 0,
		Metadata:      opts&optMetadata != 0,
		ChecksumID:    ChecksumScheme(buf[6]),
		Typesize:      buf[7],
		ChunkSize:     binary.LittleEndian.Uint32(buf[8:12]),
		LastChunk:     binary.LittleEndian.Uint32(buf[12:16]),
		Nchunks:       int64(binary.LittleEndian.Uint64(buf[16:24])),
		MaxAppChunks:  int64(binary.LittleEndian.Uint64(buf[24:32])),
	}
	if h.FormatVersion != FormatVersion {
		return Header{}, errors.Annotate(ErrUnsupportedVersion).Reason("%(v)d").D("v", h.FormatVersion).Err()
	}
	if err := h.ChecksumID.Valid(); err != nil {
		return Header{}, errors.Annotate(ErrMalformedHeader).Reason("checksum_id: %(e)s").D("e", err).Err()
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// PatchNchunks rewrites the nchunks field (bytes 16..24) of an
// already-written header in place. Used by the writer's and appender's
// finalize steps.
func PatchNchunks(w io.WriterAt, baseOffset int64, nchunks int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(nchunks))
	_, err := w.WriteAt(buf, baseOffset+16)
	return err
}

// PatchLastChunk rewrites the last_chunk field (bytes 12..16).
func PatchLastChunk(w io.WriterAt, baseOffset int64, lastChunk uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, lastChunk)
	_, err := w.WriteAt(buf, baseOffset+12)
	return err
}
