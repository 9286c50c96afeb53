// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"bytes"
	"io"

	"github.com/luci/luci-go/common/errors"
	"github.com/luci/luci-go/common/iotools"
)

// WriteChunkRecord writes one chunk record: the framed compressed payload
// verbatim, followed by csum's digest over exactly those framed bytes. It
// returns the number of bytes written.
func WriteChunkRecord(w io.Writer, framed []byte, csum ChecksumScheme) (int64, error) {
	cw := &iotools.CountingWriter{Writer: w}
	if _, err := cw.Write(framed); err != nil {
		return cw.Count, err
	}
	if csum != ChecksumNone {
		if _, err := cw.Write(csum.Sum(framed)); err != nil {
			return cw.Count, err
		}
	}
	return cw.Count, nil
}

// ReadChunkRecord reads one chunk record from r: it first peeks the block
// codec's own header to learn the framed length, reads exactly that many
// bytes plus the checksum's digest size, and verifies the checksum. index
// is used only to identify the chunk in a returned ChunkChecksumMismatch.
func ReadChunkRecord(r io.Reader, csum ChecksumScheme, index int) (framed []byte, err error) {
	head := make([]byte, minFrameProbe)
	if _, err = io.ReadFull(r, head); err != nil {
		return nil, errors.Annotate(ErrTruncatedChunk).Reason("reading chunk %(i)d frame header: %(e)s").
			D("i", index).D("e", err).Err()
	}
	frameLen, err := FramedSize(head)
	if err != nil {
		return nil, errors.Annotate(ErrTruncatedChunk).Reason("chunk %(i)d: %(e)s").D("i", index).D("e", err).Err()
	}
	framed = make([]byte, frameLen)
	copy(framed, head)
	if frameLen > len(head) {
		if _, err = io.ReadFull(r, framed[len(head):]); err != nil {
			return nil, errors.Annotate(ErrTruncatedChunk).Reason("reading chunk %(i)d body: %(e)s").
				D("i", index).D("e", err).Err()
		}
	} else {
		framed = framed[:frameLen]
	}

	if csum == ChecksumNone {
		return framed, nil
	}
	digest := make([]byte, csum.DigestSize())
	if _, err = io.ReadFull(r, digest); err != nil {
		return nil, errors.Annotate(ErrTruncatedChunk).Reason("reading chunk %(i)d checksum: %(e)s").
			D("i", index).D("e", err).Err()
	}
	computed := csum.Sum(framed)
	if !bytes.Equal(computed, digest) {
		return nil, &ChunkChecksumMismatch{Index: index, Scheme: csum, Nominal: digest, Computed: computed}
	}
	return framed, nil
}

// ProbeChunkHeader reads just enough of a chunk record at the reader's
// current position to learn its algorithm and total on-disk size, without
// reading the compressed body, the checksum digest, or decompressing
// anything.
func ProbeChunkHeader(r io.Reader, csum ChecksumScheme) (codec Codec, recordSize int64, err error) {
	head := make([]byte, minFrameProbe)
	if _, err = io.ReadFull(r, head); err != nil {
		return 0, 0, errors.Annotate(ErrTruncatedChunk).Reason("probing chunk header: %(e)s").D("e", err).Err()
	}
	frameLen, err := FramedSize(head)
	if err != nil {
		return 0, 0, err
	}
	codec, err = FrameCodec(head)
	if err != nil {
		return 0, 0, err
	}
	return codec, int64(frameLen) + int64(csum.DigestSize()), nil
}

// RecordSize returns the total on-disk size of a chunk record (framed bytes
// plus trailing digest) given its already-read framed payload.
func RecordSize(framed []byte, csum ChecksumScheme) int64 {
	return int64(len(framed)) + int64(csum.DigestSize())
}

// minFrameProbe is large enough to contain the block codec's own frame
// header (go-blosc's header is 16 bytes) so FramedSize can be computed
// before the rest of the record is read.
const minFrameProbe = 16
