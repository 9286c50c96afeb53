// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"bytes"
	"io"
	"time"

	"github.com/luci/luci-go/common/iotools"

	"github.com/FrancescAlted/bloscpack/bpk"
)

// Sink is the destination a compress or append pipeline writes to. It must
// support patch-in-place seek-and-overwrite via WriteAt, without disturbing
// the sequential Write position. os.File satisfies this directly.
type Sink interface {
	io.Writer
	io.WriterAt
}

// CompressStream implements the writer pipeline: it splits source into
// chunks, compresses each through the block codec, checksums and frames
// each chunk record, and finalizes the offsets table and nchunks field
// once the whole input has been consumed.
func CompressStream(source io.Reader, sink Sink, cfg CompressConfig) (Stats, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	source, inputLen, err := resolveSource(source)
	if err != nil {
		return Stats{}, err
	}

	chunkSize := resolveChunkSize(cfg, inputLen)
	if chunkSize <= 0 {
		return Stats{}, bpk.ErrChunkSizeOutOfRange
	}

	nchunks := (inputLen + int64(chunkSize) - 1) / int64(chunkSize)
	if nchunks == 0 {
		nchunks = 1
	}
	lastChunk := uint32(inputLen - (nchunks-1)*int64(chunkSize))
	if inputLen == 0 {
		lastChunk = 0
	}

	maxAppChunks := int64(0)
	if cfg.Offsets {
		maxAppChunks = 10 * nchunks
	}

	cw := &iotools.CountingWriter{Writer: sink}

	hdr := bpk.Header{
		FormatVersion: bpk.FormatVersion,
		Offsets:       cfg.Offsets,
		Metadata:      cfg.Metadata != nil,
		ChecksumID:    cfg.Checksum,
		Typesize:      byte(cfg.Typesize),
		ChunkSize:     uint32(chunkSize),
		LastChunk:     lastChunk,
		Nchunks:       nchunks,
		MaxAppChunks:  maxAppChunks,
	}
	headerBase := cw.Count
	if _, err := hdr.WriteTo(cw); err != nil {
		return Stats{}, err
	}

	if cfg.Metadata != nil {
		mh, slot, err := bpk.BuildMetaSlot(cfg.Metadata, bpk.DefaultMetaCodec, bpk.DefaultMetaLevel, bpk.DefaultMetaChecksum)
		if err != nil {
			return Stats{}, err
		}
		if _, err := mh.WriteTo(cw); err != nil {
			return Stats{}, err
		}
		if _, err := cw.Write(slot); err != nil {
			return Stats{}, err
		}
	}

	var offsets bpk.Offsets
	var offsetsBase int64
	if cfg.Offsets {
		offsets = bpk.NewOffsets(nchunks, maxAppChunks)
		offsetsBase = cw.Count
		if _, err := offsets.WriteTo(cw); err != nil {
			return Stats{}, err
		}
	}

	var nbytesIn int64
	var chunkIndex int64
	buf := make([]byte, chunkSize)
	for chunkIndex < nchunks {
		n, readErr := io.ReadFull(source, buf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			return Stats{}, readErr
		}
		if cfg.Offsets {
			offsets.Set(int(chunkIndex), cw.Count)
		}
		framed, err := bpk.CompressBlock(buf[:n], cfg.Codec, cfg.Level, cfg.Shuffle, cfg.Typesize, cfg.Nthreads)
		if err != nil {
			return Stats{}, err
		}
		if _, err := bpk.WriteChunkRecord(cw, framed, cfg.Checksum); err != nil {
			return Stats{}, err
		}
		nbytesIn += int64(n)
		chunkIndex++
	}

	if err := bpk.PatchLastChunk(sink, headerBase, lastChunk); err != nil {
		return Stats{}, err
	}
	if err := bpk.PatchNchunks(sink, headerBase, nchunks); err != nil {
		return Stats{}, err
	}
	if cfg.Offsets {
		if err := offsets.PatchInPlace(sink, offsetsBase); err != nil {
			return Stats{}, err
		}
	}

	return Stats{
		Nchunks:      int(nchunks),
		ChunkSize:    chunkSize,
		LastChunk:    int(lastChunk),
		NbytesIn:     nbytesIn,
		NbytesOut:    cw.Count,
		MaxAppChunks: maxAppChunks,
		ElapsedNS:    time.Since(start).Nanoseconds(),
	}, nil
}

// resolveSource determines source's length before any container bytes are
// written: the offsets table sits on disk before the chunk records it
// describes, so nchunks must be known up front rather than discovered
// mid-stream. Len() and io.Seeker are tried first via a save/seek-end/
// restore probe; a source supporting neither is fully buffered instead.
func resolveSource(source io.Reader) (io.Reader, int64, error) {
	if lr, ok := source.(interface{ Len() int }); ok {
		return source, int64(lr.Len()), nil
	}
	if sk, ok := source.(io.Seeker); ok {
		cur, err := sk.Seek(0, io.SeekCurrent)
		if err == nil {
			end, err := sk.Seek(0, io.SeekEnd)
			if err == nil {
				if _, err := sk.Seek(cur, io.SeekStart); err == nil {
					return source, end - cur, nil
				}
			}
		}
	}
	buf, err := io.ReadAll(source)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(buf), int64(len(buf)), nil
}
