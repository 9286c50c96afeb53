// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"io"

	"github.com/luci/luci-go/common/errors"

	"github.com/FrancescAlted/bloscpack/bpk"
)

// Reader gives random and sequential access to an already-opened container.
// It reads the header, metadata and offsets table eagerly; chunk data is
// decompressed lazily, on Chunk or WriteTo.
type Reader struct {
	r        io.ReadSeeker
	opts     DecompressOptions
	header      bpk.Header
	offsets     bpk.Offsets
	meta        *bpk.Metadata
	offsetsBase int64
	dataBase    int64
}

// NewReader parses the container's header, metadata region and offsets
// table from source, leaving the read position at the start of chunk 0's
// record without touching any chunk data.
func NewReader(source io.ReadSeeker, opts DecompressOptions) (*Reader, error) {
	hdr, err := bpk.ReadHeader(source)
	if err != nil {
		return nil, err
	}

	rd := &Reader{r: source, opts: opts, header: hdr}

	if hdr.Metadata {
		m, err := bpk.ReadMetadataRegion(source)
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading metadata region").Err()
		}
		rd.meta = &m
	}

	if hdr.Offsets {
		base, err := source.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		rd.offsetsBase = base
		offsets, err := bpk.ReadOffsets(source, hdr.Nchunks, hdr.MaxAppChunks)
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading offsets table").Err()
		}
		rd.offsets = offsets
	}

	pos, err := source.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	rd.dataBase = pos

	return rd, nil
}

// Header returns the parsed bloscpack header.
func (rd *Reader) Header() bpk.Header { return rd.header }

// Metadata returns the decoded user metadata JSON, or ok=false if the
// container carries none.
func (rd *Reader) Metadata() (json []byte, ok bool) {
	if rd.meta == nil {
		return nil, false
	}
	return rd.meta.JSON, true
}

// Chunk decompresses and returns chunk i's uncompressed bytes via the
// offsets table. It fails with bpk.ErrOffsetsDisabled if the container has
// no offsets table.
func (rd *Reader) Chunk(i int) ([]byte, error) {
	if !rd.header.Offsets {
		return nil, bpk.ErrOffsetsDisabled
	}
	if i < 0 || int64(i) >= rd.header.Nchunks {
		return nil, errors.Reason("chunk index %(i)d out of range [0, %(n)d)").
			D("i", i).D("n", rd.header.Nchunks).Err()
	}
	off := rd.offsets[i]
	if rd.offsets.Unused(i) {
		return nil, errors.Reason("chunk %(i)d has no recorded offset").D("i", i).Err()
	}
	if _, err := rd.r.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	framed, err := bpk.ReadChunkRecord(rd.r, rd.header.ChecksumID, i)
	if err != nil {
		return nil, err
	}
	return bpk.DecompressBlock(framed, rd.opts.Nthreads)
}

// WriteTo decompresses every chunk in order and writes the concatenated
// uncompressed bytes to w. It seeks to chunk 0's record and reads chunk
// records sequentially from there rather than through the offsets table, so
// it also works when offsets are disabled.
func (rd *Reader) WriteTo(w io.Writer) (int64, error) {
	if _, err := rd.r.Seek(rd.dataBase, io.SeekStart); err != nil {
		return 0, err
	}
	var total int64
	for i := int64(0); i < rd.header.Nchunks; i++ {
		framed, err := bpk.ReadChunkRecord(rd.r, rd.header.ChecksumID, int(i))
		if err != nil {
			return total, err
		}
		raw, err := bpk.DecompressBlock(framed, rd.opts.Nthreads)
		if err != nil {
			return total, errors.Annotate(err).Reason("decompressing chunk %(i)d").D("i", i).Err()
		}
		n, err := w.Write(raw)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if want := rd.expectedSize(); total != want {
		return total, &bpk.DecompressedSizeMismatch{Got: total, Want: want}
	}
	return total, nil
}

// expectedSize is the uncompressed length the header declares:
// (nchunks-1)*chunk_size + last_chunk.
func (rd *Reader) expectedSize() int64 {
	if rd.header.Nchunks == 0 {
		return 0
	}
	return (rd.header.Nchunks-1)*int64(rd.header.ChunkSize) + int64(rd.header.LastChunk)
}

// DecompressStream is the one-shot form of Reader.WriteTo: it opens source,
// decompresses every chunk to sink in order, and returns the container's
// metadata, if any.
func DecompressStream(source io.ReadSeeker, sink io.Writer, opts DecompressOptions) (meta []byte, hasMeta bool, err error) {
	rd, err := NewReader(source, opts)
	if err != nil {
		return nil, false, err
	}
	if _, err := rd.WriteTo(sink); err != nil {
		return nil, false, err
	}
	meta, hasMeta = rd.Metadata()
	return meta, hasMeta, nil
}
