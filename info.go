// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"io"

	"github.com/luci/luci-go/common/errors"

	"github.com/FrancescAlted/bloscpack/bpk"
)

// Info is the result of Inspect: everything recoverable from a container's
// headers and per-chunk framing without decompressing any chunk body.
type Info struct {
	Header     bpk.Header
	MetaHeader *bpk.MetaHeader
	Metadata   []byte
	Offsets    []int64

	// DataCodecs is the algorithm recorded in each chunk's own framing, in
	// chunk order. A single container can mix algorithms across chunks
	// after an append that used a different codec, so this is not a single
	// container-wide value.
	DataCodecs []bpk.Codec
}

// Inspect parses source's headers, metadata and offsets table, and probes
// every chunk record's own framing to learn its codec and size, without
// decompressing or checksum-verifying any chunk.
func Inspect(source io.ReadSeeker) (*Info, error) {
	rd, err := NewReader(source, DefaultDecompressOptions())
	if err != nil {
		return nil, err
	}

	info := &Info{Header: rd.header}
	if rd.meta != nil {
		info.MetaHeader = &rd.meta.Header
		info.Metadata = rd.meta.JSON
	}
	if rd.header.Offsets {
		info.Offsets = append([]int64(nil), rd.offsets...)
	}

	pos := rd.dataBase
	info.DataCodecs = make([]bpk.Codec, rd.header.Nchunks)
	for i := int64(0); i < rd.header.Nchunks; i++ {
		if _, err := source.Seek(pos, io.SeekStart); err != nil {
			return nil, err
		}
		codec, recordSize, err := bpk.ProbeChunkHeader(source, rd.header.ChecksumID)
		if err != nil {
			return nil, errors.Annotate(err).Reason("probing chunk %(i)d").D("i", i).Err()
		}
		info.DataCodecs[i] = codec
		pos += recordSize
	}

	return info, nil
}
