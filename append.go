// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"io"
	"time"

	"github.com/luci/luci-go/common/errors"

	"github.com/FrancescAlted/bloscpack/bpk"
)

// AppendTarget is a container opened for both reading and patch-in-place
// writing; os.File satisfies it directly.
type AppendTarget interface {
	io.ReadWriteSeeker
	io.WriterAt
}

// AppendStream extends an existing container with further data from source.
// The last existing chunk is decompressed and used as an accumulator that
// new bytes are packed into until it reaches chunk_size, after which full
// new chunks are appended; only cfg's Codec, Level, Shuffle, Nthreads and
// (optionally) Metadata fields are consulted. chunk_size, offsets, typesize
// and the checksum scheme are fixed by the target file's header.
func AppendStream(target AppendTarget, source io.Reader, cfg CompressConfig) (Stats, error) {
	start := time.Now()
	rd, err := NewReader(target, DefaultDecompressOptions())
	if err != nil {
		return Stats{}, err
	}
	if !rd.header.Offsets {
		return Stats{}, errors.Annotate(bpk.ErrOffsetsDisabled).Reason("append requires an offsets table").Err()
	}
	if rd.header.MaxAppChunks <= 0 {
		return Stats{}, errors.Annotate(bpk.ErrAppendCapacityExceeded).Reason("max_app_chunks is 0").Err()
	}

	csum := rd.header.ChecksumID
	chunkSize := int64(rd.header.ChunkSize)
	oldNchunks := rd.header.Nchunks
	lastIdx := oldNchunks - 1
	lastOffset := rd.offsets[lastIdx]

	if _, err := target.Seek(lastOffset, io.SeekStart); err != nil {
		return Stats{}, err
	}
	oldFramed, err := bpk.ReadChunkRecord(target, csum, int(lastIdx))
	if err != nil {
		return Stats{}, errors.Annotate(err).Reason("reading final chunk before append").Err()
	}
	accumulator, err := bpk.DecompressBlock(oldFramed, cfg.Nthreads)
	if err != nil {
		return Stats{}, errors.Annotate(err).Reason("decompressing final chunk before append").Err()
	}

	writePos := lastOffset + bpk.RecordSize(oldFramed, csum)
	nchunks := oldNchunks
	lastChunkLen := int64(len(accumulator))

	var nbytesIn int64
	fill := make([]byte, chunkSize)
	for {
		room := chunkSize - int64(len(accumulator))
		if room <= 0 {
			break
		}
		n, readErr := io.ReadFull(source, fill[:room])
		if n > 0 {
			accumulator = append(accumulator, fill[:n]...)
			nbytesIn += int64(n)
		}
		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Stats{}, readErr
		}
	}

	if int64(len(accumulator)) > lastChunkLen {
		framed, err := bpk.CompressBlock(accumulator, cfg.Codec, cfg.Level, cfg.Shuffle, int(rd.header.Typesize), cfg.Nthreads)
		if err != nil {
			return Stats{}, err
		}
		if _, err := bpk.WriteChunkRecord(&sectionWriter{target, lastOffset}, framed, csum); err != nil {
			return Stats{}, err
		}
		writePos = lastOffset + bpk.RecordSize(framed, csum)
		lastChunkLen = int64(len(accumulator))
	}

	for lastChunkLen == chunkSize {
		n, readErr := io.ReadFull(source, fill)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			return Stats{}, readErr
		}
		if n == 0 {
			break
		}
		nbytesIn += int64(n)

		if nchunks+1 > oldNchunks+rd.header.MaxAppChunks {
			return Stats{}, errors.Annotate(bpk.ErrAppendCapacityExceeded).
				Reason("appending chunk %(n)d exceeds max_app_chunks %(m)d").
				D("n", nchunks+1-oldNchunks).D("m", rd.header.MaxAppChunks).Err()
		}

		framed, err := bpk.CompressBlock(fill[:n], cfg.Codec, cfg.Level, cfg.Shuffle, int(rd.header.Typesize), cfg.Nthreads)
		if err != nil {
			return Stats{}, err
		}
		rd.offsets.Set(int(nchunks), writePos)
		recSize, err := bpk.WriteChunkRecord(&sectionWriter{target, writePos}, framed, csum)
		if err != nil {
			return Stats{}, err
		}
		writePos += recSize
		lastChunkLen = int64(n)
		nchunks++

		if readErr == io.ErrUnexpectedEOF || readErr == io.EOF {
			break
		}
	}

	if err := bpk.PatchLastChunk(target, 0, uint32(lastChunkLen)); err != nil {
		return Stats{}, err
	}
	if err := bpk.PatchNchunks(target, 0, nchunks); err != nil {
		return Stats{}, err
	}
	if err := rd.offsets.PatchInPlace(target, rd.offsetsBase); err != nil {
		return Stats{}, err
	}

	if cfg.Metadata != nil {
		if rd.meta == nil {
			return Stats{}, errors.Reason("target has no metadata region to replace").Err()
		}
		mh, slot, err := bpk.RebuildMetaSlot(cfg.Metadata, rd.meta.Header.MetaCodecID, int(rd.meta.Header.MetaLevel),
			rd.meta.Header.MetaChecksumID, rd.meta.Header.MaxMetaSize)
		if err != nil {
			return Stats{}, err
		}
		if _, err := mh.WriteTo(&sectionWriter{target, bpk.HeaderSize}); err != nil {
			return Stats{}, err
		}
		if _, err := (&sectionWriter{target, int64(bpk.HeaderSize + bpk.MetaHeaderSize)}).Write(slot); err != nil {
			return Stats{}, err
		}
	}

	return Stats{
		Nchunks:      int(nchunks),
		ChunkSize:    int(chunkSize),
		LastChunk:    int(lastChunkLen),
		NbytesIn:     nbytesIn,
		NbytesOut:    writePos,
		MaxAppChunks: rd.header.MaxAppChunks,
		ElapsedNS:    time.Since(start).Nanoseconds(),
	}, nil
}

// sectionWriter adapts an io.WriterAt plus a fixed base offset into an
// io.Writer that advances sequentially, so bpk's WriteTo/WriteChunkRecord
// helpers (which take a plain io.Writer) can target an arbitrary file
// position without disturbing any other read/write cursor on target.
type sectionWriter struct {
	w    io.WriterAt
	base int64
}

func (s *sectionWriter) Write(p []byte) (int, error) {
	n, err := s.w.WriteAt(p, s.base)
	s.base += int64(n)
	return n, err
}
