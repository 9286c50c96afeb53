// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/luci/luci-go/common/errors"
)

// DefaultMetaCodec, DefaultMetaLevel and DefaultMetaChecksum are the
// metadata region defaults.
const (
	DefaultMetaCodec    = CodecZlib
	DefaultMetaLevel    = 6
	DefaultMetaChecksum = ChecksumAdler32
)

// Metadata is a decoded metadata region: the header plus the raw JSON bytes.
type Metadata struct {
	Header MetaHeader
	JSON   []byte
}

// BuildMetaSlot compresses json, checksums the compressed blob, sizes the
// reserved slot, and lays out
// [compressed blob][checksum digest][zero padding] inside it. The returned
// slot is exactly MetaHeader.MaxMetaSize bytes and is written to the sink
// verbatim immediately after the metadata header.
func BuildMetaSlot(json []byte, codec Codec, level int, csum ChecksumScheme) (MetaHeader, []byte, error) {
	comp, err := compressMeta(json, codec, level)
	if err != nil {
		return MetaHeader{}, nil, err
	}
	digest := csum.Sum(comp)
	maxSize := slotSize(len(comp))
	if maxSize < len(comp)+len(digest) {
		maxSize = len(comp) + len(digest)
	}
	slot := make([]byte, maxSize)
	copy(slot, comp)
	copy(slot[len(comp):], digest)

	h := MetaHeader{
		MagicFormat:    MagicFormatJSON,
		MetaChecksumID: csum,
		MetaCodecID:    codec,
		MetaLevel:      byte(level),
		MetaSize:       uint32(len(json)),
		MetaCompSize:   uint32(len(comp)),
		MaxMetaSize:    uint32(maxSize),
	}
	return h, slot, nil
}

// RebuildMetaSlot re-lays out a new metadata blob within an existing
// max_meta_size reservation, for in-place replacement during append (spec
// §4.I step 6). It fails with ErrMetaTooLarge if the new blob plus digest
// does not fit.
func RebuildMetaSlot(json []byte, codec Codec, level int, csum ChecksumScheme, maxMetaSize uint32) (MetaHeader, []byte, error) {
	comp, err := compressMeta(json, codec, level)
	if err != nil {
		return MetaHeader{}, nil, err
	}
	digest := csum.Sum(comp)
	if uint32(len(comp)+len(digest)) > maxMetaSize {
		return MetaHeader{}, nil, errors.Annotate(ErrMetaTooLarge).
			Reason("compressed metadata + digest is %(n)d bytes, slot holds %(m)d").
			D("n", len(comp)+len(digest)).D("m", maxMetaSize).Err()
	}
	slot := make([]byte, maxMetaSize)
	copy(slot, comp)
	copy(slot[len(comp):], digest)

	h := MetaHeader{
		MagicFormat:    MagicFormatJSON,
		MetaChecksumID: csum,
		MetaCodecID:    codec,
		MetaLevel:      byte(level),
		MetaSize:       uint32(len(json)),
		MetaCompSize:   uint32(len(comp)),
		MaxMetaSize:    maxMetaSize,
	}
	return h, slot, nil
}

// slotSize reserves 10x the compressed size for future metadata growth.
func slotSize(metaCompSize int) int {
	return metaCompSize * 10
}

// ReadMetadataRegion parses the header, reads the full reserved slot,
// verifies the checksum over the compressed bytes, decompresses, and
// returns the raw JSON.
func ReadMetadataRegion(r io.Reader) (Metadata, error) {
	h, err := ReadMetaHeader(r)
	if err != nil {
		return Metadata{}, err
	}
	slot := make([]byte, h.MaxMetaSize)
	if _, err := io.ReadFull(r, slot); err != nil {
		return Metadata{}, errors.Annotate(ErrTruncatedFile).Reason("reading metadata blob: %(e)s").D("e", err).Err()
	}
	return ParseMetaSlot(h, slot)
}

// ParseMetaSlot verifies and decodes an already-read metadata slot.
func ParseMetaSlot(h MetaHeader, slot []byte) (Metadata, error) {
	if uint32(len(slot)) < h.MaxMetaSize {
		return Metadata{}, errors.Annotate(ErrTruncatedFile).Reason("short metadata slot: %(n)d bytes").D("n", len(slot)).Err()
	}
	comp := slot[:h.MetaCompSize]
	if h.MetaChecksumID != ChecksumNone {
		digestSize := h.MetaChecksumID.DigestSize()
		digest := slot[h.MetaCompSize : int(h.MetaCompSize)+digestSize]
		computed := h.MetaChecksumID.Sum(comp)
		if !bytes.Equal(computed, digest) {
			return Metadata{}, &MetaChecksumMismatch{Scheme: h.MetaChecksumID, Nominal: digest, Computed: computed}
		}
	}
	json, err := decompressMeta(comp, h.MetaCodecID, int(h.MetaSize))
	if err != nil {
		return Metadata{}, errors.Annotate(err).Reason("decompressing metadata").Err()
	}
	return Metadata{Header: h, JSON: json}, nil
}

func compressMeta(data []byte, codec Codec, level int) ([]byte, error) {
	switch codec {
	case CodecZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return CompressBlock(data, codec, level, false, 1, 1)
	}
}

func decompressMeta(comp []byte, codec Codec, origSize int) ([]byte, error) {
	switch codec {
	case CodecZlib:
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		buf := bytes.NewBuffer(make([]byte, 0, origSize))
		if _, err := io.Copy(buf, zr); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return DecompressBlock(comp, 1)
	}
}
