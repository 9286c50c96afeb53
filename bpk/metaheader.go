// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/luci/luci-go/common/errors"
)

// MagicFormatJSON is the built-in magic_format value for JSON metadata.
const MagicFormatJSON = "JSON"

// MetaHeader is the fixed 32 byte metadata_header.
type MetaHeader struct {
	MagicFormat    string // 8 bytes, ASCII, NUL padded
	MetaChecksumID ChecksumScheme
	MetaCodecID    Codec
	MetaLevel      byte
	MetaSize       uint32
	MetaCompSize   uint32
	MaxMetaSize    uint32
	UserCodec      string // 8 bytes, ASCII, NUL padded
}

// Validate checks that meta_comp_size <= max_meta_size.
func (h MetaHeader) Validate() error {
	if h.MetaCompSize > h.MaxMetaSize {
		return errors.Annotate(ErrMalformedHeader).
			Reason("meta_comp_size (%(c)d) exceeds max_meta_size (%(m)d)").
			D("c", h.MetaCompSize).D("m", h.MaxMetaSize).Err()
	}
	return nil
}

func packASCII8(s string) []byte {
	buf := make([]byte, 8)
	copy(buf, s)
	return buf
}

func unpackASCII8(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00")
}

// WriteTo serializes the metadata header to exactly MetaHeaderSize bytes.
func (h MetaHeader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, MetaHeaderSize)
	copy(buf[0:8], packASCII8(h.MagicFormat))
	// byte 8 (meta_options) is reserved, always zero.
	buf[9] = byte(h.MetaChecksumID)
	buf[10] = byte(h.MetaCodecID)
	buf[11] = h.MetaLevel
	binary.LittleEndian.PutUint32(buf[12:16], h.MetaSize)
	binary.LittleEndian.PutUint32(buf[16:20], h.MetaCompSize)
	binary.LittleEndian.PutUint32(buf[20:24], h.MaxMetaSize)
	copy(buf[24:32], packASCII8(h.UserCodec))
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadMetaHeader parses the 32 byte metadata header from r.
func ReadMetaHeader(r io.Reader) (MetaHeader, error) {
	buf := make([]byte, MetaHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return MetaHeader{}, errors.Annotate(ErrTruncatedFile).Reason("reading metadata header: %(e)s").D("e", err).Err()
	}
	return DecodeMetaHeader(buf)
}

// DecodeMetaHeader parses a 32 byte buffer into a MetaHeader.
func DecodeMetaHeader(buf []byte) (MetaHeader, error) {
	if len(buf) < MetaHeaderSize {
		return MetaHeader{}, errors.Annotate(ErrTruncatedFile).Reason("short metadata header: %(n)d bytes").D("n", len(buf)).Err()
	}
	h := MetaHeader{
		MagicFormat:    unpackASCII8(buf[0:8]),
		MetaChecksumID: ChecksumScheme(buf[9]),
		MetaCodecID:    Codec(buf[10]),
		MetaLevel:      buf[11],
		MetaSize:       binary.LittleEndian.Uint32(buf[12:16]),
		MetaCompSize:   binary.LittleEndian.Uint32(buf[16:20]),
		MaxMetaSize:    binary.LittleEndian.Uint32(buf[20:24]),
		UserCodec:      unpackASCII8(buf[24:32]),
	}
	if err := h.MetaChecksumID.Valid(); err != nil {
		return MetaHeader{}, errors.Annotate(ErrMalformedHeader).Reason("meta_checksum_id: %(e)s").D("e", err).Err()
	}
	if err := h.Validate(); err != nil {
		return MetaHeader{}, err
	}
	return h, nil
}
