// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"encoding/binary"
	"io"

	"github.com/luci/luci-go/common/errors"
)

// Offsets is the in-memory offsets table: one absolute byte offset per
// chunk, plus trailing -1 sentinels reserved for future appends.
type Offsets []int64

// NewOffsets allocates an offsets table sized for nchunks used entries and
// maxAppChunks reserved, unused entries, all sentinel-initialized to -1.
func NewOffsets(nchunks, maxAppChunks int64) Offsets {
	o := make(Offsets, nchunks+maxAppChunks)
	for i := range o {
		o[i] = UnknownNchunks
	}
	return o
}

// Set records the absolute file offset of chunk i.
func (o Offsets) Set(i int, offset int64) { o[i] = offset }

// Len is the number of bytes this table occupies on disk.
func (o Offsets) Len() int { return len(o) * 8 }

// WriteTo serializes the table as little-endian int64s.
func (o Offsets) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, o.Len())
	for i, v := range o {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(v))
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadOffsets parses an offsets table of nchunks+maxAppChunks entries from r.
func ReadOffsets(r io.Reader, nchunks, maxAppChunks int64) (Offsets, error) {
	n := nchunks + maxAppChunks
	buf := make([]byte, n*8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Annotate(ErrTruncatedFile).Reason("reading offsets table: %(e)s").D("e", err).Err()
	}
	return DecodeOffsets(buf, n)
}

// DecodeOffsets parses exactly n entries out of buf.
func DecodeOffsets(buf []byte, n int64) (Offsets, error) {
	if int64(len(buf)) < n*8 {
		return nil, errors.Annotate(ErrTruncatedFile).Reason("short offsets table: %(n)d bytes").D("n", len(buf)).Err()
	}
	o := make(Offsets, n)
	for i := range o {
		o[i] = int64(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return o, nil
}

// PatchInPlace overwrites the offsets region at baseOffset in w with the
// table's current contents. Used to replace the -1 placeholders with the
// real chunk offsets after all chunk records have been written, and to
// extend the used range during append.
func (o Offsets) PatchInPlace(w io.WriterAt, baseOffset int64) error {
	buf := make([]byte, o.Len())
	for i, v := range o {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(v))
	}
	_, err := w.WriteAt(buf, baseOffset)
	return err
}

// PatchOne overwrites only entry i of an on-disk offsets table, avoiding a
// full-table rewrite when only the newly appended entries changed.
func PatchOne(w io.WriterAt, baseOffset int64, i int, offset int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(offset))
	_, err := w.WriteAt(buf, baseOffset+int64(i)*8)
	return err
}

// Unused reports whether entry i is still the -1 "not yet written" sentinel.
func (o Offsets) Unused(i int) bool { return o[i] == UnknownNchunks }
