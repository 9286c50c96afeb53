// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"bytes"
	"testing"

	. "github.com/luci/luci-go/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHeader(t *testing.T) {
	t.Parallel()

	Convey("Header", t, func() {
		h := Header{
			FormatVersion: FormatVersion,
			Offsets:       true,
			Metadata:      false,
			ChecksumID:    ChecksumAdler32,
			Typesize:      8,
			ChunkSize:     1048576,
			LastChunk:     12345,
			Nchunks:       3,
			MaxAppChunks:  30,
		}

		Convey("round trips through WriteTo/ReadHeader", func() {
			buf := &bytes.Buffer{}
			n, err := h.WriteTo(buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, HeaderSize)
			So(buf.Len(), ShouldEqual, HeaderSize)
			So(buf.Bytes()[:4], ShouldResemble, []byte(Magic))

			got, err := ReadHeader(buf)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, h)
		})

		Convey("rejects bad magic", func() {
			buf := make([]byte, HeaderSize)
			copy(buf, "XXXX")
			_, err := DecodeHeader(buf)
			So(err, ShouldErrLike, ErrBadMagic)
		})

		Convey("rejects reserved option bits", func() {
			buf := &bytes.Buffer{}
			_, err := h.WriteTo(buf)
			So(err, ShouldBeNil)
			raw := buf.Bytes()
			raw[5] |= 0x80
			_, err = DecodeHeader(raw)
			So(err, ShouldErrLike, "reserved option bits")
		})

		Convey("rejects unsupported format version", func() {
			buf := &bytes.Buffer{}
			_, err := h.WriteTo(buf)
			So(err, ShouldBeNil)
			raw := buf.Bytes()
			raw[4] = FormatVersion + 1
			_, err = DecodeHeader(raw)
			So(err, ShouldErrLike, ErrUnsupportedVersion)
		})

		Convey("rejects max_app_chunks without offsets", func() {
			bad := h
			bad.Offsets = false
			So(bad.Validate(), ShouldErrLike, "max_app_chunks must be 0")
		})

		Convey("rejects last_chunk exceeding chunk_size", func() {
			bad := h
			bad.LastChunk = bad.ChunkSize + 1
			So(bad.Validate(), ShouldErrLike, "exceeds chunk_size")
		})

		Convey("PatchLastChunk and PatchNchunks overwrite in place", func() {
			buf := &bytes.Buffer{}
			_, err := h.WriteTo(buf)
			So(err, ShouldBeNil)
			raw := buf.Bytes()

			ws := &writerAtSlice{raw}
			So(PatchLastChunk(ws, 0, 99), ShouldBeNil)
			So(PatchNchunks(ws, 0, 7), ShouldBeNil)

			got, err := DecodeHeader(raw)
			So(err, ShouldBeNil)
			So(got.LastChunk, ShouldEqual, 99)
			So(got.Nchunks, ShouldEqual, 7)
		})
	})
}

// writerAtSlice adapts an in-memory byte slice to io.WriterAt for patch
// tests; the slice must already be long enough to hold every write.
type writerAtSlice struct {
	buf []byte
}

func (w *writerAtSlice) WriteAt(p []byte, off int64) (int, error) {
	n := copy(w.buf[off:], p)
	return n, nil
}
