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

func TestChunkRecord(t *testing.T) {
	t.Parallel()

	Convey("ChunkRecord", t, func() {
		payload := bytes.Repeat([]byte("chunk-data"), 64)
		framed, err := CompressBlock(payload, CodecLZ4, 5, false, 1, 1)
		So(err, ShouldBeNil)

		Convey("WriteChunkRecord/ReadChunkRecord round trip", func() {
			buf := &bytes.Buffer{}
			n, err := WriteChunkRecord(buf, framed, ChecksumSHA256)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(len(framed)+32))

			got, err := ReadChunkRecord(buf, ChecksumSHA256, 0)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, framed)
		})

		Convey("ReadChunkRecord detects a corrupted checksum", func() {
			buf := &bytes.Buffer{}
			_, err := WriteChunkRecord(buf, framed, ChecksumCRC32)
			So(err, ShouldBeNil)
			raw := buf.Bytes()
			raw[0] ^= 0xFF

			_, err = ReadChunkRecord(bytes.NewReader(raw), ChecksumCRC32, 3)
			mismatch, ok := err.(*ChunkChecksumMismatch)
			So(ok, ShouldBeTrue)
			So(mismatch.Index, ShouldEqual, 3)
		})

		Convey("ReadChunkRecord with ChecksumNone skips the digest", func() {
			buf := &bytes.Buffer{}
			n, err := WriteChunkRecord(buf, framed, ChecksumNone)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(len(framed)))

			got, err := ReadChunkRecord(buf, ChecksumNone, 0)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, framed)
		})

		Convey("ProbeChunkHeader reports codec and size without reading the body", func() {
			buf := &bytes.Buffer{}
			_, err := WriteChunkRecord(buf, framed, ChecksumMD5)
			So(err, ShouldBeNil)

			codec, recordSize, err := ProbeChunkHeader(bytes.NewReader(buf.Bytes()), ChecksumMD5)
			So(err, ShouldBeNil)
			So(codec, ShouldEqual, CodecLZ4)
			So(recordSize, ShouldEqual, int64(len(framed)+16))
		})

		Convey("ReadChunkRecord reports truncation", func() {
			buf := &bytes.Buffer{}
			_, err := WriteChunkRecord(buf, framed, ChecksumSHA1)
			So(err, ShouldBeNil)

			short := buf.Bytes()[:len(buf.Bytes())-5]
			_, err = ReadChunkRecord(bytes.NewReader(short), ChecksumSHA1, 0)
			So(err, ShouldErrLike, ErrTruncatedChunk)
		})
	})
}
