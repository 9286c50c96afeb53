// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import (
	"bytes"
	"testing"

	. "github.com/luci/luci-go/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/FrancescAlted/bloscpack/bpk"
)

func TestReaderRandomAccess(t *testing.T) {
	t.Parallel()

	Convey("Reader", t, func() {
		payload := bytes.Repeat([]byte{10, 20, 30, 40}, 3000) // 12000 bytes, 3 chunks of 4000
		sink := &memFile{}
		cfg := NewCompressConfig(WithChunkSize(4000), WithCodec(bpk.CodecLZ4))
		_, err := CompressStream(bytes.NewReader(payload), sink, cfg)
		So(err, ShouldBeNil)

		rd, err := NewReader(&memFile{buf: sink.buf}, DefaultDecompressOptions())
		So(err, ShouldBeNil)

		Convey("Chunk returns each chunk's uncompressed bytes", func() {
			c0, err := rd.Chunk(0)
			So(err, ShouldBeNil)
			So(c0, ShouldResemble, payload[0:4000])

			c2, err := rd.Chunk(2)
			So(err, ShouldBeNil)
			So(c2, ShouldResemble, payload[8000:12000])
		})

		Convey("Chunk rejects an out of range index", func() {
			_, err := rd.Chunk(99)
			So(err, ShouldErrLike, "out of range")

			_, err = rd.Chunk(-1)
			So(err, ShouldErrLike, "out of range")
		})

		Convey("Header exposes the parsed fields", func() {
			h := rd.Header()
			So(h.Nchunks, ShouldEqual, 3)
			So(h.ChunkSize, ShouldEqual, 4000)
		})

		Convey("Metadata reports ok=false when none was written", func() {
			_, ok := rd.Metadata()
			So(ok, ShouldBeFalse)
		})

		Convey("WriteTo rejects a stale last_chunk even with valid per-chunk checksums", func() {
			raw := append([]byte(nil), sink.buf...)
			So(bpk.PatchLastChunk(&memFile{buf: raw}, 0, 3000), ShouldBeNil)

			stale, err := NewReader(&memFile{buf: raw}, DefaultDecompressOptions())
			So(err, ShouldBeNil)

			out := &bytes.Buffer{}
			_, err = stale.WriteTo(out)
			mismatch, ok := err.(*bpk.DecompressedSizeMismatch)
			So(ok, ShouldBeTrue)
			So(mismatch.Got, ShouldEqual, 12000)
			So(mismatch.Want, ShouldEqual, 11000)
		})
	})
}

func TestDecompressStreamBadMagic(t *testing.T) {
	t.Parallel()

	Convey("DecompressStream with a bad magic prefix", t, func() {
		bad := make([]byte, bpk.HeaderSize)
		source := &memFile{buf: bad}
		out := &bytes.Buffer{}
		_, _, err := DecompressStream(source, out, DefaultDecompressOptions())
		So(err, ShouldErrLike, bpk.ErrBadMagic)
		So(out.Bytes(), ShouldBeEmpty)
	})
}
