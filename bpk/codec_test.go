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

func TestCodec(t *testing.T) {
	t.Parallel()

	Convey("Codec", t, func() {
		Convey("CodecByName resolves registered names", func() {
			c, err := CodecByName("lz4hc")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, CodecLZ4HC)
		})

		Convey("CodecByName rejects unknown names", func() {
			_, err := CodecByName("zstd")
			So(err, ShouldErrLike, ErrUnknownCodec)
		})

		Convey("blosclz is not available", func() {
			_, err := CompressBlock(bytes.Repeat([]byte{1, 2, 3, 4}, 64), CodecBloscLZ, 5, true, 4, 1)
			So(err, ShouldErrLike, "blosclz is not available")
		})

		Convey("CompressBlock/DecompressBlock round trip", func() {
			payload := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 256)
			framed, err := CompressBlock(payload, CodecLZ4, 5, true, 8, 1)
			So(err, ShouldBeNil)

			codec, err := FrameCodec(framed)
			So(err, ShouldBeNil)
			So(codec, ShouldEqual, CodecLZ4)

			got, err := DecompressBlock(framed, 1)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, payload)
		})

		Convey("CompressBlock frames zero length input by hand", func() {
			framed, err := CompressBlock(nil, CodecLZ4, 5, false, 1, 1)
			So(err, ShouldBeNil)
			So(len(framed), ShouldEqual, 16)

			got, err := DecompressBlock(framed, 1)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []byte{})
		})

		Convey("CompressBlock rejects an invalid typesize", func() {
			_, err := CompressBlock([]byte("x"), CodecLZ4, 5, false, 0, 1)
			So(err, ShouldErrLike, ErrTypesizeInvalid)
		})

		Convey("CompressBlock rejects an invalid nthreads", func() {
			_, err := CompressBlock([]byte("x"), CodecLZ4, 5, false, 1, 0)
			So(err, ShouldErrLike, ErrNthreadsOutOfRange)
		})

		Convey("FramedSize matches the compressed record length", func() {
			payload := bytes.Repeat([]byte{9}, 100)
			framed, err := CompressBlock(payload, CodecZlib, 5, false, 1, 1)
			So(err, ShouldBeNil)

			n, err := FramedSize(framed)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, len(framed))
		})
	})
}
