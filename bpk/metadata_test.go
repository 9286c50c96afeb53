// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"bytes"
	"math/rand"
	"testing"

	. "github.com/luci/luci-go/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetadata(t *testing.T) {
	t.Parallel()

	Convey("Metadata", t, func() {
		json := []byte(`{"dtype": "float64", "shape": [1024, 1024]}`)

		Convey("BuildMetaSlot/ReadMetadataRegion round trip", func() {
			h, slot, err := BuildMetaSlot(json, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum)
			So(err, ShouldBeNil)
			So(len(slot), ShouldEqual, h.MaxMetaSize)
			So(h.MetaSize, ShouldEqual, uint32(len(json)))

			buf := &bytes.Buffer{}
			_, err = h.WriteTo(buf)
			So(err, ShouldBeNil)
			_, err = buf.Write(slot)
			So(err, ShouldBeNil)

			got, err := ReadMetadataRegion(buf)
			So(err, ShouldBeNil)
			So(got.JSON, ShouldResemble, json)
		})

		Convey("slack reservation is 10x the compressed size", func() {
			h, _, err := BuildMetaSlot(json, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum)
			So(err, ShouldBeNil)
			So(h.MaxMetaSize, ShouldEqual, h.MetaCompSize*10)
		})

		Convey("ParseMetaSlot detects checksum corruption", func() {
			h, slot, err := BuildMetaSlot(json, DefaultMetaCodec, DefaultMetaLevel, ChecksumSHA256)
			So(err, ShouldBeNil)
			slot[0] ^= 0xFF

			_, err = ParseMetaSlot(h, slot)
			_, ok := err.(*MetaChecksumMismatch)
			So(ok, ShouldBeTrue)
		})

		Convey("RebuildMetaSlot replaces metadata within the same reservation", func() {
			h, _, err := BuildMetaSlot(json, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum)
			So(err, ShouldBeNil)

			bigger := append(append([]byte{}, json...), bytes.Repeat([]byte("x"), 10)...)
			h2, slot2, err := RebuildMetaSlot(bigger, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum, h.MaxMetaSize)
			So(err, ShouldBeNil)
			So(h2.MaxMetaSize, ShouldEqual, h.MaxMetaSize)
			So(len(slot2), ShouldEqual, h.MaxMetaSize)

			got, err := ParseMetaSlot(h2, slot2)
			So(err, ShouldBeNil)
			So(got.JSON, ShouldResemble, bigger)
		})

		Convey("RebuildMetaSlot fails when the new blob no longer fits", func() {
			h, _, err := BuildMetaSlot(json, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum)
			So(err, ShouldBeNil)

			huge := make([]byte, 20000)
			rand.New(rand.NewSource(1)).Read(huge) // incompressible, won't shrink under zlib
			_, _, err = RebuildMetaSlot(huge, DefaultMetaCodec, DefaultMetaLevel, DefaultMetaChecksum, h.MaxMetaSize)
			So(err, ShouldErrLike, ErrMetaTooLarge)
		})
	})
}
