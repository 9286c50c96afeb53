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

func TestOffsets(t *testing.T) {
	t.Parallel()

	Convey("Offsets", t, func() {
		Convey("NewOffsets fills sentinels", func() {
			o := NewOffsets(3, 5)
			So(len(o), ShouldEqual, 8)
			for _, v := range o {
				So(v, ShouldEqual, UnknownNchunks)
			}
			So(o.Unused(0), ShouldBeTrue)
		})

		Convey("Set records an offset", func() {
			o := NewOffsets(2, 0)
			o.Set(0, 32)
			o.Set(1, 128)
			So(o.Unused(0), ShouldBeFalse)
			So(o[0], ShouldEqual, 32)
			So(o[1], ShouldEqual, 128)
		})

		Convey("round trips through WriteTo/ReadOffsets", func() {
			o := NewOffsets(2, 3)
			o.Set(0, 64)
			o.Set(1, 1024)

			buf := &bytes.Buffer{}
			n, err := o.WriteTo(buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(o.Len()))
			So(buf.Len(), ShouldEqual, 40) // 5 entries * 8 bytes

			got, err := ReadOffsets(buf, 2, 3)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, o)
		})

		Convey("ReadOffsets rejects truncated tables", func() {
			_, err := ReadOffsets(bytes.NewReader([]byte{1, 2, 3}), 2, 0)
			So(err, ShouldErrLike, ErrTruncatedFile)
		})

		Convey("PatchInPlace overwrites an existing region", func() {
			o := NewOffsets(2, 0)
			raw := make([]byte, o.Len())
			ws := &writerAtSlice{raw}
			So(o.PatchInPlace(ws, 0), ShouldBeNil)

			o.Set(0, 999)
			So(o.PatchInPlace(ws, 0), ShouldBeNil)

			got, err := DecodeOffsets(raw, 2)
			So(err, ShouldBeNil)
			So(got[0], ShouldEqual, 999)
		})

		Convey("PatchOne overwrites a single entry", func() {
			o := NewOffsets(3, 0)
			raw := make([]byte, o.Len())
			ws := &writerAtSlice{raw}
			So(o.PatchInPlace(ws, 0), ShouldBeNil)

			So(PatchOne(ws, 0, 1, 4096), ShouldBeNil)

			got, err := DecodeOffsets(raw, 3)
			So(err, ShouldBeNil)
			So(got[0], ShouldEqual, UnknownNchunks)
			So(got[1], ShouldEqual, 4096)
			So(got[2], ShouldEqual, UnknownNchunks)
		})
	})
}
