// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"testing"

	. "github.com/luci/luci-go/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCheckMagic(t *testing.T) {
	t.Parallel()

	Convey("checkMagic", t, func() {
		Convey("good", func() {
			So(checkMagic([]byte("blpk")), ShouldBeNil)
		})

		Convey("bad prefix", func() {
			err := checkMagic([]byte("PK\x03\x04"))
			So(err, ShouldErrLike, `bad magic: "PK\x03\x04"`)
		})

		Convey("short", func() {
			err := checkMagic([]byte("bl"))
			So(err, ShouldErrLike, "bad magic")
		})
	})
}
