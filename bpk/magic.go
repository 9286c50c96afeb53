// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import "github.com/luci/luci-go/common/errors"

// Magic is the 4 byte marker which appears at offset 0 of every bloscpack
// container.
const Magic = "blpk"

// FormatVersion is the only bloscpack_header.format_version this package
// knows how to read and write.
const FormatVersion byte = 3

// HeaderSize is the fixed size in bytes of the bloscpack header.
const HeaderSize = 32

// MetaHeaderSize is the fixed size in bytes of the metadata header.
const MetaHeaderSize = 32

// checkMagic returns BadMagic if buf does not start with Magic.
func checkMagic(buf []byte) error {
	if len(buf) < 4 || string(buf[:4]) != Magic {
		got := buf
		if len(got) > 4 {
			got = got[:4]
		}
		return errors.Reason("bpk: bad magic: %(got)q").D("got", string(got)).Err()
	}
	return nil
}
