// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bpk

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/adler32"
	"hash/crc32"

	"github.com/luci/luci-go/common/errors"
)

// ChecksumScheme identifies one of the checksum registry entries. The
// numeric value is the wire checksum_id and the assigned order below is
// part of the wire format, never renumber these.
type ChecksumScheme byte

// Registry entries, in a fixed order.
const (
	ChecksumNone ChecksumScheme = iota
	ChecksumAdler32
	ChecksumCRC32
	ChecksumMD5
	ChecksumSHA1
	ChecksumSHA224
	ChecksumSHA256
	ChecksumSHA384
	ChecksumSHA512

	numChecksumSchemes
)

var checksumNames = [numChecksumSchemes]string{
	ChecksumNone:    "none",
	ChecksumAdler32: "adler32",
	ChecksumCRC32:   "crc32",
	ChecksumMD5:     "md5",
	ChecksumSHA1:    "sha1",
	ChecksumSHA224:  "sha224",
	ChecksumSHA256:  "sha256",
	ChecksumSHA384:  "sha384",
	ChecksumSHA512:  "sha512",
}

// ChecksumByName resolves one of the registry names above. It returns
// ErrUnknownChecksum if name is not registered.
func ChecksumByName(name string) (ChecksumScheme, error) {
	for i, n := range checksumNames {
		if n == name {
			return ChecksumScheme(i), nil
		}
	}
	return 0, errors.Annotate(ErrUnknownChecksum).Reason("%(name)q").D("name", name).Err()
}

// String returns the registry name, e.g. "sha256".
func (c ChecksumScheme) String() string {
	if int(c) < len(checksumNames) {
		return checksumNames[c]
	}
	return "unknown"
}

// Valid returns nil iff c is a registered scheme.
func (c ChecksumScheme) Valid() error {
	if c < numChecksumSchemes {
		return nil
	}
	return errors.Annotate(ErrUnknownChecksum).Reason("id 0x%(id)x").D("id", byte(c)).Err()
}

// nullHash gives ChecksumNone a valid hash.Hash of size 0, mirroring the
// sardata package's null-checksum handling.
type nullHash struct{}

var _ hash.Hash = nullHash{}

func (nullHash) Reset()                    {}
func (nullHash) BlockSize() int            { return 1 }
func (nullHash) Size() int                 { return 0 }
func (nullHash) Sum(buf []byte) []byte     { return buf }
func (nullHash) Write(p []byte) (int, error) { return len(p), nil }

// hash32 adapts hash.Hash32 to hash.Hash with a fixed 4 byte digest.
type hash32 struct{ hash.Hash32 }

// New returns a fresh hash.Hash for this scheme. Panics if c is not Valid.
func (c ChecksumScheme) New() hash.Hash {
	switch c {
	case ChecksumNone:
		return nullHash{}
	case ChecksumAdler32:
		return hash32{adler32.New()}
	case ChecksumCRC32:
		return hash32{crc32.NewIEEE()}
	case ChecksumMD5:
		return md5.New()
	case ChecksumSHA1:
		return sha1.New()
	case ChecksumSHA224:
		return sha256.New224()
	case ChecksumSHA256:
		return sha256.New()
	case ChecksumSHA384:
		return sha512.New384()
	case ChecksumSHA512:
		return sha512.New()
	}
	panic(c.Valid())
}

// DigestSize returns the number of trailing bytes this scheme appends to a
// chunk record (0 for ChecksumNone).
func (c ChecksumScheme) DigestSize() int {
	return c.New().Size()
}

// Sum computes the digest of buf under this scheme.
func (c ChecksumScheme) Sum(buf []byte) []byte {
	h := c.New()
	h.Write(buf)
	return h.Sum(nil)
}

// Verify reports whether digest is the correct checksum of buf under this
// scheme.
func (c ChecksumScheme) Verify(buf, digest []byte) bool {
	return bytes.Equal(c.Sum(buf), digest)
}
