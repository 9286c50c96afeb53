// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package bloscpack

import "io"

// memFile is an in-memory Sink and AppendTarget, letting the pipeline tests
// drive a full compress/decompress/append cycle without a real file on disk.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) grow(n int64) {
	if n > int64(len(m.buf)) {
		next := make([]byte, n)
		copy(next, m.buf)
		m.buf = next
	}
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	m.grow(end)
	n := copy(m.buf[m.pos:end], p)
	m.pos = end
	return n, nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	m.grow(end)
	n := copy(m.buf[off:end], p)
	return n, nil
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	}
	m.pos = base + offset
	return m.pos, nil
}
