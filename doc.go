// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bloscpack implements a container format for storing large binary
// payloads as a sequence of independently compressed, checksummed chunks,
// with random-access offsets, optional user metadata, and the ability to
// append further chunks in place.
//
// The on-disk layout is:
//
//	[bloscpack_header : 32 B]
//	[metadata_header  : 32 B]   (only if metadata present)
//	[metadata_blob    : max_meta_size B]   (only if metadata present)
//	[offsets          : 8*(nchunks + max_app_chunks) B]   (only if offsets enabled)
//	[chunk_0 record]
//	[chunk_1 record]
//	...
//	[chunk_{nchunks-1} record]
//	[unused append space up to max_app_chunks additional records]
//
// Each chunk record is the block codec's own self-describing framed output
// followed by a trailing checksum digest. The wire-level codecs for the
// header, metadata region, offsets table, checksum registry and chunk
// framing live in the bpk subpackage; this package provides the streaming
// pipelines (CompressStream, DecompressStream, AppendStream, Inspect) built on
// top of them.
package bloscpack
