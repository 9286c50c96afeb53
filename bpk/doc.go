// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package bpk implements the low-level wire format of a bloscpack container:
// the fixed-size bloscpack header and metadata header, the offsets table,
// the checksum registry, the block-codec adapter, and per-chunk record
// framing. Higher-level streaming pipelines live in the parent bloscpack
// package.
package bpk
