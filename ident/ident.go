/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ident allocates entity identifiers.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
)

// Allocator hands out 64-bit entity ids. Implementations must be safe for concurrent use.
type Allocator interface {
	NextID() int64
}

// Crypto draws ids uniformly from the full signed 64-bit range using a cryptographic source.
// It may return zero or a negative value; callers that reserve zero must retry.
type Crypto struct {
	// Source defaults to crypto/rand.Reader.
	Source io.Reader
}

// NextID reads 8 bytes and interprets them little-endian. It panics if the entropy source
// fails, since no id can be produced safely.
func (c Crypto) NextID() int64 {
	src := c.Source
	if src == nil {
		src = rand.Reader
	}
	var buf [8]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		panic(fmt.Sprintf("ident: entropy source failed: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

var defaultAllocator Allocator = Crypto{}

// NextID returns an id from the default crypto allocator.
func NextID() int64 {
	return defaultAllocator.NextID()
}

// Sequence is a deterministic allocator for tests. It returns start, start+1, and so on.
type Sequence struct {
	next atomic.Int64
}

func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

func (s *Sequence) NextID() int64 {
	return s.next.Add(1) - 1
}

// Fixed always returns the same values in order, then repeats the last one. Useful for
// forcing collisions or zero draws in tests.
type Fixed struct {
	ids []int64
	pos atomic.Int64
}

// NewFixed panics unless at least one id is non-zero; a sequence of zeros would keep a
// store drawing forever.
func NewFixed(ids ...int64) *Fixed {
	if !slices.ContainsFunc(ids, func(id int64) bool { return id != 0 }) {
		panic("ident: fixed sequence needs a non-zero id")
	}
	return &Fixed{ids: slices.Clone(ids)}
}

func (f *Fixed) NextID() int64 {
	i := f.pos.Add(1) - 1
	if i >= int64(len(f.ids)) {
		i = int64(len(f.ids)) - 1
	}
	return f.ids[i]
}
