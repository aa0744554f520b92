// pool.go: buffer reuse for the rotating file writer's format path.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package bufferpool

import (
	"bytes"
	"sync"
)

// MaxBufferSize is the maximum buffer capacity before dropping. Buffers
// larger than this are discarded on Put rather than pooled, so one huge
// record doesn't pin a huge backing array on the pool forever.
const MaxBufferSize = 1 << 20 // 1 MiB

// DefaultCapacity is the initial capacity hint for new buffers, sized for a
// typical single log line.
const DefaultCapacity = 512

var pool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, DefaultCapacity))
	},
}

// Get returns a clean (Reset) *bytes.Buffer from the pool.
func Get() *bytes.Buffer {
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// Put returns b to the pool. If it has grown past MaxBufferSize its backing
// array is dropped instead of pooled.
func Put(b *bytes.Buffer) {
	if b == nil {
		return
	}
	if b.Cap() > MaxBufferSize {
		*b = *bytes.NewBuffer(make([]byte, 0, DefaultCapacity))
	}
	b.Reset()
	pool.Put(b)
}
