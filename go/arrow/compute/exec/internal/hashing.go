// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"math"

	"github.com/zeebo/xxh3"
)

// MemoTable assigns dense indices to distinct values in first-insertion
// order. A null takes its own index when inserted.
type MemoTable[T any] interface {
	Size() int
	Get(v T) (int32, bool)
	GetOrInsert(v T) (idx int32, found bool)
	GetNull() (int32, bool)
	GetOrInsertNull() (idx int32, found bool)
}

const noIndex int32 = -1

// HashMemoTable is a MemoTable for fixed-width keys.
type HashMemoTable[T comparable] struct {
	index     map[T]int32
	nullIndex int32
}

func NewHashMemoTable[T comparable](sizeHint int) *HashMemoTable[T] {
	return &HashMemoTable[T]{index: make(map[T]int32, sizeHint), nullIndex: noIndex}
}

func (h *HashMemoTable[T]) Size() int {
	sz := len(h.index)
	if h.nullIndex != noIndex {
		sz++
	}
	return sz
}

func (h *HashMemoTable[T]) Get(v T) (int32, bool) {
	idx, ok := h.index[v]
	return idx, ok
}

func (h *HashMemoTable[T]) GetOrInsert(v T) (int32, bool) {
	if idx, ok := h.index[v]; ok {
		return idx, true
	}
	idx := int32(h.Size())
	h.index[v] = idx
	return idx, false
}

func (h *HashMemoTable[T]) GetNull() (int32, bool) {
	return h.nullIndex, h.nullIndex != noIndex
}

func (h *HashMemoTable[T]) GetOrInsertNull() (int32, bool) {
	if h.nullIndex != noIndex {
		return h.nullIndex, true
	}
	h.nullIndex = int32(h.Size())
	return h.nullIndex, false
}

// NormalizeFloat64 maps a float to a hashable key under which every NaN
// is the same value and -0 equals +0.
func NormalizeFloat64(v float64) uint64 {
	switch {
	case math.IsNaN(v):
		return math.Float64bits(math.NaN())
	case v == 0:
		return 0
	}
	return math.Float64bits(v)
}

func NormalizeFloat32(v float32) uint32 {
	switch {
	case v != v:
		return math.Float32bits(float32(math.NaN()))
	case v == 0:
		return 0
	}
	return math.Float32bits(v)
}

type binaryEntry struct {
	hash uint64
	idx  int32
}

const (
	binaryLoadFactor = 2
	minBinaryCap     = 32
)

// BinaryMemoTable is a MemoTable for variable-width keys. Values are
// appended to a single byte slice and located through an
// open-addressing table keyed by their xxh3 hash.
type BinaryMemoTable struct {
	entries   []binaryEntry
	offsets   []int
	values    []byte
	nullIndex int32
}

func NewBinaryMemoTable(sizeHint int) *BinaryMemoTable {
	capacity := minBinaryCap
	for capacity < sizeHint*binaryLoadFactor {
		capacity <<= 1
	}
	t := &BinaryMemoTable{
		entries:   make([]binaryEntry, capacity),
		offsets:   make([]int, 1, sizeHint+1),
		nullIndex: noIndex,
	}
	for i := range t.entries {
		t.entries[i].idx = noIndex
	}
	return t
}

func (b *BinaryMemoTable) Size() int {
	sz := len(b.offsets) - 1
	if b.nullIndex != noIndex {
		sz++
	}
	return sz
}

// Value returns the bytes stored for a non-null index.
func (b *BinaryMemoTable) Value(idx int32) []byte {
	// the null slot has no bytes, skip over it
	pos := int(idx)
	if b.nullIndex != noIndex && idx > b.nullIndex {
		pos--
	}
	return b.values[b.offsets[pos]:b.offsets[pos+1]]
}

func (b *BinaryMemoTable) lookup(h uint64, v []byte) (int, bool) {
	mask := uint64(len(b.entries) - 1)
	for pos := h & mask; ; pos = (pos + 1) & mask {
		e := b.entries[pos]
		if e.idx == noIndex {
			return int(pos), false
		}
		if e.hash == h && string(b.Value(e.idx)) == string(v) {
			return int(pos), true
		}
	}
}

func (b *BinaryMemoTable) Get(v []byte) (int32, bool) {
	pos, ok := b.lookup(xxh3.Hash(v), v)
	if !ok {
		return noIndex, false
	}
	return b.entries[pos].idx, true
}

func (b *BinaryMemoTable) GetOrInsert(v []byte) (int32, bool) {
	h := xxh3.Hash(v)
	pos, ok := b.lookup(h, v)
	if ok {
		return b.entries[pos].idx, true
	}

	idx := int32(b.Size())
	b.values = append(b.values, v...)
	b.offsets = append(b.offsets, len(b.values))
	b.entries[pos] = binaryEntry{hash: h, idx: idx}
	if (len(b.offsets)-1)*binaryLoadFactor > len(b.entries) {
		b.grow()
	}
	return idx, false
}

func (b *BinaryMemoTable) grow() {
	old := b.entries
	b.entries = make([]binaryEntry, len(old)*2)
	for i := range b.entries {
		b.entries[i].idx = noIndex
	}
	mask := uint64(len(b.entries) - 1)
	for _, e := range old {
		if e.idx == noIndex {
			continue
		}
		pos := e.hash & mask
		for b.entries[pos].idx != noIndex {
			pos = (pos + 1) & mask
		}
		b.entries[pos] = e
	}
}

func (b *BinaryMemoTable) GetNull() (int32, bool) {
	return b.nullIndex, b.nullIndex != noIndex
}

func (b *BinaryMemoTable) GetOrInsertNull() (int32, bool) {
	if b.nullIndex != noIndex {
		return b.nullIndex, true
	}
	b.nullIndex = int32(b.Size())
	return b.nullIndex, false
}
