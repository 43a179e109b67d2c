/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package transform

import (
	"encoding/binary"
	"sort"

	core "github.com/blocklayer/bwcore"
)

const bwtHeaderSize = 4

// The Burrows-Wheeler Transform is a reversible permutation of a block
// that groups similar contexts together, which a downstream rank or
// entropy stage can then exploit.
//
// This implementation sorts the block's n cyclic rotations directly
// instead of building a suffix array via a linear-time construction
// (SA-IS/DivSufSort) the way a production BWT would; it makes O(n log n)
// rotation comparisons of up to n bytes each rather than O(n) work, a deliberate simplification appropriate
// for this codec's scope. The row index of the unrotated block in the
// sorted order (the primary index) is written as a 4-byte big-endian
// header in front of the transformed bytes; there is no multi-chunk
// indexing since the whole block is sorted as one unit.
type BWT struct {
}

// NewBWT creates a BWT.
func NewBWT() (*BWT, error) {
	return &BWT{}, nil
}

// NewBWTWithCtx creates a BWT. ctx is accepted for interface symmetry;
// this simplified BWT needs no configuration.
func NewBWTWithCtx(ctx *core.Context) (*BWT, error) {
	return &BWT{}, nil
}

// NewBWTBlockCodecWithCtx creates a BWT. Earlier, multi-chunk BWT
// implementations wrapped the raw transform in a separate block codec
// that packed a variable-size primary-index header; this simplified,
// single-chunk BWT folds that header directly into Forward/Inverse, so
// the two constructors are equivalent.
func NewBWTBlockCodecWithCtx(ctx *core.Context) (*BWT, error) {
	return NewBWTWithCtx(ctx)
}

func rotationLess(data []byte, a, b, n int) bool {
	for i := 0; i < n; i++ {
		ca := data[(a+i)%n]
		cb := data[(b+i)%n]

		if ca != cb {
			return ca < cb
		}
	}

	return false
}

// Forward writes a 4-byte primary-index header followed by the n-byte
// BWT permutation of src into dst.
func (b *BWT) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < n+bwtHeaderSize {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]
	sa := make([]int, n)

	for i := range sa {
		sa[i] = i
	}

	sort.Slice(sa, func(x, y int) bool {
		return rotationLess(in, sa[x], sa[y], n)
	})

	out := dst.Array[dst.Index:]
	primary := 0

	for i, s := range sa {
		if s == 0 {
			primary = i
		}

		pos := s - 1

		if pos < 0 {
			pos += n
		}

		out[bwtHeaderSize+i] = in[pos]
	}

	binary.BigEndian.PutUint32(out[0:4], uint32(primary))
	src.Index += n
	dst.Index += n + bwtHeaderSize
	return true, nil
}

// Inverse reconstructs the original block from its BWT permutation
// using the standard LF-mapping walk: the primary-index row gives the
// last byte of the original block, and each step to next[idx] yields
// the byte preceding it.
func (b *BWT) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if n < bwtHeaderSize {
		return false, core.ErrInvalidArgument
	}

	in := src.Array[src.Index : src.Index+n]
	primary := int(binary.BigEndian.Uint32(in[0:4]))
	body := in[bwtHeaderSize:n]
	m := len(body)

	if m == 0 {
		src.Index += n
		return true, nil
	}

	if primary < 0 || primary >= m {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < m {
		return false, nil
	}

	var counts [256]int

	for _, c := range body {
		counts[c]++
	}

	var base [256]int
	sum := 0

	for c := 0; c < 256; c++ {
		base[c] = sum
		sum += counts[c]
	}

	var running [256]int
	next := make([]int, m)

	for i, c := range body {
		next[i] = base[c] + running[c]
		running[c]++
	}

	out := dst.Array[dst.Index : dst.Index+m]
	idx := primary

	for k := m - 1; k >= 0; k-- {
		out[k] = body[idx]
		idx = next[idx]
	}

	src.Index += n
	dst.Index += m
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
func (b *BWT) MaxEncodedLen(srcLen int) int {
	return srcLen + bwtHeaderSize
}
