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
	"sort"

	core "github.com/blocklayer/bwcore"
)

// BWTS is the bijective variant of the Burrows-Wheeler Transform: it
// carries no primary index, since the permutation of sorted rotations
// is itself invertible once the block is factored into Lyndon words
// first.
//
// Forward factors the block with Duval's algorithm (linear time), then
// - as a simplification in place of a suffix-array-based rotation
// order - explicitly materializes and sorts every rotation of every
// factor; this is the same "sort directly, skip the linear-time
// suffix array" tradeoff BWT.go makes, worse asymptotically but far
// simpler. Inverse needs no factorization at all: the standard
// bucket/next mapping partitions into disjoint cycles that are each
// walked independently, with no primary-index starting point needed.
type BWTS struct {
}

// NewBWTS creates a BWTS.
func NewBWTS() (*BWTS, error) {
	return &BWTS{}, nil
}

// NewBWTSWithCtx creates a BWTS. ctx is accepted for interface
// symmetry; BWTS needs no configuration.
func NewBWTSWithCtx(ctx *core.Context) (*BWTS, error) {
	return &BWTS{}, nil
}

// duvalFactorize returns the start offsets of data's Lyndon word
// factorization, in order, plus a trailing sentinel of len(data).
func duvalFactorize(data []byte) []int {
	n := len(data)
	i := 0
	starts := make([]int, 0, 8)

	for i < n {
		j, k := i+1, i

		for j < n && data[k] <= data[j] {
			if data[k] < data[j] {
				k = i
			} else {
				k++
			}

			j++
		}

		for i <= k {
			starts = append(starts, i)
			i += j - k
		}
	}

	starts = append(starts, n)
	return starts
}

// Forward writes the n-byte BWTS permutation of src into dst.
func (b *BWTS) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < n {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]
	starts := duvalFactorize(in)

	type rotation struct {
		bytes    []byte
		lastByte byte
	}

	rotations := make([]rotation, 0, n)

	for f := 0; f < len(starts)-1; f++ {
		start, end := starts[f], starts[f+1]
		length := end - start
		factor := in[start:end]

		for r := 0; r < length; r++ {
			row := make([]byte, 0, length)
			row = append(row, factor[r:]...)
			row = append(row, factor[:r]...)
			last := factor[length-1]

			if r > 0 {
				last = factor[r-1]
			}

			rotations = append(rotations, rotation{bytes: row, lastByte: last})
		}
	}

	// Rotations of different factors are ordered by their infinite
	// periodic extensions; comparing len(a)+len(b) bytes decides that.
	sort.Slice(rotations, func(x, y int) bool {
		a, b := rotations[x].bytes, rotations[y].bytes

		for k := 0; k < len(a)+len(b); k++ {
			if ca, cb := a[k%len(a)], b[k%len(b)]; ca != cb {
				return ca < cb
			}
		}

		return false
	})

	out := dst.Array[dst.Index : dst.Index+n]

	for i, r := range rotations {
		out[i] = r.lastByte
	}

	src.Index += n
	dst.Index += n
	return true, nil
}

// Inverse reconstructs the original block from its BWTS permutation.
// It bucket-sorts src to build the LF "next" mapping (exactly as
// BWT.Inverse does), then walks every disjoint cycle of that mapping;
// bijectivity guarantees the cycles partition the whole block with no
// primary index needed to pick a starting row.
func (b *BWTS) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < n {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]

	var buckets [256]int32

	for _, c := range in {
		buckets[c]++
	}

	sum := int32(0)

	for c := 0; c < 256; c++ {
		sum += buckets[c]
		buckets[c] = sum - buckets[c]
	}

	lf := make([]int32, n)

	for i, c := range in {
		lf[i] = buckets[c]
		buckets[c]++
	}

	out := dst.Array[dst.Index : dst.Index+n]

	for i, j := 0, n-1; j >= 0; i++ {
		if lf[i] < 0 {
			continue
		}

		p := int32(i)

		for {
			out[j] = in[p]
			j--
			t := lf[p]
			lf[p] = -1
			p = t

			if lf[p] < 0 {
				break
			}
		}
	}

	src.Index += n
	dst.Index += n
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
func (b *BWTS) MaxEncodedLen(srcLen int) int {
	return srcLen
}
