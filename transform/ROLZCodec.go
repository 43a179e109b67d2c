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
	core "github.com/blocklayer/bwcore"
)

const (
	rolzMinMatch       = 4
	rolzMinBlockLength = 256
	rolzOrder          = 2
	rolzOrderExtra     = 3
	rolzRowSize        = 4
	rolzRowSizeExtra   = 8
	rolzMatchMarker    = byte(0xFE)
	rolzEscMarker      = byte(0xFF)
)

// ROLZCodec is a reduced-offset LZ: a match references one of a small
// number of recently seen positions sharing the current byte context,
// by the row slot it lives in, rather than an absolute or raw-relative
// distance.
//
// This drops the teacher's range-coder-integrated rolzCodec1/rolzCodec2
// pair (ANS- or CM-coded literals and match tokens, built on the
// bitstream/entropy packages) in favor of a plain byte-oriented wire
// format: a Transform here is a byte-to-byte filter with no entropy
// stage of its own, so there is nowhere for an integrated range coder
// to live. The context idea survives: an order-2 exact context for
// plain ROLZ, and a wider order-3 hashed context with more candidate
// rows for ROLZX ("extra"), echoing the teacher's split between
// logPosChecks1 and logPosChecks2.
type ROLZCodec struct {
	extra bool
}

// NewROLZCodec creates a ROLZCodec. extra selects the ROLZX variant:
// a wider order-3 context with more candidate rows per context, at
// the cost of a larger context table and slower match search.
func NewROLZCodec(extra bool) (*ROLZCodec, error) {
	return &ROLZCodec{extra: extra}, nil
}

// NewROLZCodecWithCtx creates a ROLZCodec. ctx is accepted for
// interface symmetry with the other codecs; this codec has nothing
// tunable to read from it.
func NewROLZCodecWithCtx(ctx *core.Context, extra bool) (*ROLZCodec, error) {
	return &ROLZCodec{extra: extra}, nil
}

func (c *ROLZCodec) params() (order, rowSize int) {
	if c.extra {
		return rolzOrderExtra, rolzRowSizeExtra
	}

	return rolzOrder, rolzRowSize
}

// rolzTable is a hashed-context -> MRU row of recent positions table,
// built identically by Forward and Inverse: each feeds it the same
// sequence of (key, position) pairs as it walks its own view of the
// data (the input for Forward, the so-far-decoded output for Inverse),
// so no table is ever carried in the wire format.
type rolzTable struct {
	order   int
	rowSize int
	rows    [][]int32
	heads   []int32
}

func newRolzTable(order, rowSize int) *rolzTable {
	return &rolzTable{
		order:   order,
		rowSize: rowSize,
		rows:    make([][]int32, 1<<16),
		heads:   make([]int32, 1<<16),
	}
}

// key computes the context of the `order` bytes preceding buf[i].
func (t *rolzTable) key(buf []byte, i int) int {
	if t.order == 2 {
		return int(buf[i-2])<<8 | int(buf[i-1])
	}

	h := uint32(2166136261)

	for k := i - t.order; k < i; k++ {
		h ^= uint32(buf[k])
		h *= 16777619
	}

	return int(h & 0xFFFF)
}

func (t *rolzTable) insert(key, pos int) {
	row := t.rows[key]

	if row == nil {
		row = make([]int32, t.rowSize)

		for i := range row {
			row[i] = -1
		}

		t.rows[key] = row
	}

	h := t.heads[key]
	row[h] = int32(pos)
	t.heads[key] = (h + 1) % int32(t.rowSize)
}

// findMatch returns the row slot and length of the longest match among
// the context's recorded candidate positions, or (-1, 0) if none
// reaches rolzMinMatch.
func (t *rolzTable) findMatch(buf []byte, pos, key int) (int, int) {
	row := t.rows[key]

	if row == nil {
		return -1, 0
	}

	maxMatch := len(buf) - pos
	bestSlot, bestLen := -1, 0

	for s, cand := range row {
		if cand < 0 || int(cand) >= pos {
			continue
		}

		l := rolzCommonLen(buf[cand:], buf[pos:], maxMatch)

		if l > bestLen {
			bestLen = l
			bestSlot = s
		}
	}

	if bestLen < rolzMinMatch {
		return -1, 0
	}

	return bestSlot, bestLen
}

func rolzCommonLen(a, b []byte, max int) int {
	n := 0

	for n < max && a[n] == b[n] {
		n++
	}

	return n
}

// Forward replaces reduced-offset matches found in n bytes of src with
// a marker, row slot, and length, writing the result to dst. Bytes
// that collide with a marker value are escaped.
func (c *ROLZCodec) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if n < rolzMinBlockLength {
		return false, nil
	}

	order, rowSize := c.params()
	in := src.Array[src.Index : src.Index+n]
	table := newRolzTable(order, rowSize)
	buf := make([]byte, 0, n)
	buf = append(buf, in[:order]...)
	i := order

	for i < n {
		key := table.key(in, i)
		slot, length := table.findMatch(in, i, key)

		if slot >= 0 {
			buf = append(buf, rolzMatchMarker, byte(slot))
			buf = emitVarLen(buf, length-rolzMinMatch)
			table.insert(key, i)
			i += length
			continue
		}

		b := in[i]

		if b == rolzMatchMarker || b == rolzEscMarker {
			buf = append(buf, rolzEscMarker, b)
		} else {
			buf = append(buf, b)
		}

		table.insert(key, i)
		i++
	}

	if len(buf) >= n {
		return false, nil
	}

	if dst.Length-dst.Index < len(buf) {
		return false, nil
	}

	copy(dst.Array[dst.Index:], buf)
	src.Index += n
	dst.Index += len(buf)
	return true, nil
}

// Inverse rebuilds the original bytes from n bytes of src produced by
// Forward, writing them to dst.
func (c *ROLZCodec) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	order, rowSize := c.params()

	if n < order {
		return false, core.ErrInvalidArgument
	}

	in := src.Array[src.Index : src.Index+n]
	table := newRolzTable(order, rowSize)
	out := make([]byte, 0, n*2+64)
	out = append(out, in[:order]...)
	srcIdx := order

	for srcIdx < n {
		b := in[srcIdx]

		if b == rolzMatchMarker {
			srcIdx++

			if srcIdx >= n {
				return false, core.ErrInvalidArgument
			}

			slot := int(in[srcIdx])
			srcIdx++
			length, next, ok := readVarLen(in, srcIdx)

			if !ok {
				return false, core.ErrInvalidArgument
			}

			srcIdx = next
			length += rolzMinMatch
			pos := len(out)
			key := table.key(out, pos)
			row := table.rows[key]

			if row == nil || slot < 0 || slot >= len(row) || row[slot] < 0 {
				return false, core.ErrInvalidArgument
			}

			cand := int(row[slot])

			for k := 0; k < length; k++ {
				out = append(out, out[cand+k])
			}

			table.insert(key, pos)
			continue
		}

		if b == rolzEscMarker {
			srcIdx++

			if srcIdx >= n {
				return false, core.ErrInvalidArgument
			}

			lit := in[srcIdx]
			srcIdx++
			pos := len(out)
			key := table.key(out, pos)
			out = append(out, lit)
			table.insert(key, pos)
			continue
		}

		pos := len(out)
		key := table.key(out, pos)
		out = append(out, b)
		table.insert(key, pos)
		srcIdx++
	}

	if dst.Length-dst.Index < len(out) {
		return false, nil
	}

	copy(dst.Array[dst.Index:], out)
	src.Index += n
	dst.Index += len(out)
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
func (c *ROLZCodec) MaxEncodedLen(srcLen int) int {
	return srcLen*2 + 16
}
