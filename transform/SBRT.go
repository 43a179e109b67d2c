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

// Sort By Rank Transform is a family of transforms typically used after
// a BWT to reduce the variance of the data prior to entropy coding.
// SBR(alpha) is defined by sbr(x, alpha) = (1-alpha)*(t-w1(x,t)) +
// alpha*(t-w2(x,t)) where x is an item in the data list, t is the
// current access time, and wk(x,t) is the k-th most recent access time
// to x at time t (0 <= alpha <= 1).
// SBR(0) = Move To Front, SBR(1/2) = Rank, SBR(1) = Time Stamp.

const (
	// SBRTModeMTF selects the move-to-front variant.
	SBRTModeMTF = 1
	// SBRTModeRank selects the rank variant.
	SBRTModeRank = 2
	// SBRTModeTimestamp selects the time-stamp variant.
	SBRTModeTimestamp = 3
)

// SBRT is the sort-by-rank transform, parameterized by one of the three
// modes above.
type SBRT struct {
	mode  int
	mask1 int
	mask2 int
	shift uint
}

func newSBRT(mode int) (*SBRT, error) {
	if mode != SBRTModeMTF && mode != SBRTModeRank && mode != SBRTModeTimestamp {
		return nil, core.ErrInvalidArgument
	}

	t := &SBRT{mode: mode}

	if mode == SBRTModeTimestamp {
		t.mask1 = 0
	} else {
		t.mask1 = -1
	}

	if mode == SBRTModeMTF {
		t.mask2 = 0
	} else {
		t.mask2 = -1
	}

	if mode == SBRTModeRank {
		t.shift = 1
	} else {
		t.shift = 0
	}

	return t, nil
}

// NewSBRT creates an SBRT for the given mode.
func NewSBRT(mode int) (*SBRT, error) {
	return newSBRT(mode)
}

// NewSBRTWithCtx creates an SBRT, reading the mode from ctx's "sbrt" key
// (defaulting to move-to-front).
func NewSBRTWithCtx(ctx *core.Context) (*SBRT, error) {
	mode := SBRTModeMTF

	if ctx != nil {
		mode = ctx.GetInt("sbrt", SBRTModeMTF)
	}

	return newSBRT(mode)
}

// Forward encodes n bytes from src into dst.
func (t *SBRT) Forward(src, dst *core.Span, n int) (bool, error) {
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
	out := dst.Array[dst.Index : dst.Index+n]
	var s2r, r2s [256]uint8

	for i := range s2r {
		s2r[i] = uint8(i)
		r2s[i] = uint8(i)
	}

	m1, m2, sh := t.mask1, t.mask2, t.shift
	var p, q [256]int

	for i := 0; i < n; i++ {
		c := in[i]
		r := s2r[c]
		out[i] = r
		qc := ((i & m1) + (p[c] & m2)) >> sh
		p[c] = i
		q[c] = qc

		for r > 0 && q[r2s[r-1]] <= qc {
			prev := r2s[r-1]
			r2s[r], s2r[prev] = prev, r
			r--
		}

		r2s[r] = c
		s2r[c] = r
	}

	src.Index += n
	dst.Index += n
	return true, nil
}

// Inverse decodes n bytes from src into dst.
func (t *SBRT) Inverse(src, dst *core.Span, n int) (bool, error) {
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
	out := dst.Array[dst.Index : dst.Index+n]
	var r2s [256]uint8

	for i := range r2s {
		r2s[i] = uint8(i)
	}

	m1, m2, sh := t.mask1, t.mask2, t.shift
	var p, q [256]int

	for i := 0; i < n; i++ {
		r := in[i]
		c := r2s[r]
		out[i] = c
		qc := ((i & m1) + (p[c] & m2)) >> sh
		p[c] = i
		q[c] = qc

		for r > 0 && q[r2s[r-1]] <= qc {
			r2s[r] = r2s[r-1]
			r--
		}

		r2s[r] = c
	}

	src.Index += n
	dst.Index += n
	return true, nil
}

// MaxEncodedLen returns srcLen: SBRT never expands its output.
func (t *SBRT) MaxEncodedLen(srcLen int) int {
	return srcLen
}
