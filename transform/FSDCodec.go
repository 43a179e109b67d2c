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
	fsdMinBlockLength = 1024
	fsdHeaderSize     = 2
	fsdModeDelta      = byte(0)
	fsdModeXOR        = byte(1)
)

// fsdStrides are the candidate sample widths tried by Forward: 1-4 cover
// byte/16-bit/24-bit/32-bit PCM and pixel tuples, 8 covers wide frames.
var fsdStrides = []int{1, 2, 3, 4, 8}

// FSDCodec (Fixed Step Delta) decorrelates values separated by a constant
// stride - consecutive audio samples, pixel channels - by filtering each
// byte against the one `stride` positions behind it, either by delta or
// by XOR, whichever samples smaller on a quick scan.
//
// Unlike the teacher's version, the delta residual is not zigzag-mapped
// through a precomputed 256-entry table: it is computed from the wrapped
// byte difference via the standard zigzag bit trick, so every residual
// stays exactly one byte regardless of magnitude and MaxEncodedLen is
// exactly n+2, no escape token needed for large deltas.
type FSDCodec struct {
	ctx *core.Context
}

// NewFSDCodec creates an FSDCodec.
func NewFSDCodec() (*FSDCodec, error) {
	return &FSDCodec{}, nil
}

// NewFSDCodecWithCtx creates an FSDCodec configured from ctx.
func NewFSDCodecWithCtx(ctx *core.Context) (*FSDCodec, error) {
	return &FSDCodec{ctx: ctx}, nil
}

// fsdZigzagEncode maps a wrapped byte difference to a representation
// dense around zero: small positive and small negative differences (the
// common case for a good stride) land near 0, large ones near 255.
func fsdZigzagEncode(d byte) byte {
	x := int32(int8(d))
	z := (x << 1) ^ (x >> 31)
	return byte(z)
}

// fsdZigzagDecode is the inverse of fsdZigzagEncode.
func fsdZigzagDecode(z byte) byte {
	x := int32(z)
	d := (x >> 1) ^ -(x & 1)
	return byte(d)
}

// fsdSums returns the sum of absolute wrapped-delta magnitudes and the
// sum of XOR byte values for stride s, sampled over the whole block.
func fsdSums(in []byte, s int) (int64, int64) {
	var deltaSum, xorSum int64

	for i := s; i < len(in); i++ {
		d := int8(in[i] - in[i-s])

		if d < 0 {
			deltaSum -= int64(d)
		} else {
			deltaSum += int64(d)
		}

		xorSum += int64(in[i] ^ in[i-s])
	}

	return deltaSum, xorSum
}

// Forward applies the fixed-stride delta/XOR filter to n bytes of src
// and writes the result to dst.
func (f *FSDCodec) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if n < fsdMinBlockLength {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]

	var baseline int64

	for i := 1; i < n; i++ {
		d := int8(in[i] - in[i-1])

		if d < 0 {
			baseline -= int64(d)
		} else {
			baseline += int64(d)
		}
	}

	bestStride := 0
	bestMode := fsdModeDelta
	bestSum := int64(-1)

	for _, s := range fsdStrides {
		if s >= n {
			continue
		}

		deltaSum, xorSum := fsdSums(in, s)
		mode := fsdModeDelta
		sum := deltaSum

		if xorSum < deltaSum {
			mode = fsdModeXOR
			sum = xorSum
		}

		if bestSum < 0 || sum < bestSum {
			bestSum = sum
			bestStride = s
			bestMode = mode
		}
	}

	if bestStride == 0 {
		return false, nil
	}

	// Require a meaningful reduction over the unfiltered (stride-1
	// delta) baseline; otherwise the filter is not worth its header.
	if bestSum >= (baseline/10)*9 {
		return false, nil
	}

	if dst.Length-dst.Index < n+fsdHeaderSize {
		return false, nil
	}

	out := dst.Array[dst.Index : dst.Index+n+fsdHeaderSize]
	out[0] = bestMode
	out[1] = byte(bestStride)
	copy(out[fsdHeaderSize:fsdHeaderSize+bestStride], in[:bestStride])

	if bestMode == fsdModeDelta {
		for i := bestStride; i < n; i++ {
			out[fsdHeaderSize+i] = fsdZigzagEncode(in[i] - in[i-bestStride])
		}
	} else {
		for i := bestStride; i < n; i++ {
			out[fsdHeaderSize+i] = in[i] ^ in[i-bestStride]
		}
	}

	src.Index += n
	dst.Index += n + fsdHeaderSize
	return true, nil
}

// Inverse undoes the fixed-stride delta/XOR filter, reading n bytes of
// filtered data (header included) from src and writing the original
// bytes to dst.
func (f *FSDCodec) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if n < fsdHeaderSize {
		return false, core.ErrInvalidArgument
	}

	in := src.Array[src.Index : src.Index+n]
	mode := in[0]
	stride := int(in[1])
	body := in[fsdHeaderSize:]
	m := len(body)

	if stride < 1 || stride > m {
		return false, core.ErrInvalidArgument
	}

	if mode != fsdModeDelta && mode != fsdModeXOR {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < m {
		return false, nil
	}

	out := dst.Array[dst.Index : dst.Index+m]
	copy(out[:stride], body[:stride])

	if mode == fsdModeDelta {
		for i := stride; i < m; i++ {
			out[i] = out[i-stride] + fsdZigzagDecode(body[i])
		}
	} else {
		for i := stride; i < m; i++ {
			out[i] = out[i-stride] ^ body[i]
		}
	}

	src.Index += n
	dst.Index += m
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
func (f *FSDCodec) MaxEncodedLen(srcLen int) int {
	return srcLen + fsdHeaderSize
}
