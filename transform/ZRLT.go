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
	internal "github.com/blocklayer/bwcore/internal"
)

// ZRLT is the zero run length transform: a Wheeler-style variant of RLE
// that only special-cases runs of zero bytes, well suited to following a
// BWT/rank stage. A zero run is encoded as its length plus one, written
// bit by bit (most significant bit implied), one bit per byte; any other value v is
// encoded as v+1, except v >= 0xFE which is encoded as 0xFF, v-0xFE.
type ZRLT struct {
}

// NewZRLT creates a ZRLT.
func NewZRLT() (*ZRLT, error) {
	return &ZRLT{}, nil
}

// NewZRLTWithCtx creates a ZRLT. ctx is accepted for interface symmetry
// with the other rank/run transforms; ZRLT needs no configuration.
func NewZRLTWithCtx(ctx *core.Context) (*ZRLT, error) {
	return &ZRLT{}, nil
}

// Forward encodes n bytes from src into dst.
func (t *ZRLT) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if req := t.MaxEncodedLen(n); dst.Length-dst.Index < req {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]
	out := dst.Array[dst.Index:]
	srcEnd := uint(n)
	dstEnd := uint(n)
	srcIdx, dstIdx := uint(0), uint(0)
	ok := true

	for srcIdx < srcEnd {
		if in[srcIdx] == 0 {
			runStart := srcIdx
			srcIdx++

			for srcIdx+1 < srcEnd && in[srcIdx]|in[srcIdx+1] == 0 {
				srcIdx += 2
			}

			for srcIdx < srcEnd && in[srcIdx] == 0 {
				srcIdx++
			}

			runLength := srcIdx - runStart + 1
			log2 := internal.Log2NoCheck(uint32(runLength))

			if dstIdx >= dstEnd-uint(log2) {
				ok = false
				break
			}

			for log2 > 0 {
				log2--
				out[dstIdx] = byte((runLength >> log2) & 1)
				dstIdx++
			}

			continue
		}

		if in[srcIdx] >= 0xFE {
			if dstIdx >= dstEnd-1 {
				ok = false
				break
			}

			out[dstIdx] = 0xFF
			dstIdx++
			out[dstIdx] = in[srcIdx] - 0xFE
		} else {
			if dstIdx >= dstEnd {
				ok = false
				break
			}

			out[dstIdx] = in[srcIdx] + 1
		}

		srcIdx++
		dstIdx++
	}

	if srcIdx != srcEnd || !ok {
		return false, nil
	}

	src.Index += int(srcIdx)
	dst.Index += int(dstIdx)
	return true, nil
}

// Inverse decodes n zero-run-length-encoded bytes from src into dst.
func (t *ZRLT) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	in := src.Array[src.Index : src.Index+n]
	out := dst.Array[dst.Index:]
	srcEnd, dstEnd := uint(n), uint(len(out))
	srcIdx, dstIdx := uint(0), uint(0)
	runLength := uint(0)

	for srcIdx < srcEnd {
		if in[srcIdx] <= 1 {
			runLength = 1

			for in[srcIdx] <= 1 {
				runLength = runLength + runLength + uint(in[srcIdx])
				srcIdx++

				if srcIdx >= srcEnd {
					goto end
				}
			}

			runLength--

			if runLength > dstEnd-dstIdx {
				return false, nil
			}

			for runLength > 0 {
				runLength--
				out[dstIdx] = 0
				dstIdx++
			}

			runLength = 0
		}

		if in[srcIdx] == 0xFF {
			srcIdx++

			if srcIdx >= srcEnd {
				break
			}

			out[dstIdx] = 0xFE + in[srcIdx]
		} else {
			out[dstIdx] = in[srcIdx] - 1
		}

		srcIdx++
		dstIdx++

		if srcIdx >= srcEnd || dstIdx >= dstEnd {
			break
		}
	}

end:
	if runLength > 0 {
		runLength--

		if runLength > dstEnd-dstIdx {
			return false, nil
		}

		for runLength > 0 {
			runLength--
			out[dstIdx] = 0
			dstIdx++
		}
	}

	if srcIdx < srcEnd {
		return false, nil
	}

	src.Index += int(srcIdx)
	dst.Index += int(dstIdx)
	return true, nil
}

// MaxEncodedLen returns srcLen: ZRLT never expands its output.
func (t *ZRLT) MaxEncodedLen(srcLen int) int {
	return srcLen
}
