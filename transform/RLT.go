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

// Escaped run-length transform.
// Run length encoding:
// RUN_LEN_ENCODE1 = 224 => RUN_LEN_ENCODE2 = (255-224)<<8 = 7936
// 4    <= runLen < 224+3       -> 1 byte
// 227  <= runLen < 7936+3      -> 2 bytes
// 7939 <= runLen < 65536+7939  -> 3 bytes

import (
	core "github.com/blocklayer/bwcore"
	internal "github.com/blocklayer/bwcore/internal"
)

const (
	rltRunLenEncode1  = 224
	rltRunLenEncode2  = (255 - rltRunLenEncode1) << 8
	rltRunThreshold   = 3
	rltMaxRun         = 0xFFFF + rltRunLenEncode2 + rltRunThreshold - 1
	rltMaxRun4        = rltMaxRun - 4
	rltMinBlockLength = 16
	rltDefaultEscape  = 0xFB
)

// RLT is a run length transform with an escape symbol chosen per block
// (least frequent byte), falling back to a fixed default when the caller
// signals a fast entropy stage follows.
type RLT struct {
	ctx *core.Context
}

// NewRLT creates an RLT with no context (always searches for the best
// escape byte).
func NewRLT() (*RLT, error) {
	return &RLT{}, nil
}

// NewRLTWithCtx creates an RLT that consults ctx for a cached data type
// and entropy-stage hint.
func NewRLTWithCtx(ctx *core.Context) (*RLT, error) {
	return &RLT{ctx: ctx}, nil
}

// Forward run-length-encodes n bytes from src into dst.
func (t *RLT) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if n < rltMinBlockLength {
		return false, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if req := t.MaxEncodedLen(n); dst.Length-dst.Index < req {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]
	findBestEscape := true
	dt := internal.DT_UNDEFINED

	if t.ctx != nil {
		if v := t.ctx.GetInt("dataType", -1); v != -1 {
			dt = internal.DataType(v)

			if dt == internal.DT_DNA || dt == internal.DT_BASE64 || dt == internal.DT_UTF8 {
				return false, nil
			}
		}

		switch t.ctx.GetString("entropy", "") {
		case "NONE", "ANS0", "HUFFMAN", "RANGE":
			findBestEscape = false
		}
	}

	escape := byte(rltDefaultEscape)

	if findBestEscape {
		var freqs [256]int
		internal.ComputeHistogram(in, freqs[:], true, false)

		if dt == internal.DT_UNDEFINED {
			dt = internal.DetectSimpleType(len(in), freqs[:])

			if t.ctx != nil && dt != internal.DT_UNDEFINED {
				t.ctx.PutInt("dataType", int(dt))
			}

			if dt == internal.DT_DNA || dt == internal.DT_BASE64 || dt == internal.DT_UTF8 {
				return false, nil
			}
		}

		minIdx := 0

		if freqs[minIdx] > 0 {
			for i, f := range &freqs {
				if f < freqs[minIdx] {
					minIdx = i

					if f == 0 {
						break
					}
				}
			}
		}

		escape = byte(minIdx)
	}

	out := dst.Array[dst.Index:]
	srcIdx := 0
	dstIdx := 0
	srcEnd := len(in)
	srcEnd4 := srcEnd - 4
	dstEnd := len(out)
	run := 0

	prev := in[srcIdx]
	srcIdx++
	out[dstIdx] = escape
	dstIdx++
	out[dstIdx] = prev
	dstIdx++

	if prev == escape {
		out[dstIdx] = 0
		dstIdx++
	}

	ok := true

	for ok {
		if srcIdx < srcEnd && prev == in[srcIdx] {
			srcIdx++
			run++

			if srcIdx < srcEnd && prev == in[srcIdx] {
				srcIdx++
				run++

				if srcIdx < srcEnd && prev == in[srcIdx] {
					srcIdx++
					run++

					if srcIdx < srcEnd && prev == in[srcIdx] {
						srcIdx++
						run++

						if run < rltMaxRun4 && srcIdx < srcEnd4 {
							continue
						}
					}
				}
			}
		}

		if run > rltRunThreshold {
			if dstIdx+6 >= dstEnd {
				return false, nil
			}

			out[dstIdx] = prev
			dstIdx++

			if prev == escape {
				out[dstIdx] = 0
				dstIdx++
			}

			out[dstIdx] = escape
			dstIdx++
			dstIdx += emitRunLength(out[dstIdx:dstEnd], run)
		} else if prev != escape {
			if dstIdx+run >= dstEnd {
				return false, nil
			}

			for run > 0 {
				out[dstIdx] = prev
				dstIdx++
				run--
			}
		} else {
			if dstIdx+2*run >= dstEnd {
				return false, nil
			}

			for run > 0 {
				out[dstIdx] = escape
				out[dstIdx+1] = 0
				dstIdx += 2
				run--
			}
		}

		if srcIdx >= srcEnd {
			break
		}

		prev = in[srcIdx]
		srcIdx++
		run = 1

		if srcIdx >= srcEnd4 {
			break
		}
	}

	// run == 1 for the pending byte, plus the tail below
	if prev != escape {
		if dstIdx+run < dstEnd {
			for run > 0 {
				out[dstIdx] = prev
				dstIdx++
				run--
			}
		}
	} else {
		if dstIdx+2*run < dstEnd {
			for run > 0 {
				out[dstIdx] = escape
				out[dstIdx+1] = 0
				dstIdx += 2
				run--
			}
		}
	}

	for srcIdx < srcEnd && dstIdx < dstEnd {
		if in[srcIdx] == escape {
			if dstIdx+2 >= dstEnd {
				break
			}

			out[dstIdx] = escape
			out[dstIdx+1] = 0
			dstIdx += 2
			srcIdx++
			continue
		}

		out[dstIdx] = in[srcIdx]
		srcIdx++
		dstIdx++
	}

	if srcIdx != srcEnd || dstIdx >= srcIdx {
		return false, nil
	}

	src.Index += srcIdx
	dst.Index += dstIdx
	return true, nil
}

func emitRunLength(dst []byte, run int) int {
	run -= rltRunThreshold

	if run < rltRunLenEncode1 {
		dst[0] = byte(run)
		return 1
	}

	var dstIdx int

	if run < rltRunLenEncode2 {
		run -= rltRunLenEncode1
		dst[0] = byte(rltRunLenEncode1 + (run >> 8))
		dstIdx = 1
	} else {
		run -= rltRunLenEncode2
		dst[0] = 0xFF
		dst[1] = byte(run >> 8)
		dstIdx = 2
	}

	dst[dstIdx] = byte(run)
	return dstIdx + 1
}

// Inverse decodes n run-length-encoded bytes from src into dst.
func (t *RLT) Inverse(src, dst *core.Span, n int) (bool, error) {
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
	srcIdx := 0
	dstIdx := 0
	srcEnd := len(in)
	dstEnd := len(out)
	escape := in[srcIdx]
	srcIdx++

	if srcIdx < srcEnd && in[srcIdx] == escape {
		srcIdx++

		if srcIdx < srcEnd && in[srcIdx] != 0 {
			return false, nil
		}

		srcIdx++
		out[dstIdx] = escape
		dstIdx++
	}

	for srcIdx < srcEnd {
		if in[srcIdx] != escape {
			if dstIdx >= dstEnd {
				return false, nil
			}

			out[dstIdx] = in[srcIdx]
			srcIdx++
			dstIdx++
			continue
		}

		srcIdx++

		if srcIdx >= srcEnd {
			return false, nil
		}

		run := int(in[srcIdx])
		srcIdx++

		if run == 0 {
			if dstIdx >= dstEnd {
				return false, nil
			}

			out[dstIdx] = escape
			dstIdx++
			continue
		}

		if run == 0xFF {
			if srcIdx+1 >= srcEnd {
				return false, nil
			}

			run = (int(in[srcIdx]) << 8) | int(in[srcIdx+1])
			srcIdx += 2
			run += rltRunLenEncode2
		} else if run >= rltRunLenEncode1 {
			if srcIdx >= srcEnd {
				return false, nil
			}

			run = ((run - rltRunLenEncode1) << 8) | int(in[srcIdx])
			run += rltRunLenEncode1
			srcIdx++
		}

		run += rltRunThreshold - 1

		if run > rltMaxRun || dstIdx+run >= dstEnd || dstIdx == 0 {
			return false, nil
		}

		val := out[dstIdx-1]
		d := out[dstIdx : dstIdx+run]

		for i := range d {
			d[i] = val
		}

		dstIdx += run
	}

	if srcIdx != srcEnd {
		return false, nil
	}

	src.Index += srcIdx
	dst.Index += dstIdx
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
func (t *RLT) MaxEncodedLen(srcLen int) int {
	if srcLen <= 512 {
		return srcLen + 32
	}

	return srcLen
}
