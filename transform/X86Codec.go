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
	x86InstructionMask = 0xFE
	x86JumpOpcode      = 0xE8
	x86AddrMask        = byte(0xD5)
	x86Escape          = byte(0xF5)
	x86MaskLength      = 8
)

// X86Codec normalizes relative CALL/JMP (rel32) instructions (opcodes
// 0xE8, 0xE9) found in x86 machine code by rewriting their signed
// displacement as an absolute code position and XOR-masking it, which
// turns what would otherwise be scattered small integers into a more
// repetitive byte stream for a downstream entropy coder. A byte equal
// to the escape value 0xF5 flags a raw payload byte that would
// otherwise collide with the encoded form.
type X86Codec struct {
}

// NewX86Codec creates an X86Codec.
func NewX86Codec() (*X86Codec, error) {
	return &X86Codec{}, nil
}

// NewX86CodecWithCtx creates an X86Codec. ctx is accepted for interface
// symmetry; X86Codec needs no configuration.
func NewX86CodecWithCtx(ctx *core.Context) (*X86Codec, error) {
	return &X86Codec{}, nil
}

func isX86JumpOpcode(b byte) bool {
	return b&x86InstructionMask == x86JumpOpcode
}

// Forward rewrites n bytes of candidate x86 machine code from src into
// dst, or returns false if the block does not look binary enough.
func (c *X86Codec) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if n < 16 {
		return false, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if dst.Length-dst.Index < c.MaxEncodedLen(n) {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]

	count := 0
	end := n - 8

	for i := 0; i < end; i++ {
		if !isX86JumpOpcode(in[i]) {
			continue
		}

		hi := in[i+4]

		if hi == 0x00 || hi == 0xFF {
			count++
		}
	}

	if count < n/128 {
		return false, nil
	}

	out := dst.Array[dst.Index:]
	srcIdx, dstIdx := 0, 0
	srcEnd := n - x86MaskLength

	for srcIdx < srcEnd {
		b := in[srcIdx]
		out[dstIdx] = b
		srcIdx++
		dstIdx++

		if !isX86JumpOpcode(b) {
			continue
		}

		next := in[srcIdx]

		if next == 0x00 || next == 0x01 || next == 0x02 || next == x86Escape {
			out[dstIdx] = x86Escape
			dstIdx++
			out[dstIdx] = next
			dstIdx++
			srcIdx++
			continue
		}

		hi := in[srcIdx+3]

		if hi != 0x00 && hi != 0xFF {
			continue
		}

		displacement := int32(in[srcIdx]) | int32(in[srcIdx+1])<<8 |
			int32(in[srcIdx+2])<<16 | int32(int8(in[srcIdx+3]))<<24
		absolute := displacement + int32(srcIdx)
		sgn := byte(0)

		if absolute < 0 {
			sgn = 1
		}

		out[dstIdx] = sgn + 1
		out[dstIdx+1] = x86AddrMask ^ byte(absolute>>16)
		out[dstIdx+2] = x86AddrMask ^ byte(absolute>>8)
		out[dstIdx+3] = x86AddrMask ^ byte(absolute)
		dstIdx += 4
		srcIdx += 4
	}

	for srcIdx < n {
		out[dstIdx] = in[srcIdx]
		srcIdx++
		dstIdx++
	}

	// The codec repacks in place; it does not aim to shrink the block,
	// only to make it more repetitive for a downstream entropy coder.
	// Tolerate a little expansion from escaped bytes, same margin as
	// the teacher's own forward check.
	if dstIdx > n+n/50 {
		return false, nil
	}

	src.Index += n
	dst.Index += dstIdx
	return true, nil
}

// Inverse reconstructs n encoded bytes from src into dst.
func (c *X86Codec) Inverse(src, dst *core.Span, n int) (bool, error) {
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

	// Decoding never grows the data: an escape pair becomes one byte and
	// an encoded address stays four bytes.
	if dst.Length-dst.Index < n {
		return false, nil
	}

	out := dst.Array[dst.Index:]
	srcIdx, dstIdx := 0, 0
	srcEnd := n - x86MaskLength

	for srcIdx < srcEnd {
		b := in[srcIdx]
		out[dstIdx] = b
		srcIdx++
		dstIdx++

		if !isX86JumpOpcode(b) {
			continue
		}

		if srcIdx >= n {
			return false, nil
		}

		if in[srcIdx] == x86Escape {
			srcIdx++

			if srcIdx >= n {
				return false, nil
			}

			out[dstIdx] = in[srcIdx]
			srcIdx++
			dstIdx++
			continue
		}

		if srcIdx+3 >= n {
			return false, nil
		}

		sgn := in[srcIdx]

		// Forward escapes 0x00-0x02 and 0xF5 after an opcode, so any other
		// byte here starts a displacement that Forward left unconverted.
		if sgn != 1 && sgn != 2 {
			continue
		}

		hi := x86AddrMask ^ in[srcIdx+1]
		mid := x86AddrMask ^ in[srcIdx+2]
		lo := x86AddrMask ^ in[srcIdx+3]
		absolute := int32(lo) | int32(mid)<<8 | int32(hi)<<16

		if sgn == 2 {
			absolute |= -1 << 24
		}

		displacement := absolute - int32(dstIdx)
		out[dstIdx] = byte(displacement)
		out[dstIdx+1] = byte(displacement >> 8)
		out[dstIdx+2] = byte(displacement >> 16)
		out[dstIdx+3] = byte(displacement >> 24)
		dstIdx += 4
		srcIdx += 4
	}

	for srcIdx < n {
		out[dstIdx] = in[srcIdx]
		srcIdx++
		dstIdx++
	}

	src.Index += n
	dst.Index += dstIdx
	return true, nil
}

// MaxEncodedLen returns the max size required for the encoding output.
// The codec never expands by more than one escape byte per candidate
// jump site; srcLen+srcLen/2 is a generous, truthful bound.
func (c *X86Codec) MaxEncodedLen(srcLen int) int {
	return srcLen + srcLen/2 + 16
}
