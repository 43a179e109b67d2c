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

	core "github.com/blocklayer/bwcore"
	internal "github.com/blocklayer/bwcore/internal"
)

const (
	lzHashSeed     = 0x1E35A7BD
	lzHashLog      = 16
	lzHashSize     = 1 << lzHashLog
	lzMinMatch     = 5
	lzMinMatchDNA  = 9
	lzMaxDistShort = (1 << 17) - 2
	lzMaxDistLong  = (1 << 24) - 2
	lzPrologueSize = 13
	lzFlagLongWin  = 1
	lzFlagDNA      = 2
	lzTailLiteral  = 16

	lzpMinMatch     = 96
	lzpMinBlock     = 128
	lzpMatchFlag    = 0xFC
	lzpEscape       = 0xFF
	lzpContByte     = 0xFE
	lzpContUnit     = 254
	lzpHashLog      = 16
	lzpHashSize     = 1 << lzpHashLog
	lzpCtxLen       = 4
)

// LZCodec implements the LZ/LZX/LZP family: hash-table LZ77 match
// finders sharing one block framing and token format (LZ, LZX) plus a
// single-order context-predictor variant (LZP).
//
// The 13-byte block prologue written by LZ/LZX carries, little-endian:
// bytes [0..3] the length of the literal region, [4..7] the length of
// the token region, [8..11] the length of the match-descriptor region,
// byte [12] flags (bit0 long-window, bit1 DNA). The match-length and
// literal-length overflow varints live in whatever remains between the
// descriptor region and the end of the block, so no fourth length
// needs to be stored. Layout:
// [prologue(13) || literals || tokens || descriptors || overflow].
//
// Each token byte packs (litLenField<<5)|(longFlag<<4)|matchLenField:
// a 3-bit literal-length field (7 means "read an extension varint from
// the overflow stream"), a 1-bit long-distance flag, and a 4-bit
// match-length field (15 means the same kind of extension). Each
// token's descriptor is a 2-byte big-endian distance field, plus one
// more high byte when the long-window variant sets the long flag.
// Field value 0 means "repeat the most recent match distance", 1 means
// "repeat the one before that", anything else is the real distance
// plus one.
type LZCodec struct {
	variant uint64
	dna     bool
}

// NewLZCodec creates an LZCodec for the given packed variant (LZType,
// LZXType, or LZPType).
func NewLZCodec(variant uint64) (*LZCodec, error) {
	if variant != LZType && variant != LZXType && variant != LZPType {
		return nil, core.ErrInvalidArgument
	}

	return &LZCodec{variant: variant}, nil
}

// NewLZCodecWithCtx creates an LZCodec, reading the DNA data-type hint
// from ctx (which extends the minimum match length).
func NewLZCodecWithCtx(ctx *core.Context, variant uint64) (*LZCodec, error) {
	c, err := NewLZCodec(variant)

	if err != nil {
		return nil, err
	}

	if ctx != nil {
		c.dna = internal.DataType(ctx.GetInt("dataType", int(internal.DT_UNDEFINED))) == internal.DT_DNA
	}

	return c, nil
}

func lzHash(v uint64) uint32 {
	return uint32((v * lzHashSeed) >> (64 - lzHashLog))
}

func lzRead64(b []byte) uint64 {
	if len(b) >= 8 {
		return binary.LittleEndian.Uint64(b)
	}

	var tmp [8]byte
	copy(tmp[:], b)
	return binary.LittleEndian.Uint64(tmp[:])
}

func lzMatchLen(a, b []byte, max int) int {
	n := 0

	for n+8 <= max && lzRead64(a[n:]) == lzRead64(b[n:]) {
		n += 8
	}

	for n < max && a[n] == b[n] {
		n++
	}

	return n
}

// lzCopyMatch copies a match of the given length from (already written)
// out[dstPos-distance:] to out[dstPos:], byte-by-byte for short
// distances and in 16-byte strides (tolerating overlap) otherwise.
func lzCopyMatch(out []byte, dstPos, distance, length int) {
	srcPos := dstPos - distance

	if distance < 16 {
		for i := 0; i < length; i++ {
			out[dstPos+i] = out[srcPos+i]
		}

		return
	}

	i := 0

	for i+16 <= length {
		copy(out[dstPos+i:dstPos+i+16], out[srcPos+i:srcPos+i+16])
		i += 16
	}

	for ; i < length; i++ {
		out[dstPos+i] = out[srcPos+i]
	}
}

// Forward dispatches to the LZP or LZ/LZX encoder.
func (c *LZCodec) Forward(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if c.variant == LZPType {
		return c.forwardLZP(src, dst, n)
	}

	return c.forwardLZX(src, dst, n)
}

// Inverse dispatches to the LZP or LZ/LZX decoder.
func (c *LZCodec) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if c.variant == LZPType {
		return c.inverseLZP(src, dst, n)
	}

	return c.inverseLZX(src, dst, n)
}

// MaxEncodedLen returns the max size required for the encoding output.
func (c *LZCodec) MaxEncodedLen(srcLen int) int {
	return srcLen + srcLen/4 + lzPrologueSize + 64
}

// emitVarLen appends v using the 1/3/4-byte extended-length varint:
// v<254 is one byte; v in [254,65789] is 254 followed by 2 big-endian
// bytes of (v-254); anything larger is 255 followed by 3 big-endian
// bytes of (v-255).
func emitVarLen(buf []byte, v int) []byte {
	if v < 254 {
		return append(buf, byte(v))
	}

	if v-254 <= 0xFFFF {
		d := v - 254
		return append(buf, 254, byte(d>>8), byte(d))
	}

	d := v - 255
	return append(buf, 255, byte(d>>16), byte(d>>8), byte(d))
}

func readVarLen(buf []byte, idx int) (int, int, bool) {
	if idx >= len(buf) {
		return 0, idx, false
	}

	l := int(buf[idx])
	idx++

	if l < 254 {
		return l, idx, true
	}

	if l == 254 {
		if idx+2 > len(buf) {
			return 0, idx, false
		}

		v := 254 + (int(buf[idx])<<8 | int(buf[idx+1]))
		return v, idx + 2, true
	}

	if idx+3 > len(buf) {
		return 0, idx, false
	}

	v := 255 + (int(buf[idx])<<16 | int(buf[idx+1])<<8 | int(buf[idx+2]))
	return v, idx + 3, true
}

// lzMatchEvent records one accepted match during encoding.
type lzMatchEvent struct {
	litStart int
	litLen   int
	distance int
	length   int
	isRepeat bool
}

// forwardLZX encodes n bytes of src using the shared LZ/LZX block
// framing described in the LZCodec doc comment.
func (c *LZCodec) forwardLZX(src, dst *core.Span, n int) (bool, error) {
	longWindow := c.variant == LZXType
	maxDist := lzMaxDistShort

	if longWindow {
		maxDist = lzMaxDistLong
	}

	minMatch := lzMinMatch

	if c.dna {
		minMatch = lzMinMatchDNA
	}

	if n < 32 {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]

	var hashTable [lzHashSize]int32

	for i := range hashTable {
		hashTable[i] = -1
	}

	events := make([]lzMatchEvent, 0, n/8+4)
	litRunStart := 0
	d0, d1 := 0, 0
	end := n - lzTailLiteral
	i := 0

	for i < end {
		h := lzHash(lzRead64(in[i:]))
		cand := int(hashTable[h])
		hashTable[h] = int32(i)

		bestLen, bestDist, isRepeat := 0, 0, false

		if d0 > 0 && i >= d0 {
			ml := lzMatchLen(in[i:], in[i-d0:], n-i)

			if ml >= minMatch {
				bestLen, bestDist, isRepeat = ml, d0, true
			}
		}

		if !isRepeat && d1 > 0 && i >= d1 {
			ml := lzMatchLen(in[i:], in[i-d1:], n-i)

			if ml > bestLen && ml >= minMatch {
				bestLen, bestDist, isRepeat = ml, d1, true
			}
		}

		if bestLen == 0 && cand >= 0 && i > cand && i-cand <= maxDist {
			ml := lzMatchLen(in[i:], in[cand:], n-i)

			if ml >= minMatch {
				bestLen, bestDist = ml, i-cand
			}
		}

		if bestLen < minMatch || (bestLen == minMatch && bestDist >= 65536 && !isRepeat) {
			i++
			continue
		}

		events = append(events, lzMatchEvent{
			litStart: litRunStart,
			litLen:   i - litRunStart,
			distance: bestDist,
			length:   bestLen,
			isRepeat: isRepeat,
		})

		if isRepeat {
			if bestDist == d1 {
				d0, d1 = d1, d0
			}
		} else {
			d1 = d0
			d0 = bestDist
		}

		matchEnd := i + bestLen

		for p := i; p < matchEnd && p < end; p++ {
			hashTable[lzHash(lzRead64(in[p:]))] = int32(p)
		}

		i = matchEnd
		litRunStart = i
	}

	trailingLitLen := n - litRunStart
	required := c.MaxEncodedLen(n)

	if dst.Length-dst.Index < required {
		return false, nil
	}

	litBuf := make([]byte, 0, n)
	tokens := make([]byte, 0, len(events)+1)
	descriptors := make([]byte, 0, len(events)*3)
	overflow := make([]byte, 0, 32)
	e0, e1 := 0, 0

	for _, ev := range events {
		litBuf = append(litBuf, in[ev.litStart:ev.litStart+ev.litLen]...)

		litField := ev.litLen

		if litField > 7 {
			litField = 7
		}

		matchField := ev.length

		if matchField > 15 {
			matchField = 15
		}

		var distField int

		switch {
		case ev.isRepeat && ev.distance == e0:
			distField = 0
		case ev.isRepeat && ev.distance == e1:
			distField = 1
			e0, e1 = e1, e0
		default:
			distField = ev.distance + 1
			e1 = e0
			e0 = ev.distance
		}

		longFlag := byte(0)

		if longWindow {
			if distField > 0xFFFF {
				longFlag = 1
			}
		} else if distField > 0xFFFF {
			longFlag = 1
			distField -= 65536
		}

		tokens = append(tokens, byte(litField<<5)|(longFlag<<4)|byte(matchField))

		if litField == 7 {
			overflow = emitVarLen(overflow, ev.litLen-7)
		}

		if matchField == 15 {
			overflow = emitVarLen(overflow, ev.length-15)
		}

		descriptors = append(descriptors, byte(distField>>8), byte(distField))

		if longWindow && longFlag == 1 {
			descriptors = append(descriptors, byte(distField>>16))
		}
	}

	litBuf = append(litBuf, in[n-trailingLitLen:n]...)

	total := lzPrologueSize + len(litBuf) + len(tokens) + len(descriptors) + len(overflow)

	if total >= n {
		return false, nil
	}

	out := dst.Array[dst.Index:]
	off := lzPrologueSize
	copy(out[off:], litBuf)
	off += len(litBuf)
	copy(out[off:], tokens)
	off += len(tokens)
	copy(out[off:], descriptors)
	off += len(descriptors)
	copy(out[off:], overflow)
	off += len(overflow)

	binary.LittleEndian.PutUint32(out[0:4], uint32(len(litBuf)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(tokens)))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(descriptors)))
	flags := byte(0)

	if longWindow {
		flags |= lzFlagLongWin
	}

	if c.dna {
		flags |= lzFlagDNA
	}

	out[12] = flags

	src.Index += n
	dst.Index += off
	return true, nil
}

// inverseLZX reconstructs n original bytes from an LZ/LZX-encoded
// block at src.
func (c *LZCodec) inverseLZX(src, dst *core.Span, n int) (bool, error) {
	if n < lzPrologueSize {
		return false, core.ErrInvalidArgument
	}

	in := src.Array[src.Index : src.Index+n]
	litLen := int(binary.LittleEndian.Uint32(in[0:4]))
	tokLen := int(binary.LittleEndian.Uint32(in[4:8]))
	descLen := int(binary.LittleEndian.Uint32(in[8:12]))
	flags := in[12]
	longWindow := flags&lzFlagLongWin != 0

	litOff := lzPrologueSize
	tokOff := litOff + litLen
	descOff := tokOff + tokLen
	ovOff := descOff + descLen

	if litOff < 0 || tokOff > n || descOff > n || ovOff > n {
		return false, core.ErrInvalidArgument
	}

	litBuf := in[litOff:tokOff]
	tokens := in[tokOff:descOff]
	descriptors := in[descOff:ovOff]
	overflow := in[ovOff:n]

	if dst.Length-dst.Index < litLen {
		return false, nil
	}

	out := dst.Array[dst.Index:]
	litPos, descPos, ovPos, outPos := 0, 0, 0, 0
	d0, d1 := 0, 0

	for tokPos := 0; tokPos < len(tokens); tokPos++ {
		tok := tokens[tokPos]
		litField := int(tok >> 5)
		longFlag := (tok >> 4) & 1
		matchField := int(tok & 0x0F)

		curLitLen := litField

		if litField == 7 {
			v, next, ok := readVarLen(overflow, ovPos)

			if !ok {
				return false, core.ErrInvalidArgument
			}

			ovPos = next
			curLitLen = 7 + v
		}

		if litPos+curLitLen > len(litBuf) || outPos+curLitLen > len(out) {
			return false, core.ErrInvalidArgument
		}

		copy(out[outPos:outPos+curLitLen], litBuf[litPos:litPos+curLitLen])
		litPos += curLitLen
		outPos += curLitLen

		if descPos+2 > len(descriptors) {
			return false, core.ErrInvalidArgument
		}

		distField := int(descriptors[descPos])<<8 | int(descriptors[descPos+1])
		descPos += 2

		if longWindow {
			if longFlag == 1 {
				if descPos+1 > len(descriptors) {
					return false, core.ErrInvalidArgument
				}

				distField |= int(descriptors[descPos]) << 16
				descPos++
			}
		} else if longFlag == 1 {
			distField += 65536
		}

		var distance int

		switch distField {
		case 0:
			if d0 == 0 {
				return false, core.ErrInvalidArgument
			}

			distance = d0
		case 1:
			if d1 == 0 {
				return false, core.ErrInvalidArgument
			}

			distance = d1
			d0, d1 = d1, d0
		default:
			distance = distField - 1
			d1 = d0
			d0 = distance
		}

		matchLength := matchField

		if matchField == 15 {
			v, next, ok := readVarLen(overflow, ovPos)

			if !ok {
				return false, core.ErrInvalidArgument
			}

			ovPos = next
			matchLength = 15 + v
		}

		if distance <= 0 || distance > outPos || outPos+matchLength > len(out) {
			return false, core.ErrInvalidArgument
		}

		lzCopyMatch(out, outPos, distance, matchLength)
		outPos += matchLength
	}

	trailing := len(litBuf) - litPos

	if trailing < 0 || outPos+trailing > len(out) {
		return false, core.ErrInvalidArgument
	}

	copy(out[outPos:outPos+trailing], litBuf[litPos:])
	outPos += trailing

	src.Index += n
	dst.Index += outPos
	return true, nil
}

func lzpCtxHash(out []byte, pos int) uint32 {
	v := uint64(binary.LittleEndian.Uint32(out[pos-lzpCtxLen : pos]))
	return uint32((v * lzHashSeed) >> (64 - lzpHashLog))
}

// forwardLZP encodes n bytes of src using a single-order context
// predictor: the last lzpCtxLen bytes hash to a table slot holding the
// most recent position seen with that context, and a run at least
// lzpMinMatch long against that position is replaced by a flag byte,
// a 254-unit continuation run, and a remainder byte.
func (c *LZCodec) forwardLZP(src, dst *core.Span, n int) (bool, error) {
	if n < lzpMinBlock {
		return false, nil
	}

	in := src.Array[src.Index : src.Index+n]
	buf := make([]byte, 0, n)

	var table [lzpHashSize]int32

	for i := range table {
		table[i] = -1
	}

	i := 0

	for i < n {
		if i >= lzpCtxLen {
			h := lzpCtxHash(in, i)
			pos := int(table[h])
			table[h] = int32(i)

			if pos >= 0 {
				ml := lzMatchLen(in[i:], in[pos:], n-i)

				if ml >= lzpMinMatch {
					buf = append(buf, lzpMatchFlag)
					remaining := ml

					for remaining >= lzpContUnit {
						buf = append(buf, lzpContByte)
						remaining -= lzpContUnit
					}

					buf = append(buf, byte(remaining))
					i += ml
					continue
				}
			}
		}

		b := in[i]

		if i >= lzpCtxLen && (b == lzpMatchFlag || b == lzpEscape) {
			buf = append(buf, lzpEscape)
		}

		buf = append(buf, b)
		i++
	}

	dstIdx := len(buf)

	if dstIdx >= n-n/64 {
		return false, nil
	}

	if dst.Length-dst.Index < dstIdx {
		return false, nil
	}

	copy(dst.Array[dst.Index:dst.Index+dstIdx], buf)

	src.Index += n
	dst.Index += dstIdx
	return true, nil
}

// inverseLZP reconstructs n original bytes from an LZP-encoded block
// at src, rebuilding the same context table the encoder used from the
// (shared) byte history as it decodes.
func (c *LZCodec) inverseLZP(src, dst *core.Span, n int) (bool, error) {
	in := src.Array[src.Index : src.Index+n]
	out := make([]byte, 0, n*2)

	var table [lzpHashSize]int32

	for i := range table {
		table[i] = -1
	}

	idx := 0

	for idx < n {
		outPos := len(out)

		if outPos >= lzpCtxLen {
			h := lzpCtxHash(out, outPos)
			pos := int(table[h])
			table[h] = int32(outPos)

			b := in[idx]

			if b == lzpMatchFlag {
				idx++
				ml := 0

				for idx < n && in[idx] == lzpContByte {
					ml += lzpContUnit
					idx++
				}

				if idx >= n {
					return false, core.ErrInvalidArgument
				}

				ml += int(in[idx])
				idx++

				if pos < 0 || pos >= outPos {
					return false, core.ErrInvalidArgument
				}

				out = append(out, make([]byte, ml)...)
				lzCopyMatch(out, outPos, outPos-pos, ml)
				continue
			}

			if b == lzpEscape {
				idx++

				if idx >= n {
					return false, core.ErrInvalidArgument
				}

				out = append(out, in[idx])
				idx++
				continue
			}

			out = append(out, b)
			idx++
			continue
		}

		out = append(out, in[idx])
		idx++
	}

	if dst.Length-dst.Index < len(out) {
		return false, nil
	}

	copy(dst.Array[dst.Index:dst.Index+len(out)], out)
	src.Index += n
	dst.Index += len(out)
	return true, nil
}
