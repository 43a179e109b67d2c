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

const srtMaxHeaderSize = 4 * 256

// SRT is the sorted rank transform: each run of a byte becomes the byte's
// rank in a move-to-front list (initially in order of first appearance)
// followed by one zero per further byte of the run, and the byte then
// moves to the front of that list. The output is grouped into per-symbol
// buckets laid out by descending frequency (ties broken by symbol value),
// each symbol's runs in input order. Typically run right after a BWT stage to push the
// entropy of its output toward a handful of low ranks. The symbol
// frequencies are stored up front as a per-symbol varint header using a
// 7-bit continuation encoding.
type SRT struct {
}

// NewSRT creates an SRT.
func NewSRT() (*SRT, error) {
	return &SRT{}, nil
}

// NewSRTWithCtx creates an SRT. ctx is accepted for interface symmetry;
// SRT needs no configuration.
func NewSRTWithCtx(ctx *core.Context) (*SRT, error) {
	return &SRT{}, nil
}

// Forward encodes n bytes from src into dst as a frequency header
// followed by the rank stream.
func (t *SRT) Forward(src, dst *core.Span, n int) (bool, error) {
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
	count := n
	var s2r, r2s [256]byte
	var freqs [256]int32

	for i, b := 0, 0; i < count; {
		c := in[i]

		if freqs[c] == 0 {
			r2s[b] = c
			s2r[c] = byte(b)
			b++
		}

		j := i + 1

		for j < count && in[j] == c {
			j++
		}

		freqs[c] += int32(j - i)
		i = j
	}

	var symbols [256]byte
	nbSymbols := srtPreprocess(freqs[:], symbols[:])
	var buckets [256]int

	for i, bucketPos := 0, 0; i < nbSymbols; i++ {
		c := symbols[i]
		buckets[c] = bucketPos
		bucketPos += int(freqs[c])
	}

	out := dst.Array[dst.Index:]
	headerSize := srtEncodeHeader(freqs[:], out)
	body := out[headerSize:]

	for i := 0; i < count; {
		c := in[i]
		r := s2r[c]
		p := buckets[c]
		body[p] = r
		p++

		if r > 0 {
			for {
				prev := r2s[r-1]
				r2s[r], s2r[prev] = prev, r

				if r == 1 {
					break
				}

				r--
			}

			r2s[0] = c
			s2r[c] = 0
		}

		i++

		for i < count && in[i] == c {
			body[p] = 0
			p++
			i++
		}

		buckets[c] = p
	}

	src.Index += count
	dst.Index += headerSize + count
	return true, nil
}

func srtPreprocess(freqs []int32, symbols []byte) int {
	nbSymbols := 0

	for i := range freqs {
		if freqs[i] == 0 {
			continue
		}

		symbols[nbSymbols] = byte(i)
		nbSymbols++
	}

	h := 4

	for h < nbSymbols {
		h = h*3 + 1
	}

	for {
		h /= 3

		for i := h; i < nbSymbols; i++ {
			t := symbols[i]
			var b int

			for b = i - h; b >= 0 && (freqs[symbols[b]] < freqs[t] || (t < symbols[b] && freqs[t] == freqs[symbols[b]])); b -= h {
				symbols[b+h] = symbols[b]
			}

			symbols[b+h] = t
		}

		if h == 1 {
			break
		}
	}

	return nbSymbols
}

// Inverse decodes n encoded bytes (header plus rank stream) from src,
// writing the reconstructed bytes to dst.
func (t *SRT) Inverse(src, dst *core.Span, n int) (bool, error) {
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
	var freqs [256]int32
	headerSize := srtDecodeHeader(in, freqs[:])

	if headerSize > n {
		return false, nil
	}

	body := in[headerSize:]
	count := 0

	for _, f := range freqs {
		count += int(f)
	}

	if count != len(body) || dst.Length-dst.Index < count {
		return false, nil
	}

	var symbols [256]byte
	nbSymbols := srtPreprocess(freqs[:], symbols[:])
	var buckets, bucketEnds [256]int
	var r2s [256]byte

	for i, bucketPos := 0, 0; i < nbSymbols; i++ {
		c := symbols[i]
		r2s[body[bucketPos]] = c
		buckets[c] = bucketPos + 1
		bucketPos += int(freqs[c])
		bucketEnds[c] = bucketPos
	}

	out := dst.Array[dst.Index : dst.Index+count]
	c := r2s[0]

	for i := range out {
		out[i] = c

		if buckets[c] < bucketEnds[c] {
			r := body[buckets[c]]
			buckets[c]++

			if r == 0 {
				continue
			}

			s := 0

			for s+4 < int(r) {
				r2s[s] = r2s[s+1]
				r2s[s+1] = r2s[s+2]
				r2s[s+2] = r2s[s+3]
				r2s[s+3] = r2s[s+4]
				s += 4
			}

			for s < int(r) {
				r2s[s] = r2s[s+1]
				s++
			}

			r2s[r] = c
			c = r2s[0]
		} else {
			if nbSymbols == 1 {
				continue
			}

			nbSymbols--

			for s := 0; s < nbSymbols; s++ {
				r2s[s] = r2s[s+1]
			}

			c = r2s[0]
		}
	}

	src.Index += n
	dst.Index += count
	return true, nil
}

func srtEncodeHeader(freqs []int32, dst []byte) int {
	n := 0

	for _, f := range freqs {
		for f >= 128 {
			dst[n] = byte(0x80 | (f & 0x7F))
			n++
			f >>= 7
		}

		dst[n] = byte(f)
		n++
	}

	return n
}

func srtDecodeHeader(src []byte, freqs []int32) int {
	n := 0

	for i := range freqs {
		val := int32(src[n])
		n++

		if val < 128 {
			freqs[i] = val
			continue
		}

		res := val & 0x7F
		val = int32(src[n])
		n++
		res |= (val & 0x7F) << 7

		if val >= 128 {
			val = int32(src[n])
			n++
			res |= (val & 0x7F) << 14

			if val >= 128 {
				val = int32(src[n])
				n++
				res |= (val & 0x7F) << 21
			}
		}

		freqs[i] = res
	}

	return n
}

// MaxEncodedLen returns the max size required for the encoding output.
func (t *SRT) MaxEncodedLen(srcLen int) int {
	return srcLen + srtMaxHeaderSize
}
