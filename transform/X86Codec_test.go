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
	"testing"

	"github.com/stretchr/testify/assert"

	core "github.com/blocklayer/bwcore"
)

// buildCallSite returns a 128-byte buffer holding one normalizable
// 0xE8 CALL rel32 instruction at offset 10, with a small forward
// displacement (hi byte 0x00) and filler elsewhere, plus the exact
// bytes Forward is expected to produce for it.
func buildCallSite() (in, wantOut []byte) {
	in = make([]byte, 128)

	for i := range in {
		in[i] = 0x20
	}

	in[10] = 0xE8
	in[11] = 0x05
	in[12] = 0x00
	in[13] = 0x00
	in[14] = 0x00

	wantOut = append([]byte(nil), in...)
	wantOut[10] = 0xE8
	wantOut[11] = 0x01
	wantOut[12] = 0xD5
	wantOut[13] = 0xD5
	wantOut[14] = 0xC5

	return in, wantOut
}

func TestX86CodecNormalizesCallDisplacement(t *testing.T) {
	in, wantOut := buildCallSite()

	tf, err := NewX86Codec()
	assert.NoError(t, err)

	src := core.NewSpan(append([]byte(nil), in...))
	dst := core.NewSpan(make([]byte, tf.MaxEncodedLen(len(in))))

	ok, err := tf.Forward(src, dst, len(in))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wantOut, dst.Array[:dst.Index])

	src2 := &core.Span{Array: dst.Array, Length: dst.Index, Index: 0}
	dst2 := core.NewSpan(make([]byte, len(in)+64))

	ok, err = tf.Inverse(src2, dst2, src2.Length)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, dst2.Array[:dst2.Index])
}

func TestX86CodecSkipsSparseInput(t *testing.T) {
	tf, err := NewX86Codec()
	assert.NoError(t, err)

	in := make([]byte, 128)

	for i := range in {
		in[i] = byte(i)
	}

	src := core.NewSpan(in)
	dst := core.NewSpan(make([]byte, tf.MaxEncodedLen(len(in))))

	ok, err := tf.Forward(src, dst, len(in))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestX86CodecRoundTrip(t *testing.T) {
	runTransformSuite(t, "X86", 32)
}

// TestX86CodecEscapesAmbiguousDisplacementByte covers a jump opcode
// immediately followed by a raw 0x02 byte whose would-be hi byte is
// neither 0x00 nor 0xFF: Inverse treats a leading 0x02 as a valid
// negative-address marker (sgn == 2), so Forward must escape it like
// 0x00/0x01, not fall through and copy it raw.
func TestX86CodecEscapesAmbiguousDisplacementByte(t *testing.T) {
	in, _ := buildCallSite()
	in[60] = 0xE8
	in[61] = 0x02
	in[62] = 0x11
	in[63] = 0x22
	in[64] = 0x77

	tf, err := NewX86Codec()
	assert.NoError(t, err)

	src := core.NewSpan(append([]byte(nil), in...))
	dst := core.NewSpan(make([]byte, tf.MaxEncodedLen(len(in))))

	ok, err := tf.Forward(src, dst, len(in))
	assert.NoError(t, err)
	assert.True(t, ok)

	src2 := &core.Span{Array: dst.Array, Length: dst.Index, Index: 0}
	dst2 := core.NewSpan(make([]byte, len(in)+64))

	ok, err = tf.Inverse(src2, dst2, src2.Length)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, dst2.Array[:dst2.Index])
}
