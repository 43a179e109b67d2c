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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	core "github.com/blocklayer/bwcore"
)

func getTransform(name string) (core.Transform, error) {
	switch name {
	case "LZ":
		return NewLZCodec(LZType)
	case "LZX":
		return NewLZCodec(LZXType)
	case "LZP":
		return NewLZCodec(LZPType)
	case "NONE":
		return NewNullTransform()
	case "ZRLT":
		return NewZRLT()
	case "RLT":
		return NewRLT()
	case "SRT":
		return NewSRT()
	case "RANK":
		return NewSBRT(SBRTModeRank)
	case "MTFT":
		return NewSBRT(SBRTModeMTF)
	case "X86":
		return NewX86Codec()
	case "BWT":
		return NewBWT()
	case "BWTS":
		return NewBWTS()
	case "FSD":
		return NewFSDCodec()
	case "TEXT":
		return NewTextCodec()
	case "ROLZ":
		return NewROLZCodec(false)
	case "ROLZX":
		return NewROLZCodec(true)
	default:
		return nil, core.ErrInvalidArgument
	}
}

func transformRoundTrip(t *testing.T, name string, in []byte) {
	tf, err := getTransform(name)
	assert.NoError(t, err)

	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	encoded := make([]byte, tf.MaxEncodedLen(n))
	dst := core.NewSpan(encoded)

	ok, err := tf.Forward(src, dst, n)
	assert.NoError(t, err)

	if !ok {
		// Not every input is compressible by every transform; a clean
		// "not applicable" result is not a test failure.
		return
	}

	encLen := dst.Index
	src2 := &core.Span{Array: encoded, Length: encLen, Index: 0}
	decoded := make([]byte, n+64)
	dst2 := core.NewSpan(decoded)

	ok, err = tf.Inverse(src2, dst2, encLen)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, decoded[:dst2.Index])
}

func randomBlock(rnd *rand.Rand, size, alphabet int) []byte {
	buf := make([]byte, size)

	for i := range buf {
		buf[i] = byte(rnd.Intn(alphabet))
	}

	return buf
}

func runTransformSuite(t *testing.T, name string, minSize int) {
	rnd := rand.New(rand.NewSource(7))

	sizes := []int{minSize, minSize + 37, 256, 1024, 4096}
	alphabets := []int{2, 4, 16, 256}

	for _, size := range sizes {
		for _, alphabet := range alphabets {
			transformRoundTrip(t, name, randomBlock(rnd, size, alphabet))
		}
	}

	// A block with long runs stresses RLE/match-based transforms.
	runBlock := make([]byte, 512)

	for i := range runBlock {
		runBlock[i] = byte(i / 64)
	}

	transformRoundTrip(t, name, runBlock)
}

func TestTransformNone(t *testing.T)  { runTransformSuite(t, "NONE", 1) }
func TestTransformZRLT(t *testing.T)  { runTransformSuite(t, "ZRLT", 1) }
func TestTransformRLT(t *testing.T)   { runTransformSuite(t, "RLT", 1) }
func TestTransformSRT(t *testing.T)   { runTransformSuite(t, "SRT", 256) }
func TestTransformRank(t *testing.T)  { runTransformSuite(t, "RANK", 1) }
func TestTransformMTFT(t *testing.T)  { runTransformSuite(t, "MTFT", 1) }
func TestTransformX86(t *testing.T)   { runTransformSuite(t, "X86", 32) }
func TestTransformBWT(t *testing.T)   { runTransformSuite(t, "BWT", 1) }
func TestTransformBWTS(t *testing.T)  { runTransformSuite(t, "BWTS", 1) }
func TestTransformLZ(t *testing.T)    { runTransformSuite(t, "LZ", 32) }
func TestTransformLZX(t *testing.T)   { runTransformSuite(t, "LZX", 32) }
func TestTransformLZP(t *testing.T)   { runTransformSuite(t, "LZP", 128) }
func TestTransformFSD(t *testing.T)   { runTransformSuite(t, "FSD", 1024) }
func TestTransformText(t *testing.T)  { runTransformSuite(t, "TEXT", 32) }
func TestTransformROLZ(t *testing.T)  { runTransformSuite(t, "ROLZ", 256) }
func TestTransformROLZX(t *testing.T) { runTransformSuite(t, "ROLZX", 256) }

func TestTextFindsRepeatedWords(t *testing.T) {
	pattern := []byte("compression transforms reorganize redundant information before entropy coding. ")
	in := make([]byte, 0, len(pattern)*20)

	for i := 0; i < 20; i++ {
		in = append(in, pattern...)
	}

	transformRoundTrip(t, "TEXT", in)
}

func TestROLZFindsRepeats(t *testing.T) {
	pattern := []byte("abcdefghijklmnopqrstuvwxyz0123456789 ")
	in := make([]byte, 0, len(pattern)*20)

	for i := 0; i < 20; i++ {
		in = append(in, pattern...)
	}

	transformRoundTrip(t, "ROLZ", in)
	transformRoundTrip(t, "ROLZX", in)
}

func TestFSDFindsStride(t *testing.T) {
	// A 4-byte-stride ramp: each channel drifts slowly from its neighbor
	// one stride back, so the stride-4 delta filter should find a clear
	// win over the unfiltered baseline.
	in := make([]byte, 4096)

	for i := range in {
		in[i] = byte((i%4)*64 + (i/4)%8)
	}

	transformRoundTrip(t, "FSD", in)
}

func TestLZFindsRepeats(t *testing.T) {
	pattern := []byte("the quick brown fox jumps over the lazy dog. ")
	in := make([]byte, 0, len(pattern)*20)

	for i := 0; i < 20; i++ {
		in = append(in, pattern...)
	}

	transformRoundTrip(t, "LZ", in)
	transformRoundTrip(t, "LZX", in)
}

func TestLZPFindsRepeats(t *testing.T) {
	pattern := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	in := make([]byte, 0, len(pattern)*10)

	for i := 0; i < 10; i++ {
		in = append(in, pattern...)
	}

	transformRoundTrip(t, "LZP", in)
}

// TestLZPHeaderBytesCollideWithMarkers covers a block whose first 4
// bytes (copied verbatim, with no escape interpretation, since no
// context hash exists yet) happen to equal the match-flag and escape
// byte values. Those bytes must round-trip raw, not be escaped on
// Forward and then misread as literal escape sequences on Inverse.
func TestLZPHeaderBytesCollideWithMarkers(t *testing.T) {
	pattern := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	in := make([]byte, 0, 4+len(pattern)*10)
	in = append(in, 0xFC, 0xFF, 0x00, 0x01)

	for i := 0; i < 10; i++ {
		in = append(in, pattern...)
	}

	transformRoundTrip(t, "LZP", in)
}
