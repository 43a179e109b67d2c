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

func bwtRoundTrip(t *testing.T, tf core.Transform, in []byte) {
	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	encoded := make([]byte, tf.MaxEncodedLen(n))
	dst := core.NewSpan(encoded)

	ok, err := tf.Forward(src, dst, n)
	assert.NoError(t, err)
	assert.True(t, ok)

	encLen := dst.Index
	src2 := &core.Span{Array: encoded, Length: encLen, Index: 0}
	decoded := make([]byte, n)
	dst2 := core.NewSpan(decoded)

	ok, err = tf.Inverse(src2, dst2, encLen)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, decoded[:dst2.Index])
}

func TestBWTRoundTrip(t *testing.T) {
	tf, err := NewBWT()
	assert.NoError(t, err)

	inputs := [][]byte{
		[]byte("mississippi"),
		[]byte("3.14159265358979323846264338327950288419716939937510"),
		[]byte("SIX.MIXED.PIXIES.SIFT.SIXTY.PIXIE.DUST.BOXES"),
		bytes256(300),
	}

	for _, in := range inputs {
		bwtRoundTrip(t, tf, in)
	}
}

func TestBWTRoundTripRandom(t *testing.T) {
	tf, err := NewBWT()
	assert.NoError(t, err)
	rnd := rand.New(rand.NewSource(42))

	for trial := 0; trial < 10; trial++ {
		in := make([]byte, 16+rnd.Intn(400))

		for i := range in {
			in[i] = byte(65 + rnd.Intn(8))
		}

		bwtRoundTrip(t, tf, in)
	}
}

func TestBWTSRoundTrip(t *testing.T) {
	tf, err := NewBWTS()
	assert.NoError(t, err)

	inputs := [][]byte{
		[]byte("mississippi"),
		[]byte("banana"),
		[]byte("SIX.MIXED.PIXIES.SIFT.SIXTY.PIXIE.DUST.BOXES"),
		bytes256(200),
	}

	for _, in := range inputs {
		bwtRoundTrip(t, tf, in)
	}
}

func TestBWTEmptyInput(t *testing.T) {
	tf, err := NewBWT()
	assert.NoError(t, err)
	src := core.NewSpan([]byte{})
	dst := core.NewSpan([]byte{})
	ok, err := tf.Forward(src, dst, 0)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func bytes256(n int) []byte {
	out := make([]byte, n)

	for i := range out {
		out[i] = byte(i % 256)
	}

	return out
}
