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

func TestGetTypeRoundTripsSingleToken(t *testing.T) {
	names := []string{"NONE", "BWT", "BWTS", "LZ", "LZX", "LZP", "RLT", "ZRLT",
		"MTFT", "RANK", "X86", "TEXT", "ROLZ", "ROLZX", "SRT", "FSD"}

	for _, name := range names {
		tk, err := GetType(name)
		assert.NoError(t, err)

		got, err := GetName(tk)
		assert.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestGetTypeRoundTripsChain(t *testing.T) {
	tk, err := GetType("BWT+MTFT+ZRLT")
	assert.NoError(t, err)

	got, err := GetName(tk)
	assert.NoError(t, err)
	assert.Equal(t, "BWT+MTFT+ZRLT", got)
}

func TestGetTypeRejectsUnknownToken(t *testing.T) {
	_, err := GetType("NOPE")
	assert.Error(t, err)
}

func TestGetTypeRejectsTooManyTokens(t *testing.T) {
	_, err := GetType("RLT+RLT+RLT+RLT+RLT+RLT+RLT+RLT+RLT")
	assert.Error(t, err)
}

func TestNewBuildsWorkingSequence(t *testing.T) {
	tk, err := GetType("TEXT+BWT+MTFT+ZRLT")
	assert.NoError(t, err)

	seq, err := New(core.NewContext(), tk)
	assert.NoError(t, err)
	assert.Equal(t, 4, seq.Len())

	pattern := []byte("the quick brown fox jumps over the lazy dog. ")
	in := make([]byte, 0, len(pattern)*20)

	for i := 0; i < 20; i++ {
		in = append(in, pattern...)
	}

	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	encoded := make([]byte, seq.MaxEncodedLen(n))
	dst := core.NewSpan(encoded)

	ok, err := seq.Forward(src, dst, n)
	assert.NoError(t, err)
	assert.True(t, ok)

	encLen := dst.Index
	decoded := make([]byte, n+64)
	src2 := &core.Span{Array: encoded, Length: encLen, Index: 0}
	dst2 := core.NewSpan(decoded)

	ok, err = seq.Inverse(src2, dst2, encLen)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, decoded[:dst2.Index])
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(nil, uint64(99)<<uint(bffMaxShift))
	assert.Error(t, err)
}
