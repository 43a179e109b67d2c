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

func newSequenceFixture(t *testing.T) *Sequence {
	t.Helper()

	rlt, err := NewRLT()
	assert.NoError(t, err)
	zrlt, err := NewZRLT()
	assert.NoError(t, err)

	seq, err := NewSequence([]core.Transform{rlt, zrlt}, []string{"RLT", "ZRLT"})
	assert.NoError(t, err)

	return seq
}

func TestSequenceRejectsBadShape(t *testing.T) {
	_, err := NewSequence(nil, nil)
	assert.Error(t, err)

	rlt, _ := NewRLT()
	_, err = NewSequence([]core.Transform{rlt}, []string{"A", "B"})
	assert.Error(t, err)

	nine := make([]core.Transform, 9)
	names := make([]string, 9)

	for i := range nine {
		nine[i], _ = NewRLT()
		names[i] = "RLT"
	}

	_, err = NewSequence(nine, names)
	assert.Error(t, err)
}

func TestSequenceRoundTrip(t *testing.T) {
	seq := newSequenceFixture(t)

	in := make([]byte, 512)

	for i := range in {
		in[i] = byte(i / 32)
	}

	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	dst := core.NewSpan(make([]byte, seq.MaxEncodedLen(n)))

	ok, err := seq.Forward(src, dst, n)
	assert.NoError(t, err)
	assert.True(t, ok)

	encLen := dst.Index
	src2 := &core.Span{Array: dst.Array, Length: encLen, Index: 0}
	dst2 := core.NewSpan(make([]byte, n+64))

	ok, err = seq.Inverse(src2, dst2, encLen)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, dst2.Array[:dst2.Index])
}

func TestSequenceNotifiesListenerForEachStage(t *testing.T) {
	seq := newSequenceFixture(t)

	var events []StageEvent
	seq.SetListener(func(e StageEvent) {
		events = append(events, e)
	})

	in := make([]byte, 512)

	for i := range in {
		in[i] = byte(i / 32)
	}

	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	dst := core.NewSpan(make([]byte, seq.MaxEncodedLen(n)))

	ok, err := seq.Forward(src, dst, n)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Each of the 2 stages notifies before, then after.
	assert.Equal(t, 4, len(events))
	assert.Equal(t, "RLT", events[0].Name)
	assert.True(t, events[0].Before)
	assert.False(t, events[0].Applied)
	assert.Equal(t, "RLT", events[1].Name)
	assert.False(t, events[1].Before)

	seq.SetListener(nil)
	events = nil

	ok, err = seq.Forward(core.NewSpan(append([]byte(nil), in...)), core.NewSpan(make([]byte, seq.MaxEncodedLen(n))), n)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, events)
}

func TestSequenceSkipsNonApplicableStage(t *testing.T) {
	lz, err := NewLZCodec(LZType)
	assert.NoError(t, err)
	rlt, err := NewRLT()
	assert.NoError(t, err)

	seq, err := NewSequence([]core.Transform{lz, rlt}, []string{"LZ", "RLT"})
	assert.NoError(t, err)

	// Too small for LZ to find anything useful; RLT still runs on runs.
	in := make([]byte, 64)

	for i := range in {
		in[i] = byte(i / 8)
	}

	n := len(in)
	src := core.NewSpan(append([]byte(nil), in...))
	dst := core.NewSpan(make([]byte, seq.MaxEncodedLen(n)))

	ok, err := seq.Forward(src, dst, n)
	assert.NoError(t, err)
	assert.True(t, ok)

	// 8-byte runs are well within RLT's reach even where LZ finds
	// nothing worth a match; at least one stage must have applied.
	assert.NotEqual(t, byte(transformSkipMask), seq.SkipFlags())

	encLen := dst.Index
	src2 := &core.Span{Array: dst.Array, Length: encLen, Index: 0}
	dst2 := core.NewSpan(make([]byte, n+64))

	ok, err = seq.Inverse(src2, dst2, encLen)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, dst2.Array[:dst2.Index])
}
