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

func TestNullTransformCopiesUnchanged(t *testing.T) {
	in := []byte("the quick brown fox jumps over the lazy dog")
	tf, err := NewNullTransform()
	assert.NoError(t, err)
	assert.Equal(t, len(in), tf.MaxEncodedLen(len(in)))

	transformRoundTrip(t, "NONE", in)
}

func TestNullTransformEmptyInput(t *testing.T) {
	tf, err := NewNullTransform()
	assert.NoError(t, err)

	src := core.NewSpan([]byte{})
	dst := core.NewSpan([]byte{})
	ok, err := tf.Forward(src, dst, 0)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestNullTransformRejectsAliasedSpans(t *testing.T) {
	tf, err := NewNullTransform()
	assert.NoError(t, err)

	buf := make([]byte, 16)
	src := core.NewSpan(buf)
	dst := &core.Span{Array: buf, Length: len(buf), Index: 0}

	_, err = tf.Forward(src, dst, 8)
	assert.Equal(t, core.ErrInvalidArgument, err)
}

func TestNullTransformRejectsShortDst(t *testing.T) {
	tf, err := NewNullTransform()
	assert.NoError(t, err)

	src := core.NewSpan([]byte("0123456789"))
	dst := core.NewSpan(make([]byte, 4))

	ok, err := tf.Forward(src, dst, 10)
	assert.NoError(t, err)
	assert.False(t, ok)
}
