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

// NullTransform is the identity transform: it copies n bytes from src to
// dst unchanged. The factory returns it for the NONE slot.
type NullTransform struct {
}

// NewNullTransform creates a NullTransform.
func NewNullTransform() (*NullTransform, error) {
	return &NullTransform{}, nil
}

func doCopy(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() {
		return false, core.ErrInvalidArgument
	}

	if n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if dst.Index+n > len(dst.Array) {
		return false, nil
	}

	copy(dst.Array[dst.Index:dst.Index+n], src.Array[src.Index:src.Index+n])

	src.Index += n
	dst.Index += n
	return true, nil
}

// SameBuffer reports whether s and o view the same backing array.
func SameBuffer(s, o *core.Span) bool {
	if len(s.Array) == 0 || len(o.Array) == 0 {
		return false
	}

	return &s.Array[0] == &o.Array[0]
}

// Forward copies n bytes from src to dst.
func (t *NullTransform) Forward(src, dst *core.Span, n int) (bool, error) {
	return doCopy(src, dst, n)
}

// Inverse copies n bytes from src to dst.
func (t *NullTransform) Inverse(src, dst *core.Span, n int) (bool, error) {
	return doCopy(src, dst, n)
}

// MaxEncodedLen returns srcLen: the identity transform never expands.
func (t *NullTransform) MaxEncodedLen(srcLen int) int {
	return srcLen
}
