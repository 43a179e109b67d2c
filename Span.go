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

package bwcore

// Span is an owned byte buffer plus a movable read/write cursor into it.
// Transforms never resize Array; a transform with no worst-case-capacity
// guarantee for dst returns NOT_APPLICABLE instead.
type Span struct {
	Array []byte
	Length int
	Index  int
}

// NewSpan wraps buf as a Span of length len(buf), cursor at zero.
func NewSpan(buf []byte) *Span {
	return &Span{Array: buf, Length: len(buf), Index: 0}
}

// Valid reports whether the span is non-nil, has a non-nil Array, and
// its invariant (0 <= Index <= Length <= len(Array)) holds.
func (s *Span) Valid() bool {
	if s == nil || s.Array == nil {
		return false
	}

	return s.Index >= 0 && s.Index <= s.Length && s.Length <= len(s.Array)
}

// Remaining returns the number of bytes between Index and Length.
func (s *Span) Remaining() int {
	return s.Length - s.Index
}

// SameBuffer reports whether s and o view the same backing array. Two
// empty spans are never considered the same buffer.
func SameBuffer(s, o *Span) bool {
	if len(s.Array) == 0 || len(o.Array) == 0 {
		return false
	}

	return &s.Array[0] == &o.Array[0]
}
