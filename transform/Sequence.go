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

const transformSkipMask = 0xFF

// StageEvent carries one before/after notification for a Sequence
// stage.
type StageEvent struct {
	Stage   int
	Name    string
	Before  bool
	Applied bool
}

// StageListener receives a StageEvent immediately before and after each
// stage's Forward/Inverse call. Called synchronously; Sequence spawns no
// goroutines of its own.
type StageListener func(event StageEvent)

// Sequence chains 1 to 8 transforms. Forward applies each stage in
// turn over two owned scratch buffers, ping-ponging the "current data"
// pointer between them; a stage that fails (false, nil) is skipped and
// its input passes through untouched. The skip-flags bitmap it records
// lets Inverse replay only the stages that actually ran, in reverse
// order.
type Sequence struct {
	transforms []core.Transform
	names      []string
	skipFlags  byte
	listener   StageListener
}

// NewSequence creates a Sequence over 1 to 8 transforms, naming each
// (for StageEvent and diagnostics) in the same order.
func NewSequence(transforms []core.Transform, names []string) (*Sequence, error) {
	if transforms == nil {
		return nil, core.ErrInvalidArgument
	}

	if len(transforms) == 0 || len(transforms) > 8 {
		return nil, core.ErrInvalidArgument
	}

	if len(names) != len(transforms) {
		return nil, core.ErrInvalidArgument
	}

	return &Sequence{transforms: transforms, names: names, skipFlags: transformSkipMask}, nil
}

// SetListener attaches (or, with nil, detaches) a StageListener.
func (s *Sequence) SetListener(l StageListener) {
	s.listener = l
}

// Len returns the number of stages in the sequence.
func (s *Sequence) Len() int {
	return len(s.transforms)
}

// SkipFlags returns the bitmap recorded by the last Forward call; bit
// (7-i) is 0 iff stage i applied and shrunk the data.
func (s *Sequence) SkipFlags() byte {
	return s.skipFlags
}

// SetSkipFlags sets the skip-flags bitmap directly, for a decoder that
// read it from a block header rather than computing it via Forward.
func (s *Sequence) SetSkipFlags(flags byte) {
	s.skipFlags = flags
}

func (s *Sequence) notify(stage int, before, applied bool) {
	if s.listener == nil {
		return
	}

	s.listener(StageEvent{Stage: stage, Name: s.names[stage], Before: before, Applied: applied})
}

// Forward runs every stage's Forward in order over n bytes from src,
// writing the final result to dst.
func (s *Sequence) Forward(src, dst *core.Span, n int) (bool, error) {
	s.skipFlags = transformSkipMask

	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	required := s.MaxEncodedLen(n)

	if dst.Length-dst.Index < required {
		return false, nil
	}

	scratch := [2][]byte{make([]byte, required), make([]byte, required)}
	curData := src.Array[src.Index : src.Index+n]
	curLen := n
	outIdx := 0

	for i, t := range s.transforms {
		s.notify(i, true, false)

		need := t.MaxEncodedLen(curLen)

		if len(scratch[outIdx]) < need {
			scratch[outIdx] = make([]byte, need)
		}

		inSpan := &core.Span{Array: curData, Length: curLen, Index: 0}
		outSpan := core.NewSpan(scratch[outIdx])
		ok, err := t.Forward(inSpan, outSpan, curLen)

		if err != nil {
			return false, err
		}

		if !ok {
			s.notify(i, false, false)
			continue
		}

		curData = scratch[outIdx]
		curLen = outSpan.Index
		outIdx = 1 - outIdx
		s.skipFlags &^= 1 << uint(7-i)
		s.notify(i, false, true)
	}

	copy(dst.Array[dst.Index:dst.Index+curLen], curData[:curLen])
	src.Index += n
	dst.Index += curLen
	return true, nil
}

// Inverse runs Inverse on every non-skipped stage (per the skip-flags
// bitmap), in reverse order, reconstructing the original n bytes.
func (s *Sequence) Inverse(src, dst *core.Span, n int) (bool, error) {
	if !src.Valid() || !dst.Valid() || n < 0 || src.Index+n > src.Length {
		return false, core.ErrInvalidArgument
	}

	if n == 0 {
		return true, nil
	}

	if SameBuffer(src, dst) {
		return false, core.ErrInvalidArgument
	}

	if s.skipFlags == transformSkipMask {
		if dst.Length-dst.Index < n {
			return false, nil
		}

		copy(dst.Array[dst.Index:dst.Index+n], src.Array[src.Index:src.Index+n])
		src.Index += n
		dst.Index += n
		return true, nil
	}

	if dst.Length-dst.Index < n {
		return false, nil
	}

	scratch := [2][]byte{make([]byte, len(dst.Array)-dst.Index), make([]byte, len(dst.Array)-dst.Index)}
	curData := src.Array[src.Index : src.Index+n]
	curLen := n
	outIdx := 0

	for i := s.Len() - 1; i >= 0; i-- {
		if s.skipFlags&(1<<uint(7-i)) != 0 {
			continue
		}

		s.notify(i, true, true)
		inSpan := &core.Span{Array: curData, Length: curLen, Index: 0}
		outSpan := core.NewSpan(scratch[outIdx])
		ok, err := s.transforms[i].Inverse(inSpan, outSpan, curLen)

		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}

		curData = scratch[outIdx]
		curLen = outSpan.Index
		outIdx = 1 - outIdx
		s.notify(i, false, true)
	}

	copy(dst.Array[dst.Index:dst.Index+curLen], curData[:curLen])
	src.Index += n
	dst.Index += curLen
	return true, nil
}

// MaxEncodedLen returns the largest worst-case length any stage could
// require for an input of srcLen, which upper-bounds this Sequence's
// own Forward output.
func (s *Sequence) MaxEncodedLen(srcLen int) int {
	required := srcLen

	for _, t := range s.transforms {
		if r := t.MaxEncodedLen(required); r > required {
			required = r
		}
	}

	return required
}
