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

// Package bwcore defines the top level types shared by every block
// transform: the byte span transforms read and write, the context they
// are configured from, and the transform contract itself.
//
// The concrete transforms live in the transform subpackage. This package
// only fixes the vocabulary they share.
package bwcore

import "errors"

// ErrInvalidArgument is returned when a Span is malformed (nil array,
// cursor out of range) or a constructor was given bad parameters; some
// inverses also return it for encoded data they cannot parse (see
// Transform). It is always fatal: the caller stops processing the block.
var ErrInvalidArgument = errors.New("bwcore: invalid argument")

// Transform is the common contract implemented by every block transform
// in this module: a forward mapping and its inverse over byte spans,
// plus a worst-case output size query.
//
// Forward consumes n bytes from src starting at src.Index and writes the
// transformed bytes to dst starting at dst.Index.
//
//   - err != nil is always INVALID_ARGUMENT: malformed spans or bad
//     construction parameters. Fatal; the sequence engine does not catch it.
//   - err == nil, ok == false is NOT_APPLICABLE: the data did not compress
//     under this transform, or dst lacked the worst-case capacity. Both
//     cursors are left exactly where they were at entry. Soft fail.
//   - err == nil, ok == true is success: src.Index += n and dst.Index
//     advances by the number of bytes produced.
//
// Inverse is the dual. ok == false here is CORRUPT_INPUT: fatal for the
// whole block, no recovery. Not every inverse reports corrupt data that
// way: the LZ/LZX/LZP, ROLZ, TEXT, BWT and FSD inverses return
// ErrInvalidArgument for encoded data they cannot parse.
type Transform interface {
	Forward(src, dst *Span, n int) (bool, error)
	Inverse(src, dst *Span, n int) (bool, error)

	// MaxEncodedLen returns the worst-case size of a Forward call's
	// output for an input of the given length, including any worst-case
	// expansion. It must be truthful: callers size destination buffers
	// from it.
	MaxEncodedLen(srcLen int) int
}
