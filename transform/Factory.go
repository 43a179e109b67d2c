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
	"fmt"
	"strings"

	core "github.com/blocklayer/bwcore"
)

const (
	bffOneShift = 6
	bffMaxShift = (8 - 1) * bffOneShift
	bffMask     = (1 << bffOneShift) - 1
)

// Packed transform type ids. Frozen and wire-format stable: id 4 is
// reserved (historically an adapter for an external LZ77 implementation,
// dropped and never reintroduced now that LZ/LZX/LZP cover that slot).
// Ids 17-22 are reserved; New/GetType reject them as unknown tokens like
// any unrecognized name.
const (
	NoneType  = uint64(0)
	BWTType   = uint64(1)
	BWTSType  = uint64(2)
	LZType    = uint64(3)
	RLTType   = uint64(5)
	ZRLTType  = uint64(6)
	MTFTType  = uint64(7)
	RankType  = uint64(8)
	X86Type   = uint64(9)
	TextType  = uint64(10)
	ROLZType  = uint64(11)
	ROLZXType = uint64(12)
	SRTType   = uint64(13)
	LZPType   = uint64(14)
	FSDType   = uint64(15)
	LZXType   = uint64(16)
)

// New builds a Sequence implementing the packed transform id
// functionType (see GetType). A word with every slot at NoneType yields
// a one-stage identity Sequence.
func New(ctx *core.Context, functionType uint64) (*Sequence, error) {
	nbtr := 0

	for sh := bffMaxShift; sh >= 0; sh -= bffOneShift {
		if (functionType>>uint(sh))&bffMask != NoneType {
			nbtr++
		}
	}

	if nbtr == 0 {
		nbtr = 1
	}

	transforms := make([]core.Transform, nbtr)
	names := make([]string, nbtr)
	nbtr = 0

	for i := range transforms {
		tk := (functionType >> uint(bffMaxShift-bffOneShift*i)) & bffMask

		if tk != NoneType || i == 0 {
			t, err := newToken(ctx, tk)

			if err != nil {
				return nil, err
			}

			transforms[nbtr] = t
			name, _ := getTypeName(tk)
			names[nbtr] = name
		}

		nbtr++
	}

	return NewSequence(transforms, names)
}

func newToken(ctx *core.Context, functionType uint64) (core.Transform, error) {
	switch functionType {
	case TextType:
		codecType := 1

		if ctx != nil {
			switch strings.ToUpper(ctx.GetString("codec", "")) {
			case "NONE", "ANS0", "HUFFMAN", "RANGE":
				codecType = 2
			}
		}

		if ctx != nil {
			ctx.PutInt("textcodec", codecType)
		}

		return NewTextCodecWithCtx(ctx)

	case ROLZType, ROLZXType:
		return NewROLZCodecWithCtx(ctx, functionType == ROLZXType)

	case BWTType:
		return NewBWTBlockCodecWithCtx(ctx)

	case BWTSType:
		return NewBWTSWithCtx(ctx)

	case LZType, LZXType, LZPType:
		if ctx != nil {
			ctx.PutLong("lz", int64(functionType))
		}

		return NewLZCodecWithCtx(ctx, functionType)

	case FSDType:
		return NewFSDCodecWithCtx(ctx)

	case SRTType:
		return NewSRTWithCtx(ctx)

	case RankType:
		if ctx != nil {
			ctx.PutInt("sbrt", SBRTModeRank)
		}

		return NewSBRTWithCtx(ctx)

	case MTFTType:
		if ctx != nil {
			ctx.PutInt("sbrt", SBRTModeMTF)
		}

		return NewSBRTWithCtx(ctx)

	case ZRLTType:
		return NewZRLTWithCtx(ctx)

	case RLTType:
		return NewRLTWithCtx(ctx)

	case X86Type:
		return NewX86CodecWithCtx(ctx)

	case NoneType:
		return NewNullTransform()

	default:
		return nil, fmt.Errorf("bwcore: unknown transform type '%d'", functionType)
	}
}

// GetName renders the packed functionType back into its "NAME+NAME+..."
// form.
func GetName(functionType uint64) (string, error) {
	var s string

	for i := uint(0); i < 8; i++ {
		tk := (functionType >> uint(bffMaxShift-bffOneShift*int(i))) & bffMask

		if tk == NoneType {
			continue
		}

		name, err := getTypeName(tk)

		if err != nil {
			return "", err
		}

		if len(s) != 0 {
			s += "+"
		}

		s += name
	}

	if len(s) == 0 {
		return "NONE", nil
	}

	return s, nil
}

func getTypeName(functionType uint64) (string, error) {
	switch functionType {
	case TextType:
		return "TEXT", nil
	case ROLZType:
		return "ROLZ", nil
	case ROLZXType:
		return "ROLZX", nil
	case BWTType:
		return "BWT", nil
	case BWTSType:
		return "BWTS", nil
	case LZType:
		return "LZ", nil
	case LZXType:
		return "LZX", nil
	case LZPType:
		return "LZP", nil
	case X86Type:
		return "X86", nil
	case FSDType:
		return "FSD", nil
	case ZRLTType:
		return "ZRLT", nil
	case RLTType:
		return "RLT", nil
	case SRTType:
		return "SRT", nil
	case RankType:
		return "RANK", nil
	case MTFTType:
		return "MTFT", nil
	case NoneType:
		return "NONE", nil
	default:
		return "", fmt.Errorf("bwcore: unknown transform type '%d'", functionType)
	}
}

// GetType parses a "NAME+NAME+..." spec (up to 8 tokens) into a packed
// transform id.
func GetType(name string) (uint64, error) {
	if strings.IndexByte(name, '+') < 0 {
		res, err := getTypeToken(name)

		if err != nil {
			return 0, err
		}

		return res << uint(bffMaxShift), nil
	}

	tokens := strings.Split(name, "+")

	if len(tokens) == 0 {
		return 0, fmt.Errorf("bwcore: unknown transform type '%s'", name)
	}

	if len(tokens) > 8 {
		return 0, fmt.Errorf("bwcore: only 8 transforms allowed: '%s'", name)
	}

	res := uint64(0)
	shift := bffMaxShift

	for _, token := range tokens {
		tk, err := getTypeToken(token)

		if err != nil {
			return 0, err
		}

		if tk != NoneType {
			res |= tk << uint(shift)
			shift -= bffOneShift
		}
	}

	return res, nil
}

func getTypeToken(name string) (uint64, error) {
	switch strings.ToUpper(name) {
	case "TEXT":
		return TextType, nil
	case "BWT":
		return BWTType, nil
	case "BWTS":
		return BWTSType, nil
	case "ROLZ":
		return ROLZType, nil
	case "ROLZX":
		return ROLZXType, nil
	case "LZ":
		return LZType, nil
	case "LZX":
		return LZXType, nil
	case "LZP":
		return LZPType, nil
	case "FSD":
		return FSDType, nil
	case "SRT":
		return SRTType, nil
	case "RANK":
		return RankType, nil
	case "MTFT":
		return MTFTType, nil
	case "ZRLT":
		return ZRLTType, nil
	case "RLT":
		return RLTType, nil
	case "X86":
		return X86Type, nil
	case "NONE":
		return NoneType, nil
	default:
		return 0, fmt.Errorf("bwcore: unknown transform type '%s'", name)
	}
}
