package mscopy

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/mscopy/internal/kernel"
)

// ParamsSize is the size of the packed constant block in bytes.
const ParamsSize = 32

// Params is the kernel constant block for one dispatch.
//
// It packs into two 4-component int32 vectors:
//
//	vector 0 = (SrcX, SrcY, Width, Height)
//	vector 1 = (DstX, DstY, SrcSamples, DstSamples)
type Params struct {
	SrcX, SrcY    int32
	Width, Height int32
	DstX, DstY    int32

	SrcSamples int32
	DstSamples int32
}

// Vectors returns the two constant vectors.
func (p Params) Vectors() [2][4]int32 {
	return [2][4]int32{
		{p.SrcX, p.SrcY, p.Width, p.Height},
		{p.DstX, p.DstY, p.SrcSamples, p.DstSamples},
	}
}

// Bytes packs the constant block little-endian, vector 0 first.
func (p Params) Bytes() []byte {
	buf := make([]byte, ParamsSize)
	v := p.Vectors()
	for i, vec := range v {
		for j, c := range vec {
			binary.LittleEndian.PutUint32(buf[(i*4+j)*4:], uint32(c)) //nolint:gosec // bit-cast for GPU upload
		}
	}
	return buf
}

// ParamsFromBytes decodes a constant block packed by Params.Bytes.
func ParamsFromBytes(b []byte) (Params, error) {
	if len(b) < ParamsSize {
		return Params{}, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidParams, len(b), ParamsSize)
	}
	w := func(i int) int32 {
		return int32(binary.LittleEndian.Uint32(b[i*4:])) //nolint:gosec // bit-cast from GPU layout
	}
	return Params{
		SrcX: w(0), SrcY: w(1), Width: w(2), Height: w(3),
		DstX: w(4), DstY: w(5), SrcSamples: w(6), DstSamples: w(7),
	}, nil
}

// Region returns the copy rectangle described by the block.
func (p Params) Region() Region {
	return Region{
		SrcX: int(p.SrcX), SrcY: int(p.SrcY),
		DstX: int(p.DstX), DstY: int(p.DstY),
		Width: int(p.Width), Height: int(p.Height),
	}
}

// GroupCount returns the 8x8x1 workgroup grid covering the copy.
func (p Params) GroupCount() (x, y, z uint32) {
	return kernel.GroupCount(p.Width, p.Height)
}

func (p Params) kernelParams() kernel.Params {
	v := p.Vectors()
	return kernel.Params{Src: v[0], Dst: v[1]}
}
