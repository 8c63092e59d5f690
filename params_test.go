package mscopy

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_BytesLayout(t *testing.T) {
	p := Params{SrcX: 1, SrcY: 2, Width: 3, Height: 4, DstX: 5, DstY: -6, SrcSamples: 8, DstSamples: 4}
	b := p.Bytes()
	require.Len(t, b, ParamsSize)

	want := []int32{1, 2, 3, 4, 5, -6, 8, 4}
	for i, w := range want {
		got := int32(binary.LittleEndian.Uint32(b[i*4:])) //nolint:gosec // test
		assert.Equal(t, w, got, "component %d", i)
	}
}

func TestParamsFromBytes(t *testing.T) {
	p := Params{SrcX: 7, SrcY: 0, Width: 640, Height: 480, DstX: 0, DstY: 9, SrcSamples: 2, DstSamples: 1}

	got, err := ParamsFromBytes(p.Bytes())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = ParamsFromBytes(make([]byte, ParamsSize-1))
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParams_GroupCount(t *testing.T) {
	x, y, z := Params{Width: 1920, Height: 1081}.GroupCount()
	assert.Equal(t, [3]uint32{240, 136, 1}, [3]uint32{x, y, z})

	x, y, z = Params{Width: 0, Height: 8}.GroupCount()
	assert.Equal(t, [3]uint32{0, 0, 0}, [3]uint32{x, y, z})
}

func TestParams_KernelParams(t *testing.T) {
	kp := Params{SrcX: 1, SrcY: 2, Width: 3, Height: 4, DstX: 5, DstY: 6, SrcSamples: 8, DstSamples: 1}.kernelParams()

	assert.Equal(t, int32(3), kp.Width())
	assert.Equal(t, int32(4), kp.Height())
	assert.Equal(t, int32(8), kp.Pair().Src)
	assert.Equal(t, int32(1), kp.Pair().Dst)
}

func TestParams_Region(t *testing.T) {
	r := Region{SrcX: 1, SrcY: 2, DstX: 3, DstY: 4, Width: 5, Height: 6}
	assert.Equal(t, r, r.Params(Samples2, Samples2).Region())
}
