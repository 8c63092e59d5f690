package mscopy

import (
	"bytes"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestSamplePlane_Depth24Stencil8(t *testing.T) {
	img, err := NewImage(2, 1, Samples2, gputypes.TextureFormatDepth24PlusStencil8)
	require.NoError(t, err)
	img.SetTexel(0, 0, []uint32{0xFF123456, 0x00ABCDEF})
	img.SetTexel(1, 0, []uint32{0x00FFFFFF, 0})

	p0, err := SamplePlane(img, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), p0.Gray16At(0, 0).Y, "stencil byte must be dropped")
	assert.Equal(t, uint16(0xFFFF), p0.Gray16At(1, 0).Y)

	p1, err := SamplePlane(img, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), p1.Gray16At(0, 0).Y)
}

func TestSamplePlane_RawFormat(t *testing.T) {
	img, _ := NewImage(1, 1, Samples1, gputypes.TextureFormatUndefined)
	img.Set(0, 0, 0, 0xCAFE0001)

	p, err := SamplePlane(img, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xCAFE), p.Gray16At(0, 0).Y)
}

func TestSamplePlane_Errors(t *testing.T) {
	img, _ := NewImage(1, 1, Samples2, gputypes.TextureFormatUndefined)

	_, err := SamplePlane(img, 2)
	assert.Error(t, err)
	_, err = SamplePlane(img, -1)
	assert.Error(t, err)
	_, err = SamplePlane(nil, 0)
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestEncodeSampleTIFF(t *testing.T) {
	img, _ := NewImage(8, 4, Samples4, gputypes.TextureFormatDepth24PlusStencil8)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Set(x, y, 3, uint32(x*0x1000+y*0x100)<<8) //nolint:gosec // test pattern
		}
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeSampleTIFF(&buf, img, 3))

	decoded, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), decoded.Bounds())

	gray, ok := decoded.(*image.Gray16)
	require.True(t, ok, "decoded %T, want *image.Gray16", decoded)
	want, _ := SamplePlane(img, 3)
	assert.Equal(t, want.Pix, gray.Pix)
}
