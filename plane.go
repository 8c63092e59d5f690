package mscopy

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/tiff"
)

// SamplePlane extracts sample s of every pixel as a 16-bit gray image.
//
// For Depth24PlusStencil8 the 16 most significant depth bits are kept and
// stencil is dropped; for other formats the high half of the raw word is
// used.
func SamplePlane(img *Image, s int) (*image.Gray16, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if s < 0 || s >= int(img.Samples) {
		return nil, fmt.Errorf("mscopy: sample %d out of range for %v image", s, img.Samples)
	}

	out := image.NewGray16(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetGray16(x, y, color.Gray16{Y: planeValue(img.Format, img.At(x, y, s))})
		}
	}
	return out, nil
}

func planeValue(format gputypes.TextureFormat, v uint32) uint16 {
	if format == gputypes.TextureFormatDepth24PlusStencil8 {
		return uint16((v & 0x00FFFFFF) >> 8) //nolint:gosec // 16 bits after shift
	}
	return uint16(v >> 16) //nolint:gosec // 16 bits after shift
}

// EncodeSampleTIFF writes sample s of img to w as a deflate-compressed
// 16-bit grayscale TIFF.
func EncodeSampleTIFF(w io.Writer, img *Image, s int) error {
	plane, err := SamplePlane(img, s)
	if err != nil {
		return err
	}
	return tiff.Encode(w, plane, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}
