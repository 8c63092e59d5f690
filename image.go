package mscopy

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Image is a multisampled 2D surface of raw 32-bit sample values.
//
// Samples are stored interleaved per pixel: the value of sample s at (x, y)
// lives at Data[(y*Width+x)*Samples + s]. The GPU dispatcher uploads Data in
// this layout unchanged.
type Image struct {
	Width   int
	Height  int
	Samples SampleCount

	// Format describes how the raw values are interpreted. The copy kernel
	// never looks at it.
	Format gputypes.TextureFormat

	Data []uint32
}

// NewImage allocates a zeroed image.
func NewImage(width, height int, samples SampleCount, format gputypes.TextureFormat) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidImage, width, height)
	}
	if !samples.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSampleCount, int(samples))
	}
	return &Image{
		Width:   width,
		Height:  height,
		Samples: samples,
		Format:  format,
		Data:    make([]uint32, width*height*int(samples)),
	}, nil
}

// Validate checks the dimensions, sample count and data length.
func (img *Image) Validate() error {
	if img == nil {
		return ErrNilImage
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	if !img.Samples.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedSampleCount, int(img.Samples))
	}
	if want := img.Width * img.Height * int(img.Samples); len(img.Data) != want {
		return fmt.Errorf("%w: data length %d, want %d", ErrInvalidImage, len(img.Data), want)
	}
	return nil
}

func (img *Image) index(x, y, s int) int {
	return (y*img.Width+x)*int(img.Samples) + s
}

// Contains reports whether (x, y) is inside the image.
func (img *Image) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < img.Width && y < img.Height
}

// At returns sample s of pixel (x, y). It panics if the coordinates are out
// of range.
func (img *Image) At(x, y, s int) uint32 {
	return img.Data[img.index(x, y, s)]
}

// Set stores v as sample s of pixel (x, y). It panics if the coordinates
// are out of range.
func (img *Image) Set(x, y, s int, v uint32) {
	img.Data[img.index(x, y, s)] = v
}

// Texel returns a copy of all samples of pixel (x, y).
func (img *Image) Texel(x, y int) []uint32 {
	i := img.index(x, y, 0)
	out := make([]uint32, img.Samples)
	copy(out, img.Data[i:i+int(img.Samples)])
	return out
}

// SetTexel stores the samples of pixel (x, y). Extra values are ignored,
// missing ones leave the remaining samples unchanged.
func (img *Image) SetTexel(x, y int, samples []uint32) {
	i := img.index(x, y, 0)
	n := min(len(samples), int(img.Samples))
	copy(img.Data[i:i+n], samples[:n])
}

// Fill sets every sample of every pixel to v.
func (img *Image) Fill(v uint32) {
	for i := range img.Data {
		img.Data[i] = v
	}
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	c := *img
	c.Data = make([]uint32, len(img.Data))
	copy(c.Data, img.Data)
	return &c
}

// Bytes returns the sample data as little-endian 32-bit words, the layout of
// the GPU storage buffers.
func (img *Image) Bytes() []byte {
	out := make([]byte, len(img.Data)*4)
	for i, v := range img.Data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// LoadBytes replaces the sample data with little-endian words read from b.
// b must hold exactly one word per sample.
func (img *Image) LoadBytes(b []byte) error {
	if len(b) != len(img.Data)*4 {
		return fmt.Errorf("%w: %d bytes for %d samples", ErrInvalidImage, len(b), len(img.Data))
	}
	for i := range img.Data {
		img.Data[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return nil
}
