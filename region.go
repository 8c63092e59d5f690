package mscopy

import "fmt"

// Region is a copy rectangle in pixel space.
// The source rectangle starts at (SrcX, SrcY), the destination at (DstX, DstY);
// both are Width x Height.
type Region struct {
	SrcX, SrcY int
	DstX, DstY int
	Width      int
	Height     int
}

// FullRegion returns a region covering all of img at the origin of both images.
func FullRegion(img *Image) Region {
	return Region{Width: img.Width, Height: img.Height}
}

// Validate checks the preconditions of a copy from src to dst: both images
// are well formed with supported sample counts, and the region is non-empty
// and fits inside both.
func (r Region) Validate(dst, src *Image) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyRegion, r.Width, r.Height)
	}
	if !fits(r.SrcX, r.SrcY, r.Width, r.Height, src) {
		return fmt.Errorf("%w: source rect (%d,%d %dx%d) in %dx%d image",
			ErrRegionOutOfBounds, r.SrcX, r.SrcY, r.Width, r.Height, src.Width, src.Height)
	}
	if !fits(r.DstX, r.DstY, r.Width, r.Height, dst) {
		return fmt.Errorf("%w: destination rect (%d,%d %dx%d) in %dx%d image",
			ErrRegionOutOfBounds, r.DstX, r.DstY, r.Width, r.Height, dst.Width, dst.Height)
	}
	return nil
}

func fits(x, y, w, h int, img *Image) bool {
	return x >= 0 && y >= 0 && w <= img.Width-x && h <= img.Height-y
}

// Params returns the constant block for copying r between images with the
// given sample counts.
func (r Region) Params(srcSamples, dstSamples SampleCount) Params {
	//nolint:gosec // validated regions fit int32
	return Params{
		SrcX: int32(r.SrcX), SrcY: int32(r.SrcY),
		Width: int32(r.Width), Height: int32(r.Height),
		DstX: int32(r.DstX), DstY: int32(r.DstY),
		SrcSamples: int32(srcSamples),
		DstSamples: int32(dstSamples),
	}
}
