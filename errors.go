package mscopy

import "errors"

// Validation errors. A copy rejected with one of these leaves the
// destination untouched.
var (
	// ErrNilImage is returned when the source or destination is nil.
	ErrNilImage = errors.New("mscopy: image is nil")

	// ErrUnsupportedSampleCount is returned for sample counts outside {1, 2, 4, 8}.
	ErrUnsupportedSampleCount = errors.New("mscopy: unsupported sample count")

	// ErrEmptyRegion is returned when the copy width or height is not positive.
	ErrEmptyRegion = errors.New("mscopy: copy region is empty")

	// ErrRegionOutOfBounds is returned when the region does not fit an image.
	ErrRegionOutOfBounds = errors.New("mscopy: copy region out of bounds")

	// ErrInvalidImage is returned for non-positive image dimensions or a
	// data slice of the wrong length.
	ErrInvalidImage = errors.New("mscopy: invalid image")

	// ErrSampleMismatch is returned when a constant block's sample counts
	// differ from the images it is dispatched against.
	ErrSampleMismatch = errors.New("mscopy: constant block sample counts do not match images")

	// ErrInvalidParams is returned when a constant block cannot be decoded.
	ErrInvalidParams = errors.New("mscopy: invalid constant block")
)
