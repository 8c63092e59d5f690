package mscopy

import (
	"fmt"
	"strconv"
)

// SampleCount is the number of samples per pixel of a multisampled surface.
type SampleCount int

// Supported sample counts.
const (
	Samples1 SampleCount = 1
	Samples2 SampleCount = 2
	Samples4 SampleCount = 4
	Samples8 SampleCount = 8
)

// Valid reports whether n is one of 1, 2, 4 or 8.
func (n SampleCount) Valid() bool {
	switch n {
	case Samples1, Samples2, Samples4, Samples8:
		return true
	default:
		return false
	}
}

// String returns the count as "Nx", e.g. "4x".
func (n SampleCount) String() string {
	return strconv.Itoa(int(n)) + "x"
}

// ParseSampleCount parses "4" or "4x".
func ParseSampleCount(s string) (SampleCount, error) {
	if len(s) > 1 && (s[len(s)-1] == 'x' || s[len(s)-1] == 'X') {
		s = s[:len(s)-1]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSampleCount, s)
	}
	n := SampleCount(v)
	if !n.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSampleCount, v)
	}
	return n, nil
}
