package kernel

import "fmt"

// Pair is a (source, destination) sample-count combination.
type Pair struct {
	Src int32
	Dst int32
}

// String returns the pair as "src->dst".
func (p Pair) String() string {
	return fmt.Sprintf("%d->%d", p.Src, p.Dst)
}

// Supported reports whether the kernel has an adaptation for the pair.
func (p Pair) Supported() bool {
	_, ok := lookup(p)
	return ok
}

// Reducer folds a contiguous group of source samples into one value.
// The group is never empty.
type Reducer func(group []uint32) uint32

// Min keeps the numerically smallest raw value of the group.
func Min(group []uint32) uint32 {
	v := group[0]
	for _, s := range group[1:] {
		v = min(v, s)
	}
	return v
}

// Max keeps the numerically largest raw value of the group.
func Max(group []uint32) uint32 {
	v := group[0]
	for _, s := range group[1:] {
		v = max(v, s)
	}
	return v
}

// Select returns a Reducer that keeps the sample at index i within each
// group. Indices past the end of the group clamp to its last sample.
func Select(i int) Reducer {
	return func(group []uint32) uint32 {
		return group[clampIndex(i, len(group))]
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// adaptFunc writes len(dst) destination samples from len(src) source samples.
type adaptFunc func(dst, src []uint32, reduce Reducer)

func passthrough(dst, src []uint32, _ Reducer) {
	copy(dst, src)
}

func downsample(dst, src []uint32, reduce Reducer) {
	if reduce == nil {
		reduce = Min
	}
	g := len(src) / len(dst)
	for i := range dst {
		dst[i] = reduce(src[i*g : (i+1)*g])
	}
}

func upsample(dst, src []uint32, _ Reducer) {
	for i := range dst {
		dst[i] = src[i%len(src)]
	}
}

// table is indexed by log2 of the source and destination sample counts.
var table [4][4]adaptFunc

func init() {
	for s := range table {
		for d := range table[s] {
			switch {
			case s == d:
				table[s][d] = passthrough
			case s > d:
				table[s][d] = downsample
			default:
				table[s][d] = upsample
			}
		}
	}
}

// log2Samples maps a supported sample count to its table index.
func log2Samples(n int32) (int, bool) {
	switch n {
	case 1:
		return 0, true
	case 2:
		return 1, true
	case 4:
		return 2, true
	case 8:
		return 3, true
	default:
		return 0, false
	}
}

func lookup(p Pair) (adaptFunc, bool) {
	s, ok := log2Samples(p.Src)
	if !ok {
		return nil, false
	}
	d, ok := log2Samples(p.Dst)
	if !ok {
		return nil, false
	}
	return table[s][d], true
}
