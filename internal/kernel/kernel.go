// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel implements the sample-adaptive depth/stencil copy kernel.
//
// The kernel is written as a per-invocation function, exactly as the compute
// shader in internal/gpu runs it: one invocation per destination pixel, each
// invocation owning every sample of that pixel. Dispatch and RunGroup emulate
// the 8x8x1 workgroup grid on the CPU.
//
// Sample-count adaptation, keyed on the (source, destination) pair:
//
//	src == dst  passthrough, dst[i] = src[i]
//	src >  dst  dst[i] = reduce(src[i*g : (i+1)*g]), g = src/dst
//	src <  dst  dst[i] = src[i % src]
//
// Pairs outside {1,2,4,8}x{1,2,4,8} are a no-op: nothing is read or written.
package kernel

// MaxSamples is the largest supported per-pixel sample count.
const MaxSamples = 8

// Source is a read-only multisampled surface.
type Source interface {
	At(x, y, sample int) uint32
}

// Dest is a write-only multisampled surface.
type Dest interface {
	Set(x, y, sample int, v uint32)
}

// Bindings mirrors the kernel's binding table: slot 0 is the destination,
// slot 1 the source.
type Bindings struct {
	Dst Dest
	Src Source
}

// Params is the kernel constant block: two 4-component integer vectors.
//
//	Src = (srcOffsetX, srcOffsetY, copyWidth, copyHeight)
//	Dst = (dstOffsetX, dstOffsetY, srcSampleCount, dstSampleCount)
type Params struct {
	Src [4]int32
	Dst [4]int32
}

// Width returns the copy width.
func (p *Params) Width() int32 { return p.Src[2] }

// Height returns the copy height.
func (p *Params) Height() int32 { return p.Src[3] }

// Pair returns the (source, destination) sample counts.
func (p *Params) Pair() Pair {
	return Pair{Src: p.Dst[2], Dst: p.Dst[3]}
}

// Invoke runs one kernel invocation for the global thread id.
//
// Threads outside (copyWidth, copyHeight) return without touching either
// surface; that guards grids padded up to the workgroup size.
func Invoke(id [3]uint32, p *Params, reduce Reducer, b Bindings) {
	if int64(id[0]) >= int64(p.Src[2]) || int64(id[1]) >= int64(p.Src[3]) {
		return
	}

	pair := p.Pair()
	adapt, ok := lookup(pair)
	if !ok {
		return
	}

	sx := int(id[0]) + int(p.Src[0])
	sy := int(id[1]) + int(p.Src[1])
	dx := int(id[0]) + int(p.Dst[0])
	dy := int(id[1]) + int(p.Dst[1])

	ns, nd := int(pair.Src), int(pair.Dst)

	var in, out [MaxSamples]uint32
	for s := 0; s < ns; s++ {
		in[s] = b.Src.At(sx, sy, s)
	}

	adapt(out[:nd], in[:ns], reduce)

	for s := 0; s < nd; s++ {
		b.Dst.Set(dx, dy, s, out[s])
	}
}
