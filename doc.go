// Package mscopy copies per-sample data between multisampled depth/stencil
// surfaces whose sample counts may differ.
//
// # Overview
//
// A copy reads every sample of a source texel and produces every sample of
// the matching destination texel. When the counts differ the samples are
// adapted:
//
//	src == dst  each sample is copied as is
//	src >  dst  contiguous groups of src/dst samples are reduced to one value
//	src <  dst  destination sample i takes source sample i % src
//
// Values are opaque uint32 bit patterns (for Depth24PlusStencil8, depth in
// the low 24 bits and stencil in the high 8). Reduction compares the raw
// patterns numerically.
//
// # Quick Start
//
//	src, _ := mscopy.NewImage(64, 64, mscopy.Samples8, gputypes.TextureFormatDepth24PlusStencil8)
//	dst, _ := mscopy.NewImage(64, 64, mscopy.Samples4, gputypes.TextureFormatDepth24PlusStencil8)
//
//	c := mscopy.NewCopier()
//	defer c.Close()
//
//	err := c.Copy(ctx, dst, src, mscopy.Region{Width: 64, Height: 64})
//
// # Reduction Policy
//
// Which value survives a downsample is a policy decision. [PolicyMin] keeps
// the nearest depth for a standard depth range, [PolicyMax] does the same
// for reversed Z, and [SelectSample] keeps one fixed sample of each group.
// [ConservativePolicy] picks between the first two. The default is
// [PolicyMin].
//
// # Execution
//
// The kernel runs as a grid of 8x8 workgroups, one invocation per
// destination pixel. Without a GPU the grid is executed by a worker pool.
// Importing the gpu sub-package registers a wgpu/hal compute dispatcher:
//
//	import _ "github.com/gogpu/mscopy/gpu"
//
// If the dispatcher cannot run a copy it returns [ErrFallbackToCPU] and the
// copy transparently runs on the CPU.
//
// # Validation
//
// The kernel itself never reports errors: unsupported sample counts are a
// silent no-op and out-of-range threads are skipped. [Copier] validates
// sample counts and region bounds before dispatch, so a rejected copy never
// touches the destination.
package mscopy
