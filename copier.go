package mscopy

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/mscopy/internal/kernel"
	"github.com/gogpu/mscopy/internal/parallel"
)

// ErrOverlappingRegion is returned when source and destination are the same
// image and the two rectangles intersect.
var ErrOverlappingRegion = errors.New("mscopy: source and destination rectangles overlap")

// Copier runs sample-adaptive copies.
//
// A Copier owns a CPU worker pool and is safe for concurrent use as long as
// concurrent copies write to different destination images. Close releases
// the pool.
type Copier struct {
	policy Policy
	useGPU bool
	pool   *parallel.WorkerPool
}

// NewCopier creates a Copier.
func NewCopier(opts ...CopierOption) *Copier {
	o := defaultCopierOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Copier{
		policy: o.policy,
		useGPU: o.useGPU,
		pool:   parallel.NewWorkerPool(o.workers),
	}
}

// Policy returns the downsample reduction policy.
func (c *Copier) Policy() Policy {
	return c.policy
}

// Close stops the CPU workers. The Copier must not be used afterwards.
func (c *Copier) Close() {
	c.pool.Close()
}

// Copy copies region r from src to dst, adapting sample counts.
//
// The region and both images are validated first; on a validation error
// dst is not modified. If a Dispatcher is registered it is tried before the
// CPU kernel.
func (c *Copier) Copy(ctx context.Context, dst, src *Image, r Region) error {
	if err := validateCopy(dst, src, r); err != nil {
		return err
	}
	return c.dispatch(ctx, dst, src, r.Params(src.Samples, dst.Samples))
}

// CopyRegions copies each region in order, one dispatch per region.
// All regions are validated before anything is written.
func (c *Copier) CopyRegions(ctx context.Context, dst, src *Image, regions ...Region) error {
	for i, r := range regions {
		if err := validateCopy(dst, src, r); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	for i, r := range regions {
		if err := c.dispatch(ctx, dst, src, r.Params(src.Samples, dst.Samples)); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	return nil
}

// CopyParams runs one dispatch described by a raw constant block, for
// example one decoded with ParamsFromBytes. The block's sample counts must
// match src and dst.
func (c *Copier) CopyParams(ctx context.Context, dst, src *Image, p Params) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if p.SrcSamples != int32(src.Samples) || p.DstSamples != int32(dst.Samples) { //nolint:gosec // sample counts are small
		return fmt.Errorf("%w: block %d->%d, images %v->%v",
			ErrSampleMismatch, p.SrcSamples, p.DstSamples, src.Samples, dst.Samples)
	}
	if err := validateCopy(dst, src, p.Region()); err != nil {
		return err
	}
	return c.dispatch(ctx, dst, src, p)
}

func validateCopy(dst, src *Image, r Region) error {
	if err := r.Validate(dst, src); err != nil {
		return err
	}
	if dst == src {
		a := image.Rect(r.SrcX, r.SrcY, r.SrcX+r.Width, r.SrcY+r.Height)
		b := image.Rect(r.DstX, r.DstY, r.DstX+r.Width, r.DstY+r.Height)
		if a.Overlaps(b) {
			return ErrOverlappingRegion
		}
	}
	return nil
}

func (c *Copier) dispatch(ctx context.Context, dst, src *Image, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.useGPU {
		if d := CurrentDispatcher(); d != nil {
			err := d.Dispatch(ctx, DispatchJob{Dst: dst, Src: src, Params: p, Policy: c.policy})
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrFallbackToCPU) {
				Logger().Debug("mscopy: dispatcher declined copy", "dispatcher", d.Name())
			} else {
				Logger().Warn("mscopy: dispatcher failed, falling back to CPU",
					"dispatcher", d.Name(), "err", err)
			}
		}
	}

	return c.copyCPU(ctx, dst, src, p)
}

// copyCPU runs the kernel grid on the worker pool, one job per row of
// workgroups.
func (c *Copier) copyCPU(ctx context.Context, dst, src *Image, p Params) error {
	kp := p.kernelParams()
	gx, gy, _ := p.GroupCount()
	reduce := c.policy.reducer()
	b := kernel.Bindings{Dst: dst, Src: src}

	Logger().Debug("mscopy: cpu dispatch",
		"groups_x", gx, "groups_y", gy,
		"src_samples", p.SrcSamples, "dst_samples", p.DstSamples,
		"policy", c.policy.String())

	return c.pool.Run(ctx, int(gy), func(row int) {
		for x := range gx {
			kernel.RunGroup(x, uint32(row), &kp, reduce, b) //nolint:gosec // row < gy
		}
	})
}
