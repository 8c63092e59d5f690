//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mscopy"
)

// uniformSize is sizeof(CopyParams) in sample_copy.wgsl: three 16-byte vectors.
const uniformSize = 48

// fenceTimeout bounds the wait for one copy to finish on the GPU.
const fenceTimeout = 5 * time.Second

// ErrCopierNotInitialized is returned by Copy after Destroy or a failed init.
var ErrCopierNotInitialized = errors.New("mscopy-gpu: copier not initialized")

// Copier owns the compute pipeline of the copy kernel on one HAL device.
//
// Copy is synchronous: it uploads both surfaces, dispatches one compute pass,
// waits on a fence and reads the destination back. The destination image is
// only modified after a successful readback.
type Copier struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule   hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline

	// spirvCode is kept for inspection.
	spirvCode []uint32

	initialized bool
}

// NewCopier compiles the kernel and creates its pipeline on device.
func NewCopier(device hal.Device, queue hal.Queue) (*Copier, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("mscopy-gpu: device and queue are required")
	}

	c := &Copier{device: device, queue: queue}
	if err := c.init(); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Copier) init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	spirvCode, err := compiledKernel()
	if err != nil {
		return fmt.Errorf("mscopy-gpu: %w", err)
	}
	c.spirvCode = spirvCode

	shaderModule, err := createShaderModule(c.device, "sample_copy_shader", spirvCode)
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create shader module: %w", err)
	}
	c.shaderModule = shaderModule

	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sample_copy_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create bind group layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipelineLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sample_copy_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create pipeline layout: %w", err)
	}
	c.pipelineLayout = pipelineLayout

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "sample_copy_pipeline",
		Layout: c.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     c.shaderModule,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create compute pipeline: %w", err)
	}
	c.pipeline = pipeline

	c.initialized = true
	return nil
}

// IsInitialized reports whether the pipeline is ready.
func (c *Copier) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// SPIRVCode returns the compiled kernel.
func (c *Copier) SPIRVCode() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spirvCode
}

// packUniform serializes CopyParams for the uniform buffer.
func packUniform(job mscopy.DispatchJob) []byte {
	buf := make([]byte, uniformSize)
	copy(buf, job.Params.Bytes())
	binary.LittleEndian.PutUint32(buf[32:], uint32(job.Src.Width)) //nolint:gosec // image widths fit uint32
	binary.LittleEndian.PutUint32(buf[36:], uint32(job.Dst.Width)) //nolint:gosec // image widths fit uint32
	binary.LittleEndian.PutUint32(buf[40:], uint32(job.Policy.Mode))
	binary.LittleEndian.PutUint32(buf[44:], uint32(max(job.Policy.Sample, 0))) //nolint:gosec // clamped non-negative
	return buf
}

// gpuBuffers holds the per-copy buffers.
type gpuBuffers struct {
	uniform hal.Buffer
	src     hal.Buffer
	dst     hal.Buffer
	staging hal.Buffer
}

func (c *Copier) destroyBuffers(b *gpuBuffers) {
	for _, buf := range []hal.Buffer{b.uniform, b.src, b.dst, b.staging} {
		if buf != nil {
			c.device.DestroyBuffer(buf)
		}
	}
}

func (c *Copier) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("mscopy-gpu: create %s buffer: %w", label, err)
	}
	return buf, nil
}

// Copy runs job on the GPU and writes the result into job.Dst.
func (c *Copier) Copy(job mscopy.DispatchJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrCopierNotInitialized
	}

	gx, gy, gz := job.Params.GroupCount()
	if gx == 0 || gy == 0 {
		return nil
	}

	srcBytes := job.Src.Bytes()
	dstBytes := job.Dst.Bytes()
	dstSize := uint64(len(dstBytes))

	var bufs gpuBuffers
	defer c.destroyBuffers(&bufs)

	var err error
	if bufs.uniform, err = c.createBuffer("sample_copy_params", uniformSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	if bufs.src, err = c.createBuffer("sample_copy_src", uint64(len(srcBytes)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	if bufs.dst, err = c.createBuffer("sample_copy_dst", dstSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}
	if bufs.staging, err = c.createBuffer("sample_copy_staging", dstSize,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst); err != nil {
		return err
	}

	c.queue.WriteBuffer(bufs.uniform, 0, packUniform(job))
	c.queue.WriteBuffer(bufs.src, 0, srcBytes)
	// Texels outside the region must survive the readback.
	c.queue.WriteBuffer(bufs.dst, 0, dstBytes)

	bindGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sample_copy_bind",
		Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.uniform.NativeHandle(), Offset: 0, Size: uniformSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: bufs.src.NativeHandle(), Offset: 0, Size: uint64(len(srcBytes))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: bufs.dst.NativeHandle(), Offset: 0, Size: dstSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create bind group: %w", err)
	}
	defer c.device.DestroyBindGroup(bindGroup)

	readback, err := c.submit(bindGroup, bufs, gx, gy, gz, dstSize)
	if err != nil {
		return err
	}

	slogger().Debug("mscopy-gpu: copy complete",
		"groups_x", gx, "groups_y", gy,
		"src_samples", job.Params.SrcSamples, "dst_samples", job.Params.DstSamples)

	return job.Dst.LoadBytes(readback)
}

// submit records one compute pass plus the staging copy, waits for it and
// returns the destination bytes.
func (c *Copier) submit(bindGroup hal.BindGroup, bufs gpuBuffers, gx, gy, gz uint32, dstSize uint64) ([]byte, error) {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "sample_copy_encoder"})
	if err != nil {
		return nil, fmt.Errorf("mscopy-gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sample_copy"); err != nil {
		return nil, fmt.Errorf("mscopy-gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "sample_copy_pass"})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(gx, gy, gz)
	pass.End()

	encoder.CopyBufferToBuffer(bufs.dst, bufs.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: dstSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("mscopy-gpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("mscopy-gpu: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("mscopy-gpu: submit: %w", err)
	}
	ok, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return nil, fmt.Errorf("mscopy-gpu: wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, dstSize)
	if err := c.queue.ReadBuffer(bufs.staging, 0, readback); err != nil {
		return nil, fmt.Errorf("mscopy-gpu: readback: %w", err)
	}
	return readback, nil
}

// Destroy releases the pipeline objects. The device is not destroyed.
func (c *Copier) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return
	}
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipelineLayout != nil {
		c.device.DestroyPipelineLayout(c.pipelineLayout)
		c.pipelineLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shaderModule != nil {
		c.device.DestroyShaderModule(c.shaderModule)
		c.shaderModule = nil
	}
	c.initialized = false
}
