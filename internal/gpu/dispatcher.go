//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mscopy"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Dispatcher runs copies on a wgpu/hal device. It implements
// mscopy.Dispatcher and mscopy.DeviceProviderAware.
//
// If no GPU can be opened, Init still succeeds and every Dispatch returns
// mscopy.ErrFallbackToCPU.
type Dispatcher struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	copier   *Copier

	gpuReady       bool
	externalDevice bool // shared device, not destroyed on Close
}

var (
	_ mscopy.Dispatcher          = (*Dispatcher)(nil)
	_ mscopy.DeviceProviderAware = (*Dispatcher)(nil)
)

// Name returns "wgpu-hal".
func (d *Dispatcher) Name() string { return "wgpu-hal" }

// SetLogger receives the logger propagated by mscopy.SetLogger.
func (d *Dispatcher) SetLogger(l *slog.Logger) { setLogger(l) }

// Init opens the first Vulkan adapter, preferring discrete and integrated
// GPUs. A failure is logged and leaves the dispatcher in fallback mode.
func (d *Dispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.initGPU(); err != nil {
		slogger().Warn("mscopy-gpu: GPU init failed, using CPU fallback", "err", err)
		d.releaseOwned()
	}
	return nil
}

func (d *Dispatcher) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	d.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue

	copier, err := NewCopier(d.device, d.queue)
	if err != nil {
		return err
	}
	d.copier = copier
	d.gpuReady = true
	slogger().Info("mscopy-gpu: dispatcher initialized", "adapter", selected.Info.Name)
	return nil
}

// releaseOwned destroys everything this dispatcher created itself.
// The caller must hold d.mu.
func (d *Dispatcher) releaseOwned() {
	if d.copier != nil {
		d.copier.Destroy()
		d.copier = nil
	}
	if !d.externalDevice && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.device = nil
	d.queue = nil
	d.gpuReady = false
	d.externalDevice = false
}

// Close releases GPU resources. A shared device is left alive.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseOwned()
}

// Ready reports whether copies can run on the GPU.
func (d *Dispatcher) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gpuReady
}

// SetDeviceProvider switches to a device owned by provider. The provider
// must be a gpucontext.DeviceProvider that also exposes HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (d *Dispatcher) SetDeviceProvider(provider any) error {
	if _, ok := provider.(gpucontext.DeviceProvider); !ok {
		return fmt.Errorf("mscopy-gpu: provider is not a gpucontext.DeviceProvider")
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("mscopy-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("mscopy-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("mscopy-gpu: provider HalQueue is not hal.Queue")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseOwned()
	d.device = device
	d.queue = queue
	d.externalDevice = true

	copier, err := NewCopier(device, queue)
	if err != nil {
		return fmt.Errorf("mscopy-gpu: create pipeline on shared device: %w", err)
	}
	d.copier = copier
	d.gpuReady = true
	slogger().Info("mscopy-gpu: switched to shared GPU device")
	return nil
}

// Dispatch runs job on the GPU. It returns mscopy.ErrFallbackToCPU when no
// device is available or the job cannot be expressed by the shader.
func (d *Dispatcher) Dispatch(ctx context.Context, job mscopy.DispatchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	ready, copier := d.gpuReady, d.copier
	d.mu.Unlock()

	if !ready || copier == nil {
		return mscopy.ErrFallbackToCPU
	}
	if job.Dst == nil || job.Src == nil || len(job.Src.Data) == 0 || len(job.Dst.Data) == 0 {
		return mscopy.ErrFallbackToCPU
	}
	if job.Policy.Mode > mscopy.ReduceSelect {
		return mscopy.ErrFallbackToCPU
	}
	return copier.Copy(job)
}
