package mscopy

import (
	"context"
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the dispatcher cannot run this copy.
// The Copier falls back to the CPU kernel.
var ErrFallbackToCPU = errors.New("mscopy: falling back to CPU copy")

// DispatchJob is one validated copy handed to a Dispatcher.
type DispatchJob struct {
	Dst    *Image
	Src    *Image
	Params Params
	Policy Policy
}

// Dispatcher runs the copy kernel on an accelerator.
//
// Implementations live in backend packages and register themselves on
// import:
//
//	import _ "github.com/gogpu/mscopy/gpu"
//
// Dispatch must either complete the whole copy or leave the destination
// untouched; the Copier relies on that when it falls back to the CPU.
type Dispatcher interface {
	// Name returns the dispatcher name (e.g., "wgpu-hal").
	Name() string

	// Init acquires device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// Dispatch executes the job. Returns ErrFallbackToCPU when the job
	// cannot run on this dispatcher.
	Dispatch(ctx context.Context, job DispatchJob) error
}

// DeviceProviderAware is implemented by dispatchers that can reuse a GPU
// device owned by someone else (for example a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	dispatcherMu sync.RWMutex
	dispatcher   Dispatcher
)

// RegisterDispatcher installs d as the dispatcher used by every Copier.
//
// d.Init is called first; if it fails, nothing is registered and the error
// is returned. A previously registered dispatcher is closed.
func RegisterDispatcher(d Dispatcher) error {
	if d == nil {
		return errors.New("mscopy: dispatcher must not be nil")
	}
	if err := d.Init(); err != nil {
		return err
	}
	propagateLogger(d, Logger())

	dispatcherMu.Lock()
	old := dispatcher
	dispatcher = d
	dispatcherMu.Unlock()
	if old != nil && old != d {
		old.Close()
	}
	return nil
}

// UnregisterDispatcher closes and removes the registered dispatcher, if any.
func UnregisterDispatcher() {
	dispatcherMu.Lock()
	old := dispatcher
	dispatcher = nil
	dispatcherMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// CurrentDispatcher returns the registered dispatcher, or nil.
func CurrentDispatcher() Dispatcher {
	dispatcherMu.RLock()
	d := dispatcher
	dispatcherMu.RUnlock()
	return d
}

// SetDispatcherDeviceProvider passes a device provider to the registered
// dispatcher. It is a no-op when no dispatcher is registered or the
// dispatcher cannot share devices.
func SetDispatcherDeviceProvider(provider any) error {
	d := CurrentDispatcher()
	if d == nil {
		return nil
	}
	if dpa, ok := d.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
