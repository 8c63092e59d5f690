//go:build !nogpu

// Package gpu registers the wgpu/hal copy dispatcher.
//
// Import this package to run sample-adaptive copies as a compute shader:
//
//	import _ "github.com/gogpu/mscopy/gpu"
//
// If no GPU can be opened (no Vulkan driver, headless CI), copies silently
// run on the CPU kernel instead.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/mscopy"
	gpuimpl "github.com/gogpu/mscopy/internal/gpu"
)

func init() {
	if err := mscopy.RegisterDispatcher(&gpuimpl.Dispatcher{}); err != nil {
		mscopy.Logger().Warn("GPU copy dispatcher not available", "err", err)
	}
}

// SetDeviceProvider makes the dispatcher reuse a GPU device owned by an
// external provider (e.g., a gogpu window) instead of opening its own.
//
// The provider must also expose HalDevice() any and HalQueue() any returning
// wgpu/hal types.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return mscopy.SetDispatcherDeviceProvider(provider)
}
