//go:build nogpu

// Package gpu is empty in nogpu builds; copies always run on the CPU.
package gpu

import "github.com/gogpu/gpucontext"

// SetDeviceProvider is a no-op in nogpu builds.
func SetDeviceProvider(gpucontext.DeviceProvider) error {
	return nil
}
