//go:build !nogpu

// Package gpu runs the sample-adaptive copy kernel as a wgpu/hal compute
// shader.
//
// The WGSL kernel in shaders/sample_copy.wgsl is the GPU twin of
// internal/kernel: same bounds test, same (src, dst) sample adaptation, same
// reduction policies. Surfaces are bound as storage buffers in the layout of
// mscopy.Image.Data, so upload and readback are plain byte copies.
package gpu

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/sample_copy.wgsl
var sampleCopyShaderSource string

// SampleCopyShaderSource returns the WGSL source of the copy kernel.
func SampleCopyShaderSource() string {
	return sampleCopyShaderSource
}

// compiledKernel compiles the copy kernel once per process. Switching to a
// shared device re-creates the pipeline but reuses the SPIR-V.
var compiledKernel = sync.OnceValues(func() ([]uint32, error) {
	return CompileShaderToSPIRV(sampleCopyShaderSource)
})

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// createShaderModule creates a HAL shader module from SPIR-V words.
func createShaderModule(device hal.Device, label string, spirvCode []uint32) (hal.ShaderModule, error) {
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirvCode,
		},
	})
}
