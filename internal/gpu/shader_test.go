//go:build !nogpu

package gpu

import (
	"strings"
	"testing"
)

const spirvMagic = 0x07230203

// skipOnNagaLimitation skips when the WGSL frontend reports a feature it
// does not implement yet.
func skipOnNagaLimitation(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
	if strings.Contains(msg, "lowering error") {
		t.Skipf("Skipping: naga lowering limitation: %v", err)
	}
}

func TestSampleCopyShaderSource(t *testing.T) {
	src := SampleCopyShaderSource()
	if src == "" {
		t.Fatal("sample copy shader source is empty")
	}

	for _, want := range []string{
		"@workgroup_size(8, 8, 1)",
		"struct CopyParams",
		"@group(0) @binding(0)",
		"@group(0) @binding(1)",
		"@group(0) @binding(2)",
		"fn main(",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source missing %q", want)
		}
	}
}

func TestSampleCopyShaderCompilation(t *testing.T) {
	spirv, err := CompileShaderToSPIRV(sampleCopyShaderSource)
	if err != nil {
		skipOnNagaLimitation(t, err)
		t.Fatalf("failed to compile sample copy shader: %v", err)
	}

	if len(spirv) == 0 {
		t.Fatal("SPIR-V output is empty")
	}
	if spirv[0] != spirvMagic {
		t.Errorf("SPIR-V magic = %#x, want %#x", spirv[0], spirvMagic)
	}
}

func TestCompileShaderToSPIRV_Invalid(t *testing.T) {
	if _, err := CompileShaderToSPIRV("fn main( {"); err == nil {
		t.Error("expected error for malformed WGSL")
	}
}
