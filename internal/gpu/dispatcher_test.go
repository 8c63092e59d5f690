//go:build !nogpu

package gpu

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/mscopy"
)

// Mock gpucontext types.
type mockDevice struct{}

func (mockDevice) Poll(bool) {}
func (mockDevice) Destroy()  {}

type (
	mockQueue   struct{}
	mockAdapter struct{}
)

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return mockDevice{} }
func (mockProvider) Queue() gpucontext.Queue               { return mockQueue{} }
func (mockProvider) Adapter() gpucontext.Adapter           { return mockAdapter{} }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

// halMockProvider exposes HAL accessors returning the wrong types.
type halMockProvider struct {
	mockProvider
	device any
	queue  any
}

func (p halMockProvider) HalDevice() any { return p.device }
func (p halMockProvider) HalQueue() any  { return p.queue }

func TestDispatcher_Name(t *testing.T) {
	d := &Dispatcher{}
	if d.Name() != "wgpu-hal" {
		t.Errorf("Name() = %q, want %q", d.Name(), "wgpu-hal")
	}
}

func TestDispatcher_NotReadyFallsBack(t *testing.T) {
	d := &Dispatcher{}
	if d.Ready() {
		t.Fatal("zero Dispatcher should not be ready")
	}

	img, _ := mscopy.NewImage(4, 4, mscopy.Samples1, gputypes.TextureFormatDepth24PlusStencil8)
	job := mscopy.DispatchJob{Dst: img.Clone(), Src: img, Params: mscopy.FullRegion(img).Params(1, 1)}

	if err := d.Dispatch(context.Background(), job); !errors.Is(err, mscopy.ErrFallbackToCPU) {
		t.Errorf("Dispatch() = %v, want ErrFallbackToCPU", err)
	}
}

func TestDispatcher_CancelledContext(t *testing.T) {
	d := &Dispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Dispatch(ctx, mscopy.DispatchJob{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Dispatch() = %v, want context.Canceled", err)
	}
}

func TestDispatcher_SetDeviceProviderRejects(t *testing.T) {
	tests := []struct {
		name     string
		provider any
	}{
		{"not a provider", "device"},
		{"no hal accessors", mockProvider{}},
		{"wrong hal device", halMockProvider{device: 1, queue: 2}},
		{"nil hal device", halMockProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Dispatcher{}
			if err := d.SetDeviceProvider(tt.provider); err == nil {
				t.Error("expected error")
			}
			if d.Ready() {
				t.Error("dispatcher must stay in fallback mode")
			}
		})
	}
}

func TestDispatcher_SetDeviceProviderNoop(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d := &Dispatcher{}
	err := d.SetDeviceProvider(halMockProvider{device: device, queue: queue})
	if err != nil {
		skipOnNagaLimitation(t, err)
		t.Fatalf("SetDeviceProvider() = %v", err)
	}
	if !d.Ready() {
		t.Error("dispatcher should be ready on a shared device")
	}

	// Close must leave the shared device alive.
	d.Close()
	if d.Ready() {
		t.Error("dispatcher should not be ready after Close")
	}
	if _, err := NewCopier(device, queue); err != nil {
		t.Errorf("shared device unusable after Close: %v", err)
	}
}

func TestDispatcher_SetLogger(t *testing.T) {
	t.Cleanup(func() { setLogger(nil) })

	var buf bytes.Buffer
	d := &Dispatcher{}
	d.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	slogger().Debug("gpu log line")
	if !bytes.Contains(buf.Bytes(), []byte("gpu log line")) {
		t.Errorf("log output = %q", buf.String())
	}

	setLogger(nil)
	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("setLogger(nil) should restore the silent logger")
	}
}
