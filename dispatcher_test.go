package mscopy

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// mockDispatcher is a configurable Dispatcher for tests.
type mockDispatcher struct {
	name    string
	initErr error

	// dispatch, when set, runs instead of returning dispatchErr.
	dispatch    func(job DispatchJob) error
	dispatchErr error

	mu       sync.Mutex
	calls    int
	closed   bool
	logger   *slog.Logger
	provider any
}

func (m *mockDispatcher) Name() string { return m.name }
func (m *mockDispatcher) Init() error  { return m.initErr }

func (m *mockDispatcher) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockDispatcher) Dispatch(_ context.Context, job DispatchJob) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.dispatch != nil {
		return m.dispatch(job)
	}
	return m.dispatchErr
}

func (m *mockDispatcher) SetLogger(l *slog.Logger) {
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

func (m *mockDispatcher) getLogger() *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}

func (m *mockDispatcher) SetDeviceProvider(p any) error {
	m.mu.Lock()
	m.provider = p
	m.mu.Unlock()
	return nil
}

func (m *mockDispatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockDispatcher) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// bareDispatcher implements only Dispatcher.
type bareDispatcher struct{}

func (bareDispatcher) Name() string                                { return "bare" }
func (bareDispatcher) Init() error                                 { return nil }
func (bareDispatcher) Close()                                      {}
func (bareDispatcher) Dispatch(context.Context, DispatchJob) error { return ErrFallbackToCPU }

// resetDispatcher clears the global dispatcher without closing it.
func resetDispatcher() {
	dispatcherMu.Lock()
	dispatcher = nil
	dispatcherMu.Unlock()
}

func TestRegisterDispatcher(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	mock := &mockDispatcher{name: "test"}
	if err := RegisterDispatcher(mock); err != nil {
		t.Fatalf("RegisterDispatcher() = %v", err)
	}
	if CurrentDispatcher() != mock {
		t.Error("CurrentDispatcher() should return the registered dispatcher")
	}
}

func TestRegisterDispatcherNil(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	if err := RegisterDispatcher(nil); err == nil {
		t.Error("RegisterDispatcher(nil) should fail")
	}
	if CurrentDispatcher() != nil {
		t.Error("nil dispatcher must not be registered")
	}
}

func TestRegisterDispatcherInitError(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	initErr := errors.New("no device")
	if err := RegisterDispatcher(&mockDispatcher{name: "broken", initErr: initErr}); !errors.Is(err, initErr) {
		t.Errorf("RegisterDispatcher() = %v, want %v", err, initErr)
	}
	if CurrentDispatcher() != nil {
		t.Error("dispatcher with failing Init must not be registered")
	}
}

func TestRegisterDispatcherClosesPrevious(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	first := &mockDispatcher{name: "first"}
	second := &mockDispatcher{name: "second"}
	if err := RegisterDispatcher(first); err != nil {
		t.Fatal(err)
	}
	if err := RegisterDispatcher(second); err != nil {
		t.Fatal(err)
	}

	if !first.isClosed() {
		t.Error("previous dispatcher should be closed on replacement")
	}
	if second.isClosed() {
		t.Error("new dispatcher must stay open")
	}
}

func TestUnregisterDispatcher(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	mock := &mockDispatcher{name: "test"}
	if err := RegisterDispatcher(mock); err != nil {
		t.Fatal(err)
	}
	UnregisterDispatcher()

	if CurrentDispatcher() != nil {
		t.Error("CurrentDispatcher() should be nil after UnregisterDispatcher")
	}
	if !mock.isClosed() {
		t.Error("UnregisterDispatcher should close the dispatcher")
	}

	// No dispatcher: must not panic.
	UnregisterDispatcher()
}

func TestSetDispatcherDeviceProvider(t *testing.T) {
	t.Cleanup(resetDispatcher)
	resetDispatcher()

	if err := SetDispatcherDeviceProvider("provider"); err != nil {
		t.Errorf("without dispatcher: %v, want nil", err)
	}

	mock := &mockDispatcher{name: "aware"}
	if err := RegisterDispatcher(mock); err != nil {
		t.Fatal(err)
	}
	if err := SetDispatcherDeviceProvider("provider"); err != nil {
		t.Fatalf("SetDispatcherDeviceProvider() = %v", err)
	}
	if mock.provider != "provider" {
		t.Errorf("provider = %v, want %q", mock.provider, "provider")
	}

	if err := RegisterDispatcher(bareDispatcher{}); err != nil {
		t.Fatal(err)
	}
	if err := SetDispatcherDeviceProvider("provider"); err != nil {
		t.Errorf("non-aware dispatcher: %v, want nil", err)
	}
}
