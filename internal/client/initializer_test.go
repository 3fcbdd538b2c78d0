package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/awibisono/arsipdrive/internal/config"
	"github.com/awibisono/arsipdrive/internal/sdk"
	apptest "github.com/awibisono/arsipdrive/internal/testing"
	"github.com/awibisono/arsipdrive/internal/testing/mocks"
	"github.com/awibisono/arsipdrive/internal/utils"
)

func newTestInitializer(cfg *config.Config, handle *mocks.MockHandle, timeout time.Duration) (*Initializer, *int32) {
	var factoryCalls int32
	loader := sdk.NewLoaderWith(sdk.NewRegistry(), func() (sdk.Handle, error) {
		atomic.AddInt32(&factoryCalls, 1)
		return handle, nil
	}, nil)
	modules := sdk.NewModuleLoader(timeout/2, nil)
	return NewInitializer(cfg, loader, modules, timeout, nil), &factoryCalls
}

func TestInitializeHappyPath(t *testing.T) {
	handle := mocks.NewMockHandle()
	init, _ := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	if err := init.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if init.State() != StateReady {
		t.Errorf("state = %s, want ready", init.State())
	}
	if init.Handle() == nil {
		t.Error("handle not recorded after successful init")
	}
	if handle.ClientModule().InitCalls != 1 {
		t.Errorf("client handshake ran %d times, want 1", handle.ClientModule().InitCalls)
	}
	if handle.AuthModule().InitCalls != 1 {
		t.Errorf("auth handshake ran %d times, want 1", handle.AuthModule().InitCalls)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	handle := mocks.NewMockHandle()
	init, factoryCalls := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	for n := 0; n < 3; n++ {
		if err := init.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize %d failed: %v", n, err)
		}
	}

	if got := atomic.LoadInt32(factoryCalls); got != 1 {
		t.Errorf("SDK installed %d times, want 1", got)
	}
	if handle.LoadCalls != 1 {
		t.Errorf("modules loaded %d times, want 1", handle.LoadCalls)
	}
	if handle.ClientModule().InitCalls != 1 {
		t.Errorf("client handshake ran %d times, want 1", handle.ClientModule().InitCalls)
	}
}

func TestInitializeConcurrentSingleFlight(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.ClientModule().InitDelay = 20 * time.Millisecond
	init, _ := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = init.Initialize(context.Background())
		}(n)
	}
	wg.Wait()

	for n, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: Initialize failed: %v", n, err)
		}
	}
	if handle.ClientModule().InitCalls != 1 {
		t.Errorf("client handshake ran %d times, want 1", handle.ClientModule().InitCalls)
	}
	if handle.AuthModule().InitCalls != 1 {
		t.Errorf("auth handshake ran %d times, want 1", handle.AuthModule().InitCalls)
	}
}

func TestInitializeNotConfigured(t *testing.T) {
	handle := mocks.NewMockHandle()
	init, factoryCalls := newTestInitializer(config.DefaultConfig(), handle, time.Second)

	err := init.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
	if !utils.IsCategory(err, utils.CategoryNotConfigured) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryNotConfigured)
	}
	if init.State() != StateFailed {
		t.Errorf("state = %s, want failed", init.State())
	}
	// Fail-fast must not have touched the SDK at all.
	if got := atomic.LoadInt32(factoryCalls); got != 0 {
		t.Errorf("SDK factory called %d times, want 0", got)
	}
	if handle.LoadCalls != 0 {
		t.Errorf("module load attempted %d times, want 0", handle.LoadCalls)
	}
}

func TestInitializeFailureIsSticky(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.ClientModule().InitErr = errors.New("Not a valid origin for the client")
	init, _ := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	first := init.Initialize(context.Background())
	if first == nil {
		t.Fatal("expected failure")
	}
	if !utils.IsCategory(first, utils.CategoryDomainNotAuthorized) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(first), utils.CategoryDomainNotAuthorized)
	}

	// The failure is latched; no step re-runs on later calls.
	second := init.Initialize(context.Background())
	if second != first {
		t.Error("expected the same latched failure on repeat calls")
	}
	if handle.ClientModule().InitCalls != 1 {
		t.Errorf("client handshake ran %d times, want 1", handle.ClientModule().InitCalls)
	}
}

func TestInitializeModuleTimeout(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.SuppressCallbacks = true
	init, _ := newTestInitializer(apptest.TestConfig(), handle, 100*time.Millisecond)

	err := init.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected timeout failure")
	}
	if !utils.IsCategory(err, utils.CategoryModuleLoadTimeout) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryModuleLoadTimeout)
	}
	if init.State() != StateFailed {
		t.Errorf("state = %s, want failed", init.State())
	}
}

func TestInitializeOverallBudget(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.ClientModule().InitDelay = time.Second
	init, _ := newTestInitializer(apptest.TestConfig(), handle, 50*time.Millisecond)

	start := time.Now()
	err := init.Initialize(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected failure when the budget expires")
	}
	if !utils.IsCategory(err, utils.CategoryInitTimeout) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryInitTimeout)
	}
	// Waiters are released when the budget expires, well before the
	// hung step would have finished.
	if elapsed > 500*time.Millisecond {
		t.Errorf("Initialize blocked for %s, want release at the budget", elapsed)
	}
}

func TestResetAllowsReattempt(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.ClientModule().InitErr = errors.New("transient handshake failure")
	init, _ := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	if err := init.Initialize(context.Background()); err == nil {
		t.Fatal("expected first attempt to fail")
	}

	handle.ClientModule().InitErr = nil
	init.Reset()

	if init.State() != StateUninitialized {
		t.Errorf("state after reset = %s, want uninitialized", init.State())
	}
	if err := init.Initialize(context.Background()); err != nil {
		t.Fatalf("reattempt after reset failed: %v", err)
	}
	if init.State() != StateReady {
		t.Errorf("state = %s, want ready", init.State())
	}
}

func TestCallerContextCancellation(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.ClientModule().InitDelay = 200 * time.Millisecond
	init, _ := newTestInitializer(apptest.TestConfig(), handle, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := init.Initialize(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}

	// The attempt keeps running detached; a later caller still gets
	// the shared outcome.
	if err := init.Initialize(context.Background()); err != nil {
		t.Fatalf("second caller failed: %v", err)
	}
	if handle.ClientModule().InitCalls != 1 {
		t.Errorf("client handshake ran %d times, want 1", handle.ClientModule().InitCalls)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateLoadingSDK, "loading_sdk"},
		{StateLoadingModules, "loading_modules"},
		{StateInitializingClient, "initializing_client"},
		{StateInitializingAuth, "initializing_auth"},
		{StateReady, "ready"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
