package sdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/awibisono/arsipdrive/internal/utils"
)

type stubHandle struct{}

func (h *stubHandle) Load(modules []string, cb LoadCallbacks) { go cb.OnLoad() }
func (h *stubHandle) Client() ClientModule                    { return nil }
func (h *stubHandle) Auth() AuthModule                        { return nil }
func (h *stubHandle) Drive() DriveService                     { return nil }

func TestEnsureInstallsOnce(t *testing.T) {
	var calls int32
	loader := NewLoaderWith(NewRegistry(), func() (Handle, error) {
		atomic.AddInt32(&calls, 1)
		return &stubHandle{}, nil
	}, nil)

	ctx := context.Background()

	first, err := loader.Ensure(ctx)
	if err != nil {
		t.Fatalf("first Ensure failed: %v", err)
	}
	second, err := loader.Ensure(ctx)
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	if first != second {
		t.Error("Ensure returned different handles")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestEnsureConcurrentSingleFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	loader := NewLoaderWith(NewRegistry(), func() (Handle, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &stubHandle{}, nil
	}, nil)

	const workers = 10
	var wg sync.WaitGroup
	handles := make([]Handle, workers)
	errs := make([]error, workers)

	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			handles[n], errs[n] = loader.Ensure(context.Background())
		}(n)
	}

	close(release)
	wg.Wait()

	for n := 0; n < workers; n++ {
		if errs[n] != nil {
			t.Fatalf("worker %d: Ensure failed: %v", n, errs[n])
		}
		if handles[n] != handles[0] {
			t.Errorf("worker %d: got a different handle", n)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestEnsureFactoryFailure(t *testing.T) {
	loader := NewLoaderWith(NewRegistry(), func() (Handle, error) {
		return nil, errors.New("network unreachable")
	}, nil)

	_, err := loader.Ensure(context.Background())
	if err == nil {
		t.Fatal("expected error from failing factory")
	}
	if !utils.IsCategory(err, utils.CategoryScriptLoadFailed) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryScriptLoadFailed)
	}
	if loader.Installed() {
		t.Error("handle must not be installed after a failed load")
	}
}

func TestEnsureRetryAfterFailure(t *testing.T) {
	var calls int32
	loader := NewLoaderWith(NewRegistry(), func() (Handle, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("transient failure")
		}
		return &stubHandle{}, nil
	}, nil)

	if _, err := loader.Ensure(context.Background()); err == nil {
		t.Fatal("expected first Ensure to fail")
	}

	handle, err := loader.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if handle == nil {
		t.Fatal("second Ensure returned nil handle")
	}
	if !loader.Installed() {
		t.Error("handle should be installed after successful retry")
	}
}

func TestEnsureContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	loader := NewLoaderWith(NewRegistry(), func() (Handle, error) {
		<-release
		return &stubHandle{}, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Ensure(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
