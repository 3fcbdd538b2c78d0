package sdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awibisono/arsipdrive/internal/utils"
)

type scriptedLoadHandle struct {
	stubHandle
	err     error
	delay   time.Duration
	silence bool
}

func (h *scriptedLoadHandle) Load(modules []string, cb LoadCallbacks) {
	go func() {
		if h.delay > 0 {
			time.Sleep(h.delay)
		}
		if h.silence {
			return
		}
		if h.err != nil {
			cb.OnError(h.err)
			return
		}
		cb.OnLoad()
	}()
}

func TestModuleLoadSuccess(t *testing.T) {
	loader := NewModuleLoader(time.Second, nil)
	handle := &scriptedLoadHandle{}

	if err := loader.Load(context.Background(), handle, []string{utils.ModuleClient, utils.ModuleAuth}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestModuleLoadFailure(t *testing.T) {
	loader := NewModuleLoader(time.Second, nil)
	handle := &scriptedLoadHandle{err: errors.New("fetch failed")}

	err := loader.Load(context.Background(), handle, []string{utils.ModuleClient})
	if err == nil {
		t.Fatal("expected error")
	}
	if !utils.IsCategory(err, utils.CategoryModuleLoadFailed) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryModuleLoadFailed)
	}
}

func TestModuleLoadTimeout(t *testing.T) {
	loader := NewModuleLoader(20*time.Millisecond, nil)
	handle := &scriptedLoadHandle{silence: true}

	err := loader.Load(context.Background(), handle, []string{utils.ModuleClient})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !utils.IsCategory(err, utils.CategoryModuleLoadTimeout) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryModuleLoadTimeout)
	}
}

func TestModuleLoadLateCallbackIgnored(t *testing.T) {
	loader := NewModuleLoader(10*time.Millisecond, nil)
	handle := &scriptedLoadHandle{delay: 50 * time.Millisecond}

	err := loader.Load(context.Background(), handle, []string{utils.ModuleClient})
	if !utils.IsCategory(err, utils.CategoryModuleLoadTimeout) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryModuleLoadTimeout)
	}

	// The late OnLoad must not panic or leak; give it time to fire.
	time.Sleep(60 * time.Millisecond)
}

func TestModuleLoadContextCancelled(t *testing.T) {
	loader := NewModuleLoader(time.Second, nil)
	handle := &scriptedLoadHandle{silence: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := loader.Load(ctx, handle, []string{utils.ModuleClient}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
