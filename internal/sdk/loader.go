package sdk

import (
	"context"
	"sync"

	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/utils"
)

// HandleFactory constructs the provider SDK handle. It is invoked at
// most once per process per registry, the moment the first load is
// requested.
type HandleFactory func() (Handle, error)

// Registry holds the process-wide SDK handle. The handle is an
// install-once resource: once present it survives client resets, and a
// loader finding it already installed must reuse it rather than
// installing a second one.
type Registry struct {
	mu       sync.Mutex
	handle   Handle
	inflight *loadCall
}

type loadCall struct {
	done   chan struct{}
	handle Handle
	err    error
}

// NewRegistry creates an empty registry. Production code shares
// DefaultRegistry; tests create their own.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry is the process-wide registry.
var DefaultRegistry = NewRegistry()

// Loader ensures the SDK handle is installed exactly once,
// de-duplicating concurrent load requests: callers arriving while a
// load is in flight attach to its completion instead of triggering a
// second install.
type Loader struct {
	registry *Registry
	factory  HandleFactory
	logger   logging.Logger
}

// NewLoader creates a loader over the process-wide registry.
func NewLoader(factory HandleFactory, logger logging.Logger) *Loader {
	return NewLoaderWith(DefaultRegistry, factory, logger)
}

// NewLoaderWith creates a loader over a specific registry.
func NewLoaderWith(registry *Registry, factory HandleFactory, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Loader{
		registry: registry,
		factory:  factory,
		logger:   logger,
	}
}

// Ensure returns the installed SDK handle, installing it first if
// needed. Concurrent callers share one install attempt and observe the
// same outcome. There is no timeout at this layer; the caller's overall
// initialization budget bounds the wait via ctx.
func (l *Loader) Ensure(ctx context.Context) (Handle, error) {
	l.registry.mu.Lock()

	if l.registry.handle != nil {
		handle := l.registry.handle
		l.registry.mu.Unlock()
		return handle, nil
	}

	if l.registry.inflight != nil {
		call := l.registry.inflight
		l.registry.mu.Unlock()
		return l.await(ctx, call)
	}

	call := &loadCall{done: make(chan struct{})}
	l.registry.inflight = call
	l.registry.mu.Unlock()

	l.logger.Debug("installing provider SDK handle")
	go func() {
		handle, err := l.factory()

		l.registry.mu.Lock()
		if err == nil {
			l.registry.handle = handle
		}
		l.registry.inflight = nil
		l.registry.mu.Unlock()

		call.handle = handle
		call.err = err
		close(call.done)
	}()

	return l.await(ctx, call)
}

func (l *Loader) await(ctx context.Context, call *loadCall) (Handle, error) {
	select {
	case <-call.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if call.err != nil {
		l.logger.Error("provider SDK install failed", logging.F("error", call.err.Error()))
		return nil, utils.NewAppError(utils.NewClientError(utils.CategoryScriptLoadFailed,
			call.err.Error()).
			WithRemediation("Check network connectivity and retry.").
			WithRetryable(true).
			WithRaw(call.err).
			Build())
	}
	return call.handle, nil
}

// Installed reports whether a handle is already present.
func (l *Loader) Installed() bool {
	l.registry.mu.Lock()
	defer l.registry.mu.Unlock()
	return l.registry.handle != nil
}
