// Package client drives the storage client's lifecycle: a single-flight
// initialization state machine over the SDK boundary, and the facade
// the rest of the application consumes.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/awibisono/arsipdrive/internal/config"
	"github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
)

// State is the initialization state. Transitions are monotonic within
// an attempt; only an explicit Reset leaves StateFailed.
type State int

const (
	StateUninitialized State = iota
	StateLoadingSDK
	StateLoadingModules
	StateInitializingClient
	StateInitializingAuth
	StateReady
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoadingSDK:
		return "loading_sdk"
	case StateLoadingModules:
		return "loading_modules"
	case StateInitializingClient:
		return "initializing_client"
	case StateInitializingAuth:
		return "initializing_auth"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) stage() types.InitStage {
	switch s {
	case StateLoadingSDK:
		return types.StageLoadingSDK
	case StateLoadingModules:
		return types.StageLoadingModules
	case StateInitializingClient:
		return types.StageInitializingClient
	case StateInitializingAuth:
		return types.StageInitializingAuth
	default:
		return types.StageNone
	}
}

// Initializer is the single-flight initialization state machine. The
// provider offers no cancellation and no structured errors; the machine
// converts that into a bounded wait with a deterministic failure
// category derived from the active step.
type Initializer struct {
	cfg     *config.Config
	loader  *sdk.Loader
	modules *sdk.ModuleLoader
	timeout time.Duration
	logger  logging.Logger

	mu       sync.Mutex
	state    State
	failure  *utils.AppError
	handle   sdk.Handle
	inflight chan struct{}
	gen      int
}

// NewInitializer creates an initializer over the given loader. A zero
// timeout falls back to the default overall budget.
func NewInitializer(cfg *config.Config, loader *sdk.Loader, modules *sdk.ModuleLoader, timeout time.Duration, logger logging.Logger) *Initializer {
	if timeout <= 0 {
		timeout = utils.InitTimeout
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Initializer{
		cfg:     cfg,
		loader:  loader,
		modules: modules,
		timeout: timeout,
		logger:  logger,
		state:   StateUninitialized,
	}
}

// Initialize drives the machine to StateReady or StateFailed. It is
// idempotent and single-flight: concurrent callers share one attempt
// and observe the same outcome, and once Ready later calls return
// immediately without re-running any step.
func (i *Initializer) Initialize(ctx context.Context) error {
	i.mu.Lock()

	switch i.state {
	case StateReady:
		i.mu.Unlock()
		return nil
	case StateFailed:
		failure := i.failure
		i.mu.Unlock()
		return failure
	}

	if i.inflight == nil {
		if !i.cfg.IsConfigured() {
			failure := utils.NewAppError(utils.NewClientError(utils.CategoryNotConfigured,
				"storage client is not configured").
				WithRemediation(errors.RemediationFor(utils.CategoryNotConfigured)).
				Build())
			i.state = StateFailed
			i.failure = failure
			i.mu.Unlock()
			return failure
		}

		done := make(chan struct{})
		i.inflight = done
		go i.run(done, i.gen)
	}

	done := i.inflight
	i.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateReady {
		return nil
	}
	if i.failure != nil {
		return i.failure
	}
	// Reset raced the attempt; treat as not initialized.
	return utils.NewAppError(utils.NewClientError(utils.CategoryUnknown,
		"initialization was reset").
		WithRemediation(errors.RemediationFor(utils.CategoryUnknown)).
		Build())
}

// run executes one attempt under the hard overall budget. The attempt
// is detached from any single caller's context so all waiters share
// its outcome.
func (i *Initializer) run(done chan struct{}, gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	handle, err := i.attempt(ctx)

	i.mu.Lock()
	if i.gen == gen {
		if err != nil {
			failedState := i.state
			i.state = StateFailed
			i.failure = errors.Classify(failedState.stage(), err)
			i.logger.Error("initialization failed",
				logging.F("state", failedState.String()),
				logging.F("category", i.failure.ClientError.Category),
			)
		} else {
			i.state = StateReady
			i.handle = handle
			i.logger.Info("initialization complete")
		}
		i.inflight = nil
	}
	i.mu.Unlock()

	close(done)
}

// attempt runs the four steps strictly in order. The client handshake
// must complete before the auth handshake is started; running them
// concurrently makes the provider fail nondeterministically.
func (i *Initializer) attempt(ctx context.Context) (sdk.Handle, error) {
	i.setState(StateLoadingSDK)
	handle, err := i.loader.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	i.setState(StateLoadingModules)
	if err := i.modules.Load(ctx, handle, []string{utils.ModuleClient, utils.ModuleAuth}); err != nil {
		return nil, err
	}

	i.setState(StateInitializingClient)
	if err := handle.Client().Init(ctx, i.cfg.APIKey, i.cfg.DiscoveryDocURL); err != nil {
		return nil, err
	}

	i.setState(StateInitializingAuth)
	if err := handle.Auth().Init(ctx, i.cfg.ClientID, i.cfg.Scope); err != nil {
		return nil, err
	}

	return handle, nil
}

func (i *Initializer) setState(state State) {
	i.mu.Lock()
	i.state = state
	i.mu.Unlock()
	i.logger.Debug("initialization state", logging.F("state", state.String()))
}

// State returns the current state.
func (i *Initializer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Failure returns the recorded failure, if the machine is StateFailed.
func (i *Initializer) Failure() *utils.AppError {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.failure
}

// Handle returns the SDK handle once StateReady.
func (i *Initializer) Handle() sdk.Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handle
}

// Reset returns the machine to StateUninitialized so a later
// Initialize can re-attempt from scratch. An in-flight attempt is
// orphaned: its outcome is discarded when it completes. The installed
// SDK handle itself is process-wide and survives the reset.
func (i *Initializer) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.gen++
	i.state = StateUninitialized
	i.failure = nil
	i.handle = nil
	i.inflight = nil
}
