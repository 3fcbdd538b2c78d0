package sdk

import (
	"context"
	"time"

	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/utils"
)

// ModuleLoader wraps the SDK's callback-based module loader in a
// bounded wait. The sub-timeout here is distinct from the outer
// initialization budget so a hang in module loading is diagnosed as
// MODULE_LOAD_TIMEOUT specifically.
type ModuleLoader struct {
	timeout time.Duration
	logger  logging.Logger
}

// NewModuleLoader creates a module loader with the given sub-timeout.
// A zero timeout falls back to the default.
func NewModuleLoader(timeout time.Duration, logger logging.Logger) *ModuleLoader {
	if timeout <= 0 {
		timeout = utils.ModuleLoadTimeout
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &ModuleLoader{timeout: timeout, logger: logger}
}

// Load loads the named submodules through the handle's asynchronous
// loader, normalizing the callback outcomes (loaded, errored, hung)
// into a single error result.
func (l *ModuleLoader) Load(ctx context.Context, handle Handle, modules []string) error {
	done := make(chan error, 1)

	handle.Load(modules, LoadCallbacks{
		OnLoad: func() {
			select {
			case done <- nil:
			default:
			}
		},
		OnError: func(err error) {
			select {
			case done <- err:
			default:
			}
		},
	})

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			l.logger.Error("SDK module load failed",
				logging.F("modules", modules),
				logging.F("error", err.Error()),
			)
			return utils.NewAppError(utils.NewClientError(utils.CategoryModuleLoadFailed,
				err.Error()).
				WithRemediation("Check network connectivity and retry.").
				WithRetryable(true).
				WithRaw(err).
				Build())
		}
		l.logger.Debug("SDK modules loaded", logging.F("modules", modules))
		return nil
	case <-timer.C:
		l.logger.Error("SDK module load timed out",
			logging.F("modules", modules),
			logging.F("timeout", l.timeout.String()),
		)
		return utils.NewAppError(utils.NewClientError(utils.CategoryModuleLoadTimeout,
			"module load did not complete within "+l.timeout.String()).
			WithRemediation("Check network connectivity and retry.").
			WithRetryable(true).
			Build())
	case <-ctx.Done():
		return ctx.Err()
	}
}
