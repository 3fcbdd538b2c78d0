// Package auth manages sign-in, session inspection, and access-token
// custody. The controller is the only component that reads or writes
// the session; nothing else touches the access token directly.
package auth

import (
	"context"
	"sync"

	"github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
)

// Initializer is the slice of the lifecycle machine the controller
// needs: authentication always implies "ensure ready" first.
type Initializer interface {
	Initialize(ctx context.Context) error
	Handle() sdk.Handle
}

// Controller handles silent and interactive sign-in and owns the
// in-memory AuthSession. The session is never persisted; its lifetime
// is bounded by the process.
type Controller struct {
	init   Initializer
	logger logging.Logger

	mu      sync.Mutex
	session *types.AuthSession
}

// NewController creates a new auth controller
func NewController(init Initializer, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Controller{
		init:   init,
		logger: logger,
	}
}

// Authenticate attempts sign-in, initializing the client first if
// needed. A silent attempt that is rejected resolves to (false, nil):
// "not signed in yet" is an expected outcome for first-time users, not
// an error. An interactive rejection is classified and returned.
func (c *Controller) Authenticate(ctx context.Context, silent bool) (bool, error) {
	if err := c.init.Initialize(ctx); err != nil {
		return false, err
	}

	instance := c.init.Handle().Auth().Instance()

	session, err := instance.SignIn(ctx, silent)
	if err != nil {
		if silent {
			c.logger.Debug("silent sign-in declined", logging.F("error", err.Error()))
			return false, nil
		}
		return false, errors.Classify(types.StageAuthenticating, err)
	}
	if session == nil {
		// Some providers report a declined or abandoned sign-in as a
		// nil session with no error. Treat it as not signed in rather
		// than caching an unusable session.
		c.logger.Debug("sign-in returned no session")
		return false, nil
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return true, nil
}

// IsAuthenticated inspects the current remote session, lazily
// initializing the client first. It never returns an error for "not
// initialized" or "no session"; both report false.
func (c *Controller) IsAuthenticated(ctx context.Context) (bool, error) {
	if err := c.init.Initialize(ctx); err != nil {
		c.logger.Debug("not authenticated: initialization failed", logging.F("error", err.Error()))
		return false, nil
	}

	instance := c.init.Handle().Auth().Instance()

	session, ok, err := instance.CurrentSession(ctx)
	if err != nil {
		c.logger.Debug("session inspection failed", logging.F("error", err.Error()))
		return false, nil
	}
	if !ok || session == nil {
		return false, nil
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return true, nil
}

// Session returns the cached session, if any.
func (c *Controller) Session() *types.AuthSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Reset clears the cached session. The facade pairs this with a reset
// of the initialization machine.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// SignOut ends the remote session and clears the local one.
func (c *Controller) SignOut(ctx context.Context) error {
	handle := c.init.Handle()
	if handle != nil {
		if err := handle.Auth().Instance().SignOut(ctx); err != nil {
			return errors.Classify(types.StageAuthenticating, err)
		}
	}
	c.Reset()
	return nil
}
