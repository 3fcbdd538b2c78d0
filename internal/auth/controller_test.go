package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/awibisono/arsipdrive/internal/sdk"
	apptest "github.com/awibisono/arsipdrive/internal/testing"
	"github.com/awibisono/arsipdrive/internal/testing/mocks"
	"github.com/awibisono/arsipdrive/internal/utils"
)

type fakeInitializer struct {
	err    error
	handle sdk.Handle
	calls  int
}

func (f *fakeInitializer) Initialize(ctx context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeInitializer) Handle() sdk.Handle { return f.handle }

func TestAuthenticateInteractive(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.AuthModule().MockInstance().SessionValue = apptest.TestSession("budi@example.com")
	controller := NewController(&fakeInitializer{handle: handle}, nil)

	signedIn, err := controller.Authenticate(context.Background(), false)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !signedIn {
		t.Fatal("expected signed in")
	}
	if session := controller.Session(); session == nil || session.Account != "budi@example.com" {
		t.Errorf("session not cached: %+v", session)
	}
}

func TestAuthenticateSilentDeclined(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.AuthModule().MockInstance().SilentErr = errors.New("no session available")
	controller := NewController(&fakeInitializer{handle: handle}, nil)

	signedIn, err := controller.Authenticate(context.Background(), true)
	if err != nil {
		t.Fatalf("silent decline must not be an error, got: %v", err)
	}
	if signedIn {
		t.Error("expected not signed in")
	}
	if controller.Session() != nil {
		t.Error("no session must be cached after a declined silent attempt")
	}
}

func TestAuthenticateNilSessionNotSignedIn(t *testing.T) {
	// SignIn resolving without a session and without an error is a
	// declined attempt, never a success.
	for _, silent := range []bool{true, false} {
		handle := mocks.NewMockHandle()
		controller := NewController(&fakeInitializer{handle: handle}, nil)

		signedIn, err := controller.Authenticate(context.Background(), silent)
		if err != nil {
			t.Fatalf("silent=%v: want no error, got: %v", silent, err)
		}
		if signedIn {
			t.Errorf("silent=%v: expected not signed in", silent)
		}
		if controller.Session() != nil {
			t.Errorf("silent=%v: no session must be cached", silent)
		}
	}
}

func TestAuthenticateInteractiveRejection(t *testing.T) {
	tests := []struct {
		name         string
		signInErr    error
		wantCategory string
	}{
		{
			name:         "popup blocked",
			signInErr:    errors.New("popup window blocked by the browser"),
			wantCategory: utils.CategoryPopupBlocked,
		},
		{
			name:         "consent declined",
			signInErr:    errors.New("access_denied"),
			wantCategory: utils.CategoryAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle := mocks.NewMockHandle()
			handle.AuthModule().MockInstance().InteractiveErr = tt.signInErr
			controller := NewController(&fakeInitializer{handle: handle}, nil)

			signedIn, err := controller.Authenticate(context.Background(), false)
			if signedIn {
				t.Error("expected not signed in")
			}
			if !utils.IsCategory(err, tt.wantCategory) {
				t.Errorf("category = %s, want %s", utils.CategoryOf(err), tt.wantCategory)
			}
		})
	}
}

func TestAuthenticateInitFailurePropagates(t *testing.T) {
	initErr := utils.NewAppError(utils.NewClientError(utils.CategoryDomainNotAuthorized, "bad origin").Build())
	controller := NewController(&fakeInitializer{err: initErr}, nil)

	_, err := controller.Authenticate(context.Background(), false)
	if !utils.IsCategory(err, utils.CategoryDomainNotAuthorized) {
		t.Errorf("category = %s, want %s", utils.CategoryOf(err), utils.CategoryDomainNotAuthorized)
	}
}

func TestIsAuthenticated(t *testing.T) {
	handle := mocks.NewMockHandle()
	init := &fakeInitializer{handle: handle}
	controller := NewController(init, nil)

	authed, err := controller.IsAuthenticated(context.Background())
	if err != nil {
		t.Fatalf("IsAuthenticated failed: %v", err)
	}
	if authed {
		t.Error("expected not authenticated before sign-in")
	}

	handle.AuthModule().MockInstance().SetSession(apptest.TestSession("budi@example.com"))
	authed, err = controller.IsAuthenticated(context.Background())
	if err != nil {
		t.Fatalf("IsAuthenticated failed: %v", err)
	}
	if !authed {
		t.Error("expected authenticated with a live session")
	}
	if init.calls != 2 {
		t.Errorf("initialize invoked %d times, want 2", init.calls)
	}
}

func TestIsAuthenticatedInitFailureReadsAsFalse(t *testing.T) {
	initErr := utils.NewAppError(utils.NewClientError(utils.CategoryScriptLoadFailed, "offline").Build())
	controller := NewController(&fakeInitializer{err: initErr}, nil)

	authed, err := controller.IsAuthenticated(context.Background())
	if err != nil {
		t.Fatalf("IsAuthenticated must not surface init failures, got: %v", err)
	}
	if authed {
		t.Error("expected not authenticated")
	}
}

func TestSignOutClearsSession(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.AuthModule().MockInstance().SessionValue = apptest.TestSession("budi@example.com")
	controller := NewController(&fakeInitializer{handle: handle}, nil)

	if _, err := controller.Authenticate(context.Background(), false); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if err := controller.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if controller.Session() != nil {
		t.Error("session must be cleared after sign-out")
	}
	if handle.AuthModule().MockInstance().SignOutCalls != 1 {
		t.Errorf("remote sign-out invoked %d times, want 1", handle.AuthModule().MockInstance().SignOutCalls)
	}
}

func TestResetClearsSessionOnly(t *testing.T) {
	handle := mocks.NewMockHandle()
	handle.AuthModule().MockInstance().SessionValue = apptest.TestSession("budi@example.com")
	controller := NewController(&fakeInitializer{handle: handle}, nil)

	if _, err := controller.Authenticate(context.Background(), false); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	controller.Reset()

	if controller.Session() != nil {
		t.Error("session must be cleared after reset")
	}
	if handle.AuthModule().MockInstance().SignOutCalls != 0 {
		t.Error("reset must not trigger a remote sign-out")
	}
}
