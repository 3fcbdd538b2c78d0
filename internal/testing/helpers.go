// Package testing provides shared fixtures and assertion helpers for
// unit tests.
package testing

import (
	"testing"
	"time"

	"github.com/awibisono/arsipdrive/internal/config"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
)

// TestConfig returns a fully populated configuration suitable for
// initialization tests.
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-api-key"
	cfg.ClientID = "test-client-id.apps.example.com"
	cfg.ClientSecret = "test-client-secret"
	return cfg
}

// TestSession returns a session that is valid for another hour.
func TestSession(account string) *types.AuthSession {
	return &types.AuthSession{
		AccessToken: "test-access-token",
		Expiry:      time.Now().Add(time.Hour),
		Account:     account,
	}
}

// ExpiredSession returns a session whose token lifetime has lapsed.
func ExpiredSession(account string) *types.AuthSession {
	return &types.AuthSession{
		AccessToken: "test-access-token",
		Expiry:      time.Now().Add(-time.Minute),
		Account:     account,
	}
}

// AssertNoError is a helper to fail the test if error is not nil
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: %v", msgAndArgs[0], err)
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

// AssertError is a helper to fail the test if error is nil
func AssertError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: expected error but got nil", msgAndArgs[0])
		} else {
			t.Fatal("expected error but got nil")
		}
	}
}

// AssertEqual is a helper to fail the test if two values are not equal
func AssertEqual(t *testing.T, got, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if got != want {
		if len(msgAndArgs) > 0 {
			t.Fatalf("%v: got %v, want %v", msgAndArgs[0], got, want)
		} else {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// AssertCategory is a helper to fail the test if err does not carry the
// expected error category.
func AssertCategory(t *testing.T, err error, category string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error but got nil", category)
	}
	if got := utils.CategoryOf(err); got != category {
		t.Fatalf("error category: got %s, want %s (err: %v)", got, category, err)
	}
}
