// Package sdk defines the boundary to the provider's SDK and owns its
// lifecycle: a process-wide install-once handle, callback-based module
// loading with a bounded wait, and the two remote handshakes (client and
// auth initialization). Everything above this package talks to the
// provider exclusively through these interfaces.
package sdk

import (
	"context"
	"io"

	"github.com/awibisono/arsipdrive/internal/types"
)

// LoadCallbacks receives the outcome of an asynchronous module load.
// Exactly one of the callbacks fires per Load call.
type LoadCallbacks struct {
	OnLoad  func()
	OnError func(err error)
}

// Handle is the provider SDK entry point. There is at most one live
// handle per process; Loader enforces that.
type Handle interface {
	// Load asynchronously loads the named SDK submodules and reports
	// completion through cb. It never blocks the caller.
	Load(modules []string, cb LoadCallbacks)

	Client() ClientModule
	Auth() AuthModule
	Drive() DriveService
}

// ClientModule is the SDK's API-client submodule. Init performs the
// first remote handshake: it validates the API key against the
// provider's discovery document.
type ClientModule interface {
	Init(ctx context.Context, apiKey, discoveryDocURL string) error
}

// AuthModule is the SDK's auth submodule. Init performs the second
// remote handshake and must only be attempted after ClientModule.Init
// has completed; the provider misbehaves when both run concurrently.
type AuthModule interface {
	Init(ctx context.Context, clientID, scope string) error
	Instance() AuthInstance
}

// AuthInstance exposes sign-in and session introspection.
type AuthInstance interface {
	// SignIn attempts a sign-in. When silent, no user interaction is
	// allowed and failure means "not signed in yet", not a hard error.
	// When interactive, the call may suspend indefinitely waiting for
	// user consent; only ctx cancellation bounds it.
	SignIn(ctx context.Context, silent bool) (*types.AuthSession, error)

	// CurrentSession returns the active session, if any.
	CurrentSession(ctx context.Context) (*types.AuthSession, bool, error)

	SignOut(ctx context.Context) error
}

// FileMetadata describes a file to be created remotely.
type FileMetadata struct {
	Name     string
	ParentID string
	MimeType string
}

// DriveService is the minimal storage surface the client consumes:
// folder find/create and a single-shot multipart file upload.
type DriveService interface {
	// FindFolder looks up a non-trashed folder by exact name under
	// parentID. Returns (nil, nil) when no such folder exists.
	FindFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error)

	CreateFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error)

	// CreateFile uploads content and metadata in one multipart request.
	// No chunking, no resume.
	CreateFile(ctx context.Context, meta FileMetadata, content io.Reader) (*types.DriveFile, error)
}
