// Package mocks provides an in-memory fake of the provider SDK for
// tests. Failures are scripted per call site and every entry point
// counts its invocations, so tests can assert both outcomes and how
// many network-shaped calls would have happened.
package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
)

// MockHandle is an in-memory sdk.Handle.
type MockHandle struct {
	mu sync.Mutex

	LoadCalls int
	// LoadErr, when set, is delivered to OnError instead of OnLoad.
	LoadErr error
	// LoadDelay defers the callback, for timeout tests.
	LoadDelay time.Duration
	// SuppressCallbacks drops the Load outcome entirely so the caller's
	// bounded wait is exercised.
	SuppressCallbacks bool

	client *MockClientModule
	auth   *MockAuthModule
	drive  *MockDriveService
}

// NewMockHandle creates a fake handle with empty remote state.
func NewMockHandle() *MockHandle {
	drive := NewMockDriveService()
	return &MockHandle{
		client: &MockClientModule{},
		auth: &MockAuthModule{
			instance: &MockAuthInstance{},
		},
		drive: drive,
	}
}

func (h *MockHandle) Load(modules []string, cb sdk.LoadCallbacks) {
	h.mu.Lock()
	h.LoadCalls++
	err := h.LoadErr
	delay := h.LoadDelay
	suppress := h.SuppressCallbacks
	h.mu.Unlock()

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if suppress {
			return
		}
		if err != nil {
			cb.OnError(err)
			return
		}
		cb.OnLoad()
	}()
}

func (h *MockHandle) Client() sdk.ClientModule { return h.client }
func (h *MockHandle) Auth() sdk.AuthModule     { return h.auth }
func (h *MockHandle) Drive() sdk.DriveService  { return h.drive }

// ClientModule returns the fake client module for scripting.
func (h *MockHandle) ClientModule() *MockClientModule { return h.client }

// AuthModule returns the fake auth module for scripting.
func (h *MockHandle) AuthModule() *MockAuthModule { return h.auth }

// DriveService returns the fake drive service for scripting.
func (h *MockHandle) DriveService() *MockDriveService { return h.drive }

// MockClientModule fakes the API-client handshake.
type MockClientModule struct {
	mu        sync.Mutex
	InitCalls int
	InitErr   error
	InitDelay time.Duration

	LastAPIKey          string
	LastDiscoveryDocURL string
}

func (m *MockClientModule) Init(ctx context.Context, apiKey, discoveryDocURL string) error {
	m.mu.Lock()
	m.InitCalls++
	m.LastAPIKey = apiKey
	m.LastDiscoveryDocURL = discoveryDocURL
	err := m.InitErr
	delay := m.InitDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// MockAuthModule fakes the auth handshake.
type MockAuthModule struct {
	mu        sync.Mutex
	InitCalls int
	InitErr   error

	LastClientID string
	LastScope    string

	instance *MockAuthInstance
}

func (m *MockAuthModule) Init(ctx context.Context, clientID, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitCalls++
	m.LastClientID = clientID
	m.LastScope = scope
	return m.InitErr
}

func (m *MockAuthModule) Instance() sdk.AuthInstance { return m.instance }

// MockInstance returns the fake instance for scripting.
func (m *MockAuthModule) MockInstance() *MockAuthInstance { return m.instance }

// MockAuthInstance fakes sign-in and session state.
type MockAuthInstance struct {
	mu sync.Mutex

	SignInCalls     int
	SilentCalls     int
	InteractiveCall int

	// SilentErr fails silent attempts; interactive attempts use
	// InteractiveErr. A nil Session with nil error models "declined".
	SilentErr      error
	InteractiveErr error
	SessionValue   *types.AuthSession

	SignOutCalls int
	SignOutErr   error
}

func (m *MockAuthInstance) SignIn(ctx context.Context, silent bool) (*types.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignInCalls++
	if silent {
		m.SilentCalls++
		if m.SilentErr != nil {
			return nil, m.SilentErr
		}
	} else {
		m.InteractiveCall++
		if m.InteractiveErr != nil {
			return nil, m.InteractiveErr
		}
	}
	return m.SessionValue, nil
}

func (m *MockAuthInstance) CurrentSession(ctx context.Context) (*types.AuthSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SessionValue == nil {
		return nil, false, nil
	}
	return m.SessionValue, true, nil
}

func (m *MockAuthInstance) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SignOutCalls++
	if m.SignOutErr == nil {
		m.SessionValue = nil
	}
	return m.SignOutErr
}

// SetSession installs a session, as a completed sign-in would.
func (m *MockAuthInstance) SetSession(s *types.AuthSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionValue = s
}

// MockDriveService is an in-memory folder tree plus uploaded files.
type MockDriveService struct {
	mu sync.Mutex

	FindCalls   int
	CreateCalls int
	UploadCalls int

	FindErr   error
	CreateErr error
	UploadErr error

	// UploadFailures fails that many CreateFile calls with UploadErr
	// before succeeding; zero means UploadErr applies to every call.
	UploadFailures int

	// CreateDelay slows folder creation, for concurrency tests.
	CreateDelay time.Duration

	nextID  int
	folders map[string]*types.DriveFile // id -> folder
	uploads []*types.DriveFile
}

// NewMockDriveService creates an empty fake drive.
func NewMockDriveService() *MockDriveService {
	return &MockDriveService{
		folders: make(map[string]*types.DriveFile),
	}
}

func (d *MockDriveService) FindFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.FindCalls++
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	for _, f := range d.folders {
		if f.Name == name && hasParent(f, parentID) && !f.Trashed {
			return f, nil
		}
	}
	return nil, nil
}

func (d *MockDriveService) CreateFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error) {
	d.mu.Lock()
	if d.CreateErr != nil {
		d.CreateCalls++
		err := d.CreateErr
		d.mu.Unlock()
		return nil, err
	}
	delay := d.CreateDelay
	d.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.CreateCalls++
	folder := &types.DriveFile{
		ID:       d.newID("folder"),
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}
	d.folders[folder.ID] = folder
	return folder, nil
}

func (d *MockDriveService) CreateFile(ctx context.Context, meta sdk.FileMetadata, content io.Reader) (*types.DriveFile, error) {
	if _, err := io.ReadAll(content); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.UploadCalls++
	if d.UploadErr != nil {
		if d.UploadFailures == 0 {
			return nil, d.UploadErr
		}
		d.UploadFailures--
		err := d.UploadErr
		if d.UploadFailures == 0 {
			d.UploadErr = nil
		}
		return nil, err
	}
	file := &types.DriveFile{
		ID:             d.newID("file"),
		Name:           meta.Name,
		MimeType:       meta.MimeType,
		Parents:        []string{meta.ParentID},
		WebViewLink:    "https://drive.example.com/view/" + meta.Name,
		WebContentLink: "https://drive.example.com/download/" + meta.Name,
	}
	d.uploads = append(d.uploads, file)
	return file, nil
}

// Uploads returns all files created through CreateFile.
func (d *MockDriveService) Uploads() []*types.DriveFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*types.DriveFile, len(d.uploads))
	copy(out, d.uploads)
	return out
}

// FolderCount returns the number of live folders.
func (d *MockDriveService) FolderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.folders)
}

// AddFolder pre-seeds a folder, as if it already existed remotely.
func (d *MockDriveService) AddFolder(id, name, parentID string) *types.DriveFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	folder := &types.DriveFile{
		ID:       id,
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}
	d.folders[id] = folder
	return folder
}

func (d *MockDriveService) newID(kind string) string {
	d.nextID++
	return fmt.Sprintf("%s-%04d", kind, d.nextID)
}

func hasParent(f *types.DriveFile, parentID string) bool {
	if parentID == "" {
		return len(f.Parents) == 0
	}
	for _, p := range f.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}
