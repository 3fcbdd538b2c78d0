package client

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/awibisono/arsipdrive/internal/auth"
	"github.com/awibisono/arsipdrive/internal/config"
	apperrors "github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/files"
	"github.com/awibisono/arsipdrive/internal/folders"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/retry"
	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/google/uuid"
)

// Client is the coordinating facade for the storage integration. It
// owns the initializer, the auth controller, and the lazily built
// folder and upload layers, and is the only place retry policy is
// applied.
type Client struct {
	cfg    *config.Config
	logger logging.Logger

	init   *Initializer
	auth   *auth.Controller
	policy *retry.Policy

	mu          sync.Mutex
	provisioner *folders.Provisioner
	uploader    *files.Uploader
}

// New wires a client from configuration. The SDK handle is created on
// first Initialize, not here.
func New(cfg *config.Config, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	loader := sdk.NewLoader(func() (sdk.Handle, error) {
		return sdk.NewGoogleHandle(cfg.ClientSecret, logger), nil
	}, logger)
	return newClient(cfg, loader, logger)
}

// NewWithFactory wires a client around a custom SDK handle factory and
// a private handle registry. Production use goes through New, which
// shares the process-wide registry.
func NewWithFactory(cfg *config.Config, factory sdk.HandleFactory, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return newClient(cfg, sdk.NewLoaderWith(sdk.NewRegistry(), factory, logger), logger)
}

func newClient(cfg *config.Config, loader *sdk.Loader, logger logging.Logger) *Client {
	modules := sdk.NewModuleLoader(utils.ModuleLoadTimeout, logger)
	init := NewInitializer(cfg, loader, modules, utils.InitTimeout, logger)

	return &Client{
		cfg:    cfg,
		logger: logger,
		init:   init,
		auth:   auth.NewController(init, logger),
		policy: retry.NewPolicy(cfg.MaxRetries, cfg.GetRetryBaseDelay(), logger),
	}
}

// Config returns the configuration the client was built with.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// IsConfigured reports whether enough configuration is present to
// attempt initialization.
func (c *Client) IsConfigured() bool {
	return c.cfg.IsConfigured()
}

// Initialize drives the SDK through its load and init sequence. Safe to
// call repeatedly and from multiple goroutines.
func (c *Client) Initialize(ctx context.Context) error {
	return c.init.Initialize(ctx)
}

// State returns the current initialization state.
func (c *Client) State() State {
	return c.init.State()
}

// Authenticate signs the user in. With silent set, a declined or
// unavailable session returns (false, nil) rather than an error.
func (c *Client) Authenticate(ctx context.Context, silent bool) (bool, error) {
	return c.auth.Authenticate(ctx, silent)
}

// IsAuthenticated answers strictly true or false; lookup failures read
// as "not signed in".
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	return c.auth.IsAuthenticated(ctx)
}

// Session returns the current session, or nil when signed out.
func (c *Client) Session() *types.AuthSession {
	return c.auth.Session()
}

// SignOut revokes the current session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.auth.SignOut(ctx)
}

// Reset returns the client to its pre-initialization state so the next
// Initialize runs the full sequence again. The installed SDK handle is
// process-wide and survives.
func (c *Client) Reset() {
	c.auth.Reset()
	c.init.Reset()

	c.mu.Lock()
	c.provisioner = nil
	c.uploader = nil
	c.mu.Unlock()
}

// ResolveFolderStructure ensures the root/category/subject folder chain
// exists and returns its IDs. Transient failures are retried under the
// client's policy.
func (c *Client) ResolveFolderStructure(ctx context.Context, category, subject string) (*types.FolderStructure, error) {
	provisioner, _, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}

	ctx = logging.ContextWithTraceID(ctx, uuid.New().String())
	return retry.Do(ctx, c.policy, "folders.resolve", func(ctx context.Context) (*types.FolderStructure, error) {
		return provisioner.Resolve(ctx, category, subject)
	})
}

// UploadFile resolves the folder chain for category/subject and uploads
// content there. An upload without a valid session fails with an
// ACCESS_DENIED class error before any remote call, including the
// folder provisioning ones. The content is buffered once so a retried
// attempt replays the same bytes.
func (c *Client) UploadFile(ctx context.Context, content io.Reader, category, subject, destinationName, mimeType string) (*types.UploadResult, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	structure, err := c.ResolveFolderStructure(ctx, category, subject)
	if err != nil {
		return nil, err
	}
	return c.UploadTo(ctx, content, structure.SubjectID, destinationName, mimeType)
}

// UploadTo uploads content directly into parentFolderID, skipping
// folder resolution. Same session precondition as UploadFile.
func (c *Client) UploadTo(ctx context.Context, content io.Reader, parentFolderID, destinationName, mimeType string) (*types.UploadResult, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	_, uploader, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, apperrors.Classify(types.StageUploading, err)
	}

	ctx = logging.ContextWithTraceID(ctx, uuid.New().String())
	return retry.Do(ctx, c.policy, "files.upload", func(ctx context.Context) (*types.UploadResult, error) {
		return uploader.Upload(ctx, bytes.NewReader(data), parentFolderID, destinationName, mimeType)
	})
}

func (c *Client) requireSession() error {
	if c.auth.Session().Valid() {
		return nil
	}
	return utils.NewAppError(utils.NewClientError(utils.CategoryAccessDenied,
		"no valid session; sign in before uploading").
		WithRemediation(apperrors.RemediationFor(utils.CategoryAccessDenied)).
		Build())
}

// ready initializes if needed and returns the folder and upload layers
// bound to the live drive service.
func (c *Client) ready(ctx context.Context) (*folders.Provisioner, *files.Uploader, error) {
	if err := c.init.Initialize(ctx); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provisioner == nil {
		drive := c.init.Handle().Drive()
		c.provisioner = folders.NewProvisioner(drive, c.cfg.RootFolderName, c.logger)
		c.uploader = files.NewUploader(drive, c.auth, c.logger)
	}
	return c.provisioner, c.uploader, nil
}
