package sdk

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// GoogleHandle implements Handle against the real provider: the client
// handshake validates the API key against the discovery document, the
// auth handshake builds the OAuth2 config, and sign-in runs either a
// token refresh (silent) or a loopback PKCE consent flow (interactive).
type GoogleHandle struct {
	mu           sync.Mutex
	httpClient   *http.Client
	clientSecret string
	oauthCfg     *oauth2.Config
	token        *oauth2.Token
	tokenSource  oauth2.TokenSource
	session      *types.AuthSession
	drive        *drive.Service
	openConsent  func(url string) error
	logger       logging.Logger
}

// NewGoogleHandle creates a handle backed by Google's OAuth2 endpoints
// and the Drive v3 API.
func NewGoogleHandle(clientSecret string, logger logging.Logger) *GoogleHandle {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &GoogleHandle{
		httpClient:   http.DefaultClient,
		clientSecret: clientSecret,
		openConsent:  browser.OpenURL,
		logger:       logger,
	}
}

// Load reports the named submodules as available. The Go SDK compiles
// its modules in, so the only asynchronous work is the callback hop
// itself; the callback contract matches the provider's script loader.
func (h *GoogleHandle) Load(modules []string, cb LoadCallbacks) {
	go func() {
		if cb.OnLoad != nil {
			cb.OnLoad()
		}
	}()
}

func (h *GoogleHandle) Client() ClientModule { return &googleClientModule{h: h} }
func (h *GoogleHandle) Auth() AuthModule     { return &googleAuthModule{h: h} }
func (h *GoogleHandle) Drive() DriveService  { return &googleDriveService{h: h} }

type googleClientModule struct {
	h *GoogleHandle
}

// Init fetches the discovery document keyed by the API key. An invalid
// key or unauthorized origin surfaces here, before auth is attempted.
func (m *googleClientModule) Init(ctx context.Context, apiKey, discoveryDocURL string) error {
	reqURL := discoveryDocURL
	if apiKey != "" {
		sep := "?"
		if strings.Contains(reqURL, "?") {
			sep = "&"
		}
		reqURL = reqURL + sep + "key=" + url.QueryEscape(apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("invalid discovery document URL: %w", err)
	}

	resp, err := m.h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discovery document fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discovery document fetch returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	m.h.logger.Debug("client handshake completed", logging.F("discoveryDoc", discoveryDocURL))
	return nil
}

type googleAuthModule struct {
	h *GoogleHandle
}

// Init configures the OAuth2 client. Must run after the client
// handshake; the initializer enforces the ordering.
func (m *googleAuthModule) Init(ctx context.Context, clientID, scope string) error {
	if clientID == "" {
		return fmt.Errorf("client ID is empty")
	}

	m.h.mu.Lock()
	defer m.h.mu.Unlock()

	m.h.oauthCfg = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: m.h.clientSecret,
		Scopes:       strings.Fields(scope),
		Endpoint:     google.Endpoint,
	}

	m.h.logger.Debug("auth handshake completed", logging.F("clientId", clientID))
	return nil
}

func (m *googleAuthModule) Instance() AuthInstance {
	return &googleAuthInstance{h: m.h}
}

type googleAuthInstance struct {
	h *GoogleHandle
}

func (a *googleAuthInstance) SignIn(ctx context.Context, silent bool) (*types.AuthSession, error) {
	a.h.mu.Lock()
	cfg := a.h.oauthCfg
	a.h.mu.Unlock()

	if cfg == nil {
		return nil, fmt.Errorf("auth module not initialized")
	}

	if session, ok, _ := a.CurrentSession(ctx); ok {
		return session, nil
	}

	if silent {
		return a.silentSignIn(ctx, cfg)
	}
	return a.interactiveSignIn(ctx, cfg)
}

// silentSignIn only succeeds when a refreshable token already exists in
// this process. For a fresh process that is never the case; the failure
// is the expected "not signed in yet" outcome.
func (a *googleAuthInstance) silentSignIn(ctx context.Context, cfg *oauth2.Config) (*types.AuthSession, error) {
	a.h.mu.Lock()
	token := a.h.token
	a.h.mu.Unlock()

	if token == nil || token.RefreshToken == "" {
		return nil, fmt.Errorf("no cached session available for silent sign-in")
	}

	fresh, err := cfg.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("silent token refresh failed: %w", err)
	}

	return a.installToken(ctx, cfg, fresh)
}

// interactiveSignIn runs the loopback consent flow. It is deliberately
// not time-boxed: the user may take arbitrarily long to approve, and
// only ctx cancellation bounds the wait.
func (a *googleAuthInstance) interactiveSignIn(ctx context.Context, cfg *oauth2.Config) (*types.AuthSession, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start consent listener: %w", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	flowCfg := *cfg
	flowCfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", addr.Port)

	state, err := randomToken()
	if err != nil {
		return nil, err
	}
	verifier, err := randomToken()
	if err != nil {
		return nil, err
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errChan <- fmt.Errorf("invalid state parameter")
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("consent error: %s", r.URL.Query().Get("error"))
			http.Error(w, "No code received", http.StatusBadRequest)
			return
		}
		codeChan <- code
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>Sign-in complete.</h1><p>You can close this window.</p></body></html>`)
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Close()

	authURL := flowCfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("code_challenge", codeChallengeS256(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	a.h.logger.Info("opening browser for consent")
	if err := a.h.openConsent(authURL); err != nil {
		return nil, fmt.Errorf("popup could not be opened: %w", err)
	}

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := flowCfg.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	return a.installToken(ctx, cfg, token)
}

// installToken stores the token, builds the Drive service over it, and
// resolves the account identifier. The Drive service outlives the
// sign-in call, so it is constructed over a background context.
func (a *googleAuthInstance) installToken(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*types.AuthSession, error) {
	source := cfg.TokenSource(context.Background(), token)

	svc, err := drive.NewService(context.Background(), option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	account := ""
	if about, err := svc.About.Get().Fields("user(emailAddress)").Context(ctx).Do(); err == nil && about.User != nil {
		account = about.User.EmailAddress
	}

	session := &types.AuthSession{
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Account:     account,
	}

	a.h.mu.Lock()
	a.h.token = token
	a.h.tokenSource = source
	a.h.session = session
	a.h.drive = svc
	a.h.mu.Unlock()

	a.h.logger.Info("signed in", logging.F("account", account))
	return session, nil
}

func (a *googleAuthInstance) CurrentSession(ctx context.Context) (*types.AuthSession, bool, error) {
	a.h.mu.Lock()
	session := a.h.session
	source := a.h.tokenSource
	a.h.mu.Unlock()

	if session == nil {
		return nil, false, nil
	}
	if session.Valid() {
		return session, true, nil
	}
	if source == nil {
		return nil, false, nil
	}

	// Expired access token with a live token source: refresh in place.
	fresh, err := source.Token()
	if err != nil {
		return nil, false, err
	}

	a.h.mu.Lock()
	a.h.token = fresh
	a.h.session = &types.AuthSession{
		AccessToken: fresh.AccessToken,
		Expiry:      fresh.Expiry,
		Account:     session.Account,
	}
	session = a.h.session
	a.h.mu.Unlock()

	return session, true, nil
}

func (a *googleAuthInstance) SignOut(ctx context.Context) error {
	a.h.mu.Lock()
	a.h.token = nil
	a.h.tokenSource = nil
	a.h.session = nil
	a.h.drive = nil
	a.h.mu.Unlock()
	return nil
}

type googleDriveService struct {
	h *GoogleHandle
}

func (d *googleDriveService) service() (*drive.Service, error) {
	d.h.mu.Lock()
	defer d.h.mu.Unlock()
	if d.h.drive == nil {
		return nil, fmt.Errorf("not signed in")
	}
	return d.h.drive, nil
}

func (d *googleDriveService) FindFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error) {
	svc, err := d.service()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeQueryValue(name), utils.MimeTypeFolder)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQueryValue(parentID))
	}

	result, err := svc.Files.List().
		Q(query).
		PageSize(1).
		Fields("files(id,name,mimeType,parents)").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, nil
	}

	return convertDriveFile(result.Files[0]), nil
}

func (d *googleDriveService) CreateFolder(ctx context.Context, name, parentID string) (*types.DriveFile, error) {
	svc, err := d.service()
	if err != nil {
		return nil, err
	}

	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
	}
	if parentID != "" {
		metadata.Parents = []string{parentID}
	}

	result, err := svc.Files.Create(metadata).
		Fields("id,name,mimeType,parents").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return convertDriveFile(result), nil
}

func (d *googleDriveService) CreateFile(ctx context.Context, meta FileMetadata, content io.Reader) (*types.DriveFile, error) {
	svc, err := d.service()
	if err != nil {
		return nil, err
	}

	metadata := &drive.File{
		Name:     meta.Name,
		MimeType: meta.MimeType,
	}
	if meta.ParentID != "" {
		metadata.Parents = []string{meta.ParentID}
	}

	result, err := svc.Files.Create(metadata).
		Media(content).
		Fields("id,name,mimeType,parents,webViewLink,webContentLink").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return convertDriveFile(result), nil
}

func convertDriveFile(f *drive.File) *types.DriveFile {
	return &types.DriveFile{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Parents:        f.Parents,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
		Trashed:        f.Trashed,
	}
}

func escapeQueryValue(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func codeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
