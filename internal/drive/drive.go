// Drive API implementation of the remote object store client
//
// Wire protocol per https://developers.google.com/drive/api/reference/rest/v3
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"
	defaultRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// Object is a remote file's identity as returned by the store.
type Object struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Checksum string `json:"md5Checksum"` // content fingerprint; empty for folders
}

// Opts contains configuration options for creating a Client.
type Opts struct {
	BaseURL    string
	UploadURL  string
	RevokeURL  string
	HTTPClient *http.Client
	Session    *auth.Session
	Tokens     auth.TokenSource
	RateLimit  float64 // requests per second; <= 0 disables limiting
	Logger     *log.Logger
}

// Client is a typed wrapper over the drive wire protocol.
//
// Every operation takes a notifyExpiry flag: when an authorization failure
// survives the quiet refresh, observers registered with [Client.OnSessionExpired]
// are only told about it if the failing call asked for user-facing expiry.
//
// The refresh policy is retry-once: a 401 triggers one quiet token refresh and
// one re-issue of the identical request. A second 401, or a failed refresh,
// surfaces as [shared.ErrSessionExpired].
type Client struct {
	baseURL    string
	uploadURL  string
	revokeURL  string
	httpClient *http.Client
	session    *auth.Session
	tokens     auth.TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger

	mu        sync.Mutex
	refreshed []func(token string)
	expired   []func()
}

// NewClient creates a drive client bound to the given session.
func NewClient(opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UploadURL == "" {
		opts.UploadURL = defaultUploadURL
	}
	if opts.RevokeURL == "" {
		opts.RevokeURL = defaultRevokeURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = auth.NewSession("")
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		baseURL:    opts.BaseURL,
		uploadURL:  opts.UploadURL,
		revokeURL:  opts.RevokeURL,
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		tokens:     opts.Tokens,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// Session returns the session this client reads tokens from.
func (c *Client) Session() *auth.Session {
	return c.session
}

// OnTokenRefreshed registers an observer for successful quiet refreshes.
// Observers receive the new bearer token.
func (c *Client) OnTokenRefreshed(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshed = append(c.refreshed, fn)
}

// OnSessionExpired registers an observer for user-facing session expiry.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired = append(c.expired, fn)
}

func (c *Client) notifyRefreshed(token string) {
	c.mu.Lock()
	observers := make([]func(string), len(c.refreshed))
	copy(observers, c.refreshed)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(token)
	}
}

func (c *Client) notifyExpired() {
	c.mu.Lock()
	observers := make([]func(), len(c.expired))
	copy(observers, c.expired)
	c.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// requestBuilder constructs a request carrying the given bearer token.
// Rebuilding rather than reusing lets the retry re-send request bodies.
type requestBuilder func(token string) (*http.Request, error)

// do executes a drive request with the quiet-refresh-retry-once policy.
//
// The caller owns the returned response body.
func (c *Client) do(ctx context.Context, build requestBuilder, notifyExpiry bool) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	token := c.session.Token()
	if token == "" {
		return nil, shared.ErrNotConnected
	}

	req, err := build(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDriveRequest, err)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	c.logger.Warn("drive returned 401, attempting quiet revalidation")

	newToken, refreshErr := c.quietRefresh(ctx)
	if refreshErr != nil {
		c.logger.Error("quiet revalidation failed", "error", refreshErr)
		if notifyExpiry {
			c.notifyExpired()
		}
		return nil, shared.ErrSessionExpired
	}

	c.session.SetToken(newToken)
	c.notifyRefreshed(newToken)
	c.logger.Info("quiet revalidation successful, retrying request")

	req, err = build(newToken)
	if err != nil {
		return nil, fmt.Errorf("failed to recreate request: %w", err)
	}

	resp, err = c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDriveRequest, err)
	}

	// Retry-once: a second 401 is terminal, no further refresh.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, shared.ErrSessionExpired
	}

	return resp, nil
}

// quietRefresh asks the token source for a fresh bearer token.
func (c *Client) quietRefresh(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", shared.ErrRefreshFailed
	}
	token, err := c.tokens.FreshAccessToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", shared.ErrRefreshFailed
	}
	return token, nil
}

// checkStatus maps a non-2xx response to an error carrying a body snippet.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", shared.ErrRemoteObjectGone, resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Errorf("%w: status %d: %s", shared.ErrDriveRequest, resp.StatusCode, snippet)
}
