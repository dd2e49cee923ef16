// package auth holds the drive session state and the credential exchange client
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/HeinSoeHtet/harp/internal/shared"
)

// TokenSource provides fresh bearer tokens for the drive session.
// Implementations own the refresh-token exchange; callers only see access tokens.
type TokenSource interface {
	FreshAccessToken(ctx context.Context) (string, error)
}

// Session holds the current bearer token for a client session.
//
// It replaces the original's global reactive credential state with an explicit
// object: every engine call reads the token through the session, and the drive
// client writes refreshed tokens back so in-flight callers pick them up.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession creates a session seeded with the given token (may be empty).
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current bearer token, or "" when disconnected.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the session's bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the session's bearer token.
func (s *Session) Clear() {
	s.SetToken("")
}

// Connected reports whether a bearer token is available.
func (s *Session) Connected() bool {
	return s.Token() != ""
}

// Exchanger talks to the token exchange service: the thin serverless custodian
// of the refresh token. Both endpoints are idempotent and safe to retry.
type Exchanger struct {
	baseURL    string
	idToken    string // caller identity for the exchange service, not the drive token
	httpClient *http.Client
}

// NewExchanger creates a client for the token exchange service.
func NewExchanger(baseURL, idToken string, client *http.Client) *Exchanger {
	if client == nil {
		client = http.DefaultClient
	}
	return &Exchanger{baseURL: baseURL, idToken: idToken, httpClient: client}
}

type exchangeResponse struct {
	AccessToken string `json:"accessToken"`
	Success     bool   `json:"success"`
}

// post issues an authenticated JSON POST to the exchange service.
func (e *Exchanger) post(ctx context.Context, path string, payload any) (*exchangeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.idToken)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("exchange service error: status %d", resp.StatusCode)
	}

	var result exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode exchange response: %w", err)
	}
	return &result, nil
}

// ExchangeAuthCode trades an OAuth authorization code for a drive access token.
// The exchange service stores the refresh token server-side.
func (e *Exchanger) ExchangeAuthCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	result, err := e.post(ctx, "/exchangeAuthCode", map[string]string{"code": code})
	if err != nil {
		return "", err
	}
	if !result.Success || result.AccessToken == "" {
		return "", fmt.Errorf("%w: exchange rejected", shared.ErrRefreshFailed)
	}
	return result.AccessToken, nil
}

// FreshAccessToken obtains a new drive access token from the stored refresh
// token. Implements [TokenSource].
func (e *Exchanger) FreshAccessToken(ctx context.Context) (string, error) {
	result, err := e.post(ctx, "/getFreshAccessToken", map[string]string{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if result.AccessToken == "" {
		return "", shared.ErrRefreshFailed
	}
	return result.AccessToken, nil
}
