package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/library"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

const loginTimeout = 3 * time.Minute

// AuthLogin runs the loopback OAuth flow: opens the consent page, captures
// the authorization code on the redirect, exchanges it for a bearer token via
// the token service, and persists the token for later invocations.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	google := r.config.Credentials.Google
	if google.ClientID == "" {
		return fmt.Errorf("%w: credentials.google.client_id is not set", shared.ErrMissingCredentials)
	}
	if r.tokens == nil {
		return fmt.Errorf("%w: credentials.google.token_service is not set", shared.ErrMissingConfig)
	}

	oauthConfig := auth.NewOAuthConfig(google.ClientID, google.RedirectURI)
	state := shared.GenerateID()
	handler := auth.NewCallbackHandler(state)

	redirect, err := url.Parse(google.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: invalid redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/callback"
	}

	mux := http.NewServeMux()
	mux.Handle(callbackPath, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port),
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	authURL := auth.AuthCodeURL(oauthConfig, state)
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to authorize:\n%s\n", authURL)
	} else {
		r.logger.Info("opening browser for authorization")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "err", err)
			r.writePlain("Open this URL to authorize:\n%s\n", authURL)
		}
	}

	var code string
	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
		code = result.Code
	case err := <-serverErr:
		return fmt.Errorf("callback server failed: %w", err)
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: timed out waiting for authorization", shared.ErrNotConnected)
	case <-ctx.Done():
		return ctx.Err()
	}

	r.logger.Info("exchanging authorization code")
	token, err := r.tokens.ExchangeAuthCode(ctx, code)
	if err != nil {
		return err
	}

	r.session.SetToken(token)
	if err := saveTokenFile(token); err != nil {
		r.logger.Warn("failed to persist token", "err", err)
	}

	return r.writePlain("✓ Connected to drive\n")
}

// AuthStatus reports whether a bearer token is currently held.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.session.Connected() {
		r.writePlain("✓ Connected\n")
		return r.writePlain("Token file: %s\n", tokenFilePath())
	}
	return r.writePlain("✗ Not connected, run 'harp auth login'\n")
}

// Logout revokes the drive token, forgets it locally and wipes the cache
// database. The remote library is untouched.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if r.session.Connected() {
		client := r.driveClient()
		if err := client.RevokeToken(ctx, r.session.Token()); err != nil {
			r.logger.Warn("token revocation failed", "err", err)
		}
	}

	r.session.Clear()
	if err := clearTokenFile(); err != nil {
		r.logger.Warn("failed to remove token file", "err", err)
	}

	err := r.withEngine(func(e *library.Engine) error {
		return e.ClearLocal(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to clear local cache: %w", err)
	}

	return r.writePlain("✓ Logged out, local cache cleared\n")
}
