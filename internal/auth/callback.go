package auth

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// Drive OAuth endpoints and the scope the library needs.
const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	DriveFileScope = "https://www.googleapis.com/auth/drive.file"
)

// NewOAuthConfig builds the oauth2 config for the browser authorization flow.
// The actual code exchange happens server-side via [Exchanger]; locally the
// config only produces the authorization URL.
func NewOAuthConfig(clientID, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      []string{DriveFileScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
}

// AuthCodeURL returns the authorization URL for the given CSRF state token.
func AuthCodeURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// CallbackResult carries the outcome of the loopback OAuth callback.
type CallbackResult struct {
	Code string
	err  error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler captures the authorization code from the loopback redirect.
//
// Unlike a full OAuth handler it does not exchange the code; the code is
// handed to [Exchanger.ExchangeAuthCode] so the refresh token never reaches
// this process.
type CallbackHandler struct {
	state      string
	resultChan chan CallbackResult
	once       sync.Once
	mu         sync.Mutex
	hit        bool
}

// NewCallbackHandler creates a handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// ServeHTTP handles the OAuth callback request: validates the state parameter
// and sends the captured code through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	if state := r.URL.Query().Get("state"); state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		h.send(CallbackResult{err: fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.send(CallbackResult{Code: code})

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Authorization successful. You can close this window and return to the terminal.")
}

// send delivers the result exactly once and closes the channel.
func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives the single callback outcome.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
