package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/shared"
	tu "github.com/HeinSoeHtet/harp/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			session := auth.NewSession("tok")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Session:    session,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.session != session {
				t.Error("expected session to be set")
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.session == nil {
				t.Error("expected a default session")
			}
			if runner.session.Connected() {
				t.Error("default session should be disconnected")
			}
		})
	})

	t.Run("register returns all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, expected := range []string{"setup", "auth", "sync", "song", "playlist"} {
			if !names[expected] {
				t.Errorf("missing command %q", expected)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"k": "v"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if got := output.String(); got != "{\"k\":\"v\"}\n" {
				t.Errorf("unexpected output %q", got)
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"k": "v"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "  \"k\": \"v\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON("x", false); err == nil {
				t.Error("expected a write error")
			}
		})
	})

	t.Run("writePlain write failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected a write error")
		}
	})

	t.Run("AuthStatus reflects the session", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Session: auth.NewSession("")})
		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Not connected") {
			t.Errorf("expected a disconnected report, got %q", output.String())
		}

		output.Reset()
		runner = NewRunner(RunnerOpts{Output: output, Session: auth.NewSession("tok")})
		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Connected") {
			t.Errorf("expected a connected report, got %q", output.String())
		}
	})

	t.Run("driveClient uses the runner's transport", func(t *testing.T) {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"files": []}`)),
		}
		runner := NewRunner(RunnerOpts{
			Session:    auth.NewSession("tok"),
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
		})

		obj, err := runner.driveClient().FindByName(context.Background(), "library.json", "", true)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if obj != nil {
			t.Errorf("expected no match, got %+v", obj)
		}
	})
}
