package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLRCLIBSearch(t *testing.T) {
	t.Run("returns first synced result within duration tolerance", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if q := r.URL.Query().Get("q"); q != "Artist Title" {
				t.Errorf("unexpected query %q", q)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id": 1, "trackName": "Title", "artistName": "Artist", "duration": 300, "syncedLyrics": ""},
				{"id": 2, "trackName": "Title", "artistName": "Artist", "duration": 240, "syncedLyrics": "[00:10.00]Too long"},
				{"id": 3, "trackName": "Title", "artistName": "Artist", "duration": 182, "syncedLyrics": "[00:05.00]Match"}
			]`))
		}))
		defer server.Close()

		client := NewLRCLIBClient(server.URL, server.Client())
		lines, err := client.Search(context.Background(), "Title", "Artist", 180)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		if lines[0].Text != "Match" {
			t.Errorf("expected the in-tolerance result, got %q", lines[0].Text)
		}
	})

	t.Run("zero duration skips the tolerance check", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id": 1, "duration": 500, "syncedLyrics": "[00:01.00]Any"}]`))
		}))
		defer server.Close()

		client := NewLRCLIBClient(server.URL, server.Client())
		lines, err := client.Search(context.Background(), "t", "a", 0)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(lines) != 1 || lines[0].Text != "Any" {
			t.Errorf("expected the result regardless of duration, got %v", lines)
		}
	})

	t.Run("no usable result returns nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewLRCLIBClient(server.URL, server.Client())
		lines, err := client.Search(context.Background(), "t", "a", 100)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if lines != nil {
			t.Errorf("expected nil, got %v", lines)
		}
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewLRCLIBClient(server.URL, server.Client())
		if _, err := client.Search(context.Background(), "t", "a", 100); err == nil {
			t.Error("expected an error")
		}
	})
}
