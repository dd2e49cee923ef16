package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "harp.db" {
			t.Errorf("expected database path harp.db, got %s", config.Database.Path)
		}

		if config.Library.FolderName != "Harp Music Library" {
			t.Errorf("expected folder name Harp Music Library, got %s", config.Library.FolderName)
		}

		if config.Library.IndexName != "library.json" {
			t.Errorf("expected index name library.json, got %s", config.Library.IndexName)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Library.RateLimit != 5.0 {
			t.Errorf("expected rate limit 5.0, got %v", config.Library.RateLimit)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[credentials.google]
client_id = "test_client_id"
redirect_uri = "http://localhost:9090/callback"
token_service = "https://tokens.example.com"

[library]
folder_name = "Custom Library"
index_name = "index.json"
app_id = "custom-app"
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}

		if config.Credentials.Google.ClientID != "test_client_id" {
			t.Errorf("expected google client_id test_client_id, got %s", config.Credentials.Google.ClientID)
		}

		if config.Library.FolderName != "Custom Library" {
			t.Errorf("expected folder name Custom Library, got %s", config.Library.FolderName)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}
