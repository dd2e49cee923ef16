package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "err", err)
		}
	}

	session := auth.NewSession(loadTokenFile())

	var tokens *auth.Exchanger
	if config.Credentials.Google.TokenService != "" {
		tokens = auth.NewExchanger(config.Credentials.Google.TokenService, os.Getenv("HARP_ID_TOKEN"), nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Session: session,
		Tokens:  tokens,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "harp",
		Usage:    "Sync a personal music library against a cloud drive",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
