package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/drive"
	"github.com/HeinSoeHtet/harp/internal/library"
	"github.com/HeinSoeHtet/harp/internal/lyrics"
	"github.com/HeinSoeHtet/harp/internal/shared"
	"github.com/HeinSoeHtet/harp/internal/store"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	session    *auth.Session
	tokens     *auth.Exchanger
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Session    *auth.Session
	Tokens     *auth.Exchanger
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = auth.NewSession("")
	}

	return &Runner{
		config:     opts.Config,
		session:    opts.Session,
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, songCommand, playlistCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// driveClient builds the remote object store client, wired so refreshed
// tokens are persisted and an expired session tells the user to log in again.
func (r *Runner) driveClient() *drive.Client {
	client := drive.NewClient(drive.Opts{
		HTTPClient: r.httpClient,
		Session:    r.session,
		Tokens:     r.tokens,
		RateLimit:  r.config.Library.RateLimit,
		Logger:     r.logger,
	})

	client.OnTokenRefreshed(func(token string) {
		if err := saveTokenFile(token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "err", err)
		}
	})
	client.OnSessionExpired(func() {
		r.logger.Warn("session expired, run 'harp auth login' to reconnect")
	})

	return client
}

// withEngine opens the cache database, assembles the sync engine and runs fn
// against it. The database handle is closed when fn returns.
func (r *Runner) withEngine(fn func(e *library.Engine) error) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database (run 'harp setup' first): %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	engine := library.NewEngine(library.Opts{
		Songs:      store.NewSongStore(db),
		State:      store.NewStateStore(db),
		Objects:    r.driveClient(),
		Session:    r.session,
		Lyrics:     lyrics.NewLRCLIBClient("", r.httpClient),
		Logger:     r.logger,
		FolderName: r.config.Library.FolderName,
		IndexName:  r.config.Library.IndexName,
		AppID:      r.config.Library.AppID,
	})

	return fn(engine)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// authDir is where the CLI keeps its bearer token between invocations.
func authDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".harp")
}

func tokenFilePath() string {
	return filepath.Join(authDir(), "token")
}

func loadTokenFile() string {
	data, err := os.ReadFile(tokenFilePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveTokenFile(token string) error {
	if err := os.MkdirAll(authDir(), 0755); err != nil {
		return fmt.Errorf("failed to create auth directory: %w", err)
	}
	if err := os.WriteFile(tokenFilePath(), []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func clearTokenFile() error {
	if err := os.Remove(tokenFilePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
