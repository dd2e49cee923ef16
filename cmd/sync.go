package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/library"
)

// Sync reconciles the local cache against the remote library index.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(func(e *library.Engine) error {
		if err := e.SyncFromRemote(ctx, true); err != nil {
			return err
		}

		songs, err := e.Songs(ctx)
		if err != nil {
			return err
		}

		hydrated := 0
		for _, song := range songs {
			if song.Hydrated() {
				hydrated++
			}
		}

		r.writePlain("✓ Library synced\n")
		return r.writePlain("%d songs (%d hydrated)\n", len(songs), hydrated)
	})
}
