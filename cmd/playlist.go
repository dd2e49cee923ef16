package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/library"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// PlaylistList prints every playlist, favorites first.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(func(e *library.Engine) error {
		playlists, err := e.Playlists(ctx, true)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(playlists, true)
		}

		for _, playlist := range playlists {
			r.writePlain("%s  %s (%d songs)\n", playlist.ID, playlist.Name, len(playlist.SongIDs))
		}
		return nil
	})
}

// PlaylistShow prints a playlist's songs in order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		playlist, songs, err := e.ResolvePlaylist(ctx, id, true)
		if err != nil {
			return err
		}

		r.writePlain("%s (%d songs)\n", playlist.Name, len(songs))
		for i, song := range songs {
			r.writePlain("%2d. %s - %s\n", i+1, song.Artist, song.Title)
		}
		return nil
	})
}

// PlaylistCreate adds a new empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		playlist, err := e.CreatePlaylist(ctx, name, true)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Playlist created: %s (%s)\n", playlist.Name, playlist.ID)
	})
}

// PlaylistAdd appends a song to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(func(e *library.Engine) error {
		if err := e.AddToPlaylist(ctx, cmd.String("playlist"), cmd.String("song"), true); err != nil {
			return err
		}
		return r.writePlain("✓ Song added\n")
	})
}

// PlaylistRemove drops a song from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(func(e *library.Engine) error {
		if err := e.RemoveFromPlaylist(ctx, cmd.String("playlist"), cmd.String("song"), true); err != nil {
			return err
		}
		return r.writePlain("✓ Song removed\n")
	})
}

// PlaylistDelete removes a playlist; its songs stay in the library.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		if err := e.DeletePlaylist(ctx, id, true); err != nil {
			return err
		}
		return r.writePlain("✓ Playlist deleted\n")
	})
}
