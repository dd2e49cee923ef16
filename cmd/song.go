package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/HeinSoeHtet/harp/internal/library"
	"github.com/HeinSoeHtet/harp/internal/lyrics"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// SongList prints every cached song, newest first.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	return r.withEngine(func(e *library.Engine) error {
		songs, err := e.Songs(ctx)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(songs, cmd.Bool("pretty"))
		}

		if len(songs) == 0 {
			return r.writePlain("Library is empty - run 'harp sync' or 'harp song upload'\n")
		}

		for _, song := range songs {
			marker := " "
			if song.Hydrated() {
				marker = "●"
			}
			r.writePlain("%s %s  %s - %s (%s)\n", marker, song.ID, song.Artist, song.Title, song.Album)
		}
		return nil
	})
}

// SongHydrate downloads a song's binary payloads into the cache.
func (r *Runner) SongHydrate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		song, err := e.Hydrate(ctx, id, true)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %s - %s hydrated (%d bytes)\n", song.Artist, song.Title, len(song.AudioBlob))
	})
}

// SongUpload pushes a local mp3 file into the library.
func (r *Runner) SongUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: audio file path", shared.ErrMissingArgument)
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	var cover []byte
	if coverPath := cmd.String("cover"); coverPath != "" {
		if cover, err = os.ReadFile(coverPath); err != nil {
			return fmt.Errorf("failed to read cover file: %w", err)
		}
	}

	return r.withEngine(func(e *library.Engine) error {
		song, err := e.UploadSong(ctx, audio, path, cover, true)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Uploaded %s - %s (%s)\n", song.Artist, song.Title, song.ID)
	})
}

// SongEdit updates a song's title, artist or album.
func (r *Runner) SongEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	title := cmd.String("title")
	artist := cmd.String("artist")
	album := cmd.String("album")
	if title == "" && artist == "" && album == "" {
		return fmt.Errorf("%w: at least one of --title, --artist, --album", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		song, err := e.UpdateSongMetadata(ctx, id, title, artist, album, true)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %s - %s (%s)\n", song.Artist, song.Title, song.Album)
	})
}

// SongDelete removes a song from the library.
func (r *Runner) SongDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		if err := e.DeleteSong(ctx, id, true); err != nil {
			return err
		}
		return r.writePlain("✓ Song deleted\n")
	})
}

// SongLyrics shows a song's synced lyrics, or replaces them from an .lrc file
// or a catalog search.
func (r *Runner) SongLyrics(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	return r.withEngine(func(e *library.Engine) error {
		if path := cmd.String("file"); path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read lyric file: %w", err)
			}
			lines := lyrics.ParseLRC(string(content))
			if len(lines) == 0 {
				return fmt.Errorf("%w: no timed lyric lines in %s", shared.ErrInvalidInput, path)
			}
			if _, err := e.SaveLyrics(ctx, id, lines, true); err != nil {
				return err
			}
			return r.writePlain("✓ Lyrics saved (%d lines)\n", len(lines))
		}

		if cmd.Bool("search") {
			lines, err := e.FetchLyrics(ctx, id)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return r.writePlain("No synced lyrics found\n")
			}
			if _, err := e.SaveLyrics(ctx, id, lines, true); err != nil {
				return err
			}
			return r.writePlain("✓ Lyrics found and saved (%d lines)\n", len(lines))
		}

		song, err := e.Song(ctx, id)
		if err != nil {
			return err
		}
		if len(song.Lyrics) == 0 {
			return r.writePlain("No lyrics - try 'harp song lyrics %s --search'\n", id)
		}
		return r.writePlain("%s", lyrics.FormatLRC(song.Lyrics))
	})
}
