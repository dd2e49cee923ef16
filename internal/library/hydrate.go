package library

import (
	"context"
	"fmt"

	"github.com/HeinSoeHtet/harp/internal/lyrics"
	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// Hydrate downloads a song's binary payloads into the local cache and returns
// the hydrated row. Calling it on an already hydrated song is a no-op.
//
// The audio payload is mandatory: any failure fetching it aborts the whole
// operation. Cover art and the raw lyric object are best effort.
func (e *Engine) Hydrate(ctx context.Context, id string, notifyExpiry bool) (*models.Song, error) {
	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if song.Hydrated() {
		return song, nil
	}

	if err := e.requireConnection(); err != nil {
		return nil, err
	}
	if song.DriveID == "" {
		return nil, fmt.Errorf("%w: song %s", shared.ErrMissingRemoteRef, id)
	}

	audio, err := e.objects.Download(ctx, song.DriveID, notifyExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate song %s: %w", id, err)
	}
	song.AudioBlob = audio

	if song.DriveImageID != "" {
		image, err := e.objects.Download(ctx, song.DriveImageID, notifyExpiry)
		if err != nil {
			e.logger.Warn("cover art download failed", "song", id, "err", err)
		} else {
			song.ImageBlob = image
		}
	}

	if song.DriveLyricID != "" {
		lyric, err := e.objects.Download(ctx, song.DriveLyricID, notifyExpiry)
		if err != nil {
			e.logger.Warn("lyric download failed", "song", id, "err", err)
		} else {
			song.LyricBlob = lyric
			if len(song.Lyrics) == 0 {
				song.Lyrics = lyrics.ParseLRC(string(lyric))
			}
		}
	}

	if err := e.songs.Save(ctx, song); err != nil {
		return nil, err
	}

	e.logger.Info("song hydrated", "id", id, "bytes", len(audio))
	return song, nil
}
