package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/h2non/filetype"

	"github.com/HeinSoeHtet/harp/internal/lyrics"
	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

const (
	lyricMimeType = "text/plain"
	lrcExtension  = ".lrc"
)

// UploadSong pushes a new song into the library: audio (and optional cover
// art) go to the drive first, then the index gains the entry, then the local
// cache stores the fully hydrated row. Requires a connection.
//
// Metadata is read from the audio's embedded tags; absent fields fall back to
// the filename and the default artist/album. Duration is unknown at upload
// time and stays 0 until corrected from a decoded stream.
func (e *Engine) UploadSong(ctx context.Context, audio []byte, filename string, image []byte, notifyExpiry bool) (*models.Song, error) {
	if err := e.requireConnection(); err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", shared.ErrInvalidInput)
	}

	song := &models.Song{
		ID:        shared.GenerateID(),
		Title:     strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Artist:    models.DefaultArtist,
		Album:     models.DefaultAlbum,
		AddedAt:   e.now(),
		AudioBlob: audio,
	}

	if meta, err := tag.ReadFrom(bytes.NewReader(audio)); err == nil {
		if meta.Title() != "" {
			song.Title = meta.Title()
		}
		if meta.Artist() != "" {
			song.Artist = meta.Artist()
		}
		if meta.Album() != "" {
			song.Album = meta.Album()
		}
		if image == nil {
			if pic := meta.Picture(); pic != nil {
				image = pic.Data
			}
		}
	} else {
		e.logger.Debug("no embedded tags", "file", filename, "err", err)
	}

	mimeType := mpegMimeType
	if kind, err := filetype.Match(audio); err == nil && kind.MIME.Value != "" {
		mimeType = kind.MIME.Value
	}

	folderID, err := e.ensureFolder(ctx, notifyExpiry)
	if err != nil {
		return nil, err
	}

	audioID, err := e.objects.Upload(ctx, audio, song.ID+filepath.Ext(filename), folderID, mimeType, notifyExpiry)
	if err != nil {
		return nil, fmt.Errorf("audio upload failed: %w", err)
	}
	song.DriveID = audioID

	if len(image) > 0 {
		imageMime := "image/jpeg"
		if kind, err := filetype.Match(image); err == nil && kind.MIME.Value != "" {
			imageMime = kind.MIME.Value
		}
		imageID, err := e.objects.Upload(ctx, image, song.ID+"-cover", folderID, imageMime, notifyExpiry)
		if err != nil {
			e.logger.Warn("cover art upload failed", "song", song.ID, "err", err)
		} else {
			song.ImageBlob = image
			song.DriveImageID = imageID
		}
	}

	err = e.mutateIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		idx.Songs[song.ID] = song.RemoteEntry(mimeType)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.songs.Save(ctx, song); err != nil {
		return nil, err
	}

	e.logger.Info("song uploaded", "id", song.ID, "title", song.Title)
	return song, nil
}

// SaveLocal stores a song in the cache without touching the remote library.
// Intended for offline additions that a later upload promotes.
func (e *Engine) SaveLocal(ctx context.Context, song *models.Song) error {
	if song.ID == "" {
		song.ID = shared.GenerateID()
	}
	if song.AddedAt == 0 {
		song.AddedAt = e.now()
	}
	if song.Artist == "" {
		song.Artist = models.DefaultArtist
	}
	if song.Album == "" {
		song.Album = models.DefaultAlbum
	}
	return e.songs.Save(ctx, song)
}

// UpdateSongMetadata changes a song's title, artist and album. Connected, the
// remote index is written first and a failed write leaves the cached row
// untouched; disconnected, the edit lands on the local row and the offline
// snapshot. Empty fields keep their current values. Never re-uploads or
// renames the remote objects.
func (e *Engine) UpdateSongMetadata(ctx context.Context, id, title, artist, album string, notifyExpiry bool) (*models.Song, error) {
	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		song.Title = title
	}
	if artist != "" {
		song.Artist = artist
	}
	if album != "" {
		song.Album = album
	}

	connected := e.Connected()
	err = e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		entry, ok := idx.Songs[id]
		if !ok {
			if connected {
				return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
			}
			// snapshot predates this song; the next sync reconciles
			return nil
		}
		entry.Title = song.Title
		entry.Artist = song.Artist
		entry.Album = song.Album
		idx.Songs[id] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.songs.Save(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

// DeleteSong removes a song everywhere: the local row first and
// unconditionally, then (when connected) its drive objects, then its index
// entry along with every playlist reference to it. Each remote object
// deletion is best effort: a failure is logged and never rolls back the local
// deletion or blocks the remaining objects. Disconnected, only the local row
// and the offline snapshot are scrubbed; the remote copies survive until the
// next connected delete.
func (e *Engine) DeleteSong(ctx context.Context, id string, notifyExpiry bool) error {
	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.songs.Delete(ctx, id); err != nil {
		return err
	}

	if e.Connected() {
		for _, objectID := range []string{song.DriveID, song.DriveImageID, song.DriveLyricID} {
			if objectID == "" {
				continue
			}
			if err := e.objects.Delete(ctx, objectID, notifyExpiry); err != nil && !errors.Is(err, shared.ErrRemoteObjectGone) {
				e.logger.Warn("remote object deletion failed", "song", id, "object", objectID, "err", err)
			}
		}
	}

	err = e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		removeSongEverywhere(idx, id)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("song deleted", "id", id)
	return nil
}

func removeSongEverywhere(idx *models.LibraryIndex, id string) {
	delete(idx.Songs, id)
	for pid, playlist := range idx.Playlists {
		filtered := playlist.SongIDs[:0:0]
		for _, sid := range playlist.SongIDs {
			if sid != id {
				filtered = append(filtered, sid)
			}
		}
		playlist.SongIDs = filtered
		idx.Playlists[pid] = playlist
	}
}

// SaveLyrics replaces a song's synced lyrics. Connected, the old remote lyric
// object is deleted (best effort) before the replacement is uploaded and the
// index entry is repointed; disconnected, only the local copy changes and the
// remote object goes stale until the lyrics are saved again online.
func (e *Engine) SaveLyrics(ctx context.Context, id string, lines []models.LyricLine, notifyExpiry bool) (*models.Song, error) {
	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	content := lyrics.FormatLRC(lines)
	song.Lyrics = lines
	song.LyricBlob = []byte(content)

	if !e.Connected() {
		if err := e.songs.Save(ctx, song); err != nil {
			return nil, err
		}
		return song, nil
	}

	if song.DriveLyricID != "" {
		if err := e.objects.Delete(ctx, song.DriveLyricID, notifyExpiry); err != nil && !errors.Is(err, shared.ErrRemoteObjectGone) {
			// the orphan costs a little remote space; the replacement
			// must still go up
			e.logger.Warn("stale lyric object not deleted", "song", id, "object", song.DriveLyricID, "err", err)
		}
		song.DriveLyricID = ""
	}

	folderID, err := e.ensureFolder(ctx, notifyExpiry)
	if err != nil {
		return nil, err
	}
	lyricID, err := e.objects.Upload(ctx, []byte(content), song.ID+lrcExtension, folderID, lyricMimeType, notifyExpiry)
	if err != nil {
		return nil, fmt.Errorf("lyric upload failed: %w", err)
	}
	song.DriveLyricID = lyricID

	err = e.mutateIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		entry, ok := idx.Songs[id]
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
		}
		entry.DriveLyricID = lyricID
		entry.Lyrics = nil // lyrics live in the .lrc object now
		idx.Songs[id] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.songs.Save(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

// FetchLyrics searches the public lyric catalog for synced lyrics matching
// the song's metadata. Returns nil without error when nothing matches.
func (e *Engine) FetchLyrics(ctx context.Context, id string) ([]models.LyricLine, error) {
	if e.lrclib == nil {
		return nil, fmt.Errorf("%w: lyric search is not configured", shared.ErrInvalidConfig)
	}

	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.lrclib.Search(ctx, song.Title, song.Artist, song.Duration)
}

// CorrectDuration records the true duration measured from a decoded stream.
// A purely local correction: the index keeps its value until the next remote
// write of this song, so devices converge lazily.
func (e *Engine) CorrectDuration(ctx context.Context, id string, duration float64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", shared.ErrInvalidArgument)
	}

	song, err := e.songs.Get(ctx, id)
	if err != nil {
		return err
	}
	if song.Duration == duration {
		return nil
	}

	song.Duration = duration
	if err := e.songs.Save(ctx, song); err != nil {
		return err
	}
	return e.mutateSnapshot(ctx, func(idx *models.LibraryIndex) {
		if entry, ok := idx.Songs[id]; ok {
			entry.Duration = duration
			idx.Songs[id] = entry
		}
	})
}
