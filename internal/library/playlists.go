package library

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// CreatePlaylist adds a new empty playlist to the index, remote when
// connected, offline snapshot otherwise.
func (e *Engine) CreatePlaylist(ctx context.Context, name string, notifyExpiry bool) (*models.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	playlist := models.Playlist{
		ID:        shared.GenerateID(),
		Name:      name,
		SongIDs:   []string{},
		CreatedAt: e.now(),
	}

	err := e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		idx.Playlists[playlist.ID] = playlist
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("playlist created", "id", playlist.ID, "name", name)
	return &playlist, nil
}

// AddToPlaylist appends a song to a playlist. Adding a song that is already
// present is a no-op. Adding to the reserved favorites playlist materializes
// it on first use.
func (e *Engine) AddToPlaylist(ctx context.Context, playlistID, songID string, notifyExpiry bool) error {
	return e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		playlist, err := lookupPlaylist(idx, playlistID, e.now())
		if err != nil {
			return err
		}
		if _, ok := idx.Songs[songID]; !ok {
			return fmt.Errorf("%w: %s", shared.ErrSongNotFound, songID)
		}
		if playlist.Contains(songID) {
			return nil
		}
		playlist.SongIDs = append(playlist.SongIDs, songID)
		idx.Playlists[playlist.ID] = playlist
		return nil
	})
}

// RemoveFromPlaylist drops a song from a playlist. Removing a song that is
// not present is a no-op.
func (e *Engine) RemoveFromPlaylist(ctx context.Context, playlistID, songID string, notifyExpiry bool) error {
	return e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		playlist, err := lookupPlaylist(idx, playlistID, e.now())
		if err != nil {
			return err
		}
		if !playlist.Contains(songID) {
			return nil
		}

		filtered := playlist.SongIDs[:0:0]
		for _, id := range playlist.SongIDs {
			if id != songID {
				filtered = append(filtered, id)
			}
		}
		playlist.SongIDs = filtered
		idx.Playlists[playlist.ID] = playlist
		return nil
	})
}

// DeletePlaylist removes a playlist from the index. The favorites playlist is
// reserved and cannot be deleted. Songs the playlist referenced are untouched.
func (e *Engine) DeletePlaylist(ctx context.Context, playlistID string, notifyExpiry bool) error {
	if playlistID == models.FavoritesPlaylistID {
		return shared.ErrReservedPlaylist
	}

	return e.applyIndex(ctx, notifyExpiry, func(idx *models.LibraryIndex) error {
		if _, ok := idx.Playlists[playlistID]; !ok {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		delete(idx.Playlists, playlistID)
		return nil
	})
}

// Playlists lists every playlist, favorites first, the rest in creation
// order. Reads the live index when connected, the offline snapshot otherwise.
func (e *Engine) Playlists(ctx context.Context, notifyExpiry bool) ([]models.Playlist, error) {
	idx, err := e.readIndex(ctx, notifyExpiry)
	if err != nil {
		return nil, err
	}

	playlists := []models.Playlist{idx.Favorites(e.now())}
	var rest []models.Playlist
	for id, playlist := range idx.Playlists {
		if id == models.FavoritesPlaylistID {
			continue
		}
		rest = append(rest, playlist)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].CreatedAt < rest[j].CreatedAt })

	return append(playlists, rest...), nil
}

// ResolvePlaylist returns a playlist together with its songs, in playlist
// order, resolved against the local cache. Ids that no longer resolve to a
// cached song are silently skipped; the playlist itself is not rewritten.
func (e *Engine) ResolvePlaylist(ctx context.Context, playlistID string, notifyExpiry bool) (*models.Playlist, []*models.Song, error) {
	idx, err := e.readIndex(ctx, notifyExpiry)
	if err != nil {
		return nil, nil, err
	}

	playlist, err := lookupPlaylist(idx, playlistID, e.now())
	if err != nil {
		return nil, nil, err
	}

	songs := make([]*models.Song, 0, len(playlist.SongIDs))
	for _, id := range playlist.SongIDs {
		song, err := e.songs.Get(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrSongNotFound) {
				continue
			}
			return nil, nil, err
		}
		songs = append(songs, song)
	}
	return &playlist, songs, nil
}

func lookupPlaylist(idx *models.LibraryIndex, id string, now int64) (models.Playlist, error) {
	if id == models.FavoritesPlaylistID {
		return idx.Favorites(now), nil
	}
	playlist, ok := idx.Playlists[id]
	if !ok {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return playlist, nil
}
