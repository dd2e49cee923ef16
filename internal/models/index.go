package models

import (
	"encoding/json"
	"fmt"

	"github.com/HeinSoeHtet/harp/internal/shared"
)

// IndexVersion is the library index schema version this client reads and writes.
const IndexVersion = 1

// FavoritesPlaylistID is the reserved, non-deletable default playlist.
// It is materialized lazily on read rather than persisted eagerly.
const FavoritesPlaylistID = "favorites"

// IndexMeta describes a library index document.
type IndexMeta struct {
	Version     int    `json:"version"`
	LastUpdated int64  `json:"lastUpdated"` // epoch millis
	AppID       string `json:"appId"`
}

// LibraryIndex is the single remote source-of-truth document: every song and
// playlist known to the library, keyed by id.
type LibraryIndex struct {
	Meta      IndexMeta             `json:"meta"`
	Songs     map[string]RemoteSong `json:"songs"`
	Playlists map[string]Playlist   `json:"playlists"`
}

// NewLibraryIndex returns an empty index document for the given app id.
func NewLibraryIndex(appID string, now int64) *LibraryIndex {
	return &LibraryIndex{
		Meta: IndexMeta{
			Version:     IndexVersion,
			LastUpdated: now,
			AppID:       appID,
		},
		Songs:     map[string]RemoteSong{},
		Playlists: map[string]Playlist{},
	}
}

// Touch updates the index's last-updated stamp.
func (l *LibraryIndex) Touch(now int64) {
	l.Meta.LastUpdated = now
}

// Favorites returns the reserved default playlist, materializing it if the
// index does not carry one yet.
func (l *LibraryIndex) Favorites(now int64) Playlist {
	if p, ok := l.Playlists[FavoritesPlaylistID]; ok {
		return p
	}
	return Playlist{
		ID:        FavoritesPlaylistID,
		Name:      "Favorites",
		SongIDs:   []string{},
		CreatedAt: now,
	}
}

// EncodeIndex serializes the index document to its canonical JSON form.
func EncodeIndex(l *LibraryIndex) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode library index: %w", err)
	}
	return data, nil
}

// DecodeIndex parses a library index document.
//
// A document written by a newer client (meta.version above [IndexVersion]) is
// rejected with [shared.ErrIndexVersion] rather than silently reinterpreted.
// Version 0 means the field predates enforcement and is normalized to 1.
func DecodeIndex(data []byte) (*LibraryIndex, error) {
	var idx LibraryIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode library index: %w", err)
	}

	if idx.Meta.Version > IndexVersion {
		return nil, fmt.Errorf("%w: %d", shared.ErrIndexVersion, idx.Meta.Version)
	}
	if idx.Meta.Version == 0 {
		idx.Meta.Version = IndexVersion
	}

	if idx.Songs == nil {
		idx.Songs = map[string]RemoteSong{}
	}
	if idx.Playlists == nil {
		idx.Playlists = map[string]Playlist{}
	}

	return &idx, nil
}
