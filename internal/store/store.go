package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// SongStore persists songs in the local cache database. Binary columns hold
// hydrated content; a row with NULL audio is a metadata-only placeholder.
type SongStore struct {
	db *sql.DB
}

func NewSongStore(db *sql.DB) *SongStore {
	return &SongStore{db: db}
}

// Save inserts the song or replaces the existing row with the same id.
func (s *SongStore) Save(ctx context.Context, song *models.Song) error {
	lyricsJSON, err := encodeLyrics(song.Lyrics)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO songs (
			id, title, artist, album, duration, added_at,
			audio, image, lyric, lyrics,
			drive_id, drive_image_id, drive_lyric_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			added_at = excluded.added_at,
			audio = excluded.audio,
			image = excluded.image,
			lyric = excluded.lyric,
			lyrics = excluded.lyrics,
			drive_id = excluded.drive_id,
			drive_image_id = excluded.drive_image_id,
			drive_lyric_id = excluded.drive_lyric_id
	`

	_, err = s.db.ExecContext(ctx, query,
		song.ID, song.Title, song.Artist, song.Album, song.Duration, song.AddedAt,
		song.AudioBlob, song.ImageBlob, song.LyricBlob, lyricsJSON,
		song.DriveID, song.DriveImageID, song.DriveLyricID,
	)
	if err != nil {
		return fmt.Errorf("failed to save song %s: %w", song.ID, err)
	}
	return nil
}

// Get returns the song with the given id, including any hydrated blobs.
func (s *SongStore) Get(ctx context.Context, id string) (*models.Song, error) {
	query := `
		SELECT id, title, artist, album, duration, added_at,
			audio, image, lyric, lyrics,
			drive_id, drive_image_id, drive_lyric_id
		FROM songs WHERE id = ?
	`

	song, err := scanSong(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load song %s: %w", id, err)
	}
	return song, nil
}

// List returns every cached song, newest first.
func (s *SongStore) List(ctx context.Context) ([]*models.Song, error) {
	query := `
		SELECT id, title, artist, album, duration, added_at,
			audio, image, lyric, lyrics,
			drive_id, drive_image_id, drive_lyric_id
		FROM songs ORDER BY added_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// Delete removes the song with the given id. Deleting an absent id is a no-op.
func (s *SongStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete song %s: %w", id, err)
	}
	return nil
}

// Clear drops every cached song.
func (s *SongStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (*models.Song, error) {
	var song models.Song
	var lyricsJSON sql.NullString

	err := row.Scan(
		&song.ID, &song.Title, &song.Artist, &song.Album, &song.Duration, &song.AddedAt,
		&song.AudioBlob, &song.ImageBlob, &song.LyricBlob, &lyricsJSON,
		&song.DriveID, &song.DriveImageID, &song.DriveLyricID,
	)
	if err != nil {
		return nil, err
	}

	if lyricsJSON.Valid && lyricsJSON.String != "" {
		if err := json.Unmarshal([]byte(lyricsJSON.String), &song.Lyrics); err != nil {
			return nil, fmt.Errorf("corrupt lyrics column for song %s: %w", song.ID, err)
		}
	}
	return &song, nil
}

func encodeLyrics(lines []models.LyricLine) (any, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lyrics: %w", err)
	}
	return string(data), nil
}
