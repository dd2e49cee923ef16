package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSongStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and Get round trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongStore(db)
		song := &models.Song{
			ID:           "s1",
			Title:        "Title",
			Artist:       "Artist",
			Album:        "Album",
			Duration:     181.5,
			AddedAt:      1000,
			AudioBlob:    []byte{0xff, 0xfb, 0x90},
			Lyrics:       []models.LyricLine{{Time: 1.5, Text: "line"}},
			DriveID:      "d1",
			DriveImageID: "i1",
		}

		if err := songs.Save(ctx, song); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := songs.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Title != "Title" || got.Duration != 181.5 || got.DriveID != "d1" {
			t.Errorf("metadata mismatch: %+v", got)
		}
		if !got.Hydrated() || len(got.AudioBlob) != 3 {
			t.Errorf("audio blob mismatch: %v", got.AudioBlob)
		}
		if len(got.Lyrics) != 1 || got.Lyrics[0].Text != "line" {
			t.Errorf("lyrics mismatch: %v", got.Lyrics)
		}
	})

	t.Run("Save upserts on conflict", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongStore(db)
		if err := songs.Save(ctx, &models.Song{ID: "s1", Title: "Before", AddedAt: 1}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := songs.Save(ctx, &models.Song{ID: "s1", Title: "After", AddedAt: 1, AudioBlob: []byte{1}}); err != nil {
			t.Fatalf("resave failed: %v", err)
		}

		got, err := songs.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Title != "After" || !got.Hydrated() {
			t.Errorf("expected updated row, got %+v", got)
		}

		all, err := songs.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected 1 row after upsert, got %d", len(all))
		}
	})

	t.Run("Get missing id", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSongStore(db).Get(ctx, "missing")
		if !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("List orders newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongStore(db)
		for _, song := range []*models.Song{
			{ID: "old", AddedAt: 100},
			{ID: "new", AddedAt: 300},
			{ID: "mid", AddedAt: 200},
		} {
			if err := songs.Save(ctx, song); err != nil {
				t.Fatalf("save failed: %v", err)
			}
		}

		all, err := songs.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(all))
		}
		if all[0].ID != "new" || all[2].ID != "old" {
			t.Errorf("unexpected order: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongStore(db)
		if err := songs.Save(ctx, &models.Song{ID: "s1", AddedAt: 1}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		if err := songs.Delete(ctx, "s1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if err := songs.Delete(ctx, "s1"); err != nil {
			t.Errorf("second delete should be a no-op, got %v", err)
		}
		if err := songs.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("deleting an absent id should be a no-op, got %v", err)
		}
	})

	t.Run("Clear removes everything", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongStore(db)
		for _, id := range []string{"a", "b"} {
			if err := songs.Save(ctx, &models.Song{ID: id, AddedAt: 1}); err != nil {
				t.Fatalf("save failed: %v", err)
			}
		}

		if err := songs.Clear(ctx); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		all, err := songs.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected empty store, got %d rows", len(all))
		}
	})
}

func TestStateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("starts empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		state := NewStateStore(db)
		fingerprint, err := state.Fingerprint(ctx)
		if err != nil {
			t.Fatalf("fingerprint failed: %v", err)
		}
		if fingerprint != "" {
			t.Errorf("expected empty fingerprint, got %q", fingerprint)
		}

		snapshot, err := state.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if snapshot != "" {
			t.Errorf("expected empty snapshot, got %q", snapshot)
		}
	})

	t.Run("saves and clears", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		state := NewStateStore(db)
		if err := state.SaveFingerprint(ctx, "abc123"); err != nil {
			t.Fatalf("save fingerprint failed: %v", err)
		}
		if err := state.SaveSnapshot(ctx, `{"meta":{"version":1}}`); err != nil {
			t.Fatalf("save snapshot failed: %v", err)
		}

		fingerprint, _ := state.Fingerprint(ctx)
		if fingerprint != "abc123" {
			t.Errorf("expected abc123, got %q", fingerprint)
		}
		snapshot, _ := state.Snapshot(ctx)
		if snapshot == "" {
			t.Error("expected snapshot to be stored")
		}

		if err := state.Clear(ctx); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		fingerprint, _ = state.Fingerprint(ctx)
		snapshot, _ = state.Snapshot(ctx)
		if fingerprint != "" || snapshot != "" {
			t.Error("expected cleared state")
		}
	})
}
