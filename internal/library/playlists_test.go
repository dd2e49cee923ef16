package library

import (
	"context"
	"errors"
	"testing"

	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

func TestPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("create, add, remove, delete", func(t *testing.T) {
		engine, objects, _ := newTestEngine(t, "tok")

		song, err := engine.UploadSong(ctx, []byte("audio"), "x.mp3", nil, true)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		playlist, err := engine.CreatePlaylist(ctx, "Road Trip", true)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if err := engine.AddToPlaylist(ctx, playlist.ID, song.ID, true); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if got := remoteIndex(t, objects).Playlists[playlist.ID]; !got.Contains(song.ID) {
			t.Error("song not added to the index playlist")
		}

		if err := engine.RemoveFromPlaylist(ctx, playlist.ID, song.ID, true); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if got := remoteIndex(t, objects).Playlists[playlist.ID]; got.Contains(song.ID) {
			t.Error("song not removed")
		}

		if err := engine.DeletePlaylist(ctx, playlist.ID, true); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, ok := remoteIndex(t, objects).Playlists[playlist.ID]; ok {
			t.Error("playlist should be gone")
		}
	})

	t.Run("adding twice keeps the id exactly once", func(t *testing.T) {
		engine, objects, _ := newTestEngine(t, "tok")

		song, err := engine.UploadSong(ctx, []byte("audio"), "x.mp3", nil, true)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		playlist, err := engine.CreatePlaylist(ctx, "Mix", true)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		for range 2 {
			if err := engine.AddToPlaylist(ctx, playlist.ID, song.ID, true); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}

		got := remoteIndex(t, objects).Playlists[playlist.ID]
		count := 0
		for _, id := range got.SongIDs {
			if id == song.ID {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected the id exactly once, found %d times", count)
		}
	})

	t.Run("removing an absent id is a no-op", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, "tok")

		playlist, err := engine.CreatePlaylist(ctx, "Mix", true)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := engine.RemoveFromPlaylist(ctx, playlist.ID, "never-added", true); err != nil {
			t.Errorf("expected a no-op, got %v", err)
		}
	})

	t.Run("adding an unknown song fails", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, "tok")

		playlist, err := engine.CreatePlaylist(ctx, "Mix", true)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := engine.AddToPlaylist(ctx, playlist.ID, "ghost", true); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("favorites materializes on first add and cannot be deleted", func(t *testing.T) {
		engine, objects, _ := newTestEngine(t, "tok")

		song, err := engine.UploadSong(ctx, []byte("audio"), "x.mp3", nil, true)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		if err := engine.AddToPlaylist(ctx, models.FavoritesPlaylistID, song.ID, true); err != nil {
			t.Fatalf("add to favorites failed: %v", err)
		}
		fav, ok := remoteIndex(t, objects).Playlists[models.FavoritesPlaylistID]
		if !ok {
			t.Fatal("favorites should be persisted after the first add")
		}
		if !fav.Contains(song.ID) {
			t.Error("favorites should contain the song")
		}

		if err := engine.DeletePlaylist(ctx, models.FavoritesPlaylistID, true); !errors.Is(err, shared.ErrReservedPlaylist) {
			t.Errorf("expected ErrReservedPlaylist, got %v", err)
		}
	})

	t.Run("list puts favorites first", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, "tok")

		if _, err := engine.CreatePlaylist(ctx, "Mix", true); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		playlists, err := engine.Playlists(ctx, true)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].ID != models.FavoritesPlaylistID {
			t.Errorf("expected favorites first, got %s", playlists[0].ID)
		}
	})

	t.Run("resolve skips dangling song ids", func(t *testing.T) {
		engine, objects, _ := newTestEngine(t, "tok")

		idx := models.NewLibraryIndex("test-app", testNow)
		idx.Songs["real"] = models.RemoteSong{ID: "real", DriveID: "d1", Title: "Real", AddedAt: 1, MimeType: "audio/mpeg"}
		idx.Playlists["p1"] = models.Playlist{ID: "p1", Name: "Mix", SongIDs: []string{"real", "dangling"}, CreatedAt: 1}
		seedIndex(t, objects, idx)

		if err := engine.SyncFromRemote(ctx, true); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		playlist, songs, err := engine.ResolvePlaylist(ctx, "p1", true)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if len(playlist.SongIDs) != 2 {
			t.Error("resolution must not rewrite the playlist")
		}
		if len(songs) != 1 || songs[0].ID != "real" {
			t.Errorf("expected only the resolvable song, got %+v", songs)
		}
	})

	t.Run("offline reads come from the snapshot", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, "tok")

		if _, err := engine.CreatePlaylist(ctx, "Mix", true); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		engine.session.Clear()

		playlists, err := engine.Playlists(ctx, true)
		if err != nil {
			t.Fatalf("offline list failed: %v", err)
		}
		if len(playlists) != 2 {
			t.Errorf("expected favorites plus Mix from the snapshot, got %d", len(playlists))
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, "tok")
		if _, _, err := engine.ResolvePlaylist(ctx, "nope", true); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}
