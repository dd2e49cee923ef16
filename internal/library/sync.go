package library

import (
	"context"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

const mpegMimeType = "audio/mpeg"

// SyncFromRemote reconciles the local cache against the remote index. The
// remote document is authoritative: local rows absent from it are deleted,
// remote entries absent locally become metadata-only placeholders, and rows
// present on both sides take the remote metadata while keeping hydrated blobs.
//
// When the remote object's checksum matches the stored fingerprint the whole
// reconcile is skipped. A drive with no index object yet is seeded with an
// empty document and left alone.
func (e *Engine) SyncFromRemote(ctx context.Context, notifyExpiry bool) error {
	if err := e.requireConnection(); err != nil {
		return err
	}

	folderID, err := e.ensureFolder(ctx, notifyExpiry)
	if err != nil {
		return err
	}

	obj, err := e.objects.FindByName(ctx, e.indexName, folderID, notifyExpiry)
	if err != nil {
		return err
	}

	// First contact with this drive: seed an empty index and stop, there is
	// nothing to reconcile against.
	if obj == nil {
		idx := models.NewLibraryIndex(e.appID, e.now())
		if err := e.writeIndex(ctx, idx, "", notifyExpiry); err != nil {
			return err
		}
		e.logger.Info("created empty remote library index")
		return nil
	}

	stored, err := e.state.Fingerprint(ctx)
	if err != nil {
		return err
	}
	if obj.Checksum != "" && obj.Checksum == stored {
		e.logger.Debug("library cache is current", "fingerprint", stored)
		return nil
	}

	data, err := e.objects.Download(ctx, obj.ID, notifyExpiry)
	if err != nil {
		return err
	}
	idx, err := models.DecodeIndex(data)
	if err != nil {
		return err
	}

	local, err := e.songs.List(ctx)
	if err != nil {
		return err
	}
	localByID := make(map[string]*models.Song, len(local))
	for _, song := range local {
		localByID[song.ID] = song
	}

	var added, updated, removed, skipped int
	kept := make(map[string]bool, len(idx.Songs))

	for id, remote := range idx.Songs {
		cached := localByID[id]
		if !isMPEG(remote, cached) {
			skipped++
			continue
		}
		kept[id] = true

		if cached == nil {
			if err := e.songs.Save(ctx, remote.Placeholder()); err != nil {
				return err
			}
			added++
			continue
		}

		merged := remote.Placeholder()
		merged.AudioBlob = cached.AudioBlob
		merged.ImageBlob = cached.ImageBlob
		merged.LyricBlob = cached.LyricBlob
		if len(merged.Lyrics) == 0 {
			merged.Lyrics = cached.Lyrics
		}
		if err := e.songs.Save(ctx, merged); err != nil {
			return err
		}
		updated++
	}

	for id := range localByID {
		if kept[id] {
			continue
		}
		if err := e.songs.Delete(ctx, id); err != nil {
			return err
		}
		removed++
	}

	if err := e.state.SaveSnapshot(ctx, string(data)); err != nil {
		return err
	}
	if err := e.state.SaveFingerprint(ctx, obj.Checksum); err != nil {
		return err
	}

	e.logger.Info("library synced",
		"added", added, "updated", updated, "removed", removed, "skipped", skipped)
	return nil
}

// isMPEG reports whether an index entry is an mp3 this client should carry.
// Any one signal suffices: the declared mime type, the filename, or the
// locally cached payload sniffed by its magic bytes. The mime type is not
// authoritative, a mislabeled entry can still qualify through the other two.
// Entries matching no signal are excluded.
func isMPEG(remote models.RemoteSong, cached *models.Song) bool {
	if remote.MimeType == mpegMimeType {
		return true
	}
	if strings.HasSuffix(strings.ToLower(remote.Title), ".mp3") {
		return true
	}
	if cached != nil && cached.Hydrated() {
		kind, err := filetype.Match(cached.AudioBlob)
		if err == nil && kind == matchers.TypeMp3 {
			return true
		}
	}
	return false
}

// ClearLocal wipes the cache database: every song row plus the sync state.
// The remote library is untouched.
func (e *Engine) ClearLocal(ctx context.Context) error {
	if err := e.songs.Clear(ctx); err != nil {
		return err
	}
	return e.state.Clear(ctx)
}

// Songs returns every cached song, newest first.
func (e *Engine) Songs(ctx context.Context) ([]*models.Song, error) {
	return e.songs.List(ctx)
}

// Song returns a single cached song by id.
func (e *Engine) Song(ctx context.Context, id string) (*models.Song, error) {
	if id == "" {
		return nil, shared.ErrMissingArgument
	}
	return e.songs.Get(ctx, id)
}
