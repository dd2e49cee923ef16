package library

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/drive"
	"github.com/HeinSoeHtet/harp/internal/lyrics"
	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
	"github.com/HeinSoeHtet/harp/internal/store"
)

// ObjectStore is the remote object surface the engine reconciles against.
// Satisfied by [drive.Client]; tests substitute an in-memory double.
type ObjectStore interface {
	EnsureFolder(ctx context.Context, name string, notifyExpiry bool) (string, error)
	FindByName(ctx context.Context, name, parentID string, notifyExpiry bool) (*drive.Object, error)
	Upload(ctx context.Context, data []byte, name, parentID, mimeType string, notifyExpiry bool) (string, error)
	PatchContent(ctx context.Context, id string, data []byte, mimeType string, notifyExpiry bool) error
	Download(ctx context.Context, id string, notifyExpiry bool) ([]byte, error)
	Delete(ctx context.Context, id string, notifyExpiry bool) error
}

// Opts configures an [Engine].
type Opts struct {
	Songs   *store.SongStore
	State   *store.StateStore
	Objects ObjectStore
	Session *auth.Session
	Lyrics  *lyrics.LRCLIBClient // optional; nil disables lyric search
	Logger  *log.Logger

	FolderName string
	IndexName  string
	AppID      string

	// Now returns the current time in epoch millis. Defaults to wall clock;
	// tests pin it.
	Now func() int64
}

// Engine reconciles the local song cache against the remote library index and
// applies every library mutation remote-first.
type Engine struct {
	songs   *store.SongStore
	state   *store.StateStore
	objects ObjectStore
	session *auth.Session
	lrclib  *lyrics.LRCLIBClient
	logger  *log.Logger

	folderName string
	indexName  string
	appID      string

	now func() int64

	folderID string // resolved lazily, cached for the process lifetime
}

func NewEngine(opts Opts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Engine{
		songs:      opts.Songs,
		state:      opts.State,
		objects:    opts.Objects,
		session:    opts.Session,
		lrclib:     opts.Lyrics,
		logger:     opts.Logger,
		folderName: opts.FolderName,
		indexName:  opts.IndexName,
		appID:      opts.AppID,
		now:        opts.Now,
	}
}

// Connected reports whether a bearer token is currently held.
func (e *Engine) Connected() bool {
	return e.session != nil && e.session.Connected()
}

func (e *Engine) requireConnection() error {
	if !e.Connected() {
		return shared.ErrNotConnected
	}
	return nil
}

// ensureFolder resolves the library folder id, creating the folder on first use.
func (e *Engine) ensureFolder(ctx context.Context, notifyExpiry bool) (string, error) {
	if e.folderID != "" {
		return e.folderID, nil
	}

	id, err := e.objects.EnsureFolder(ctx, e.folderName, notifyExpiry)
	if err != nil {
		return "", err
	}
	e.folderID = id
	return id, nil
}

// loadIndex fetches and decodes the remote index document. When no index
// object exists yet it returns a fresh empty index with an empty object id.
func (e *Engine) loadIndex(ctx context.Context, notifyExpiry bool) (*models.LibraryIndex, string, error) {
	folderID, err := e.ensureFolder(ctx, notifyExpiry)
	if err != nil {
		return nil, "", err
	}

	obj, err := e.objects.FindByName(ctx, e.indexName, folderID, notifyExpiry)
	if err != nil {
		return nil, "", err
	}
	if obj == nil {
		return models.NewLibraryIndex(e.appID, e.now()), "", nil
	}

	data, err := e.objects.Download(ctx, obj.ID, notifyExpiry)
	if err != nil {
		return nil, "", err
	}

	idx, err := models.DecodeIndex(data)
	if err != nil {
		return nil, "", err
	}
	return idx, obj.ID, nil
}

// writeIndex pushes the index document to the drive, then records the
// resulting fingerprint and a snapshot for offline reads. Last write wins;
// there is no remote compare-and-swap.
func (e *Engine) writeIndex(ctx context.Context, idx *models.LibraryIndex, objectID string, notifyExpiry bool) error {
	idx.Touch(e.now())

	data, err := models.EncodeIndex(idx)
	if err != nil {
		return err
	}

	if objectID == "" {
		folderID, err := e.ensureFolder(ctx, notifyExpiry)
		if err != nil {
			return err
		}
		if objectID, err = e.objects.Upload(ctx, data, e.indexName, folderID, "application/json", notifyExpiry); err != nil {
			return err
		}
	} else if err := e.objects.PatchContent(ctx, objectID, data, "application/json", notifyExpiry); err != nil {
		return err
	}

	return e.persistState(ctx, idx, data, notifyExpiry)
}

// persistState records the snapshot and the remote object's fresh checksum so
// the next sync can short-circuit. Checksum lookup failure is non-fatal: the
// worst case is one redundant full sync.
func (e *Engine) persistState(ctx context.Context, idx *models.LibraryIndex, data []byte, notifyExpiry bool) error {
	if err := e.state.SaveSnapshot(ctx, string(data)); err != nil {
		return err
	}

	folderID, err := e.ensureFolder(ctx, notifyExpiry)
	if err != nil {
		return err
	}
	obj, err := e.objects.FindByName(ctx, e.indexName, folderID, notifyExpiry)
	if err != nil || obj == nil {
		e.logger.Warn("could not refresh index fingerprint", "err", err)
		return e.state.SaveFingerprint(ctx, "")
	}
	return e.state.SaveFingerprint(ctx, obj.Checksum)
}

// mutateIndex runs the fetch-mutate-write cycle every remote-first mutation
// shares. fn may return an error to abort without writing.
func (e *Engine) mutateIndex(ctx context.Context, notifyExpiry bool, fn func(idx *models.LibraryIndex) error) error {
	if err := e.requireConnection(); err != nil {
		return err
	}

	idx, objectID, err := e.loadIndex(ctx, notifyExpiry)
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		return err
	}
	return e.writeIndex(ctx, idx, objectID, notifyExpiry)
}

// readIndex returns the library index: the live remote document when
// connected, otherwise the snapshot captured at the last successful sync.
func (e *Engine) readIndex(ctx context.Context, notifyExpiry bool) (*models.LibraryIndex, error) {
	if e.Connected() {
		idx, _, err := e.loadIndex(ctx, notifyExpiry)
		return idx, err
	}

	snapshot, err := e.state.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == "" {
		return models.NewLibraryIndex(e.appID, e.now()), nil
	}
	return models.DecodeIndex([]byte(snapshot))
}

// applyIndex runs an index mutation against the remote document when
// connected, or against the offline snapshot otherwise. Offline mutations are
// reconciled lazily: the next connected write carries the snapshot's state
// forward under last-write-wins.
func (e *Engine) applyIndex(ctx context.Context, notifyExpiry bool, fn func(idx *models.LibraryIndex) error) error {
	if e.Connected() {
		return e.mutateIndex(ctx, notifyExpiry, fn)
	}

	idx, err := e.readIndex(ctx, notifyExpiry)
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		return err
	}
	idx.Touch(e.now())

	data, err := models.EncodeIndex(idx)
	if err != nil {
		return err
	}
	return e.state.SaveSnapshot(ctx, string(data))
}

// mutateSnapshot applies fn to the offline snapshot, if one exists. Used by
// the few mutations that are allowed to proceed while disconnected.
func (e *Engine) mutateSnapshot(ctx context.Context, fn func(idx *models.LibraryIndex)) error {
	snapshot, err := e.state.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snapshot == "" {
		return nil
	}

	idx, err := models.DecodeIndex([]byte(snapshot))
	if err != nil {
		return fmt.Errorf("stored snapshot is corrupt: %w", err)
	}
	fn(idx)

	data, err := models.EncodeIndex(idx)
	if err != nil {
		return err
	}
	return e.state.SaveSnapshot(ctx, string(data))
}
