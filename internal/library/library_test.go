package library

import (
	"database/sql"
	"testing"

	"github.com/HeinSoeHtet/harp/internal/auth"
	"github.com/HeinSoeHtet/harp/internal/models"
	"github.com/HeinSoeHtet/harp/internal/shared"
	"github.com/HeinSoeHtet/harp/internal/store"
	tu "github.com/HeinSoeHtet/harp/internal/testing"
)

const testNow = int64(5_000_000)

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

// newTestEngine assembles an engine over an in-memory cache and a mock object
// store. An empty token leaves the engine disconnected.
func newTestEngine(t *testing.T, token string) (*Engine, *tu.MockObjectStore, *sql.DB) {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	objects := tu.NewMockObjectStore()
	engine := NewEngine(Opts{
		Songs:      store.NewSongStore(db),
		State:      store.NewStateStore(db),
		Objects:    objects,
		Session:    auth.NewSession(token),
		FolderName: "Test Library",
		IndexName:  "library.json",
		AppID:      "test-app",
		Now:        func() int64 { return testNow },
	})
	return engine, objects, db
}

// seedIndex stores an encoded index document in the mock object store,
// returning the index object's id.
func seedIndex(t *testing.T, objects *tu.MockObjectStore, idx *models.LibraryIndex) string {
	t.Helper()

	data, err := models.EncodeIndex(idx)
	if err != nil {
		t.Fatalf("failed to encode index: %v", err)
	}

	folderID := objects.Seed(tu.FakeObject{Name: "Test Library", MimeType: "application/vnd.google-apps.folder"})
	return objects.Seed(tu.FakeObject{Name: "library.json", ParentID: folderID, MimeType: "application/json", Data: data})
}

// remoteIndex decodes the index document currently held by the mock store.
func remoteIndex(t *testing.T, objects *tu.MockObjectStore) *models.LibraryIndex {
	t.Helper()

	obj := objects.Lookup("library.json")
	if obj == nil {
		t.Fatal("no index document in the object store")
	}
	idx, err := models.DecodeIndex(obj.Data)
	if err != nil {
		t.Fatalf("failed to decode stored index: %v", err)
	}
	return idx
}
