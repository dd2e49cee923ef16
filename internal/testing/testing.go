// package testing contains shared testing utilities
package testing

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/HeinSoeHtet/harp/internal/drive"
	"github.com/HeinSoeHtet/harp/internal/shared"
)

// FakeObject is one stored object inside a [MockObjectStore].
type FakeObject struct {
	ID       string
	Name     string
	ParentID string
	MimeType string
	Data     []byte
}

// MockObjectStore is an in-memory test double for the remote object store.
// Checksums are real md5 digests of the content, so fingerprint
// short-circuit behavior can be exercised.
type MockObjectStore struct {
	mu      sync.Mutex
	objects map[string]*FakeObject
	nextID  int

	Downloads int
	Uploads   int
	Patches   int
	Deletes   int

	// Err, when set, is returned by every operation. DownloadErr and
	// DeleteErr fail only their own operation.
	Err         error
	DownloadErr error
	DeleteErr   error
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: map[string]*FakeObject{}}
}

// Seed inserts an object directly, bypassing the call counters.
func (m *MockObjectStore) Seed(obj FakeObject) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj.ID == "" {
		obj.ID = m.generateID()
	}
	m.objects[obj.ID] = &obj
	return obj.ID
}

// Object returns a stored object by id, or nil.
func (m *MockObjectStore) Object(id string) *FakeObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[id]
}

// Lookup returns a stored object by name, or nil.
func (m *MockObjectStore) Lookup(name string) *FakeObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obj := range m.objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

func (m *MockObjectStore) generateID() string {
	m.nextID++
	return fmt.Sprintf("obj-%d", m.nextID)
}

func checksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (m *MockObjectStore) EnsureFolder(ctx context.Context, name string, notifyExpiry bool) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obj := range m.objects {
		if obj.Name == name && obj.MimeType == "application/vnd.google-apps.folder" {
			return obj.ID, nil
		}
	}
	id := m.generateID()
	m.objects[id] = &FakeObject{ID: id, Name: name, MimeType: "application/vnd.google-apps.folder"}
	return id, nil
}

func (m *MockObjectStore) FindByName(ctx context.Context, name, parentID string, notifyExpiry bool) (*drive.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obj := range m.objects {
		if obj.Name != name {
			continue
		}
		if parentID != "" && obj.ParentID != parentID {
			continue
		}
		return &drive.Object{ID: obj.ID, Name: obj.Name, MimeType: obj.MimeType, Checksum: checksum(obj.Data)}, nil
	}
	return nil, nil
}

func (m *MockObjectStore) Upload(ctx context.Context, data []byte, name, parentID, mimeType string, notifyExpiry bool) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	id := m.generateID()
	m.objects[id] = &FakeObject{ID: id, Name: name, ParentID: parentID, MimeType: mimeType, Data: append([]byte(nil), data...)}
	return id, nil
}

func (m *MockObjectStore) PatchContent(ctx context.Context, id string, data []byte, mimeType string, notifyExpiry bool) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Patches++
	obj, ok := m.objects[id]
	if !ok {
		return shared.ErrRemoteObjectGone
	}
	obj.Data = append([]byte(nil), data...)
	obj.MimeType = mimeType
	return nil
}

func (m *MockObjectStore) Download(ctx context.Context, id string, notifyExpiry bool) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Downloads++
	obj, ok := m.objects[id]
	if !ok {
		return nil, shared.ErrRemoteObjectGone
	}
	return append([]byte(nil), obj.Data...), nil
}

func (m *MockObjectStore) Delete(ctx context.Context, id string, notifyExpiry bool) error {
	if m.Err != nil {
		return m.Err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if _, ok := m.objects[id]; !ok {
		return shared.ErrRemoteObjectGone
	}
	delete(m.objects, id)
	return nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
