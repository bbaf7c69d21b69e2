// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
)

// MockCatalog is a test double for [services.CatalogSource]
type MockCatalog struct {
	Tracks []models.Track
	Err    error
	Calls  int
}

func (m *MockCatalog) LikedTracks(ctx context.Context) ([]models.Track, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// MockPlatform is a test double for [services.VideoPlatform].
//
// Results maps a search query to its top hit; queries without an entry return no results.
// Insert records every successful insert in order.
type MockPlatform struct {
	mu         sync.Mutex
	Results    map[string]*models.Match
	SearchErrs map[string]error // by query
	InsertErrs map[string]error // by video id
	Searches   []string
	Inserts    []string // video ids
	OnInsert   func()
}

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		Results:    map[string]*models.Match{},
		SearchErrs: map[string]error{},
		InsertErrs: map[string]error{},
	}
}

// AddResult registers a hit for query.
func (m *MockPlatform) AddResult(query, videoID, title string) {
	m.Results[query] = &models.Match{VideoID: videoID, VideoTitle: title}
}

func (m *MockPlatform) SearchVideo(ctx context.Context, query string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, query)
	if err := m.SearchErrs[query]; err != nil {
		return nil, err
	}
	if match, ok := m.Results[query]; ok {
		copied := *match
		return &copied, nil
	}
	return nil, nil
}

func (m *MockPlatform) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.InsertErrs[videoID]; err != nil {
		return err
	}
	m.Inserts = append(m.Inserts, videoID)
	if m.OnInsert != nil {
		m.OnInsert()
	}
	return nil
}

func (m *MockPlatform) Name() string { return "mock-platform" }

// MemoryStore is an in-memory [state.Store] with optional write failures.
type MemoryStore struct {
	Cursor      string
	HasCursor   bool
	Keys        []string // appended dedup keys, in order
	CursorSaves int
	SaveErr     error
	AppendErr   error
	LoadErr     error
}

func (m *MemoryStore) LoadCursor() (string, bool, error) {
	if m.LoadErr != nil {
		return "", false, m.LoadErr
	}
	return m.Cursor, m.HasCursor, nil
}

func (m *MemoryStore) SaveCursor(identity string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cursor, m.HasCursor = identity, true
	m.CursorSaves++
	return nil
}

func (m *MemoryStore) LoadDedupSet() (models.DedupSet, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return models.NewDedupSet(m.Keys...), nil
}

func (m *MemoryStore) AppendDedup(title string) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Keys = append(m.Keys, models.DedupKey(title))
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}
