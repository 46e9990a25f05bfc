// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/playcast/internal/models"
)

// MockCatalog is a test double for [services.Catalog]
type MockCatalog struct {
	Snapshots  map[string]*models.PlaylistSnapshot
	AuthErr    error
	FetchErr   error
	FetchCalls int
}

func (m *MockCatalog) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *MockCatalog) FetchPlaylist(ctx context.Context, playlistID string) (*models.PlaylistSnapshot, error) {
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if s, ok := m.Snapshots[playlistID]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("playlist %s not found", playlistID)
}

func (m *MockCatalog) Name() string { return "mock" }

// FakeDownloader stands in for yt-dlp. It writes Content to dir/base.mp3 unless the query is listed in Fail
// or Empty. Empty simulates a search that matched nothing: no error and no file.
type FakeDownloader struct {
	mu      sync.Mutex
	Content []byte
	Fail    map[string]error
	Empty   map[string]bool
	Queries []string
}

func (f *FakeDownloader) Download(ctx context.Context, query, dir, base string) error {
	f.mu.Lock()
	f.Queries = append(f.Queries, query)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.Fail[query]; ok {
		// leave a partial file behind, as an interrupted transcode would
		os.WriteFile(filepath.Join(dir, base+".mp3.part"), []byte("partial"), 0644)
		return err
	}
	if f.Empty[query] {
		return nil
	}

	content := f.Content
	if content == nil {
		content = []byte("fake audio for " + query)
	}
	return os.WriteFile(filepath.Join(dir, base+".mp3"), content, 0644)
}

// Calls returns the number of downloads attempted.
func (f *FakeDownloader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}

// NopTagger satisfies the resolver's tagger without touching the file.
type NopTagger struct {
	Err   error
	Calls int
}

func (n *NopTagger) Tag(path string, entry models.TrackEntry) error {
	n.Calls++
	return n.Err
}

// Recorder captures ledger writes in memory.
type Recorder struct {
	Runs    []models.RunRecord
	Tracks  []models.TrackRecord
	Err     error
	Started int
}

func (r *Recorder) StartRun(run *models.RunRecord) error {
	r.Started++
	return r.Err
}

func (r *Recorder) RecordTrack(rec models.TrackRecord) error {
	if r.Err != nil {
		return r.Err
	}
	r.Tracks = append(r.Tracks, rec)
	return nil
}

func (r *Recorder) FinishRun(run *models.RunRecord) error {
	if r.Err != nil {
		return r.Err
	}
	r.Runs = append(r.Runs, *run)
	return nil
}

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

// Snapshot builds a playlist snapshot from entries; nil entries are kept as-is.
func Snapshot(id, name string, entries ...*models.TrackEntry) *models.PlaylistSnapshot {
	return &models.PlaylistSnapshot{
		Metadata: models.PlaylistMetadata{ID: id, Name: name, Description: name + " description"},
		Entries:  entries,
	}
}

// Entry builds a track entry.
func Entry(id, title, artist string) *models.TrackEntry {
	return &models.TrackEntry{ID: id, Title: title, PrimaryArtist: artist, Album: "Album", DurationMS: 200000}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected %s not to exist", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
