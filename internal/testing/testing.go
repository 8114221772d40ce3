// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"ytaudio/internal/models"
)

// MockDownloader is a test double for [ytdlp.Downloader].
//
// Resolve returns the configured playlist; Fetch records calls and, unless
// FetchErr is set for the video id, writes a stub file at the destination.
type MockDownloader struct {
	mu         sync.Mutex
	Playlist   *models.Playlist
	ResolveErr error
	FetchErrs  map[string]error // keyed by video id
	WriteFiles bool             // create stub files on Fetch
	Resolved   []string         // URLs passed to Resolve
	Fetched    []models.TrackEntry
	FetchPaths []string
	FetchTags  []models.Tags
}

func (m *MockDownloader) Resolve(ctx context.Context, url string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resolved = append(m.Resolved, url)
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	if m.Playlist == nil {
		return nil, errors.New("no playlist configured")
	}
	return m.Playlist, nil
}

func (m *MockDownloader) Fetch(ctx context.Context, entry models.TrackEntry, destPath string, tags models.Tags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched = append(m.Fetched, entry)
	m.FetchPaths = append(m.FetchPaths, destPath)
	m.FetchTags = append(m.FetchTags, tags)
	if err, ok := m.FetchErrs[entry.VideoID]; ok {
		return err
	}
	if m.WriteFiles {
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		return os.WriteFile(destPath, []byte("opus"), 0644)
	}
	return nil
}

// MockRegistrar is a test double for [quodlibet.Registrar].
type MockRegistrar struct {
	mu         sync.Mutex
	Registered []string
	Err        error
}

func (m *MockRegistrar) Register(ctx context.Context, albumDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Registered = append(m.Registered, albumDir)
	return m.Err
}

// Calls returns the album directories passed to Register.
func (m *MockRegistrar) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Registered...)
}

// MockHistory is a test double for [tasks.HistoryRecorder].
type MockHistory struct {
	mu       sync.Mutex
	Recorded []*models.PersistedDownload
	Err      error
}

func (m *MockHistory) Record(download *models.PersistedDownload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, download)
	return m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
