package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytaudio/internal/meta"
	"ytaudio/internal/models"
	"ytaudio/internal/shared"
	tu "ytaudio/internal/testing"
)

func testPlaylist() *models.Playlist {
	return &models.Playlist{
		ID:       "PL123",
		Title:    "Road Trip",
		URL:      "https://www.youtube.com/playlist?list=PL123",
		Uploader: "Some Channel",
		Entries: []models.TrackEntry{
			{VideoID: "aaa", Title: "First Song", Uploader: "Band", Index: 1, DurationSecs: 200},
			{VideoID: "bbb", Title: "Second Song", Uploader: "Band", Index: 2, DurationSecs: 180},
			{VideoID: "ccc", Title: "Third Song", Uploader: "Band", Index: 3, DurationSecs: 240},
		},
	}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestPlan(t *testing.T) {
	t.Run("one planned track per entry, nothing touched", func(t *testing.T) {
		tmpDir := t.TempDir()
		downloader := &tu.MockDownloader{Playlist: testPlaylist()}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		plan, err := engine.Plan(context.Background(), RunOptions{
			URL:       "https://www.youtube.com/playlist?list=PL123",
			OutputDir: tmpDir,
		})
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		if len(plan.Tracks) != plan.Playlist.TrackCount() {
			t.Errorf("expected %d planned tracks, got %d", plan.Playlist.TrackCount(), len(plan.Tracks))
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatalf("failed to read temp dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no files created, found %d", len(entries))
		}
	})

	t.Run("resolution failure propagates", func(t *testing.T) {
		downloader := &tu.MockDownloader{ResolveErr: shared.ErrResolutionFailed}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		_, err := engine.Plan(context.Background(), RunOptions{URL: "x"})
		if !errors.Is(err, shared.ErrResolutionFailed) {
			t.Errorf("expected ErrResolutionFailed, got %v", err)
		}
	})

	t.Run("pre-resolved playlist skips resolution", func(t *testing.T) {
		downloader := &tu.MockDownloader{}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		plan, err := engine.Plan(context.Background(), RunOptions{
			OutputDir: t.TempDir(),
			Resolved:  testPlaylist(),
		})
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}
		if len(downloader.Resolved) != 0 {
			t.Errorf("expected no resolve calls, got %v", downloader.Resolved)
		}
		if len(plan.Tracks) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(plan.Tracks))
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("full run downloads every track in order", func(t *testing.T) {
		tmpDir := t.TempDir()
		downloader := &tu.MockDownloader{Playlist: testPlaylist(), WriteFiles: true}
		registrar := &tu.MockRegistrar{}
		history := &tu.MockHistory{}
		engine := NewDownloadEngine(downloader, registrar, WithHistory(history))

		result, err := engine.Run(context.Background(), RunOptions{
			URL:       "https://www.youtube.com/playlist?list=PL123",
			OutputDir: tmpDir,
		}, nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if result.Downloaded != 3 || result.Failed != 0 || result.Skipped != 0 {
			t.Errorf("expected 3 downloads, got %+v", result)
		}

		wantDir := filepath.Join(tmpDir, "Band", "Road Trip")
		if result.AlbumDir != wantDir {
			t.Errorf("expected album dir %s, got %s", wantDir, result.AlbumDir)
		}

		for i, name := range []string{"01 - First Song.opus", "02 - Second Song.opus", "03 - Third Song.opus"} {
			path := filepath.Join(wantDir, name)
			if downloader.FetchPaths[i] != path {
				t.Errorf("track %d: expected path %s, got %s", i+1, path, downloader.FetchPaths[i])
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected file at %s: %v", path, err)
			}
		}

		for i, tags := range downloader.FetchTags {
			if tags.TrackNumber != i+1 || tags.TrackTotal != 3 {
				t.Errorf("track %d: unexpected numbering %d/%d", i+1, tags.TrackNumber, tags.TrackTotal)
			}
		}

		if len(registrar.Calls()) != 1 || registrar.Calls()[0] != wantDir {
			t.Errorf("expected one registration for %s, got %v", wantDir, registrar.Calls())
		}
		if len(history.Recorded) != 3 {
			t.Errorf("expected 3 history records, got %d", len(history.Recorded))
		}

		logPath := filepath.Join(wantDir, meta.RunLogName)
		runLog, err := meta.ReadRunLog(logPath)
		if err != nil {
			t.Fatalf("expected run log: %v", err)
		}
		if runLog.Album != "Road Trip" || len(runLog.Tracks) != 3 {
			t.Errorf("unexpected run log: %+v", runLog)
		}
	})

	t.Run("failed track is skipped and the run continues", func(t *testing.T) {
		tmpDir := t.TempDir()
		downloader := &tu.MockDownloader{
			Playlist:   testPlaylist(),
			WriteFiles: true,
			FetchErrs:  map[string]error{"bbb": shared.ErrDownloadFailed},
		}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		progress := make(chan ProgressUpdate, 50)
		result, err := engine.Run(context.Background(), RunOptions{
			URL:       "url",
			OutputDir: tmpDir,
		}, progress)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if result.Downloaded != 2 || result.Failed != 1 {
			t.Errorf("expected 2 downloads and 1 failure, got %+v", result)
		}
		if len(downloader.Fetched) != 3 {
			t.Errorf("expected all 3 tracks attempted, got %d", len(downloader.Fetched))
		}

		runLog, err := meta.ReadRunLog(filepath.Join(result.AlbumDir, meta.RunLogName))
		if err != nil {
			t.Fatalf("expected run log: %v", err)
		}
		if len(runLog.Errors) != 1 {
			t.Errorf("expected 1 recorded error, got %v", runLog.Errors)
		}

		var sawFailure bool
		for _, u := range drain(progress) {
			if u.Phase == FetchTracks && u.Step == 2 && u.Total == 3 {
				sawFailure = true
			}
		}
		if !sawFailure {
			t.Error("expected a progress update for the failed track")
		}
	})

	t.Run("run fails when every track fails", func(t *testing.T) {
		downloader := &tu.MockDownloader{
			Playlist: testPlaylist(),
			FetchErrs: map[string]error{
				"aaa": shared.ErrDownloadFailed,
				"bbb": shared.ErrDownloadFailed,
				"ccc": shared.ErrDownloadFailed,
			},
		}
		registrar := &tu.MockRegistrar{}
		engine := NewDownloadEngine(downloader, registrar)

		_, err := engine.Run(context.Background(), RunOptions{URL: "url", OutputDir: t.TempDir()}, nil)
		if !errors.Is(err, shared.ErrDownloadFailed) {
			t.Errorf("expected ErrDownloadFailed, got %v", err)
		}
		if len(registrar.Calls()) != 0 {
			t.Errorf("expected no registration, got %v", registrar.Calls())
		}
	})

	t.Run("existing destinations are skipped unless forced", func(t *testing.T) {
		tmpDir := t.TempDir()
		playlist := testPlaylist()
		naming := meta.ResolveNaming(playlist, "", "")
		existing := meta.TrackPath(tmpDir, naming, playlist.Entries[0])
		if err := os.MkdirAll(filepath.Dir(existing), 0755); err != nil {
			t.Fatalf("failed to create dirs: %v", err)
		}
		if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
			t.Fatalf("failed to write existing file: %v", err)
		}

		downloader := &tu.MockDownloader{Playlist: playlist, WriteFiles: true}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		result, err := engine.Run(context.Background(), RunOptions{URL: "url", OutputDir: tmpDir}, nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if result.Skipped != 1 || result.Downloaded != 2 {
			t.Errorf("expected 1 skip and 2 downloads, got %+v", result)
		}
		if data, _ := os.ReadFile(existing); string(data) != "old" {
			t.Error("expected existing file untouched")
		}

		// forced re-download replaces the file
		downloader2 := &tu.MockDownloader{Playlist: playlist, WriteFiles: true}
		engine2 := NewDownloadEngine(downloader2, &tu.MockRegistrar{})
		result2, err := engine2.Run(context.Background(), RunOptions{URL: "url", OutputDir: tmpDir, Force: true}, nil)
		if err != nil {
			t.Fatalf("forced run failed: %v", err)
		}
		if result2.Skipped != 0 || result2.Downloaded != 3 {
			t.Errorf("expected forced re-download of all tracks, got %+v", result2)
		}
	})

	t.Run("skip-registration flag bypasses the registrar", func(t *testing.T) {
		downloader := &tu.MockDownloader{Playlist: testPlaylist(), WriteFiles: true}
		registrar := &tu.MockRegistrar{}
		engine := NewDownloadEngine(downloader, registrar)

		_, err := engine.Run(context.Background(), RunOptions{
			URL:              "url",
			OutputDir:        t.TempDir(),
			SkipRegistration: true,
		}, nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if len(registrar.Calls()) != 0 {
			t.Errorf("expected registrar never invoked, got %v", registrar.Calls())
		}
	})

	t.Run("registration failure is non-fatal", func(t *testing.T) {
		downloader := &tu.MockDownloader{Playlist: testPlaylist(), WriteFiles: true}
		registrar := &tu.MockRegistrar{Err: shared.ErrRegistrationFailed}
		engine := NewDownloadEngine(downloader, registrar)

		result, err := engine.Run(context.Background(), RunOptions{URL: "url", OutputDir: t.TempDir()}, nil)
		if err != nil {
			t.Fatalf("run should succeed despite registration failure: %v", err)
		}
		if result.Downloaded != 3 {
			t.Errorf("expected 3 downloads, got %+v", result)
		}
	})

	t.Run("history failure is non-fatal", func(t *testing.T) {
		downloader := &tu.MockDownloader{Playlist: testPlaylist(), WriteFiles: true}
		history := &tu.MockHistory{Err: errors.New("db locked")}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{}, WithHistory(history))

		result, err := engine.Run(context.Background(), RunOptions{URL: "url", OutputDir: t.TempDir()}, nil)
		if err != nil {
			t.Fatalf("run should succeed despite history failure: %v", err)
		}
		if result.Downloaded != 3 {
			t.Errorf("expected 3 downloads, got %+v", result)
		}
	})

	t.Run("album override applies to every destination", func(t *testing.T) {
		tmpDir := t.TempDir()
		downloader := &tu.MockDownloader{Playlist: testPlaylist(), WriteFiles: true}
		engine := NewDownloadEngine(downloader, &tu.MockRegistrar{})

		result, err := engine.Run(context.Background(), RunOptions{
			URL:           "url",
			OutputDir:     tmpDir,
			AlbumOverride: "X",
		}, nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		for _, track := range result.Tracks {
			if filepath.Base(filepath.Dir(track.Planned.Path)) != "X" {
				t.Errorf("expected album segment X in %s", track.Planned.Path)
			}
		}
	})
}
