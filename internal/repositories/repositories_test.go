package repositories

import (
	"database/sql"
	"testing"

	"ytaudio/internal/models"
	"ytaudio/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func testDownload(runID, videoID, title string) *models.PersistedDownload {
	return models.NewPersistedDownload(0, runID,
		models.TrackEntry{VideoID: videoID, DurationSecs: 200},
		models.Tags{Title: title, Artist: "Band", Album: "Mixtape"},
		"/music/Band/Mixtape/01 - "+title+".opus",
	)
}

func TestDownloadRepository(t *testing.T) {
	t.Run("Create assigns ID and sequence", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		first := testDownload("run-1", "aaa", "First")
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if first.ID() == "" {
			t.Error("expected generated ID")
		}
		if first.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", first.Sequence())
		}

		second := testDownload("run-1", "bbb", "Second")
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if second.Sequence() != 2 {
			t.Errorf("expected sequence 2, got %d", second.Sequence())
		}
	})

	t.Run("Get returns stored download", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		created := testDownload("run-1", "aaa", "First")
		if err := repo.Create(created); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.Get(created.ID())
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.VideoID() != "aaa" || got.Title() != "First" || got.Album() != "Mixtape" {
			t.Errorf("unexpected download: %+v", got)
		}
	})

	t.Run("Get missing download fails", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))
		if _, err := repo.Get("nope"); err == nil {
			t.Error("expected error for missing download")
		}
	})

	t.Run("GetByVideoID returns newest download", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		if err := repo.Create(testDownload("run-1", "aaa", "Old")); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := repo.Create(testDownload("run-2", "aaa", "New")); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.GetByVideoID("aaa")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Title() != "New" {
			t.Errorf("expected newest download, got %s", got.Title())
		}
	})

	t.Run("Update modifies fields", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		created := testDownload("run-1", "aaa", "First")
		if err := repo.Create(created); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		if err := repo.Update(created); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		created := testDownload("run-1", "aaa", "First")
		if err := repo.Create(created); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		if err := repo.Delete(created.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(created.ID()); err == nil {
			t.Error("expected deleted download to be hidden")
		}
		if err := repo.Delete(created.ID()); err == nil {
			t.Error("expected second delete to fail")
		}
	})

	t.Run("List filters by criteria newest first", func(t *testing.T) {
		repo := NewDownloadRepository(testDB(t))

		for _, d := range []*models.PersistedDownload{
			testDownload("run-1", "aaa", "First"),
			testDownload("run-1", "bbb", "Second"),
			testDownload("run-2", "ccc", "Third"),
		} {
			if err := repo.Create(d); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 downloads, got %d", len(all))
		}
		if all[0].Title() != "Third" {
			t.Errorf("expected newest first, got %s", all[0].Title())
		}

		byRun, err := repo.List(map[string]any{"run_id": "run-1"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(byRun) != 2 {
			t.Errorf("expected 2 downloads for run-1, got %d", len(byRun))
		}
	})
}
