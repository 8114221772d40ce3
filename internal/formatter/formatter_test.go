package formatter

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"ytaudio/internal/meta"
	"ytaudio/internal/models"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		name string
		secs int
		want string
	}{
		{"zero", 0, "-"},
		{"negative", -5, "-"},
		{"under a minute", 42, "0:42"},
		{"minutes", 245, "4:05"},
		{"exactly an hour", 3600, "1:00:00"},
		{"hours", 7384, "2:03:04"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDuration(tc.secs); got != tc.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tc.secs, got, tc.want)
			}
		})
	}
}

func TestRenderTrackTable(t *testing.T) {
	playlist := &models.Playlist{
		Title: "Road Trip",
		Entries: []models.TrackEntry{
			{VideoID: "aaa", Title: "First Song (Official Video)", Uploader: "Band", DurationSecs: 185, Index: 1},
			{VideoID: "bbb", Title: "Second Song", Uploader: "Band", DurationSecs: 0, Index: 2},
		},
	}

	out := RenderTrackTable(playlist)

	t.Run("cleans titles", func(t *testing.T) {
		if strings.Contains(out, "Official Video") {
			t.Error("expected noise suffix stripped from title")
		}
		if !strings.Contains(out, "First Song") {
			t.Errorf("expected cleaned title in output, got:\n%s", out)
		}
	})

	t.Run("formats durations", func(t *testing.T) {
		if !strings.Contains(out, "3:05") {
			t.Errorf("expected formatted duration, got:\n%s", out)
		}
	})

	t.Run("includes every entry", func(t *testing.T) {
		if !strings.Contains(out, "Second Song") {
			t.Errorf("expected second track in output, got:\n%s", out)
		}
	})
}

func TestRenderHistoryTable(t *testing.T) {
	entry := models.TrackEntry{VideoID: "aaa", Title: "First Song", Uploader: "Band", DurationSecs: 185, Index: 1}
	tags := models.Tags{Title: "First Song", Artist: "Band", Album: "Road Trip", AlbumArtist: "Band", TrackNumber: 1, TrackTotal: 1}
	d := models.NewPersistedDownload(7, "run-1", entry, tags, "/music/Band/Road Trip/01 - First Song.opus")
	d.SetTimestamps(time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC))

	out := RenderHistoryTable([]*models.PersistedDownload{d})

	for _, want := range []string{"First Song", "Band", "Road Trip", "3:05", "2026-08-01 10:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in history table, got:\n%s", want, out)
		}
	}
}

func sampleRunLog() *meta.RunLog {
	return &meta.RunLog{
		RunID:         "run-1",
		PlaylistURL:   "https://www.youtube.com/playlist?list=PLx",
		PlaylistTitle: "Road Trip Mix",
		Album:         "Road Trip",
		AlbumArtist:   "Band",
		DownloadDate:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Tracks: []meta.RunLogTrack{
			{TrackNumber: 1, VideoID: "aaa", Title: "First Song", Artist: "Band", Filename: "01 - First Song.opus", DurationSecs: 185},
			{TrackNumber: 2, VideoID: "bbb", Title: "Second Song", Artist: "Band", Filename: "02 - Second Song.opus", DurationSecs: 201},
		},
		Errors: []string{"track 3 (ccc): download failed"},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleRunLog())
	if err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse exported CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "Track" {
		t.Errorf("expected Track header, got %q", records[0][0])
	}
	if records[1][2] != "First Song" {
		t.Errorf("expected first track title, got %q", records[1][2])
	}
	if records[2][5] != "201" {
		t.Errorf("expected duration column, got %q", records[2][5])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleRunLog())
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}
	out := string(data)

	for _, want := range []string{"# Road Trip", "**Album artist:** Band", "| 1 | First Song", "## Errors", "track 3 (ccc)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown export, got:\n%s", want, out)
		}
	}
}
