package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunLogName is the file written into each album directory describing the run.
const RunLogName = "download_log.json"

// RunLog is the persisted record of one download run.
type RunLog struct {
	RunID         string        `json:"run_id"`
	PlaylistURL   string        `json:"playlist_url"`
	PlaylistTitle string        `json:"playlist_title"`
	Album         string        `json:"album"`
	AlbumArtist   string        `json:"album_artist"`
	DownloadDate  time.Time     `json:"download_date"`
	Tracks        []RunLogTrack `json:"tracks"`
	Errors        []string      `json:"errors,omitempty"`
}

// RunLogTrack is one downloaded track within a RunLog.
type RunLogTrack struct {
	TrackNumber  int    `json:"track_number"`
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Filename     string `json:"filename"`
	DurationSecs int    `json:"duration,omitempty"`
}

// WriteRunLog serializes the log as indented JSON into the album directory
// and returns the written path.
func WriteRunLog(albumDir string, log *RunLog) (string, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run log: %w", err)
	}

	path := filepath.Join(albumDir, RunLogName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run log: %w", err)
	}
	return path, nil
}

// ReadRunLog loads a run log previously written by WriteRunLog.
func ReadRunLog(path string) (*RunLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}

	var log RunLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse run log: %w", err)
	}
	return &log, nil
}
