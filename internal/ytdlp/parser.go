package ytdlp

import (
	"encoding/json"
	"fmt"

	"ytaudio/internal/models"
)

// flatPlaylist mirrors the JSON document yt-dlp prints for
// --flat-playlist --dump-single-json.
type flatPlaylist struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Uploader string      `json:"uploader"`
	Entries  []*flatItem `json:"entries"`
}

// flatItem is one playlist entry in flat extraction. Unavailable videos
// appear as null entries and are dropped.
type flatItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Uploader string   `json:"uploader"`
	Channel  string   `json:"channel"`
	Duration *float64 `json:"duration"`
}

// parseFlatPlaylist converts the raw JSON document into a models.Playlist,
// assigning 1-based playlist indices in order.
func parseFlatPlaylist(data []byte) (*models.Playlist, error) {
	var flat flatPlaylist
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse playlist JSON: %w", err)
	}

	playlist := &models.Playlist{
		ID:       flat.ID,
		Title:    flat.Title,
		Uploader: flat.Uploader,
	}

	index := 0
	for _, item := range flat.Entries {
		if item == nil || item.ID == "" {
			continue
		}
		index++

		uploader := item.Uploader
		if uploader == "" {
			uploader = item.Channel
		}

		duration := 0
		if item.Duration != nil {
			duration = int(*item.Duration)
		}

		playlist.Entries = append(playlist.Entries, models.TrackEntry{
			VideoID:      item.ID,
			Title:        item.Title,
			Uploader:     uploader,
			DurationSecs: duration,
			Index:        index,
		})
	}

	return playlist, nil
}
