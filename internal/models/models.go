// package models defines the data model for the playlist audio downloader
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include PersistedDownload.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TrackEntry is one item of a resolved playlist.
type TrackEntry struct {
	VideoID      string // YouTube video identifier
	Title        string // Raw title as reported by the playlist
	Uploader     string // Channel or uploader name, may be empty
	DurationSecs int    // Duration in seconds, 0 when unknown
	Index        int    // 1-based position within the playlist
}

// WatchURL returns the canonical video URL for the entry.
func (e TrackEntry) WatchURL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", e.VideoID)
}

// Playlist is the ordered result of resolving a playlist URL.
type Playlist struct {
	ID       string       // Playlist identifier
	Title    string       // Playlist title
	URL      string       // Normalized playlist URL
	Uploader string       // Playlist owner, may be empty
	Entries  []TrackEntry // Tracks in playlist order
}

// TrackCount returns the number of entries in the playlist.
func (p *Playlist) TrackCount() int { return len(p.Entries) }

// Naming holds the album/artist decision for a run, computed once and
// shared read-only by every track.
type Naming struct {
	Album          string // Final album name
	AlbumArtist    string // Final album artist
	ArtistOverride string // Per-track artist override, empty when unset
}

// Tags is the metadata set embedded into a downloaded Opus file.
type Tags struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber int
	TrackTotal  int
	Date        string // Release year, empty when unknown
}

// PersistedDownload represents a completed track download stored in the
// history database.
type PersistedDownload struct {
	id           string
	sequence     int
	runID        string
	videoID      string
	title        string
	artist       string
	album        string
	path         string
	durationSecs int
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewPersistedDownload creates a PersistedDownload for a track that was
// written to path during the run identified by runID.
func NewPersistedDownload(sequence int, runID string, entry TrackEntry, tags Tags, path string) *PersistedDownload {
	now := time.Now()
	return &PersistedDownload{
		sequence:     sequence,
		runID:        runID,
		videoID:      entry.VideoID,
		title:        tags.Title,
		artist:       tags.Artist,
		album:        tags.Album,
		path:         path,
		durationSecs: entry.DurationSecs,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (d *PersistedDownload) ID() string           { return d.id }
func (d *PersistedDownload) Sequence() int        { return d.sequence }
func (d *PersistedDownload) RunID() string        { return d.runID }
func (d *PersistedDownload) VideoID() string      { return d.videoID }
func (d *PersistedDownload) Title() string        { return d.title }
func (d *PersistedDownload) Artist() string       { return d.artist }
func (d *PersistedDownload) Album() string        { return d.album }
func (d *PersistedDownload) Path() string         { return d.path }
func (d *PersistedDownload) DurationSecs() int    { return d.durationSecs }
func (d *PersistedDownload) CreatedAt() time.Time { return d.createdAt }
func (d *PersistedDownload) UpdatedAt() time.Time { return d.updatedAt }
func (d *PersistedDownload) DeletedAt() *time.Time {
	return d.deletedAt
}

func (d *PersistedDownload) SetID(id string)              { d.id = id }
func (d *PersistedDownload) SetSequence(seq int)          { d.sequence = seq }
func (d *PersistedDownload) SetUpdatedAt(t time.Time)     { d.updatedAt = t }
func (d *PersistedDownload) SetDeletedAt(t *time.Time)    { d.deletedAt = t }
func (d *PersistedDownload) SetCreatedAt(t time.Time)     { d.createdAt = t }
func (d *PersistedDownload) SetTimestamps(c, u time.Time) { d.createdAt, d.updatedAt = c, u }

// Validate checks that required download fields are set.
func (d *PersistedDownload) Validate() error {
	if d.id == "" {
		return fmt.Errorf("download ID is required")
	}
	if d.videoID == "" {
		return fmt.Errorf("download video ID is required")
	}
	if d.path == "" {
		return fmt.Errorf("download path is required")
	}
	return nil
}
