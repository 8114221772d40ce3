package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ytaudio/internal/models"
	"ytaudio/internal/shared"
)

// DownloadRepository implements models.Repository[*models.PersistedDownload]
// for the download history.
//
// Handles download CRUD operations with soft delete support and
// video-id/run-id lookups.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new download into the database with generated ID and sequence
func (r *DownloadRepository) Create(download *models.PersistedDownload) error {
	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	download.SetSequence(sequence)

	id := shared.GenerateID()
	download.SetID(id)

	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO downloads (id, sequence, run_id, video_id, title, artist, album, path, duration_secs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		download.RunID(),
		download.VideoID(),
		download.Title(),
		download.Artist(),
		download.Album(),
		download.Path(),
		download.DurationSecs(),
		download.CreatedAt(),
		download.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download by ID, excluding soft-deleted downloads
func (r *DownloadRepository) Get(id string) (*models.PersistedDownload, error) {
	query := `
		SELECT id, sequence, run_id, video_id, title, artist, album, path, duration_secs, created_at, updated_at, deleted_at
		FROM downloads
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByVideoID retrieves the most recent download of a video
func (r *DownloadRepository) GetByVideoID(videoID string) (*models.PersistedDownload, error) {
	query := `
		SELECT id, sequence, run_id, video_id, title, artist, album, path, duration_secs, created_at, updated_at, deleted_at
		FROM downloads
		WHERE video_id = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, videoID))
}

// Update modifies an existing download in the database
func (r *DownloadRepository) Update(download *models.PersistedDownload) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	download.SetUpdatedAt(now)

	query := `
		UPDATE downloads
		SET title = ?, artist = ?, album = ?, path = ?, duration_secs = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		download.Title(),
		download.Artist(),
		download.Album(),
		download.Path(),
		download.DurationSecs(),
		now,
		download.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found or already deleted: %s", download.ID())
	}

	return nil
}

// Delete soft-deletes a download by setting deleted_at
func (r *DownloadRepository) Delete(id string) error {
	query := `
		UPDATE downloads
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves downloads matching the given criteria, newest first.
// Supported criteria keys: run_id, video_id, album, artist.
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.PersistedDownload, error) {
	query := `
		SELECT id, sequence, run_id, video_id, title, artist, album, path, duration_secs, created_at, updated_at, deleted_at
		FROM downloads
		WHERE deleted_at IS NULL
	`

	var conditions []string
	var args []any
	for _, key := range []string{"run_id", "video_id", "album", "artist"} {
		if value, ok := criteria[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = ?", key))
			args = append(args, value)
		}
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.PersistedDownload
	for rows.Next() {
		download, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, download)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate downloads: %w", err)
	}

	return downloads, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DownloadRepository) scanOne(row *sql.Row) (*models.PersistedDownload, error) {
	download, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("download not found: %w", err)
	}
	return download, err
}

func (r *DownloadRepository) scanRow(row scanner) (*models.PersistedDownload, error) {
	var (
		id, runID, videoID, title, artist, album, path string
		sequence, durationSecs                         int
		createdAt, updatedAt                           time.Time
		deletedAt                                      *time.Time
	)

	err := row.Scan(&id, &sequence, &runID, &videoID, &title, &artist, &album, &path, &durationSecs, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	download := models.NewPersistedDownload(sequence, runID,
		models.TrackEntry{VideoID: videoID, DurationSecs: durationSecs},
		models.Tags{Title: title, Artist: artist, Album: album},
		path,
	)
	download.SetID(id)
	download.SetTimestamps(createdAt, updatedAt)
	download.SetDeletedAt(deletedAt)

	return download, nil
}
