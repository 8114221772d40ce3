package repositories

import (
	"fmt"
	"strings"

	"ytaudio/internal/models"
)

// HistoryAdapter implements tasks.HistoryRecorder using DownloadRepository.
//
// Records completed downloads without disrupting the run: duplicate inserts
// from re-downloads of the same video are allowed (history keeps every run).
type HistoryAdapter struct {
	repo *DownloadRepository
}

// NewHistoryAdapter creates a new HistoryAdapter with the given repository
func NewHistoryAdapter(repo *DownloadRepository) *HistoryAdapter {
	return &HistoryAdapter{repo: repo}
}

// Record persists a completed download.
func (a *HistoryAdapter) Record(download *models.PersistedDownload) error {
	if err := a.repo.Create(download); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}
