// package tasks implements the download pipeline: resolve a playlist,
// plan destinations, fetch tracks one at a time, record history, and
// register the finished album with the music library.
//
// The core abstraction is Engine, which orchestrates the sequential
// pipeline. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"ytaudio/internal/meta"
	"ytaudio/internal/models"
	"ytaudio/internal/quodlibet"
	"ytaudio/internal/shared"
	"ytaudio/internal/ytdlp"
)

// RunOptions configures one download run. Immutable once built.
type RunOptions struct {
	URL              string           // Playlist URL (ignored when Resolved is set)
	OutputDir        string           // Base output directory
	AlbumOverride    string           // Album name override, empty uses playlist title
	ArtistOverride   string           // Artist override for all tracks
	Force            bool             // Re-download tracks whose destination exists
	SkipRegistration bool             // Skip the library registrar entirely
	Resolved         *models.Playlist // Pre-resolved playlist (e.g. after interactive selection)
}

// PlanResult is the side-effect-free projection of a run: the resolved
// playlist plus every planned destination.
type PlanResult struct {
	Playlist *models.Playlist
	Naming   models.Naming
	AlbumDir string
	Tracks   []meta.PlannedTrack
}

// TrackResult records the outcome for one planned track.
type TrackResult struct {
	Planned meta.PlannedTrack
	Skipped bool  // Destination existed and Force was not set
	Err     error // nil on success
}

// RunResult contains all data from a completed download run.
type RunResult struct {
	RunID      string        // Unique identifier for this run
	Playlist   *models.Playlist
	Naming     models.Naming
	AlbumDir   string        // Destination album directory
	LogPath    string        // Path of the written run log, empty when skipped
	Tracks     []TrackResult // Per-track outcomes in playlist order
	Downloaded int
	Skipped    int
	Failed     int
}

// HistoryRecorder persists completed downloads. Failures must be treated
// as non-fatal by callers.
type HistoryRecorder interface {
	Record(download *models.PersistedDownload) error
}

// Engine defines the pipeline operations.
type Engine interface {
	// Plan resolves the playlist and computes every destination path
	// without touching the filesystem.
	Plan(ctx context.Context, opts RunOptions) (*PlanResult, error)

	// Run executes the full pipeline, streaming progress updates.
	Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*RunResult, error)
}

// DownloadEngine implements Engine. Contains dependencies on the external
// downloader, the library registrar, and the optional history store.
type DownloadEngine struct {
	downloader ytdlp.Downloader
	registrar  quodlibet.Registrar
	history    HistoryRecorder
	limiter    *rate.Limiter
	logger     *log.Logger
}

// EngineOption configures a DownloadEngine.
type EngineOption func(*DownloadEngine)

// WithHistory attaches a history recorder for completed tracks.
func WithHistory(history HistoryRecorder) EngineOption {
	return func(e *DownloadEngine) { e.history = history }
}

// WithPace limits fetch starts to perMinute per minute. Zero disables pacing.
func WithPace(perMinute int) EngineOption {
	return func(e *DownloadEngine) {
		if perMinute > 0 {
			e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger *log.Logger) EngineOption {
	return func(e *DownloadEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewDownloadEngine creates a DownloadEngine with the provided collaborators.
func NewDownloadEngine(downloader ytdlp.Downloader, registrar quodlibet.Registrar, opts ...EngineOption) *DownloadEngine {
	engine := &DownloadEngine{
		downloader: downloader,
		registrar:  registrar,
		logger:     shared.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DownloadEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Plan resolves the playlist and computes destinations without side effects.
func (e *DownloadEngine) Plan(ctx context.Context, opts RunOptions) (*PlanResult, error) {
	if e.downloader == nil {
		return nil, fmt.Errorf("downloader not initialized")
	}

	playlist := opts.Resolved
	if playlist == nil {
		var err error
		playlist, err = e.downloader.Resolve(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
	}

	naming := meta.ResolveNaming(playlist, opts.AlbumOverride, opts.ArtistOverride)
	return &PlanResult{
		Playlist: playlist,
		Naming:   naming,
		AlbumDir: meta.AlbumDir(opts.OutputDir, naming),
		Tracks:   meta.PlanTracks(opts.OutputDir, playlist, naming),
	}, nil
}

// Run executes the full download pipeline.
//
// Per-track failures are reported and the run continues with the next
// track; the run as a whole fails only when resolution fails or no track
// succeeds. Registration and history failures are logged, never fatal.
func (e *DownloadEngine) Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	e.sendProgress(progress, resolvingUpdate())

	plan, err := e.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, resolvedUpdate(plan.Playlist))
	e.sendProgress(progress, plannedUpdate(plan.Naming, plan.AlbumDir, len(plan.Tracks)))

	result := &RunResult{
		RunID:    shared.GenerateID(),
		Playlist: plan.Playlist,
		Naming:   plan.Naming,
		AlbumDir: plan.AlbumDir,
	}

	total := len(plan.Tracks)
	for i, planned := range plan.Tracks {
		step := i + 1

		if !opts.Force {
			if _, err := os.Stat(planned.Path); err == nil {
				e.logger.Info("destination exists, skipping", "path", planned.Path)
				e.sendProgress(progress, trackSkippedUpdate(step, total, planned))
				result.Tracks = append(result.Tracks, TrackResult{Planned: planned, Skipped: true})
				result.Skipped++
				continue
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("pacing interrupted: %w", err)
			}
		}

		e.sendProgress(progress, fetchingTrackUpdate(step, total, planned))

		if err := e.downloader.Fetch(ctx, planned.Entry, planned.Path, planned.Tags); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Error("track download failed", "track", step, "video_id", planned.Entry.VideoID, "error", err)
			e.sendProgress(progress, trackFailedUpdate(step, total, planned, err))
			result.Tracks = append(result.Tracks, TrackResult{Planned: planned, Err: err})
			result.Failed++
			continue
		}

		e.sendProgress(progress, trackDoneUpdate(step, total, planned))
		result.Tracks = append(result.Tracks, TrackResult{Planned: planned})
		result.Downloaded++
		e.recordHistory(result.RunID, planned)
	}

	if result.Downloaded == 0 && result.Failed > 0 {
		return result, fmt.Errorf("%w: no tracks downloaded", shared.ErrDownloadFailed)
	}

	if result.Downloaded > 0 {
		logPath, err := e.writeRunLog(result)
		if err != nil {
			e.logger.Warn("failed to write run log", "error", err)
		} else {
			result.LogPath = logPath
			e.sendProgress(progress, writeLogUpdate(logPath))
		}
	}

	if !opts.SkipRegistration && result.Downloaded > 0 && e.registrar != nil {
		e.sendProgress(progress, registeringUpdate(result.AlbumDir))
		if err := e.registrar.Register(ctx, result.AlbumDir); err != nil {
			// Files are already in place, so registration problems never
			// fail the run.
			e.logger.Warn("library registration failed", "error", err)
		}
	}

	return result, nil
}

// recordHistory persists one completed track, ignoring storage errors.
func (e *DownloadEngine) recordHistory(runID string, planned meta.PlannedTrack) {
	if e.history == nil {
		return
	}
	download := models.NewPersistedDownload(0, runID, planned.Entry, planned.Tags, planned.Path)
	if err := e.history.Record(download); err != nil {
		e.logger.Warn("failed to record download history", "video_id", planned.Entry.VideoID, "error", err)
	}
}

// writeRunLog persists the run summary into the album directory.
func (e *DownloadEngine) writeRunLog(result *RunResult) (string, error) {
	runLog := &meta.RunLog{
		RunID:         result.RunID,
		PlaylistURL:   result.Playlist.URL,
		PlaylistTitle: result.Playlist.Title,
		Album:         result.Naming.Album,
		AlbumArtist:   result.Naming.AlbumArtist,
		DownloadDate:  time.Now().UTC(),
	}

	for _, track := range result.Tracks {
		if track.Err != nil {
			runLog.Errors = append(runLog.Errors, fmt.Sprintf("track %d (%s): %v",
				track.Planned.Entry.Index, track.Planned.Entry.VideoID, track.Err))
			continue
		}
		if track.Skipped {
			continue
		}
		runLog.Tracks = append(runLog.Tracks, meta.RunLogTrack{
			TrackNumber:  track.Planned.Tags.TrackNumber,
			VideoID:      track.Planned.Entry.VideoID,
			Title:        track.Planned.Tags.Title,
			Artist:       track.Planned.Tags.Artist,
			Filename:     meta.TrackFilename(track.Planned.Entry),
			DurationSecs: track.Planned.Entry.DurationSecs,
		})
	}

	return meta.WriteRunLog(result.AlbumDir, runLog)
}
