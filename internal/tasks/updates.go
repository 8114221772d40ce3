package tasks

import (
	"fmt"

	"ytaudio/internal/meta"
	"ytaudio/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolvePlaylist Phase = iota
	PlanTracks
	FetchTracks
	WriteLog
	RegisterLibrary
)

func (p Phase) String() string {
	switch p {
	case ResolvePlaylist:
		return "resolve_playlist"
	case PlanTracks:
		return "plan_tracks"
	case FetchTracks:
		return "fetch_tracks"
	case WriteLog:
		return "write_log"
	case RegisterLibrary:
		return "register_library"
	default:
		return ""
	}
}

func resolvingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    0,
		Total:   1,
		Message: "Resolving playlist...",
	}
}

func resolvedUpdate(playlist *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", playlist.Title, playlist.TrackCount()),
		Data:    playlist,
	}
}

func plannedUpdate(naming models.Naming, albumDir string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Album: %s / %s (%d tracks) -> %s", naming.AlbumArtist, naming.Album, count, albumDir),
	}
}

func fetchingTrackUpdate(step, total int, planned meta.PlannedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, planned.Tags.Artist, planned.Tags.Title),
		Data:    planned,
	}
}

func trackDoneUpdate(step, total int, planned meta.PlannedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, planned.Path),
	}
}

func trackSkippedUpdate(step, total int, planned meta.PlannedTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] already exists, skipping: %s", step, total, planned.Path),
	}
}

func trackFailedUpdate(step, total int, planned meta.PlannedTrack, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, planned.Tags.Artist, planned.Tags.Title, err),
	}
}

func writeLogUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteLog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Run log written: %s", path),
	}
}

func registeringUpdate(albumDir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RegisterLibrary,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Registering album with Quod Libet: %s", albumDir),
	}
}
