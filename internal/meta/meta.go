// Package meta contains the pure naming and path planning functions of the
// pipeline: filename sanitization, title cleanup, artist resolution, and
// destination path construction. Everything here is deterministic and free
// of side effects; the run log writer in log.go is the only exception.
package meta

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"ytaudio/internal/models"
)

const maxFilenameRunes = 200

// UnknownArtist is used when no artist metadata is available for a track.
const UnknownArtist = "Unknown Artist"

// VariousArtists is the album artist for playlists mixing multiple uploaders.
const VariousArtists = "Various Artists"

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	multiSpace   = regexp.MustCompile(`\s+`)

	// Bracketed suffixes YouTube uploaders append to titles.
	titleNoise = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:` +
		`Official\s+(?:Video|Audio|Music\s+Video|Lyric\s+Video|Visualizer)` +
		`|Lyric\s+Video` +
		`|Audio\s+Only` +
		`|Audio` +
		`|HQ` +
		`|HD` +
		`|4K` +
		`)\s*[\)\]]`)
)

// SanitizeFilename strips filesystem-unsafe characters, collapses
// whitespace, and caps the result at 200 runes.
func SanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(multiSpace.ReplaceAllString(name, " "))

	runes := []rune(name)
	if len(runes) > maxFilenameRunes {
		name = string(runes[:maxFilenameRunes])
	}
	return name
}

// CleanTitle strips common YouTube noise such as "(Official Video)" or
// "[Lyric Video]" from a track title. Returns the original title when
// cleaning would leave nothing.
func CleanTitle(title string) string {
	cleaned := titleNoise.ReplaceAllString(title, "")
	cleaned = strings.TrimSpace(multiSpace.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return title
	}
	return cleaned
}

// TrackArtist returns the best artist name for an entry, falling back to
// UnknownArtist when no metadata is available.
func TrackArtist(entry models.TrackEntry) string {
	if entry.Uploader != "" {
		return entry.Uploader
	}
	return UnknownArtist
}

// AlbumArtist determines the album artist for a set of entries: the single
// common artist when all tracks agree, VariousArtists otherwise. An
// override always wins.
func AlbumArtist(entries []models.TrackEntry, override string) string {
	if override != "" {
		return override
	}

	artists := make(map[string]struct{})
	for _, entry := range entries {
		artists[TrackArtist(entry)] = struct{}{}
	}

	if len(artists) == 1 {
		for artist := range artists {
			return artist
		}
	}
	return VariousArtists
}

// ResolveNaming computes the album/artist decision for a run from the
// resolved playlist and the configured overrides.
func ResolveNaming(playlist *models.Playlist, albumOverride, artistOverride string) models.Naming {
	album := albumOverride
	if album == "" {
		album = playlist.Title
	}
	if album == "" {
		album = "Unknown Playlist"
	}

	return models.Naming{
		Album:          album,
		AlbumArtist:    AlbumArtist(playlist.Entries, artistOverride),
		ArtistOverride: artistOverride,
	}
}

// AlbumDir returns the destination directory for an album:
// <outputDir>/<AlbumArtist>/<Album>, both segments sanitized.
func AlbumDir(outputDir string, naming models.Naming) string {
	return filepath.Join(outputDir, SanitizeFilename(naming.AlbumArtist), SanitizeFilename(naming.Album))
}

// TrackFilename returns "<NN> - <Title>.opus" for an entry, with the title
// cleaned and sanitized.
func TrackFilename(entry models.TrackEntry) string {
	title := SanitizeFilename(CleanTitle(entry.Title))
	if title == "" {
		title = entry.VideoID
	}
	return fmt.Sprintf("%02d - %s.opus", entry.Index, title)
}

// TrackPath returns the full destination path for an entry within an album
// directory.
func TrackPath(outputDir string, naming models.Naming, entry models.TrackEntry) string {
	return filepath.Join(AlbumDir(outputDir, naming), TrackFilename(entry))
}

// PlannedTrack pairs a playlist entry with its destination path and tags.
type PlannedTrack struct {
	Entry models.TrackEntry
	Path  string
	Tags  models.Tags
}

// TrackTags builds the tag set for one entry under a naming decision.
func TrackTags(entry models.TrackEntry, naming models.Naming, trackTotal int) models.Tags {
	artist := naming.ArtistOverride
	if artist == "" {
		artist = TrackArtist(entry)
	}

	return models.Tags{
		Title:       CleanTitle(entry.Title),
		Artist:      artist,
		Album:       naming.Album,
		AlbumArtist: naming.AlbumArtist,
		TrackNumber: entry.Index,
		TrackTotal:  trackTotal,
	}
}

// PlanTracks maps every playlist entry to its destination path and tag set.
// The plan preserves playlist order and always has one element per entry.
func PlanTracks(outputDir string, playlist *models.Playlist, naming models.Naming) []PlannedTrack {
	plan := make([]PlannedTrack, 0, len(playlist.Entries))
	total := len(playlist.Entries)

	for _, entry := range playlist.Entries {
		plan = append(plan, PlannedTrack{
			Entry: entry,
			Path:  TrackPath(outputDir, naming, entry),
			Tags:  TrackTags(entry, naming, total),
		})
	}
	return plan
}
