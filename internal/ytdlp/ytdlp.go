// Package ytdlp wraps the external yt-dlp binary behind the narrow
// [Downloader] interface the pipeline depends on: resolving a playlist URL
// to its track entries, and fetching one track as a tagged Opus file.
package ytdlp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"ytaudio/internal/models"
	"ytaudio/internal/shared"
	"ytaudio/internal/shell"
)

// Downloader is the pipeline's view of the external downloader tool.
type Downloader interface {
	// Resolve fetches playlist metadata without downloading any media.
	Resolve(ctx context.Context, playlistURL string) (*models.Playlist, error)

	// Fetch downloads one track as an Opus file at destPath with the given
	// tags embedded. The parent directory is created as needed.
	Fetch(ctx context.Context, entry models.TrackEntry, destPath string, tags models.Tags) error
}

// Client implements [Downloader] by shelling out to yt-dlp.
type Client struct {
	binary          string
	audioQuality    int
	embedThumbnails bool
	exec            shell.Executor
	logger          *log.Logger
	toolOut         io.Writer // destination for yt-dlp's own output, nil discards
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec shell.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithAudioQuality sets yt-dlp's audio quality (0 best - 10 worst).
func WithAudioQuality(q int) Option {
	return func(c *Client) { c.audioQuality = q }
}

// WithThumbnails toggles album art embedding.
func WithThumbnails(embed bool) Option {
	return func(c *Client) { c.embedThumbnails = embed }
}

// WithToolOutput forwards yt-dlp's progress output to w (verbose mode).
func WithToolOutput(w io.Writer) Option {
	return func(c *Client) { c.toolOut = w }
}

// NewClient creates a yt-dlp client for the given binary name or path.
func NewClient(binary string, logger *log.Logger, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, fmt.Errorf("%w: yt-dlp binary required", shared.ErrInvalidConfig)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	client := &Client{
		binary:          binary,
		embedThumbnails: true,
		exec:            shell.NewExecutor(),
		logger:          logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NormalizePlaylistURL rewrites a YouTube URL carrying a list parameter to
// the canonical https://www.youtube.com/playlist?list=<id> form. URLs
// without a list parameter pass through unchanged.
func NormalizePlaylistURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", shared.ErrInvalidURL, parsed.Scheme)
	}

	if listID := parsed.Query().Get("list"); listID != "" {
		return "https://www.youtube.com/playlist?list=" + listID, nil
	}
	return raw, nil
}

// Resolve runs yt-dlp in flat-playlist mode and parses the JSON document it
// prints into an ordered [models.Playlist].
func (c *Client) Resolve(ctx context.Context, playlistURL string) (*models.Playlist, error) {
	normalized, err := NormalizePlaylistURL(playlistURL)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--flat-playlist",
		"--dump-single-json",
		"--no-warnings",
		normalized,
	}

	c.logger.Debug("resolving playlist", "url", normalized)
	out, err := c.exec.Output(ctx, c.binary, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolutionFailed, err)
	}

	playlist, err := parseFlatPlaylist(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResolutionFailed, err)
	}
	playlist.URL = normalized

	if len(playlist.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoEntries, normalized)
	}
	return playlist, nil
}

// Fetch downloads one track, transcoding to Opus and embedding tags and
// album art in a single yt-dlp invocation.
func (c *Client) Fetch(ctx context.Context, entry models.TrackEntry, destPath string, tags models.Tags) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create album directory: %w", err)
	}

	// yt-dlp substitutes the post-processed extension for %(ext)s, so the
	// template must carry the stem only.
	template := strings.TrimSuffix(destPath, ".opus") + ".%(ext)s"

	args := []string{
		"--no-playlist",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "opus",
		"--audio-quality", strconv.Itoa(c.audioQuality),
		"--embed-metadata",
		"--force-overwrites",
		"--no-warnings",
	}
	if c.embedThumbnails {
		args = append(args, "--embed-thumbnail")
	}
	args = append(args,
		"--postprocessor-args", "ffmpeg:"+metadataArgs(tags),
		"-o", template,
		entry.WatchURL(),
	)

	c.logger.Debug("fetching track", "video_id", entry.VideoID, "dest", destPath)

	onLine := func(string) {}
	if c.toolOut != nil {
		onLine = func(line string) { fmt.Fprintln(c.toolOut, line) }
	}
	if err := c.exec.Run(ctx, c.binary, args, onLine, c.toolOut); err != nil {
		return fmt.Errorf("%w: track %d (%s): %v", shared.ErrDownloadFailed, entry.Index, entry.VideoID, err)
	}

	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("%w: track %d (%s): no output file at %s", shared.ErrDownloadFailed, entry.Index, entry.VideoID, destPath)
	}
	return nil
}

// metadataArgs renders the ffmpeg -metadata arguments for a tag set.
// yt-dlp shell-splits the postprocessor argument string, so values are
// double-quoted.
func metadataArgs(tags models.Tags) string {
	pairs := []struct{ key, value string }{
		{"title", tags.Title},
		{"artist", tags.Artist},
		{"album", tags.Album},
		{"album_artist", tags.AlbumArtist},
		{"track", fmt.Sprintf("%d/%d", tags.TrackNumber, tags.TrackTotal)},
	}
	if tags.Date != "" {
		pairs = append(pairs, struct{ key, value string }{"date", tags.Date})
	}

	parts := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		parts = append(parts, "-metadata", quoteArg(p.key+"="+p.value))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
