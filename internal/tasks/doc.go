// Package tasks orchestrates the download pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Plan] : Resolve a playlist and compute destinations
//     - Invokes the external downloader in metadata-only mode
//     - Decides album/artist naming once for the whole run
//     - Maps every entry to its destination path and tag set
//     - Touches nothing on disk (backs dry-run and the track picker)
//
//  2. [Engine.Run] : Execute the full pipeline
//     - Plans as above, then fetches tracks sequentially, one at a time
//     - Skips tracks whose destination already exists unless forced
//     - Records completed tracks in the history database
//     - Writes download_log.json into the album directory
//     - Registers the album with the music library unless skipped
//
// # Error Policy
//
// A failed track is reported and the run continues with the next track;
// the run fails only when resolution fails or no track succeeds.
// History and registration failures are logged and never fatal, since the
// audio files are already correctly placed.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [DownloadEngine] implements [Engine] with dependencies on:
//   - [ytdlp.Downloader] : The external downloader/transcoder tool
//   - [quodlibet.Registrar] : The music library integration
//   - [HistoryRecorder] : Optional persistence layer (repositories.HistoryAdapter)
package tasks
