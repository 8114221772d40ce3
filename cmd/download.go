package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"

	"ytaudio/internal/formatter"
	"ytaudio/internal/models"
	"ytaudio/internal/shared"
	"ytaudio/internal/tasks"
	"ytaudio/internal/ui"
	"ytaudio/internal/ytdlp"
)

// Download resolves a playlist URL and fetches every track as a tagged
// Opus file. This is the root command action.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.Args().First()
	if rawURL == "" {
		return fmt.Errorf("%w: playlist URL required", shared.ErrMissingArgument)
	}
	if cmd.Args().Len() > 1 {
		return fmt.Errorf("%w: expected a single playlist URL", shared.ErrInvalidArgument)
	}

	verbose := cmd.Bool("verbose")
	if verbose {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = config
	}

	playlistURL, err := ytdlp.NormalizePlaylistURL(rawURL)
	if err != nil {
		return err
	}

	outputDir := r.config.Output.Dir
	if cmd.String("output-dir") != "" {
		outputDir = cmd.String("output-dir")
	}

	opts := tasks.RunOptions{
		URL:              playlistURL,
		OutputDir:        shared.ExpandHome(outputDir),
		AlbumOverride:    cmd.String("album-name"),
		ArtistOverride:   cmd.String("artist-name"),
		Force:            cmd.Bool("force"),
		SkipRegistration: cmd.Bool("no-quodlibet"),
	}

	r.logger.Info("starting download", "url", playlistURL, "output", opts.OutputDir)

	if err := r.buildClients(verbose); err != nil {
		return err
	}

	if cmd.Bool("select") {
		resolved, err := r.pickTracks(ctx, playlistURL)
		if err != nil {
			return err
		}
		if resolved == nil {
			r.writePlain("No tracks selected, nothing downloaded.\n")
			return nil
		}
		opts.Resolved = resolved
	}

	if cmd.Bool("dry-run") {
		return r.downloadDryRun(ctx, opts)
	}

	// One download run at a time. A second invocation bails out instead of
	// racing the first over the same album directory.
	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: another download is in progress (lock: %s)", shared.ErrAnotherRun, r.lockPath)
	}
	defer lock.Unlock()

	history := r.history
	if history == nil && r.config.Database.Path != "" {
		db, recorder, err := r.openHistory()
		if err != nil {
			r.logger.Warn("history database unavailable, downloads will not be recorded", "error", err)
		} else {
			defer db.Close()
			history = recorder
		}
	}

	engine := tasks.NewDownloadEngine(r.downloader, r.registrar,
		tasks.WithHistory(history),
		tasks.WithPace(r.config.Download.PacePerMinute),
		tasks.WithEngineLogger(r.logger),
	)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolvePlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.PlanTracks:
				r.writePlain("📝 %s\n\n", update.Message)
			case tasks.FetchTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteLog:
				r.writePlain("\n🗒  %s\n", update.Message)
			case tasks.RegisterLibrary:
				r.writePlain("🎵 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Download Complete!")
	r.writePlain("Album: %s / %s\n", result.Naming.AlbumArtist, result.Naming.Album)
	r.writePlain("Location: %s\n", result.AlbumDir)
	r.writePlain("Downloaded: %d  Skipped: %d  Failed: %d\n", result.Downloaded, result.Skipped, result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed tracks:\n")
		for _, track := range result.Tracks {
			if track.Err != nil {
				r.writePlain("  - %02d. %s: %v\n", track.Planned.Entry.Index, track.Planned.Tags.Title, track.Err)
			}
		}
	}

	return nil
}

// downloadDryRun prints the plan without touching the filesystem.
func (r *Runner) downloadDryRun(ctx context.Context, opts tasks.RunOptions) error {
	engine := tasks.NewDownloadEngine(r.downloader, r.registrar, tasks.WithEngineLogger(r.logger))

	plan, err := engine.Plan(ctx, opts)
	if err != nil {
		return err
	}

	r.writePlainHeader("Dry Run")
	r.writePlain("Playlist: %s (%d tracks)\n", plan.Playlist.Title, plan.Playlist.TrackCount())
	r.writePlain("Album: %s / %s\n", plan.Naming.AlbumArtist, plan.Naming.Album)
	r.writePlain("Destination: %s\n\n", plan.AlbumDir)
	r.writePlain("%s\n", formatter.RenderTrackTable(plan.Playlist))
	r.writePlain("\nNothing downloaded (dry run).\n")
	return nil
}

// pickTracks resolves the playlist and runs the interactive picker.
// Returns nil when the user cancels.
func (r *Runner) pickTracks(ctx context.Context, playlistURL string) (*models.Playlist, error) {
	playlist, err := r.downloader.Resolve(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	selected, err := ui.SelectTracks(playlist)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, nil
	}

	picked := *playlist
	picked.Entries = selected
	return &picked, nil
}
