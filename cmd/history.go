package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"ytaudio/internal/formatter"
	"ytaudio/internal/meta"
	"ytaudio/internal/repositories"
	"ytaudio/internal/shared"
)

// HistoryList prints past downloads from the history database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewDownloadRepository(db)

	criteria := map[string]any{}
	if album := cmd.String("album"); album != "" {
		criteria["album"] = album
	}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}

	downloads, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if cmd.Bool("json") {
		records := make([]map[string]any, 0, len(downloads))
		for _, d := range downloads {
			records = append(records, map[string]any{
				"sequence":   d.Sequence(),
				"video_id":   d.VideoID(),
				"title":      d.Title(),
				"artist":     d.Artist(),
				"album":      d.Album(),
				"path":       d.Path(),
				"duration":   d.DurationSecs(),
				"created_at": d.CreatedAt(),
			})
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(downloads) == 0 {
		r.writePlain("No downloads recorded.\n")
		return nil
	}

	r.writePlain("%s\n", formatter.RenderHistoryTable(downloads))
	r.writePlain("\n%d downloads\n", len(downloads))
	return nil
}

// HistoryExport converts an album's run log to CSV or Markdown.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("%w: album directory or run log path required", shared.ErrMissingArgument)
	}

	logPath := shared.ExpandHome(target)
	if info, err := os.Stat(logPath); err == nil && info.IsDir() {
		logPath = filepath.Join(logPath, meta.RunLogName)
	}

	runLog, err := meta.ReadRunLog(logPath)
	if err != nil {
		return err
	}

	var data []byte
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "csv":
		data, err = formatter.ExportToCSV(runLog)
	case "markdown", "md":
		data, err = formatter.ExportToMarkdown(runLog)
	default:
		return fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.logger.Info("export written", "path", out, "format", format)
		return nil
	}

	return r.writePlain("%s", string(data))
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect and export past downloads",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded downloads, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "album", Usage: "Filter by album name"},
					&cli.StringFlag{Name: "artist", Usage: "Filter by artist name"},
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "export",
				Usage:     "Export an album's run log as CSV or Markdown",
				ArgsUsage: "<album-dir | run-log-path>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv or markdown",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to file instead of stdout",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}
