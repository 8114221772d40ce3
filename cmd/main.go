package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"ytaudio/internal/shared"
)

func main() {
	godotenv.Load()
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("YTAUDIO_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrAnotherRun) {
			logger.Warnf("%v", err)
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command with the download action and subcommands.
func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ytaudio",
		Usage:     "Download YouTube playlists as tagged Opus albums",
		Version:   "0.3.0",
		ArgsUsage: "<playlist-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Base music directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "album-name",
				Usage: "Album name override, defaults to the playlist title",
			},
			&cli.StringFlag{
				Name:  "artist-name",
				Usage: "Artist override applied to every track",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the planned downloads without fetching anything",
			},
			&cli.BoolFlag{
				Name:  "no-quodlibet",
				Usage: "Skip Quod Libet library registration",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Re-download tracks whose destination file exists",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Pick tracks interactively before downloading",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging and yt-dlp output",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action:   runner.Download,
		Commands: runner.register(),
	}
}
