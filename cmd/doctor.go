package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"ytaudio/internal/shared"
)

// Doctor checks that the external tools the pipeline drives are installed.
func (r *Runner) Doctor(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Environment Check")

	checks := []struct {
		name     string
		binary   string
		required bool
	}{
		{"yt-dlp", r.config.Tools.YtDlp, true},
		{"ffmpeg", r.config.Tools.FFmpeg, true},
		{"quodlibet", r.config.Tools.QuodLibet, false},
	}

	missing := false
	for _, check := range checks {
		path, err := r.exec.LookPath(check.binary)
		if err != nil {
			if check.required {
				missing = true
				r.writePlain("✗ %s: not found (looked for %q)\n", check.name, check.binary)
			} else {
				r.writePlain("- %s: not found, library registration will be skipped\n", check.name)
			}
			continue
		}

		version := r.toolVersion(ctx, check.name, path)
		if version != "" {
			r.writePlain("✓ %s: %s (%s)\n", check.name, path, version)
		} else {
			r.writePlain("✓ %s: %s\n", check.name, path)
		}
	}

	if missing {
		return shared.ErrMissingTool
	}

	r.writePlain("\nAll required tools available.\n")
	return nil
}

// toolVersion asks a tool for its version, returning the first output line.
func (r *Runner) toolVersion(ctx context.Context, name, path string) string {
	arg := "--version"
	if name == "ffmpeg" {
		arg = "-version"
	}

	out, err := r.exec.Output(ctx, path, []string{arg})
	if err != nil {
		return ""
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}

func doctorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check that yt-dlp, ffmpeg, and quodlibet are installed",
		Action: r.Doctor,
	}
}
