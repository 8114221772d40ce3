package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"ytaudio/internal/quodlibet"
	"ytaudio/internal/repositories"
	"ytaudio/internal/shared"
	"ytaudio/internal/shell"
	"ytaudio/internal/tasks"
	"ytaudio/internal/ytdlp"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	downloader ytdlp.Downloader
	registrar  quodlibet.Registrar
	history    tasks.HistoryRecorder
	exec       shell.Executor
	logger     *log.Logger
	output     io.Writer
	lockPath   string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Downloader ytdlp.Downloader
	Registrar  quodlibet.Registrar
	History    tasks.HistoryRecorder
	Executor   shell.Executor
	Logger     *log.Logger
	Output     io.Writer
	LockPath   string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Executor == nil {
		opts.Executor = shell.NewExecutor()
	}
	if opts.LockPath == "" {
		opts.LockPath = filepath.Join(os.TempDir(), "ytaudio.lock")
	}

	return &Runner{
		config:     opts.Config,
		downloader: opts.Downloader,
		registrar:  opts.Registrar,
		history:    opts.History,
		exec:       opts.Executor,
		logger:     opts.Logger,
		output:     opts.Output,
		lockPath:   opts.LockPath,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, historyCommand, doctorCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// buildClients constructs the yt-dlp and quodlibet clients from config
// unless doubles were injected. Verbose mode streams yt-dlp output to the
// runner's output writer.
func (r *Runner) buildClients(verbose bool) error {
	if r.downloader == nil {
		opts := []ytdlp.Option{
			ytdlp.WithAudioQuality(r.config.Download.AudioQuality),
			ytdlp.WithThumbnails(r.config.Download.EmbedThumbnails),
		}
		if verbose {
			opts = append(opts, ytdlp.WithToolOutput(r.output))
		}

		downloader, err := ytdlp.NewClient(r.config.Tools.YtDlp, r.logger, opts...)
		if err != nil {
			return err
		}
		r.downloader = downloader
	}

	if r.registrar == nil {
		r.registrar = quodlibet.NewClient(r.config.Tools.QuodLibet, r.logger,
			quodlibet.WithRefreshDelay(time.Duration(r.config.QuodLibet.RefreshDelaySeconds)*time.Second),
			quodlibet.WithOutput(r.output),
		)
	}

	return nil
}

// openHistory opens the configured history database and wraps it in a
// recorder. Callers own the returned handle.
func (r *Runner) openHistory() (*sql.DB, tasks.HistoryRecorder, error) {
	path := shared.ExpandHome(r.config.Database.Path)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewHistoryAdapter(repositories.NewDownloadRepository(db)), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
