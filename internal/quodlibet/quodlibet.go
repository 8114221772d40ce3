// Package quodlibet registers downloaded albums with the Quod Libet music
// player so they appear in its library without a manual rescan.
//
// Registration drives the player's own CLI: --add-location to enqueue the
// album directory, then --refresh once the async scan has had time to run.
// The player's database format is never touched directly.
package quodlibet

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"ytaudio/internal/shared"
	"ytaudio/internal/shell"
)

// Registrar is the pipeline's view of the music library integration.
type Registrar interface {
	// Register makes albumDir visible in the library. Implementations must
	// treat failure as non-fatal to the surrounding run.
	Register(ctx context.Context, albumDir string) error
}

// Client implements [Registrar] against the quodlibet CLI.
type Client struct {
	binary       string
	refreshDelay time.Duration
	exec         shell.Executor
	logger       *log.Logger
	output       io.Writer
	sleep        func(ctx context.Context, d time.Duration) error
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

// WithRefreshDelay sets the wait between add-location and refresh.
func WithRefreshDelay(d time.Duration) Option {
	return func(c *Client) { c.refreshDelay = d }
}

// WithOutput sets the writer for user-facing notices (defaults to stdout).
func WithOutput(w io.Writer) Option {
	return func(c *Client) {
		if w != nil {
			c.output = w
		}
	}
}

// NewClient creates a registrar for the given quodlibet binary name or path.
func NewClient(binary string, logger *log.Logger, opts ...Option) *Client {
	if binary == "" {
		binary = "quodlibet"
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	client := &Client{
		binary:       binary,
		refreshDelay: 3 * time.Second,
		exec:         shell.NewExecutor(),
		logger:       logger,
		output:       os.Stdout,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Register adds albumDir to the Quod Libet library. When the player is not
// installed the call is a logged no-op; when it is installed but not
// running, the manual commands are printed instead.
func (c *Client) Register(ctx context.Context, albumDir string) error {
	if _, err := c.exec.LookPath(c.binary); err != nil {
		c.logger.Info("Quod Libet not found in PATH, skipping registration")
		return nil
	}

	if !c.running(ctx) {
		fmt.Fprintf(c.output, "\nQuod Libet is not running. To add the album later, run:\n")
		fmt.Fprintf(c.output, "  %s --add-location=%s\n", c.binary, albumDir)
		fmt.Fprintf(c.output, "  %s --refresh\n", c.binary)
		return nil
	}

	c.logger.Info("registering album with Quod Libet", "dir", albumDir)

	if _, err := c.exec.Output(ctx, c.binary, []string{"--add-location=" + albumDir}); err != nil {
		return fmt.Errorf("%w: add-location: %v", shared.ErrRegistrationFailed, err)
	}

	// Give the async library scan time to pick up the new files before
	// asking for a refresh.
	if err := c.sleep(ctx, c.refreshDelay); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRegistrationFailed, err)
	}

	if _, err := c.exec.Output(ctx, c.binary, []string{"--refresh"}); err != nil {
		return fmt.Errorf("%w: refresh: %v", shared.ErrRegistrationFailed, err)
	}

	c.logger.Info("album registered with Quod Libet")
	return nil
}

// running reports whether a quodlibet process exists, via pgrep.
func (c *Client) running(ctx context.Context) bool {
	name := c.binary
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	_, err := c.exec.Output(ctx, "pgrep", []string{"-x", name})
	return err == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
