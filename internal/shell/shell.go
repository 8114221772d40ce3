// Package shell abstracts subprocess execution behind the [Executor]
// interface so pipeline stages can be tested without the external binaries.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Executor runs external commands. The concrete implementation shells out;
// tests substitute doubles.
type Executor interface {
	// Run executes binary with args, streaming each stdout line to onLine
	// when it is non-nil. Stderr is forwarded to errOut when non-nil,
	// discarded otherwise. Returns an error on non-zero exit.
	Run(ctx context.Context, binary string, args []string, onLine func(string), errOut io.Writer) error

	// Output executes binary with args and returns captured stdout.
	Output(ctx context.Context, binary string, args []string) ([]byte, error)

	// LookPath reports whether binary can be found in PATH (or is a valid
	// absolute path) and returns its resolved location.
	LookPath(binary string) (string, error)
}

// NewExecutor returns the os/exec backed [Executor].
func NewExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string), errOut io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if errOut != nil {
		cmd.Stderr = errOut
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var wg sync.WaitGroup
	var scanErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		scanErr = scanner.Err()
	}()

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", binary, err)
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", binary, scanErr)
	}
	return nil
}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", binary, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	return stdout.Bytes(), nil
}

func (commandExecutor) LookPath(binary string) (string, error) {
	return exec.LookPath(binary)
}
