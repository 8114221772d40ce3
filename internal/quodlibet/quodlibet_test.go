package quodlibet

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ytaudio/internal/shared"
)

// scriptedExecutor answers each binary with a scripted error.
type scriptedExecutor struct {
	calls       [][]string
	lookPathErr error
	pgrepErr    error
	cmdErr      error
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string), errOut io.Writer) error {
	s.calls = append(s.calls, append([]string{binary}, args...))
	return s.cmdErr
}

func (s *scriptedExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.calls = append(s.calls, append([]string{binary}, args...))
	if binary == "pgrep" {
		return nil, s.pgrepErr
	}
	return nil, s.cmdErr
}

func (s *scriptedExecutor) LookPath(binary string) (string, error) {
	if s.lookPathErr != nil {
		return "", s.lookPathErr
	}
	return "/usr/bin/" + binary, nil
}

func noSleep(c *Client) { c.sleep = func(context.Context, time.Duration) error { return nil } }

func TestRegister(t *testing.T) {
	t.Run("binary missing is a quiet no-op", func(t *testing.T) {
		exec := &scriptedExecutor{lookPathErr: errors.New("not found")}
		client := NewClient("quodlibet", nil, WithExecutor(exec))

		if err := client.Register(context.Background(), "/music/Band/Album"); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(exec.calls) != 0 {
			t.Errorf("expected no invocations, got %v", exec.calls)
		}
	})

	t.Run("player not running prints manual commands", func(t *testing.T) {
		var out bytes.Buffer
		exec := &scriptedExecutor{pgrepErr: errors.New("exit status 1")}
		client := NewClient("quodlibet", nil, WithExecutor(exec), WithOutput(&out))

		if err := client.Register(context.Background(), "/music/Band/Album"); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}

		msg := out.String()
		if !strings.Contains(msg, "--add-location=/music/Band/Album") {
			t.Errorf("expected manual add-location hint, got %q", msg)
		}
		if !strings.Contains(msg, "--refresh") {
			t.Errorf("expected manual refresh hint, got %q", msg)
		}
	})

	t.Run("player running adds then refreshes", func(t *testing.T) {
		exec := &scriptedExecutor{}
		client := NewClient("quodlibet", nil, WithExecutor(exec))
		noSleep(client)

		if err := client.Register(context.Background(), "/music/Band/Album"); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}

		var got []string
		for _, call := range exec.calls {
			got = append(got, strings.Join(call, " "))
		}
		want := []string{
			"pgrep -x quodlibet",
			"quodlibet --add-location=/music/Band/Album",
			"quodlibet --refresh",
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d invocations, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("invocation %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("add-location failure wraps ErrRegistrationFailed", func(t *testing.T) {
		exec := &scriptedExecutor{cmdErr: errors.New("exit status 1")}
		client := NewClient("quodlibet", nil, WithExecutor(exec))
		noSleep(client)

		err := client.Register(context.Background(), "/music/Band/Album")
		if !errors.Is(err, shared.ErrRegistrationFailed) {
			t.Errorf("expected ErrRegistrationFailed, got %v", err)
		}
	})

	t.Run("pgrep matches base name of binary path", func(t *testing.T) {
		exec := &scriptedExecutor{}
		client := NewClient("/opt/bin/quodlibet", nil, WithExecutor(exec))
		noSleep(client)

		if err := client.Register(context.Background(), "/music/a"); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		first := strings.Join(exec.calls[0], " ")
		if first != "pgrep -x quodlibet" {
			t.Errorf("expected pgrep on base name, got %q", first)
		}
	})
}
