package topology

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/stigoleg/stayactive/internal/util"
)

// DefaultTimeout bounds every topology subprocess.
const DefaultTimeout = 5 * time.Second

// ErrCommandNotFound is returned when the tool is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs real subprocesses. Standard error is discarded and every
// run is bounded by Timeout.
type ExecRunner struct {
	Timeout time.Duration
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if !util.HasCommand(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrCommandNotFound)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = r.Env
	cmd.Stderr = io.Discard

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %v", name, timeout)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
