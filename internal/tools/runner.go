package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"morph-bang/internal/morph"
)

// DefaultTimeout bounds a single tool invocation when none is configured.
const DefaultTimeout = 10 * time.Minute

// Runner executes external tools with a per-invocation timeout. Tool names are
// resolved through Binaries first, so deployments can pin absolute paths.
type Runner struct {
	timeout  time.Duration
	binaries map[string]string
}

// NewRunner creates a Runner. A non-positive timeout selects DefaultTimeout.
func NewRunner(timeout time.Duration, binaries map[string]string) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout, binaries: binaries}
}

// Binary returns the executable configured for tool.
func (r *Runner) Binary(tool string) string {
	if path, ok := r.binaries[tool]; ok && path != "" {
		return path
	}
	return tool
}

// Run executes tool and discards its stdout.
func (r *Runner) Run(ctx context.Context, tool string, args ...string) error {
	_, err := r.Output(ctx, tool, args...)
	return err
}

// Output executes tool and returns its stdout. A non-zero exit, a start failure
// or a timeout is reported as *morph.ToolError carrying the trimmed stderr.
func (r *Runner) Output(ctx context.Context, tool string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary(tool), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &morph.ToolError{
				Tool:   tool,
				Detail: fmt.Sprintf("timed out after %s", r.timeout),
				Err:    ctx.Err(),
			}
		}
		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if detail == "" && !errors.As(err, &exitErr) {
			detail = err.Error()
		}
		return "", &morph.ToolError{Tool: tool, Detail: detail, Err: err}
	}
	return stdout.String(), nil
}
