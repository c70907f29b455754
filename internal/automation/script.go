// Package automation wraps the osascript invocations that drive macOS UI
// side effects. Every invocation runs under an explicit timeout so a hung
// script surfaces as a failure instead of stalling the pipeline.
package automation

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes one fire-and-forget automation.
type Runner interface {
	Run(ctx context.Context) error
}

// Script runs an AppleScript source via osascript.
type Script struct {
	Name    string        // action name for diagnostics
	Source  string        // AppleScript source passed to osascript -e
	Timeout time.Duration // per-invocation deadline
}

func NewScript(name, source string, timeout time.Duration) *Script {
	return &Script{Name: name, Source: source, Timeout: timeout}
}

// execCommand is a seam for tests; production code always runs osascript.
var execCommand = exec.CommandContext

// Run executes the script. Exceeding the timeout kills the process and is
// reported as an ordinary failure.
func (s *Script) Run(ctx context.Context) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := execCommand(ctx, "osascript", "-e", s.Source)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s automation timed out after %s", s.Name, s.Timeout)
		}
		return fmt.Errorf("%s automation failed: %w (output: %s)", s.Name, err, trimOutput(out))
	}
	return nil
}

func trimOutput(out []byte) string {
	const max = 200
	s := string(out)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
