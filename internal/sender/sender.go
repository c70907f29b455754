// Package sender provides the external message sender implementations used
// by the delivery worker.
package sender

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Script sends a message by invoking the configured osascript with the
// recipient and body as arguments.
type Script struct {
	Source  string        // AppleScript source passed to osascript
	Timeout time.Duration // per-send deadline
}

func NewScript(source string, timeout time.Duration) *Script {
	return &Script{Source: source, Timeout: timeout}
}

// defaultSendScript targets the Messages app buddy matching the recipient.
const defaultSendScript = `
on run {targetBuddy, targetMessage}
    tell application "Messages"
        set targetService to 1st account whose service type = iMessage
        set theBuddy to participant targetBuddy of targetService
        send targetMessage to theBuddy
    end tell
end run
`

// execCommand is a seam for tests; production code always runs osascript.
var execCommand = exec.CommandContext

func (s *Script) Send(ctx context.Context, recipient, body string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	src := s.Source
	if src == "" {
		src = defaultSendScript
	}
	cmd := execCommand(ctx, "osascript", "-e", src, recipient, body)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("send timed out after %s", s.Timeout)
		}
		return fmt.Errorf("send script failed: %w (output: %s)", err, truncate(string(out), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
