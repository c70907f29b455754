// Package stream reads discrete text lines from a continuously running
// external process. A stream is restartable only by re-acquiring it from
// scratch; there are no seek or resume semantics.
package stream

import (
	"bufio"
	"context"
	"os/exec"
)

// Source yields a lazy, unbounded sequence of lines. The returned channel is
// closed when the underlying stream ends.
type Source interface {
	Lines(ctx context.Context) (<-chan string, error)
}

// Command streams the stdout of a shell command line by line.
type Command struct {
	Shell   string // defaults to "sh"
	Command string
}

func NewCommand(command string) *Command {
	return &Command{Shell: "sh", Command: command}
}

// Lines starts the process and returns a channel of its stdout lines. The
// channel closes when the process exits or closes its output; cancelling the
// context kills the process.
func (c *Command) Lines(ctx context.Context) (<-chan string, error) {
	shell := c.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", c.Command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		defer func() { _ = cmd.Wait() }()

		sc := bufio.NewScanner(stdout)
		// Unified log lines can be long; raise the scanner's line cap.
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
