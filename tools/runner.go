// Package tools wraps the external command-line tools the pipeline sequences.
// Every non-trivial operation (hub download, format export, bucket sync) is
// delegated to a pre-built CLI; this package is the single seam through which
// those processes are spawned, so higher layers stay testable without them.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// stderrExcerptLimit caps how much captured stderr is carried into error
// values and the run summary.
const stderrExcerptLimit = 2048

// Result holds the outcome of a completed external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// StderrExcerpt returns the tail of the captured stderr, trimmed for error
// reporting.
func (r Result) StderrExcerpt() string {
	s := strings.TrimSpace(r.Stderr)
	if len(s) > stderrExcerptLimit {
		s = "..." + s[len(s)-stderrExcerptLimit:]
	}
	return s
}

// Runner executes external commands. Implementations must return an error
// only when the command could not be run at all (not found, context
// canceled); a non-zero exit status is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands as real subprocesses with captured output. The
// child inherits the parent environment so hub and cloud credentials reach
// the external tools.
type ExecRunner struct {
	logger *log.Logger
}

// NewExecRunner creates an ExecRunner that logs each invocation.
func NewExecRunner(logger *log.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes the command, blocking until it exits or ctx is canceled.
// Cancellation kills the child process.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	r.logger.Debug("running command", "cmd", name, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("command %s interrupted: %w", name, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.Debug("command exited non-zero", "cmd", name, "exit_code", res.ExitCode)
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	return res, nil
}

// CommandString renders a command line the way it is recorded in the
// registry, for reproducing a conversion by hand.
func CommandString(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
