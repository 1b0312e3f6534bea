package git

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// waitDelay bounds how long Output waits for pipes to close after the
// context kills the process. A hook or credential helper spawned by git can
// inherit stdout and outlive it.
const waitDelay = time.Second

// CommandRunner executes external commands. It exists so probes can be unit
// tested without a git binary.
type CommandRunner interface {
	// Output executes the command in dir and returns its standard output.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// RealCommandRunner runs commands with os/exec.
type RealCommandRunner struct {
	Logger *slog.Logger
}

// Output implements CommandRunner. A failing command's error includes its
// trimmed stderr so callers can classify the failure.
func (r *RealCommandRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if r.Logger != nil {
		r.Logger.Debug("exec", "dir", dir, "cmd", name, "args", strings.Join(args, " "))
	}

	// #nosec G204 - name is always "git", args are built by this package
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	// Stable English messages for classification, no prompts, no lock files.
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0", "GIT_OPTIONAL_LOCKS=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, errors.Wrapf(err, "%s %s", name, firstArg(args))
		}
		return nil, errors.Wrapf(err, "%s %s: %s", name, firstArg(args), msg)
	}

	return stdout.Bytes(), nil
}

// firstArg returns the subcommand for error messages, skipping global options.
func firstArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
