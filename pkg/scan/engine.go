package scan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iamkaf/dirty/pkg/discovery"
	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
	"github.com/iamkaf/dirty/pkg/git"
)

// Options configure a scan.
type Options struct {
	Depth        int
	Workers      int
	ProbeTimeout time.Duration
	Exclusions   []string
	Filters      Filters
}

// Engine orchestrates discovery, probing and aggregation for a scan. It keeps
// no state between runs.
type Engine struct {
	Options Options
	Logger  *slog.Logger

	probe    ProbeFunc
	lookPath func(string) (string, error)
}

// NewEngine creates an engine that probes repositories with the git binary.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		Options:  opts,
		Logger:   logger,
		lookPath: exec.LookPath,
	}
}

// NewEngineWithProbe creates an engine with a custom probe (for testing)
func NewEngineWithProbe(opts Options, logger *slog.Logger, probe ProbeFunc) *Engine {
	e := NewEngine(opts, logger)
	e.probe = probe
	return e
}

// Run scans root and returns the report. Only problems with root itself, a
// missing git binary or cancellation are returned as errors; per-repository
// failures are recorded in the report.
func (e *Engine) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()

	base, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	probe, err := e.prober()
	if err != nil {
		return nil, err
	}

	walker := discovery.NewWalker(base, e.Options.Depth).Exclude(e.Options.Exclusions...)
	walker.Logger = e.Logger

	e.Logger.Debug("scan started", "root", base, "depth", walker.MaxDepth, "workers", e.Options.Workers)

	results := Dispatch(ctx, walker.Walk(), probe, DispatchOptions{
		Workers:      e.Options.Workers,
		ProbeTimeout: e.Options.ProbeTimeout,
	})
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scan interrupted")
	}

	report := Aggregate(base, results, e.Options.Filters)

	for _, f := range report.Failures() {
		e.Logger.Warn("repository could not be inspected",
			"path", f.RelPath, "kind", string(f.Err.Kind), "error", f.Err.Message)
	}

	e.Logger.Debug("scan finished",
		"repos", report.Summary.Total,
		"failed", report.Summary.Failed,
		"shown", report.Summary.Shown,
		"duration", time.Since(start))

	return report, nil
}

func (e *Engine) prober() (ProbeFunc, error) {
	if e.probe != nil {
		return e.probe, nil
	}
	if _, err := e.lookPath("git"); err != nil {
		return nil, dirtyerrors.NewScanErrorWithCause("", "git not found in PATH", err)
	}
	runner := &git.RealCommandRunner{Logger: e.Logger}
	return ProbeWith(git.NewProber(runner, e.Options.Filters.Unpushed)), nil
}

// ResolveRoot returns the canonical absolute form of root, or a ScanError if
// it does not exist, is not a directory or cannot be read.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", dirtyerrors.NewScanErrorWithCause(root, "invalid path", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", dirtyerrors.NewScanErrorWithCause(root, describe(err), err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", dirtyerrors.NewScanErrorWithCause(root, describe(err), err)
	}
	if !info.IsDir() {
		return "", dirtyerrors.NewScanError(root, "not a directory")
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", dirtyerrors.NewScanErrorWithCause(root, describe(err), err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", dirtyerrors.NewScanErrorWithCause(root, describe(err), err)
	}

	return resolved, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "no such file or directory"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	default:
		return err.Error()
	}
}
