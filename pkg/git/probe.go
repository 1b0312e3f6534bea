package git

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
)

// Classification is the outcome of inspecting one repository.
type Classification struct {
	Bare      bool // Repository has no working tree
	Dirty     bool // Modified, staged or untracked (not ignored) files exist
	LocalOnly bool // No remotes are configured
	Ahead     *int // Commits ahead of upstream; nil unless requested and resolvable
}

// Prober inspects repositories with the git CLI. It never writes to the
// repository: optional locks are disabled and no command mutates state.
type Prober struct {
	runner   CommandRunner
	unpushed bool
}

// NewProber creates a Prober backed by the real git binary.
// When unpushed is set, Probe also resolves how far HEAD is ahead of its upstream.
func NewProber(runner *RealCommandRunner, unpushed bool) *Prober {
	if runner == nil {
		runner = &RealCommandRunner{}
	}
	return &Prober{runner: runner, unpushed: unpushed}
}

// NewProberWithRunner creates a Prober with a custom CommandRunner (for testing)
func NewProberWithRunner(runner CommandRunner, unpushed bool) *Prober {
	return &Prober{runner: runner, unpushed: unpushed}
}

// Probe classifies the repository rooted at path. Every failure is returned as
// a *errors.ProbeError.
func (p *Prober) Probe(ctx context.Context, path string) (*Classification, error) {
	c := &Classification{Bare: !hasMetadataEntry(path)}

	if _, err := p.git(ctx, path, c.Bare, "rev-parse", "--is-bare-repository"); err != nil {
		return nil, p.probeError(ctx, path, "cannot open repository", err)
	}

	// A bare repository has no working tree and is never dirty.
	if !c.Bare {
		status, err := p.git(ctx, path, false,
			"status", "--porcelain=v1", "--untracked-files=normal", "--ignore-submodules=all")
		if err != nil {
			return nil, p.probeError(ctx, path, "cannot read working tree status", err)
		}
		c.Dirty = len(bytes.TrimSpace(status)) > 0
	}

	remotes, err := p.git(ctx, path, c.Bare, "remote")
	if err != nil {
		return nil, p.probeError(ctx, path, "cannot read remote configuration", err)
	}
	c.LocalOnly = len(bytes.TrimSpace(remotes)) == 0

	if p.unpushed {
		ahead, err := p.aheadOfUpstream(ctx, path, c.Bare)
		if err != nil {
			return nil, p.probeError(ctx, path, "cannot resolve upstream", err)
		}
		c.Ahead = ahead
	}

	return c, nil
}

// aheadOfUpstream counts commits reachable from HEAD but not from its upstream.
// Detached HEAD, unborn branches and missing upstreams yield nil. An error is
// returned only when ctx ended while git was running.
func (p *Prober) aheadOfUpstream(ctx context.Context, path string, bare bool) (*int, error) {
	out, err := p.git(ctx, path, bare, "rev-list", "--count", "@{upstream}..HEAD")
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, nil
	}
	return &n, nil
}

// git runs a git subcommand against exactly the repository at path. The git
// directory is passed explicitly so git never discovers an enclosing
// repository when the metadata at path is broken.
func (p *Prober) git(ctx context.Context, path string, bare bool, args ...string) ([]byte, error) {
	global := []string{"--no-optional-locks"}
	if bare {
		global = append(global, "--git-dir="+path)
	} else {
		global = append(global, "--git-dir="+filepath.Join(path, MetadataDir), "--work-tree="+path)
	}
	return p.runner.Output(ctx, path, "git", append(global, args...)...)
}

// probeError converts a command failure into a typed ProbeError.
func (p *Prober) probeError(ctx context.Context, path, message string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return dirtyerrors.NewProbeErrorWithCause(dirtyerrors.ProbeTimeout, path, "inspection timed out", err)
	case errors.Is(ctx.Err(), context.Canceled):
		return dirtyerrors.NewProbeErrorWithCause(dirtyerrors.ProbeCancelled, path, "inspection cancelled", err)
	case isPermissionFailure(err):
		return dirtyerrors.NewProbeErrorWithCause(dirtyerrors.ProbePermission, path, message+": permission denied", err)
	default:
		return dirtyerrors.NewProbeErrorWithCause(dirtyerrors.ProbeUnreadable, path, message, err)
	}
}

func hasMetadataEntry(path string) bool {
	_, err := os.Lstat(filepath.Join(path, MetadataDir))
	return err == nil
}

func isPermissionFailure(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Permission denied") || strings.Contains(msg, "dubious ownership")
}
