// Package scan discovers git repositories below a directory, probes them in
// parallel and aggregates the outcome into an ordered report.
package scan

import (
	"context"

	"github.com/iamkaf/dirty/pkg/discovery"
	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
	"github.com/iamkaf/dirty/pkg/git"
)

// RepoStatus is the classification of one repository. Exactly one of the
// following holds: Err is nil and the classification fields are meaningful,
// or Err is set and they are zero.
type RepoStatus struct {
	Path      string // Absolute repository root
	RelPath   string // Relative to the scan root
	Bare      bool
	Dirty     bool
	LocalOnly bool
	Ahead     *int // Commits ahead of upstream, only when requested
	Err       *dirtyerrors.ProbeError
}

// Classified reports whether the repository was inspected successfully.
func (s RepoStatus) Classified() bool {
	return s.Err == nil
}

// Unpushed reports whether HEAD is known to be ahead of its upstream.
func (s RepoStatus) Unpushed() bool {
	return s.Classified() && s.Ahead != nil && *s.Ahead > 0
}

// Result pairs a status with the order in which its candidate was discovered.
type Result struct {
	Index  int
	Status RepoStatus
}

// ProbeFunc classifies one candidate. It must not panic or block past ctx;
// failures are returned as data on the status.
type ProbeFunc func(ctx context.Context, c discovery.Candidate) RepoStatus

// Prober is satisfied by *git.Prober.
type Prober interface {
	Probe(ctx context.Context, path string) (*git.Classification, error)
}

// ProbeWith adapts a Prober into a ProbeFunc that never returns an error.
func ProbeWith(p Prober) ProbeFunc {
	return func(ctx context.Context, c discovery.Candidate) RepoStatus {
		cl, err := p.Probe(ctx, c.Path)
		if err != nil {
			return failed(c, err)
		}
		return classified(c, cl)
	}
}

func classified(c discovery.Candidate, cl *git.Classification) RepoStatus {
	return RepoStatus{
		Path:      c.Path,
		RelPath:   c.RelPath,
		Bare:      cl.Bare,
		Dirty:     cl.Dirty,
		LocalOnly: cl.LocalOnly,
		Ahead:     cl.Ahead,
	}
}

func failed(c discovery.Candidate, err error) RepoStatus {
	var probeErr *dirtyerrors.ProbeError
	if !dirtyerrors.As(err, &probeErr) {
		probeErr = dirtyerrors.NewProbeErrorWithCause(dirtyerrors.ProbeInternal, c.Path, err.Error(), err)
	}
	return RepoStatus{
		Path:    c.Path,
		RelPath: c.RelPath,
		Err:     probeErr,
	}
}
