package scan

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iamkaf/dirty/pkg/discovery"
	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
)

// DispatchOptions bound the parallel probing of candidates.
type DispatchOptions struct {
	Workers      int           // Concurrent probes; <= 0 means GOMAXPROCS
	ProbeTimeout time.Duration // Per-repository limit; 0 disables it
}

// Dispatch probes every candidate concurrently and returns one result per
// candidate, tagged with its discovery index. Candidates are pulled from the
// sequence as workers free up, so walking and probing overlap.
//
// A failing, slow or panicking probe only affects its own result. Once ctx is
// done no further candidates are pulled.
func Dispatch(ctx context.Context, candidates iter.Seq[discovery.Candidate], probe ProbeFunc, opts DispatchOptions) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Not errgroup.WithContext: one failure must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(workers)

	var slots []*Result
	for c := range candidates {
		if ctx.Err() != nil {
			break
		}

		slot := &Result{Index: len(slots)}
		slots = append(slots, slot)

		g.Go(func() error {
			slot.Status = runProbe(ctx, c, probe, opts.ProbeTimeout)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]Result, len(slots))
	for i, slot := range slots {
		results[i] = *slot
	}
	return results
}

func runProbe(ctx context.Context, c discovery.Candidate, probe ProbeFunc, timeout time.Duration) (status RepoStatus) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			status = failed(c, dirtyerrors.NewProbeError(dirtyerrors.ProbeInternal, c.Path, fmt.Sprintf("probe panicked: %v", r)))
		}
	}()

	return probe(ctx, c)
}
