package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tildesmith/inkwell/internal/types"
)

// ProcessBatch runs the requests with bounded concurrency and per-item
// isolation. Results come back in input order; each slot carries either a
// response or that item's error, and a partly failed batch is not itself an
// error. Cancelling ctx stops admitting new items; items already running
// finish on a detached context.
func (p *Pipeline) ProcessBatch(ctx context.Context, reqs []*types.Request) ([]types.BatchItem, error) {
	return p.ProcessBatchN(ctx, reqs, 0)
}

// ProcessBatchN is ProcessBatch with a per-call concurrency override.
// A limit of zero or less falls back to the configured maximum.
func (p *Pipeline) ProcessBatchN(ctx context.Context, reqs []*types.Request, limit int64) ([]types.BatchItem, error) {
	if p.closed.Load() {
		return nil, types.ErrClosed
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	if limit <= 0 {
		limit = p.batchLimit
	}
	if limit <= 0 {
		limit = 1
	}

	sem := semaphore.NewWeighted(limit)
	results := make([]types.BatchItem, len(reqs))

	// Items admitted before cancellation run to completion on a context
	// detached from the batch's; only admission observes ctx.
	execCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, req := range reqs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = types.BatchItem{Index: i, Err: err}
			for j := i + 1; j < len(reqs); j++ {
				results[j] = types.BatchItem{Index: j, Err: ctx.Err()}
			}
			break
		}

		wg.Add(1)
		go func(i int, req *types.Request) {
			defer wg.Done()
			defer sem.Release(1)

			resp, err := p.Process(execCtx, req)
			results[i] = types.BatchItem{Index: i, Response: resp, Err: err}
		}(i, req)
	}

	wg.Wait()
	return results, nil
}
