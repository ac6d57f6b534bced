// Package worker provides bounded-concurrency source loading. Sources
// are read-only after parse and their identity maps are independent
// until the merge, so one worker per source file is safe. The merge
// itself is never run here.
package worker

import (
	"context"
	"sync"

	"github.com/pmezentsev/mergebook/internal/model"
)

// LoadJob identifies one source file to load
type LoadJob struct {
	Index    int // position in the configured source order
	SourceID string
	Path     string
}

// LoadResult is the outcome of one load job
type LoadResult struct {
	Job    LoadJob
	Source *model.Source
	Err    error
}

// LoadFunc loads one source file
type LoadFunc func(ctx context.Context, job LoadJob) (*model.Source, error)

// Pool runs load jobs with bounded concurrency
type Pool struct {
	workers int
	load    LoadFunc
}

// NewPool creates a pool with the given worker count
func NewPool(workers int, load LoadFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers, load: load}
}

// Run executes all jobs and returns results indexed by job order, so
// the caller gets sources back in the configured source order
// regardless of which worker finished first.
func (p *Pool) Run(ctx context.Context, jobs []LoadJob) []LoadResult {
	results := make([]LoadResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	semaphore := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, j LoadJob) {
			defer wg.Done()

			// Check the context before racing it against the semaphore:
			// select picks randomly when both cases are ready.
			if err := ctx.Err(); err != nil {
				results[idx] = LoadResult{Job: j, Err: err}
				return
			}

			select {
			case <-ctx.Done():
				results[idx] = LoadResult{Job: j, Err: ctx.Err()}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				results[idx] = LoadResult{Job: j, Err: err}
				return
			}

			src, err := p.load(ctx, j)
			results[idx] = LoadResult{Job: j, Source: src, Err: err}
		}(i, job)
	}

	wg.Wait()
	return results
}
