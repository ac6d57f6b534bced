// Package pipeline orchestrates the complete consolidation run:
// load sources in parallel, merge in order, validate, score.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pmezentsev/mergebook/internal/cache"
	"github.com/pmezentsev/mergebook/internal/loader"
	"github.com/pmezentsev/mergebook/internal/merge"
	"github.com/pmezentsev/mergebook/internal/model"
	"github.com/pmezentsev/mergebook/internal/reader"
	"github.com/pmezentsev/mergebook/internal/score"
	"github.com/pmezentsev/mergebook/internal/validate"
	"github.com/pmezentsev/mergebook/internal/worker"
)

// Pipeline wires the leaf components into one run. It holds no state
// between runs; two concurrent invocations share nothing mutable.
type Pipeline struct {
	loader    *loader.Loader
	merger    *merge.Engine
	validator *validate.Validator
	scorer    *score.Scorer
	store     cache.Cache
	cfg       *model.Config
}

// New creates a pipeline from the given configuration
func New(cfg *model.Config) *Pipeline {
	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	return &Pipeline{
		loader:    loader.New(cfg.Columns),
		merger:    merge.NewEngine(),
		validator: validate.New(),
		scorer:    score.NewScorer(cfg.Scoring),
		store:     store,
		cfg:       cfg,
	}
}

// SkippedSource records a source dropped under the lenient strategy
type SkippedSource struct {
	SourceID string `json:"source_id"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

// RunResult is the complete outcome of one consolidation run, owned by
// the caller.
type RunResult struct {
	Consolidation *model.Consolidation    `json:"consolidation"`
	Report        *model.ValidationReport `json:"report"`
	Skipped       []SkippedSource         `json:"skipped,omitempty"`
}

// Run consolidates the given source files in order. Column detection
// failures follow the configured strategy: strict aborts, lenient skips
// the source and records a warning. A data-loss invariant violation is
// always fatal.
func (p *Pipeline) Run(ctx context.Context, files []string) (*RunResult, error) {
	if len(files) > p.cfg.Sources.MaxAllowed {
		return nil, &model.SourceCountError{Count: len(files), Min: p.cfg.Sources.MinRequired, Max: p.cfg.Sources.MaxAllowed}
	}

	jobs := make([]worker.LoadJob, len(files))
	for i, path := range files {
		jobs[i] = worker.LoadJob{
			Index:    i,
			SourceID: fmt.Sprintf("%s %d", p.cfg.Sources.IDPrefix, i+1),
			Path:     path,
		}
	}

	pool := worker.NewPool(p.cfg.Concurrency.LoadWorkers, p.loadOne)
	results := pool.Run(ctx, jobs)

	var sources []*model.Source
	var skipped []SkippedSource
	for _, res := range results {
		if res.Err == nil {
			sources = append(sources, res.Source)
			continue
		}

		var detectionErr *model.ColumnDetectionError
		if errors.As(res.Err, &detectionErr) && p.cfg.Sources.Strategy == model.StrategyLenient {
			skipped = append(skipped, SkippedSource{
				SourceID: res.Job.SourceID,
				Path:     res.Job.Path,
				Reason:   detectionErr.Error(),
			})
			continue
		}

		return nil, fmt.Errorf("load %s: %w", res.Job.Path, res.Err)
	}

	if len(sources) < p.cfg.Sources.MinRequired {
		return nil, &model.SourceCountError{Count: len(sources), Min: p.cfg.Sources.MinRequired, Max: p.cfg.Sources.MaxAllowed}
	}

	cons, err := p.merger.Merge(sources)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	report := p.validator.Validate(sources, cons)
	for _, skip := range skipped {
		report.AddWarning(model.CheckLoad,
			fmt.Sprintf("%s skipped: %s", skip.SourceID, skip.Reason),
			map[string]interface{}{"source": skip.SourceID, "path": skip.Path})
	}

	result := &RunResult{
		Consolidation: cons,
		Report:        report,
		Skipped:       skipped,
	}

	if report.HasErrors() {
		// The data-loss invariant is the engine's one fatal condition.
		return result, fmt.Errorf("validation: %s", report.Errors[0].Message)
	}

	p.scorer.ScoreAll(cons)
	return result, nil
}

// loadOne loads a single source, going through the parsed-source cache
// when enabled. The cache key is the hash of the file bytes, so any
// edit to an export invalidates its entry.
func (p *Pipeline) loadOne(ctx context.Context, job worker.LoadJob) (*model.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key string
	if p.store != nil {
		data, err := os.ReadFile(job.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		key = cache.Key(data)
		if src, found := cache.GetSource(p.store, key); found && src.ID == job.SourceID {
			return src, nil
		}
	}

	table, err := reader.ReadTable(job.Path)
	if err != nil {
		return nil, err
	}

	src, err := p.loader.Load(job.SourceID, table)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		if err := cache.SetSource(p.store, key, src, 0); err != nil && p.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Warning: cache write failed for %s: %v\n", job.Path, err)
		}
	}

	return src, nil
}
