package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rasterloc/rasterloc/internal/pipeline"
)

// Failure records one asset that could not be processed.
type Failure struct {
	Asset string `json:"asset"`
	Error string `json:"error"`
}

// Result summarizes a batch run. Results and Failures cover disjoint assets;
// Results keeps discovery order.
type Result struct {
	Results  []pipeline.Result `json:"results"`
	Failures []Failure         `json:"failures,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
	Workers  int               `json:"workers"`
}

// Run discovers assets and localizes them with cfg.Workers parallel
// pipelines built from builder. Per-asset failures are collected; only
// discovery and pipeline construction are fatal.
func Run(ctx context.Context, builder *pipeline.Builder, args []string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	files, err := discoverAssets(args, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover assets: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no localizable assets found")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	locs := make([]*pipeline.Localizer, 0, workers)
	defer func() {
		for _, loc := range locs {
			_ = loc.Close()
		}
	}()
	for w := 0; w < workers; w++ {
		loc, err := builder.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build pipeline: %w", err)
		}
		locs = append(locs, loc)
	}

	type slot struct {
		res *pipeline.Result
		err error
	}
	slots := make([]slot, len(files))
	jobs := make(chan int)

	start := time.Now()
	var wg sync.WaitGroup
	for _, loc := range locs {
		wg.Add(1)
		go func(loc *pipeline.Localizer) {
			defer wg.Done()
			for i := range jobs {
				res, err := loc.ProcessAsset(ctx, files[i])
				slots[i] = slot{res: res, err: err}
			}
		}(loc)
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	out := &Result{Duration: time.Since(start), Workers: workers}
	for i, s := range slots {
		switch {
		case s.err != nil:
			out.Failures = append(out.Failures, Failure{Asset: files[i], Error: s.err.Error()})
		case s.res != nil:
			out.Results = append(out.Results, *s.res)
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
