package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/imgfilter/pkg/cache"
	"github.com/matzehuels/imgfilter/pkg/chain"
	"github.com/matzehuels/imgfilter/pkg/codec/bmp"
	"github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/filter"
	"github.com/matzehuels/imgfilter/pkg/grid"
	"github.com/matzehuels/imgfilter/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and logging behave the same.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute reads opts.Input, runs the chain and writes opts.Output. The
// output file is only created once encoding has succeeded.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "input and output files are required")
	}

	input, err := os.ReadFile(filepath.Clean(opts.Input))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "input file %s not found", opts.Input)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Input)
	}

	result, err := r.Process(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	if err := writeFile(opts.Output, result.Output); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.Output)
	}
	return result, nil
}

// Process runs the chain over an in-memory bitmap and returns the encoded
// result.
func (r *Runner) Process(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(input) > opts.MaxInputBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input is %d bytes, limit is %d", len(input), opts.MaxInputBytes)
	}

	filters, err := chain.Build(opts.Steps, opts.Seed)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(input),
		Stats:     Stats{InputBytes: len(input)},
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	var key string
	cacheable := deterministic(filters)
	if cacheable {
		key = r.Keyer.ResultKey(result.InputHash, opts.ChainKey(), opts.Seed)
		if !opts.Refresh {
			if r.fromCache(ctx, key, result, logger) {
				return result, nil
			}
		}
	}

	// Stage 1: Decode
	start := time.Now()
	g, err := bmp.DecodeBytes(input)
	result.Stats.DecodeTime = time.Since(start)
	var w, h int
	if g != nil {
		w, h = g.Width, g.Height
	}
	observability.Pipeline().OnDecode(ctx, len(input), w, h, result.Stats.DecodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	logger.Debug("decoded input", "width", g.Width, "height", g.Height, "duration", result.Stats.DecodeTime)

	// Stage 2: Filter
	start = time.Now()
	result.Stats.Filters, err = apply(ctx, g, filters, logger)
	result.Stats.FilterTime = time.Since(start)
	if err != nil {
		return nil, err
	}

	// Stage 3: Encode
	start = time.Now()
	out, err := bmp.EncodeBytes(g)
	result.Stats.EncodeTime = time.Since(start)
	observability.Pipeline().OnEncode(ctx, len(out), result.Stats.EncodeTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode output")
	}

	result.Output = out
	result.Width, result.Height = g.Width, g.Height
	result.Stats.OutputBytes = len(out)

	if cacheable {
		if err := r.Cache.Set(ctx, key, out, cache.TTLResult); err != nil {
			logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeResult, len(out))
		}
	}

	logger.Info("filtered image",
		"filters", len(filters),
		"width", result.Width,
		"height", result.Height,
		"duration", result.Stats.DecodeTime+result.Stats.FilterTime+result.Stats.EncodeTime)
	return result, nil
}

// Apply runs filters over g in order. Cancellation is checked between
// filters; a filter that has started always runs to completion.
func (r *Runner) Apply(ctx context.Context, g *grid.Grid, filters []filter.Filter) ([]FilterStat, error) {
	return apply(ctx, g, filters, r.Logger)
}

func apply(ctx context.Context, g *grid.Grid, filters []filter.Filter, logger *log.Logger) ([]FilterStat, error) {
	stats := make([]FilterStat, 0, len(filters))
	for i, f := range filters {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		observability.Pipeline().OnFilterStart(ctx, f.Name(), g.Width, g.Height)
		start := time.Now()
		err := f.Apply(g)
		elapsed := time.Since(start)
		observability.Pipeline().OnFilterComplete(ctx, f.Name(), elapsed, err)
		if err != nil {
			return stats, fmt.Errorf("filter %d (%s): %w", i+1, f.Name(), err)
		}

		stats = append(stats, FilterStat{Name: f.Name(), Duration: elapsed})
		logger.Debug("applied filter", "step", i+1, "filter", f.Name(), "width", g.Width, "height", g.Height, "duration", elapsed)
	}
	return stats, nil
}

// fromCache fills result from a cached entry and reports whether it hit.
func (r *Runner) fromCache(ctx context.Context, key string, result *Result, logger *log.Logger) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeResult)
		return false
	}

	h, err := bmp.ReadHeader(data)
	if err != nil {
		// Unreadable entry: drop it and recompute.
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeResult)
		return false
	}

	observability.Cache().OnCacheHit(ctx, cache.KeyTypeResult)
	result.Output = data
	result.CacheHit = true
	result.Width = int(h.Width)
	result.Height = int(max(h.Height, -h.Height))
	result.Stats.OutputBytes = len(data)
	logger.Debug("cache hit", "key", key)
	return true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func deterministic(filters []filter.Filter) bool {
	for _, f := range filters {
		if !filter.Deterministic(f) {
			return false
		}
	}
	return true
}

// writeFile writes data next to path and renames it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".imgfilter-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
