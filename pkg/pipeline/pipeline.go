// Package pipeline runs filter chains over bitmap files.
//
// This package implements the complete decode → filter → encode pipeline that
// is shared by the command line and the HTTP API, so both entry points
// validate, cache and log in the same way.
//
// # Stages
//
//  1. Decode: read and check a 24-bit BMP into a [grid.Grid]
//  2. Filter: apply each step of the chain in order, mutating the grid
//  3. Encode: serialize the final grid
//
// Nothing is written to the output path unless every stage succeeds.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "in.bmp",
//	    Output: "out.bmp",
//	    Steps:  []chain.Step{{Name: "gs"}, {Name: "blur", Params: []string{"2"}}},
//	})
//
// Run in memory (as the HTTP API does):
//
//	result, err := runner.Process(ctx, bmpBytes, opts)
//	out := result.Output
//
// # Caching
//
// When every filter in the chain is deterministic, the encoded output is
// cached under a key derived from the input's content hash, the canonical
// chain and the seed. Crystallize only counts as deterministic when a seed
// is given.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imgfilter/pkg/chain"
	"github.com/matzehuels/imgfilter/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxInputBytes bounds the bitmap size accepted by Process.
	DefaultMaxInputBytes = 256 << 20

	// DefaultMaxSteps bounds the chain length.
	DefaultMaxSteps = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. Input and Output are only required
// by Execute; Process works on bytes.
type Options struct {
	Input   string       `json:"input,omitempty"`
	Output  string       `json:"output,omitempty"`
	Steps   []chain.Step `json:"steps"`
	Seed    *uint64      `json:"seed,omitempty"`
	Refresh bool         `json:"refresh,omitempty"` // skip cache reads, still write

	MaxInputBytes int `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and HTTP responses.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Width and Height are the output dimensions.
	Width, Height int

	// Output is the encoded bitmap.
	Output []byte

	// CacheHit is true when Output came from the cache.
	CacheHit bool

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputBytes  int
	OutputBytes int
	DecodeTime  time.Duration
	FilterTime  time.Duration
	EncodeTime  time.Duration
	Filters     []FilterStat
}

// FilterStat records one applied step.
type FilterStat struct {
	Name     string
	Duration time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks paths (when set) and the chain, and fills
// in defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input != "" || o.Output != "" {
		if err := errors.ValidateInputOutput(o.Input, o.Output); err != nil {
			return err
		}
	}
	if err := o.ValidateSteps(); err != nil {
		return err
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// ValidateSteps checks the chain length and every step.
func (o *Options) ValidateSteps() error {
	if len(o.Steps) > DefaultMaxSteps {
		return errors.New(errors.ErrCodeInvalidInput, "too many filters (%d, max %d)", len(o.Steps), DefaultMaxSteps)
	}
	return chain.Validate(o.Steps)
}

// SetDefaults fills in zero-valued limits and the logger.
func (o *Options) SetDefaults() {
	if o.MaxInputBytes == 0 {
		o.MaxInputBytes = DefaultMaxInputBytes
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ChainKey returns the canonical chain string used in cache keys.
func (o *Options) ChainKey() string {
	return chain.Key(o.Steps)
}
