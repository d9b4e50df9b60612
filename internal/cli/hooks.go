package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imgfilter/pkg/observability"
)

// RegisterDebugHooks routes cache and server events to the debug log.
// main calls it when --verbose is set.
func (c *CLI) RegisterDebugHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}

// logHooks logs cache and server events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

// filterProgress shows the running filter in the spinner.
type filterProgress struct {
	observability.NoopPipelineHooks
	spinner *Spinner
	total   int
	n       int // filters started so far; the pipeline runs them sequentially
}

func (p *filterProgress) OnFilterStart(_ context.Context, name string, width, height int) {
	p.n++
	p.spinner.SetMessage(fmt.Sprintf("Applying %s to %dx%d (%d/%d)...", name, width, height, p.n, p.total))
}

// withFilterProgress installs p as the pipeline hooks until the returned
// function is called.
func withFilterProgress(p *filterProgress) (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(p)
	return func() { observability.SetPipelineHooks(prev) }
}
