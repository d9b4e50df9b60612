package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/buildinfo"
	"github.com/matzehuels/imgfilter/pkg/chain"
	"github.com/matzehuels/imgfilter/pkg/errors"
	"github.com/matzehuels/imgfilter/pkg/observability"
	"github.com/matzehuels/imgfilter/pkg/pipeline"
)

const (
	contentTypeBMP  = "image/bmp"
	contentTypeJSON = "application/json"

	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the serve command flags.
type serveOpts struct {
	addr      string
	noCache   bool
	redisURL  string
	namespace string
	maxBytes  int64
}

// serveCommand creates the serve command, which exposes the pipeline over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filter pipeline over HTTP",
		Long: `Serve the filter pipeline over HTTP.

Endpoints:
  GET  /healthz      liveness and version
  GET  /v1/filters   available filters as JSON
  POST /v1/filter    filter the BMP request body

Filters are given as repeated "f" query parameters in command-line form:

  curl --data-binary @in.bmp -o out.bmp \
    'localhost:8080/v1/filter?f=-crop+640+480&f=-gs&seed=7'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return c.serve(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis cache URL (default $"+envRedisURL+")")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "prefix for cache keys, for sharing one Redis between services")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", pipeline.DefaultMaxInputBytes, "largest accepted request body")
	return cmd
}

func (c *CLI) serve(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache, opts.redisURL, opts.namespace)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:         opts.addr,
		Handler:      newHandler(runner, c.Logger, opts.maxBytes),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printSuccess("Listening on %s", StyleHighlight.Render(opts.addr))
	printKeyValue("Version", buildinfo.Version)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handler
// =============================================================================

type handler struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	maxBytes int64
}

// newHandler builds the API router. maxBytes bounds request bodies.
func newHandler(runner *pipeline.Runner, logger *log.Logger, maxBytes int64) http.Handler {
	if maxBytes <= 0 {
		maxBytes = pipeline.DefaultMaxInputBytes
	}
	h := &handler{runner: runner, logger: logger, maxBytes: maxBytes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.health)
	r.Get("/v1/filters", h.filters)
	r.Post("/v1/filter", h.filter)
	return r
}

// observe reports every request to the server hooks and the log.
func (h *handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.Product())
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		h.logger.Debug("served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request", middleware.GetReqID(r.Context()))
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (h *handler) filters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, filterInfos())
}

// filter runs the chain from the query string over the request body.
func (h *handler) filter(w http.ResponseWriter, r *http.Request) {
	opts, err := requestOptions(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	opts.MaxInputBytes = int(h.maxBytes)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(body) == 0 {
		h.fail(w, errors.New(errors.ErrCodeInvalidInput, "request body must be a BMP image"))
		return
	}

	result, err := h.runner.Process(r.Context(), body, opts)
	if err != nil {
		h.fail(w, err)
		return
	}

	cacheStatus := "MISS"
	if result.CacheHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", contentTypeBMP)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Output)))
	w.Header().Set("X-Run-ID", result.RunID)
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Image-Size", fmt.Sprintf("%dx%d", result.Width, result.Height))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Output)
}

// requestOptions reads the chain, seed and refresh flag from the query.
func requestOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()

	var tokens []string
	for _, f := range q["f"] {
		tokens = append(tokens, strings.Fields(f)...)
	}
	steps, err := chain.Tokenize(tokens)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{Steps: steps}

	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidParameter, "seed must be a non-negative integer, got %q", s)
		}
		opts.Seed = &seed
	}
	if s := q.Get("refresh"); s != "" {
		refresh, err := strconv.ParseBool(s)
		if err != nil {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidParameter, "refresh must be a boolean, got %q", s)
		}
		opts.Refresh = refresh
	}
	return opts, nil
}

// fail writes err as a JSON error with a status derived from its code.
func (h *handler) fail(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	writeError(w, status, code, errors.UserMessage(err))
}

// statusFor maps an error to an HTTP status by its code. Configuration
// errors are the client's fault.
func statusFor(err error) int {
	if errors.IsConfig(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodePrecondition:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
