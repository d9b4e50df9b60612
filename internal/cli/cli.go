package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/buildinfo"
	"github.com/matzehuels/imgfilter/pkg/cache"
	"github.com/matzehuels/imgfilter/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "imgfilter"

	// envRedisURL selects the Redis cache when --redis-url is not given.
	envRedisURL = "IMGFILTER_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command itself accepts the classic form
//
//	imgfilter [flags] <input> <output> [-filter [params...]]...
//
// Flag parsing stops at the first positional argument, so filter tokens
// such as "-gs" are never mistaken for flags. Flags go before the paths.
func (c *CLI) RootCommand() *cobra.Command {
	var ro runOpts

	root := &cobra.Command{
		Use:   "imgfilter <input.bmp> <output.bmp> [-filter [params...]]...",
		Short: "imgfilter applies pixel filters to 24-bit BMP images",
		Long: `imgfilter applies a chain of pixel filters to a 24-bit BMP image.

Filters run in the order given, each on the result of the previous one:

  imgfilter in.bmp out.bmp -crop 800 600 -gs -blur 1.5

Run without arguments to list the available filters.`,
		Example: `  imgfilter photo.bmp out.bmp -sharp -edge 0.2
  imgfilter --seed 7 photo.bmp out.bmp -crystal 12
  imgfilter --recipe poster.toml photo.bmp out.bmp`,
		Version:           buildinfo.Version,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completeChainArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoot(cmd, args, &ro)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.Flags().SetInterspersed(false)
	ro.register(root)

	root.AddCommand(c.applyCommand())
	root.AddCommand(c.filtersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A non-empty namespace
// prefixes every cache key so several services can share one Redis.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisURL, namespace string) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache, redisURL)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyerFor(namespace), c.Logger), nil
}

// keyerFor returns the result keyer for a cache namespace.
func keyerFor(namespace string) cache.Keyer {
	if namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, namespacePrefix(namespace))
}

func namespacePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + ":"
}

// newCache picks the cache backend: none, Redis when a URL is configured,
// otherwise the XDG file cache. A missing home directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL == "" {
		redisURL = os.Getenv(envRedisURL)
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}

	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/imgfilter/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
