package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imgfilter/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the filtered image cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL, namespace string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if redisURL == "" {
				redisURL = os.Getenv(envRedisURL)
			}
			if redisURL != "" {
				return c.clearRedis(ctx, redisURL, namespace)
			}
			return c.clearFiles()
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis cache URL (default $"+envRedisURL+")")
	cmd.Flags().StringVar(&namespace, "namespace", "", "only clear Redis keys of this namespace (as given to serve)")
	return cmd
}

func (c *CLI) clearFiles() error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	count, err := fc.Clear()
	if err != nil {
		return err
	}

	printSuccess("Cleared %d cached entries", count)
	printDetail("Directory: %s", dir)
	return nil
}

func (c *CLI) clearRedis(ctx context.Context, url, namespace string) error {
	rc, err := cache.NewRedisCache(ctx, url)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rc.Close()

	count, err := rc.Clear(ctx, namespacePrefix(namespace)+cache.KeyTypeResult+":")
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached entries", count)
	printDetail("Redis: %s", url)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
