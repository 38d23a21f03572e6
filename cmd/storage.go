package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/newsdesk/newsdesk/internal/fetchcache"
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/weather"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached responses",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			count, err := e.store.Stats()
			if err != nil {
				return fmt.Errorf("reading stats: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Store: %s\n", storeLabel(e))
			fmt.Fprintf(w, "Entries: %d\n", count)
			printAges(w, e.cache.Age, cacheKeys(e.cache))
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached news and weather; preferences are kept",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache keys.\n", clearCache(e.cache))
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}

func storeLabel(e *env) string {
	switch {
	case flagEphemeral || e.cfg.Store.Driver == "memory":
		return "memory"
	case e.cfg.Store.Driver == "redis":
		return "redis " + e.cfg.Store.RedisAddr
	}
	return "sqlite " + e.cfg.StorePath()
}

// cachePrefixes covers every key the fetch cache writes: any city typed on
// the command line as well as saved ones.
var cachePrefixes = []string{
	news.KeyBreaking,
	news.KeyTopStoriesPrefix,
	weather.KeyCurrentPrefix,
	weather.KeyForecastPrefix,
}

func cacheKeys(c *fetchcache.Cache) []string {
	var keys []string
	for _, p := range cachePrefixes {
		keys = append(keys, c.Keys(p)...)
	}
	return keys
}

func clearCache(c *fetchcache.Cache) int {
	n := 0
	for _, p := range cachePrefixes {
		n += c.InvalidatePrefix(p)
	}
	return n
}

func printAges(w io.Writer, age func(string) (time.Duration, bool), keys []string) {
	for _, k := range keys {
		if d, ok := age(k); ok {
			fmt.Fprintf(w, "  %-40s %s old\n", k, d.Truncate(time.Second))
		}
	}
}
