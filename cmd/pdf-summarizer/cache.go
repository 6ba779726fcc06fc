// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/cache"
	"github.com/pdiddy/pdf-summarizer/internal/pipeline"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
	Long: `The response cache stores model responses so re-running summarize on an
unchanged folder does not call the API again. By default it lives in
<folder>/output/.cache/responses.db.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [folder]",
	Short: "Show what the response cache holds",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [folder]",
	Short: "Delete every cached response",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	for _, c := range []*cobra.Command{cacheStatsCmd, cacheClearCmd} {
		c.Flags().String("output-dir", "", "output directory (default: <folder>/output)")
		c.Flags().String("cache-path", "", "response cache file (default: <output>/.cache/responses.db)")
		cacheCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the cache of the folder argument, or of the working
// directory when there is none.
func openCache(cmd *cobra.Command, args []string) (*cache.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path := cfg.Cache.Path
	if path == "" {
		folder := "."
		if len(args) > 0 {
			folder = args[0]
		}
		path = cache.DefaultPath(pipeline.OutputDir(folder, cfg.Output))
	}
	return cache.Open(path)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd, args)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cache: %s\n", store.Path())
	fmt.Fprintf(out, "  entries: %d\n", st.Entries)
	fmt.Fprintf(out, "  hits:    %d\n", st.Hits)
	fmt.Fprintf(out, "  size:    %.1f KB\n", float64(st.Bytes)/1024)
	if st.Entries == 0 {
		return nil
	}
	fmt.Fprintf(out, "  oldest:  %s\n", st.Oldest.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  newest:  %s\n", st.Newest.Local().Format(time.DateTime))

	kinds := make([]string, 0, len(st.ByKind))
	for k := range st.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "  %-18s %d\n", k+":", st.ByKind[k])
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd, args)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached response(s) from %s\n", n, store.Path())
	return nil
}
