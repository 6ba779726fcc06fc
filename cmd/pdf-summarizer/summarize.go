// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/cache"
	"github.com/pdiddy/pdf-summarizer/internal/extract"
	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/internal/pipeline"
	"github.com/pdiddy/pdf-summarizer/internal/publish"
	"github.com/pdiddy/pdf-summarizer/internal/summarize"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [folder]",
	Short: "Summarize every PDF in a folder",
	Long: `Summarize concatenates the PDFs in folder, splits the result into
overlapping chunks and summarizes each chunk with the configured model.
It then writes a final summary, a timeline and a dramatis personae built
from the chunk summaries.

Outputs go to <folder>/output unless --output-dir is set. When folder is
omitted it is read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	addChunkFlags(summarizeCmd)
	addExtractionFlags(summarizeCmd)
	summarizeCmd.Flags().String("output-dir", "", "output directory (default: <folder>/output)")
	summarizeCmd.Flags().String("provider", string(types.ProviderClaude), "language model provider (claude or gemini)")
	summarizeCmd.Flags().String("model", "", "model identifier (default depends on provider)")
	summarizeCmd.Flags().Int("max-retries", types.DefaultMaxRetries, "retries after a failed API call")
	summarizeCmd.Flags().Int("max-tokens", types.DefaultMaxTokens, "maximum tokens per response")
	summarizeCmd.Flags().Int("requests-per-minute", types.DefaultRequestsPerMinute, "space API calls (0 = no limit)")
	summarizeCmd.Flags().String("format", string(types.FormatText), "output format (txt, pdf or both)")
	summarizeCmd.Flags().Bool("keep-chunks", false, "write one PDF per chunk next to the summaries")
	summarizeCmd.Flags().Bool("no-cache", false, "do not read or write the response cache")
	summarizeCmd.Flags().String("cache-path", "", "response cache file (default: <output>/.cache/responses.db)")
	summarizeCmd.Flags().String("upload", "", "upload outputs to gs://bucket/prefix")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Output.UploadURI != "" {
		if _, _, err := publish.ParseURI(cfg.Output.UploadURI); err != nil {
			return err
		}
	}
	if err := resolveAPIKey(cmd, &cfg.AI); err != nil {
		return err
	}

	folder, err := resolveFolder(cmd, args)
	if err != nil {
		return err
	}

	backend, err := summarize.NewBackend(ctx, cfg.AI, &http.Client{Timeout: cfg.AI.Timeout})
	if err != nil {
		return err
	}
	opts := summarize.Options{
		MaxRetries:        cfg.AI.MaxRetries,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
	}

	if cfg.Cache.Enabled {
		path := cfg.Cache.Path
		if path == "" {
			path = cache.DefaultPath(pipeline.OutputDir(folder, cfg.Output))
		}
		store, err := cache.Open(path)
		if err != nil {
			log.Warn().Err(err).Msg("response cache unavailable, continuing without it")
		} else {
			defer store.Close()
			opts.Cache = store
			log.Debug().Str("path", store.Path()).Msg("response cache opened")
		}
	}

	extractor, err := extract.Build(ctx, cfg.Extraction, nil)
	if err != nil {
		return err
	}
	defer extractor.Close()

	runner := &pipeline.Runner{
		Extractor:  extractor,
		Summarizer: summarize.New(backend, opts),
		Out:        out,
	}

	if cfg.Output.UploadURI != "" {
		gcs, err := publish.NewGCS(ctx)
		if err != nil {
			return err
		}
		defer gcs.Close()
		runner.Uploader = gcs
	}

	fmt.Fprintf(out, "provider: %s (%s)\n", backend.Name(), backend.Model())
	fmt.Fprintf(out, "extractors: %s\n", strings.Join(extractor.Names(), " -> "))

	m, err := runner.Run(ctx, folder, cfg)
	if m != nil {
		fmt.Fprintf(out, "Outputs in %s\n", pipeline.OutputDir(folder, cfg.Output))
	}
	return err
}
