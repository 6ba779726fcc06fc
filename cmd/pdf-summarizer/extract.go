// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/chunk"
	"github.com/pdiddy/pdf-summarizer/internal/extract"
	"github.com/pdiddy/pdf-summarizer/internal/output"
	"github.com/pdiddy/pdf-summarizer/internal/pdfdoc"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract the text of a PDF chunk by chunk",
	Long: `Extract runs the extraction fallback chain over every chunk of pdf and
reports which extractor produced each page. With --output-dir the text of
each chunk is written to chunk_N_pages_A-B_text.txt.

No language model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	addChunkFlags(extractCmd)
	addExtractionFlags(extractCmd)
	extractCmd.Flags().String("output-dir", "", "write the text of each chunk here")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Chunk.Validate(); err != nil {
		return err
	}

	path := args[0]
	total, err := pdfdoc.PageCount(path)
	if err != nil {
		return err
	}
	chunks, err := chunk.PlanConfig(total, cfg.Chunk)
	if err != nil {
		return err
	}

	p, err := extract.Build(ctx, cfg.Extraction, nil)
	if err != nil {
		return err
	}
	defer p.Close()
	fmt.Fprintf(out, "extractors: %s\n", strings.Join(p.Names(), " -> "))

	texts, err := p.ExtractAll(ctx, path, chunks, out)
	if err != nil {
		return err
	}

	var w *output.Writer
	if cfg.Output.Dir != "" {
		w = output.NewWriter(cfg.Output.Dir, types.FormatText, out)
	}

	var empty int
	for _, ct := range texts {
		for _, pg := range ct.Pages {
			if pg.Method == types.MethodNone {
				empty++
			}
		}
		if w == nil {
			continue
		}
		name := output.ChunkSummaryName(ct.Chunk) + "_text"
		if _, err := w.WriteDocument(name, output.ChunkHeader(ct.Chunk), ct.Text); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nExtraction summary: %d pages, %d without text\n", total, empty)
	return nil
}
