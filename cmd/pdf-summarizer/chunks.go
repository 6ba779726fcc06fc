// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/chunk"
	"github.com/pdiddy/pdf-summarizer/internal/pdfdoc"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <pdf>",
	Short: "Print the chunk plan for a PDF",
	Long: `Chunks prints the overlapping page ranges that summarize would use for
pdf. With --write, each chunk is also saved as its own PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	addChunkFlags(chunksCmd)
	chunksCmd.Flags().Bool("write", false, "write one PDF per chunk")
	chunksCmd.Flags().String("output-dir", ".", "directory for chunk PDFs")

	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d pages, %d chunk(s)\n", filepath.Base(path), total, len(chunks))
	for _, c := range chunks {
		fmt.Fprintf(out, "  chunk %d: %s (%d pages)\n", c.Number(), c.Label(), c.Pages())
	}

	write, _ := cmd.Flags().GetBool("write")
	if !write {
		return nil
	}
	var failed int
	for _, c := range chunks {
		dest := filepath.Join(cfg.Output.Dir, pdfdoc.ChunkPDFName(c))
		if err := pdfdoc.WriteChunkPDF(path, dest, c); err != nil {
			fmt.Fprintf(out, "failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "saved: %s\n", dest)
	}
	if failed > 0 {
		return fmt.Errorf("%d chunk PDF(s) failed", failed)
	}
	return nil
}
