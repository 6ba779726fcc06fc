// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/pdfdoc"
	"github.com/pdiddy/pdf-summarizer/internal/pipeline"
)

var concatCmd = &cobra.Command{
	Use:   "concat [folder]",
	Short: "Concatenate the PDFs in a folder",
	Long: `Concat merges the PDFs in folder, sorted by file name, into
concatenated.pdf in the output directory. Files written by earlier runs
are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConcat,
}

func init() {
	concatCmd.Flags().String("output-dir", "", "output directory (default: <folder>/output)")

	rootCmd.AddCommand(concatCmd)
}

func runConcat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	folder, err := resolveFolder(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, path, err := pipeline.Concat(cmd.Context(), folder, pipeline.OutputDir(folder, cfg.Output), out)
	if err != nil {
		return err
	}
	n, err := pdfdoc.PageCount(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "total pages: %d\n", n)
	return nil
}
