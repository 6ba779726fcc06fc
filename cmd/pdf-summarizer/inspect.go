// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-summarizer/internal/extract"
	"github.com/pdiddy/pdf-summarizer/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf> <page>",
	Short: "Diagnose text extraction on one page",
	Long: `Inspect runs every extractor on a single page (1-based) under the page
timeout, reads the page structure and prints which extractors worked,
how long each took, and rules for detecting similar pages. The report is
also written as page_analysis_<page>.yaml.`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	addExtractionFlags(inspectCmd)
	inspectCmd.Flags().String("output-dir", ".", "directory for the YAML report")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	page, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("page must be a number, got %q", args[1])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := extract.Build(ctx, cfg.Extraction, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := inspect.New(p.Backends(), p.Timeout()).Inspect(ctx, args[0], page)
	if err != nil {
		return err
	}
	inspect.PrintReport(out, report)

	path, err := inspect.WriteReport(cfg.Output.Dir, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nsaved: %s\n", path)
	return nil
}
