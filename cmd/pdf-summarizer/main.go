// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-summarizer CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// Locations of the key files, relative to the working directory.
const (
	dotEnvFile = ".env"
	secretsDir = ".secrets/"
)

// rootCmd is the base command for the pdf-summarizer CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf-summarizer",
	Short: "Summarize a folder of PDFs with a language model",
	Long: `pdf-summarizer concatenates the PDFs in a folder, splits the result into
overlapping chunks, extracts the text of every page with a chain of
fallback extractors, and asks Claude or Gemini for a summary of each
chunk. The chunk summaries are then combined into a final summary, a
timeline and a dramatis personae.

The full pipeline is the summarize command. The other commands run single
stages (concat, chunks, extract) or help diagnose problem documents
(inspect) and manage the response cache (cache).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		logger := logging.New(level)
		cmd.SetContext(logging.WithContext(cmd.Context(), logger))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf-summarizer.yaml or ~/.config/pdf-summarizer/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level (debug, info, warn, error)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf-summarizer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf-summarizer"))
		}
	}

	viper.SetEnvPrefix("PDF_SUMMARIZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadSecrets reads the .env file and the .secrets/ directory.
func loadSecrets() (secrets.Sources, error) {
	return secrets.LoadSources(dotEnvFile, secretsDir)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
