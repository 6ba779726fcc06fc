// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/internal/pathutil"
	"github.com/pdiddy/pdf-summarizer/internal/secrets"
	"github.com/pdiddy/pdf-summarizer/internal/summarize"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// flagKeys maps command-line flags to config keys. A flag is bound only
// when the running command defines it.
var flagKeys = map[string]string{
	"max-pages":           "chunk.max_pages",
	"overlap":             "chunk.overlap",
	"extractors":          "extraction.extractors",
	"min-chars":           "extraction.min_chars",
	"page-timeout":        "extraction.page_timeout",
	"ocr-lang":            "extraction.ocr.language",
	"ocr-dpi":             "extraction.ocr.dpi",
	"provider":            "ai.provider",
	"model":               "ai.model",
	"max-retries":         "ai.max_retries",
	"max-tokens":          "ai.max_tokens",
	"requests-per-minute": "ai.requests_per_minute",
	"output-dir":          "output.dir",
	"format":              "output.format",
	"keep-chunks":         "output.keep_chunks",
	"upload":              "output.upload_uri",
	"cache-path":          "cache.path",
}

func init() {
	setConfigDefaults()
}

// setConfigDefaults registers keys that have no flag. They still need a
// default so AutomaticEnv sees them.
func setConfigDefaults() {
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.timeout", types.DefaultRequestTimeout)
}

func addChunkFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-pages", types.DefaultMaxPages, "maximum pages per chunk")
	cmd.Flags().Int("overlap", types.DefaultOverlap, "pages shared by adjacent chunks")
}

func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("extractors", types.DefaultExtractors, "text extractors in fallback order (tabula, plaintext, pdftotext, ocr)")
	cmd.Flags().Int("min-chars", types.DefaultMinChars, "minimum characters for an extraction attempt to count")
	cmd.Flags().Duration("page-timeout", types.DefaultPageTimeout, "time limit for one extractor on one page")
	cmd.Flags().String("ocr-lang", types.DefaultOCRLanguage, "Tesseract language, e.g. eng or eng+fra")
	cmd.Flags().Int("ocr-dpi", types.DefaultOCRDPI, "resolution used to render pages for OCR")
	cmd.Flags().Bool("no-ocr", false, "do not fall back to OCR")
}

// loadConfig merges defaults, the config file, PDF_SUMMARIZER_* variables
// and the flags of cmd.
func loadConfig(cmd *cobra.Command) (types.SummarizeConfig, error) {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return types.SummarizeConfig{}, fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	cfg := types.DefaultSummarizeConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if noOCR, _ := cmd.Flags().GetBool("no-ocr"); noOCR {
		cfg.Extraction.OCR.Enabled = false
	}
	return cfg, nil
}

// resolveAPIKey fills cfg.APIKey from the environment, .env or .secrets/
// when the configuration does not carry one.
func resolveAPIKey(cmd *cobra.Command, cfg *types.AIConfig) error {
	if cfg.APIKey != "" {
		return nil
	}
	src, err := loadSecrets()
	if err != nil {
		return err
	}
	key, from := src.APIKey(cfg.Provider)
	if key == "" {
		return fmt.Errorf("%w for %s: set %s, add it to %s, or write it to %s%s",
			summarize.ErrMissingAPIKey, cfg.Provider,
			strings.Join(secrets.EnvVars(cfg.Provider), " or "),
			dotEnvFile, secretsDir, secrets.FileName(cfg.Provider))
	}
	logging.FromContext(cmd.Context()).Debug().Str("source", from).Msg("API key loaded")
	cfg.APIKey = key
	return nil
}

// resolveFolder returns the folder argument, or asks for one on stdin.
func resolveFolder(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return pathutil.ExistingDir(args[0])
	}
	return pathutil.PromptFolder(cmd.InOrStdin(), cmd.OutOrStdout())
}
