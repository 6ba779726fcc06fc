// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets finds API keys. A key comes from the process environment,
// a .env file, or a directory of plain-text files where each filename is the
// key name and the trimmed contents are the value.
//
// Supported key files: anthropic-api-key, gemini-api-key.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// Key file names in the secrets directory.
const (
	FileAnthropic = "anthropic-api-key"
	FileGemini    = "gemini-api-key"
)

// EnvVars lists the environment variables holding the key for p, in
// priority order.
func EnvVars(p types.Provider) []string {
	if p == types.ProviderGemini {
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	return []string{"ANTHROPIC_API_KEY"}
}

// FileName returns the secrets-directory file holding the key for p.
func FileName(p types.Provider) string {
	if p == types.ProviderGemini {
		return FileGemini
	}
	return FileAnthropic
}

// Sources are the places an API key is looked up, in priority order:
// the environment, then the .env file, then the secrets directory.
type Sources struct {
	Env    func(string) string
	DotEnv map[string]string
	Files  map[string]string
}

// LoadSources reads the .env file at dotEnvPath and the secrets directory.
// Either may be missing.
func LoadSources(dotEnvPath, secretsDir string) (Sources, error) {
	src := Sources{Env: os.Getenv}

	env, err := LoadDotEnv(dotEnvPath)
	if err != nil {
		return src, err
	}
	src.DotEnv = env

	files, err := Load(secretsDir)
	if err != nil {
		return src, err
	}
	src.Files = files
	return src, nil
}

// APIKey returns the key for p and a description of where it was found.
// Both are empty when no source has it.
func (s Sources) APIKey(p types.Provider) (key, source string) {
	vars := EnvVars(p)
	if s.Env != nil {
		for _, v := range vars {
			if k := strings.TrimSpace(s.Env(v)); k != "" {
				return k, "environment " + v
			}
		}
	}
	for _, v := range vars {
		if k := strings.TrimSpace(s.DotEnv[v]); k != "" {
			return k, ".env " + v
		}
	}
	if k := s.Files[FileName(p)]; k != "" {
		return k, "secrets file " + FileName(p)
	}
	return "", ""
}

// LoadDotEnv parses a .env file without touching the process environment.
// A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
