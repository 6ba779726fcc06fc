// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pathutil turns user-typed folder paths into absolute directories.
package pathutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned when the input contains no path.
var ErrEmptyPath = errors.New("empty path")

// maxPromptAttempts bounds how often PromptFolder asks again.
const maxPromptAttempts = 3

// homeDir is a package-level var for test substitution.
var homeDir = os.UserHomeDir

// ExpandPath cleans a path as typed or pasted into a terminal: surrounding
// whitespace and one layer of matching quotes are removed, backslash-escaped
// spaces are unescaped, a leading ~ is expanded, and relative paths are made
// absolute against the working directory.
func ExpandPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	p = stripQuotes(p)
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrEmptyPath
	}

	if strings.Contains(p, `\ `) {
		p = strings.ReplaceAll(p, `\ `, " ")
	}

	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := homeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}

func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' || first == '\'') && first == last {
		return s[1 : len(s)-1]
	}
	return s
}

// ExistingDir expands raw and verifies the result is a directory.
func ExistingDir(raw string) (string, error) {
	p, err := ExpandPath(raw)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("folder %s does not exist", p)
		}
		return "", fmt.Errorf("stat %s: %w", p, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a folder", p)
	}
	return p, nil
}

// PromptFolder asks for a folder on out and reads the answer from in.
// Invalid answers are reported and asked again, up to three attempts.
func PromptFolder(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	var lastErr error
	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		fmt.Fprint(out, "Enter the path to the folder containing PDFs: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading folder path: %w", err)
			}
			return "", fmt.Errorf("reading folder path: %w", io.ErrUnexpectedEOF)
		}

		dir, err := ExistingDir(scanner.Text())
		if err == nil {
			return dir, nil
		}
		lastErr = err
		fmt.Fprintf(out, "invalid folder: %v\n", err)
	}
	return "", fmt.Errorf("no valid folder after %d attempts: %w", maxPromptAttempts, lastErr)
}
