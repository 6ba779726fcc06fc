// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package command runs external helper binaries (pdftotext, pdftoppm,
// tesseract) behind an interface so callers can be tested without them.
package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	BinPdftotext = "pdftotext"
	BinPdftoppm  = "pdftoppm"
	BinTesseract = "tesseract"
)

// Runner finds and executes binaries.
type Runner interface {
	// LookPath reports the absolute path of a binary on PATH.
	LookPath(name string) (string, error)

	// Run executes name with args, piping stdin and stdout. A non-zero exit
	// is returned as an error that includes the tail of stderr.
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// OS is the production Runner backed by os/exec.
type OS struct{}

func (OS) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (OS) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("running %s: %w", name, ctx.Err())
		}
		return fmt.Errorf("running %s: %w%s", name, err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last line of stderr for error messages.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}

// Default is the runner used when callers pass nil.
var Default Runner = OS{}

// Available reports whether name is on PATH.
func Available(r Runner, name string) bool {
	if r == nil {
		r = Default
	}
	_, err := r.LookPath(name)
	return err == nil
}

// Output runs name and returns its stdout.
func Output(ctx context.Context, r Runner, name string, args []string, stdin io.Reader) ([]byte, error) {
	if r == nil {
		r = Default
	}
	var out bytes.Buffer
	if err := r.Run(ctx, name, args, stdin, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
