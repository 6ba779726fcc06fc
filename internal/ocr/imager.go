// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tsawler/tabula/reader"

	"github.com/pdiddy/pdf-summarizer/internal/command"
)

// PageImager produces PNG images of a page (0-based) for recognition.
type PageImager interface {
	PageImages(ctx context.Context, path string, page int) ([][]byte, error)
	Close() error
}

// pageSource reads the embedded images of one page as PNG.
type pageSource interface {
	PageImages(page int) ([][]byte, error)
	Close() error
}

// tabulaSource is a pageSource backed by a tabula reader.
type tabulaSource struct{ r *reader.Reader }

func openTabula(path string) (pageSource, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &tabulaSource{r: r}, nil
}

func (s *tabulaSource) PageImages(page int) ([][]byte, error) {
	p, err := s.r.GetPage(page)
	if err != nil {
		return nil, fmt.Errorf("loading page %d: %w", page+1, err)
	}
	imgs, err := s.r.ExtractPageImages(p)
	if err != nil {
		return nil, fmt.Errorf("extracting images from page %d: %w", page+1, err)
	}

	var out [][]byte
	for i := range imgs {
		data, err := imgs[i].ToPNG()
		if err != nil {
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *tabulaSource) Close() error { return s.r.Close() }

// Imager returns the images embedded in a page, which is how scanners
// store pages. A page without embedded images is rendered with pdftoppm
// when it is installed.
//
// Readers are checked out for the length of one page and returned
// afterwards. A parse that never returns keeps only its own reader, and
// the next page opens a fresh one.
type Imager struct {
	runner command.Runner
	dpi    int
	open   func(path string) (pageSource, error)

	mu     sync.Mutex
	idle   map[string][]pageSource
	closed bool
}

// NewImager returns an Imager rendering at dpi when it has to.
func NewImager(r command.Runner, dpi int) *Imager {
	if r == nil {
		r = command.Default
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Imager{runner: r, dpi: dpi, open: openTabula, idle: make(map[string][]pageSource)}
}

// checkout takes an idle reader for path or opens a new one.
func (im *Imager) checkout(path string) (pageSource, error) {
	im.mu.Lock()
	if n := len(im.idle[path]); n > 0 {
		src := im.idle[path][n-1]
		im.idle[path] = im.idle[path][:n-1]
		im.mu.Unlock()
		return src, nil
	}
	im.mu.Unlock()
	return im.open(path)
}

// release returns src to the idle set, or closes it once the Imager is
// closed.
func (im *Imager) release(path string, src pageSource) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.closed {
		src.Close()
		return
	}
	im.idle[path] = append(im.idle[path], src)
}

func (im *Imager) PageImages(ctx context.Context, path string, page int) ([][]byte, error) {
	embedded, embErr := im.embeddedImages(path, page)
	if len(embedded) > 0 {
		return embedded, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !command.Available(im.runner, command.BinPdftoppm) {
		if embErr != nil {
			return nil, embErr
		}
		return nil, fmt.Errorf("page %d has no embedded images and %s is not installed", page+1, command.BinPdftoppm)
	}

	rendered, err := im.render(ctx, path, page)
	if err != nil {
		return nil, err
	}
	return [][]byte{rendered}, nil
}

func (im *Imager) embeddedImages(path string, page int) ([][]byte, error) {
	src, err := im.checkout(path)
	if err != nil {
		return nil, err
	}
	defer im.release(path, src)
	return src.PageImages(page)
}

// render rasterises one page to PNG on stdout.
func (im *Imager) render(ctx context.Context, path string, page int) ([]byte, error) {
	n := strconv.Itoa(page + 1)
	args := []string{"-png", "-r", strconv.Itoa(im.dpi), "-f", n, "-l", n, "-singlefile", path}
	out, err := command.Output(ctx, im.runner, command.BinPdftoppm, args, nil)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page+1, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("rendering page %d: empty image", page+1)
	}
	return out, nil
}

// Close releases the idle PDF readers. Readers still checked out are
// closed when their page finishes.
func (im *Imager) Close() error {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.closed = true
	var firstErr error
	for path, sources := range im.idle {
		for _, src := range sources {
			if err := src.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(im.idle, path)
	}
	return firstErr
}

// PageText recognises every image of a page and joins the results.
func PageText(ctx context.Context, engine Engine, imager PageImager, path string, page int) (string, error) {
	imgs, err := imager.PageImages(ctx, path, page)
	if err != nil {
		return "", err
	}
	var parts []string
	for i, img := range imgs {
		text, err := engine.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("image %d on page %d: %w", i+1, page+1, err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

