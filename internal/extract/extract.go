// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls text out of PDF pages through an ordered list of
// backends. Each page is tried with every backend in turn until one returns
// enough text; the winning backend is recorded per page.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// Backend names accepted in the extractor list.
const (
	NameTabula    = "tabula"
	NamePlainText = "plaintext"
	NamePdftotext = "pdftotext"
	NameOCR       = "ocr"
)

var (
	// ErrNoText is returned when an attempt yields less than MinChars of text.
	ErrNoText = errors.New("no text extracted")
	// ErrTimeout is returned when an attempt exceeds the page timeout.
	ErrTimeout = errors.New("extraction timed out")
	// ErrNoBackends is returned when the pipeline has nothing to try.
	ErrNoBackends = errors.New("no extraction backends available")
	// ErrUnsupported is returned by documents that cannot count pages.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Backend opens PDFs for one extraction method.
type Backend interface {
	Name() string
	Open(path string) (Document, error)
}

// Document reads text from the pages of one open PDF. Pages are 0-based.
type Document interface {
	PageCount() (int, error)
	PageText(ctx context.Context, page int) (string, error)
	Close() error
}

// Pipeline tries backends in order for every page.
type Pipeline struct {
	backends []Backend
	minChars int
	timeout  time.Duration
}

// New returns a pipeline over backends. A zero MinChars counts any
// non-blank text as a success; a zero PageTimeout disables the timeout.
func New(backends []Backend, minChars int, timeout time.Duration) *Pipeline {
	if minChars <= 0 {
		minChars = types.DefaultMinChars
	}
	return &Pipeline{backends: backends, minChars: minChars, timeout: timeout}
}

// Backends returns the backends in fallback order.
func (p *Pipeline) Backends() []Backend {
	return append([]Backend(nil), p.backends...)
}

// Timeout returns the per-attempt timeout.
func (p *Pipeline) Timeout() time.Duration { return p.timeout }

// Names returns the backend names in fallback order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.backends))
	for i, b := range p.backends {
		names[i] = b.Name()
	}
	return names
}

// Close releases backends that hold resources, such as an OCR engine.
func (p *Pipeline) Close() error {
	var errs []error
	for _, b := range p.backends {
		if c, ok := b.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Open starts a session on path. Documents are opened lazily per backend.
func (p *Pipeline) Open(path string) *Session {
	return &Session{
		p:       p,
		path:    path,
		docs:    make(map[string]Document),
		openErr: make(map[string]error),
		pages:   make(map[int]types.PageText),
	}
}

// ExtractChunk extracts the pages of one chunk.
func (p *Pipeline) ExtractChunk(ctx context.Context, path string, c types.Chunk) (types.ChunkText, error) {
	s := p.Open(path)
	defer s.Close()
	return s.Chunk(ctx, c)
}

// ExtractAll extracts every chunk in order with one session, so pages in
// chunk overlaps are extracted once. A progress line per chunk goes to w.
func (p *Pipeline) ExtractAll(ctx context.Context, path string, chunks []types.Chunk, w io.Writer) ([]types.ChunkText, error) {
	s := p.Open(path)
	defer s.Close()

	out := make([]types.ChunkText, 0, len(chunks))
	for _, c := range chunks {
		fmt.Fprintf(w, "extracting chunk %d/%d (%s)\n", c.Number(), len(chunks), c.Label())
		ct, err := s.Chunk(ctx, c)
		if err != nil {
			return out, err
		}
		fmt.Fprintf(w, "  methods: %s\n", FormatCounts(ct.MethodCounts()))
		out = append(out, ct)
	}
	return out, nil
}

// FormatCounts renders method counts as "ocr=2 tabula=98", sorted by name.
func FormatCounts(counts map[types.ExtractionMethod]int) string {
	parts := make([]string, 0, len(counts))
	for m, n := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", m, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// Session extracts pages of one PDF and remembers the results.
// A Session is not safe for concurrent use.
type Session struct {
	p       *Pipeline
	path    string
	docs    map[string]Document
	openErr map[string]error
	pages   map[int]types.PageText
}

// Chunk extracts every page of c. Every page contributes its text and a
// newline, so blank pages still show as line breaks. The only error is context cancellation; pages that defeat every
// backend come back with MethodNone and empty text.
func (s *Session) Chunk(ctx context.Context, c types.Chunk) (types.ChunkText, error) {
	ct := types.ChunkText{Chunk: c, Pages: make([]types.PageText, 0, c.Pages())}
	var b strings.Builder
	for page := c.StartPage; page < c.EndPage; page++ {
		pt, err := s.Page(ctx, page)
		if err != nil {
			return ct, err
		}
		ct.Pages = append(ct.Pages, pt)
		b.WriteString(pt.Text)
		b.WriteString("\n")
	}
	ct.Text = b.String()
	return ct, nil
}

// Page extracts one page, trying each backend in order.
func (s *Session) Page(ctx context.Context, page int) (types.PageText, error) {
	if pt, ok := s.pages[page]; ok {
		return pt, nil
	}

	log := logging.FromContext(ctx)
	pt := types.PageText{Page: page, Method: types.MethodNone}

	for _, b := range s.p.backends {
		if err := ctx.Err(); err != nil {
			return pt, err
		}
		text, err := s.Attempt(ctx, b, page)
		if err == nil && len(strings.TrimSpace(text)) < s.p.minChars {
			err = ErrNoText
		}
		if err != nil {
			if ctx.Err() != nil {
				return pt, ctx.Err()
			}
			log.Debug().Err(err).Int("page", page+1).Str("backend", b.Name()).Msg("extraction attempt failed")
			pt.Failures = append(pt.Failures, types.Attempt{Method: types.ExtractionMethod(b.Name()), Error: err.Error()})
			continue
		}
		pt.Text = strings.TrimSpace(text)
		pt.Method = types.ExtractionMethod(b.Name())
		break
	}

	if pt.Method == types.MethodNone {
		log.Warn().Int("page", page+1).Int("attempts", len(pt.Failures)).Msg("no backend extracted text from page")
	}
	s.pages[page] = pt
	return pt, nil
}

// Attempt runs one backend on one page under the page timeout. When the
// timeout fires the backend's document is abandoned to the stuck call and
// the next attempt opens a fresh one.
func (s *Session) Attempt(ctx context.Context, b Backend, page int) (string, error) {
	doc, err := s.document(b)
	if err != nil {
		return "", err
	}
	if s.p.timeout <= 0 {
		return safePageText(ctx, doc, page)
	}

	actx, cancel := context.WithTimeout(ctx, s.p.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := safePageText(actx, doc, page)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-actx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		delete(s.docs, b.Name())
		go func() {
			<-done
			doc.Close()
		}()
		return "", fmt.Errorf("%w after %s", ErrTimeout, s.p.timeout)
	}
}

// PageCount asks each backend in order for the page count.
func (s *Session) PageCount() (int, error) {
	var errs []error
	for _, b := range s.p.backends {
		doc, err := s.document(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n, err := doc.PageCount()
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ErrUnsupported) {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}
	if len(errs) == 0 {
		return 0, ErrUnsupported
	}
	return 0, errors.Join(errs...)
}

// Close closes every document the session opened.
func (s *Session) Close() error {
	var errs []error
	for name, doc := range s.docs {
		errs = append(errs, doc.Close())
		delete(s.docs, name)
	}
	return errors.Join(errs...)
}

func (s *Session) document(b Backend) (Document, error) {
	name := b.Name()
	if doc, ok := s.docs[name]; ok {
		return doc, nil
	}
	if err := s.openErr[name]; err != nil {
		return nil, err
	}
	doc, err := b.Open(s.path)
	if err != nil {
		err = fmt.Errorf("opening with %s: %w", name, err)
		s.openErr[name] = err
		return nil, err
	}
	s.docs[name] = doc
	return doc, nil
}

// safePageText turns a panic inside a PDF parser into an error.
func safePageText(ctx context.Context, doc Document, page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic extracting page %d: %v", page+1, r)
		}
	}()
	return doc.PageText(ctx, page)
}
