// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	availableBins map[string]bool
	runFunc       func(name string, args []string, stdin io.Reader, stdout io.Writer) error
	calls         []string
}

func (m *mockRunner) LookPath(name string) (string, error) {
	if m.availableBins[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found: " + name)
}

func (m *mockRunner) Run(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if m.runFunc != nil {
		return m.runFunc(name, args, stdin, stdout)
	}
	return nil
}

type mockImager struct {
	images [][]byte
	err    error
}

func (m *mockImager) PageImages(context.Context, string, int) ([][]byte, error) {
	return m.images, m.err
}

func (m *mockImager) Close() error { return nil }

type mockEngine struct {
	texts map[string]string
	err   error
}

func (m *mockEngine) Name() string { return "mock" }

func (m *mockEngine) Recognize(_ context.Context, png []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.texts[string(png)], nil
}

func (m *mockEngine) Close() error { return nil }

func TestTesseractCLI_Recognize(t *testing.T) {
	r := &mockRunner{
		runFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			data, _ := io.ReadAll(stdin)
			assert.Equal(t, "PNGDATA", string(data))
			_, err := io.WriteString(stdout, "  Scanned words\n\n")
			return err
		},
	}
	e := NewTesseractCLI("eng+fra", r)

	text, err := e.Recognize(context.Background(), []byte("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "Scanned words", text)
	assert.Equal(t, []string{"tesseract stdin stdout -l eng+fra"}, r.calls)
}

func TestTesseractCLI_Error(t *testing.T) {
	r := &mockRunner{
		runFunc: func(string, []string, io.Reader, io.Writer) error { return errors.New("exit status 1") },
	}
	_, err := NewTesseractCLI("eng", r).Recognize(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
}

func TestNewEngine_PrefersAvailableEngine(t *testing.T) {
	r := &mockRunner{availableBins: map[string]bool{"tesseract": true}}
	e, err := NewEngine("", r)
	require.NoError(t, err)
	defer e.Close()
	assert.NotEmpty(t, e.Name())
}

func TestPageText(t *testing.T) {
	engine := &mockEngine{texts: map[string]string{"a": "First block", "b": "", "c": "Second block"}}
	imager := &mockImager{images: [][]byte{[]byte("a"), []byte("b"), []byte("c")}}

	text, err := PageText(context.Background(), engine, imager, "doc.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, "First block\n\nSecond block", text)
}

func TestPageText_Errors(t *testing.T) {
	_, err := PageText(context.Background(), &mockEngine{}, &mockImager{err: errors.New("no images")}, "doc.pdf", 0)
	assert.EqualError(t, err, "no images")

	_, err = PageText(context.Background(), &mockEngine{err: errors.New("boom")},
		&mockImager{images: [][]byte{[]byte("a")}}, "doc.pdf", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 5")
}

func TestImager_RendersWhenNoEmbeddedImages(t *testing.T) {
	r := &mockRunner{
		availableBins: map[string]bool{"pdftoppm": true},
		runFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			_, err := io.WriteString(stdout, "PNG")
			return err
		},
	}
	im := NewImager(r, 200)
	defer im.Close()

	// The file does not exist, so embedded extraction fails and rendering takes over.
	imgs, err := im.PageImages(context.Background(), "/nonexistent/scan.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("PNG")}, imgs)
	assert.Equal(t, []string{"pdftoppm -png -r 200 -f 3 -l 3 -singlefile /nonexistent/scan.pdf"}, r.calls)
}

func TestImager_NoRenderer(t *testing.T) {
	im := NewImager(&mockRunner{}, 0)
	defer im.Close()

	_, err := im.PageImages(context.Background(), "/nonexistent/scan.pdf", 0)
	require.Error(t, err)
}

type fakeSource struct {
	images  [][]byte
	release chan struct{}
	closed  bool
}

func (f *fakeSource) PageImages(int) ([][]byte, error) {
	if f.release != nil {
		<-f.release
	}
	return f.images, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestImager_HungPageDoesNotBlockLaterPages(t *testing.T) {
	release := make(chan struct{})
	hung := &fakeSource{images: [][]byte{[]byte("late")}, release: release}
	healthy := &fakeSource{images: [][]byte{[]byte("scan")}}

	var mu sync.Mutex
	opened := 0
	im := NewImager(&mockRunner{}, 0)
	im.open = func(string) (pageSource, error) {
		mu.Lock()
		defer mu.Unlock()
		opened++
		if opened == 1 {
			return hung, nil
		}
		return healthy, nil
	}

	first := make(chan struct{})
	go func() {
		defer close(first)
		im.PageImages(context.Background(), "scan.pdf", 0)
	}()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return opened == 1
	}, time.Second, time.Millisecond)

	done := make(chan [][]byte, 1)
	go func() {
		imgs, _ := im.PageImages(context.Background(), "scan.pdf", 1)
		done <- imgs
	}()
	select {
	case imgs := <-done:
		assert.Equal(t, [][]byte{[]byte("scan")}, imgs)
	case <-time.After(5 * time.Second):
		t.Fatal("second page waited for the hung parse")
	}

	// The healthy reader went back to the pool and is reused.
	imgs, err := im.PageImages(context.Background(), "scan.pdf", 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("scan")}, imgs)
	assert.Equal(t, 2, opened)

	require.NoError(t, im.Close())
	assert.True(t, healthy.closed)
	assert.False(t, hung.closed)

	close(release)
	<-first
	assert.True(t, hung.closed, "a reader returned after Close is closed")
}
