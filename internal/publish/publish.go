// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish uploads run artifacts to Google Cloud Storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/pdiddy/pdf-summarizer/internal/logging"
)

// ErrInvalidURI is returned for destinations that are not gs://bucket[/prefix].
var ErrInvalidURI = errors.New("invalid GCS URI")

const uploadTimeout = 2 * time.Minute

// Uploader copies a local file to an object.
type Uploader interface {
	Upload(ctx context.Context, bucket, object, filePath string) error
}

// ParseURI splits gs://bucket/prefix into bucket and prefix. The prefix may
// be empty.
func ParseURI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	trimmed := strings.Trim(strings.TrimPrefix(uri, "gs://"), "/")
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w (no bucket): %s", ErrInvalidURI, uri)
	}
	return bucket, prefix, nil
}

// ObjectName is <prefix>/<runID>/<path of file relative to baseDir>.
func ObjectName(prefix, runID, baseDir, file string) string {
	rel, err := filepath.Rel(baseDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	return path.Join(prefix, runID, filepath.ToSlash(rel))
}

// Publish uploads files under uri and returns the gs:// URIs written.
// It stops at the first failed upload.
func Publish(ctx context.Context, up Uploader, uri, runID, baseDir string, files []string, w io.Writer) ([]string, error) {
	bucket, prefix, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	for _, f := range files {
		object := ObjectName(prefix, runID, baseDir, f)
		if err := up.Upload(ctx, bucket, object, f); err != nil {
			return uploaded, fmt.Errorf("uploading %s: %w", f, err)
		}
		dest := fmt.Sprintf("gs://%s/%s", bucket, object)
		fmt.Fprintf(w, "uploaded: %s\n", dest)
		uploaded = append(uploaded, dest)
	}
	logging.FromContext(ctx).Info().Int("files", len(uploaded)).Str("bucket", bucket).Msg("artifacts uploaded")
	return uploaded, nil
}

// GCS uploads with Application Default Credentials.
type GCS struct {
	client *storage.Client
}

// NewGCS creates a storage client.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Close releases the client.
func (g *GCS) Close() error { return g.client.Close() }

// Upload streams filePath into bucket/object.
func (g *GCS) Upload(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(filePath)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return "application/octet-stream"
}
