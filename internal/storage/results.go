package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"pitchreel/internal/generation"
	"pitchreel/pkg/httputil"
)

// ResultStore materializes a finished job's output as a local file,
// whichever way the vendor handed it back: inline bytes, a bucket object,
// or a plain HTTPS URL.
type ResultStore struct {
	gcs  *GCSStore
	http *httputil.RetryClient
}

// NewResultStore builds a store; gcs may be nil when no bucket is
// configured, in which case gs:// results are rejected.
func NewResultStore(gcs *GCSStore) *ResultStore {
	return &ResultStore{
		gcs:  gcs,
		http: httputil.NewRetryClient(nil, httputil.DefaultRetryConfig()),
	}
}

func (r *ResultStore) Save(ctx context.Context, result *generation.Result, localPath string) error {
	switch {
	case len(result.Payload) > 0:
		return r.writeFile(localPath, result.Payload)

	case strings.HasPrefix(result.URI, "gs://"):
		if r.gcs == nil {
			return fmt.Errorf("result is in GCS (%s) but no GCS client is configured", result.URI)
		}
		return r.gcs.Download(ctx, result.URI, localPath)

	case strings.HasPrefix(result.URI, "http://"), strings.HasPrefix(result.URI, "https://"):
		return r.downloadHTTP(ctx, result.URI, localPath)

	default:
		return fmt.Errorf("result has no retrievable output (uri %q)", result.URI)
	}
}

func (r *ResultStore) downloadHTTP(ctx context.Context, url, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("download result: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download result: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read result body: %w", err)
	}
	return r.writeFile(localPath, data)
}

func (r *ResultStore) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
