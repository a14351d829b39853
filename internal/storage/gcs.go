package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore fetches generated media that the vendor wrote to a bucket.
type GCSStore struct {
	client *storage.Client
}

func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Download copies a gs:// object to localPath. A URI naming a prefix (or
// ending in "/") resolves to the most recently updated object under it,
// which is how operation output directories are handed back.
func (s *GCSStore) Download(ctx context.Context, uri, localPath string) error {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return err
	}

	if object == "" || strings.HasSuffix(object, "/") {
		object, err = s.latestObject(ctx, bucket, object)
		if err != nil {
			return err
		}
	}

	return s.downloadObject(ctx, bucket, object, localPath)
}

func (s *GCSStore) latestObject(ctx context.Context, bucket, prefix string) (string, error) {
	query := &storage.Query{Prefix: prefix}

	var (
		newest  string
		updated time.Time
	)
	it := s.client.Bucket(bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		if newest == "" || attrs.Updated.After(updated) {
			newest = attrs.Name
			updated = attrs.Updated
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no objects found under gs://%s/%s", bucket, prefix)
	}
	return newest, nil
}

func (s *GCSStore) downloadObject(ctx context.Context, bucket, object, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	return nil
}

func parseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %s", uri)
	}

	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in URI: %s", uri)
	}
	return bucket, object, nil
}
