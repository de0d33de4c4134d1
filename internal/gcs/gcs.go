// Package gcs stores receipt images in Google Cloud Storage and hands
// their bytes back to the extraction pipeline.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// Bucket wraps a single GCS bucket used for receipt images.
type Bucket struct {
	client *storage.Client
	name   string
}

// NewBucket creates a storage client for the named bucket. With an empty
// credentialsFile, Application Default Credentials are used.
func NewBucket(ctx context.Context, name, credentialsFile string) (*Bucket, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBucket: creating storage client: %w", err)
	}
	return &Bucket{client: client, name: name}, nil
}

// Close releases the underlying client.
func (b *Bucket) Close() error {
	return b.client.Close()
}

// Upload writes r to objectName and returns the gs:// URI of the object.
func (b *Bucket) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := b.client.Bucket(b.name).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: copying to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalizing upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", b.name, objectName), nil
}

// Fetch downloads the object behind a gs:// URI. The URI may point at any
// bucket the client can read, not just the upload bucket.
func (b *Bucket) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucketName, objectPath, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := b.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// ParseURI splits a gs://bucket/object URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename extracts the base filename from a gs:// URI.
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
