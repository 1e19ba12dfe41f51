package publish

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCS uploads to a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	dest   Destination
}

func NewGCS(ctx context.Context, dest Destination, opts ...Option) (*GCS, error) {
	o := newOptions(opts)

	client, err := storage.NewClient(ctx, o.gcs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCS{client: client, dest: dest}, nil
}

func (u *GCS) Upload(ctx context.Context, name string, r io.Reader) error {
	w := u.client.Bucket(u.dest.Bucket).Object(u.dest.Key(name)).NewWriter(ctx)
	w.ContentType = contentType(name)

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (u *GCS) String() string {
	return u.dest.String()
}

func (u *GCS) Close() error {
	return u.client.Close()
}
