package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/superdango/grid-impact/internal/export"
	"golang.org/x/sync/errgroup"
)

// Uploader stores named files under a destination.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) error
	String() string
}

// Destination is a parsed gs://bucket/prefix or s3://bucket/prefix URL.
type Destination struct {
	Scheme string
	Bucket string
	Prefix string
}

func (d Destination) String() string {
	return d.Scheme + "://" + path.Join(d.Bucket, d.Prefix)
}

// Key returns the object key of name under the destination prefix.
func (d Destination) Key(name string) string {
	return path.Join(d.Prefix, name)
}

// ParseDestination parses raw and checks its scheme is supported.
func ParseDestination(raw string) (Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("invalid destination %q: %w", raw, err)
	}

	if u.Scheme != "gs" && u.Scheme != "s3" {
		return Destination{}, fmt.Errorf("unsupported destination scheme %q, expected gs or s3", u.Scheme)
	}
	if u.Host == "" {
		return Destination{}, fmt.Errorf("destination %q has no bucket", raw)
	}

	return Destination{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// New returns the uploader of the destination raw.
func New(ctx context.Context, raw string, opts ...Option) (Uploader, error) {
	dest, err := ParseDestination(raw)
	if err != nil {
		return nil, err
	}

	switch dest.Scheme {
	case "gs":
		return NewGCS(ctx, dest, opts...)
	default:
		return NewS3(ctx, dest, opts...)
	}
}

var contentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv; charset=utf-8",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func contentType(name string) string {
	if ct, found := contentTypes[filepath.Ext(name)]; found {
		return ct
	}
	return "application/octet-stream"
}

// Upload copies every file of dir through uploader. The manifest goes last so
// that readers never find a manifest listing files not uploaded yet. It
// returns the number of files uploaded.
func Upload(ctx context.Context, dir string, uploader Uploader) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list export: %w", err)
	}

	errg, errgctx := errgroup.WithContext(ctx)
	errg.SetLimit(5)

	uploaded := 0
	hasManifest := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == export.ManifestName {
			hasManifest = true
			continue
		}

		name := entry.Name()
		uploaded++
		errg.Go(func() error {
			return uploadFile(errgctx, uploader, dir, name)
		})
	}

	if err := errg.Wait(); err != nil {
		return 0, err
	}

	if hasManifest {
		if err := uploadFile(ctx, uploader, dir, export.ManifestName); err != nil {
			return 0, err
		}
		uploaded++
	}

	slog.Info("export uploaded", "destination", uploader.String(), "files", uploaded)
	return uploaded, nil
}

func uploadFile(ctx context.Context, uploader Uploader, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := uploader.Upload(ctx, name, f); err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", name, uploader, err)
	}
	slog.Debug("file uploaded", "destination", uploader.String(), "file", name)
	return nil
}
