package publish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superdango/grid-impact/internal/export"
	"google.golang.org/api/option"
)

type recorder struct {
	mu    sync.Mutex
	names []string
	fail  string
}

func (r *recorder) Upload(_ context.Context, name string, body io.Reader) error {
	if name == r.fail {
		return errors.New("denied")
	}
	if _, err := io.ReadAll(body); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return nil
}

func (r *recorder) String() string {
	return "recorder"
}

func TestParseDestination(t *testing.T) {
	dest, err := ParseDestination("gs://grid-data/exports/latest/")
	require.NoError(t, err)
	assert.Equal(t, Destination{Scheme: "gs", Bucket: "grid-data", Prefix: "exports/latest"}, dest)
	assert.Equal(t, "exports/latest/country-yearly.json", dest.Key("country-yearly.json"))
	assert.Equal(t, "gs://grid-data/exports/latest", dest.String())

	dest, err = ParseDestination("s3://grid-data")
	require.NoError(t, err)
	assert.Equal(t, "manifest.json", dest.Key("manifest.json"))

	for _, raw := range []string{"ftp://grid-data", "s3://", "/local/dir", "gs://%zz"} {
		_, err := ParseDestination(raw)
		assert.Error(t, err, raw)
	}
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFiles("a.json", "b.csv", "c.xlsx", export.ManifestName)(dir))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ignored"), 0o755))

	uploader := new(recorder)
	n, err := Upload(t.Context(), dir, uploader)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	require.Len(t, uploader.names, 4)
	assert.ElementsMatch(t, []string{"a.json", "b.csv", "c.xlsx"}, uploader.names[:3])
	assert.Equal(t, export.ManifestName, uploader.names[3])
}

func TestUploadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFiles("a.json", export.ManifestName)(dir))

	uploader := &recorder{fail: "a.json"}
	_, err := Upload(t.Context(), dir, uploader)
	assert.ErrorContains(t, err, "a.json")
	assert.NotContains(t, uploader.names, export.ManifestName)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("manifest.json"))
	assert.Equal(t, "text/csv; charset=utf-8", contentType("world-yearly.csv"))
	assert.Equal(t, "application/octet-stream", contentType("README"))
}

func TestS3Upload(t *testing.T) {
	var (
		mu      sync.Mutex
		objects = make(map[string]string)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		objects[r.Method+" "+r.URL.Path] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	require.NoError(t, writeFiles("world-yearly.json")(dir))

	uploader, err := New(t.Context(), "s3://grid-data/latest",
		WithAWSConfig(aws.Config{
			Region:      "eu-west-3",
			Credentials: credentials.NewStaticCredentialsProvider("key", "secret", ""),
		}),
		WithAWSRegion("eu-west-3"),
		WithAWSEndpoint(server.URL),
	)
	require.NoError(t, err)
	assert.Equal(t, "s3://grid-data/latest", uploader.String())

	n, err := Upload(t.Context(), dir, uploader)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Contains(t, objects, "PUT /grid-data/latest/world-yearly.json")
	assert.Contains(t, objects["PUT /grid-data/latest/world-yearly.json"], "world-yearly.json")
}

func TestNewGCS(t *testing.T) {
	uploader, err := New(t.Context(), "gs://grid-data/latest", WithGCSOptions(option.WithoutAuthentication()))
	require.NoError(t, err)
	assert.Equal(t, "gs://grid-data/latest", uploader.String())

	gcs, ok := uploader.(*GCS)
	require.True(t, ok)
	assert.NoError(t, gcs.Close())
}
