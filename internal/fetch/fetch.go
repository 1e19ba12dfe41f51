// Package fetch retrieves provider feeds over HTTP.
package fetch

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/superdango/grid-impact/internal/must"
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for responses other than 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for url %s", e.StatusCode, e.URL)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type ClientOption func(c *Client)

// WithDoer sets the HTTP client used to send requests.
func WithDoer(doer Doer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithRetries retries requests failing with a 429 or 5xx status up to
// retries times, waiting linearly longer between attempts.
func WithRetries(retries int, step time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = retries
		c.step = step
	}
}

// Client downloads feeds. Transport errors are returned as is: callers abort.
type Client struct {
	doer    Doer
	retries int
	step    time.Duration
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		doer:    &http.Client{Timeout: 10 * time.Minute},
		retries: 3,
		step:    2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Open sends a GET request to url and returns the response body, which the
// caller must close.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	wait := must.NewWait(c.step, 30*time.Second)
	for attempt := 0; ; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}

		statusErr := new(StatusError)
		if !errors.As(err, &statusErr) || !statusErr.retryable() || attempt >= c.retries {
			return nil, err
		}

		slog.Warn("retrying request", "url", url, "status", statusErr.StatusCode, "attempt", attempt+1)
		if err := wait.Linearly(ctx); err != nil {
			return nil, err
		}
	}
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request for url %s: %w", url, err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request for url %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

// Scrape downloads page and returns the first link matching pattern,
// resolved against the page URL.
func (c *Client) Scrape(ctx context.Context, page string, pattern *regexp.Regexp) (string, error) {
	body, err := c.Open(ctx, page)
	if err != nil {
		return "", err
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", page, err)
	}

	match := pattern.Find(content)
	if match == nil {
		return "", fmt.Errorf("no link matching %s found in page %s", pattern, page)
	}

	base, err := url.Parse(page)
	if err != nil {
		return "", err
	}
	link, err := base.Parse(string(match))
	if err != nil {
		return "", fmt.Errorf("invalid link %q in page %s: %w", match, page, err)
	}

	return link.String(), nil
}

// ZipEntry downloads the archive at url and returns the content of the named
// entry. The archive is buffered in a temporary file removed on Close.
func (c *Client) ZipEntry(ctx context.Context, url string, name string) (io.ReadCloser, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "feed-*.zip")
	if err != nil {
		return nil, err
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	size, err := io.Copy(tmp, body)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to download archive %s: %w", url, err)
	}

	archive, err := zip.NewReader(tmp, size)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open archive %s: %w", url, err)
	}

	entry, err := archive.Open(name)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open %s in archive %s: %w", name, url, err)
	}

	return &zipEntry{ReadCloser: entry, cleanup: cleanup}, nil
}

type zipEntry struct {
	io.ReadCloser
	cleanup func()
}

func (e *zipEntry) Close() error {
	err := e.ReadCloser.Close()
	e.cleanup()
	return err
}

// GetJSON decodes the JSON document at url into T.
func GetJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	var data T

	body, err := c.Open(ctx, url)
	if err != nil {
		return data, err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&data); err != nil {
		return data, fmt.Errorf("failed to unmarshal HTTP response body for url %s: %w", url, err)
	}

	return data, nil
}
