// Package api fetches the catalog, record details and the FAQ over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"herbar/client/internal/catalog"
	"herbar/client/internal/faq"
	"herbar/client/internal/metrics"
)

var (
	// ErrFetch matches every data-fetch failure.
	ErrFetch   = errors.New("fetch failed")
	ErrStatus  = fmt.Errorf("%w: unexpected status", ErrFetch)
	ErrShape   = fmt.Errorf("%w: unexpected response shape", ErrFetch)
	ErrTimeout = fmt.Errorf("%w: timed out", ErrFetch)
)

const maxBody = 8 << 20

type Options struct {
	Timeout time.Duration
	Retries int
	// Backoff is the delay before the first retry; retry n waits n*Backoff.
	Backoff         time.Duration
	DetailCacheSize int
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// Client implements catalog.Fetcher and faq.Loader against the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	details    *lru.Cache[int, catalog.Detail]
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.DetailCacheSize <= 0 {
		opts.DetailCacheSize = 256
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cache, err := lru.New[int, catalog.Detail](opts.DetailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("detail cache: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		retries:    opts.Retries,
		backoff:    opts.Backoff,
		details:    cache,
		logger:     opts.Logger,
		sleep:      sleepCtx,
	}, nil
}

// FetchAll returns the summary records.
func (c *Client) FetchAll(ctx context.Context) ([]catalog.Record, error) {
	var records []catalog.Record
	if err := c.getJSON(ctx, "fetch_all", "/plants", '[', &records); err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.ID <= 0 || strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: record %d has no id or name", ErrShape, i)
		}
	}
	return records, nil
}

// FetchDetail returns the detail fields of record id, from cache when seen.
func (c *Client) FetchDetail(ctx context.Context, id int) (catalog.Detail, error) {
	if d, ok := c.details.Get(id); ok {
		return d, nil
	}
	var detail catalog.Detail
	if err := c.getJSON(ctx, "fetch_detail", "/plants/"+strconv.Itoa(id), '{', &detail); err != nil {
		return catalog.Detail{}, err
	}
	if detail.Empty() {
		return catalog.Detail{}, fmt.Errorf("%w: empty detail for record %d", ErrShape, id)
	}
	c.details.Add(id, detail)
	return detail, nil
}

// Forget drops the cached detail of id.
func (c *Client) Forget(id int) {
	c.details.Remove(id)
}

// FetchFAQ returns the FAQ document.
func (c *Client) FetchFAQ(ctx context.Context) (faq.Content, error) {
	var content faq.Content
	if err := c.getJSON(ctx, "fetch_faq", "/faq", '{', &content); err != nil {
		return faq.Content{}, err
	}
	if err := content.Validate(); err != nil {
		return faq.Content{}, fmt.Errorf("%w: %v", ErrShape, err)
	}
	return content, nil
}

// Load implements faq.Loader.
func (c *Client) Load(ctx context.Context) (faq.Content, error) {
	return c.FetchFAQ(ctx)
}

// getJSON fetches path and decodes it into out. The body must start with
// the opening delimiter of the expected JSON value.
func (c *Client) getJSON(ctx context.Context, op, path string, open byte, out any) error {
	start := time.Now()
	body, err := c.getWithRetry(ctx, op, path)
	status := "ok"
	defer func() {
		metrics.FetchDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	}()
	if err != nil {
		status = "error"
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != open {
		status = "error"
		return fmt.Errorf("%w: %s: expected %q", ErrShape, path, open)
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		status = "error"
		return fmt.Errorf("%w: %s: %v", ErrShape, path, err)
	}
	return nil
}

func (c *Client) getWithRetry(ctx context.Context, op, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.FetchRetries.WithLabelValues(op).Inc()
			c.logger.Warn("retrying fetch", "op", op, "attempt", attempt, "err", lastErr)
			if err := c.sleep(ctx, time.Duration(attempt)*c.backoff); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
			}
		}
		body, err := c.get(ctx, path)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

type statusError struct {
	code int
}

func (e statusError) Error() string { return "status " + strconv.Itoa(e.code) }

func retryable(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: GET %s after %s", ErrTimeout, path, c.timeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrFetch, path, err)
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%w: GET %s: %w", ErrStatus, path, statusError{code: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: reading %s", ErrTimeout, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetch, path, err)
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
