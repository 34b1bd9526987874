package mrms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/jonboulle/clockwork"
)

// maxSnapshotBytes bounds a single download. The CONUS file is a few MB.
const maxSnapshotBytes = 64 << 20

// The upstream rejects some non-browser clients, so requests identify as one.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptHeader   = "application/gzip, application/octet-stream, */*"
	acceptEncoding = "gzip, deflate"
)

// Client downloads the latest MRMS reflectivity snapshot.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient creates an MRMS client for the given "latest" file URL.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
	}
}

// URL returns the snapshot URL the client fetches.
func (c *Client) URL() string {
	return c.url
}

// FetchLatest performs one GET of the snapshot file. It does not retry.
func (c *Client) FetchLatest(ctx context.Context) (domain.RawSnapshot, error) {
	start := c.clock.Now()
	snap, err := c.fetch(ctx)
	c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.RawSnapshot{}, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.metrics.FetchBytes.Observe(float64(len(snap.Data)))
	return snap, nil
}

func (c *Client) fetch(ctx context.Context) (domain.RawSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RawSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Connection", "keep-alive")

	c.logger.Debug("fetching mrms snapshot", "url", c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawSnapshot{}, fmt.Errorf("mrms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RawSnapshot{}, fmt.Errorf("mrms error: status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return domain.RawSnapshot{}, fmt.Errorf("read snapshot body: %w", err)
	}
	if len(data) > maxSnapshotBytes {
		return domain.RawSnapshot{}, fmt.Errorf("snapshot exceeds %d bytes", maxSnapshotBytes)
	}

	c.logger.Info("fetched mrms snapshot",
		"url", c.url,
		"bytes", len(data),
		"content_length", resp.Header.Get("Content-Length"),
	)

	return domain.RawSnapshot{
		URL:       c.url,
		FileName:  domain.FileNameFromURL(c.url),
		Data:      data,
		FetchedAt: c.clock.Now().UTC(),
	}, nil
}
