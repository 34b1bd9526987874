package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	refreshKey            = "snapshot"
	defaultPublishTimeout = 10 * time.Second
)

// SnapshotFetcher downloads the latest upstream snapshot.
type SnapshotFetcher interface {
	FetchLatest(ctx context.Context) (domain.RawSnapshot, error)
}

// Publisher announces a refreshed snapshot downstream.
type Publisher interface {
	PublishSnapshot(ctx context.Context, resp domain.Response) error
}

// Acquisition is what a refresh obtained: either upstream bytes that still
// need decoding, or a generated dataset when the upstream was unreachable.
type Acquisition struct {
	SourceURL string
	Payload   []byte
	Dataset   domain.Dataset
	remote    bool
}

// Remote reports whether Payload came from the upstream.
func (a Acquisition) Remote() bool {
	return a.remote
}

// Options configures a Pipeline. Zero values are valid.
type Options struct {
	// UpstreamHost marks source URLs that count as MRMS data.
	UpstreamHost string
	// Publisher, when set, receives every refreshed snapshot asynchronously.
	Publisher      Publisher
	PublishTimeout time.Duration
	Clock          clockwork.Clock
}

// Pipeline serves cached snapshots and refreshes them on demand.
type Pipeline struct {
	fetcher   SnapshotFetcher
	decoder   *Decoder
	grid      Generator
	cache     *Cache
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	upstreamHost   string
	publishTimeout time.Duration

	group     singleflight.Group
	ready     atomic.Bool
	publishes sync.WaitGroup
}

// New creates a Pipeline. grid produces the dataset used when the upstream
// cannot be reached and for the error fallback body.
func New(f SnapshotFetcher, d *Decoder, grid Generator, cache *Cache, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := opts.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Pipeline{
		fetcher:        f,
		decoder:        d,
		grid:           grid,
		cache:          cache,
		publisher:      opts.Publisher,
		clock:          clock,
		logger:         logger,
		metrics:        metrics,
		upstreamHost:   opts.UpstreamHost,
		publishTimeout: timeout,
	}
}

// CheckReadiness returns nil once a snapshot has been cached.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no radar snapshot has been cached yet")
	}
	return nil
}

// Snapshot returns the cached snapshot, refreshing it first when it is stale.
// Concurrent callers that find the cache stale share one refresh. The refresh
// is not cancelled when a caller goes away.
func (p *Pipeline) Snapshot(ctx context.Context) (*Entry, error) {
	if e, ok := p.cache.Fresh(); ok {
		p.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return e, nil
	}
	p.metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, shared := p.group.Do(refreshKey, func() (_ any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("refresh panic: %v", r)
			}
		}()
		// A flight that finished between the check above and Do already stored one.
		if e, ok := p.cache.Fresh(); ok {
			return e, nil
		}
		return p.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		p.metrics.SharedRefresh.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// Fallback generates a dataset for answering a query whose refresh failed.
func (p *Pipeline) Fallback() domain.Dataset {
	return p.grid.Generate()
}

// Wait blocks until in-flight snapshot publishes finish or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.publishes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) refresh(ctx context.Context) (*Entry, error) {
	now := p.clock.Now().UTC()

	acq := p.acquire(ctx)
	ds := acq.Dataset
	if acq.Remote() {
		var outcome DecodeOutcome
		ds, outcome = p.decoder.Decode(ctx, acq.Payload)
		p.logger.Debug("decoded snapshot", "outcome", outcome, "points", len(ds.Points))
	}

	resp, err := domain.NewResponse(ds, domain.ResponseOptions{
		SourceURL:    acq.SourceURL,
		UpstreamHost: p.upstreamHost,
		GeneratedAt:  now,
		TTL:          p.cache.TTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("build radar response: %w", err)
	}

	entry := p.cache.Store(resp, now)
	p.ready.Store(true)
	p.metrics.Refreshes.Inc()
	p.metrics.SnapshotPoints.Set(float64(resp.Metadata.TotalPoints))
	p.logger.Info("radar snapshot refreshed",
		"data_source", resp.Metadata.DataSource,
		"source_url", resp.Metadata.SourceURL,
		"kind", ds.Kind,
		"points", resp.Metadata.TotalPoints,
		"payload_bytes", len(acq.Payload),
		"expires_at", resp.Metadata.CacheExpiresAt,
	)

	p.publish(resp)
	return entry, nil
}

// acquire never fails: an unreachable upstream yields the grid dataset.
func (p *Pipeline) acquire(ctx context.Context) Acquisition {
	snap, err := p.fetcher.FetchLatest(ctx)
	if err != nil {
		p.logger.Warn("mrms fetch failed, using generated sample", "error", err)
		return Acquisition{
			SourceURL: domain.FallbackSourceURL,
			Dataset:   p.grid.Generate(),
		}
	}
	return Acquisition{SourceURL: snap.URL, Payload: snap.Data, remote: true}
}

func (p *Pipeline) publish(resp domain.Response) {
	if p.publisher == nil {
		return
	}
	p.publishes.Add(1)
	go func() {
		defer p.publishes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
		defer cancel()

		if err := p.publisher.PublishSnapshot(ctx, resp); err != nil {
			p.logger.Warn("publish snapshot event failed", "error", err)
			p.metrics.SnapshotEvents.WithLabelValues("error").Inc()
			return
		}
		p.metrics.SnapshotEvents.WithLabelValues("success").Inc()
	}()
}
