package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/jonboulle/clockwork"
)

var testNow = time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC)

const (
	testUpstreamHost = "mrms.ncep.noaa.gov"
	testURL          = "https://mrms.ncep.noaa.gov/2D/ReflectivityAtLowestAltitude/MRMS_ReflectivityAtLowestAltitude.latest.grib2.gz"
)

// fixedSource pins model noise.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// loudNoise keeps enough grid points above the clear-air floor to be non-empty.
const loudNoise = fixedSource(0.9999)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	data    []byte
	err     error
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func (s *stubFetcher) FetchLatest(ctx context.Context) (domain.RawSnapshot, error) {
	if s.calls.Add(1) == 1 && s.entered != nil {
		close(s.entered)
	}
	if s.release != nil {
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		s.ctxErr.Store(err)
	}
	if s.err != nil {
		return domain.RawSnapshot{}, s.err
	}
	return domain.RawSnapshot{
		URL:       testURL,
		FileName:  domain.FileNameFromURL(testURL),
		Data:      s.data,
		FetchedAt: testNow,
	}, nil
}

type stubResolver struct {
	mu   sync.Mutex
	got  []byte
	ds   domain.Dataset
	err  error
	boom bool
}

func (r *stubResolver) Resolve(_ context.Context, data []byte) (domain.Dataset, error) {
	r.mu.Lock()
	r.got = data
	r.mu.Unlock()
	if r.boom {
		panic("bad grib")
	}
	return r.ds, r.err
}

type stubPublisher struct {
	mu   sync.Mutex
	got  []domain.Response
	err  error
	errs int
}

func (p *stubPublisher) PublishSnapshot(_ context.Context, resp domain.Response) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		p.errs++
		return p.err
	}
	p.got = append(p.got, resp)
	return nil
}

func (p *stubPublisher) published() []domain.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Response(nil), p.got...)
}

var errUpstream = errors.New("mrms error: status 503")

type fixture struct {
	clock    *clockwork.FakeClock
	metrics  *observability.Metrics
	fetcher  *stubFetcher
	pipeline *Pipeline
}

func newFixture(fetcher *stubFetcher, resolver Resolver, opts Options) *fixture {
	clock := clockwork.NewFakeClockAt(testNow)
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	grid := domain.NewGridGenerator(domain.NewModel(loudNoise), domain.DefaultStride, clock)
	random := domain.NewRandomGenerator(domain.NewLockedRand(7), clock)
	if resolver == nil {
		resolver = ProceduralResolver{Grid: grid}
	}
	decoder := NewDecoder(resolver, random, logger, metrics)

	opts.Clock = clock
	if opts.UpstreamHost == "" {
		opts.UpstreamHost = testUpstreamHost
	}
	p := New(fetcher, decoder, grid, NewCache(5*time.Minute, clock), logger, metrics, opts)
	return &fixture{clock: clock, metrics: metrics, fetcher: fetcher, pipeline: p}
}
