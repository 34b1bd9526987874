package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/storm-radar/internal/domain"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/klauspost/compress/gzip"
)

const (
	// Payloads at or below this size are not worth decompressing.
	minCompressedBytes = 1000
	maxInflatedBytes   = 512 << 20
)

// Resolver turns snapshot bytes into a dataset. It is the seam where a real
// GRIB2 decoder would plug in.
type Resolver interface {
	Resolve(ctx context.Context, data []byte) (domain.Dataset, error)
}

// Generator produces a dataset without any input.
type Generator interface {
	Generate() domain.Dataset
}

// ProceduralResolver ignores the snapshot bytes and returns the grid model's output.
type ProceduralResolver struct {
	Grid Generator
}

func (r ProceduralResolver) Resolve(_ context.Context, _ []byte) (domain.Dataset, error) {
	return r.Grid.Generate(), nil
}

// DecodeOutcome tells the caller which tier produced a decoded dataset.
type DecodeOutcome int

const (
	DecodeResolved DecodeOutcome = iota
	DecodeFallback
)

func (o DecodeOutcome) String() string {
	if o == DecodeFallback {
		return "fallback"
	}
	return "resolved"
}

// Decoder inflates snapshot payloads and hands them to a Resolver, falling
// back to the random generator when resolution fails.
type Decoder struct {
	resolver Resolver
	fallback Generator
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewDecoder creates a Decoder.
func NewDecoder(resolver Resolver, fallback Generator, logger *slog.Logger, metrics *observability.Metrics) *Decoder {
	return &Decoder{
		resolver: resolver,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// Decode never fails: a resolver error or panic yields the fallback dataset.
func (d *Decoder) Decode(ctx context.Context, payload []byte) (domain.Dataset, DecodeOutcome) {
	data := payload
	if len(payload) > minCompressedBytes {
		inflated, err := inflate(payload)
		if err != nil {
			d.logger.Debug("snapshot is not gzip, using raw bytes", "bytes", len(payload), "error", err)
		} else {
			d.logger.Debug("inflated snapshot", "compressed_bytes", len(payload), "bytes", len(inflated))
			data = inflated
		}
	}

	ds, err := d.resolve(ctx, data)
	if err != nil {
		d.logger.Warn("decode failed, using random sample", "bytes", len(data), "error", err)
		d.metrics.DecodeFallbacks.Inc()
		return d.fallback.Generate(), DecodeFallback
	}
	return ds, DecodeResolved
}

func (d *Decoder) resolve(ctx context.Context, data []byte) (ds domain.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panic: %v", r)
		}
	}()
	return d.resolver.Resolve(ctx, data)
}

func inflate(payload []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflatedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) > maxInflatedBytes {
		return nil, fmt.Errorf("inflated snapshot exceeds %d bytes", maxInflatedBytes)
	}
	return out, nil
}
