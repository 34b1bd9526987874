//go:build mrms

package mrms

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar/internal/config"
	"github.com/couchcryptid/storm-radar/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test downloads the real MRMS latest file.
// Run with: go test -tags=mrms ./internal/adapter/mrms/ -v -count=1

func TestSmoke_FetchLatest(t *testing.T) {
	c := NewClient(config.DefaultMRMSURL, 30*time.Second, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	snap, err := c.FetchLatest(context.Background())
	require.NoError(t, err)

	assert.Greater(t, len(snap.Data), 1000)
	// gzip magic number
	assert.Equal(t, byte(0x1f), snap.Data[0])
	assert.Equal(t, byte(0x8b), snap.Data[1])
}
