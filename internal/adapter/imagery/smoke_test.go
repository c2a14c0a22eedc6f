//go:build imagery

package imagery

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a real imagery provider and require IMAGERY_API_URL and
// IMAGERY_API_KEY.
// Run with: go test -tags=imagery ./internal/adapter/imagery/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	baseURL, key := os.Getenv("IMAGERY_API_URL"), os.Getenv("IMAGERY_API_KEY")
	if baseURL == "" || key == "" {
		t.Fatal("IMAGERY_API_URL and IMAGERY_API_KEY must be set to run smoke tests")
	}
	return NewClient(baseURL, key, 60*time.Second, testMetrics(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_WindowNDVI_Chevella(t *testing.T) {
	c := smokeClient(t)
	now := time.Now().UTC()

	stats, err := c.WindowNDVI(context.Background(), domain.WindowQuery{
		Region:      domain.CircleRegion(17.2, 78.1, 250, 32),
		Center:      domain.Geo{Lat: 17.2, Lon: 78.1},
		RadiusM:     250,
		From:        now.AddDate(0, 0, -90),
		To:          now,
		MaxCloudPct: 20,
	})
	require.NoError(t, err)

	// A 90-day window over the Deccan plateau always has Sentinel-2 passes.
	assert.Positive(t, stats.SceneCount)
	if stats.NDVI != nil {
		assert.GreaterOrEqual(t, *stats.NDVI, -1.0)
		assert.LessOrEqual(t, *stats.NDVI, 1.0)
	}
}
