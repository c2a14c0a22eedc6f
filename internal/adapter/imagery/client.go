package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Sentinel-2 processing parameters sent with every window request.
const (
	maskBand        = "QA60"
	nirBand         = "B8"
	redBand         = "B4"
	temporalReducer = "median"
	spatialReducer  = "mean"
	scaleMetres     = 10
)

var cloudMaskBits = []int{10, 11} // opaque clouds, cirrus

// Client implements domain.ImageryProvider against an NDVI statistics API.
// The API key is injected at construction; the client never retries.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an imagery provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// WindowNDVI requests the regional mean of the per-pixel median NDVI over
// the cloud-filtered scenes of one window.
func (c *Client) WindowNDVI(ctx context.Context, q domain.WindowQuery) (domain.WindowStats, error) {
	if q.Region == nil {
		return domain.WindowStats{}, fmt.Errorf("%w: window query has no region", domain.ErrImageryUnavailable)
	}
	geometry, err := geojson.Encode(q.Region)
	if err != nil {
		return domain.WindowStats{}, fmt.Errorf("encode region: %w", err)
	}

	body, err := json.Marshal(statisticsRequest{
		Geometry:        geometry,
		From:            q.From.UTC().Format(time.DateOnly),
		To:              q.To.UTC().Format(time.DateOnly),
		MaxCloudPct:     q.MaxCloudPct,
		CloudMaskBits:   cloudMaskBits,
		MaskBand:        maskBand,
		NIRBand:         nirBand,
		RedBand:         redBand,
		TemporalReducer: temporalReducer,
		SpatialReducer:  spatialReducer,
		ScaleM:          scaleMetres,
	})
	if err != nil {
		return domain.WindowStats{}, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	stats, err := c.doRequest(ctx, body)
	c.metrics.ImageryAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.ImageryRequests.WithLabelValues("error").Inc()
		return domain.WindowStats{}, err
	case stats.SceneCount == 0 || stats.NDVI == nil:
		c.metrics.ImageryRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.ImageryRequests.WithLabelValues("success").Inc()
	}

	c.logger.Debug("imagery window resolved",
		"from", q.From.Format(time.DateOnly),
		"to", q.To.Format(time.DateOnly),
		"scenes", stats.SceneCount,
		"has_ndvi", stats.NDVI != nil,
	)
	return stats, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (domain.WindowStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ndvi/statistics", bytes.NewReader(body))
	if err != nil {
		return domain.WindowStats{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WindowStats{}, fmt.Errorf("ndvi statistics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.WindowStats{}, fmt.Errorf("imagery API error: status %d: %s", resp.StatusCode, msg)
	}

	var out statisticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.WindowStats{}, fmt.Errorf("decode response: %w", err)
	}
	return domain.WindowStats{
		NDVI:         out.NDVI,
		SceneCount:   out.SceneCount,
		ThumbnailURL: out.ThumbnailURL,
	}, nil
}

// Imagery API wire types.

type statisticsRequest struct {
	Geometry        *geojson.Geometry `json:"geometry"`
	From            string            `json:"from"`
	To              string            `json:"to"`
	MaxCloudPct     float64           `json:"max_cloud_pct"`
	CloudMaskBits   []int             `json:"cloud_mask_bits"`
	MaskBand        string            `json:"mask_band"`
	NIRBand         string            `json:"nir_band"`
	RedBand         string            `json:"red_band"`
	TemporalReducer string            `json:"temporal_reducer"`
	SpatialReducer  string            `json:"spatial_reducer"`
	ScaleM          int               `json:"scale_m"`
}

type statisticsResponse struct {
	SceneCount   int      `json:"scene_count"`
	NDVI         *float64 `json:"ndvi"` // null when every pixel was masked
	ThumbnailURL string   `json:"thumbnail_url"`
}
