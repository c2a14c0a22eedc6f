package domain

import (
	"context"
	"time"

	"github.com/twpayne/go-geom"
)

// WindowQuery asks the imagery provider for NDVI statistics over a region
// and date window.
type WindowQuery struct {
	Region      *geom.Polygon
	Center      Geo
	RadiusM     float64
	From        time.Time
	To          time.Time
	MaxCloudPct float64
}

// WindowStats is the provider's answer for one window. NDVI is nil when no
// pixel survived masking.
type WindowStats struct {
	NDVI         *float64
	SceneCount   int
	ThumbnailURL string
}

// ImageryProvider filters a scene collection by date, region and cloud
// fraction, computes NDVI per scene, takes the per-pixel median over the
// window and reduces it to a regional mean.
type ImageryProvider interface {
	WindowNDVI(ctx context.Context, q WindowQuery) (WindowStats, error)
}
