package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// SatelliteConfig tunes the satellite tier.
type SatelliteConfig struct {
	BufferMPerHa   float64 // region radius per hectare of field
	MinRadiusM     float64
	MaxCloudPct    float64
	RegionSegments int
}

// DefaultSatelliteConfig mirrors the values the estimator was calibrated with.
func DefaultSatelliteConfig() SatelliteConfig {
	return SatelliteConfig{
		BufferMPerHa:   50,
		MinRadiusM:     10,
		MaxCloudPct:    20,
		RegionSegments: 32,
	}
}

// Acquisition windows, as offsets back from now.
const (
	beforeWindowStart  = 90 * 24 * time.Hour
	beforeWindowEnd    = 60 * 24 * time.Hour
	currentWindowStart = 30 * 24 * time.Hour
)

const (
	baseSatelliteConfidence = 70.0
	confidencePerScene      = 5.0
	maxSatelliteConfidence  = 95.0
)

// Satellite estimates loss from before/current NDVI windows served by an
// imagery provider. It never retries.
type Satellite struct {
	provider domain.ImageryProvider
	cfg      SatelliteConfig
	logger   *slog.Logger
}

// NewSatellite creates the satellite tier. A nil provider makes the tier
// report ErrImageryUnavailable on every call.
func NewSatellite(provider domain.ImageryProvider, cfg SatelliteConfig, logger *slog.Logger) *Satellite {
	def := DefaultSatelliteConfig()
	if cfg.BufferMPerHa <= 0 {
		cfg.BufferMPerHa = def.BufferMPerHa
	}
	if cfg.MinRadiusM <= 0 {
		cfg.MinRadiusM = def.MinRadiusM
	}
	if cfg.MaxCloudPct <= 0 {
		cfg.MaxCloudPct = def.MaxCloudPct
	}
	if cfg.RegionSegments <= 0 {
		cfg.RegionSegments = def.RegionSegments
	}
	return &Satellite{provider: provider, cfg: cfg, logger: logger}
}

// Available reports whether an imagery provider is configured.
func (s *Satellite) Available() bool { return s.provider != nil }

// Estimate implements domain.Estimator.
func (s *Satellite) Estimate(ctx context.Context, req domain.EstimateRequest) (domain.CropLossEstimate, error) {
	if s.provider == nil {
		return domain.CropLossEstimate{}, fmt.Errorf("%w: provider not configured", domain.ErrImageryUnavailable)
	}

	now := domain.Now()
	radius := s.RadiusM(req.FieldArea)
	region := domain.CircleRegion(req.Latitude, req.Longitude, radius, s.cfg.RegionSegments)
	center := domain.Geo{Lat: req.Latitude, Lon: req.Longitude}

	beforeFrom, beforeTo := now.Add(-beforeWindowStart), now.Add(-beforeWindowEnd)
	currentFrom := now.Add(-currentWindowStart)

	before, err := s.window(ctx, "before", domain.WindowQuery{
		Region: region, Center: center, RadiusM: radius,
		From: beforeFrom, To: beforeTo, MaxCloudPct: s.cfg.MaxCloudPct,
	})
	if err != nil {
		return domain.CropLossEstimate{}, err
	}
	current, err := s.window(ctx, "current", domain.WindowQuery{
		Region: region, Center: center, RadiusM: radius,
		From: currentFrom, To: now, MaxCloudPct: s.cfg.MaxCloudPct,
	})
	if err != nil {
		return domain.CropLossEstimate{}, err
	}

	ndviBefore, ndviCurrent := *before.NDVI, *current.NDVI
	loss := domain.NDVIDecline(ndviBefore, ndviCurrent)

	s.logger.Debug("satellite windows resolved",
		"lat", req.Latitude,
		"lon", req.Longitude,
		"radius_m", radius,
		"before_scenes", before.SceneCount,
		"current_scenes", current.SceneCount,
	)

	est := domain.NewEstimate(domain.EstimateParams{
		Source:         domain.SourceSatellite,
		CropType:       req.CropType,
		FieldArea:      req.FieldArea,
		LossPercentage: loss,
		Confidence:     satelliteConfidence(before.SceneCount, current.SceneCount),
		DamageCause:    satelliteCause(loss, ndviCurrent),
		NDVIBefore:     domain.Float(ndviBefore),
		NDVICurrent:    domain.Float(ndviCurrent),
	})
	est.SatelliteImages = &domain.ImagePair{Before: before.ThumbnailURL, Current: current.ThumbnailURL}
	est.AcquisitionDates = &domain.ImagePair{
		Before:  beforeFrom.Format(time.DateOnly),
		Current: currentFrom.Format(time.DateOnly),
	}
	return est, nil
}

// RadiusM returns the analysis radius in metres for a field area in hectares.
func (s *Satellite) RadiusM(fieldArea float64) float64 {
	return math.Max(fieldArea*s.cfg.BufferMPerHa, s.cfg.MinRadiusM)
}

func (s *Satellite) window(ctx context.Context, name string, q domain.WindowQuery) (domain.WindowStats, error) {
	stats, err := s.provider.WindowNDVI(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrImageryUnavailable) {
			return domain.WindowStats{}, fmt.Errorf("%s window: %w", name, err)
		}
		return domain.WindowStats{}, fmt.Errorf("%w: %s window: %w", domain.ErrImageryUnavailable, name, err)
	}
	if stats.SceneCount == 0 {
		return domain.WindowStats{}, fmt.Errorf("%w: no scenes in %s window", domain.ErrImageryUnavailable, name)
	}
	if stats.NDVI == nil {
		return domain.WindowStats{}, fmt.Errorf("%w: no NDVI value for %s window", domain.ErrImageryUnavailable, name)
	}
	return stats, nil
}

// satelliteConfidence grows with scene density and caps at 95.
func satelliteConfidence(beforeScenes, currentScenes int) float64 {
	c := baseSatelliteConfidence + confidencePerScene*float64(beforeScenes+currentScenes)
	return math.Min(c, maxSatelliteConfidence)
}

// satelliteCause classifies heavy loss by how low the current NDVI has fallen.
func satelliteCause(loss, ndviCurrent float64) domain.DamageCause {
	switch {
	case loss > 40 && ndviCurrent < 0.2:
		return domain.CauseSevereDrought
	case loss > 40 && ndviCurrent < 0.3:
		return domain.CausePestDisease
	case loss > 40:
		return domain.CauseWeatherDamage
	case loss > 20:
		return domain.CauseModerateStress
	default:
		return domain.CauseUnknown
	}
}
