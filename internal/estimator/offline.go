package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// UnknownVillagePolicy decides how villages missing from the coordinate table
// take part in the nearest-village search.
type UnknownVillagePolicy string

const (
	// UnknownVillageOrigin places unknown villages at (0, 0). This is the
	// historical behaviour and biases the search toward such villages from
	// query points near the origin; every use is logged.
	UnknownVillageOrigin UnknownVillagePolicy = "origin"
	// UnknownVillageSkip excludes unknown villages from the search.
	UnknownVillageSkip UnknownVillagePolicy = "skip"
)

const (
	healthyNDVIThreshold  = 0.6
	baseOfflineConfidence = 80.0
)

// OfflineConfig tunes the offline matcher.
type OfflineConfig struct {
	WindowDays     int
	UnknownVillage UnknownVillagePolicy
}

// Offline matches a query point to the nearest village record of the
// historical dataset.
type Offline struct {
	source domain.HistoricalSource
	cfg    OfflineConfig
	logger *slog.Logger
}

// NewOffline creates the offline tier. WindowDays defaults to 7 and the
// unknown-village policy to UnknownVillageOrigin.
func NewOffline(source domain.HistoricalSource, cfg OfflineConfig, logger *slog.Logger) *Offline {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if cfg.UnknownVillage == "" {
		cfg.UnknownVillage = UnknownVillageOrigin
	}
	return &Offline{source: source, cfg: cfg, logger: logger}
}

// Estimate loads the dataset and matches against it with "now" as the reference date.
func (o *Offline) Estimate(ctx context.Context, req domain.EstimateRequest) (domain.CropLossEstimate, error) {
	if o.source == nil {
		return domain.CropLossEstimate{}, fmt.Errorf("%w: no historical dataset configured", domain.ErrNoHistoricalMatch)
	}
	records, err := o.source.Records(ctx)
	if err != nil {
		return domain.CropLossEstimate{}, fmt.Errorf("load historical records: %w", err)
	}
	return o.EstimateAt(req, domain.Now(), records)
}

// EstimateAt matches the request against records as of the given date.
// Only the calendar day of asOf matters.
func (o *Offline) EstimateAt(req domain.EstimateRequest, asOf time.Time, records []domain.HistoricalRecord) (domain.CropLossEstimate, error) {
	asOf = startOfDay(asOf)
	rec, err := o.Match(req.Latitude, req.Longitude, req.CropType, asOf, records)
	if err != nil {
		return domain.CropLossEstimate{}, err
	}

	loss := offlineLoss(rec)
	est := domain.NewEstimate(domain.EstimateParams{
		Source:         domain.SourceOffline,
		CropType:       req.CropType,
		FieldArea:      req.FieldArea,
		LossPercentage: loss,
		Confidence:     baseOfflineConfidence + (5 - math.Abs(float64(daysBetween(asOf, rec.Date)))),
		DamageCause:    offlineCause(loss),
		NDVIValue:      domain.Float(rec.NDVI),
	})
	est.Location = rec.Village
	est.Date = rec.Date.Format(domain.HistoricalDateLayout)
	return est, nil
}

// Match returns the record nearest to (lat, lon) among those whose crop
// matches case-insensitively and whose date lies within the window around
// asOf. Ties keep the first record in input order.
func (o *Offline) Match(lat, lon float64, cropType string, asOf time.Time, records []domain.HistoricalRecord) (domain.HistoricalRecord, error) {
	asOf = startOfDay(asOf)
	from, to := asOf.AddDate(0, 0, -o.cfg.WindowDays), asOf.AddDate(0, 0, o.cfg.WindowDays)

	var (
		best     domain.HistoricalRecord
		bestDist = math.Inf(1)
		found    bool
	)
	for _, rec := range records {
		if !strings.EqualFold(strings.TrimSpace(rec.CropVariety), strings.TrimSpace(cropType)) {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}

		coord, ok := domain.VillageCoordinate(rec.Village)
		if !ok {
			if o.cfg.UnknownVillage == UnknownVillageSkip {
				o.logger.Debug("skipping village without coordinates", "village", rec.Village)
				continue
			}
			o.logger.Warn("village has no coordinates, using (0,0)", "village", rec.Village)
		}

		d := domain.Distance(lat, lon, coord.Lat, coord.Lon)
		if d < bestDist {
			best, bestDist, found = rec, d, true
		}
	}

	if !found {
		return domain.HistoricalRecord{}, fmt.Errorf("%w: crop %q within %d days of %s",
			domain.ErrNoHistoricalMatch, cropType, o.cfg.WindowDays, asOf.Format(time.DateOnly))
	}
	return best, nil
}

// offlineLoss compares NDVI with the healthy threshold and adds weather penalties.
func offlineLoss(rec domain.HistoricalRecord) float64 {
	loss := math.Max(0, (healthyNDVIThreshold-rec.NDVI)/healthyNDVIThreshold*100)
	if rec.TempMaxC > 35 {
		loss += 5
	}
	if rec.RainfallMM < 10 {
		loss += 5
	}
	if rec.HumidityPct < 30 {
		loss += 3
	}
	return math.Min(loss, 100)
}

func offlineCause(loss float64) domain.DamageCause {
	switch {
	case loss > 40:
		return domain.CauseSevereStress
	case loss > 25:
		return domain.CauseModerateStress
	case loss > 10:
		return domain.CauseMinorStress
	default:
		return domain.CauseHealthy
	}
}

// daysBetween returns whole days from b to a, floored.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(a.Sub(b).Hours() / 24))
}

// startOfDay returns the UTC calendar day of t as midnight, matching how dataset dates are parsed.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
