package estimator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// DefaultSeedScale multiplies lat*lon to derive the simulation seed.
const DefaultSeedScale = 1000.0

const (
	simulatedBeforeOffset  = 75 * 24 * time.Hour
	simulatedCurrentOffset = 15 * 24 * time.Hour
)

var simulatedSevereCauses = []domain.DamageCause{
	domain.CauseSevereDrought,
	domain.CausePestDisease,
	domain.CauseWeatherDamage,
}

// Simulation produces deterministic synthetic estimates. It is the terminal
// tier of the chain and never fails.
type Simulation struct {
	seedScale float64
}

// NewSimulation creates a simulation tier. A non-positive seedScale uses DefaultSeedScale.
func NewSimulation(seedScale float64) *Simulation {
	if seedScale <= 0 {
		seedScale = DefaultSeedScale
	}
	return &Simulation{seedScale: seedScale}
}

// Estimate implements domain.Estimator. The error is always nil.
func (s *Simulation) Estimate(_ context.Context, req domain.EstimateRequest) (domain.CropLossEstimate, error) {
	return s.Simulate(req), nil
}

// Simulate returns the synthetic estimate for a request. Identical coordinates
// always yield identical NDVI, loss and confidence.
func (s *Simulation) Simulate(req domain.EstimateRequest) domain.CropLossEstimate {
	r := rand.New(rand.NewSource(s.seed(req.Latitude, req.Longitude))) //nolint:gosec // reproducible simulation

	baseLoss := domain.Uniform(r, 0, 60)
	loss := domain.Clamp(baseLoss+domain.Uniform(r, -10, 10), 0, 100)

	ndviBefore := domain.Uniform(r, 0.4, 0.8)
	var ndviCurrent float64
	if loss > 20 {
		ndviCurrent = ndviBefore * (1 - loss/100) * domain.Uniform(r, 0.8, 1.2)
	} else {
		ndviCurrent = ndviBefore * domain.Uniform(r, 0.9, 1.1)
	}
	ndviCurrent = domain.Clamp(ndviCurrent, 0.1, 0.9)

	confidence := domain.Uniform(r, 75, 95)

	cause := domain.CauseUnknown
	switch {
	case loss > 40:
		cause = simulatedSevereCauses[r.Intn(len(simulatedSevereCauses))]
	case loss > 20:
		cause = domain.CauseModerateStress
	}

	est := domain.NewEstimate(domain.EstimateParams{
		Source:         domain.SourceSimulation,
		CropType:       req.CropType,
		FieldArea:      req.FieldArea,
		LossPercentage: loss,
		Confidence:     confidence,
		DamageCause:    cause,
		NDVIBefore:     domain.Float(ndviBefore),
		NDVICurrent:    domain.Float(ndviCurrent),
	})

	now := domain.Now()
	before := now.Add(-simulatedBeforeOffset)
	current := now.Add(-simulatedCurrentOffset)
	est.SatelliteImages = &domain.ImagePair{
		Before:  simulatedImageRef(before, req.Latitude, req.Longitude),
		Current: simulatedImageRef(current, req.Latitude, req.Longitude),
	}
	est.AcquisitionDates = &domain.ImagePair{
		Before:  before.Format(time.DateOnly),
		Current: current.Format(time.DateOnly),
	}
	return est
}

func (s *Simulation) seed(lat, lon float64) int64 {
	return int64(lat * lon * s.seedScale)
}

// simulatedImageRef builds an illustrative reference. It does not resolve to an image.
func simulatedImageRef(date time.Time, lat, lon float64) string {
	return fmt.Sprintf("simulated://sentinel2/%s/%g,%g", date.Format("20060102"), lat, lon)
}
