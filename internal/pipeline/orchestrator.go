package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/google/uuid"
)

// Tier names used in logs and metric labels.
const (
	TierSatellite = "satellite"
	TierOffline   = "offline"
)

// Tier is one named, fallible estimator of the chain.
type Tier struct {
	Name      string
	Estimator domain.Estimator
}

// Simulator is the terminal tier. It cannot fail.
type Simulator interface {
	Simulate(req domain.EstimateRequest) domain.CropLossEstimate
}

// EventSink receives an audit event for every estimate. Implementations
// must not block the caller.
type EventSink interface {
	Publish(event domain.EstimateEvent)
}

// Orchestrator runs the tiers in their fixed order and returns the first
// success, falling back to the simulator.
type Orchestrator struct {
	tiers     []Tier
	simulator Simulator
	sink      EventSink
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewOrchestrator creates an Orchestrator. Tiers are tried in slice order;
// sink may be nil.
func NewOrchestrator(tiers []Tier, simulator Simulator, sink EventSink, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		tiers:     tiers,
		simulator: simulator,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
	}
}

// AnalyzeCropLoss returns an estimate for a validated request. Tier failures
// are logged and counted, never returned.
func (o *Orchestrator) AnalyzeCropLoss(ctx context.Context, req domain.EstimateRequest) domain.CropLossEstimate {
	est := o.firstSuccess(ctx, req)
	o.metrics.EstimatesTotal.WithLabelValues(string(est.DataSource)).Inc()
	o.publish(ctx, req, est)
	return est
}

func (o *Orchestrator) firstSuccess(ctx context.Context, req domain.EstimateRequest) domain.CropLossEstimate {
	for _, tier := range o.tiers {
		start := time.Now()
		est, err := tier.Estimator.Estimate(ctx, req)
		o.metrics.TierDuration.WithLabelValues(tier.Name).Observe(time.Since(start).Seconds())
		if err == nil {
			o.logger.Debug("tier produced estimate",
				"tier", tier.Name,
				"loss_percentage", est.LossPercentage,
				"confidence", est.Confidence,
			)
			return est
		}

		o.metrics.TierFailures.WithLabelValues(tier.Name).Inc()
		o.logger.Warn("tier failed, falling through",
			"tier", tier.Name,
			"lat", req.Latitude,
			"lon", req.Longitude,
			"crop_type", req.CropType,
			"error", err,
		)
	}

	est := o.simulator.Simulate(req)
	o.logger.Info("using simulated estimate", "lat", req.Latitude, "lon", req.Longitude)
	return est
}

func (o *Orchestrator) publish(ctx context.Context, req domain.EstimateRequest, est domain.CropLossEstimate) {
	if o.sink == nil {
		return
	}
	id, ok := domain.RequestIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
	}
	o.sink.Publish(domain.EstimateEvent{
		ID:         id,
		Request:    req,
		Estimate:   est,
		ProducedAt: domain.Now().UTC(),
	})
}
