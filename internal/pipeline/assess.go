package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
)

// Explainer runs the explanation stage on a typed request.
type Explainer interface {
	PredictWithExplanation(req domain.ExplainRequest) (explain.Result, error)
}

// Assessment pairs a tier-chain estimate with the explanation of its NDVI
// signal. Prediction is nil when the estimate carries no NDVI pair.
type Assessment struct {
	Estimate   domain.CropLossEstimate `json:"estimate"`
	Prediction *explain.Result         `json:"prediction,omitempty"`
}

// Assessor is the validated entry point shared by the HTTP and CLI surfaces.
type Assessor struct {
	orchestrator *Orchestrator
	explainer    Explainer
	logger       *slog.Logger
}

// NewAssessor creates an Assessor.
func NewAssessor(orchestrator *Orchestrator, explainer Explainer, logger *slog.Logger) *Assessor {
	return &Assessor{orchestrator: orchestrator, explainer: explainer, logger: logger}
}

// Analyze validates the request and runs the tier chain.
func (a *Assessor) Analyze(ctx context.Context, req domain.EstimateRequest) (domain.CropLossEstimate, error) {
	if err := req.Validate(); err != nil {
		return domain.CropLossEstimate{}, err
	}
	return a.orchestrator.AnalyzeCropLoss(ctx, req), nil
}

// Explain runs the explanation stage alone.
func (a *Assessor) Explain(req domain.ExplainRequest) (explain.Result, error) {
	return a.explainer.PredictWithExplanation(req)
}

// Assess runs the tier chain and then explains the estimate's NDVI pair.
// An explanation failure is logged and leaves Prediction nil.
func (a *Assessor) Assess(ctx context.Context, req domain.EstimateRequest) (Assessment, error) {
	est, err := a.Analyze(ctx, req)
	if err != nil {
		return Assessment{}, err
	}
	out := Assessment{Estimate: est}

	xreq, ok := explain.RequestFromEstimate(req, est)
	if !ok {
		a.logger.Debug("estimate has no ndvi pair, skipping explanation", "data_source", est.DataSource)
		return out, nil
	}
	result, err := a.explainer.PredictWithExplanation(xreq)
	if err != nil {
		a.logger.Warn("explanation failed", "data_source", est.DataSource, "error", err)
		return out, nil
	}
	out.Prediction = &result
	return out, nil
}
