package explain

import (
	"log/slog"
	"strconv"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
)

// Result is the full output of the explanation entry point.
type Result struct {
	PredictedLoss       float64                     `json:"predicted_loss"`
	Confidence          float64                     `json:"confidence"`
	Strategy            Strategy                    `json:"strategy"`
	RiskLevel           string                      `json:"risk_level"`
	WeatherFactors      domain.Weather              `json:"weather_factors"`
	FeatureExplanations []domain.FeatureExplanation `json:"feature_explanations"`
	ReadableExplanation string                      `json:"readable_explanation"`
	Eligibility         domain.EligibilityVerdict   `json:"eligibility"`
}

// Service runs prediction, attribution, narrative and eligibility as one step.
type Service struct {
	model   *Model
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service around a model.
func NewService(model *Model, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if model.Strategy() == StrategyTrained {
		metrics.TrainedModelLoaded.Set(1)
	} else {
		metrics.TrainedModelLoaded.Set(0)
	}
	return &Service{model: model, logger: logger, metrics: metrics}
}

// Strategy reports the model's active scoring strategy.
func (s *Service) Strategy() Strategy { return s.model.Strategy() }

// PredictWithExplanation builds the feature vector, filling omitted weather
// from the simulated weather of the location, and explains the prediction.
// Invalid input is reported as domain.ErrInvalidInput.
func (s *Service) PredictWithExplanation(req domain.ExplainRequest) (Result, error) {
	var weather domain.Weather
	if req.Latitude != nil && req.Longitude != nil {
		weather = domain.SimulatedWeather(*req.Latitude, *req.Longitude)
	}
	v, err := domain.NewFeatureVector(req, weather)
	if err != nil {
		return Result{}, err
	}

	loss, explanations := s.model.Predict(v)
	verdict := CheckEligibility(loss, req.Crop(), explanations)

	s.metrics.Predictions.WithLabelValues(string(s.model.Strategy())).Inc()
	s.metrics.EligibilityVerdicts.WithLabelValues(strconv.FormatBool(verdict.Eligible)).Inc()
	s.logger.Debug("prediction explained",
		"strategy", s.model.Strategy(),
		"predicted_loss", loss,
		"eligible", verdict.Eligible,
	)

	return Result{
		PredictedLoss:       loss,
		Confidence:          s.model.Confidence(),
		Strategy:            s.model.Strategy(),
		RiskLevel:           RiskLevel(loss),
		WeatherFactors:      v.Weather(),
		FeatureExplanations: explanations,
		ReadableExplanation: Explain(explanations, loss),
		Eligibility:         verdict,
	}, nil
}

// RequestFromEstimate derives an explanation request from an estimate. It
// returns false when the estimate has no NDVI before/current pair, as with
// offline matches.
func RequestFromEstimate(req domain.EstimateRequest, est domain.CropLossEstimate) (domain.ExplainRequest, bool) {
	if est.NDVIBefore == nil || est.NDVICurrent == nil {
		return domain.ExplainRequest{}, false
	}
	lat, lon := req.Latitude, req.Longitude
	before, current := *est.NDVIBefore, *est.NDVICurrent
	return domain.ExplainRequest{
		NDVIBefore:  &before,
		NDVICurrent: &current,
		Latitude:    &lat,
		Longitude:   &lon,
		CropType:    req.CropType,
	}, true
}
