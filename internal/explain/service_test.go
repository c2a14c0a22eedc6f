package explain_test

import (
	"testing"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_PredictWithExplanation(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	svc := explain.NewService(explain.NewRuleModel(), discardLogger(), metrics)

	res, err := svc.PredictWithExplanation(domain.ExplainRequest{
		NDVIBefore:  ptr(0.7),
		NDVICurrent: ptr(0.5),
		Latitude:    ptr(17.2),
		Longitude:   ptr(78.1),
		Rainfall:    ptr(15),
		Temperature: ptr(30),
		Humidity:    ptr(60),
		WindSpeed:   ptr(10),
	})
	require.NoError(t, err)

	assert.InDelta(t, 200.0/7, res.PredictedLoss, 1e-9)
	assert.InDelta(t, 0.85, res.Confidence, 0)
	assert.Equal(t, explain.StrategyRule, res.Strategy)
	assert.Equal(t, explain.RiskMedium, res.RiskLevel)
	assert.Equal(t, domain.Weather{RainfallMM: 15, TemperatureC: 30, HumidityPct: 60, WindSpeedKmh: 10}, res.WeatherFactors)
	assert.Len(t, res.FeatureExplanations, 7)
	assert.Contains(t, res.ReadableExplanation, "significant damage")
	assert.True(t, res.Eligibility.Eligible)
	assert.Contains(t, res.Eligibility.Explanation, "For rice crops")
	assert.Contains(t, res.Eligibility.Explanation, "Main damage factors: rainfall, temperature.")

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Predictions.WithLabelValues("rule")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EligibilityVerdicts.WithLabelValues("true")), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.TrainedModelLoaded), 0)
}

func TestService_SimulatedWeatherFillsGaps(t *testing.T) {
	svc := explain.NewService(explain.NewRuleModel(), discardLogger(), observability.NewMetricsForTesting())
	req := domain.ExplainRequest{
		NDVIBefore:  ptr(0.6),
		NDVICurrent: ptr(0.55),
		Latitude:    ptr(17.1),
		Longitude:   ptr(78.2),
		Humidity:    ptr(95),
	}

	a, err := svc.PredictWithExplanation(req)
	require.NoError(t, err)
	b, err := svc.PredictWithExplanation(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	sim := domain.SimulatedWeather(17.1, 78.2)
	assert.InDelta(t, sim.RainfallMM, a.WeatherFactors.RainfallMM, 0)
	assert.InDelta(t, sim.TemperatureC, a.WeatherFactors.TemperatureC, 0)
	assert.InDelta(t, 95.0, a.WeatherFactors.HumidityPct, 0)
	for _, e := range a.FeatureExplanations {
		if e.Feature == domain.FeatureDaysSinceSowing {
			assert.InDelta(t, domain.DefaultDaysSinceSowing, e.Value, 0)
		}
	}
}

func TestService_InvalidInput(t *testing.T) {
	svc := explain.NewService(explain.NewRuleModel(), discardLogger(), observability.NewMetricsForTesting())

	_, err := svc.PredictWithExplanation(domain.ExplainRequest{NDVIBefore: ptr(0.6), Latitude: ptr(17), Longitude: ptr(78)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.PredictWithExplanation(domain.ExplainRequest{NDVIBefore: ptr(1.6), NDVICurrent: ptr(0.5), Latitude: ptr(17), Longitude: ptr(78)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_TrainedModelGauge(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	svc := explain.NewService(explain.NewModel(loadLinear(t, linearArtifact), discardLogger()), discardLogger(), metrics)
	assert.Equal(t, explain.StrategyTrained, svc.Strategy())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.TrainedModelLoaded), 0)
}

func TestRequestFromEstimate(t *testing.T) {
	req := domain.EstimateRequest{Latitude: 17.2, Longitude: 78.1, CropType: "wheat", FieldArea: 2}

	_, ok := explain.RequestFromEstimate(req, domain.CropLossEstimate{NDVIValue: domain.Float(0.4)})
	assert.False(t, ok)

	er, ok := explain.RequestFromEstimate(req, domain.CropLossEstimate{
		NDVIBefore:  domain.Float(0.7),
		NDVICurrent: domain.Float(0.4),
	})
	require.True(t, ok)
	assert.InDelta(t, 0.7, *er.NDVIBefore, 0)
	assert.InDelta(t, 0.4, *er.NDVICurrent, 0)
	assert.InDelta(t, 17.2, *er.Latitude, 0)
	assert.InDelta(t, 78.1, *er.Longitude, 0)
	assert.Equal(t, "wheat", er.Crop())
	assert.Nil(t, er.DaysSinceSowing)
}
