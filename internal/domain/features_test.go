package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureVector_Defaults(t *testing.T) {
	w := Weather{RainfallMM: 12, TemperatureC: 31, HumidityPct: 55, WindSpeedKmh: 9}
	v, err := NewFeatureVector(ExplainRequest{
		NDVIBefore:  Float(0.7),
		NDVICurrent: Float(0.5),
		Latitude:    Float(17.2),
		Longitude:   Float(78.1),
	}, w)
	require.NoError(t, err)

	assert.Equal(t, FeatureVector{
		NDVIBefore:      0.7,
		NDVICurrent:     0.5,
		Rainfall:        12,
		Temperature:     31,
		Humidity:        55,
		WindSpeed:       9,
		DaysSinceSowing: DefaultDaysSinceSowing,
	}, v)
}

func TestNewFeatureVector_Overrides(t *testing.T) {
	v, err := NewFeatureVector(ExplainRequest{
		NDVIBefore:      Float(0.7),
		NDVICurrent:     Float(0.5),
		Latitude:        Float(17.2),
		Longitude:       Float(78.1),
		DaysSinceSowing: Float(90),
		Rainfall:        Float(2),
		Temperature:     Float(40),
		Humidity:        Float(30),
		WindSpeed:       Float(25),
	}, Weather{RainfallMM: 12, TemperatureC: 31, HumidityPct: 55, WindSpeedKmh: 9})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.7, 0.5, 2, 40, 30, 25, 90}, v.Values())
	assert.Equal(t, Weather{RainfallMM: 2, TemperatureC: 40, HumidityPct: 30, WindSpeedKmh: 25}, v.Weather())
}

func TestNewFeatureVector_RejectsMissingRequired(t *testing.T) {
	_, err := NewFeatureVector(ExplainRequest{
		NDVIBefore: Float(0.7),
		Latitude:   Float(17.2),
		Longitude:  Float(78.1),
	}, Weather{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "ndvi_current")
}

func TestNewFeatureVector_RejectsOutOfRange(t *testing.T) {
	_, err := NewFeatureVector(ExplainRequest{
		NDVIBefore:  Float(1.7),
		NDVICurrent: Float(0.5),
		Latitude:    Float(17.2),
		Longitude:   Float(78.1),
	}, Weather{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewFeatureVector(ExplainRequest{
		NDVIBefore:  Float(0.7),
		NDVICurrent: Float(0.5),
		Latitude:    Float(17.2),
		Longitude:   Float(78.1),
		Humidity:    Float(120),
	}, Weather{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestExplainRequest_CropDefault(t *testing.T) {
	assert.Equal(t, "rice", ExplainRequest{}.Crop())
	assert.Equal(t, "wheat", ExplainRequest{CropType: " Wheat"}.Crop())
}

func TestFeatureNames_MatchVectorOrder(t *testing.T) {
	assert.Len(t, FeatureNames(), len(FeatureVector{}.Values()))
	assert.Equal(t, FeatureNDVIBefore, FeatureNames()[0])
	assert.Equal(t, FeatureDaysSinceSowing, FeatureNames()[6])
}

func TestSimulatedWeather_Deterministic(t *testing.T) {
	a := SimulatedWeather(17.2, 78.1)
	b := SimulatedWeather(17.2, 78.1)
	assert.Equal(t, a, b)

	assert.GreaterOrEqual(t, a.RainfallMM, 0.0)
	assert.Less(t, a.RainfallMM, 25.0)
	assert.GreaterOrEqual(t, a.TemperatureC, 25.0)
	assert.Less(t, a.TemperatureC, 40.0)
	assert.GreaterOrEqual(t, a.HumidityPct, 40.0)
	assert.Less(t, a.HumidityPct, 80.0)
	assert.GreaterOrEqual(t, a.WindSpeedKmh, 8.0)
	assert.Less(t, a.WindSpeedKmh, 18.0)
}
