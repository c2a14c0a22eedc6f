package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEstimate_DerivesAreaAndValue(t *testing.T) {
	est := NewEstimate(EstimateParams{
		Source:         SourceSatellite,
		CropType:       "cotton",
		FieldArea:      4,
		LossPercentage: 25,
		Confidence:     90,
		DamageCause:    CauseModerateStress,
	})

	assert.Equal(t, 25.0, est.LossPercentage)
	assert.Equal(t, 1.0, est.AffectedArea)
	assert.Equal(t, 60000.0, est.EstimatedValue)
	assert.Equal(t, SourceSatellite, est.DataSource)
}

func TestNewEstimate_ClampsLoss(t *testing.T) {
	high := NewEstimate(EstimateParams{CropType: "rice", FieldArea: 2, LossPercentage: 140})
	assert.Equal(t, 100.0, high.LossPercentage)
	assert.Equal(t, 2.0, high.AffectedArea, "affected area never exceeds field area")

	low := NewEstimate(EstimateParams{CropType: "rice", FieldArea: 2, LossPercentage: -5})
	assert.Equal(t, 0.0, low.LossPercentage)
	assert.Equal(t, 0.0, low.AffectedArea)
}

func TestNewEstimate_UnknownCropUsesRiceValue(t *testing.T) {
	est := NewEstimate(EstimateParams{CropType: "millet", FieldArea: 1, LossPercentage: 50})
	assert.Equal(t, 20000.0, est.EstimatedValue)
}

func TestNDVIDecline(t *testing.T) {
	assert.InDelta(t, 50.0, NDVIDecline(0.8, 0.4), 1e-9)
	assert.Equal(t, 0.0, NDVIDecline(0.4, 0.6), "growth is not loss")
	assert.Equal(t, 0.0, NDVIDecline(0, 0.3))
	assert.Equal(t, 0.0, NDVIDecline(-0.1, 0.3))
}

func TestCropTables(t *testing.T) {
	assert.Equal(t, 80000.0, CropUnitValue(" Sugarcane "))
	assert.Equal(t, 30.0, EligibilityThreshold("sugarcane"))
	assert.Equal(t, 25.0, EligibilityThreshold("COTTON"))
	assert.Equal(t, 20.0, EligibilityThreshold("wheat"))
	assert.Equal(t, 20.0, EligibilityThreshold("millet"))
}

func TestEstimateRequest_Validate(t *testing.T) {
	valid := EstimateRequest{Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: 2}
	assert.NoError(t, valid.Validate())

	cases := map[string]EstimateRequest{
		"latitude":  {Latitude: 91, Longitude: 78.1, CropType: "rice", FieldArea: 2},
		"longitude": {Latitude: 17.2, Longitude: -181, CropType: "rice", FieldArea: 2},
		"nan":       {Latitude: math.NaN(), Longitude: 78.1, CropType: "rice", FieldArea: 2},
		"crop":      {Latitude: 17.2, Longitude: 78.1, CropType: "  ", FieldArea: 2},
		"zero area": {Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: 0},
		"negative":  {Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: -1},
		"infinite":  {Latitude: 17.2, Longitude: 78.1, CropType: "rice", FieldArea: math.Inf(1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := req.Validate()
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}
