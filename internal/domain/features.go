package domain

import (
	"fmt"
	"math"
)

// Feature names in vector order. A trained model must declare exactly this
// schema, in this order, to be used.
const (
	FeatureNDVIBefore      = "ndvi_before"
	FeatureNDVICurrent     = "ndvi_current"
	FeatureRainfall        = "rainfall"
	FeatureTemperature     = "temperature"
	FeatureHumidity        = "humidity"
	FeatureWindSpeed       = "wind_speed"
	FeatureDaysSinceSowing = "days_since_sowing"
)

// FeatureNames returns the live feature schema.
func FeatureNames() []string {
	return []string{
		FeatureNDVIBefore,
		FeatureNDVICurrent,
		FeatureRainfall,
		FeatureTemperature,
		FeatureHumidity,
		FeatureWindSpeed,
		FeatureDaysSinceSowing,
	}
}

// DefaultDaysSinceSowing applies when a request omits crop age.
const DefaultDaysSinceSowing = 60.0

// FeatureVector is the explanation model input. Prediction and attribution are
// always computed over the same vector.
type FeatureVector struct {
	NDVIBefore      float64 `json:"ndvi_before"`
	NDVICurrent     float64 `json:"ndvi_current"`
	Rainfall        float64 `json:"rainfall"`
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	WindSpeed       float64 `json:"wind_speed"`
	DaysSinceSowing float64 `json:"days_since_sowing"`
}

// Values returns the vector in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.NDVIBefore,
		v.NDVICurrent,
		v.Rainfall,
		v.Temperature,
		v.Humidity,
		v.WindSpeed,
		v.DaysSinceSowing,
	}
}

// Weather returns the weather covariates carried by the vector.
func (v FeatureVector) Weather() Weather {
	return Weather{
		RainfallMM:   v.Rainfall,
		TemperatureC: v.Temperature,
		HumidityPct:  v.Humidity,
		WindSpeedKmh: v.WindSpeed,
	}
}

// ExplainRequest is the typed input of the explanation entry point.
// Required: NDVIBefore, NDVICurrent, Latitude, Longitude.
// Defaults: DaysSinceSowing 60, CropType "rice", weather fields from
// SimulatedWeather(Latitude, Longitude).
type ExplainRequest struct {
	NDVIBefore      *float64 `json:"ndvi_before" binding:"required"`
	NDVICurrent     *float64 `json:"ndvi_current" binding:"required"`
	Latitude        *float64 `json:"latitude" binding:"required"`
	Longitude       *float64 `json:"longitude" binding:"required"`
	DaysSinceSowing *float64 `json:"days_since_sowing,omitempty"`
	CropType        string   `json:"crop_type,omitempty"`

	Rainfall    *float64 `json:"rainfall,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// Crop returns the normalized crop type, defaulting to rice.
func (r ExplainRequest) Crop() string {
	if c := NormalizeCropType(r.CropType); c != "" {
		return c
	}
	return DefaultCropType
}

// NewFeatureVector builds a vector from a request, filling weather fields the
// request omits from w. Missing required fields are rejected, not defaulted.
func NewFeatureVector(r ExplainRequest, w Weather) (FeatureVector, error) {
	required := []struct {
		name string
		v    *float64
	}{
		{FeatureNDVIBefore, r.NDVIBefore},
		{FeatureNDVICurrent, r.NDVICurrent},
		{"latitude", r.Latitude},
		{"longitude", r.Longitude},
	}
	for _, f := range required {
		if f.v == nil {
			return FeatureVector{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return FeatureVector{}, fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
	}
	if *r.Latitude < -90 || *r.Latitude > 90 || *r.Longitude < -180 || *r.Longitude > 180 {
		return FeatureVector{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	v := FeatureVector{
		NDVIBefore:      *r.NDVIBefore,
		NDVICurrent:     *r.NDVICurrent,
		Rainfall:        orDefault(r.Rainfall, w.RainfallMM),
		Temperature:     orDefault(r.Temperature, w.TemperatureC),
		Humidity:        orDefault(r.Humidity, w.HumidityPct),
		WindSpeed:       orDefault(r.WindSpeed, w.WindSpeedKmh),
		DaysSinceSowing: orDefault(r.DaysSinceSowing, DefaultDaysSinceSowing),
	}
	if err := v.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return v, nil
}

// Validate checks physical ranges of every feature.
func (v FeatureVector) Validate() error {
	for i, x := range v.Values() {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, FeatureNames()[i])
		}
	}
	switch {
	case v.NDVIBefore < -1 || v.NDVIBefore > 1:
		return fmt.Errorf("%w: ndvi_before %v out of range [-1, 1]", ErrInvalidInput, v.NDVIBefore)
	case v.NDVICurrent < -1 || v.NDVICurrent > 1:
		return fmt.Errorf("%w: ndvi_current %v out of range [-1, 1]", ErrInvalidInput, v.NDVICurrent)
	case v.Rainfall < 0:
		return fmt.Errorf("%w: rainfall must be non-negative", ErrInvalidInput)
	case v.Humidity < 0 || v.Humidity > 100:
		return fmt.Errorf("%w: humidity %v out of range [0, 100]", ErrInvalidInput, v.Humidity)
	case v.WindSpeed < 0:
		return fmt.Errorf("%w: wind_speed must be non-negative", ErrInvalidInput)
	case v.DaysSinceSowing < 0:
		return fmt.Errorf("%w: days_since_sowing must be non-negative", ErrInvalidInput)
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Impact tells whether a feature pushed the prediction up.
type Impact string

const (
	ImpactIncreases Impact = "increases"
	ImpactDecreases Impact = "decreases"
)

// FeatureExplanation attributes part of a prediction to one feature.
type FeatureExplanation struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Importance   float64 `json:"importance"`
	Contribution float64 `json:"contribution"`
	Impact       Impact  `json:"impact"`
}

// EligibilityVerdict is the PMFBY eligibility outcome for an assessed loss.
type EligibilityVerdict struct {
	Eligible       bool    `json:"eligible"`
	Threshold      float64 `json:"threshold"`
	LossPercentage float64 `json:"loss_percentage"`
	Explanation    string  `json:"explanation"`
}
