package domain

import (
	"context"
	"fmt"
	"math"
)

// EstimateRequest is the input of every estimation tier.
type EstimateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CropType  string  `json:"crop_type"`
	FieldArea float64 `json:"field_area"`
}

// Validate reports caller mistakes as ErrInvalidInput.
func (r EstimateRequest) Validate() error {
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidInput, r.Latitude)
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidInput, r.Longitude)
	}
	if NormalizeCropType(r.CropType) == "" {
		return fmt.Errorf("%w: crop_type is required", ErrInvalidInput)
	}
	if math.IsNaN(r.FieldArea) || math.IsInf(r.FieldArea, 0) || r.FieldArea <= 0 {
		return fmt.Errorf("%w: field_area must be a positive number of hectares", ErrInvalidInput)
	}
	return nil
}

// Estimator is one tier of the fallback chain.
type Estimator interface {
	Estimate(ctx context.Context, req EstimateRequest) (CropLossEstimate, error)
}
