package domain

import "strings"

// DefaultCropType is used for value lookups when a crop is not in the table.
const DefaultCropType = "rice"

// cropUnitValues is the monetary value of one hectare of each crop, in INR.
var cropUnitValues = map[string]float64{
	"rice":      40000,
	"wheat":     35000,
	"cotton":    60000,
	"sugarcane": 80000,
	"maize":     30000,
}

// eligibilityThresholds holds the PMFBY minimum loss percentage per crop.
var eligibilityThresholds = map[string]float64{
	"rice":      20,
	"wheat":     20,
	"cotton":    25,
	"sugarcane": 30,
	"maize":     20,
}

const defaultEligibilityThreshold = 20.0

// NormalizeCropType lower-cases and trims a crop name.
func NormalizeCropType(cropType string) string {
	return strings.ToLower(strings.TrimSpace(cropType))
}

// CropUnitValue returns the per-hectare value for a crop, falling back to rice.
func CropUnitValue(cropType string) float64 {
	if v, ok := cropUnitValues[NormalizeCropType(cropType)]; ok {
		return v
	}
	return cropUnitValues[DefaultCropType]
}

// EligibilityThreshold returns the PMFBY minimum loss percentage for a crop.
func EligibilityThreshold(cropType string) float64 {
	if v, ok := eligibilityThresholds[NormalizeCropType(cropType)]; ok {
		return v
	}
	return defaultEligibilityThreshold
}
