package domain

// DataSource identifies which tier produced an estimate.
type DataSource string

const (
	SourceSatellite  DataSource = "satellite"
	SourceOffline    DataSource = "offline_csv"
	SourceSimulation DataSource = "simulation"
)

// DamageCause is a label from the fixed damage vocabulary.
type DamageCause string

const (
	CauseHealthy        DamageCause = "Healthy"
	CauseMinorStress    DamageCause = "Minor Stress"
	CauseModerateStress DamageCause = "Moderate Stress"
	CauseSevereStress   DamageCause = "Severe Stress"
	CauseSevereDrought  DamageCause = "Severe Drought"
	CausePestDisease    DamageCause = "Pest/Disease"
	CauseWeatherDamage  DamageCause = "Weather Damage"
	CauseUnknown        DamageCause = "Unknown"
)

// ImagePair holds before/current image references for display.
type ImagePair struct {
	Before  string `json:"before"`
	Current string `json:"current"`
}

// CropLossEstimate is the normalized output of every estimation tier.
// Values are produced fresh per request and never mutated afterwards.
type CropLossEstimate struct {
	NDVIBefore     *float64    `json:"ndvi_before,omitempty"`
	NDVICurrent    *float64    `json:"ndvi_current,omitempty"`
	NDVIValue      *float64    `json:"ndvi_value,omitempty"`
	LossPercentage float64     `json:"loss_percentage"`
	Confidence     float64     `json:"confidence"`
	AffectedArea   float64     `json:"affected_area"`
	EstimatedValue float64     `json:"estimated_value"`
	DamageCause    DamageCause `json:"damage_cause"`
	DataSource     DataSource  `json:"data_source"`

	// Tier-specific fields.
	SatelliteImages  *ImagePair `json:"satellite_images,omitempty"`
	AcquisitionDates *ImagePair `json:"acquisition_dates,omitempty"`
	Location         string     `json:"location,omitempty"`
	Date             string     `json:"date,omitempty"`
}

// EstimateParams carries the tier-computed signal that NewEstimate turns into
// a CropLossEstimate. AffectedArea and EstimatedValue are derived, not passed.
type EstimateParams struct {
	Source         DataSource
	CropType       string
	FieldArea      float64
	LossPercentage float64
	Confidence     float64
	DamageCause    DamageCause
	NDVIBefore     *float64
	NDVICurrent    *float64
	NDVIValue      *float64
}

// NewEstimate clamps loss and confidence into [0, 100] and derives the
// affected area and monetary value from the crop value table.
func NewEstimate(p EstimateParams) CropLossEstimate {
	loss := Clamp(p.LossPercentage, 0, 100)
	area := p.FieldArea
	if area < 0 {
		area = 0
	}
	affected := area * loss / 100

	return CropLossEstimate{
		NDVIBefore:     p.NDVIBefore,
		NDVICurrent:    p.NDVICurrent,
		NDVIValue:      p.NDVIValue,
		LossPercentage: loss,
		Confidence:     Clamp(p.Confidence, 0, 100),
		AffectedArea:   affected,
		EstimatedValue: affected * CropUnitValue(p.CropType),
		DamageCause:    p.DamageCause,
		DataSource:     p.Source,
	}
}

// NDVIDecline returns the relative NDVI drop as a non-negative percentage.
// It is zero when the before value is not positive.
func NDVIDecline(before, current float64) float64 {
	if before <= 0 {
		return 0
	}
	decline := (before - current) / before * 100
	if decline < 0 {
		return 0
	}
	return decline
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Float returns a pointer to v, for optional NDVI fields.
func Float(v float64) *float64 { return &v }
