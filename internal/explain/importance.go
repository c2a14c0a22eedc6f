package explain

import (
	"math"
	"sort"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// impactThreshold is the contribution above which a feature is reported as
// increasing loss.
const impactThreshold = 0.1

// RuleLoss scores a vector with the additive stress rule, clamped to [0, 100].
func RuleLoss(v domain.FeatureVector) float64 {
	loss := domain.NDVIDecline(v.NDVIBefore, v.NDVICurrent)

	switch {
	case v.Rainfall < 5:
		loss += 15 // drought
	case v.Rainfall > 30:
		loss += 10 // flooding
	}
	switch {
	case v.Temperature > 38:
		loss += 12
	case v.Temperature < 22:
		loss += 8
	}
	if v.WindSpeed > 20 {
		loss += 5
	}
	switch {
	case v.Humidity < 40:
		loss += 3
	case v.Humidity > 85:
		loss += 4 // disease pressure
	}
	return domain.Clamp(loss, 0, 100)
}

// RuleImportances returns hand-tuned sensitivities in FeatureNames order.
// They are independent of the additive rule.
func RuleImportances(v domain.FeatureVector) []float64 {
	var ndviChange float64
	if v.NDVIBefore > 0 {
		ndviChange = math.Abs(v.NDVIBefore - v.NDVICurrent)
	}
	return []float64{
		ndviChange * 0.3,
		ndviChange * 0.4,
		peaked(v.Rainfall, 15, 15) * 0.25,
		peaked(v.Temperature, 30, 10) * 0.2,
		peaked(v.Humidity, 60, 20) * 0.1,
		math.Min(1, v.WindSpeed/25) * 0.08,
		0.05,
	}
}

// peaked is 1 at the optimum and decays linearly to 0 at optimum +- width.
func peaked(x, optimum, width float64) float64 {
	return 1 - math.Min(1, math.Abs(x-optimum)/width)
}

// Attribute pairs each feature value with its importance and contribution,
// ranked by importance descending. Equal importances keep schema order.
func Attribute(v domain.FeatureVector, importances []float64) []domain.FeatureExplanation {
	names := domain.FeatureNames()
	values := v.Values()

	out := make([]domain.FeatureExplanation, len(names))
	for i, name := range names {
		c := importances[i] * saturate(values[i])
		impact := domain.ImpactDecreases
		if c > impactThreshold {
			impact = domain.ImpactIncreases
		}
		out[i] = domain.FeatureExplanation{
			Feature:      name,
			Value:        values[i],
			Importance:   importances[i],
			Contribution: c,
			Impact:       impact,
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Importance > out[b].Importance
	})
	return out
}

// saturate maps x to x/(x+1), bounding contributions across feature scales.
// It is zero where the ratio is undefined or flips sign (x <= -1).
func saturate(x float64) float64 {
	if x <= -1 {
		return 0
	}
	return x / (x + 1)
}
