package explain_test

import (
	"testing"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleLoss_StressIncreasesLoss(t *testing.T) {
	calm := calmVector()
	stressed := calm
	stressed.Rainfall = 2
	stressed.Temperature = 40
	stressed.WindSpeed = 25

	assert.InDelta(t, 200.0/7, explain.RuleLoss(calm), 1e-9)
	assert.InDelta(t, 200.0/7+15+12+5, explain.RuleLoss(stressed), 1e-9)
	assert.Greater(t, explain.RuleLoss(stressed), explain.RuleLoss(calm))
}

func TestRuleLoss_Terms(t *testing.T) {
	base := calmVector()
	base.NDVICurrent = base.NDVIBefore

	tests := []struct {
		name   string
		mutate func(*domain.FeatureVector)
		want   float64
	}{
		{"no stress", func(*domain.FeatureVector) {}, 0},
		{"flooding", func(v *domain.FeatureVector) { v.Rainfall = 31 }, 10},
		{"cold", func(v *domain.FeatureVector) { v.Temperature = 21 }, 8},
		{"dry air", func(v *domain.FeatureVector) { v.Humidity = 39 }, 3},
		{"disease humidity", func(v *domain.FeatureVector) { v.Humidity = 86 }, 4},
		{"greening clamps at zero", func(v *domain.FeatureVector) { v.NDVICurrent = 0.9 }, 0},
		{"capped", func(v *domain.FeatureVector) {
			v.NDVICurrent = -1
			v.Rainfall = 0
			v.Temperature = 45
		}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base
			tt.mutate(&v)
			assert.InDelta(t, tt.want, explain.RuleLoss(v), 1e-9)
		})
	}
}

func TestRuleImportances(t *testing.T) {
	got := explain.RuleImportances(calmVector())
	want := []float64{0.06, 0.08, 0.25, 0.2, 0.1, 0.032, 0.05}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, domain.FeatureNames()[i])
	}

	noBaseline := calmVector()
	noBaseline.NDVIBefore = 0
	assert.InDelta(t, 0.0, explain.RuleImportances(noBaseline)[0], 0)
}

func TestAttribute_RankedByImportance(t *testing.T) {
	v := calmVector()
	out := explain.Attribute(v, explain.RuleImportances(v))

	order := make([]string, len(out))
	for i, e := range out {
		order[i] = e.Feature
	}
	assert.Equal(t, []string{
		domain.FeatureRainfall,
		domain.FeatureTemperature,
		domain.FeatureHumidity,
		domain.FeatureNDVICurrent,
		domain.FeatureNDVIBefore,
		domain.FeatureDaysSinceSowing,
		domain.FeatureWindSpeed,
	}, order)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Importance, out[i].Importance)
	}

	rain := out[0]
	assert.InDelta(t, 15.0, rain.Value, 0)
	assert.InDelta(t, 0.25*15/16, rain.Contribution, 1e-9)
	assert.Equal(t, domain.ImpactIncreases, rain.Impact)
	assert.Equal(t, domain.ImpactDecreases, out[2].Impact)
}

func TestAttribute_StableForEqualImportances(t *testing.T) {
	equal := []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	out := explain.Attribute(calmVector(), equal)
	for i, name := range domain.FeatureNames() {
		assert.Equal(t, name, out[i].Feature)
	}
}

func TestAttribute_ContributionUndefinedBelowMinusOne(t *testing.T) {
	v := calmVector()
	v.Temperature = -5
	out := explain.Attribute(v, explain.RuleImportances(v))
	for _, e := range out {
		if e.Feature == domain.FeatureTemperature {
			assert.InDelta(t, 0.0, e.Contribution, 0)
			assert.Equal(t, domain.ImpactDecreases, e.Impact)
		}
	}
}
