package explain_test

import (
	"strings"
	"testing"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
	"github.com/stretchr/testify/assert"
)

func TestExplain_Narrative(t *testing.T) {
	v := calmVector()
	loss := explain.RuleLoss(v)
	got := explain.Explain(explain.Attribute(v, explain.RuleImportances(v)), loss)

	want := "Your crops have significant damage.\n" +
		"\nMain reasons for this assessment:\n" +
		"1. Rainfall levels (15.0mm) are moderate\n" +
		"2. Temperature (30.0°C) is suitable"
	assert.Equal(t, want, got)
}

func TestExplain_SeveritySentences(t *testing.T) {
	tests := []struct {
		loss float64
		want string
	}{
		{0, "good condition"},
		{9.99, "good condition"},
		{10, "moderate stress"},
		{24.9, "moderate stress"},
		{25, "significant damage"},
		{50, "severe damage"},
		{100, "severe damage"},
	}
	for _, tt := range tests {
		got := explain.Explain(nil, tt.loss)
		assert.Contains(t, got, tt.want)
		assert.True(t, strings.HasSuffix(got, "Main reasons for this assessment:"))
	}
}

func TestExplain_AtMostThreeFactorSentences(t *testing.T) {
	explanations := []domain.FeatureExplanation{
		{Feature: domain.FeatureRainfall, Value: 2, Importance: 0.9},
		{Feature: domain.FeatureTemperature, Value: 41, Importance: 0.8},
		{Feature: domain.FeatureWindSpeed, Value: 24, Importance: 0.7},
		{Feature: domain.FeatureHumidity, Value: 20, Importance: 0.6},
		{Feature: domain.FeatureNDVICurrent, Value: 0.2, Importance: 0.5},
	}
	got := explain.Explain(explanations, 60)
	lines := strings.Split(got, "\n")

	assert.Equal(t, "Your crops have severe damage.", lines[0])
	assert.Equal(t, []string{
		"1. Very low rainfall (2.0mm) causing drought stress",
		"2. High temperature (41.0°C) causing heat stress",
		"3. Strong winds (24.0km/h) causing physical damage",
	}, lines[3:])
}

func TestExplain_FactorTemplates(t *testing.T) {
	tests := []struct {
		feature string
		value   float64
		want    string
	}{
		{domain.FeatureNDVIBefore, 0.7, "Initial crop health was good"},
		{domain.FeatureNDVIBefore, 0.6, "Initial crop health was moderate"},
		{domain.FeatureNDVICurrent, 0.3, "Current crop health is poor"},
		{domain.FeatureRainfall, 30, "Very high rainfall (30.0mm) causing waterlogging"},
		{domain.FeatureTemperature, 15, "Low temperature (15.0°C) slowing growth"},
		{domain.FeatureHumidity, 35, "Low humidity (35.0%) causing water stress"},
		{domain.FeatureHumidity, 90, "High humidity (90.0%) promoting diseases"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := explain.Explain([]domain.FeatureExplanation{{Feature: tt.feature, Value: tt.value}}, 0)
			assert.Contains(t, got, "1. "+tt.want)
		})
	}
}

func TestCheckEligibility_Boundary(t *testing.T) {
	below := explain.CheckEligibility(19.9, "rice", nil)
	assert.False(t, below.Eligible)
	assert.InDelta(t, 20.0, below.Threshold, 0)
	assert.Contains(t, below.Explanation, "below this threshold")

	at := explain.CheckEligibility(20.0, "rice", nil)
	assert.True(t, at.Eligible)
	assert.InDelta(t, 20.0, at.LossPercentage, 0)
}

func TestCheckEligibility_Thresholds(t *testing.T) {
	tests := []struct {
		crop      string
		threshold float64
	}{
		{"rice", 20}, {"Wheat", 20}, {"maize", 20}, {"cotton", 25}, {"sugarcane", 30}, {"millet", 20},
	}
	for _, tt := range tests {
		t.Run(tt.crop, func(t *testing.T) {
			v := explain.CheckEligibility(tt.threshold-0.1, tt.crop, nil)
			assert.False(t, v.Eligible)
			assert.InDelta(t, tt.threshold, v.Threshold, 0)
			assert.True(t, explain.CheckEligibility(tt.threshold, tt.crop, nil).Eligible)
		})
	}
}

func TestCheckEligibility_NamesPositiveFactors(t *testing.T) {
	explanations := []domain.FeatureExplanation{
		{Feature: domain.FeatureNDVICurrent, Contribution: 0},
		{Feature: domain.FeatureWindSpeed, Contribution: 0.02},
		{Feature: domain.FeatureDaysSinceSowing, Contribution: 0.05},
		{Feature: domain.FeatureRainfall, Contribution: 0.3},
	}
	v := explain.CheckEligibility(42.04, "Cotton", explanations)

	assert.True(t, v.Eligible)
	assert.Equal(t, "For cotton crops, PMFBY compensation requires minimum 25.0% loss. "+
		"Your assessed loss of 42.0% exceeds this threshold, so you are eligible for compensation. "+
		"Main damage factors: wind speed, days since sowing.", v.Explanation)
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, explain.RiskLow, explain.RiskLevel(15))
	assert.Equal(t, explain.RiskMedium, explain.RiskLevel(15.1))
	assert.Equal(t, explain.RiskMedium, explain.RiskLevel(30))
	assert.Equal(t, explain.RiskHigh, explain.RiskLevel(30.1))
}
