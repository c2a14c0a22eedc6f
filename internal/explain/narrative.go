package explain

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
)

// maxFactorSentences caps the ranked factors quoted in a narrative.
const maxFactorSentences = 3

// Explain renders a severity sentence followed by sentences for the top
// ranked features. Features without a matching template are skipped.
func Explain(explanations []domain.FeatureExplanation, loss float64) string {
	parts := []string{severitySentence(loss), "\nMain reasons for this assessment:"}

	top := explanations
	if len(top) > maxFactorSentences {
		top = top[:maxFactorSentences]
	}
	for i, e := range top {
		if s, ok := factorSentence(e); ok {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, s))
		}
	}
	return strings.Join(parts, "\n")
}

func severitySentence(loss float64) string {
	switch {
	case loss < 10:
		return "Your crops are in good condition with minimal loss detected."
	case loss < 25:
		return "Your crops show moderate stress with some damage."
	case loss < 50:
		return "Your crops have significant damage."
	default:
		return "Your crops have severe damage."
	}
}

func factorSentence(e domain.FeatureExplanation) (string, bool) {
	v := e.Value
	switch e.Feature {
	case domain.FeatureNDVIBefore:
		return "Initial crop health was " + pick(v > 0.6, "good", "moderate"), true
	case domain.FeatureNDVICurrent:
		return "Current crop health is " + pick(v > 0.6, "good", "poor"), true
	case domain.FeatureRainfall:
		switch {
		case v < 5:
			return fmt.Sprintf("Very low rainfall (%.1fmm) causing drought stress", v), true
		case v > 25:
			return fmt.Sprintf("Very high rainfall (%.1fmm) causing waterlogging", v), true
		default:
			return fmt.Sprintf("Rainfall levels (%.1fmm) are moderate", v), true
		}
	case domain.FeatureTemperature:
		switch {
		case v > 38:
			return fmt.Sprintf("High temperature (%.1f°C) causing heat stress", v), true
		case v < 20:
			return fmt.Sprintf("Low temperature (%.1f°C) slowing growth", v), true
		default:
			return fmt.Sprintf("Temperature (%.1f°C) is suitable", v), true
		}
	case domain.FeatureHumidity:
		switch {
		case v < 40:
			return fmt.Sprintf("Low humidity (%.1f%%) causing water stress", v), true
		case v > 85:
			return fmt.Sprintf("High humidity (%.1f%%) promoting diseases", v), true
		}
	case domain.FeatureWindSpeed:
		if v > 20 {
			return fmt.Sprintf("Strong winds (%.1fkm/h) causing physical damage", v), true
		}
	}
	return "", false
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// CheckEligibility compares loss with the crop's PMFBY threshold. The
// boundary is inclusive. When eligible, the text names up to two features
// with a positive contribution, in ranking order.
func CheckEligibility(loss float64, cropType string, explanations []domain.FeatureExplanation) domain.EligibilityVerdict {
	crop := domain.NormalizeCropType(cropType)
	if crop == "" {
		crop = domain.DefaultCropType
	}
	threshold := domain.EligibilityThreshold(crop)
	eligible := loss >= threshold

	var b strings.Builder
	fmt.Fprintf(&b, "For %s crops, PMFBY compensation requires minimum %.1f%% loss. ", crop, threshold)
	if eligible {
		fmt.Fprintf(&b, "Your assessed loss of %.1f%% exceeds this threshold, so you are eligible for compensation.", loss)
		if factors := damageFactors(explanations, 2); len(factors) > 0 {
			fmt.Fprintf(&b, " Main damage factors: %s.", strings.Join(factors, ", "))
		}
	} else {
		fmt.Fprintf(&b, "Your assessed loss of %.1f%% is below this threshold, so compensation is not available under PMFBY.", loss)
	}

	return domain.EligibilityVerdict{
		Eligible:       eligible,
		Threshold:      threshold,
		LossPercentage: loss,
		Explanation:    b.String(),
	}
}

func damageFactors(explanations []domain.FeatureExplanation, limit int) []string {
	var out []string
	for _, e := range explanations {
		if len(out) == limit {
			break
		}
		if e.Contribution > 0 {
			out = append(out, strings.ReplaceAll(e.Feature, "_", " "))
		}
	}
	return out
}

// Risk levels reported alongside a prediction.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// RiskLevel buckets a predicted loss percentage.
func RiskLevel(loss float64) string {
	switch {
	case loss > 30:
		return RiskHigh
	case loss > 15:
		return RiskMedium
	default:
		return RiskLow
	}
}
