package service

import "myopia-screening-service/internal/domain/entity"

// Risk thresholds on the 0-100 confidence scale. Lower bounds are
// inclusive. Out-of-range confidences (negative, >100) fall through the
// same comparisons without clamping.
const (
	highRiskThreshold   = 80
	mediumRiskThreshold = 60
)

// DetermineRiskLevel maps a raw inference label and its confidence
// percentage to a risk tier. A NORMAL label is always low risk,
// whatever the confidence.
func DetermineRiskLevel(prediction string, confidence float64) entity.RiskLevel {
	if prediction == entity.MLPredictionNormal {
		return entity.RiskLow
	}

	switch {
	case confidence >= highRiskThreshold:
		return entity.RiskHigh
	case confidence >= mediumRiskThreshold:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

var lowRiskRecommendations = []string{
	"Continue regular eye check-ups every 6-12 months",
	"Maintain good eye health habits",
	"Ensure adequate outdoor time and proper lighting",
}

var mediumRiskRecommendations = []string{
	"Schedule follow-up examination within 3 months",
	"Monitor closely for any vision changes",
	"Consider corrective measures if symptoms develop",
	"Limit prolonged near work and screen time",
}

var highRiskRecommendations = []string{
	"Immediate consultation with eye specialist required",
	"Consider corrective lenses or other interventions",
	"Regular monitoring every 3-6 months",
	"Implement myopia control strategies",
	"Educate on lifestyle modifications",
}

// GenerateRecommendations returns the fixed, ordered action list for a
// risk tier. The raw prediction label is accepted for future use but
// does not currently influence the output.
func GenerateRecommendations(risk entity.RiskLevel, prediction string) []string {
	var catalog []string
	switch risk {
	case entity.RiskHigh:
		catalog = highRiskRecommendations
	case entity.RiskMedium:
		catalog = mediumRiskRecommendations
	default:
		catalog = lowRiskRecommendations
	}

	recommendations := make([]string, len(catalog))
	copy(recommendations, catalog)
	return recommendations
}
