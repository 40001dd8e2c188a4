package service

import (
	"testing"

	"myopia-screening-service/internal/domain/entity"
)

func TestDetermineRiskLevelMyopiaTiers(t *testing.T) {
	cases := []struct {
		name       string
		confidence float64
		want       entity.RiskLevel
	}{
		{"at high threshold", 80, entity.RiskHigh},
		{"just below high threshold", 79.9, entity.RiskMedium},
		{"well above high threshold", 97.5, entity.RiskHigh},
		{"at medium threshold", 60, entity.RiskMedium},
		{"just below medium threshold", 59.9, entity.RiskLow},
		{"low confidence", 10, entity.RiskLow},
		{"above scale is still high", 150, entity.RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetermineRiskLevel(entity.MLPredictionMyopia, tc.confidence)
			if got != tc.want {
				t.Fatalf("DetermineRiskLevel(MYOPIA, %v) = %v, want %v", tc.confidence, got, tc.want)
			}
		})
	}
}

func TestDetermineRiskLevelNormalAlwaysLow(t *testing.T) {
	for _, confidence := range []float64{-5, 0, 59.9, 60, 80, 99.9, 120} {
		got := DetermineRiskLevel(entity.MLPredictionNormal, confidence)
		if got != entity.RiskLow {
			t.Fatalf("DetermineRiskLevel(NORMAL, %v) = %v, want %v", confidence, got, entity.RiskLow)
		}
	}
}

func TestGenerateRecommendationsDeterministic(t *testing.T) {
	first := GenerateRecommendations(entity.RiskHigh, entity.MLPredictionMyopia)
	second := GenerateRecommendations(entity.RiskHigh, entity.MLPredictionMyopia)

	if len(first) != len(second) {
		t.Fatalf("recommendation count changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recommendation %d changed between calls: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestGenerateRecommendationsDistinctPerTier(t *testing.T) {
	low := GenerateRecommendations(entity.RiskLow, entity.MLPredictionNormal)
	medium := GenerateRecommendations(entity.RiskMedium, entity.MLPredictionMyopia)
	high := GenerateRecommendations(entity.RiskHigh, entity.MLPredictionMyopia)

	if len(low) == 0 || len(medium) == 0 || len(high) == 0 {
		t.Fatal("every tier must produce at least one recommendation")
	}
	if low[0] == medium[0] || medium[0] == high[0] || low[0] == high[0] {
		t.Fatalf("tiers must differ: low=%q medium=%q high=%q", low[0], medium[0], high[0])
	}
}

func TestGenerateRecommendationsReturnsCopy(t *testing.T) {
	first := GenerateRecommendations(entity.RiskLow, entity.MLPredictionNormal)
	first[0] = "mutated"

	second := GenerateRecommendations(entity.RiskLow, entity.MLPredictionNormal)
	if second[0] == "mutated" {
		t.Fatal("mutating a returned slice must not affect later calls")
	}
}
