package dto

// MyopiaDistribution is the three-way histogram of risk tiers.
type MyopiaDistribution struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

type DashboardStatsResponse struct {
	TotalExamined      int64              `json:"total_examined"`
	TotalPredictions   int64              `json:"total_predictions"`
	PositiveDetections int64              `json:"positive_detections"`
	DetectionRate      float64            `json:"detection_rate"`
	TotalPatients      int64              `json:"total_patients"`
	MyopiaDistribution MyopiaDistribution `json:"myopia_distribution"`
}

// MonthlyTrendEntry is one month of examination volume with the number
// of positive detections recorded in the same calendar month.
type MonthlyTrendEntry struct {
	Month      string `json:"month"`
	Count      int    `json:"count"`
	Detections int    `json:"detections"`
}

type AgeGroupEntry struct {
	AgeGroup string `json:"age_group"`
	Count    int    `json:"count"`
}
