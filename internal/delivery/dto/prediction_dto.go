package dto

import (
	"time"

	"github.com/google/uuid"
)

type PredictionResponse struct {
	ID                uuid.UUID            `json:"id"`
	ExaminationID     uuid.UUID            `json:"examination_id"`
	PatientID         uuid.UUID            `json:"patient_id"`
	MyopiaRisk        string               `json:"myopia_risk"`
	Confidence        float64              `json:"confidence"`
	Recommendations   []string             `json:"recommendations"`
	PredictedAt       time.Time            `json:"predicted_at"`
	MLPrediction      string               `json:"ml_prediction"`
	ProbabilityMyopia float64              `json:"probability_myopia"`
	ProbabilityNormal float64              `json:"probability_normal"`
	Patient           *PatientResponse     `json:"patient,omitempty"`
	Examination       *ExaminationResponse `json:"examination,omitempty"`
}
