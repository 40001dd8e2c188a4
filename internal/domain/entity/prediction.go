package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RiskLevel is the discretized myopia risk output of the classifier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Raw labels returned by the inference service.
const (
	MLPredictionMyopia = "MYOPIA"
	MLPredictionNormal = "NORMAL"
)

// Prediction is the persisted outcome of one orchestration run.
// Records are immutable; a correction means running the pipeline again
// and appending a new record. PatientID is denormalized from the
// examination for query convenience.
type Prediction struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ExaminationID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"examination_id"`
	PatientID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"patient_id"`
	MyopiaRisk        RiskLevel                   `gorm:"type:varchar(10);not null;index" json:"myopia_risk"`
	Confidence        float64                     `gorm:"not null" json:"confidence"`
	Recommendations   datatypes.JSONSlice[string] `gorm:"not null" json:"recommendations"`
	PredictedAt       time.Time                   `gorm:"autoCreateTime;index" json:"predicted_at"`
	MLPrediction      string                      `gorm:"type:varchar(10)" json:"ml_prediction"`
	ProbabilityMyopia float64                     `json:"probability_myopia"`
	ProbabilityNormal float64                     `json:"probability_normal"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Examination *Examination `gorm:"foreignKey:ExaminationID" json:"examination,omitempty"`
	Patient     *Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Prediction) TableName() string {
	return "predictions"
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsDetection reports whether this prediction counts as a positive
// finding in reporting (medium or high risk).
func (p *Prediction) IsDetection() bool {
	return p.MyopiaRisk == RiskMedium || p.MyopiaRisk == RiskHigh
}
