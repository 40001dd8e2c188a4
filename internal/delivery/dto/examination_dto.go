package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type CreateExaminationRequest struct {
	PatientID           uuid.UUID `json:"patient_id" validate:"required"`
	Notes               string    `json:"notes"`
	LeftEyeVision       *float64  `json:"left_eye_vision" validate:"omitempty,gte=0"`
	RightEyeVision      *float64  `json:"right_eye_vision" validate:"omitempty,gte=0"`
	IntraocularPressure *float64  `json:"intraocular_pressure" validate:"omitempty,gte=0"`
}

type UpdateExaminationRequest struct {
	Notes               string   `json:"notes"`
	LeftEyeVision       *float64 `json:"left_eye_vision" validate:"omitempty,gte=0"`
	RightEyeVision      *float64 `json:"right_eye_vision" validate:"omitempty,gte=0"`
	IntraocularPressure *float64 `json:"intraocular_pressure" validate:"omitempty,gte=0"`
}

// ImageUpload carries a multipart image file from the handler to the
// examination usecase without re-reading it into memory.
type ImageUpload struct {
	Reader   io.Reader
	Size     int64
	Filename string
}

type ExaminationResponse struct {
	ID                  uuid.UUID        `json:"id"`
	PatientID           uuid.UUID        `json:"patient_id"`
	Patient             *PatientResponse `json:"patient,omitempty"`
	ExaminationDate     time.Time        `json:"examination_date"`
	Notes               string           `json:"notes,omitempty"`
	LeftEyeVision       *float64         `json:"left_eye_vision,omitempty"`
	RightEyeVision      *float64         `json:"right_eye_vision,omitempty"`
	IntraocularPressure *float64         `json:"intraocular_pressure,omitempty"`
	ImageURL            string           `json:"image_url,omitempty"`
	CreatedBy           uuid.UUID        `json:"created_by"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ExaminationDetailResponse attaches the most recent prediction, when
// one exists, to a single-examination read.
type ExaminationDetailResponse struct {
	ExaminationResponse
	Prediction *PredictionResponse `json:"prediction,omitempty"`
}

type ImageUploadResponse struct {
	ImageURL string `json:"image_url"`
}
