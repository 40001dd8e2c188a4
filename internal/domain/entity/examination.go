package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Examination records one clinical visit: measurements plus an optional
// fundus image stored in the blob store. The image reference is what
// makes an examination eligible for the prediction pipeline.
type Examination struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID           uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	ExaminationDate     time.Time `gorm:"not null;index" json:"examination_date"`
	Notes               string    `gorm:"type:text" json:"notes,omitempty"`
	LeftEyeVision       *float64  `json:"left_eye_vision,omitempty"`
	RightEyeVision      *float64  `json:"right_eye_vision,omitempty"`
	IntraocularPressure *float64  `json:"intraocular_pressure,omitempty"`
	ImageURL            string    `gorm:"type:text" json:"image_url,omitempty"`
	ImageObjectKey      string    `gorm:"type:varchar(512)" json:"image_object_key,omitempty"`
	CreatedBy           uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Examination) TableName() string {
	return "examinations"
}

func (e *Examination) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// HasImage reports whether an image is attached, i.e. whether this
// examination can enter the prediction pipeline.
func (e *Examination) HasImage() bool {
	return e.ImageURL != ""
}
