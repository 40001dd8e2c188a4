package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a registered patient. Every patient belongs to exactly one
// hospital; the hospital ID is the ownership boundary for reads, updates
// and aggregation.
type Patient struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Email            string    `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone            string    `gorm:"type:varchar(30);not null;index" json:"phone"`
	Address          string    `gorm:"type:text;not null" json:"address"`
	Gender           string    `gorm:"type:varchar(10);not null" json:"gender"`
	DateOfBirth      time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`
	HospitalID       uuid.UUID `gorm:"type:uuid;not null;index" json:"hospital_id"`
	EmergencyContact string    `gorm:"type:varchar(255)" json:"emergency_contact,omitempty"`
	MedicalHistory   string    `gorm:"type:text" json:"medical_history,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Examinations []Examination `gorm:"foreignKey:PatientID" json:"examinations,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)
