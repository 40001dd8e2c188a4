package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePatientRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"required,max=30"`
	Address          string `json:"address" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,max=255"`
	MedicalHistory   string `json:"medical_history"`
}

type UpdatePatientRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"required,max=30"`
	Address          string `json:"address" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,max=255"`
	MedicalHistory   string `json:"medical_history"`
}

type PatientResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	Gender           string    `json:"gender"`
	DateOfBirth      string    `json:"date_of_birth"`
	RegistrationDate time.Time `json:"registration_date"`
	HospitalID       uuid.UUID `json:"hospital_id"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	MedicalHistory   string    `json:"medical_history,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
