package converter

import (
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to its response DTO.
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:               patient.ID,
		Name:             patient.Name,
		Email:            patient.Email,
		Phone:            patient.Phone,
		Address:          patient.Address,
		Gender:           patient.Gender,
		DateOfBirth:      patient.DateOfBirth.Format("2006-01-02"),
		RegistrationDate: patient.RegistrationDate,
		HospitalID:       patient.HospitalID,
		EmergencyContact: patient.EmergencyContact,
		MedicalHistory:   patient.MedicalHistory,
		CreatedAt:        patient.CreatedAt,
		UpdatedAt:        patient.UpdatedAt,
	}
}

func PatientsToResponses(patients []entity.Patient) []*dto.PatientResponse {
	responses := make([]*dto.PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, PatientToResponse(&patients[i]))
	}
	return responses
}
