package converter

import (
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/domain/entity"
)

func ExaminationToResponse(examination *entity.Examination) *dto.ExaminationResponse {
	if examination == nil {
		return nil
	}

	return &dto.ExaminationResponse{
		ID:                  examination.ID,
		PatientID:           examination.PatientID,
		Patient:             PatientToResponse(examination.Patient),
		ExaminationDate:     examination.ExaminationDate,
		Notes:               examination.Notes,
		LeftEyeVision:       examination.LeftEyeVision,
		RightEyeVision:      examination.RightEyeVision,
		IntraocularPressure: examination.IntraocularPressure,
		ImageURL:            examination.ImageURL,
		CreatedBy:           examination.CreatedBy,
		CreatedAt:           examination.CreatedAt,
		UpdatedAt:           examination.UpdatedAt,
	}
}

func ExaminationsToResponses(examinations []entity.Examination) []*dto.ExaminationResponse {
	responses := make([]*dto.ExaminationResponse, 0, len(examinations))
	for i := range examinations {
		responses = append(responses, ExaminationToResponse(&examinations[i]))
	}
	return responses
}
