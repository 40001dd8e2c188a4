package converter

import (
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/domain/entity"
)

func PredictionToResponse(prediction *entity.Prediction) *dto.PredictionResponse {
	if prediction == nil {
		return nil
	}

	return &dto.PredictionResponse{
		ID:                prediction.ID,
		ExaminationID:     prediction.ExaminationID,
		PatientID:         prediction.PatientID,
		MyopiaRisk:        string(prediction.MyopiaRisk),
		Confidence:        prediction.Confidence,
		Recommendations:   []string(prediction.Recommendations),
		PredictedAt:       prediction.PredictedAt,
		MLPrediction:      prediction.MLPrediction,
		ProbabilityMyopia: prediction.ProbabilityMyopia,
		ProbabilityNormal: prediction.ProbabilityNormal,
		Patient:           PatientToResponse(prediction.Patient),
		Examination:       ExaminationToResponse(prediction.Examination),
	}
}

func PredictionsToResponses(predictions []entity.Prediction) []*dto.PredictionResponse {
	responses := make([]*dto.PredictionResponse, 0, len(predictions))
	for i := range predictions {
		responses = append(responses, PredictionToResponse(&predictions[i]))
	}
	return responses
}
