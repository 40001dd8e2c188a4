package handler

import (
	"errors"
	"net/http"

	"myopia-screening-service/internal/service"
	"myopia-screening-service/internal/usecase"
	"myopia-screening-service/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PredictionHandler struct {
	predictionUsecase usecase.PredictionUsecase
}

func NewPredictionHandler(predictionUsecase usecase.PredictionUsecase) *PredictionHandler {
	return &PredictionHandler{
		predictionUsecase: predictionUsecase,
	}
}

// CreatePrediction runs the pipeline for one examination. Failures of
// the blob store or the model service map to gateway-class statuses so
// callers can tell them apart from our own errors.
func (h *PredictionHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	examinationID, err := uuid.Parse(vars["examinationId"])
	if err != nil {
		response.BadRequest(w, "Invalid examination ID")
		return
	}

	prediction, err := h.predictionUsecase.RunPrediction(r.Context(), examinationID)
	if err != nil {
		var inferenceErr *service.InferenceError
		var upstreamErr *service.UpstreamError

		switch {
		case errors.Is(err, usecase.ErrExaminationNotFound):
			response.NotFound(w, "Examination not found")
		case errors.Is(err, usecase.ErrNoImageAvailable):
			response.BadRequest(w, "No image available for prediction")
		case errors.Is(err, usecase.ErrPredictionExists):
			response.Conflict(w, "Prediction already exists for this examination")
		case errors.As(err, &inferenceErr):
			if inferenceErr.Timeout {
				response.GatewayTimeout(w, "Prediction service timed out")
			} else {
				response.BadGateway(w, "Failed to get prediction from ML model")
			}
		case errors.As(err, &upstreamErr):
			response.BadGateway(w, "Failed to fetch examination image")
		default:
			response.InternalServerError(w, "Failed to create prediction")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Prediction created successfully", prediction)
}

func (h *PredictionHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 1, 20)

	var patientID *uuid.UUID
	if raw := r.URL.Query().Get("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid patient ID")
			return
		}
		patientID = &id
	}

	predictions, total, err := h.predictionUsecase.GetPredictions(r.Context(), patientID, page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get predictions")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Predictions retrieved successfully", predictions, response.NewMeta(page, limit, total))
}

func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	prediction, err := h.predictionUsecase.GetPrediction(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrPredictionNotFound:
			response.NotFound(w, "Prediction not found")
		default:
			response.InternalServerError(w, "Failed to get prediction")
		}
		return
	}

	response.Success(w, http.StatusOK, "Prediction retrieved successfully", prediction)
}

func (h *PredictionHandler) GetPatientPredictions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID, err := uuid.Parse(vars["patientId"])
	if err != nil {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	predictions, err := h.predictionUsecase.GetPatientPredictions(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to get patient predictions")
		return
	}

	response.Success(w, http.StatusOK, "Patient predictions retrieved successfully", predictions)
}
