package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/usecase"
	"myopia-screening-service/pkg/response"
	"myopia-screening-service/pkg/validator"

	"github.com/google/uuid"
)

// Examination images are fundus photographs; 10 MB is generous.
const maxImageSize = 10 << 20

type ExaminationHandler struct {
	examinationUsecase usecase.ExaminationUsecase
	validator          *validator.CustomValidator
}

func NewExaminationHandler(examinationUsecase usecase.ExaminationUsecase, validator *validator.CustomValidator) *ExaminationHandler {
	return &ExaminationHandler{
		examinationUsecase: examinationUsecase,
		validator:          validator,
	}
}

// CreateExamination accepts either a JSON body or a multipart form with
// an optional "image" file alongside the examination fields.
func (h *ExaminationHandler) CreateExamination(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExaminationRequest
	var image *dto.ImageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			response.BadRequest(w, "Invalid multipart form")
			return
		}

		parsed, ok := h.parseExaminationForm(w, r)
		if !ok {
			return
		}
		req = *parsed

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			image = &dto.ImageUpload{
				Reader:   file,
				Size:     header.Size,
				Filename: header.Filename,
			}
		} else if err != http.ErrMissingFile {
			response.BadRequest(w, "Invalid image file")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	examination, err := h.examinationUsecase.CreateExamination(r.Context(), &req, image)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to create examination")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Examination created successfully", examination)
}

func (h *ExaminationHandler) GetExaminations(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 1, 10)

	var patientID *uuid.UUID
	if raw := r.URL.Query().Get("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid patient ID")
			return
		}
		patientID = &id
	}

	examinations, total, err := h.examinationUsecase.GetExaminations(r.Context(), patientID, page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get examinations")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Examinations retrieved successfully", examinations, response.NewMeta(page, limit, total))
}

func (h *ExaminationHandler) GetExamination(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	examination, err := h.examinationUsecase.GetExamination(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrExaminationNotFound:
			response.NotFound(w, "Examination not found")
		default:
			response.InternalServerError(w, "Failed to get examination")
		}
		return
	}

	response.Success(w, http.StatusOK, "Examination retrieved successfully", examination)
}

func (h *ExaminationHandler) UpdateExamination(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateExaminationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	examination, err := h.examinationUsecase.UpdateExamination(r.Context(), id, &req)
	if err != nil {
		switch err {
		case usecase.ErrExaminationNotFound:
			response.NotFound(w, "Examination not found")
		default:
			response.InternalServerError(w, "Failed to update examination")
		}
		return
	}

	response.Success(w, http.StatusOK, "Examination updated successfully", examination)
}

func (h *ExaminationHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "No image file provided")
		return
	}
	defer file.Close()

	result, err := h.examinationUsecase.UploadImage(r.Context(), id, &dto.ImageUpload{
		Reader:   file,
		Size:     header.Size,
		Filename: header.Filename,
	})
	if err != nil {
		switch err {
		case usecase.ErrExaminationNotFound:
			response.NotFound(w, "Examination not found")
		default:
			response.InternalServerError(w, "Failed to upload image")
		}
		return
	}

	response.Success(w, http.StatusOK, "Image uploaded successfully", result)
}

func (h *ExaminationHandler) DeleteExamination(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	err := h.examinationUsecase.DeleteExamination(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrExaminationNotFound:
			response.NotFound(w, "Examination not found")
		default:
			response.InternalServerError(w, "Failed to delete examination")
		}
		return
	}

	response.Success(w, http.StatusOK, "Examination deleted successfully", nil)
}

func (h *ExaminationHandler) parseExaminationForm(w http.ResponseWriter, r *http.Request) (*dto.CreateExaminationRequest, bool) {
	patientID, err := uuid.Parse(r.FormValue("patient_id"))
	if err != nil {
		response.BadRequest(w, "Invalid patient ID")
		return nil, false
	}

	req := &dto.CreateExaminationRequest{
		PatientID: patientID,
		Notes:     r.FormValue("notes"),
	}

	fields := map[string]**float64{
		"left_eye_vision":      &req.LeftEyeVision,
		"right_eye_vision":     &req.RightEyeVision,
		"intraocular_pressure": &req.IntraocularPressure,
	}
	for name, target := range fields {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, "Invalid value for "+name)
			return nil, false
		}
		*target = &value
	}

	return req, true
}
