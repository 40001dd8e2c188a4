package handler

import (
	"net/http"

	"myopia-screening-service/internal/usecase"
	"myopia-screening-service/pkg/response"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
	}
}

func (h *ReportHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportUsecase.GetDashboardStats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get dashboard statistics")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
}

func (h *ReportHandler) GetMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.reportUsecase.GetMonthlyTrends(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get monthly trends")
		return
	}

	response.Success(w, http.StatusOK, "Monthly trends retrieved successfully", trends)
}

func (h *ReportHandler) GetAgeGroupAnalysis(w http.ResponseWriter, r *http.Request) {
	groups, err := h.reportUsecase.GetAgeGroupAnalysis(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get age group analysis")
		return
	}

	response.Success(w, http.StatusOK, "Age group analysis retrieved successfully", groups)
}

func (h *ReportHandler) GetExaminedPatients(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 1, 50)

	patients, total, err := h.reportUsecase.GetExaminedPatients(r.Context(), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get examined patients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Examined patients retrieved successfully", patients, response.NewMeta(page, limit, total))
}

func (h *ReportHandler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 1, 50)

	patients, total, err := h.reportUsecase.GetAllPatients(r.Context(), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get patients")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Patients retrieved successfully", patients, response.NewMeta(page, limit, total))
}
