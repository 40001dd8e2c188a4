package http

import (
	"net/http"

	"myopia-screening-service/internal/delivery/http/handler"
	"myopia-screening-service/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	patientHandler     *handler.PatientHandler
	examinationHandler *handler.ExaminationHandler
	predictionHandler  *handler.PredictionHandler
	reportHandler      *handler.ReportHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	examinationHandler *handler.ExaminationHandler,
	predictionHandler *handler.PredictionHandler,
	reportHandler *handler.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		patientHandler:     patientHandler,
		examinationHandler: examinationHandler,
		predictionHandler:  predictionHandler,
		reportHandler:      reportHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Everything clinical requires an authenticated hospital scope.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Patients
	protected.HandleFunc("/patients", r.patientHandler.CreatePatient).Methods(http.MethodPost)
	protected.HandleFunc("/patients", r.patientHandler.GetPatients).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}", r.patientHandler.UpdatePatient).Methods(http.MethodPut)
	protected.HandleFunc("/patients/{id}", r.patientHandler.DeletePatient).Methods(http.MethodDelete)

	// Examinations
	protected.HandleFunc("/examinations", r.examinationHandler.CreateExamination).Methods(http.MethodPost)
	protected.HandleFunc("/examinations", r.examinationHandler.GetExaminations).Methods(http.MethodGet)
	protected.HandleFunc("/examinations/{id}", r.examinationHandler.GetExamination).Methods(http.MethodGet)
	protected.HandleFunc("/examinations/{id}", r.examinationHandler.UpdateExamination).Methods(http.MethodPut)
	protected.HandleFunc("/examinations/{id}", r.examinationHandler.DeleteExamination).Methods(http.MethodDelete)
	protected.HandleFunc("/examinations/{id}/image", r.examinationHandler.UploadImage).Methods(http.MethodPost)

	// Predictions
	protected.HandleFunc("/predictions/{examinationId}", r.predictionHandler.CreatePrediction).Methods(http.MethodPost)
	protected.HandleFunc("/predictions", r.predictionHandler.GetPredictions).Methods(http.MethodGet)
	protected.HandleFunc("/predictions/{id}", r.predictionHandler.GetPrediction).Methods(http.MethodGet)
	protected.HandleFunc("/predictions/patient/{patientId}", r.predictionHandler.GetPatientPredictions).Methods(http.MethodGet)

	// Reports
	protected.HandleFunc("/reports/dashboard", r.reportHandler.GetDashboardStats).Methods(http.MethodGet)
	protected.HandleFunc("/reports/monthly-trends", r.reportHandler.GetMonthlyTrends).Methods(http.MethodGet)
	protected.HandleFunc("/reports/age-groups", r.reportHandler.GetAgeGroupAnalysis).Methods(http.MethodGet)
	protected.HandleFunc("/reports/examined-patients", r.reportHandler.GetExaminedPatients).Methods(http.MethodGet)
	protected.HandleFunc("/reports/patients", r.reportHandler.GetAllPatients).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
