package usecase

import (
	"context"
	"errors"
	"time"

	"myopia-screening-service/internal/converter"
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/domain/repository"
	"myopia-screening-service/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrExaminationNotFound = errors.New("examination not found")
	ErrPredictionNotFound  = errors.New("prediction not found")
	ErrNoImageAvailable    = errors.New("no image available for prediction")
	ErrPredictionExists    = errors.New("prediction already exists for this examination")
)

// InferencePredictor runs the external model on a local image copy.
type InferencePredictor interface {
	Predict(ctx context.Context, imagePath string) (*service.InferenceResult, error)
}

// ImageFetcher downloads the examination image into a temp file and
// hands back a cleanup func that releases it.
type ImageFetcher interface {
	FetchToTemp(ctx context.Context, imageURL string) (string, func(), error)
}

type PredictionUsecase interface {
	RunPrediction(ctx context.Context, examinationID uuid.UUID) (*dto.PredictionResponse, error)
	GetPrediction(ctx context.Context, id uuid.UUID) (*dto.PredictionResponse, error)
	GetPredictions(ctx context.Context, patientID *uuid.UUID, page, limit int) ([]*dto.PredictionResponse, int64, error)
	GetPatientPredictions(ctx context.Context, patientID uuid.UUID) ([]*dto.PredictionResponse, error)
}

type predictionUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	examinationRepo repository.ExaminationRepository
	predictionRepo  repository.PredictionRepository
	fetcher         ImageFetcher
	inference       InferencePredictor
	allowRerun      bool
}

func NewPredictionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	examinationRepo repository.ExaminationRepository,
	predictionRepo repository.PredictionRepository,
	fetcher ImageFetcher,
	inference InferencePredictor,
	allowRerun bool,
) PredictionUsecase {
	return &predictionUsecase{
		db:              db,
		log:             log,
		examinationRepo: examinationRepo,
		predictionRepo:  predictionRepo,
		fetcher:         fetcher,
		inference:       inference,
		allowRerun:      allowRerun,
	}
}

// RunPrediction executes one end-to-end pipeline run for an examination.
//
// Flow:
// 1. Load the examination and verify it has an image attached
// 2. Apply the rerun policy (append a new record vs reject)
// 3. Download the image to a temp file, released on every exit path
// 4. Call the model service once, no retry
// 5. Classify, generate recommendations, persist the prediction
//
// Failures before step 5 leave no prediction record behind.
func (u *predictionUsecase) RunPrediction(ctx context.Context, examinationID uuid.UUID) (*dto.PredictionResponse, error) {
	examination, err := u.examinationRepo.FindByID(ctx, u.db, examinationID)
	if err != nil {
		u.log.Warnf("Failed to find examination %s: %+v", examinationID, err)
		return nil, err
	}
	if examination == nil {
		return nil, ErrExaminationNotFound
	}
	if !examination.HasImage() {
		return nil, ErrNoImageAvailable
	}

	if !u.allowRerun {
		existing, err := u.predictionRepo.FindLatestByExaminationID(ctx, u.db, examinationID)
		if err != nil {
			u.log.Warnf("Failed to check existing prediction for examination %s: %+v", examinationID, err)
			return nil, err
		}
		if existing != nil {
			return nil, ErrPredictionExists
		}
	}

	imagePath, cleanup, err := u.fetcher.FetchToTemp(ctx, examination.ImageURL)
	if err != nil {
		u.log.Warnf("Failed to fetch image for examination %s: %+v", examinationID, err)
		return nil, err
	}
	defer cleanup()

	result, err := u.inference.Predict(ctx, imagePath)
	if err != nil {
		u.log.Warnf("Inference failed for examination %s: %+v", examinationID, err)
		return nil, err
	}

	risk := service.DetermineRiskLevel(result.Prediction, result.Confidence)
	recommendations := service.GenerateRecommendations(risk, result.Prediction)

	prediction := &entity.Prediction{
		ExaminationID:     examination.ID,
		PatientID:         examination.PatientID,
		MyopiaRisk:        risk,
		Confidence:        result.Confidence / 100, // service reports a 0-100 percentage
		Recommendations:   datatypes.NewJSONSlice(recommendations),
		PredictedAt:       time.Now(),
		MLPrediction:      result.Prediction,
		ProbabilityMyopia: result.ProbabilityMyopia,
		ProbabilityNormal: result.ProbabilityNormal,
	}

	if err := u.predictionRepo.Create(ctx, u.db, prediction); err != nil {
		u.log.Errorf("Failed to persist prediction for examination %s: %+v", examinationID, err)
		return nil, err
	}

	u.log.Infof("Prediction created: examination=%s, risk=%s, confidence=%.2f", examination.ID, risk, prediction.Confidence)

	prediction.Patient = examination.Patient
	prediction.Examination = examination
	return converter.PredictionToResponse(prediction), nil
}

func (u *predictionUsecase) GetPrediction(ctx context.Context, id uuid.UUID) (*dto.PredictionResponse, error) {
	prediction, err := u.predictionRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find prediction %s: %+v", id, err)
		return nil, err
	}
	if prediction == nil {
		return nil, ErrPredictionNotFound
	}
	return converter.PredictionToResponse(prediction), nil
}

func (u *predictionUsecase) GetPredictions(ctx context.Context, patientID *uuid.UUID, page, limit int) ([]*dto.PredictionResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	predictions, total, err := u.predictionRepo.FindAll(ctx, u.db, patientID, (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list predictions: %+v", err)
		return nil, 0, err
	}
	return converter.PredictionsToResponses(predictions), total, nil
}

func (u *predictionUsecase) GetPatientPredictions(ctx context.Context, patientID uuid.UUID) ([]*dto.PredictionResponse, error) {
	predictions, err := u.predictionRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list predictions for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.PredictionsToResponses(predictions), nil
}
