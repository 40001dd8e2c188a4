package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/repository"
	"myopia-screening-service/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stubFetcher writes a real temp file so the pipeline's cleanup behavior
// is observable from the outside.
type stubFetcher struct {
	err      error
	lastPath string
}

func (f *stubFetcher) FetchToTemp(ctx context.Context, imageURL string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	path := filepath.Join(os.TempDir(), "stub-image-"+uuid.NewString()+".jpg")
	if err := os.WriteFile(path, []byte("image bytes"), 0o600); err != nil {
		return "", nil, err
	}
	f.lastPath = path
	return path, func() { os.Remove(path) }, nil
}

type stubPredictor struct {
	result *service.InferenceResult
	err    error
}

func (p *stubPredictor) Predict(ctx context.Context, imagePath string) (*service.InferenceResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func newPredictionFixture(t *testing.T, db *gorm.DB, fetcher ImageFetcher, predictor InferencePredictor, allowRerun bool) PredictionUsecase {
	t.Helper()
	return NewPredictionUsecase(
		db,
		newTestLogger(),
		repository.NewExaminationRepository(),
		repository.NewPredictionRepository(),
		fetcher,
		predictor,
		allowRerun,
	)
}

func TestRunPredictionSuccess(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	fetcher := &stubFetcher{}
	predictor := &stubPredictor{result: &service.InferenceResult{
		Prediction:        entity.MLPredictionMyopia,
		Confidence:        85.5,
		ProbabilityMyopia: 0.855,
		ProbabilityNormal: 0.145,
	}}
	usecase := newPredictionFixture(t, db, fetcher, predictor, true)

	response, err := usecase.RunPrediction(context.Background(), examination.ID)
	if err != nil {
		t.Fatalf("RunPrediction failed: %v", err)
	}

	if response.MyopiaRisk != string(entity.RiskHigh) {
		t.Errorf("risk = %q, want %q", response.MyopiaRisk, entity.RiskHigh)
	}
	if response.Confidence != 0.855 {
		t.Errorf("confidence = %v, want 0.855 (normalized from 85.5)", response.Confidence)
	}
	if len(response.Recommendations) == 0 {
		t.Error("expected recommendations on a high risk prediction")
	}
	if response.ExaminationID != examination.ID {
		t.Errorf("examination_id = %v, want %v", response.ExaminationID, examination.ID)
	}
	if response.PatientID != patient.ID {
		t.Errorf("patient_id = %v, want %v", response.PatientID, patient.ID)
	}

	if got := countRows(t, db, &entity.Prediction{}); got != 1 {
		t.Errorf("prediction rows = %d, want 1", got)
	}
	if _, err := os.Stat(fetcher.lastPath); !os.IsNotExist(err) {
		t.Error("temp image file must be removed after a successful run")
	}
}

func TestRunPredictionExaminationNotFound(t *testing.T) {
	db := newTestDB(t)
	usecase := newPredictionFixture(t, db, &stubFetcher{}, &stubPredictor{}, true)

	_, err := usecase.RunPrediction(context.Background(), uuid.New())
	if !errors.Is(err, ErrExaminationNotFound) {
		t.Fatalf("expected ErrExaminationNotFound, got %v", err)
	}
}

func TestRunPredictionNoImage(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "", time.Now())

	usecase := newPredictionFixture(t, db, &stubFetcher{}, &stubPredictor{}, true)

	_, err := usecase.RunPrediction(context.Background(), examination.ID)
	if !errors.Is(err, ErrNoImageAvailable) {
		t.Fatalf("expected ErrNoImageAvailable, got %v", err)
	}
	if got := countRows(t, db, &entity.Prediction{}); got != 0 {
		t.Errorf("prediction rows = %d, want 0 after rejected run", got)
	}
}

func TestRunPredictionInferenceFailureLeavesNoRecord(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	fetcher := &stubFetcher{}
	predictor := &stubPredictor{err: &service.InferenceError{Timeout: true, Err: errors.New("deadline exceeded")}}
	usecase := newPredictionFixture(t, db, fetcher, predictor, true)

	_, err := usecase.RunPrediction(context.Background(), examination.ID)

	var inferenceErr *service.InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected *service.InferenceError, got %v", err)
	}
	if !inferenceErr.Timeout {
		t.Error("timeout flag must survive through the pipeline")
	}
	if got := countRows(t, db, &entity.Prediction{}); got != 0 {
		t.Errorf("prediction rows = %d, want 0 after failed run", got)
	}
	if _, statErr := os.Stat(fetcher.lastPath); !os.IsNotExist(statErr) {
		t.Error("temp image file must be removed after a failed run")
	}
}

func TestRunPredictionFetchFailure(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	fetcher := &stubFetcher{err: &service.UpstreamError{Err: errors.New("connection refused")}}
	usecase := newPredictionFixture(t, db, fetcher, &stubPredictor{}, true)

	_, err := usecase.RunPrediction(context.Background(), examination.ID)

	var upstreamErr *service.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected *service.UpstreamError, got %v", err)
	}
	if got := countRows(t, db, &entity.Prediction{}); got != 0 {
		t.Errorf("prediction rows = %d, want 0 after failed fetch", got)
	}
}

func TestRunPredictionRerunAppends(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	predictor := &stubPredictor{result: &service.InferenceResult{
		Prediction: entity.MLPredictionMyopia,
		Confidence: 70,
	}}
	usecase := newPredictionFixture(t, db, &stubFetcher{}, predictor, true)

	for i := 0; i < 2; i++ {
		if _, err := usecase.RunPrediction(context.Background(), examination.ID); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	if got := countRows(t, db, &entity.Prediction{}); got != 2 {
		t.Errorf("prediction rows = %d, want 2 when reruns append", got)
	}
}

func TestRunPredictionRerunRejected(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	predictor := &stubPredictor{result: &service.InferenceResult{
		Prediction: entity.MLPredictionNormal,
		Confidence: 95,
	}}
	usecase := newPredictionFixture(t, db, &stubFetcher{}, predictor, false)

	if _, err := usecase.RunPrediction(context.Background(), examination.ID); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	_, err := usecase.RunPrediction(context.Background(), examination.ID)
	if !errors.Is(err, ErrPredictionExists) {
		t.Fatalf("expected ErrPredictionExists, got %v", err)
	}
	if got := countRows(t, db, &entity.Prediction{}); got != 1 {
		t.Errorf("prediction rows = %d, want 1 when reruns are rejected", got)
	}
}

func TestRunPredictionNormalLabelLowRisk(t *testing.T) {
	db := newTestDB(t)
	patient := seedPatient(t, db, uuid.New(), time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	predictor := &stubPredictor{result: &service.InferenceResult{
		Prediction: entity.MLPredictionNormal,
		Confidence: 99,
	}}
	usecase := newPredictionFixture(t, db, &stubFetcher{}, predictor, true)

	response, err := usecase.RunPrediction(context.Background(), examination.ID)
	if err != nil {
		t.Fatalf("RunPrediction failed: %v", err)
	}
	if response.MyopiaRisk != string(entity.RiskLow) {
		t.Errorf("risk = %q, want %q for a NORMAL label", response.MyopiaRisk, entity.RiskLow)
	}
}
