package usecase

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"myopia-screening-service/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Patient{},
		&entity.Examination{},
		&entity.Prediction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedPatient(t *testing.T, db *gorm.DB, hospitalID uuid.UUID, dateOfBirth time.Time) *entity.Patient {
	t.Helper()

	patient := &entity.Patient{
		Name:        "Test Patient",
		Phone:       "08123456789",
		Address:     "Jl. Test No. 1",
		Gender:      entity.GenderFemale,
		DateOfBirth: dateOfBirth,
		HospitalID:  hospitalID,
	}
	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return patient
}

func seedExamination(t *testing.T, db *gorm.DB, patientID uuid.UUID, imageURL string, examinationDate time.Time) *entity.Examination {
	t.Helper()

	examination := &entity.Examination{
		PatientID:       patientID,
		ExaminationDate: examinationDate,
		ImageURL:        imageURL,
		CreatedBy:       uuid.New(),
	}
	if imageURL != "" {
		examination.ImageObjectKey = "examinations/" + uuid.NewString() + ".jpg"
	}
	if err := db.Create(examination).Error; err != nil {
		t.Fatalf("failed to seed examination: %v", err)
	}
	return examination
}

func seedPrediction(t *testing.T, db *gorm.DB, examinationID, patientID uuid.UUID, risk entity.RiskLevel, predictedAt time.Time) *entity.Prediction {
	t.Helper()

	prediction := &entity.Prediction{
		ExaminationID: examinationID,
		PatientID:     patientID,
		MyopiaRisk:    risk,
		Confidence:    0.75,
		MLPrediction:  entity.MLPredictionMyopia,
		PredictedAt:   predictedAt,
	}
	if err := db.Create(prediction).Error; err != nil {
		t.Fatalf("failed to seed prediction: %v", err)
	}
	return prediction
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
