package repository

import (
	"context"
	"time"

	"myopia-screening-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionRepository persists pipeline outcomes. Predictions are
// immutable once created, so there is deliberately no Update method.
type PredictionRepository interface {
	Create(ctx context.Context, db *gorm.DB, prediction *entity.Prediction) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Prediction, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prediction, error)
	FindAll(ctx context.Context, db *gorm.DB, patientID *uuid.UUID, offset, limit int) ([]entity.Prediction, int64, error)
	FindLatestByExaminationID(ctx context.Context, db *gorm.DB, examinationID uuid.UUID) (*entity.Prediction, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CountDetections(ctx context.Context, db *gorm.DB) (int64, error)
	CountByRisk(ctx context.Context, db *gorm.DB) (map[entity.RiskLevel]int64, error)
	FindDetectionTimesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]time.Time, error)
	DeleteByExaminationID(ctx context.Context, db *gorm.DB, examinationID uuid.UUID) error
	DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) error
}
