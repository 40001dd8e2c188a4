package repository

import (
	"context"
	"time"

	"myopia-screening-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExaminationRepository interface {
	Create(ctx context.Context, db *gorm.DB, examination *entity.Examination) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Examination, error)
	FindAll(ctx context.Context, db *gorm.DB, patientID *uuid.UUID, offset, limit int) ([]entity.Examination, int64, error)
	Update(ctx context.Context, db *gorm.DB, examination *entity.Examination) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) error
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	FindDatesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]time.Time, error)
}
