package repository

import (
	"context"
	"time"

	"myopia-screening-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id, hospitalID uuid.UUID) (*entity.Patient, error)
	FindAll(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID, search string, offset, limit int) ([]entity.Patient, int64, error)
	FindExamined(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID, offset, limit int) ([]entity.Patient, int64, error)
	Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	CountByHospital(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID) (int64, error)
	FindBirthDates(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID) ([]time.Time, error)
}
