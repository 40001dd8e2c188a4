package repository

import (
	"context"
	"errors"
	"time"

	"myopia-screening-service/internal/domain/entity"
	domainRepo "myopia-screening-service/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type examinationRepository struct{}

func NewExaminationRepository() domainRepo.ExaminationRepository {
	return &examinationRepository{}
}

func (r *examinationRepository) Create(ctx context.Context, db *gorm.DB, examination *entity.Examination) error {
	return db.WithContext(ctx).Create(examination).Error
}

func (r *examinationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Examination, error) {
	var examination entity.Examination
	err := db.WithContext(ctx).Preload("Patient").Where("id = ?", id).First(&examination).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &examination, nil
}

func (r *examinationRepository) FindAll(ctx context.Context, db *gorm.DB, patientID *uuid.UUID, offset, limit int) ([]entity.Examination, int64, error) {
	query := db.WithContext(ctx).Model(&entity.Examination{})
	if patientID != nil {
		query = query.Where("patient_id = ?", *patientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var examinations []entity.Examination
	err := query.Preload("Patient").
		Order("examination_date DESC").
		Offset(offset).Limit(limit).
		Find(&examinations).Error
	if err != nil {
		return nil, 0, err
	}
	return examinations, total, nil
}

func (r *examinationRepository) Update(ctx context.Context, db *gorm.DB, examination *entity.Examination) error {
	return db.WithContext(ctx).Save(examination).Error
}

func (r *examinationRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Examination{}).Error
}

func (r *examinationRepository) DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) error {
	return db.WithContext(ctx).Where("patient_id = ?", patientID).Delete(&entity.Examination{}).Error
}

func (r *examinationRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Examination{}).Count(&count).Error
	return count, err
}

// FindDatesSince returns examination dates on or after the cutoff.
// Calendar grouping happens in the aggregation engine so the query stays
// portable across SQL dialects.
func (r *examinationRepository) FindDatesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := db.WithContext(ctx).Model(&entity.Examination{}).
		Where("examination_date >= ?", since).
		Pluck("examination_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
