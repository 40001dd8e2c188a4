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

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id, hospitalID uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).
		Where("id = ? AND hospital_id = ?", id, hospitalID).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindAll(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID, search string, offset, limit int) ([]entity.Patient, int64, error) {
	query := db.WithContext(ctx).Model(&entity.Patient{}).Where("hospital_id = ?", hospitalID)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []entity.Patient
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// FindExamined returns patients in scope that have at least one examination.
func (r *patientRepository) FindExamined(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID, offset, limit int) ([]entity.Patient, int64, error) {
	sub := db.Model(&entity.Examination{}).Distinct("patient_id").Select("patient_id")
	query := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("hospital_id = ?", hospitalID).
		Where("id IN (?)", sub)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []entity.Patient
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *patientRepository) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Save(patient).Error
}

func (r *patientRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Patient{}).Error
}

func (r *patientRepository) CountByHospital(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("hospital_id = ?", hospitalID).
		Count(&count).Error
	return count, err
}

func (r *patientRepository) FindBirthDates(ctx context.Context, db *gorm.DB, hospitalID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("hospital_id = ?", hospitalID).
		Pluck("date_of_birth", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
