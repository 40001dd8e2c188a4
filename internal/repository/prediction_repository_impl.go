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

type predictionRepository struct{}

func NewPredictionRepository() domainRepo.PredictionRepository {
	return &predictionRepository{}
}

func (r *predictionRepository) Create(ctx context.Context, db *gorm.DB, prediction *entity.Prediction) error {
	return db.WithContext(ctx).Create(prediction).Error
}

func (r *predictionRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Prediction, error) {
	var prediction entity.Prediction
	err := db.WithContext(ctx).
		Preload("Patient").Preload("Examination").
		Where("id = ?", id).First(&prediction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prediction, nil
}

func (r *predictionRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	err := db.WithContext(ctx).
		Preload("Examination").
		Where("patient_id = ?", patientID).
		Order("predicted_at DESC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionRepository) FindAll(ctx context.Context, db *gorm.DB, patientID *uuid.UUID, offset, limit int) ([]entity.Prediction, int64, error) {
	query := db.WithContext(ctx).Model(&entity.Prediction{})
	if patientID != nil {
		query = query.Where("patient_id = ?", *patientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var predictions []entity.Prediction
	err := query.Preload("Patient").Preload("Examination").
		Order("predicted_at DESC").
		Offset(offset).Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, 0, err
	}
	return predictions, total, nil
}

func (r *predictionRepository) FindLatestByExaminationID(ctx context.Context, db *gorm.DB, examinationID uuid.UUID) (*entity.Prediction, error) {
	var prediction entity.Prediction
	err := db.WithContext(ctx).
		Where("examination_id = ?", examinationID).
		Order("predicted_at DESC").
		First(&prediction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prediction, nil
}

func (r *predictionRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Prediction{}).Count(&count).Error
	return count, err
}

func (r *predictionRepository) CountDetections(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Prediction{}).
		Where("myopia_risk IN ?", []entity.RiskLevel{entity.RiskMedium, entity.RiskHigh}).
		Count(&count).Error
	return count, err
}

func (r *predictionRepository) CountByRisk(ctx context.Context, db *gorm.DB) (map[entity.RiskLevel]int64, error) {
	var rows []struct {
		MyopiaRisk entity.RiskLevel
		Total      int64
	}
	err := db.WithContext(ctx).Model(&entity.Prediction{}).
		Select("myopia_risk, count(*) as total").
		Group("myopia_risk").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.RiskLevel]int64, len(rows))
	for _, row := range rows {
		counts[row.MyopiaRisk] = row.Total
	}
	return counts, nil
}

// FindDetectionTimesSince returns predicted_at timestamps of medium and
// high risk predictions on or after the cutoff.
func (r *predictionRepository) FindDetectionTimesSince(ctx context.Context, db *gorm.DB, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.WithContext(ctx).Model(&entity.Prediction{}).
		Where("predicted_at >= ?", since).
		Where("myopia_risk IN ?", []entity.RiskLevel{entity.RiskMedium, entity.RiskHigh}).
		Pluck("predicted_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *predictionRepository) DeleteByExaminationID(ctx context.Context, db *gorm.DB, examinationID uuid.UUID) error {
	return db.WithContext(ctx).Where("examination_id = ?", examinationID).Delete(&entity.Prediction{}).Error
}

func (r *predictionRepository) DeleteByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) error {
	return db.WithContext(ctx).Where("patient_id = ?", patientID).Delete(&entity.Prediction{}).Error
}
