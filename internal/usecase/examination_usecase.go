package usecase

import (
	"context"
	"io"
	"time"

	"myopia-screening-service/internal/converter"
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/delivery/http/middleware"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/domain/repository"
	"myopia-screening-service/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImageStore is the blob store contract the examination flow needs:
// upload bytes for a stable URL plus deletion handle, and best-effort
// deletion by handle.
type ImageStore interface {
	Upload(ctx context.Context, reader io.Reader, size int64, filename string) (*service.ImageUploadResult, error)
	Delete(ctx context.Context, objectKey string)
}

type ExaminationUsecase interface {
	CreateExamination(ctx context.Context, req *dto.CreateExaminationRequest, image *dto.ImageUpload) (*dto.ExaminationResponse, error)
	GetExaminations(ctx context.Context, patientID *uuid.UUID, page, limit int) ([]*dto.ExaminationResponse, int64, error)
	GetExamination(ctx context.Context, id uuid.UUID) (*dto.ExaminationDetailResponse, error)
	UpdateExamination(ctx context.Context, id uuid.UUID, req *dto.UpdateExaminationRequest) (*dto.ExaminationResponse, error)
	UploadImage(ctx context.Context, id uuid.UUID, image *dto.ImageUpload) (*dto.ImageUploadResponse, error)
	DeleteExamination(ctx context.Context, id uuid.UUID) error
}

type examinationUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	examinationRepo repository.ExaminationRepository
	patientRepo     repository.PatientRepository
	predictionRepo  repository.PredictionRepository
	imageStore      ImageStore
}

func NewExaminationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	examinationRepo repository.ExaminationRepository,
	patientRepo repository.PatientRepository,
	predictionRepo repository.PredictionRepository,
	imageStore ImageStore,
) ExaminationUsecase {
	return &examinationUsecase{
		db:              db,
		log:             log,
		examinationRepo: examinationRepo,
		patientRepo:     patientRepo,
		predictionRepo:  predictionRepo,
		imageStore:      imageStore,
	}
}

func (u *examinationUsecase) CreateExamination(ctx context.Context, req *dto.CreateExaminationRequest, image *dto.ImageUpload) (*dto.ExaminationResponse, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, req.PatientID, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	examination := &entity.Examination{
		PatientID:           patient.ID,
		ExaminationDate:     time.Now(),
		Notes:               req.Notes,
		LeftEyeVision:       req.LeftEyeVision,
		RightEyeVision:      req.RightEyeVision,
		IntraocularPressure: req.IntraocularPressure,
		CreatedBy:           userID,
	}

	if image != nil {
		uploaded, err := u.imageStore.Upload(ctx, image.Reader, image.Size, image.Filename)
		if err != nil {
			u.log.Warnf("Failed to upload examination image: %+v", err)
			return nil, err
		}
		examination.ImageURL = uploaded.URL
		examination.ImageObjectKey = uploaded.ObjectKey
	}

	if err := u.examinationRepo.Create(ctx, u.db, examination); err != nil {
		u.log.Warnf("Failed to create examination: %+v", err)
		// The blob is already stored; drop it so it does not leak.
		if examination.ImageObjectKey != "" {
			u.imageStore.Delete(ctx, examination.ImageObjectKey)
		}
		return nil, err
	}

	examination.Patient = patient
	u.log.Infof("Examination recorded: id=%s, patient=%s", examination.ID, patient.ID)
	return converter.ExaminationToResponse(examination), nil
}

func (u *examinationUsecase) GetExaminations(ctx context.Context, patientID *uuid.UUID, page, limit int) ([]*dto.ExaminationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	examinations, total, err := u.examinationRepo.FindAll(ctx, u.db, patientID, (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list examinations: %+v", err)
		return nil, 0, err
	}
	return converter.ExaminationsToResponses(examinations), total, nil
}

// GetExamination returns the examination with its most recent
// prediction attached when one exists.
func (u *examinationUsecase) GetExamination(ctx context.Context, id uuid.UUID) (*dto.ExaminationDetailResponse, error) {
	examination, err := u.examinationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find examination %s: %+v", id, err)
		return nil, err
	}
	if examination == nil {
		return nil, ErrExaminationNotFound
	}

	prediction, err := u.predictionRepo.FindLatestByExaminationID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to load prediction for examination %s: %+v", id, err)
		return nil, err
	}

	return &dto.ExaminationDetailResponse{
		ExaminationResponse: *converter.ExaminationToResponse(examination),
		Prediction:          converter.PredictionToResponse(prediction),
	}, nil
}

func (u *examinationUsecase) UpdateExamination(ctx context.Context, id uuid.UUID, req *dto.UpdateExaminationRequest) (*dto.ExaminationResponse, error) {
	examination, err := u.examinationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find examination %s: %+v", id, err)
		return nil, err
	}
	if examination == nil {
		return nil, ErrExaminationNotFound
	}

	examination.Notes = req.Notes
	examination.LeftEyeVision = req.LeftEyeVision
	examination.RightEyeVision = req.RightEyeVision
	examination.IntraocularPressure = req.IntraocularPressure

	if err := u.examinationRepo.Update(ctx, u.db, examination); err != nil {
		u.log.Warnf("Failed to update examination %s: %+v", id, err)
		return nil, err
	}
	return converter.ExaminationToResponse(examination), nil
}

// UploadImage attaches or replaces the examination image. The previous
// blob, when present, is deleted best-effort after the new one is in.
func (u *examinationUsecase) UploadImage(ctx context.Context, id uuid.UUID, image *dto.ImageUpload) (*dto.ImageUploadResponse, error) {
	examination, err := u.examinationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find examination %s: %+v", id, err)
		return nil, err
	}
	if examination == nil {
		return nil, ErrExaminationNotFound
	}

	oldObjectKey := examination.ImageObjectKey

	uploaded, err := u.imageStore.Upload(ctx, image.Reader, image.Size, image.Filename)
	if err != nil {
		u.log.Warnf("Failed to upload image for examination %s: %+v", id, err)
		return nil, err
	}

	examination.ImageURL = uploaded.URL
	examination.ImageObjectKey = uploaded.ObjectKey

	if err := u.examinationRepo.Update(ctx, u.db, examination); err != nil {
		u.log.Warnf("Failed to save image reference for examination %s: %+v", id, err)
		u.imageStore.Delete(ctx, uploaded.ObjectKey)
		return nil, err
	}

	if oldObjectKey != "" {
		u.imageStore.Delete(ctx, oldObjectKey)
	}

	return &dto.ImageUploadResponse{ImageURL: uploaded.URL}, nil
}

// DeleteExamination removes the examination and its predictions in one
// transaction. The image blob is deleted best-effort first; blob
// deletion is not on the critical path.
func (u *examinationUsecase) DeleteExamination(ctx context.Context, id uuid.UUID) error {
	examination, err := u.examinationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find examination %s: %+v", id, err)
		return err
	}
	if examination == nil {
		return ErrExaminationNotFound
	}

	if examination.ImageObjectKey != "" {
		u.imageStore.Delete(ctx, examination.ImageObjectKey)
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.predictionRepo.DeleteByExaminationID(ctx, tx, examination.ID); err != nil {
			return err
		}
		return u.examinationRepo.Delete(ctx, tx, examination.ID)
	})
	if err != nil {
		u.log.Errorf("Failed to delete examination %s: %+v", id, err)
		return err
	}

	u.log.Infof("Examination deleted with related predictions: id=%s", id)
	return nil
}
