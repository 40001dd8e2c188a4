package usecase

import (
	"context"
	"errors"
	"time"

	"myopia-screening-service/internal/converter"
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/delivery/http/middleware"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrMissingScope    = errors.New("hospital scope not found in context")
)

type PatientUsecase interface {
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatients(ctx context.Context, search string, page, limit int) ([]*dto.PatientResponse, int64, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	examinationRepo repository.ExaminationRepository
	predictionRepo  repository.PredictionRepository
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	examinationRepo repository.ExaminationRepository,
	predictionRepo repository.PredictionRepository,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		examinationRepo: examinationRepo,
		predictionRepo:  predictionRepo,
	}
}

func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	patient := &entity.Patient{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		Gender:           req.Gender,
		DateOfBirth:      dateOfBirth,
		RegistrationDate: time.Now(),
		HospitalID:       hospitalID,
		EmergencyContact: req.EmergencyContact,
		MedicalHistory:   req.MedicalHistory,
	}

	if err := u.patientRepo.Create(ctx, u.db, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s, hospital=%s", patient.ID, hospitalID)
	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetPatients(ctx context.Context, search string, page, limit int) ([]*dto.PatientResponse, int64, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, 0, ErrMissingScope
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	patients, total, err := u.patientRepo.FindAll(ctx, u.db, hospitalID, search, (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list patients for hospital %s: %+v", hospitalID, err)
		return nil, 0, err
	}
	return converter.PatientsToResponses(patients), total, nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.findScoped(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) UpdatePatient(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	patient, err := u.findScoped(ctx, id)
	if err != nil {
		return nil, err
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	patient.Name = req.Name
	patient.Email = req.Email
	patient.Phone = req.Phone
	patient.Address = req.Address
	patient.Gender = req.Gender
	patient.DateOfBirth = dateOfBirth
	patient.EmergencyContact = req.EmergencyContact
	patient.MedicalHistory = req.MedicalHistory

	if err := u.patientRepo.Update(ctx, u.db, patient); err != nil {
		u.log.Warnf("Failed to update patient %s: %+v", id, err)
		return nil, err
	}
	return converter.PatientToResponse(patient), nil
}

// DeletePatient removes the patient together with all examinations and
// predictions. The cascade runs inside one transaction so a failure
// mid-sequence cannot leave orphaned child records.
func (u *patientUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	patient, err := u.findScoped(ctx, id)
	if err != nil {
		return err
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.predictionRepo.DeleteByPatientID(ctx, tx, patient.ID); err != nil {
			return err
		}
		if err := u.examinationRepo.DeleteByPatientID(ctx, tx, patient.ID); err != nil {
			return err
		}
		return u.patientRepo.Delete(ctx, tx, patient.ID)
	})
	if err != nil {
		u.log.Errorf("Failed to delete patient %s: %+v", id, err)
		return err
	}

	u.log.Infof("Patient deleted with related records: id=%s", id)
	return nil
}

func (u *patientUsecase) findScoped(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, id, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}
