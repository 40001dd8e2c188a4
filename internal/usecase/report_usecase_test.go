package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"myopia-screening-service/internal/delivery/http/middleware"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newReportFixture(t *testing.T, db *gorm.DB, now time.Time) *reportUsecase {
	t.Helper()
	return &reportUsecase{
		db:              db,
		log:             newTestLogger(),
		patientRepo:     repository.NewPatientRepository(),
		examinationRepo: repository.NewExaminationRepository(),
		predictionRepo:  repository.NewPredictionRepository(),
		now:             func() time.Time { return now },
	}
}

func scopedContext(hospitalID uuid.UUID) context.Context {
	return middleware.WithScope(context.Background(), uuid.New(), hospitalID)
}

func TestGetDashboardStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	usecase := newReportFixture(t, db, time.Now())

	stats, err := usecase.GetDashboardStats(scopedContext(uuid.New()))
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}

	if stats.TotalPatients != 0 || stats.TotalExamined != 0 || stats.TotalPredictions != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
	if stats.DetectionRate != 0 {
		t.Errorf("detection rate = %v, want 0 with no predictions", stats.DetectionRate)
	}
}

func TestGetDashboardStatsMissingScope(t *testing.T) {
	db := newTestDB(t)
	usecase := newReportFixture(t, db, time.Now())

	_, err := usecase.GetDashboardStats(context.Background())
	if !errors.Is(err, ErrMissingScope) {
		t.Fatalf("expected ErrMissingScope, got %v", err)
	}
}

func TestGetDashboardStatsDetectionRate(t *testing.T) {
	db := newTestDB(t)
	hospitalID := uuid.New()
	patient := seedPatient(t, db, hospitalID, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	examination := seedExamination(t, db, patient.ID, "http://storage/exam.jpg", time.Now())

	// 3 detections out of 10 predictions: rate 30.00
	for i := 0; i < 2; i++ {
		seedPrediction(t, db, examination.ID, patient.ID, entity.RiskHigh, time.Now())
	}
	seedPrediction(t, db, examination.ID, patient.ID, entity.RiskMedium, time.Now())
	for i := 0; i < 7; i++ {
		seedPrediction(t, db, examination.ID, patient.ID, entity.RiskLow, time.Now())
	}

	usecase := newReportFixture(t, db, time.Now())
	stats, err := usecase.GetDashboardStats(scopedContext(hospitalID))
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}

	if stats.TotalPatients != 1 {
		t.Errorf("total patients = %d, want 1", stats.TotalPatients)
	}
	if stats.TotalExamined != 1 {
		t.Errorf("total examined = %d, want 1", stats.TotalExamined)
	}
	if stats.TotalPredictions != 10 {
		t.Errorf("total predictions = %d, want 10", stats.TotalPredictions)
	}
	if stats.PositiveDetections != 3 {
		t.Errorf("positive detections = %d, want 3", stats.PositiveDetections)
	}
	if stats.DetectionRate != 30.00 {
		t.Errorf("detection rate = %v, want 30.00", stats.DetectionRate)
	}
	if stats.MyopiaDistribution.Low != 7 || stats.MyopiaDistribution.Medium != 1 || stats.MyopiaDistribution.High != 2 {
		t.Errorf("distribution = %+v, want low=7 medium=1 high=2", stats.MyopiaDistribution)
	}
}

func TestDetectionRateRounding(t *testing.T) {
	if got := detectionRate(1, 3); got != 33.33 {
		t.Errorf("detectionRate(1, 3) = %v, want 33.33", got)
	}
	if got := detectionRate(2, 3); got != 66.67 {
		t.Errorf("detectionRate(2, 3) = %v, want 66.67", got)
	}
	if got := detectionRate(0, 0); got != 0 {
		t.Errorf("detectionRate(0, 0) = %v, want 0", got)
	}
}

func TestGetMonthlyTrendsLeftMerge(t *testing.T) {
	db := newTestDB(t)
	hospitalID := uuid.New()
	patient := seedPatient(t, db, hospitalID, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	// Five examinations in March, two in April; detections only in April
	// and May. May has no examinations so it must not appear at all.
	march := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

	var aprilExam *entity.Examination
	for i := 0; i < 5; i++ {
		seedExamination(t, db, patient.ID, "http://storage/exam.jpg", march.AddDate(0, 0, i))
	}
	for i := 0; i < 2; i++ {
		aprilExam = seedExamination(t, db, patient.ID, "http://storage/exam.jpg", april.AddDate(0, 0, i))
	}
	seedPrediction(t, db, aprilExam.ID, patient.ID, entity.RiskHigh, april)
	seedPrediction(t, db, aprilExam.ID, patient.ID, entity.RiskMedium, may)
	// Low risk in April is not a detection.
	seedPrediction(t, db, aprilExam.ID, patient.ID, entity.RiskLow, april)

	// Outside the trailing twelve months, must be excluded.
	seedExamination(t, db, patient.ID, "http://storage/exam.jpg", now.AddDate(-2, 0, 0))

	usecase := newReportFixture(t, db, now)
	trends, err := usecase.GetMonthlyTrends(scopedContext(hospitalID))
	if err != nil {
		t.Fatalf("GetMonthlyTrends failed: %v", err)
	}

	if len(trends) != 2 {
		t.Fatalf("trend entries = %d, want 2 (Mar and Apr only): %+v", len(trends), trends)
	}

	if trends[0].Month != "Mar 2024" || trends[0].Count != 5 || trends[0].Detections != 0 {
		t.Errorf("first entry = %+v, want Mar 2024 count=5 detections=0", trends[0])
	}
	if trends[1].Month != "Apr 2024" || trends[1].Count != 2 || trends[1].Detections != 1 {
		t.Errorf("second entry = %+v, want Apr 2024 count=2 detections=1", trends[1])
	}
}

func TestGetMonthlyTrendsEmpty(t *testing.T) {
	db := newTestDB(t)
	usecase := newReportFixture(t, db, time.Now())

	trends, err := usecase.GetMonthlyTrends(scopedContext(uuid.New()))
	if err != nil {
		t.Fatalf("GetMonthlyTrends failed: %v", err)
	}
	if len(trends) != 0 {
		t.Errorf("trend entries = %d, want 0 on an empty corpus", len(trends))
	}
}

func TestGetAgeGroupAnalysisBoundaries(t *testing.T) {
	db := newTestDB(t)
	hospitalID := uuid.New()
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Ages are current year minus birth year, months ignored.
	seedPatient(t, db, hospitalID, time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC)) // 10 -> 0-10
	seedPatient(t, db, hospitalID, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))   // 11 -> 11-20
	seedPatient(t, db, hospitalID, time.Date(1964, 1, 1, 0, 0, 0, 0, time.UTC))   // 60 -> 51-60
	seedPatient(t, db, hospitalID, time.Date(1963, 1, 1, 0, 0, 0, 0, time.UTC))   // 61 -> 61+

	// Another hospital's patient must not be counted.
	seedPatient(t, db, uuid.New(), time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC))

	usecase := newReportFixture(t, db, now)
	groups, err := usecase.GetAgeGroupAnalysis(scopedContext(hospitalID))
	if err != nil {
		t.Fatalf("GetAgeGroupAnalysis failed: %v", err)
	}

	if len(groups) != 7 {
		t.Fatalf("age groups = %d, want all 7 bands", len(groups))
	}

	want := map[string]int{
		"0-10":  1,
		"11-20": 1,
		"21-30": 0,
		"31-40": 0,
		"41-50": 0,
		"51-60": 1,
		"61+":   1,
	}
	for _, group := range groups {
		if group.Count != want[group.AgeGroup] {
			t.Errorf("band %s count = %d, want %d", group.AgeGroup, group.Count, want[group.AgeGroup])
		}
	}
}

func TestGetAgeGroupAnalysisAllBandsOnEmpty(t *testing.T) {
	db := newTestDB(t)
	usecase := newReportFixture(t, db, time.Now())

	groups, err := usecase.GetAgeGroupAnalysis(scopedContext(uuid.New()))
	if err != nil {
		t.Fatalf("GetAgeGroupAnalysis failed: %v", err)
	}
	if len(groups) != 7 {
		t.Fatalf("age groups = %d, want all 7 bands even at zero", len(groups))
	}
	for _, group := range groups {
		if group.Count != 0 {
			t.Errorf("band %s count = %d, want 0", group.AgeGroup, group.Count)
		}
	}
}

func TestGetExaminedPatients(t *testing.T) {
	db := newTestDB(t)
	hospitalID := uuid.New()

	examined := seedPatient(t, db, hospitalID, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	seedPatient(t, db, hospitalID, time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC))
	seedExamination(t, db, examined.ID, "", time.Now())

	usecase := newReportFixture(t, db, time.Now())

	patients, total, err := usecase.GetExaminedPatients(scopedContext(hospitalID), 1, 10)
	if err != nil {
		t.Fatalf("GetExaminedPatients failed: %v", err)
	}
	if total != 1 || len(patients) != 1 {
		t.Fatalf("examined patients total=%d len=%d, want 1/1", total, len(patients))
	}
	if patients[0].ID != examined.ID {
		t.Errorf("examined patient = %v, want %v", patients[0].ID, examined.ID)
	}

	all, allTotal, err := usecase.GetAllPatients(scopedContext(hospitalID), 1, 10)
	if err != nil {
		t.Fatalf("GetAllPatients failed: %v", err)
	}
	if allTotal != 2 || len(all) != 2 {
		t.Fatalf("all patients total=%d len=%d, want 2/2", allTotal, len(all))
	}
}
