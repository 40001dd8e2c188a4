package usecase

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"myopia-screening-service/internal/converter"
	"myopia-screening-service/internal/delivery/dto"
	"myopia-screening-service/internal/delivery/http/middleware"
	"myopia-screening-service/internal/domain/entity"
	"myopia-screening-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	dashboardCacheKeyPrefix = "report:dashboard:"
	dashboardCacheTTL       = 60 * time.Second
	trendWindowMonths       = 12
)

// Fixed age bands, upper bound inclusive. Age is current year minus
// birth year, deliberately without month adjustment.
var ageGroupBounds = []struct {
	Label string
	Max   int
}{
	{"0-10", 10},
	{"11-20", 20},
	{"21-30", 30},
	{"31-40", 40},
	{"41-50", 50},
	{"51-60", 60},
	{"61+", math.MaxInt},
}

type ReportUsecase interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	GetMonthlyTrends(ctx context.Context) ([]dto.MonthlyTrendEntry, error)
	GetAgeGroupAnalysis(ctx context.Context) ([]dto.AgeGroupEntry, error)
	GetExaminedPatients(ctx context.Context, page, limit int) ([]*dto.PatientResponse, int64, error)
	GetAllPatients(ctx context.Context, page, limit int) ([]*dto.PatientResponse, int64, error)
}

type reportUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	examinationRepo repository.ExaminationRepository
	predictionRepo  repository.PredictionRepository
	redisClient     *redis.Client
	now             func() time.Time
}

func NewReportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	examinationRepo repository.ExaminationRepository,
	predictionRepo repository.PredictionRepository,
	redisClient *redis.Client,
) ReportUsecase {
	return &reportUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		examinationRepo: examinationRepo,
		predictionRepo:  predictionRepo,
		redisClient:     redisClient,
		now:             time.Now,
	}
}

// GetDashboardStats summarizes the corpus: scoped patient count, global
// examination and prediction counts, positive detections and the risk
// tier histogram. Results are cached briefly per hospital; any datastore
// error fails the whole call, no partial summary is returned.
func (u *reportUsecase) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}

	cacheKey := dashboardCacheKeyPrefix + hospitalID.String()
	if cached := u.readDashboardCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	totalPatients, err := u.patientRepo.CountByHospital(ctx, u.db, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to count patients for hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	totalExamined, err := u.examinationRepo.Count(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to count examinations: %+v", err)
		return nil, err
	}

	totalPredictions, err := u.predictionRepo.Count(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to count predictions: %+v", err)
		return nil, err
	}

	positiveDetections, err := u.predictionRepo.CountDetections(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to count detections: %+v", err)
		return nil, err
	}

	riskCounts, err := u.predictionRepo.CountByRisk(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to count risk distribution: %+v", err)
		return nil, err
	}

	stats := &dto.DashboardStatsResponse{
		TotalExamined:      totalExamined,
		TotalPredictions:   totalPredictions,
		PositiveDetections: positiveDetections,
		DetectionRate:      detectionRate(positiveDetections, totalPredictions),
		TotalPatients:      totalPatients,
		MyopiaDistribution: dto.MyopiaDistribution{
			Low:    riskCounts[entity.RiskLow],
			Medium: riskCounts[entity.RiskMedium],
			High:   riskCounts[entity.RiskHigh],
		},
	}

	u.writeDashboardCache(ctx, cacheKey, stats)
	return stats, nil
}

// detectionRate is positive detections over total predictions as a
// percentage, rounded to two decimal places, zero when nothing has been
// predicted yet.
func detectionRate(detections, total int64) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(detections) / float64(total) * 100
	return math.Round(rate*100) / 100
}

type yearMonth struct {
	Year  int
	Month time.Month
}

// GetMonthlyTrends returns examination volume per calendar month over
// the trailing twelve months, with positive detection counts left-merged
// onto the examination series. Months without examinations do not
// appear, even when detections were recorded in them.
func (u *reportUsecase) GetMonthlyTrends(ctx context.Context) ([]dto.MonthlyTrendEntry, error) {
	cutoff := u.now().AddDate(0, -trendWindowMonths, 0)

	examDates, err := u.examinationRepo.FindDatesSince(ctx, u.db, cutoff)
	if err != nil {
		u.log.Warnf("Failed to load examination dates: %+v", err)
		return nil, err
	}

	detectionTimes, err := u.predictionRepo.FindDetectionTimesSince(ctx, u.db, cutoff)
	if err != nil {
		u.log.Warnf("Failed to load detection times: %+v", err)
		return nil, err
	}

	examCounts := groupByMonth(examDates)
	detectionCounts := groupByMonth(detectionTimes)

	keys := make([]yearMonth, 0, len(examCounts))
	for key := range examCounts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})

	trends := make([]dto.MonthlyTrendEntry, 0, len(keys))
	for _, key := range keys {
		label := time.Date(key.Year, key.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		trends = append(trends, dto.MonthlyTrendEntry{
			Month:      label,
			Count:      examCounts[key],
			Detections: detectionCounts[key],
		})
	}
	return trends, nil
}

func groupByMonth(times []time.Time) map[yearMonth]int {
	counts := make(map[yearMonth]int)
	for _, t := range times {
		counts[yearMonth{Year: t.Year(), Month: t.Month()}]++
	}
	return counts
}

// GetAgeGroupAnalysis buckets the hospital's patients into fixed age
// bands. All seven bands are emitted even at zero count.
func (u *reportUsecase) GetAgeGroupAnalysis(ctx context.Context) ([]dto.AgeGroupEntry, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingScope
	}

	birthDates, err := u.patientRepo.FindBirthDates(ctx, u.db, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to load birth dates for hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	currentYear := u.now().Year()
	counts := make([]int, len(ageGroupBounds))
	for _, dob := range birthDates {
		age := currentYear - dob.Year()
		for i, band := range ageGroupBounds {
			if age <= band.Max {
				counts[i]++
				break
			}
		}
	}

	groups := make([]dto.AgeGroupEntry, 0, len(ageGroupBounds))
	for i, band := range ageGroupBounds {
		groups = append(groups, dto.AgeGroupEntry{AgeGroup: band.Label, Count: counts[i]})
	}
	return groups, nil
}

func (u *reportUsecase) GetExaminedPatients(ctx context.Context, page, limit int) ([]*dto.PatientResponse, int64, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, 0, ErrMissingScope
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	patients, total, err := u.patientRepo.FindExamined(ctx, u.db, hospitalID, (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list examined patients for hospital %s: %+v", hospitalID, err)
		return nil, 0, err
	}
	return converter.PatientsToResponses(patients), total, nil
}

func (u *reportUsecase) GetAllPatients(ctx context.Context, page, limit int) ([]*dto.PatientResponse, int64, error) {
	hospitalID, ok := middleware.GetHospitalIDFromContext(ctx)
	if !ok {
		return nil, 0, ErrMissingScope
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	patients, total, err := u.patientRepo.FindAll(ctx, u.db, hospitalID, "", (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list patients for hospital %s: %+v", hospitalID, err)
		return nil, 0, err
	}
	return converter.PatientsToResponses(patients), total, nil
}

// Cache reads and writes are best-effort: a Redis failure is logged and
// the stats are computed from the database instead.
func (u *reportUsecase) readDashboardCache(ctx context.Context, key string) *dto.DashboardStatsResponse {
	if u.redisClient == nil {
		return nil
	}

	raw, err := u.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			u.log.Warnf("Dashboard cache read failed: %+v", err)
		}
		return nil
	}

	var stats dto.DashboardStatsResponse
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		u.log.Warnf("Dashboard cache entry malformed, ignoring: %+v", err)
		return nil
	}
	return &stats
}

func (u *reportUsecase) writeDashboardCache(ctx context.Context, key string, stats *dto.DashboardStatsResponse) {
	if u.redisClient == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		u.log.Warnf("Failed to marshal dashboard stats for cache: %+v", err)
		return
	}
	if err := u.redisClient.Set(ctx, key, raw, dashboardCacheTTL).Err(); err != nil {
		u.log.Warnf("Dashboard cache write failed: %+v", err)
	}
}
