package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ganliai/insight/pkg/model"
	"github.com/ganliai/insight/pkg/store"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	if report.UUID == uuid.Nil {
		report.UUID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) GetByUUID(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("Candidate").
		First(&report, "uuid = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, tenantID uint, filter store.ReportFilter) ([]store.ReportWithCandidate, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{}).
		Joins("JOIN candidates ON candidates.id = reports.candidate_id").
		Where("reports.tenant_id = ?", tenantID)

	if filter.RiskLevel != "" {
		query = query.Where("reports.risk_level = ?", filter.RiskLevel)
	}
	if filter.PersonalityType != "" {
		query = query.Where("reports.personality_type = ?", filter.PersonalityType)
	}
	if filter.Position != "" {
		query = query.Where("candidates.position = ?", filter.Position)
	}
	if filter.NameSearch != "" {
		query = query.Where("candidates.name ILIKE ?", "%"+filter.NameSearch+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	var reports []model.Report
	err := query.
		Preload("Candidate").
		Order("reports.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return pairWithCandidates(reports), total, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("uuid = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Report{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) TeamStats(ctx context.Context, tenantID uint) (*store.TeamStats, error) {
	stats := &store.TeamStats{
		PersonalityDistribution: map[string]int64{},
		RiskDistribution:        map[string]int64{"low": 0, "medium": 0, "high": 0},
	}

	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Candidate{}).
		Where("tenant_id = ?", tenantID).
		Count(&stats.TotalCandidates).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Candidate{}).
		Where("tenant_id = ? AND is_hired = ?", tenantID, true).
		Count(&stats.HiredCount).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var types []bucket
	if err := db.Model(&model.Report{}).
		Select("personality_type AS key, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("personality_type").
		Scan(&types).Error; err != nil {
		return nil, err
	}
	for _, b := range types {
		key := b.Key
		if key == "" {
			key = "未知"
		}
		stats.PersonalityDistribution[key] = b.Count
	}

	var risks []bucket
	if err := db.Model(&model.Report{}).
		Select("risk_level AS key, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("risk_level").
		Scan(&risks).Error; err != nil {
		return nil, err
	}
	for _, b := range risks {
		stats.RiskDistribution[b.Key] = b.Count
	}

	var averages struct {
		AvgMaturity float64
		AvgMatch    float64
	}
	if err := db.Model(&model.Report{}).
		Select("COALESCE(AVG(maturity_score), 0) AS avg_maturity, COALESCE(AVG(match_score), 0) AS avg_match").
		Where("tenant_id = ?", tenantID).
		Scan(&averages).Error; err != nil {
		return nil, err
	}
	stats.AvgMaturityScore = averages.AvgMaturity
	stats.AvgMatchScore = averages.AvgMatch

	return stats, nil
}

func (r *ReportRepository) HighRisk(ctx context.Context, tenantID uint, limit int) ([]store.ReportWithCandidate, error) {
	if limit <= 0 {
		limit = 5
	}

	var reports []model.Report
	err := r.db.WithContext(ctx).
		Preload("Candidate").
		Where("tenant_id = ? AND risk_level = ?", tenantID, model.RiskHigh).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return pairWithCandidates(reports), nil
}

func pairWithCandidates(reports []model.Report) []store.ReportWithCandidate {
	items := make([]store.ReportWithCandidate, 0, len(reports))
	for i := range reports {
		item := store.ReportWithCandidate{Report: reports[i]}
		if reports[i].Candidate != nil {
			item.Candidate = *reports[i].Candidate
			item.Report.Candidate = nil
		}
		items = append(items, item)
	}
	return items
}
