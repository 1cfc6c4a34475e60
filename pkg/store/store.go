package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ganliai/insight/pkg/model"
)

// ErrNotFound is returned for lookups that match no row visible to the
// caller's tenant. Cross-tenant hits deliberately look identical to missing
// rows so existence never leaks across the isolation boundary.
var ErrNotFound = errors.New("record not found")

// ReportFilter narrows a tenant's report listing. Zero values mean "no
// constraint" for that field.
type ReportFilter struct {
	Position        string
	RiskLevel       model.RiskLevel
	PersonalityType string
	NameSearch      string
	Page            int
	Limit           int
}

// TeamStats aggregates a tenant's analysis history for the dashboard.
type TeamStats struct {
	TotalCandidates         int64            `json:"total_candidates"`
	HiredCount              int64            `json:"hired_count"`
	PersonalityDistribution map[string]int64 `json:"personality_distribution"`
	RiskDistribution        map[string]int64 `json:"risk_distribution"`
	AvgMaturityScore        float64          `json:"avg_maturity_score"`
	AvgMatchScore           float64          `json:"avg_match_score"`
}

// ReportWithCandidate pairs a report with its candidate for list views.
type ReportWithCandidate struct {
	Report    model.Report    `json:"report"`
	Candidate model.Candidate `json:"candidate"`
}

type CandidateStore interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	GetByUUID(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Candidate, error)
	// MarkHired flips the hired flag. Calling it on an already hired
	// candidate is a no-op that returns the current row.
	MarkHired(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Candidate, error)
}

type ReportStore interface {
	Create(ctx context.Context, report *model.Report) error
	GetByUUID(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Report, error)
	List(ctx context.Context, tenantID uint, filter ReportFilter) ([]ReportWithCandidate, int64, error)
	Delete(ctx context.Context, id uuid.UUID, tenantID uint) error
	TeamStats(ctx context.Context, tenantID uint) (*TeamStats, error)
	HighRisk(ctx context.Context, tenantID uint, limit int) ([]ReportWithCandidate, error)
}

// QuotaLedger tracks each tenant's remaining analysis allowance. Consume is
// a single atomic conditional debit; Refund is its compensating credit.
// Every call appends a QuotaLog row.
type QuotaLedger interface {
	Remaining(ctx context.Context, tenantID uint) (remaining, total int, plan model.PlanType, err error)
	Consume(ctx context.Context, tenantID, userID uint) error
	Refund(ctx context.Context, tenantID, userID uint) error
	Recharge(ctx context.Context, tenantID, userID uint, amount int) error
}
