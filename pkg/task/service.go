// Package task composes quota, persistence and the analysis pipeline into
// the user-facing operations. CreateAnalysisTask is the load-bearing one:
// validate before any side effect, gate on quota, persist the candidate,
// debit atomically, run the pipeline, persist the report - and refund the
// debit whenever the pipeline or the report write fails, so a tenant never
// pays for an analysis that produced nothing.
package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/analysis"
	"github.com/ganliai/insight/pkg/eventbus"
	"github.com/ganliai/insight/pkg/metrics"
	"github.com/ganliai/insight/pkg/model"
	"github.com/ganliai/insight/pkg/quota"
	"github.com/ganliai/insight/pkg/store"
)

// MinSourceTextLength is the minimum number of characters (runes, the texts
// are mostly Chinese) a submission must carry.
const MinSourceTextLength = 50

var ErrValidation = errors.New("validation failed")

// Analyzer is the pipeline seam; tests substitute a scripted one.
type Analyzer interface {
	Analyze(ctx context.Context, input analysis.Input) (*analysis.Result, error)
}

// Publisher is the event seam. A nil publisher disables events.
type Publisher interface {
	Publish(ctx context.Context, channel string, event eventbus.Event) error
}

type Service struct {
	quota      store.QuotaLedger
	candidates store.CandidateStore
	reports    store.ReportStore
	analyzer   Analyzer
	bus        Publisher
	logger     *zap.Logger
}

func NewService(ledger store.QuotaLedger, candidates store.CandidateStore, reports store.ReportStore, analyzer Analyzer, bus Publisher, logger *zap.Logger) *Service {
	return &Service{
		quota:      ledger,
		candidates: candidates,
		reports:    reports,
		analyzer:   analyzer,
		bus:        bus,
		logger:     logger,
	}
}

type CreateTaskInput struct {
	TenantID   uint
	UserID     uint
	Name       string
	Position   string
	SourceText string
}

type CreateTaskResult struct {
	ReportUUID    uuid.UUID
	CandidateUUID uuid.UUID
}

func (s *Service) CreateAnalysisTask(ctx context.Context, input CreateTaskInput) (*CreateTaskResult, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	remaining, _, _, err := s.quota.Remaining(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, quota.ErrNoActiveSubscription) {
			metrics.QuotaExceededTotal.WithLabelValues(tenantLabel(input.TenantID)).Inc()
			return nil, quota.ErrQuotaExceeded
		}
		return nil, err
	}
	if remaining <= 0 {
		metrics.QuotaExceededTotal.WithLabelValues(tenantLabel(input.TenantID)).Inc()
		return nil, quota.ErrQuotaExceeded
	}

	candidate := &model.Candidate{
		UUID:       uuid.New(),
		TenantID:   input.TenantID,
		Name:       input.Name,
		Position:   input.Position,
		SourceText: input.SourceText,
		SourceType: model.SourceText,
		CreatedBy:  input.UserID,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	// The debit is the serialization point: under concurrent submissions
	// the conditional update decides who gets the last unit.
	if err := s.quota.Consume(ctx, input.TenantID, input.UserID); err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			metrics.QuotaExceededTotal.WithLabelValues(tenantLabel(input.TenantID)).Inc()
		}
		return nil, err
	}
	s.publishQuota(ctx, input.TenantID, eventbus.EventQuotaConsumed)

	result, err := s.analyzer.Analyze(ctx, analysis.Input{
		SourceText:    input.SourceText,
		CandidateName: input.Name,
		Position:      input.Position,
	})
	if err != nil {
		s.compensate(ctx, input.TenantID, input.UserID, candidate.UUID)
		metrics.AnalysesTotal.WithLabelValues(tenantLabel(input.TenantID), "failed").Inc()
		s.logger.Error("analysis pipeline failed",
			zap.Uint("tenant_id", input.TenantID),
			zap.String("candidate_uuid", candidate.UUID.String()),
			zap.Error(err))
		return nil, err
	}

	report := &model.Report{
		UUID:                  uuid.New(),
		CandidateID:           candidate.ID,
		TenantID:              input.TenantID,
		PersonalityType:       result.PersonalityType,
		PersonalityDimension1: result.Dimension1,
		PersonalityDimension2: result.Dimension2,
		MaturityScore:         result.MaturityScore,
		MatchScore:            result.MatchScore,
		RiskLevel:             result.RiskLevel,
		RiskFactors:           result.RiskFactors,
		ReportData:            payloadToJSONB(result.Payload),
		AnalysisStatus:        model.AnalysisCompleted,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		s.compensate(ctx, input.TenantID, input.UserID, candidate.UUID)
		return nil, err
	}

	metrics.AnalysesTotal.WithLabelValues(tenantLabel(input.TenantID), "completed").Inc()
	s.publishReport(ctx, eventbus.EventReportCreated, eventbus.ReportEvent{
		ReportUUID:    report.UUID.String(),
		CandidateUUID: candidate.UUID.String(),
		TenantID:      input.TenantID,
		RiskLevel:     string(report.RiskLevel),
	})

	return &CreateTaskResult{ReportUUID: report.UUID, CandidateUUID: candidate.UUID}, nil
}

// compensate refunds the debit of a run that produced no report. The
// candidate row stays: the submission happened and may be re-analyzed.
func (s *Service) compensate(ctx context.Context, tenantID, userID uint, candidateUUID uuid.UUID) {
	if err := s.quota.Refund(ctx, tenantID, userID); err != nil {
		s.logger.Error("quota refund failed", zap.Uint("tenant_id", tenantID), zap.Error(err))
	}
	s.publishReport(ctx, eventbus.EventAnalysisFailed, eventbus.ReportEvent{
		CandidateUUID: candidateUUID.String(),
		TenantID:      tenantID,
		Message:       "analysis failed, quota refunded",
	})
}

type ReportDetail struct {
	Report    model.Report    `json:"report"`
	Candidate model.Candidate `json:"candidate"`
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID, tenantID uint) (*ReportDetail, error) {
	report, err := s.reports.GetByUUID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	detail := &ReportDetail{Report: *report}
	if report.Candidate != nil {
		detail.Candidate = *report.Candidate
		detail.Report.Candidate = nil
	}
	return detail, nil
}

func (s *Service) ListReports(ctx context.Context, tenantID uint, filter store.ReportFilter) ([]store.ReportWithCandidate, int64, error) {
	return s.reports.List(ctx, tenantID, filter)
}

func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID, tenantID uint) error {
	return s.reports.Delete(ctx, id, tenantID)
}

func (s *Service) MarkHired(ctx context.Context, candidateUUID uuid.UUID, tenantID uint) (*model.Candidate, error) {
	return s.candidates.MarkHired(ctx, candidateUUID, tenantID)
}

type QuotaStatus struct {
	Remaining int            `json:"remaining"`
	Total     int            `json:"total"`
	PlanType  model.PlanType `json:"plan_type"`
}

func (s *Service) RemainingQuota(ctx context.Context, tenantID uint) (*QuotaStatus, error) {
	remaining, total, plan, err := s.quota.Remaining(ctx, tenantID)
	if err != nil {
		if errors.Is(err, quota.ErrNoActiveSubscription) {
			return &QuotaStatus{}, nil
		}
		return nil, err
	}
	metrics.QuotaRemaining.WithLabelValues(tenantLabel(tenantID)).Set(float64(remaining))
	return &QuotaStatus{Remaining: remaining, Total: total, PlanType: plan}, nil
}

// RechargeQuota credits a tenant's allowance and announces the new balance
// on the quota channel so open dashboards refresh.
func (s *Service) RechargeQuota(ctx context.Context, tenantID, userID uint, amount int) error {
	if err := s.quota.Recharge(ctx, tenantID, userID, amount); err != nil {
		return err
	}
	s.publishQuota(ctx, tenantID, eventbus.EventQuotaRecharged)
	return nil
}

func (s *Service) TeamStats(ctx context.Context, tenantID uint) (*store.TeamStats, error) {
	return s.reports.TeamStats(ctx, tenantID)
}

func (s *Service) HighRiskCandidates(ctx context.Context, tenantID uint, limit int) ([]store.ReportWithCandidate, error) {
	return s.reports.HighRisk(ctx, tenantID, limit)
}

func validateTaskInput(input CreateTaskInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: candidate name is required", ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.SourceText)) < MinSourceTextLength {
		return fmt.Errorf("%w: source text must be at least %d characters", ErrValidation, MinSourceTextLength)
	}
	return nil
}

func (s *Service) publishReport(ctx context.Context, eventType string, payload eventbus.ReportEvent) {
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(eventType, payload)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.ChannelReport, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *Service) publishQuota(ctx context.Context, tenantID uint, operation string) {
	if s.bus == nil {
		return
	}
	remaining, _, _, err := s.quota.Remaining(ctx, tenantID)
	if err != nil {
		return
	}
	event, err := eventbus.NewEvent(operation, eventbus.QuotaEvent{
		TenantID:  tenantID,
		Operation: operation,
		Remaining: remaining,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.ChannelQuota, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", operation), zap.Error(err))
	}
}

func payloadToJSONB(payload analysis.Payload) model.JSONB {
	return model.JSONB{
		"personality":        payload.Personality,
		"risk":               payload.Risk,
		"positionMatch":      payload.PositionMatch,
		"collaborationGuide": payload.CollaborationGuide,
		"summary":            payload.Summary,
		"clues":              payload.Clues,
		"confidence":         payload.Confidence,
	}
}

func tenantLabel(tenantID uint) string {
	return strconv.FormatUint(uint64(tenantID), 10)
}
