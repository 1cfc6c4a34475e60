package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ganliai/insight/pkg/model"
	"github.com/ganliai/insight/pkg/store"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	if candidate.UUID == uuid.Nil {
		candidate.UUID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *CandidateRepository) GetByUUID(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.WithContext(ctx).
		First(&candidate, "uuid = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &candidate, nil
}

// MarkHired is idempotent: hired_at keeps its first value on repeat calls.
func (r *CandidateRepository) MarkHired(ctx context.Context, id uuid.UUID, tenantID uint) (*model.Candidate, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("uuid = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"is_hired":   true,
			"hired_at":   gorm.Expr("COALESCE(hired_at, ?)", now),
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return r.GetByUUID(ctx, id, tenantID)
}
