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

// FreePlanQuota is the allowance granted with every new tenant.
const FreePlanQuota = 3

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create bootstraps a tenant: the tenant row, the owner's tenant link and a
// free-tier subscription, committed together.
func (r *TenantRepository) Create(ctx context.Context, name string, ownerUserID uint) (*model.Tenant, error) {
	tenant := &model.Tenant{
		UUID:        uuid.New(),
		Name:        name,
		OwnerUserID: ownerUserID,
		Status:      model.TenantActive,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", ownerUserID).
			Update("tenant_id", tenant.ID).Error; err != nil {
			return err
		}

		return tx.Create(&model.Subscription{
			UUID:       uuid.New(),
			TenantID:   tenant.ID,
			PlanType:   model.PlanFree,
			QuotaTotal: FreePlanQuota,
			QuotaUsed:  0,
			Status:     model.SubscriptionActive,
			StartDate:  time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return tenant, nil
}

func (r *TenantRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "uuid = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}
