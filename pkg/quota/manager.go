// Package quota implements the per-tenant analysis allowance ledger.
//
// The debit is a single conditional UPDATE guarded by quota_used <
// quota_total, checked through RowsAffected. Two concurrent requests racing
// for the last unit cannot both win: the loser's UPDATE matches no row and
// surfaces ErrQuotaExceeded. Every balance change appends a QuotaLog row
// with a before/after snapshot.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ganliai/insight/pkg/model"
)

var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) Remaining(ctx context.Context, tenantID uint) (int, int, model.PlanType, error) {
	sub, err := m.activeSubscription(m.db.WithContext(ctx), tenantID)
	if err != nil {
		return 0, 0, "", err
	}
	return sub.Remaining(), sub.QuotaTotal, sub.PlanType, nil
}

// Consume debits one analysis run. The subscription row is the serialization
// point; no read-then-write on the counter.
func (m *Manager) Consume(ctx context.Context, tenantID, userID uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := m.activeSubscription(tx, tenantID)
		if err != nil {
			return err
		}

		result := tx.Model(&model.Subscription{}).
			Where("id = ? AND quota_used < quota_total", sub.ID).
			UpdateColumn("quota_used", gorm.Expr("quota_used + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		return m.appendLog(tx, sub.ID, tenantID, userID, model.QuotaOpAnalysis, -1)
	})
}

// Refund is the compensating credit for a debit whose analysis never
// produced a report. It cannot push quota_used below zero.
func (m *Manager) Refund(ctx context.Context, tenantID, userID uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := m.activeSubscription(tx, tenantID)
		if err != nil {
			return err
		}

		result := tx.Model(&model.Subscription{}).
			Where("id = ? AND quota_used > 0", sub.ID).
			UpdateColumn("quota_used", gorm.Expr("quota_used - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("refund with no outstanding debit for tenant %d", tenantID)
		}

		return m.appendLog(tx, sub.ID, tenantID, userID, model.QuotaOpRefund, 1)
	})
}

// Recharge raises the allowance ceiling by amount.
func (m *Manager) Recharge(ctx context.Context, tenantID, userID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("recharge amount must be positive, got %d", amount)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := m.activeSubscription(tx, tenantID)
		if err != nil {
			return err
		}

		result := tx.Model(&model.Subscription{}).
			Where("id = ?", sub.ID).
			UpdateColumn("quota_total", gorm.Expr("quota_total + ?", amount))
		if result.Error != nil {
			return result.Error
		}

		return m.appendLog(tx, sub.ID, tenantID, userID, model.QuotaOpRecharge, amount)
	})
}

func (m *Manager) activeSubscription(tx *gorm.DB, tenantID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := tx.
		Where("tenant_id = ? AND status = ?", tenantID, model.SubscriptionActive).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return &sub, nil
}

// appendLog re-reads the balance after the counter moved so the snapshot is
// consistent with what the conditional update actually committed.
func (m *Manager) appendLog(tx *gorm.DB, subscriptionID, tenantID, userID uint, op model.QuotaOperation, change int) error {
	var sub model.Subscription
	if err := tx.First(&sub, "id = ?", subscriptionID).Error; err != nil {
		return err
	}

	after := sub.Remaining()
	return tx.Create(&model.QuotaLog{
		UUID:          uuid.New(),
		TenantID:      tenantID,
		UserID:        userID,
		OperationType: op,
		QuotaChange:   change,
		BalanceBefore: after - change,
		BalanceAfter:  after,
	}).Error
}
