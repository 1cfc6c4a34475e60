package model

import (
	"time"

	"github.com/google/uuid"
)

type QuotaOperation string

const (
	QuotaOpAnalysis QuotaOperation = "analysis"
	QuotaOpRecharge QuotaOperation = "recharge"
	QuotaOpRefund   QuotaOperation = "refund"
)

// QuotaLog is an append-only ledger row: one quota-affecting event with a
// before/after balance snapshot. Rows are never updated or deleted.
type QuotaLog struct {
	ID            uint           `gorm:"primaryKey"`
	UUID          uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	TenantID      uint           `gorm:"not null;index"`
	UserID        uint           `gorm:"not null"`
	OperationType QuotaOperation `gorm:"type:varchar(20);not null"`
	QuotaChange   int            `gorm:"not null"`
	BalanceBefore int            `gorm:"not null"`
	BalanceAfter  int            `gorm:"not null"`
	CreatedAt     time.Time
}
