package model

import (
	"time"

	"github.com/google/uuid"
)

type PlanType string

const (
	PlanFree       PlanType = "free"
	PlanBasic      PlanType = "basic"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription carries a tenant's analysis allowance. At most one row per
// tenant has status=active; QuotaUsed only moves through the quota manager
// so that 0 <= QuotaUsed <= QuotaTotal holds at all times.
type Subscription struct {
	ID         uint               `gorm:"primaryKey"`
	UUID       uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null"`
	TenantID   uint               `gorm:"not null;index"`
	Tenant     *Tenant            `gorm:"foreignKey:TenantID"`
	PlanType   PlanType           `gorm:"type:varchar(20);default:'free';not null"`
	QuotaTotal int                `gorm:"default:0;not null"`
	QuotaUsed  int                `gorm:"default:0;not null"`
	Status     SubscriptionStatus `gorm:"type:varchar(20);default:'active';not null;index"`
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Subscription) Remaining() int {
	return s.QuotaTotal - s.QuotaUsed
}
