package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantDeleted   TenantStatus = "deleted"
)

// Tenant is the isolation boundary. Every business row below carries a
// TenantID and every query must filter by it.
type Tenant struct {
	ID          uint         `gorm:"primaryKey"`
	UUID        uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string       `gorm:"size:255;not null"`
	OwnerUserID uint         `gorm:"not null"`
	Status      TenantStatus `gorm:"type:varchar(20);default:'active';not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	OpenID       string `gorm:"size:64;uniqueIndex;not null"`
	Name         string
	Email        string   `gorm:"size:320"`
	Phone        string   `gorm:"size:20"`
	Role         UserRole `gorm:"type:varchar(20);default:'user';not null"`
	TenantID     *uint    `gorm:"index"`
	LastSignedIn time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
