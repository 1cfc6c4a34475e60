package model

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceChat SourceType = "chat"
)

// Candidate holds the raw material for one analysis. SourceText is immutable
// after creation; IsHired flips false->true exactly once and never reverts.
type Candidate struct {
	ID         uint       `gorm:"primaryKey"`
	UUID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	TenantID   uint       `gorm:"not null;index"`
	Tenant     *Tenant    `gorm:"foreignKey:TenantID"`
	Name       string     `gorm:"size:255;not null"`
	Position   string     `gorm:"size:255"`
	SourceText string     `gorm:"type:text;not null"`
	SourceType SourceType `gorm:"type:varchar(20);default:'text';not null"`
	IsHired    bool       `gorm:"default:false;not null"`
	HiredAt    *time.Time
	CreatedBy  uint `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
