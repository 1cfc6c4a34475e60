package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// The four personality types of the 感理分化说 model: the cross-product of
// the expression axis (感性表达/理性表达) and the behavior axis
// (结构化行为/灵活化行为).
const (
	TypeGanLi  = "感理型" // 感性表达 + 结构化行为
	TypeLiGan  = "理感型" // 理性表达 + 灵活化行为
	TypeLiLi   = "理理型" // 理性表达 + 结构化行为
	TypeGanGan = "感感型" // 感性表达 + 灵活化行为
)

const (
	DimensionExpressive = "感性表达"
	DimensionRestrained = "理性表达"
	DimensionStructured = "结构化行为"
	DimensionFlexible   = "灵活化行为"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

// Report is the terminal artifact of one successful pipeline run. One report per
// candidate, enforced by the unique index on CandidateID; scored fields and
// ReportData are populated together or not at all.
type Report struct {
	ID          uint       `gorm:"primaryKey"`
	UUID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	CandidateID uint       `gorm:"not null;uniqueIndex"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID"`
	TenantID    uint       `gorm:"not null;index"`

	PersonalityType       string `gorm:"size:50"`
	PersonalityDimension1 string `gorm:"size:50"`
	PersonalityDimension2 string `gorm:"size:50"`

	MaturityScore int `gorm:"default:0"`
	MatchScore    int `gorm:"default:0"`

	RiskLevel   RiskLevel      `gorm:"type:varchar(10);default:'low';not null;index"`
	RiskFactors pq.StringArray `gorm:"type:text[]"`

	ReportData JSONB `gorm:"type:jsonb;not null"`

	AnalysisStatus AnalysisStatus `gorm:"type:varchar(20);default:'pending';not null"`
	ErrorMessage   string         `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) GormDataType() string {
	return "jsonb"
}
