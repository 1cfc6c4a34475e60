package analysis

import "github.com/ganliai/insight/pkg/model"

// Input is everything one pipeline run needs. Position may be empty.
type Input struct {
	SourceText    string
	CandidateName string
	Position      string
}

// Classification is the stage-2 verdict. Type is always consistent with the
// two dimensions: the pipeline recomputes it from their cross-product rather
// than trusting the model's choice.
type Classification struct {
	Type       string  `json:"type"`
	Dimension1 string  `json:"dimension1"`
	Dimension2 string  `json:"dimension2"`
	Confidence float64 `json:"confidence"`
}

type PersonalityDetail struct {
	Type             string  `json:"type"`
	Dimension1       string  `json:"dimension1"`
	Dimension2       string  `json:"dimension2"`
	MaturityScore    float64 `json:"maturityScore"`
	StabilityScore   float64 `json:"stabilityScore,omitempty"`
	CooperationScore float64 `json:"cooperationScore,omitempty"`
	AnalysisBasis    string  `json:"analysisBasis"`
}

type RiskDetail struct {
	Level   string   `json:"level"`
	Points  []string `json:"points"`
	Details string   `json:"details"`
}

type PositionMatchDetail struct {
	Score               float64  `json:"score"`
	SuitablePositions   []string `json:"suitablePositions"`
	UnsuitablePositions []string `json:"unsuitablePositions"`
	Suggestions         string   `json:"suggestions"`
}

type CollaborationGuide struct {
	CommunicationStyle string   `json:"communicationStyle"`
	MotivationMethod   string   `json:"motivationMethod"`
	Pitfalls           []string `json:"pitfalls"`
	BestPractices      string   `json:"bestPractices"`
}

// Payload is the full report document persisted as the report's JSONB data.
type Payload struct {
	Personality        PersonalityDetail   `json:"personality"`
	Risk               RiskDetail          `json:"risk"`
	PositionMatch      PositionMatchDetail `json:"positionMatch"`
	CollaborationGuide CollaborationGuide  `json:"collaborationGuide"`
	Summary            string              `json:"summary"`
	Clues              string              `json:"clues"`
	Confidence         float64             `json:"confidence"`
}

// Result is the pipeline's all-or-nothing output.
type Result struct {
	PersonalityType string
	Dimension1      string
	Dimension2      string
	MaturityScore   int
	MatchScore      int
	RiskLevel       model.RiskLevel
	RiskFactors     []string
	Payload         Payload
}

// reportDraft is the raw stage-3 decode before validation and clamping.
type reportDraft struct {
	MaturityScore      float64             `json:"maturityScore"`
	StabilityScore     float64             `json:"stabilityScore"`
	CooperationScore   float64             `json:"cooperationScore"`
	AnalysisBasis      string              `json:"analysisBasis"`
	Risk               RiskDetail          `json:"risk"`
	PositionMatch      PositionMatchDetail `json:"positionMatch"`
	CollaborationGuide CollaborationGuide  `json:"collaborationGuide"`
	Summary            string              `json:"summary"`
}
