package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/llm"
	"github.com/ganliai/insight/pkg/model"
)

const validReportJSON = `{
	"maturityScore": 7,
	"stabilityScore": 6,
	"cooperationScore": 8,
	"analysisBasis": "表达细腻且做事有计划",
	"risk": {"level": "medium", "points": ["沟通偏情绪化"], "details": "压力下情绪波动明显"},
	"positionMatch": {"score": 65, "suitablePositions": ["产品经理"], "unsuitablePositions": ["客服"], "suggestions": "安排结构化的工作环境"},
	"collaborationGuide": {"communicationStyle": "先共情后说事", "motivationMethod": "认可与明确目标", "pitfalls": ["当众否定"], "bestPractices": "一对一沟通"},
	"summary": "情感丰富、执行有序的候选人"
}`

// fakeGateway scripts each stage's outcome; CompleteJSON dispatches on the
// schema name so a test can fail exactly one stage.
type fakeGateway struct {
	clues     string
	cluesErr  error
	cls       string
	clsErr    error
	report    string
	reportErr error
	calls     []string
}

func (f *fakeGateway) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	f.calls = append(f.calls, "extract")
	return f.clues, f.cluesErr
}

func (f *fakeGateway) CompleteJSON(ctx context.Context, prompt llm.Prompt, schema llm.Schema) (json.RawMessage, error) {
	f.calls = append(f.calls, schema.Name)
	switch schema.Name {
	case "personality_type":
		return json.RawMessage(f.cls), f.clsErr
	case "full_report":
		return json.RawMessage(f.report), f.reportErr
	}
	return nil, errors.New("unexpected schema " + schema.Name)
}

func happyGateway() *fakeGateway {
	return &fakeGateway{
		clues:  "线索1：用词感性；线索2：日程规划严密",
		cls:    `{"type":"感理型","dimension1":"感性表达","dimension2":"结构化行为","confidence":80}`,
		report: validReportJSON,
	}
}

func testInput() Input {
	return Input{
		SourceText:    "我平时喜欢把一周的工作都列成清单，遇到同事有情绪也会主动关心，聊聊天帮忙疏导一下。",
		CandidateName: "张三",
		Position:      "产品经理",
	}
}

func TestAnalyzeProducesFullyPopulatedResult(t *testing.T) {
	gateway := happyGateway()
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.PersonalityType != model.TypeGanLi {
		t.Errorf("expected type 感理型, got %q", result.PersonalityType)
	}
	if result.Dimension1 != model.DimensionExpressive || result.Dimension2 != model.DimensionStructured {
		t.Errorf("unexpected dimensions %q/%q", result.Dimension1, result.Dimension2)
	}
	if result.MaturityScore != 7 || result.MatchScore != 65 {
		t.Errorf("unexpected scores maturity=%d match=%d", result.MaturityScore, result.MatchScore)
	}
	if result.RiskLevel != model.RiskMedium {
		t.Errorf("expected medium risk, got %q", result.RiskLevel)
	}
	if len(result.RiskFactors) != 1 || result.RiskFactors[0] != "沟通偏情绪化" {
		t.Errorf("unexpected risk factors %v", result.RiskFactors)
	}
	if result.Payload.Clues == "" || result.Payload.Confidence != 80 {
		t.Errorf("payload missing clues or confidence: %+v", result.Payload)
	}
	if result.Payload.Summary != "情感丰富、执行有序的候选人" {
		t.Errorf("unexpected summary %q", result.Payload.Summary)
	}
}

func TestStagesRunStrictlyInOrder(t *testing.T) {
	gateway := happyGateway()
	pipeline := NewPipeline(gateway, zap.NewNop())

	if _, err := pipeline.Analyze(context.Background(), testInput()); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	want := []string{"extract", "personality_type", "full_report"}
	if len(gateway.calls) != len(want) {
		t.Fatalf("expected %d stage calls, got %v", len(want), gateway.calls)
	}
	for i, name := range want {
		if gateway.calls[i] != name {
			t.Fatalf("stage %d: expected %s, got %s", i, name, gateway.calls[i])
		}
	}
}

func TestEmptyCluesIsHardFailure(t *testing.T) {
	gateway := happyGateway()
	gateway.clues = "   "
	pipeline := NewPipeline(gateway, zap.NewNop())

	_, err := pipeline.Analyze(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
	// classification must never see an empty clue set
	for _, call := range gateway.calls {
		if call == "personality_type" {
			t.Fatal("classification ran after empty clue extraction")
		}
	}
}

func TestStageTwoFailureAbortsPipeline(t *testing.T) {
	gateway := happyGateway()
	gateway.clsErr = llm.ErrAnalysisUnavailable
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
	if result != nil {
		t.Fatal("expected no partial result on stage failure")
	}
	for _, call := range gateway.calls {
		if call == "full_report" {
			t.Fatal("report stage ran after classification failure")
		}
	}
}

func TestStageThreeFailureAbortsPipeline(t *testing.T) {
	gateway := happyGateway()
	gateway.reportErr = llm.ErrAnalysisUnavailable
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
	if result != nil {
		t.Fatal("expected no partial result on stage failure")
	}
}

func TestTypeRecomputedFromDimensions(t *testing.T) {
	gateway := happyGateway()
	// model claims 理理型 but the dimensions say 感理型
	gateway.cls = `{"type":"理理型","dimension1":"感性表达","dimension2":"结构化行为","confidence":70}`
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if result.PersonalityType != model.TypeGanLi {
		t.Fatalf("expected recomputed type 感理型, got %q", result.PersonalityType)
	}
}

func TestUnknownDimensionFailsRun(t *testing.T) {
	gateway := happyGateway()
	gateway.cls = `{"type":"感理型","dimension1":"中性表达","dimension2":"结构化行为","confidence":70}`
	pipeline := NewPipeline(gateway, zap.NewNop())

	_, err := pipeline.Analyze(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestScoresClampedToDocumentedRanges(t *testing.T) {
	gateway := happyGateway()
	gateway.report = `{
		"maturityScore": 14,
		"stabilityScore": -2,
		"cooperationScore": 8,
		"analysisBasis": "基础",
		"risk": {"level": "low", "points": [], "details": ""},
		"positionMatch": {"score": 130, "suitablePositions": [], "unsuitablePositions": [], "suggestions": ""},
		"collaborationGuide": {"communicationStyle": "", "motivationMethod": "", "pitfalls": [], "bestPractices": ""},
		"summary": "总结"
	}`
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if result.MaturityScore != 10 {
		t.Errorf("expected maturity clamped to 10, got %d", result.MaturityScore)
	}
	if result.MatchScore != 100 {
		t.Errorf("expected match clamped to 100, got %d", result.MatchScore)
	}
	if result.Payload.Personality.StabilityScore != 0 {
		t.Errorf("expected stability clamped to 0, got %v", result.Payload.Personality.StabilityScore)
	}
}

func TestInvalidRiskLevelFailsRun(t *testing.T) {
	gateway := happyGateway()
	gateway.report = `{
		"maturityScore": 5,
		"stabilityScore": 5,
		"cooperationScore": 5,
		"analysisBasis": "基础",
		"risk": {"level": "critical", "points": [], "details": ""},
		"positionMatch": {"score": 50, "suitablePositions": [], "unsuitablePositions": [], "suggestions": ""},
		"collaborationGuide": {"communicationStyle": "", "motivationMethod": "", "pitfalls": [], "bestPractices": ""},
		"summary": "总结"
	}`
	pipeline := NewPipeline(gateway, zap.NewNop())

	_, err := pipeline.Analyze(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestConfidenceClamped(t *testing.T) {
	gateway := happyGateway()
	gateway.cls = `{"type":"感理型","dimension1":"感性表达","dimension2":"结构化行为","confidence":170}`
	pipeline := NewPipeline(gateway, zap.NewNop())

	result, err := pipeline.Analyze(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if result.Payload.Confidence != 100 {
		t.Fatalf("expected confidence clamped to 100, got %v", result.Payload.Confidence)
	}
}
