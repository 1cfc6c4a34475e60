// Package analysis turns raw candidate text into a fully scored personality
// report through three strictly sequential stages: extract clues, classify
// the type, generate the full report. Stage 2 needs stage 1's clues and
// stage 3 needs both, so no stage runs out of order and none is retried; the
// first failure aborts the run and no partial result escapes.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/llm"
	"github.com/ganliai/insight/pkg/metrics"
	"github.com/ganliai/insight/pkg/model"
)

type Pipeline struct {
	gateway llm.Gateway
	logger  *zap.Logger
}

func NewPipeline(gateway llm.Gateway, logger *zap.Logger) *Pipeline {
	return &Pipeline{gateway: gateway, logger: logger}
}

// Analyze runs the full pipeline. On any error the caller gets nothing back
// but the error itself.
func (p *Pipeline) Analyze(ctx context.Context, input Input) (*Result, error) {
	if strings.TrimSpace(input.SourceText) == "" {
		return nil, fmt.Errorf("%w: empty source text", llm.ErrAnalysisUnavailable)
	}

	clues, err := p.extractClues(ctx, input)
	if err != nil {
		return nil, err
	}

	cls, err := p.classify(ctx, clues)
	if err != nil {
		return nil, err
	}

	draft, err := p.generateReport(ctx, input, clues, cls)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		Personality: PersonalityDetail{
			Type:             cls.Type,
			Dimension1:       cls.Dimension1,
			Dimension2:       cls.Dimension2,
			MaturityScore:    draft.MaturityScore,
			StabilityScore:   draft.StabilityScore,
			CooperationScore: draft.CooperationScore,
			AnalysisBasis:    draft.AnalysisBasis,
		},
		Risk:               draft.Risk,
		PositionMatch:      draft.PositionMatch,
		CollaborationGuide: draft.CollaborationGuide,
		Summary:            draft.Summary,
		Clues:              clues,
		Confidence:         cls.Confidence,
	}

	return &Result{
		PersonalityType: cls.Type,
		Dimension1:      cls.Dimension1,
		Dimension2:      cls.Dimension2,
		MaturityScore:   int(draft.MaturityScore),
		MatchScore:      int(draft.PositionMatch.Score),
		RiskLevel:       model.RiskLevel(draft.Risk.Level),
		RiskFactors:     draft.Risk.Points,
		Payload:         payload,
	}, nil
}

// extractClues is stage 1. Empty clue text is a hard failure: the clues are
// load-bearing for classification, so an empty set must not propagate.
func (p *Pipeline) extractClues(ctx context.Context, input Input) (string, error) {
	defer observeStage("extract_clues")()

	clues, err := p.gateway.Complete(ctx, llm.Prompt{
		System: clueExtractionSystemPrompt,
		User:   clueExtractionUserPrompt(input),
	})
	if err != nil {
		p.logger.Warn("clue extraction failed", zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(clues) == "" {
		return "", fmt.Errorf("%w: no personality clues extracted", llm.ErrAnalysisUnavailable)
	}
	return clues, nil
}

var classificationSchema = llm.ObjectSchema("personality_type", map[string]interface{}{
	"type":       map[string]interface{}{"type": "string"},
	"dimension1": map[string]interface{}{"type": "string"},
	"dimension2": map[string]interface{}{"type": "string"},
	"confidence": map[string]interface{}{"type": "number"},
})

func (p *Pipeline) classify(ctx context.Context, clues string) (Classification, error) {
	defer observeStage("classify")()

	var cls Classification
	payload, err := p.gateway.CompleteJSON(ctx, llm.Prompt{
		System: classificationSystemPrompt,
		User:   classificationUserPrompt(clues),
	}, classificationSchema)
	if err != nil {
		p.logger.Warn("classification failed", zap.Error(err))
		return cls, err
	}
	if err := json.Unmarshal(payload, &cls); err != nil {
		return cls, fmt.Errorf("%w: classification payload: %v", llm.ErrAnalysisUnavailable, err)
	}
	if err := normalizeClassification(&cls); err != nil {
		p.logger.Warn("classification outside closed set", zap.Error(err))
		return cls, err
	}
	return cls, nil
}

var reportSchema = llm.ObjectSchema("full_report", map[string]interface{}{
	"maturityScore":    map[string]interface{}{"type": "number"},
	"stabilityScore":   map[string]interface{}{"type": "number"},
	"cooperationScore": map[string]interface{}{"type": "number"},
	"analysisBasis":    map[string]interface{}{"type": "string"},
	"risk": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"level":   map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
			"points":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"details": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"level", "points", "details"},
		"additionalProperties": false,
	},
	"positionMatch": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score":               map[string]interface{}{"type": "number"},
			"suitablePositions":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"unsuitablePositions": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"suggestions":         map[string]interface{}{"type": "string"},
		},
		"required":             []string{"score", "suitablePositions", "unsuitablePositions", "suggestions"},
		"additionalProperties": false,
	},
	"collaborationGuide": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"communicationStyle": map[string]interface{}{"type": "string"},
			"motivationMethod":   map[string]interface{}{"type": "string"},
			"pitfalls":           map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"bestPractices":      map[string]interface{}{"type": "string"},
		},
		"required":             []string{"communicationStyle", "motivationMethod", "pitfalls", "bestPractices"},
		"additionalProperties": false,
	},
	"summary": map[string]interface{}{"type": "string"},
})

func (p *Pipeline) generateReport(ctx context.Context, input Input, clues string, cls Classification) (reportDraft, error) {
	defer observeStage("generate_report")()

	var draft reportDraft
	payload, err := p.gateway.CompleteJSON(ctx, llm.Prompt{
		System: reportSystemPrompt,
		User:   reportUserPrompt(input, clues, cls),
	}, reportSchema)
	if err != nil {
		p.logger.Warn("report generation failed", zap.Error(err))
		return draft, err
	}
	if err := json.Unmarshal(payload, &draft); err != nil {
		return draft, fmt.Errorf("%w: report payload: %v", llm.ErrAnalysisUnavailable, err)
	}
	if err := normalizeDraft(&draft); err != nil {
		p.logger.Warn("report outside documented ranges", zap.Error(err))
		return draft, err
	}
	return draft, nil
}

func observeStage(stage string) func() {
	start := time.Now()
	return func() {
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
