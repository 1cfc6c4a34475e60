package analysis

import (
	"fmt"

	"github.com/ganliai/insight/pkg/llm"
	"github.com/ganliai/insight/pkg/model"
)

// TypeFromDimensions maps the two binary axes onto the four personality
// types. The mapping is deterministic, so the model's freeform type choice
// is never trusted over it.
func TypeFromDimensions(dimension1, dimension2 string) (string, error) {
	switch {
	case dimension1 == model.DimensionExpressive && dimension2 == model.DimensionStructured:
		return model.TypeGanLi, nil
	case dimension1 == model.DimensionRestrained && dimension2 == model.DimensionFlexible:
		return model.TypeLiGan, nil
	case dimension1 == model.DimensionRestrained && dimension2 == model.DimensionStructured:
		return model.TypeLiLi, nil
	case dimension1 == model.DimensionExpressive && dimension2 == model.DimensionFlexible:
		return model.TypeGanGan, nil
	}
	return "", fmt.Errorf("unknown dimension pair %q/%q", dimension1, dimension2)
}

// normalizeClassification rejects out-of-set dimensions, clamps confidence
// and overwrites the type with the cross-product of the dimensions.
func normalizeClassification(cls *Classification) error {
	recomputed, err := TypeFromDimensions(cls.Dimension1, cls.Dimension2)
	if err != nil {
		return fmt.Errorf("%w: %v", llm.ErrAnalysisUnavailable, err)
	}
	cls.Type = recomputed
	cls.Confidence = clamp(cls.Confidence, 0, 100)
	return nil
}

// normalizeDraft clamps every numeric field to its documented range and
// rejects risk levels outside the closed set. The model is not a trusted
// numeric source.
func normalizeDraft(draft *reportDraft) error {
	switch model.RiskLevel(draft.Risk.Level) {
	case model.RiskLow, model.RiskMedium, model.RiskHigh:
	default:
		return fmt.Errorf("%w: risk level %q outside low/medium/high", llm.ErrAnalysisUnavailable, draft.Risk.Level)
	}

	draft.MaturityScore = clamp(draft.MaturityScore, 0, 10)
	draft.StabilityScore = clamp(draft.StabilityScore, 0, 10)
	draft.CooperationScore = clamp(draft.CooperationScore, 0, 10)
	draft.PositionMatch.Score = clamp(draft.PositionMatch.Score, 0, 100)

	if draft.Risk.Points == nil {
		draft.Risk.Points = []string{}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
