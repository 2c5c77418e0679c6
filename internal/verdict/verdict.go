// Package verdict turns raw classification results into presentation-ready
// verdicts. It is pure: a verdict is recomputed whenever a new result
// arrives and never mutated otherwise.
package verdict

import (
	"github.com/example/faceauth/internal/faceclient"
)

// Tier is the display bucket for a confidence score.
type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// TierOf maps a confidence score to its tier. Boundaries are inclusive:
// 0.8 is High and 0.6 is Medium.
func TierOf(confidence float64) Tier {
	switch {
	case confidence >= 0.8:
		return TierHigh
	case confidence >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// Verdict is the interpreted outcome of one verification attempt.
type Verdict struct {
	MatchedLabel     string
	ConfidenceTier   Tier
	Verified         bool
	Confidence       float64
	CosineSimilarity float64
	Threshold        float64
	DisplayMessage   string
}

// Interpret derives the verdict from a raw classification result. The
// verified decision is taken verbatim from the service, which owns the
// threshold comparison; only the confidence tier is derived locally for
// display.
func Interpret(result *faceclient.ClassificationResult) Verdict {
	return Verdict{
		MatchedLabel:     result.Match,
		ConfidenceTier:   TierOf(result.Confidence),
		Verified:         result.Verified,
		Confidence:       result.Confidence,
		CosineSimilarity: result.CosineSimilarity,
		Threshold:        result.Threshold,
		DisplayMessage:   result.Message,
	}
}
