package verdict

import (
	"testing"

	"github.com/example/faceauth/internal/faceclient"
)

func TestTierOfBoundaries(t *testing.T) {
	cases := []struct {
		confidence float64
		want       Tier
	}{
		{0.0, TierLow},
		{0.599999, TierLow},
		{0.6, TierMedium},
		{0.79, TierMedium},
		{0.8, TierHigh},
		{0.92, TierHigh},
		{1.0, TierHigh},
	}

	for _, tc := range cases {
		if got := TierOf(tc.confidence); got != tc.want {
			t.Errorf("TierOf(%v) = %s, want %s", tc.confidence, got, tc.want)
		}
	}
}

func TestInterpretTakesVerifiedVerbatim(t *testing.T) {
	result := &faceclient.ClassificationResult{
		Match:            "Alice",
		Confidence:       0.92,
		CosineSimilarity: 0.87,
		Threshold:        0.55,
		Verified:         true,
		Message:          "Best match: Alice with similarity 0.8700",
	}

	v := Interpret(result)
	if v.MatchedLabel != "Alice" {
		t.Fatalf("unexpected label: %s", v.MatchedLabel)
	}
	if v.ConfidenceTier != TierHigh {
		t.Fatalf("expected High tier, got %s", v.ConfidenceTier)
	}
	if !v.Verified {
		t.Fatal("expected verified")
	}
	if v.Threshold != 0.55 || v.CosineSimilarity != 0.87 {
		t.Fatalf("scores not carried through: %+v", v)
	}
	if v.DisplayMessage != result.Message {
		t.Fatalf("unexpected message: %s", v.DisplayMessage)
	}
}

func TestInterpretNeverRecomputesDecision(t *testing.T) {
	// Similarity above threshold but the service said not verified: the
	// interpreter must not overrule it.
	result := &faceclient.ClassificationResult{
		Match:            "Unknown",
		Confidence:       0.7,
		CosineSimilarity: 0.7,
		Threshold:        0.55,
		Verified:         false,
	}

	v := Interpret(result)
	if v.Verified {
		t.Fatal("interpreter recomputed the verified decision")
	}
	if v.ConfidenceTier != TierMedium {
		t.Fatalf("expected Medium tier, got %s", v.ConfidenceTier)
	}
}
