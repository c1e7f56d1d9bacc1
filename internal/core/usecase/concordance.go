package usecase

import "math"

// ConcordanceBounds configures the clamp-and-remap from raw vector similarity
// to the user-facing concordance score.
type ConcordanceBounds struct {
	SimilarityMin  float64
	SimilarityMax  float64
	ConcordanceMin float64
	ConcordanceMax float64
}

func DefaultConcordanceBounds() ConcordanceBounds {
	return ConcordanceBounds{
		SimilarityMin:  0.45,
		SimilarityMax:  0.80,
		ConcordanceMin: 0.60,
		ConcordanceMax: 0.95,
	}
}

// Normalize clamps a raw similarity into [SimilarityMin, SimilarityMax] and
// remaps it linearly onto [ConcordanceMin, ConcordanceMax], rounded to two
// decimals.
func (b ConcordanceBounds) Normalize(similarity float64) float64 {
	clipped := math.Max(b.SimilarityMin, math.Min(similarity, b.SimilarityMax))
	normalized := (clipped-b.SimilarityMin)/(b.SimilarityMax-b.SimilarityMin)*
		(b.ConcordanceMax-b.ConcordanceMin) + b.ConcordanceMin
	return math.Round(normalized*100) / 100
}
