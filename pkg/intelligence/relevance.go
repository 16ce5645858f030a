// Package intelligence provides the ranking and retention policy of the tiered memory engine.
package intelligence

import (
	"math"
	"time"
)

// Scorer computes the composite relevance of a memory.
//
// Relevance blends three signals:
//   - Importance: the caller-assigned importance (0.0-1.0)
//   - Recency: decays hyperbolically with the hours elapsed since creation
//   - Retrieval: how often the memory was returned, saturating at RetrievalSaturation
//
// Example usage:
//
//	scorer := NewScorer()
//	score := scorer.Score(memory, time.Now())
type Scorer struct {
	// importanceWeight is the weight of the importance component.
	importanceWeight float64

	// recencyWeight is the weight of the recency component.
	recencyWeight float64

	// retrievalWeight is the weight of the retrieval-frequency component.
	retrievalWeight float64

	// retrievalSaturation is the retrieval count at which the retrieval component reaches 1.0.
	retrievalSaturation int
}

// NewScorer creates a scorer with the default weights:
//   - importance: 0.5
//   - recency: 0.3
//   - retrieval: 0.2
func NewScorer() *Scorer {
	return &Scorer{
		importanceWeight:    ImportanceWeight,
		recencyWeight:       RecencyWeight,
		retrievalWeight:     RetrievalWeight,
		retrievalSaturation: RetrievalSaturation,
	}
}

// RecencyScore returns 1 / (1 + hours elapsed since createdAt).
//
// Elapsed time is measured in fractional wall-clock hours. A createdAt in the
// future of now counts as zero hours.
func (s *Scorer) RecencyScore(createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1.0 / (1.0 + hours)
}

// RetrievalScore returns min(1, retrievalCount / saturation).
func (s *Scorer) RetrievalScore(retrievalCount int) float64 {
	if retrievalCount <= 0 {
		return 0
	}
	return math.Min(1.0, float64(retrievalCount)/float64(s.retrievalSaturation))
}

// Score calculates the relevance of a memory at the instant now.
//
// The formula used is:
//
//	relevance = 0.5*importance + 0.3*recency + 0.2*retrieval
//
// Score has no side effects and is deterministic given the memory and now.
func (s *Scorer) Score(m Memory, now time.Time) float64 {
	return s.importanceWeight*m.Importance +
		s.recencyWeight*s.RecencyScore(m.CreatedAt, now) +
		s.retrievalWeight*s.RetrievalScore(m.RetrievalCount)
}

// ScoreAll scores every memory at the same instant, keeping input order.
func (s *Scorer) ScoreAll(memories []Memory, now time.Time) []Scored {
	scored := make([]Scored, len(memories))
	for i, m := range memories {
		scored[i] = Scored{Memory: m, Score: s.Score(m, now)}
	}
	return scored
}
