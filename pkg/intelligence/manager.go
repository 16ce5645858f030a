package intelligence

import (
	"sort"
	"time"
)

// Manager applies the ranking and eviction policy of the tiered memory engine.
//
// It integrates:
//   - Scorer: relevance of a memory at a given instant
//   - Policy constants: eviction shares and the long-term protection rule
//
// All selections use a stable sort, so memories with equal relevance keep the
// order in which they were supplied.
//
// Example usage:
//
//	manager := NewManager(nil)
//	victims := manager.ShortTermVictims(memories, time.Now())
type Manager struct {
	// scorer computes relevance scores.
	scorer *Scorer
}

// NewManager creates a new policy manager.
//
// Parameters:
//   - scorer: Relevance scorer (nil uses NewScorer())
func NewManager(scorer *Scorer) *Manager {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Manager{scorer: scorer}
}

// Scorer returns the relevance scorer used by the manager.
func (m *Manager) Scorer() *Scorer {
	return m.scorer
}

// Rank scores memories at now and sorts them by descending relevance.
// Ties keep input order.
func (m *Manager) Rank(memories []Memory, now time.Time) []Scored {
	scored := m.scorer.ScoreAll(memories, now)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ascending scores memories at now and sorts them by ascending relevance.
func (m *Manager) ascending(memories []Memory, now time.Time) []Scored {
	scored := m.scorer.ScoreAll(memories, now)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})
	return scored
}

// ShortTermVictims selects the short-term memories to evict.
//
// The lowest-relevance 20% of the tier (rounded up, at least one) are chosen.
// The returned ids are ordered from least to most relevant.
func (m *Manager) ShortTermVictims(memories []Memory, now time.Time) []int64 {
	if len(memories) == 0 {
		return nil
	}
	ranked := m.ascending(memories, now)
	n := EvictionCount(len(ranked), ShortTermEvictionPercent)

	victims := make([]int64, 0, n)
	for _, s := range ranked[:n] {
		victims = append(victims, s.Memory.ID)
	}
	return victims
}

// LongTermVictims selects the long-term memories to evict.
//
// The lowest-relevance 10% of the tier (rounded up, at least one) are
// considered, and only those below ProtectionImportance are chosen. The result
// may be shorter than the considered share, or empty.
func (m *Manager) LongTermVictims(memories []Memory, now time.Time) []int64 {
	if len(memories) == 0 {
		return nil
	}
	ranked := m.ascending(memories, now)
	n := EvictionCount(len(ranked), LongTermEvictionPercent)

	var victims []int64
	for _, s := range ranked[:n] {
		if IsProtected(s.Memory) {
			continue
		}
		victims = append(victims, s.Memory.ID)
	}
	return victims
}

// Promotable filters memories that satisfy ShouldPromote, keeping input order.
func (m *Manager) Promotable(memories []Memory) []int64 {
	var ids []int64
	for _, mem := range memories {
		if ShouldPromote(mem) {
			ids = append(ids, mem.ID)
		}
	}
	return ids
}
