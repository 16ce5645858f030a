package core

import (
	"time"

	"github.com/oceanbase/tiermem-go/pkg/storage"
)

// Kind is a memory category. The set of kinds an engine accepts is fixed by
// its capability configuration.
type Kind string

const (
	// KindEpisodic is a memory of a specific event or interaction.
	KindEpisodic Kind = "episodic"

	// KindSemantic is a general fact.
	KindSemantic Kind = "semantic"

	// KindProcedural is a learned way of doing something.
	KindProcedural Kind = "procedural"
)

// DefaultKinds is the kind set used by DefaultConfig.
var DefaultKinds = []Kind{KindEpisodic, KindSemantic, KindProcedural}

// Tier identifies the partition holding a memory.
type Tier = storage.Tier

const (
	// TierShortTerm holds new, low-importance memories.
	TierShortTerm = storage.TierShortTerm

	// TierLongTerm holds important or promoted memories.
	TierLongTerm = storage.TierLongTerm
)

// Memory is a snapshot of a stored memory record.
//
// Snapshots are copies: mutating one does not affect the engine.
//
// Example:
//
//	memories := engine.Retrieve(core.WithKind(core.KindEpisodic))
//	for _, m := range memories {
//	    fmt.Printf("%d [%s] %.2f %v\n", m.ID, m.Tier, m.Importance, m.Content)
//	}
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64 `json:"id"`

	// Kind is the memory category.
	Kind Kind `json:"kind"`

	// Content is the opaque payload supplied at creation.
	Content any `json:"content"`

	// Importance is the clamped importance score (0.0-1.0).
	Importance float64 `json:"importance"`

	// CreatedAt is when the memory was created.
	CreatedAt time.Time `json:"created_at"`

	// RetrievalCount is how many times the memory was returned by Retrieve.
	RetrievalCount int `json:"retrieval_count"`

	// Metadata contains auxiliary key/value data supplied at creation.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Tier is the partition holding the memory when the snapshot was taken.
	Tier Tier `json:"tier"`
}

// CapacityUsage is the occupancy ratio of each tier.
type CapacityUsage struct {
	ShortTerm float64 `json:"short_term"`
	LongTerm  float64 `json:"long_term"`
}

// Stats summarises engine occupancy.
type Stats struct {
	ShortTermCount int           `json:"short_term_count"`
	LongTermCount  int           `json:"long_term_count"`
	TotalCount     int           `json:"total_count"`
	CapacityUsage  CapacityUsage `json:"capacity_usage"`
}

// ConsolidationResult reports what one consolidation pass did.
type ConsolidationResult struct {
	// Promoted is the number of memories moved from short-term to long-term.
	Promoted int `json:"promoted"`

	// Skipped is the number of promotable memories left in short-term because
	// long-term had no room.
	Skipped int `json:"skipped"`

	// EvictedShortTerm is the number of short-term memories evicted.
	EvictedShortTerm int `json:"evicted_short_term"`

	// EvictedLongTerm is the number of long-term memories evicted.
	EvictedLongTerm int `json:"evicted_long_term"`
}

// TimeRange bounds CreatedAt inclusively. A zero Start or End is unbounded.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
