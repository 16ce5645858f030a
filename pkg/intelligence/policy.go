package intelligence

// Policy constants of the tiered memory engine.
const (
	// LongTermPlacementThreshold routes a new memory straight to long-term storage
	// when its importance is at or above this value.
	LongTermPlacementThreshold = 0.7

	// PromotionRetrievalCount promotes a short-term memory that has been
	// retrieved at least this many times.
	PromotionRetrievalCount = 3

	// PromotionImportance promotes a short-term memory whose importance is at
	// or above this value.
	PromotionImportance = 0.6

	// ShortTermEvictionPercent is the share of the short-term tier removed by one eviction pass.
	ShortTermEvictionPercent = 20

	// LongTermEvictionPercent is the share of the long-term tier considered by one eviction pass.
	LongTermEvictionPercent = 10

	// CapacityWatermark triggers capacity management for a tier whose
	// occupancy ratio is strictly above it.
	CapacityWatermark = 0.9

	// ProtectionImportance shields long-term memories at or above this
	// importance from automatic eviction.
	ProtectionImportance = 0.5

	// RetrievalSaturation is the retrieval count at which the retrieval
	// component of the relevance score reaches 1.0.
	RetrievalSaturation = 10
)

// Relevance weights. They sum to 1.0.
const (
	ImportanceWeight = 0.5
	RecencyWeight    = 0.3
	RetrievalWeight  = 0.2
)

// ClampImportance clamps an importance score to [0, 1].
// Out-of-range values are not an error.
func ClampImportance(importance float64) float64 {
	if importance < 0 {
		return 0
	}
	if importance > 1 {
		return 1
	}
	return importance
}

// PlaceInLongTerm reports whether a new memory with the given (clamped)
// importance belongs in long-term storage.
func PlaceInLongTerm(importance float64) bool {
	return importance >= LongTermPlacementThreshold
}

// ShouldPromote determines if a short-term memory should be promoted to long-term storage.
//
// A memory is promoted if:
//   - RetrievalCount >= 3 (frequently retrieved)
//   - Importance >= 0.6 (high importance)
func ShouldPromote(m Memory) bool {
	return m.RetrievalCount >= PromotionRetrievalCount || m.Importance >= PromotionImportance
}

// IsProtected reports whether a long-term memory is exempt from automatic eviction.
func IsProtected(m Memory) bool {
	return m.Importance >= ProtectionImportance
}

// OverWatermark reports whether a tier with the given occupancy needs capacity management.
func OverWatermark(count, capacity int) bool {
	if capacity <= 0 {
		return count > 0
	}
	return float64(count)/float64(capacity) > CapacityWatermark
}

// EvictionCount returns ceil(percent% of n), and at least one when n > 0.
//
// Integer arithmetic keeps 20% of 5 at exactly 1.
func EvictionCount(n, percent int) int {
	if n <= 0 {
		return 0
	}
	count := (n*percent + 99) / 100
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}
	return count
}
