package intelligence

import "time"

// Memory represents a memory in the intelligence package.
//
// This type is used to avoid circular dependencies between the intelligence
// package and the core/storage packages. It carries only the fields the
// scorer and the eviction policy read.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// Importance is the clamped importance score (0.0-1.0).
	Importance float64

	// CreatedAt is when the memory was created.
	CreatedAt time.Time

	// RetrievalCount is how many times the memory was returned by a retrieval.
	RetrievalCount int
}

// Scored pairs a memory with its relevance score at a given instant.
type Scored struct {
	Memory Memory
	Score  float64
}
