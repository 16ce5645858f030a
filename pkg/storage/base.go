// Package storage provides the in-process record arena of the tiered memory engine.
//
// Records live in a single arena addressed by id. The short-term and long-term
// tiers are tagged partitions over that arena, and the type index and the
// importance-ordered view are maintained incrementally as views over it.
package storage

import (
	"errors"
	"time"
)

// Errors returned by the arena.
var (
	// ErrNotFound indicates that no record with the given id is stored.
	ErrNotFound = errors.New("storage: record not found")

	// ErrDuplicateID indicates that a record with the same id is already stored.
	ErrDuplicateID = errors.New("storage: duplicate record id")

	// ErrUnknownTier indicates a tier that the arena does not manage.
	ErrUnknownTier = errors.New("storage: unknown tier")

	// ErrUnknownKind indicates a kind that the type index was not initialised with.
	ErrUnknownKind = errors.New("storage: unknown kind")

	// ErrTierFull indicates that the target tier is at capacity.
	ErrTierFull = errors.New("storage: tier at capacity")
)

// Tier identifies one of the two bounded partitions.
type Tier string

const (
	// TierShortTerm holds new, low-importance records.
	TierShortTerm Tier = "short_term"

	// TierLongTerm holds important or promoted records.
	TierLongTerm Tier = "long_term"
)

// Tiers lists the partitions in enumeration order.
var Tiers = []Tier{TierShortTerm, TierLongTerm}

// Record represents a memory stored in the arena.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure.
type Record struct {
	// ID is the unique identifier of the record.
	ID int64

	// Kind is the memory category.
	Kind string

	// Content is the opaque payload.
	Content any

	// Importance is the clamped importance score (0.0-1.0).
	Importance float64

	// CreatedAt is when the record was created.
	CreatedAt time.Time

	// RetrievalCount is how many times the record was returned by a retrieval.
	RetrievalCount int

	// Metadata contains auxiliary key/value data.
	Metadata map[string]any

	// Tier is the partition currently holding the record.
	Tier Tier

	// seq is the arena insertion sequence, used to break importance ties.
	seq uint64
}
