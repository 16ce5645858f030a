package storage

import "fmt"

// Arena stores every record once and tags it with the tier that holds it.
//
// The arena is not safe for concurrent use; the engine that owns it
// serialises access. Records returned by lookups are the arena's own values
// and must not be modified by callers outside this package.
type Arena struct {
	records      map[int64]*Record
	partitions   map[Tier]*partition
	kinds        *TypeIndex
	byImportance *ImportanceView
	seq          uint64
}

// partition is one bounded tier over the arena.
type partition struct {
	capacity int
	members  *orderedSet
}

// NewArena creates an empty arena.
//
// Parameters:
//   - kinds: Supported memory kinds; the type index gets one empty set per kind
//   - capacities: Maximum record count per tier; tiers missing from the map are unmanaged
func NewArena(kinds []string, capacities map[Tier]int) *Arena {
	a := &Arena{
		records:      make(map[int64]*Record),
		partitions:   make(map[Tier]*partition, len(capacities)),
		kinds:        NewTypeIndex(kinds),
		byImportance: NewImportanceView(),
	}
	for tier, capacity := range capacities {
		a.partitions[tier] = &partition{capacity: capacity, members: newOrderedSet()}
	}
	return a
}

func (a *Arena) partition(t Tier) (*partition, error) {
	p, ok := a.partitions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	return p, nil
}

// Insert adds r to the tier named by r.Tier and to both indices.
//
// It fails without side effects when the id is already stored, the tier or
// kind is unknown, or the tier is at capacity.
func (a *Arena) Insert(r *Record) error {
	if _, exists := a.records[r.ID]; exists {
		return fmt.Errorf("Insert: %w: %d", ErrDuplicateID, r.ID)
	}
	p, err := a.partition(r.Tier)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	if !a.kinds.HasKind(r.Kind) {
		return fmt.Errorf("Insert: %w: %q", ErrUnknownKind, r.Kind)
	}
	if p.members.len() >= p.capacity {
		return fmt.Errorf("Insert: %w: %s", ErrTierFull, r.Tier)
	}

	a.seq++
	r.seq = a.seq
	a.records[r.ID] = r
	p.members.add(r.ID)
	_ = a.kinds.Add(r.Kind, r.ID)
	a.byImportance.Insert(r)
	return nil
}

// Get retrieves a record by id.
func (a *Arena) Get(id int64) (*Record, bool) {
	r, ok := a.records[id]
	return r, ok
}

// Remove deletes a record from its tier and from both indices.
func (a *Arena) Remove(id int64) (*Record, error) {
	r, ok := a.records[id]
	if !ok {
		return nil, fmt.Errorf("Remove: %w: %d", ErrNotFound, id)
	}
	if p, ok := a.partitions[r.Tier]; ok {
		p.members.remove(id)
	}
	a.kinds.Remove(r.Kind, id)
	a.byImportance.Remove(r)
	delete(a.records, id)
	return r, nil
}

// Move transfers a record to another tier. The record joins the end of the
// target tier's enumeration order. Indices are unaffected.
func (a *Arena) Move(id int64, to Tier) error {
	r, ok := a.records[id]
	if !ok {
		return fmt.Errorf("Move: %w: %d", ErrNotFound, id)
	}
	if r.Tier == to {
		return nil
	}
	target, err := a.partition(to)
	if err != nil {
		return fmt.Errorf("Move: %w", err)
	}
	if target.members.len() >= target.capacity {
		return fmt.Errorf("Move: %w: %s", ErrTierFull, to)
	}
	if source, ok := a.partitions[r.Tier]; ok {
		source.members.remove(id)
	}
	target.members.add(id)
	r.Tier = to
	return nil
}

// IncrementRetrieval bumps the retrieval count of a record.
func (a *Arena) IncrementRetrieval(id int64) error {
	r, ok := a.records[id]
	if !ok {
		return fmt.Errorf("IncrementRetrieval: %w: %d", ErrNotFound, id)
	}
	r.RetrievalCount++
	return nil
}

// Records returns the records of a tier in enumeration order.
func (a *Arena) Records(t Tier) []*Record {
	p, ok := a.partitions[t]
	if !ok {
		return nil
	}
	return a.resolve(p.members.ids())
}

// ByKind returns the records of a kind across both tiers, in the order they
// were added to the type index. Unknown kinds yield nil.
func (a *Arena) ByKind(kind string) []*Record {
	return a.resolve(a.kinds.IDs(kind))
}

// ByImportance returns all records with importance >= threshold, most
// important first, ties in insertion order.
func (a *Arena) ByImportance(threshold float64) []*Record {
	return a.byImportance.AtLeast(threshold)
}

func (a *Arena) resolve(ids []int64) []*Record {
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := a.records[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// HasKind reports whether kind is one of the arena's supported kinds.
func (a *Arena) HasKind(kind string) bool {
	return a.kinds.HasKind(kind)
}

// KindCount returns the number of records stored under kind.
func (a *Arena) KindCount(kind string) int {
	return a.kinds.Count(kind)
}

// Len returns the occupancy of a tier.
func (a *Arena) Len(t Tier) int {
	p, ok := a.partitions[t]
	if !ok {
		return 0
	}
	return p.members.len()
}

// Capacity returns the configured capacity of a tier.
func (a *Arena) Capacity(t Tier) int {
	p, ok := a.partitions[t]
	if !ok {
		return 0
	}
	return p.capacity
}

// Full reports whether a tier is at or over capacity.
func (a *Arena) Full(t Tier) bool {
	return a.Len(t) >= a.Capacity(t)
}

// Total returns the number of stored records across all tiers.
func (a *Arena) Total() int {
	return len(a.records)
}

// Clear empties every tier and index.
func (a *Arena) Clear() {
	a.records = make(map[int64]*Record)
	for _, p := range a.partitions {
		p.members.reset()
	}
	a.kinds.Reset()
	a.byImportance.Reset()
}
