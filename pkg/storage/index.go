package storage

import "sort"

// TypeIndex maps each kind to the ids currently stored under it.
//
// The index is initialised with an empty set per supported kind; kinds outside
// that set have no entry and resolve to an empty lookup.
type TypeIndex struct {
	sets map[string]*orderedSet
}

// NewTypeIndex creates a type index with an empty set for each kind.
func NewTypeIndex(kinds []string) *TypeIndex {
	idx := &TypeIndex{sets: make(map[string]*orderedSet, len(kinds))}
	for _, k := range kinds {
		idx.sets[k] = newOrderedSet()
	}
	return idx
}

// HasKind reports whether the index was initialised with kind.
func (x *TypeIndex) HasKind(kind string) bool {
	_, ok := x.sets[kind]
	return ok
}

// Add records id under kind.
func (x *TypeIndex) Add(kind string, id int64) error {
	set, ok := x.sets[kind]
	if !ok {
		return ErrUnknownKind
	}
	if !set.add(id) {
		return ErrDuplicateID
	}
	return nil
}

// Remove deletes id from the set of kind. Unknown kinds and ids are ignored.
func (x *TypeIndex) Remove(kind string, id int64) {
	if set, ok := x.sets[kind]; ok {
		set.remove(id)
	}
}

// IDs returns the ids stored under kind in insertion order.
func (x *TypeIndex) IDs(kind string) []int64 {
	set, ok := x.sets[kind]
	if !ok {
		return nil
	}
	return set.ids()
}

// Count returns the number of ids stored under kind.
func (x *TypeIndex) Count(kind string) int {
	set, ok := x.sets[kind]
	if !ok {
		return 0
	}
	return set.len()
}

// Reset empties every set while keeping the configured kinds.
func (x *TypeIndex) Reset() {
	for _, set := range x.sets {
		set.reset()
	}
}

// ImportanceView keeps every stored record ordered by descending importance.
// Ties keep insertion order.
//
// Insertions and removals locate their position by binary search, so the view
// is never re-sorted as a whole. Importance and insertion sequence are
// immutable, so a record's position only shifts when neighbours come and go.
type ImportanceView struct {
	records []*Record
}

// NewImportanceView creates an empty view.
func NewImportanceView() *ImportanceView {
	return &ImportanceView{}
}

// before reports whether a sorts before b.
func before(a, b *Record) bool {
	if a.Importance != b.Importance {
		return a.Importance > b.Importance
	}
	return a.seq < b.seq
}

func (v *ImportanceView) position(r *Record) int {
	return sort.Search(len(v.records), func(i int) bool {
		return !before(v.records[i], r)
	})
}

// Insert places r at its ordered position.
func (v *ImportanceView) Insert(r *Record) {
	i := v.position(r)
	v.records = append(v.records, nil)
	copy(v.records[i+1:], v.records[i:])
	v.records[i] = r
}

// Remove deletes r from the view. It reports whether r was present.
func (v *ImportanceView) Remove(r *Record) bool {
	i := v.position(r)
	if i >= len(v.records) || v.records[i].ID != r.ID {
		return false
	}
	copy(v.records[i:], v.records[i+1:])
	v.records[len(v.records)-1] = nil
	v.records = v.records[:len(v.records)-1]
	return true
}

// AtLeast returns the records with importance >= threshold, most important first.
func (v *ImportanceView) AtLeast(threshold float64) []*Record {
	n := sort.Search(len(v.records), func(i int) bool {
		return v.records[i].Importance < threshold
	})
	out := make([]*Record, n)
	copy(out, v.records[:n])
	return out
}

// Len returns the number of records in the view.
func (v *ImportanceView) Len() int {
	return len(v.records)
}

// Reset empties the view.
func (v *ImportanceView) Reset() {
	v.records = nil
}
