package core

import (
	"maps"

	"github.com/oceanbase/tiermem-go/pkg/intelligence"
	"github.com/oceanbase/tiermem-go/pkg/storage"
)

// toStorageRecord builds a new arena record from a Store request.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func toStorageRecord(m *Memory) *storage.Record {
	return &storage.Record{
		ID:             m.ID,
		Kind:           string(m.Kind),
		Content:        m.Content,
		Importance:     m.Importance,
		CreatedAt:      m.CreatedAt,
		RetrievalCount: m.RetrievalCount,
		Metadata:       copyMetadata(m.Metadata),
		Tier:           m.Tier,
	}
}

// fromStorageRecord converts a storage.Record to a core.Memory snapshot.
//
// The snapshot owns its metadata map, so callers cannot reach engine state through it.
func fromStorageRecord(r *storage.Record) *Memory {
	return &Memory{
		ID:             r.ID,
		Kind:           Kind(r.Kind),
		Content:        r.Content,
		Importance:     r.Importance,
		CreatedAt:      r.CreatedAt,
		RetrievalCount: r.RetrievalCount,
		Metadata:       copyMetadata(r.Metadata),
		Tier:           r.Tier,
	}
}

// toIntelligenceMemory converts a storage.Record to the scoring view used by
// the intelligence package.
func toIntelligenceMemory(r *storage.Record) intelligence.Memory {
	return intelligence.Memory{
		ID:             r.ID,
		Importance:     r.Importance,
		CreatedAt:      r.CreatedAt,
		RetrievalCount: r.RetrievalCount,
	}
}

// toIntelligenceMemories converts a slice of storage.Record for batch scoring.
func toIntelligenceMemories(records []*storage.Record) []intelligence.Memory {
	result := make([]intelligence.Memory, len(records))
	for i, r := range records {
		result[i] = toIntelligenceMemory(r)
	}
	return result
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
