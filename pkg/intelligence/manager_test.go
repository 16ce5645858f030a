package intelligence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oceanbase/tiermem-go/pkg/intelligence"
)

func TestManagerRank(t *testing.T) {
	manager := intelligence.NewManager(nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	memories := []intelligence.Memory{
		{ID: 1, Importance: 0.9, CreatedAt: now},
		{ID: 2, Importance: 0.4, CreatedAt: now},
		{ID: 3, Importance: 0.7, CreatedAt: now},
		{ID: 4, Importance: 0.4, CreatedAt: now},
	}

	ranked := manager.Rank(memories, now)
	ids := make([]int64, len(ranked))
	for i, s := range ranked {
		ids[i] = s.Memory.ID
	}
	assert.Equal(t, []int64{1, 3, 2, 4}, ids, "descending with ties in input order")
}

func TestShortTermVictims(t *testing.T) {
	manager := intelligence.NewManager(nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	memories := make([]intelligence.Memory, 0, 10)
	for i := 0; i < 10; i++ {
		memories = append(memories, intelligence.Memory{
			ID:         int64(i + 1),
			Importance: 0.3,
			CreatedAt:  now.Add(-time.Duration(10-i) * time.Hour),
		})
	}

	// Oldest two are least recent, hence least relevant.
	victims := manager.ShortTermVictims(memories, now)
	assert.Equal(t, []int64{1, 2}, victims)

	assert.Empty(t, manager.ShortTermVictims(nil, now))
	assert.Len(t, manager.ShortTermVictims(memories[:1], now), 1)
}

func TestLongTermVictimsProtection(t *testing.T) {
	manager := intelligence.NewManager(nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	memories := []intelligence.Memory{
		// Ranked last: very old, but protected.
		{ID: 1, Importance: 0.9, CreatedAt: now.Add(-10000 * time.Hour)},
		{ID: 2, Importance: 0.95, CreatedAt: now},
		{ID: 3, Importance: 0.95, CreatedAt: now},
	}

	assert.Empty(t, manager.LongTermVictims(memories, now))

	memories = append(memories,
		intelligence.Memory{ID: 4, Importance: 0.1, CreatedAt: now.Add(-20000 * time.Hour)},
	)
	// ceil(10% of 4) = 1: only the least relevant record is considered.
	assert.Equal(t, []int64{4}, manager.LongTermVictims(memories, now))
}

func TestLongTermVictimsPartial(t *testing.T) {
	manager := intelligence.NewManager(nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var memories []intelligence.Memory
	for i := 0; i < 20; i++ {
		importance := 0.95
		if i == 0 {
			importance = 0.1
		}
		if i == 1 {
			importance = 0.6
		}
		memories = append(memories, intelligence.Memory{
			ID:         int64(i + 1),
			Importance: importance,
			CreatedAt:  now,
		})
	}

	// Lowest two by relevance are ids 1 and 2; id 2 is protected.
	assert.Equal(t, []int64{1}, manager.LongTermVictims(memories, now))
}

func TestPromotable(t *testing.T) {
	manager := intelligence.NewManager(nil)

	memories := []intelligence.Memory{
		{ID: 1, RetrievalCount: 3, Importance: 0.2},
		{ID: 2, RetrievalCount: 1, Importance: 0.2},
		{ID: 3, RetrievalCount: 0, Importance: 0.65},
	}

	assert.Equal(t, []int64{1, 3}, manager.Promotable(memories))
	assert.Nil(t, manager.Promotable(nil))
}
