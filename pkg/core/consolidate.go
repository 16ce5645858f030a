package core

import (
	"github.com/oceanbase/tiermem-go/pkg/intelligence"
	"github.com/oceanbase/tiermem-go/pkg/storage"
)

// Consolidate runs one maintenance pass.
//
// The pass:
//  1. Promotes every short-term memory with RetrievalCount >= 3 or
//     Importance >= 0.6 to long-term, in short-term enumeration order
//  2. When long-term is full, makes room with the long-term eviction policy
//     if CanForget is set; otherwise leaves the memory in short-term
//  3. If CanForget is set, runs each tier's eviction policy when its
//     occupancy ratio is above 0.9
//
// Consolidate never fails. Promotions that find no room are counted in
// ConsolidationResult.Skipped and retried on the next pass.
//
// Example:
//
//	result := engine.Consolidate()
//	log.Printf("promoted %d, skipped %d", result.Promoted, result.Skipped)
func (e *Engine) Consolidate() *ConsolidationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	result := &ConsolidationResult{}

	shortTerm := toIntelligenceMemories(e.arena.Records(TierShortTerm))
	for _, id := range e.manager.Promotable(shortTerm) {
		if e.arena.Full(TierLongTerm) {
			if e.config.CanForget {
				result.EvictedLongTerm += e.evictLongTerm(now)
			}
			if e.arena.Full(TierLongTerm) {
				result.Skipped++
				e.metrics.rejected(TierLongTerm)
				e.logger.Warn("promotion skipped, long-term full",
					"id", id,
					"count", e.arena.Len(TierLongTerm),
					"can_forget", e.config.CanForget)
				continue
			}
		}

		if err := e.arena.Move(id, TierLongTerm); err != nil {
			result.Skipped++
			e.logger.Error("promotion failed", "id", id, "error", err)
			continue
		}
		result.Promoted++
		e.metrics.promoted()
		e.logger.Debug("memory promoted", "id", id)
	}

	if e.config.CanForget {
		for _, tier := range storage.Tiers {
			if !intelligence.OverWatermark(e.arena.Len(tier), e.arena.Capacity(tier)) {
				continue
			}
			switch tier {
			case TierShortTerm:
				result.EvictedShortTerm += e.evictShortTerm(now)
			case TierLongTerm:
				result.EvictedLongTerm += e.evictLongTerm(now)
			}
		}
	}

	e.logger.Info("consolidation finished",
		"promoted", result.Promoted,
		"skipped", result.Skipped,
		"evicted_short_term", result.EvictedShortTerm,
		"evicted_long_term", result.EvictedLongTerm)

	return result
}
