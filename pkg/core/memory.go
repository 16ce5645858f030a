package core

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oceanbase/tiermem-go/pkg/intelligence"
	"github.com/oceanbase/tiermem-go/pkg/storage"
)

// Engine is the tiered memory engine of a single agent.
//
// It keeps memories in two bounded tiers:
//   - Short-term: new, low-importance memories; evicts to make room
//   - Long-term: important or promoted memories; evicts only when CanForget
//
// Every entry point takes the same mutex, so eviction and promotion are
// observed as one transaction across both tiers and both indices.
//
// Example usage:
//
//	engine, _ := core.NewEngine(core.DefaultConfig())
//
//	id, _ := engine.Store(core.KindEpisodic, "user asked about refunds", 0.4)
//	memories := engine.Retrieve(core.WithSearchTerm("refund"))
//	result := engine.Consolidate()
type Engine struct {
	// config is the engine's private copy of the capability configuration.
	config *Config

	// arena holds every record, both tiers and both indices.
	arena *storage.Arena

	// manager ranks records and selects eviction victims.
	manager *intelligence.Manager

	// snowflakeNode generates unique IDs for memories.
	snowflakeNode *snowflake.Node

	logger  *slog.Logger
	metrics *engineMetrics
	now     func() time.Time

	// mu protects both tiers and both indices.
	mu sync.Mutex
}

// NewEngine creates a new memory engine.
//
// The configuration is validated and copied; later changes to cfg do not
// affect the engine.
//
// Parameters:
//   - cfg: Capability configuration
//   - opts: Optional logger, clock, meter provider and snowflake node id
//
// Returns a new Engine instance, or an error if cfg is invalid.
//
// Example:
//
//	engine, err := core.NewEngine(&core.Config{
//	    ShortTermCapacity: 50,
//	    LongTermCapacity:  500,
//	    SupportedKinds:    []core.Kind{core.KindEpisodic},
//	    CanForget:         false,
//	}, core.WithLogger(logger))
func NewEngine(cfg *Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, NewMemoryError("NewEngine", fmt.Errorf("%w: nil config", ErrInvalidConfig))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := applyEngineOptions(opts)

	node, err := snowflake.NewNode(options.NodeID)
	if err != nil {
		return nil, NewMemoryError("NewEngine", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	metrics, err := newEngineMetrics(options.MeterProvider)
	if err != nil {
		return nil, NewMemoryError("NewEngine", err)
	}

	config := cfg.Clone()
	kinds := make([]string, len(config.SupportedKinds))
	for i, k := range config.SupportedKinds {
		kinds[i] = string(k)
	}

	return &Engine{
		config: config,
		arena: storage.NewArena(kinds, map[storage.Tier]int{
			storage.TierShortTerm: config.ShortTermCapacity,
			storage.TierLongTerm:  config.LongTermCapacity,
		}),
		manager:       intelligence.NewManager(nil),
		snowflakeNode: node,
		logger:        options.Logger,
		metrics:       metrics,
		now:           options.Clock,
	}, nil
}

// Config returns a copy of the engine's capability configuration.
func (e *Engine) Config() Config {
	return *e.config.Clone()
}

// Store adds a new memory and returns its id.
//
// Importance is clamped to [0, 1], so out-of-range values are not an error;
// NaN is rejected with ErrInvalidInput. Memories with importance >= 0.7 go
// to long-term storage, all others to short-term. A full short-term tier evicts
// its least relevant memories first; a full long-term tier evicts only when
// CanForget is set.
//
// Parameters:
//   - kind: Memory kind; must be one of Config.SupportedKinds
//   - content: Opaque payload
//   - importance: Importance score, clamped to [0, 1]
//   - opts: Optional metadata
//
// Returns the new id, or an error:
//   - ErrUnsupportedKind: kind is not supported
//   - ErrInvalidInput: importance is NaN
//   - ErrCapacityExceeded: long-term is full and nothing could be evicted
//
// Example:
//
//	id, err := engine.Store(core.KindSemantic, "Paris is the capital of France", 0.8,
//	    core.WithMetadata(map[string]any{"source": "wiki"}),
//	)
//	if errors.Is(err, core.ErrCapacityExceeded) {
//	    // long-term is a hard ceiling
//	}
func (e *Engine) Store(kind Kind, content any, importance float64, opts ...StoreOption) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.config.Supports(kind) {
		return 0, NewMemoryError("Store", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind))
	}
	if math.IsNaN(importance) {
		return 0, NewMemoryError("Store", fmt.Errorf("%w: importance is NaN", ErrInvalidInput))
	}
	storeOpts := applyStoreOptions(opts)

	importance = intelligence.ClampImportance(importance)
	tier := TierShortTerm
	if intelligence.PlaceInLongTerm(importance) {
		tier = TierLongTerm
	}

	now := e.now()
	if err := e.makeRoom(tier, now); err != nil {
		return 0, NewMemoryError("Store", err)
	}

	memory := &Memory{
		ID:         e.snowflakeNode.Generate().Int64(),
		Kind:       kind,
		Content:    content,
		Importance: importance,
		CreatedAt:  now,
		Metadata:   storeOpts.Metadata,
		Tier:       tier,
	}
	if err := e.arena.Insert(toStorageRecord(memory)); err != nil {
		return 0, NewMemoryError("Store", err)
	}

	e.metrics.stored(tier)
	e.logger.Debug("memory stored",
		"id", memory.ID,
		"kind", kind,
		"tier", tier,
		"importance", importance)

	return memory.ID, nil
}

// makeRoom frees a slot in a full tier before an insert.
func (e *Engine) makeRoom(tier Tier, now time.Time) error {
	if !e.arena.Full(tier) {
		return nil
	}

	if tier == TierShortTerm {
		e.evictShortTerm(now)
		return nil
	}

	if e.config.CanForget {
		e.evictLongTerm(now)
		if !e.arena.Full(tier) {
			return nil
		}
	}

	e.metrics.rejected(tier)
	e.logger.Warn("long-term capacity exceeded",
		"tier", tier,
		"count", e.arena.Len(tier),
		"can_forget", e.config.CanForget)
	return fmt.Errorf("%w: %s at %d/%d", ErrCapacityExceeded, tier, e.arena.Len(tier), e.arena.Capacity(tier))
}

// Retrieve returns the memories matching the query, most relevant first.
//
// With a kind the candidates come from the type index; without one, every
// stored memory is a candidate. Filters are AND-combined. Results are sorted
// by relevance (stable) and truncated to the limit, and each returned memory
// has its retrieval count incremented. The returned snapshots reflect the
// incremented count.
//
// An unsupported kind yields an empty result, not an error.
//
// Example:
//
//	memories := engine.Retrieve(
//	    core.WithKind(core.KindEpisodic),
//	    core.WithMinImportance(0.3),
//	    core.WithSearchTerm("alice"),
//	    core.WithLimit(5),
//	)
func (e *Engine) Retrieve(opts ...RetrieveOption) []*Memory {
	e.mu.Lock()
	defer e.mu.Unlock()

	query := applyRetrieveOptions(opts)

	var candidates []*storage.Record
	if query.Kind != "" {
		if !e.arena.HasKind(string(query.Kind)) {
			return []*Memory{}
		}
		candidates = e.arena.ByKind(string(query.Kind))
	} else {
		candidates = e.arena.ByImportance(query.MinImportance)
	}

	term := strings.ToLower(query.SearchTerm)
	filtered := make([]*storage.Record, 0, len(candidates))
	for _, r := range candidates {
		if r.Importance < query.MinImportance {
			continue
		}
		if query.TimeRange != nil && !query.TimeRange.Contains(r.CreatedAt) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(serializeContent(r.Content)), term) {
			continue
		}
		filtered = append(filtered, r)
	}

	ranked := e.manager.Rank(toIntelligenceMemories(filtered), e.now())
	if len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}

	results := make([]*Memory, 0, len(ranked))
	for _, s := range ranked {
		if err := e.arena.IncrementRetrieval(s.Memory.ID); err != nil {
			continue
		}
		r, _ := e.arena.Get(s.Memory.ID)
		results = append(results, fromStorageRecord(r))
	}

	e.metrics.retrieved(len(results))
	return results
}

// serializeContent renders content for substring matching. Strings are used
// as is; other values are JSON-encoded, falling back to fmt formatting.
func serializeContent(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprint(content)
	}
	return string(data)
}

// Get returns a snapshot of the memory with the given id without counting it
// as a retrieval.
//
// Returns ErrNotFound if no memory has that id.
func (e *Engine) Get(id int64) (*Memory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.arena.Get(id)
	if !ok {
		return nil, NewMemoryError("Get", fmt.Errorf("%w: %d", ErrNotFound, id))
	}
	return fromStorageRecord(r), nil
}

// Clear removes every memory from both tiers and all indices.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := e.arena.Total()
	e.arena.Clear()
	e.logger.Info("memory cleared", "count", count)
}

// Stats returns the current occupancy of the engine.
//
// Example:
//
//	stats := engine.Stats()
//	fmt.Printf("short-term %d (%.0f%%), long-term %d (%.0f%%)\n",
//	    stats.ShortTermCount, stats.CapacityUsage.ShortTerm*100,
//	    stats.LongTermCount, stats.CapacityUsage.LongTerm*100)
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	shortTerm := e.arena.Len(TierShortTerm)
	longTerm := e.arena.Len(TierLongTerm)
	return &Stats{
		ShortTermCount: shortTerm,
		LongTermCount:  longTerm,
		TotalCount:     shortTerm + longTerm,
		CapacityUsage: CapacityUsage{
			ShortTerm: float64(shortTerm) / float64(e.arena.Capacity(TierShortTerm)),
			LongTerm:  float64(longTerm) / float64(e.arena.Capacity(TierLongTerm)),
		},
	}
}

// evictShortTerm removes the least relevant 20% of short-term memories.
// It returns the number of memories removed.
func (e *Engine) evictShortTerm(now time.Time) int {
	records := e.arena.Records(TierShortTerm)
	victims := e.manager.ShortTermVictims(toIntelligenceMemories(records), now)
	return e.evict(TierShortTerm, victims)
}

// evictLongTerm removes unprotected memories among the least relevant 10% of
// long-term storage. It returns the number of memories removed, possibly zero.
func (e *Engine) evictLongTerm(now time.Time) int {
	records := e.arena.Records(TierLongTerm)
	victims := e.manager.LongTermVictims(toIntelligenceMemories(records), now)
	return e.evict(TierLongTerm, victims)
}

func (e *Engine) evict(tier Tier, ids []int64) int {
	evicted := 0
	for _, id := range ids {
		if _, err := e.arena.Remove(id); err != nil {
			e.logger.Error("eviction failed", "tier", tier, "id", id, "error", err)
			continue
		}
		evicted++
	}
	if evicted > 0 {
		e.metrics.evicted(tier, evicted)
		e.logger.Info("memories evicted", "tier", tier, "count", evicted)
	}
	return evicted
}
