package replay

import (
	"fmt"
	"sync"
	"time"

	"github.com/oceanbase/tiermem-go/pkg/core"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index int       `json:"index"`
	Op    string    `json:"op"`
	Now   time.Time `json:"now"`

	// ID is set by successful store steps.
	ID int64 `json:"id,omitempty"`

	// Error is set by failed store steps.
	Error string `json:"error,omitempty"`

	Memories      []*core.Memory            `json:"memories,omitempty"`
	Stats         *core.Stats               `json:"stats,omitempty"`
	Consolidation *core.ConsolidationResult `json:"consolidation,omitempty"`
}

// Run executes a script against a fresh engine and returns one result per step.
//
// The engine clock is driven by the script; a WithClock option in opts is
// overridden. Store failures are reported in StepResult.Error and do not stop
// the run. Run fails when the engine cannot be created or a step has an unknown op.
func Run(script *Script, opts ...core.EngineOption) ([]StepResult, error) {
	clock := NewClock(script.Start)
	opts = append(opts, core.WithClock(clock.Now))

	engine, err := core.NewEngine(&script.Config, opts...)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(script.Steps))
	for i, step := range script.Steps {
		result := StepResult{Index: i, Op: step.Op}

		switch step.Op {
		case OpStore:
			id, err := engine.Store(core.Kind(step.Kind), step.Content, step.Importance,
				core.WithMetadata(step.Metadata))
			if err != nil {
				result.Error = err.Error()
			} else {
				result.ID = id
			}
		case OpRetrieve:
			result.Memories = engine.Retrieve(step.Query.options()...)
		case OpConsolidate:
			result.Consolidation = engine.Consolidate()
		case OpClear:
			engine.Clear()
		case OpStats:
			result.Stats = engine.Stats()
		case OpAdvance:
			clock.Advance(step.Duration)
		default:
			return results, fmt.Errorf("step %d: %w: %q", i, ErrUnknownOp, step.Op)
		}

		result.Now = clock.Now()
		results = append(results, result)
	}
	return results, nil
}
