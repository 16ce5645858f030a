// Package replay runs scripted operation sequences against a memory engine.
//
// Scripts are YAML documents holding an engine configuration, a start time
// for a manual clock, and a list of steps. They make eviction and
// consolidation behaviour reproducible from the command line.
package replay

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oceanbase/tiermem-go/pkg/core"
)

// Operations understood by Run.
const (
	OpStore       = "store"
	OpRetrieve    = "retrieve"
	OpConsolidate = "consolidate"
	OpClear       = "clear"
	OpStats       = "stats"
	OpAdvance     = "advance"
)

// ErrUnknownOp is returned for a step whose op is not recognised.
var ErrUnknownOp = errors.New("replay: unknown op")

// DefaultStart is the clock origin of scripts that set no start time.
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Script is a decoded replay script.
//
// Example:
//
//	config: {short_term_capacity: 5, long_term_capacity: 10, supported_kinds: [episodic], can_forget: true}
//	start: 2024-01-01T00:00:00Z
//	steps:
//	  - op: store
//	    kind: episodic
//	    content: checked the weather
//	    importance: 0.3
//	  - op: advance
//	    duration: 2h
//	  - op: retrieve
//	    query: {search: weather, limit: 5}
type Script struct {
	// Config is the engine configuration. Keys missing from the script keep
	// their core.DefaultConfig values.
	Config core.Config `yaml:"config"`

	// Start is the initial time of the manual clock.
	Start time.Time `yaml:"start"`

	Steps []Step `yaml:"steps"`
}

// Step is one scripted operation.
type Step struct {
	Op string `yaml:"op"`

	// store
	Kind       string         `yaml:"kind,omitempty"`
	Content    any            `yaml:"content,omitempty"`
	Importance float64        `yaml:"importance,omitempty"`
	Metadata   map[string]any `yaml:"metadata,omitempty"`

	// advance
	Duration time.Duration `yaml:"duration,omitempty"`

	// retrieve
	Query *Query `yaml:"query,omitempty"`
}

// Query is the retrieve filter of a step.
type Query struct {
	Kind          string    `yaml:"kind,omitempty"`
	MinImportance float64   `yaml:"min_importance,omitempty"`
	Search        string    `yaml:"search,omitempty"`
	Limit         int       `yaml:"limit,omitempty"`
	From          time.Time `yaml:"from,omitempty"`
	To            time.Time `yaml:"to,omitempty"`
}

// options converts the query to engine retrieve options.
func (q *Query) options() []core.RetrieveOption {
	if q == nil {
		return nil
	}
	var opts []core.RetrieveOption
	if q.Kind != "" {
		opts = append(opts, core.WithKind(core.Kind(q.Kind)))
	}
	if q.MinImportance != 0 {
		opts = append(opts, core.WithMinImportance(q.MinImportance))
	}
	if q.Search != "" {
		opts = append(opts, core.WithSearchTerm(q.Search))
	}
	if q.Limit != 0 {
		opts = append(opts, core.WithLimit(q.Limit))
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		opts = append(opts, core.WithTimeRange(q.From, q.To))
	}
	return opts
}

// Parse decodes a script from YAML.
func Parse(data []byte) (*Script, error) {
	script := &Script{Config: *core.DefaultConfig()}
	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if script.Start.IsZero() {
		script.Start = DefaultStart
	}
	for i, step := range script.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		script.Steps[i].Content = stringKeys(step.Content)
		for k, v := range step.Metadata {
			step.Metadata[k] = stringKeys(v)
		}
	}
	return script, nil
}

// stringKeys rewrites YAML maps with non-string keys as map[string]any so
// that decoded content can be JSON-encoded.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	}
	return v
}

// Load reads and decodes a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

func (s Step) validate() error {
	switch s.Op {
	case OpStore:
		if s.Kind == "" {
			return fmt.Errorf("store: kind is required")
		}
	case OpAdvance:
		if s.Duration < 0 {
			return fmt.Errorf("advance: negative duration %s", s.Duration)
		}
	case OpRetrieve, OpConsolidate, OpClear, OpStats:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	return nil
}
