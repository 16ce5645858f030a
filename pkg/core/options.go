package core

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// DefaultRetrieveLimit is the number of memories Retrieve returns when no limit is set.
const DefaultRetrieveLimit = 10

// EngineOption is a function type for configuring an Engine at construction.
type EngineOption func(*EngineOptions)

// EngineOptions contains construction options for an Engine.
type EngineOptions struct {
	// Logger receives structured engine events. Default: slog.Default().
	Logger *slog.Logger

	// Clock returns the current time. Default: time.Now.
	Clock func() time.Time

	// MeterProvider creates the engine's metric instruments.
	// Default: the global OpenTelemetry meter provider.
	MeterProvider metric.MeterProvider

	// NodeID is the snowflake node number used for id generation (0-1023). Default: 1.
	NodeID int64
}

// WithLogger sets the structured logger.
//
// Example:
//
//	engine, _ := core.NewEngine(cfg, core.WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil))))
func WithLogger(logger *slog.Logger) EngineOption {
	return func(opts *EngineOptions) {
		opts.Logger = logger
	}
}

// WithClock sets the time source used for creation timestamps and relevance scoring.
//
// Example:
//
//	engine, _ := core.NewEngine(cfg, core.WithClock(func() time.Time { return fixed }))
func WithClock(clock func() time.Time) EngineOption {
	return func(opts *EngineOptions) {
		opts.Clock = clock
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider.
func WithMeterProvider(provider metric.MeterProvider) EngineOption {
	return func(opts *EngineOptions) {
		opts.MeterProvider = provider
	}
}

// WithNodeID sets the snowflake node number used for id generation.
func WithNodeID(node int64) EngineOption {
	return func(opts *EngineOptions) {
		opts.NodeID = node
	}
}

// StoreOption is a function type for configuring Store operations.
type StoreOption func(*StoreOptions)

// StoreOptions contains configuration options for Store operations.
type StoreOptions struct {
	// Metadata contains auxiliary key/value data. It is copied at store time.
	Metadata map[string]any
}

// WithMetadata sets metadata for Store operations.
//
// Example:
//
//	id, _ := engine.Store(core.KindEpisodic, "met Alice",  0.4,
//	    core.WithMetadata(map[string]any{"source": "chat"}),
//	)
func WithMetadata(metadata map[string]any) StoreOption {
	return func(opts *StoreOptions) {
		opts.Metadata = metadata
	}
}

// RetrieveOption is a function type for configuring Retrieve operations.
type RetrieveOption func(*RetrieveOptions)

// RetrieveOptions contains the query of a Retrieve operation.
// All set filters are AND-combined.
type RetrieveOptions struct {
	// Kind restricts results to one memory kind. Empty means all kinds.
	Kind Kind

	// MinImportance excludes memories with lower importance.
	// Default: 0.0 (no minimum)
	MinImportance float64

	// TimeRange bounds CreatedAt inclusively. Nil means unbounded.
	TimeRange *TimeRange

	// SearchTerm is matched case-insensitively against the serialised content.
	// Empty means no text filter.
	SearchTerm string

	// Limit sets the maximum number of results to return.
	// Default: 10
	Limit int
}

// WithKind restricts Retrieve to one memory kind.
//
// Example:
//
//	memories := engine.Retrieve(core.WithKind(core.KindSemantic))
func WithKind(kind Kind) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.Kind = kind
	}
}

// WithMinImportance sets the minimum importance for Retrieve results.
//
// Example:
//
//	memories := engine.Retrieve(core.WithMinImportance(0.5))
func WithMinImportance(importance float64) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.MinImportance = importance
	}
}

// WithTimeRange restricts Retrieve to memories created within [start, end].
// A zero start or end leaves that side unbounded.
//
// Example:
//
//	memories := engine.Retrieve(core.WithTimeRange(time.Now().Add(-time.Hour), time.Time{}))
func WithTimeRange(start, end time.Time) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.TimeRange = &TimeRange{Start: start, End: end}
	}
}

// WithSearchTerm sets a case-insensitive substring filter on content.
//
// Example:
//
//	memories := engine.Retrieve(core.WithSearchTerm("alice"))
func WithSearchTerm(term string) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.SearchTerm = term
	}
}

// WithLimit sets the maximum number of results for Retrieve.
// Non-positive limits fall back to DefaultRetrieveLimit.
//
// Example:
//
//	memories := engine.Retrieve(core.WithLimit(20))
func WithLimit(limit int) RetrieveOption {
	return func(opts *RetrieveOptions) {
		opts.Limit = limit
	}
}

// applyEngineOptions applies Engine options to create EngineOptions.
func applyEngineOptions(opts []EngineOption) *EngineOptions {
	options := &EngineOptions{
		NodeID: 1,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return options
}

// applyStoreOptions applies Store options to create StoreOptions.
func applyStoreOptions(opts []StoreOption) *StoreOptions {
	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyRetrieveOptions applies Retrieve options to create RetrieveOptions.
func applyRetrieveOptions(opts []RetrieveOption) *RetrieveOptions {
	options := &RetrieveOptions{
		Limit:         DefaultRetrieveLimit,
		MinImportance: 0.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit <= 0 {
		options.Limit = DefaultRetrieveLimit
	}
	return options
}
