// Package scheduler drives periodic consolidation of a memory engine.
//
// The engine itself owns no goroutines; a host that wants consolidation on a
// cadence starts a Consolidator next to it.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oceanbase/tiermem-go/pkg/core"
)

var (
	// ErrAlreadyRunning is returned by Start when the consolidator is running.
	ErrAlreadyRunning = errors.New("scheduler: already running")

	// ErrInvalidInterval is returned by New for a non-positive interval.
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
)

// Target is the operation a Consolidator runs. *core.Engine implements it.
type Target interface {
	Consolidate() *core.ConsolidationResult
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consolidator) {
		c.logger = logger
	}
}

// WithRunOnStart runs one pass immediately when Start is called.
func WithRunOnStart(enabled bool) Option {
	return func(c *Consolidator) {
		c.runOnStart = enabled
	}
}

// WithResultHandler registers a callback invoked after every pass.
// The handler runs on the consolidator goroutine.
func WithResultHandler(handler func(*core.ConsolidationResult)) Option {
	return func(c *Consolidator) {
		c.onResult = handler
	}
}

// Consolidator calls Target.Consolidate on a fixed interval.
//
// Example usage:
//
//	c, _ := scheduler.New(engine, 10*time.Minute, scheduler.WithRunOnStart(true))
//	_ = c.Start(ctx)
//	defer c.Stop()
type Consolidator struct {
	target     Target
	interval   time.Duration
	logger     *slog.Logger
	runOnStart bool
	onResult   func(*core.ConsolidationResult)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a consolidator for target running every interval.
func New(target Target, interval time.Duration, opts ...Option) (*Consolidator, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	c := &Consolidator{
		target:   target,
		interval: interval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Start launches the background loop. It returns immediately.
// The loop ends when ctx is done or Stop is called.
func (c *Consolidator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrAlreadyRunning
	}
	c.running = true
	c.stopCh = make(chan struct{})

	if c.runOnStart {
		c.RunOnce()
	}

	c.wg.Add(1)
	go c.loop(ctx, c.stopCh)

	c.logger.Info("consolidation scheduler started", "interval", c.interval)
	return nil
}

func (c *Consolidator) loop(ctx context.Context, stopCh chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RunOnce()
		case <-stopCh:
			return
		case <-ctx.Done():
			c.mu.Lock()
			if c.running && c.stopCh == stopCh {
				c.running = false
			}
			c.mu.Unlock()
			c.logger.Info("consolidation scheduler context done", "error", ctx.Err())
			return
		}
	}
}

// RunOnce runs a single consolidation pass synchronously.
func (c *Consolidator) RunOnce() *core.ConsolidationResult {
	result := c.target.Consolidate()
	if c.onResult != nil {
		c.onResult(result)
	}
	return result
}

// Stop ends the background loop and waits for an in-flight pass to finish.
// Calling Stop on a stopped consolidator, or after its context is done,
// only waits for the loop to exit.
func (c *Consolidator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		c.wg.Wait()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("consolidation scheduler stopped")
}

// Running reports whether the background loop is active. It is false once
// Stop is called or the Start context is done.
func (c *Consolidator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
