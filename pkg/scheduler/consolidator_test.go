package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/oceanbase/tiermem-go/pkg/core"
	"github.com/oceanbase/tiermem-go/pkg/scheduler"
)

type countingTarget struct {
	calls atomic.Int64
}

func (c *countingTarget) Consolidate() *core.ConsolidationResult {
	c.calls.Add(1)
	return &core.ConsolidationResult{Promoted: 1}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsInvalidInterval(t *testing.T) {
	_, err := scheduler.New(&countingTarget{}, 0)
	assert.ErrorIs(t, err, scheduler.ErrInvalidInterval)

	_, err = scheduler.New(&countingTarget{}, -time.Second)
	assert.ErrorIs(t, err, scheduler.ErrInvalidInterval)
}

func TestConsolidatorRunsOnInterval(t *testing.T) {
	target := &countingTarget{}
	c, err := scheduler.New(target, 5*time.Millisecond, scheduler.WithLogger(discardLogger()))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Running())

	assert.Eventually(t, func() bool {
		return target.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	c.Stop()
	assert.False(t, c.Running())

	calls := target.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, target.calls.Load(), "no passes after Stop")
}

func TestConsolidatorRunOnStart(t *testing.T) {
	target := &countingTarget{}
	c, err := scheduler.New(target, time.Hour,
		scheduler.WithLogger(discardLogger()),
		scheduler.WithRunOnStart(true),
	)
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.Equal(t, int64(1), target.calls.Load())
}

func TestConsolidatorStartTwice(t *testing.T) {
	c, err := scheduler.New(&countingTarget{}, time.Hour, scheduler.WithLogger(discardLogger()))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), scheduler.ErrAlreadyRunning)

	c.Stop()
	c.Stop()

	// A stopped consolidator can be started again.
	require.NoError(t, c.Start(context.Background()))
	c.Stop()
}

func TestConsolidatorStopsOnContextDone(t *testing.T) {
	target := &countingTarget{}
	c, err := scheduler.New(target, 5*time.Millisecond, scheduler.WithLogger(discardLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))

	assert.Eventually(t, func() bool {
		return target.calls.Load() >= 1
	}, time.Second, time.Millisecond)
	cancel()

	// Stop returns once the loop has exited.
	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}

func TestConsolidatorRestartsAfterContextDone(t *testing.T) {
	target := &countingTarget{}
	c, err := scheduler.New(target, 5*time.Millisecond, scheduler.WithLogger(discardLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return !c.Running()
	}, time.Second, time.Millisecond)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Running())

	calls := target.calls.Load()
	assert.Eventually(t, func() bool {
		return target.calls.Load() > calls
	}, time.Second, time.Millisecond)

	c.Stop()
	c.Stop()
	assert.False(t, c.Running())
}

func TestConsolidatorResultHandler(t *testing.T) {
	var promoted atomic.Int64
	c, err := scheduler.New(&countingTarget{}, time.Hour,
		scheduler.WithLogger(discardLogger()),
		scheduler.WithResultHandler(func(r *core.ConsolidationResult) {
			promoted.Add(int64(r.Promoted))
		}),
	)
	require.NoError(t, err)

	result := c.RunOnce()
	assert.Equal(t, 1, result.Promoted)
	assert.Equal(t, int64(1), promoted.Load())
}

func TestConsolidatorDrivesEngine(t *testing.T) {
	engine, err := core.NewEngine(&core.Config{
		ShortTermCapacity: 10,
		LongTermCapacity:  10,
		SupportedKinds:    []core.Kind{core.KindEpisodic},
		CanForget:         true,
	}, core.WithLogger(discardLogger()), core.WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)

	id, err := engine.Store(core.KindEpisodic, "promote me", 0.65)
	require.NoError(t, err)

	c, err := scheduler.New(engine, 5*time.Millisecond, scheduler.WithLogger(discardLogger()))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.Eventually(t, func() bool {
		m, err := engine.Get(id)
		return err == nil && m.Tier == core.TierLongTerm
	}, time.Second, time.Millisecond)
}
