package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-riyadh/due-sample-server/internal/logger"
)

func switchable(up *atomic.Bool) func(context.Context) error {
	return func(context.Context) error {
		if up.Load() {
			return nil
		}
		return errors.New("no reachable servers")
	}
}

func TestChecker_UncheckedIsUnhealthy(t *testing.T) {
	c := NewChecker("store", "mongo", func(context.Context) error { return nil }, 0, logger.Nop())
	s := c.Status()
	assert.False(t, s.Healthy)
	assert.Equal(t, "store", s.Name)
	assert.Equal(t, "mongo", s.Driver)
	assert.True(t, s.CheckedAt.IsZero())
}

func TestChecker_CachesLastOutcome(t *testing.T) {
	var up atomic.Bool
	c := NewChecker("store", "sqlite", switchable(&up), time.Second, logger.Nop())

	s := c.Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Equal(t, "no reachable servers", s.Error)
	assert.Equal(t, s, c.Status())

	up.Store(true)
	s = c.Check(context.Background())
	assert.True(t, s.Healthy)
	assert.Empty(t, s.Error)
	assert.False(t, s.CheckedAt.IsZero())
}

func TestChecker_TimeoutBoundsPing(t *testing.T) {
	c := NewChecker("store", "postgres", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond, logger.Nop())

	start := time.Now()
	s := c.Check(context.Background())
	assert.False(t, s.Healthy)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMonitor_AggregatesComponents(t *testing.T) {
	var up atomic.Bool
	up.Store(true)
	a := NewChecker("store", "sqlite", func(context.Context) error { return nil }, 0, logger.Nop())
	b := NewChecker("cache", "memory", switchable(&up), 0, logger.Nop())
	m := NewMonitor(a, b)

	assert.False(t, m.Healthy(), "unchecked components are down")

	r := m.CheckAll(context.Background())
	assert.Equal(t, StateHealthy, r.Status)
	require.Len(t, r.Components, 2)
	assert.Equal(t, "store", r.Components[0].Name)
	assert.Equal(t, "cache", r.Components[1].Name)

	up.Store(false)
	m.CheckAll(context.Background())
	assert.False(t, m.Healthy())
	s, ok := m.Component("cache")
	require.True(t, ok)
	assert.False(t, s.Healthy)
	s, ok = m.Component("store")
	require.True(t, ok)
	assert.True(t, s.Healthy)

	_, ok = m.Component("queue")
	assert.False(t, ok)
}

func TestMonitor_EmptyIsUnhealthy(t *testing.T) {
	assert.Equal(t, StateUnhealthy, NewMonitor().Report().Status)
}

func TestMonitor_StartTracksTransitions(t *testing.T) {
	var up atomic.Bool
	m := NewMonitor(NewChecker("store", "mongo", switchable(&up), 0, logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx, 10*time.Millisecond)

	up.Store(true)
	assert.Eventually(t, m.Healthy, time.Second, 5*time.Millisecond)
	up.Store(false)
	assert.Eventually(t, func() bool { return !m.Healthy() }, time.Second, 5*time.Millisecond)
}
