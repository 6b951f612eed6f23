package health

import (
	"context"
	"time"
)

// Service-level states reported by Monitor.
const (
	StateHealthy   = "healthy"
	StateUnhealthy = "unhealthy"
)

// Report is the aggregated view served on /health.
type Report struct {
	Status     string   `json:"status"`
	Components []Status `json:"components"`
}

// Monitor aggregates component checkers. The service is healthy only when
// every component's last check succeeded.
type Monitor struct {
	checkers []*Checker
}

func NewMonitor(checkers ...*Checker) *Monitor {
	return &Monitor{checkers: checkers}
}

// Start runs every checker in its own goroutine until ctx is done.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	for _, c := range m.checkers {
		go c.Run(ctx, interval)
	}
}

// CheckAll checks every component once, synchronously.
func (m *Monitor) CheckAll(ctx context.Context) Report {
	for _, c := range m.checkers {
		c.Check(ctx)
	}
	return m.Report()
}

// Healthy reports whether every component is up.
func (m *Monitor) Healthy() bool {
	return m.Report().Status == StateHealthy
}

// Report returns the cached state of every component.
func (m *Monitor) Report() Report {
	r := Report{Status: StateUnhealthy, Components: make([]Status, 0, len(m.checkers))}
	if len(m.checkers) > 0 {
		r.Status = StateHealthy
	}
	for _, c := range m.checkers {
		s := c.Status()
		if !s.Healthy {
			r.Status = StateUnhealthy
		}
		r.Components = append(r.Components, s)
	}
	return r
}

// Component returns the cached state of the named component.
func (m *Monitor) Component(name string) (Status, bool) {
	for _, c := range m.checkers {
		if c.Name() == name {
			return c.Status(), true
		}
	}
	return Status{}, false
}
