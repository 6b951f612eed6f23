// Package health tracks the reachability of the service's backends. Each
// backend has a Checker caching its last check; a Monitor aggregates them.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is implemented by components that can ping their backend directly.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// Status is the last check outcome of one component. A component that was
// never checked is unhealthy.
type Status struct {
	Name      string    `json:"name"`
	Driver    string    `json:"driver,omitempty"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Checker checks one component and caches the outcome.
type Checker struct {
	name    string
	driver  string
	ping    func(ctx context.Context) error
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	status  Status
	checked bool
}

// NewChecker creates a checker for component name backed by driver. timeout
// bounds every check and defaults to two seconds.
func NewChecker(name, driver string, ping func(ctx context.Context) error, timeout time.Duration, log zerolog.Logger) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{
		name:    name,
		driver:  driver,
		ping:    ping,
		timeout: timeout,
		log:     log.With().Str("component", name).Str("driver", driver).Logger(),
		now:     time.Now,
		status:  Status{Name: name, Driver: driver},
	}
}

// Name returns the component name.
func (c *Checker) Name() string { return c.name }

// Status returns the cached outcome without checking.
func (c *Checker) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Check pings now, caches and returns the outcome. Only transitions are
// logged at info/error level.
func (c *Checker) Check(ctx context.Context) Status {
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.ping(pingCtx)
	cancel()

	next := Status{Name: c.name, Driver: c.driver, Healthy: err == nil, CheckedAt: c.now().UTC()}
	if err != nil {
		next.Error = err.Error()
	}

	c.mu.Lock()
	changed := !c.checked || c.status.Healthy != next.Healthy
	c.status, c.checked = next, true
	c.mu.Unlock()

	switch {
	case changed && err == nil:
		c.log.Info().Msg("component health: UP")
	case changed:
		c.log.Error().Stack().Err(err).Msg("component health: DOWN")
	case err != nil:
		c.log.Debug().Err(err).Msg("component still unhealthy")
	}
	return next
}

// Run checks immediately and then on every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
