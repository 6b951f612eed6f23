package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/health"
)

// HealthComponent names the store in health reports.
const HealthComponent = "store"

// NewHealthChecker returns the checker for st. Stores implementing
// health.Pinger are pinged; others answer a user lookup that cannot match.
func NewHealthChecker(st Store, driver string, log zerolog.Logger, pingTimeout time.Duration) *health.Checker {
	return health.NewChecker(HealthComponent, driver, pingFor(st), pingTimeout, log)
}

func pingFor(st Store) func(ctx context.Context) error {
	if p, ok := st.(health.Pinger); ok {
		return p.HealthPing
	}
	return func(ctx context.Context) error {
		_, err := st.Users().GetByEmail(ctx, "__health_check__")
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
}
