package factory

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/config"
	storepkg "github.com/sheikh-riyadh/due-sample-server/internal/store"
	storemongo "github.com/sheikh-riyadh/due-sample-server/internal/store/mongo"
	"github.com/sheikh-riyadh/due-sample-server/internal/store/sqlstore"
)

// NewStore returns the store.Store selected by cfg.DBDriver with its schema
// and unique indexes in place. Connecting is retried with exponential backoff
// for up to cfg.BootstrapTimeoutSeconds.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	if bootstrapTimeout <= 0 {
		bootstrapTimeout = 30 * time.Second
	}

	var st storepkg.Store
	connect := func() error {
		s, err := open(ctx, cfg)
		if err != nil {
			return err
		}
		st = s
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 250 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = bootstrapTimeout
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("driver", cfg.DBDriver).Dur("retry_in", wait).Msg("store connect failed")
	}
	if err := backoff.RetryNotify(connect, backoff.WithContext(exp, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect %s store: %w", cfg.DBDriver, err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()
	if err := st.Migrate(migrateCtx); err != nil {
		_ = st.Close(context.Background())
		return nil, fmt.Errorf("migrate %s store: %w", cfg.DBDriver, err)
	}
	log.Debug().Str("driver", cfg.DBDriver).Msg("store ready")
	return st, nil
}

func open(ctx context.Context, cfg *config.Config) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := storemongo.Open(ctx, cfg.MongoURI, cfg.MongoAppName)
		if err != nil {
			return nil, err
		}
		return storemongo.New(client, cfg.MongoDatabase), nil
	case config.DriverSQLite:
		db, err := sqlstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db, sqlstore.SQLite), nil
	case config.DriverPostgres:
		db, err := sqlstore.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db, sqlstore.Postgres), nil
	default:
		return nil, backoff.Permanent(fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver))
	}
}
