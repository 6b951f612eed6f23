package sqlstore

import (
	"context"
	"os"
	"testing"

	"github.com/sheikh-riyadh/due-sample-server/internal/store"
	"github.com/sheikh-riyadh/due-sample-server/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("SAMPLE_SERVICE_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SAMPLE_SERVICE_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	s := New(db, Postgres)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
