package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sheikh-riyadh/due-sample-server/internal/store"
	"github.com/sheikh-riyadh/due-sample-server/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	s := New(db, SQLite)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore)
}

func TestSQLiteStore_FileAndMigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "samples.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := New(db, SQLite)
	defer s.Close(context.Background())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}
	if err := s.HealthPing(ctx); err != nil {
		t.Fatalf("health ping: %v", err)
	}
}
