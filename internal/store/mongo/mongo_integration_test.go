package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sheikh-riyadh/due-sample-server/internal/store"
	"github.com/sheikh-riyadh/due-sample-server/internal/store/storetest"
)

// mongoURI returns a server to test against: SAMPLE_SERVICE_MONGO_URI when set,
// otherwise a throwaway container when SAMPLE_SERVICE_MONGO_CONTAINER=1.
func mongoURI(t *testing.T) string {
	t.Helper()
	if uri := os.Getenv("SAMPLE_SERVICE_MONGO_URI"); uri != "" {
		return uri
	}
	if os.Getenv("SAMPLE_SERVICE_MONGO_CONTAINER") != "1" {
		t.Skip("SAMPLE_SERVICE_MONGO_URI not set and SAMPLE_SERVICE_MONGO_CONTAINER!=1; skipping mongo store integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func makeMongoStore(t *testing.T) store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := Open(ctx, mongoURI(t), "due-sample-test")
	if err != nil {
		t.Fatalf("mongo open: %v", err)
	}
	dbName := "due-sample-test-" + uuid.NewString()[:8]
	s := New(client, dbName)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func TestMongoStore_Compliance(t *testing.T) {
	storetest.Run(t, makeMongoStore)
}
