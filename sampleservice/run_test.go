package sampleservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-riyadh/due-sample-server/internal/config"
	"github.com/sheikh-riyadh/due-sample-server/internal/logger"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 60, calculateStartupHealthTimeout(1))
	assert.Equal(t, 60, calculateStartupHealthTimeout(30))
	assert.Equal(t, 120, calculateStartupHealthTimeout(60))
}

func TestStartupBecomesHealthyOnSQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewForTesting()
	log := logger.Nop()
	st, err := initDependencies(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	waitCtx, waitCancel := context.WithTimeout(ctx, 10*time.Second)
	defer waitCancel()
	require.NoError(t, waitUntilHealthy(waitCtx, cfg, svcHealth))
	assert.NotNil(t, buildRouter(st, cfg, log, svcHealth))
}

func TestNewHTTPServer(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.HTTPPort = 5055
	srv := newHTTPServer(context.Background(), cfg, nil)
	assert.Equal(t, ":5055", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
}
