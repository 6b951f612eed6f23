package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/health"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// HealthReporter exposes cached component health.
type HealthReporter interface {
	Report() health.Report
	Component(name string) (health.Status, bool)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	reporter HealthReporter
	log      zerolog.Logger
}

func NewHealthHandler(reporter HealthReporter, log zerolog.Logger) *HealthHandler {
	if reporter == nil {
		reporter = health.NewMonitor()
	}
	return &HealthHandler{reporter: reporter, log: log}
}

// CheckHealth handles GET /health
// Always returns 200; body reports healthy/unhealthy per component. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	report := h.reporter.Report()
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     report.Status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"components": report.Components,
	})
}

// Root handles GET /: reports the store component's last check.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	st, ok := h.reporter.Component(store.HealthComponent)
	if !ok || !st.Healthy {
		h.log.Warn().Str("component", store.HealthComponent).Str("driver", st.Driver).Str("error", st.Error).Msg("database unavailable")
		respond.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "database connected",
		"driver":  st.Driver,
	})
}
