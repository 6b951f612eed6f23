package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/recovery"
	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/config"
	"github.com/sheikh-riyadh/due-sample-server/internal/query"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Store   store.Store
	Tokens  *auth.TokenManager
	Metrics *Metrics
	Log     zerolog.Logger
	// Health serves / and /health. A nil reporter reports unhealthy.
	Health HealthReporter
}

// NewRouter creates the HTTP handler with every route and middleware.
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	qb := query.NewBuilder(d.Config.Location())
	cookies := auth.NewCookiePolicy(d.Config.IsProduction())
	guard := auth.NewGuard(d.Tokens, cookies, d.Log)

	authHandler := NewAuthHandler(services.NewAuthService(d.Store, d.Tokens), cookies, d.Log)
	phlebotomistHandler := NewPhlebotomistHandler(services.NewPhlebotomistService(d.Store, qb), d.Log)
	sampleHandler := NewSampleHandler(services.NewSampleService(d.Store, qb, d.Config.Location()), d.Log)

	healthHandler := NewHealthHandler(d.Health, d.Log)

	router := mux.NewRouter()
	router.Use(d.Metrics.Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	owner := func(h http.HandlerFunc) http.Handler {
		return guard.Authenticate(guard.RequireOwner(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return guard.Authenticate(guard.RequireRole(auth.RoleAdmin)(h))
	}

	// Health endpoints
	router.HandleFunc("/", healthHandler.Root).Methods("GET")
	router.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", d.Metrics.Handler()).Methods("GET")

	// Session endpoints
	router.HandleFunc("/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// Phlebotomist endpoints
	router.Handle("/get-all-phlebotomist", owner(phlebotomistHandler.List)).Methods("GET")
	router.Handle("/add-phlebotomist", admin(phlebotomistHandler.Add)).Methods("POST")
	router.Handle("/update-phlebotomist", admin(phlebotomistHandler.Update)).Methods("PATCH")
	router.Handle("/delete-phlebotomist", admin(phlebotomistHandler.Delete)).Methods("DELETE")

	// Sample endpoints
	router.Handle("/overview", owner(sampleHandler.Overview)).Methods("GET")
	router.Handle("/get-all-sample", owner(sampleHandler.List)).Methods("GET")
	router.Handle("/add-sample", owner(sampleHandler.Add)).Methods("POST")
	router.Handle("/update-sample", owner(sampleHandler.Update)).Methods("PATCH")
	router.Handle("/delete-sample", admin(sampleHandler.Delete)).Methods("DELETE")

	var h http.Handler = router
	h = CORS(d.Config.CORSAllowedOrigins)(h)
	h = WithLogging(d.Log)(h)
	h = recovery.Middleware(d.Log)(h)
	return h
}
