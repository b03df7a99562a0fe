package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Lobby: lobby,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Lobby is the match registry (required)
	Lobby *Registry

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default local-development origins.
	CORSOrigins []string

	// StaticFilesDir is the directory to serve the client bundle from.
	// If empty, defaults to "./web".
	StaticFilesDir string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	lobby *Registry
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It opens no network listeners, which makes it safe to use in tests with
// httptest.NewServer. When cfg.RateLimiter is nil it builds one with
// NewIPRateLimiter, whose cleanup goroutine starts immediately; pass a
// pre-built RateLimiter to avoid that.
//
// Example:
//
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/create")
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration. With no explicit origins this is local-dev only;
	// the matching OriginChecker (see NewOriginChecker) applies the same
	// "localhost means any port" rule to WebSocket upgrades so the two
	// surfaces never disagree about who's allowed in.
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{lobby: cfg.Lobby}

	// Lobby routes
	r.Get("/create", h.handleCreateMatch)
	r.Get("/join/{code}", h.handleJoinMatch)
	r.Get("/stats", h.handleLobbyStats)
	r.Get("/api/matches", h.handleMatchList)

	// Serve the client bundle
	staticDir := cfg.StaticFilesDir
	if staticDir == "" {
		staticDir = "./web"
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/", h.handleIndex(staticDir))

	return r
}

// GetRateLimiterFromRouter returns cfg.RateLimiter when set. Otherwise it
// builds a new limiter from cfg.RateLimitConfig (or the defaults), which is
// not the instance a router built from the same cfg uses.
func GetRateLimiterFromRouter(cfg RouterConfig) *IPRateLimiter {
	if cfg.RateLimiter != nil {
		return cfg.RateLimiter
	}
	rateLimitCfg := DefaultRateLimitConfig
	if cfg.RateLimitConfig != nil {
		rateLimitCfg = *cfg.RateLimitConfig
	}
	return NewIPRateLimiter(rateLimitCfg)
}
