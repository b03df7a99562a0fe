package api

import (
	"log"
	"net/http"
	"time"

	"fight-club/internal/config"
	"fight-club/internal/pong/matchlog"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support. It combines the
// HTTP router with the lobby's match registry and the WS upgrade handler.
type Server struct {
	lobby       *Registry
	router      *chi.Mux
	wsHandler   *wsHandler
	rateLimiter *IPRateLimiter
	eventLog    *matchlog.Log
	sweepEvery  time.Duration
	stopCh      chan struct{}
}

// NewServer creates a new API server with default production
// configuration, backed by a fresh match registry. eventLogPath is where
// the match event log flushes newline-delimited JSON; an empty path runs
// the log's rate limiting and buffering without ever touching disk.
// corsOrigins is the operator's allowlist (config.ServerConfig.CORSOrigins);
// nil falls back to local-development defaults and drives both the HTTP
// CORS middleware and the WebSocket origin check identically.
//
// NewServer starts the event log's writer goroutine and the IP rate
// limiter's cleanup goroutine; the finished-match sweep and the network
// listener do not start until Start() is called.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(simCfg config.SimConfig, matchCfg config.MatchConfig, eventLogPath string, corsOrigins []string) *Server {
	lobby := NewRegistry(simCfg, matchCfg)

	eventLog := matchlog.New()
	lobby.SetLog(eventLog)

	origins := NewOriginChecker(corsOrigins)

	s := &Server{
		lobby:      lobby,
		wsHandler:  newWSHandler(lobby, origins),
		eventLog:   eventLog,
		sweepEvery: time.Minute,
		stopCh:     make(chan struct{}),
	}

	if err := eventLog.Start(eventLogPath); err != nil {
		log.Printf("⚠️ event log failed to open %q, logging to memory only: %v", eventLogPath, err)
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Lobby:       lobby,
		RateLimiter: s.rateLimiter,
		CORSOrigins: corsOrigins,
	})
	s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.wsHandler.ServeHTTP(w, r)
	})

	return s
}

// Start begins the HTTP server AND starts the finished-match sweep. This
// is the only method that opens a network listener.
//
// Call this method only once. To stop the server, signal the process.
func (s *Server) Start(addr string) error {
	go s.sweepLoop()

	log.Printf("🏓 Pong server starting on %s", addr)
	log.Printf("🏓 Create a match:  http://localhost%s/create", addr)

	return http.ListenAndServe(addr, s.router)
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.lobby.Sweep()
			UpdateMatchCount(s.lobby.Count())
			total, dropped := s.eventLog.Stats()
			UpdateEventLogStats(total, dropped)
		case <-s.stopCh:
			return
		}
	}
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(config.DefaultSim(), config.DefaultMatch(), "", nil)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/create")
func (s *Server) Router() http.Handler {
	return s.router
}

// Lobby returns the server's match registry.
func (s *Server) Lobby() *Registry {
	return s.lobby
}

// Stop performs graceful shutdown of background workers.
// Call this before process exit to ensure clean cleanup.
func (s *Server) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.eventLog.Stop()
}
