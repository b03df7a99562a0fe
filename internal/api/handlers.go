package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full Server.

// handleCreateMatch allocates a new match and returns its join code.
func (h *routerHandlers) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	host, err := h.lobby.Create()
	if err != nil {
		writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	UpdateMatchCount(h.lobby.Count())
	writeJSON(w, map[string]string{
		"code":    host.Code(),
		"ws_path": "/ws",
	})
}

// handleJoinMatch checks whether a match code exists and still has room,
// without admitting the caller as a player. Actual admission happens over
// the WebSocket connection when the client sends its Join frame.
func (h *routerHandlers) handleJoinMatch(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	host, ok := h.lobby.Lookup(code)
	if !ok {
		writeError(w, "match not found", http.StatusNotFound)
		return
	}
	if host.PlayerCount() >= 2 {
		writeError(w, "match is full", http.StatusConflict)
		return
	}

	writeJSON(w, map[string]string{
		"code":    host.Code(),
		"ws_path": "/ws",
	})
}

// handleLobbyStats reports aggregate lobby occupancy, useful for a
// landing-page counter or for monitoring.
func (h *routerHandlers) handleLobbyStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int{
		"matches": h.lobby.Count(),
	})
}

// handleMatchList reports a spectator-safe summary of every live match
// (code, state, player count, age) for operational visibility. This is
// not spectating gameplay: no positions, scores, or snapshot data leak
// through it.
func (h *routerHandlers) handleMatchList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]MatchSummary{
		"matches": h.lobby.Summaries(),
	})
}

// handleIndex serves the client bundle's entry point.
func (h *routerHandlers) handleIndex(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(indexPath); err != nil {
			writeJSON(w, map[string]string{"status": "ok", "service": "pong"})
			return
		}
		http.ServeFile(w, r, indexPath)
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
