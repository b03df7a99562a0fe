package api

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"fight-club/internal/pong/match"
	"fight-club/internal/pong/protocol"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 2000

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

// wsSender adapts a gorilla websocket connection to match.Sender. Writes
// are serialized with a mutex since match.Host's broadcast can call Send
// from its own goroutine concurrently with this connection's read loop
// closing it.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) Send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, b)
}

// wsHandler upgrades incoming connections and, per connection, joins the
// client to whichever match its first frame names. One handler serves
// every match in the lobby; match identity lives entirely in the wire
// protocol's Join message, not in the URL.
type wsHandler struct {
	lobby      *Registry
	wsLimiter  *WebSocketRateLimiter
	upgrader   websocket.Upgrader
	totalConns int64 // atomic
}

// newWSHandler builds the WebSocket handler for one lobby. origins governs
// which Origin headers may open a connection; pass nil for the local-dev
// default (localhost only).
func newWSHandler(lobby *Registry, origins *OriginChecker) *wsHandler {
	if origins == nil {
		origins = NewOriginChecker(nil)
	}

	return &wsHandler{
		lobby:     lobby,
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origins.IsAllowed(origin) {
					return true
				}
				log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
				RecordConnectionRejected("origin")
				return false
			},
		},
	}
}

// ServeHTTP upgrades the connection and hands it to serveClient. DoS
// guards (total cap, per-IP cap, origin check) run before the expensive
// upgrade handshake.
func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if int(atomic.LoadInt64(&h.totalConns)) >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	count := atomic.AddInt64(&h.totalConns, 1)
	UpdateWSConnections(int(count))

	defer func() {
		h.wsLimiter.Release(ip)
		count := atomic.AddInt64(&h.totalConns, -1)
		UpdateWSConnections(int(count))
		conn.Close()
	}()

	h.serveClient(conn)
}

// serveClient implements the per-connection protocol: the first frame
// must be a Join naming a match code, after which every subsequent frame
// is dispatched to that match's host until the connection closes.
func (h *wsHandler) serveClient(conn *websocket.Conn) {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}

	msg, err := protocol.DecodeClientMessage(raw)
	if err != nil || msg.Tag != protocol.TagJoin {
		log.Printf("⚠️ websocket: first frame was not a Join, dropping connection")
		return
	}
	code := string(msg.Join.Code[:])

	host, ok := h.lobby.Lookup(code)
	if !ok {
		log.Printf("🏓 websocket: join to unknown match %s, dropping connection", code)
		return
	}

	sender := &wsSender{conn: conn}
	playerID, _, err := host.AddPlayer(sender)
	if err != nil {
		log.Printf("🏓 websocket: join to match %s rejected: %v", code, err)
		return
	}
	IncrementWSMessages()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			host.RemovePlayer(playerID)
			return
		}
		IncrementWSMessages()

		msg, err := protocol.DecodeClientMessage(raw)
		if err != nil {
			log.Printf("⚠️ websocket: malformed frame from player %d in match %s, dropping frame", playerID, code)
			continue
		}

		switch msg.Tag {
		case protocol.TagInput:
			host.HandleInput(playerID, msg.Input.Y)
		case protocol.TagRestart:
			host.HandleRestart(playerID)
		case protocol.TagPing:
			if err := sender.Send(protocol.EncodePong(msg.Ping.TMillis)); err != nil {
				log.Printf("🏓 websocket: pong send to player %d failed: %v", playerID, err)
			}
		}
	}
}

var _ match.Sender = (*wsSender)(nil)
