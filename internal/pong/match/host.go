// Package match implements the per-match host: a single-threaded,
// cooperative state machine owning one World and up to two clients. One
// Host instance drives exactly one match; the lobby owns a registry of
// Hosts keyed by match code.
package match

import (
	"fmt"
	"log"
	"sync"
	"time"

	"fight-club/internal/config"
	"fight-club/internal/pong/mapgeo"
	"fight-club/internal/pong/matchlog"
	"fight-club/internal/pong/protocol"
	"fight-club/internal/pong/rng"
	"fight-club/internal/pong/sim"
	"fight-club/internal/pong/world"

	"golang.org/x/time/rate"
)

// maxLogEventsPerSec bounds how many match events one Host will forward
// to the shared matchlog.Log per second. Unlike a process-wide log
// tracking one limiter per match code, this limiter is owned by the Host
// itself: it needs no eviction sweep because it dies with the match.
const maxLogEventsPerSec = 200

// State is a match host lifecycle state.
type State uint8

const (
	StateWaiting State = iota
	StateCountdown
	StatePlaying
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Sender is the narrow interface a host needs to reach a connected
// client. Production code backs it with a websocket connection; tests
// back it with an in-memory recorder.
type Sender interface {
	Send(b []byte) error
}

type clientSlot struct {
	sender       Sender
	paddleID     world.EntityID
	lastActivity time.Time
	readyRestart bool
}

// Host is a per-match singleton owning exactly one world and up to two
// clients. It is not safe for concurrent use from outside its own mutex —
// every exported method takes the lock itself.
type Host struct {
	mu sync.Mutex

	code string

	w        *world.World
	m        mapgeo.Map
	simCfg   config.SimConfig
	matchCfg config.MatchConfig

	time     world.Time
	score    world.Score
	events   world.Events
	netQueue world.NetQueue
	respawn  world.RespawnState
	rng      *rng.Source

	ballID world.EntityID

	state              State
	tick               uint32
	countdownRemaining int

	clients      map[uint8]*clientSlot
	nextPlayerID uint8

	log        *matchlog.Log
	logLimiter *rate.Limiter

	stopCh chan struct{}
}

// NewHost constructs a Host for a newly created match. seed drives the
// host's RNG stream (ball serve angles); two hosts built with the same
// seed and fed the same inputs produce byte-identical trajectories.
func NewHost(code string, simCfg config.SimConfig, matchCfg config.MatchConfig, seed int64) *Host {
	w := world.New()
	m := mapgeo.New(simCfg)

	h := &Host{
		code:       code,
		w:          w,
		m:          m,
		simCfg:     simCfg,
		matchCfg:   matchCfg,
		rng:        rng.New(seed),
		clients:    make(map[uint8]*clientSlot),
		state:      StateWaiting,
		logLimiter: rate.NewLimiter(maxLogEventsPerSec, maxLogEventsPerSec/10),
		stopCh:     make(chan struct{}),
	}

	h.ballID = w.Spawn()
	cx, cy := m.Center()
	w.InsertBall(h.ballID, world.Ball{X: cx, Y: cy})

	return h
}

// SetLog attaches the process-wide event log this host emits match events
// to. Optional: a Host with no log attached simply skips emission, which
// keeps tests that construct a bare Host free of any logging dependency.
func (h *Host) SetLog(l *matchlog.Log) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = l
}

// Code returns the match's 5-character join code.
func (h *Host) Code() string {
	return h.code
}

// State reports the host's current lifecycle state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// PlayerCount reports the number of connected clients.
func (h *Host) PlayerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// AddPlayer admits a new client. Rejects when two clients are already
// present. Assigns player_id by toggling between 0 and 1, spawns a
// paddle, and sends the new client its Welcome. If this is the second
// client, broadcasts MatchFound and enters Countdown.
func (h *Host) AddPlayer(sender Sender) (playerID uint8, wasFirst bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= 2 {
		return 0, false, fmt.Errorf("match %s: capacity reached, rejecting join", h.code)
	}

	playerID = h.nextPlayerID
	h.nextPlayerID = 1 - h.nextPlayerID

	paddleID := h.w.Spawn()
	h.w.InsertPaddle(paddleID, world.Paddle{PlayerID: playerID, Y: h.m.Height / 2})

	h.clients[playerID] = &clientSlot{sender: sender, paddleID: paddleID, lastActivity: time.Now()}
	wasFirst = len(h.clients) == 1

	if err := sender.Send(protocol.EncodeWelcome(playerID)); err != nil {
		log.Printf("🏓 match %s: welcome send to player %d failed: %v", h.code, playerID, err)
	}

	if len(h.clients) == 2 {
		h.broadcastLocked(protocol.EncodeMatchFound())
		h.enterCountdownLocked()
	}

	log.Printf("🏓 match %s: player %d joined (%d/2)", h.code, playerID, len(h.clients))
	return playerID, wasFirst, nil
}

// RemovePlayer despawns a player's paddle and transitions state per the
// lifecycle: Countdown loses a client goes back to Waiting, Playing loses
// a client ends the match with the remaining client as winner.
func (h *Host) RemovePlayer(playerID uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()

	slot, ok := h.clients[playerID]
	if !ok {
		return
	}
	h.w.Despawn(slot.paddleID)
	delete(h.clients, playerID)

	switch h.state {
	case StateCountdown:
		h.state = StateWaiting
		h.broadcastLocked(protocol.EncodeOpponentDisconnected())
	case StatePlaying:
		h.state = StateGameOver
		var winner uint8
		for id := range h.clients {
			winner = id
		}
		h.broadcastLocked(protocol.EncodeGameOver(winner))
		h.logLocked(matchlog.EventMatchOver, matchlog.MatchOverPayload{Winner: winner})
	}

	log.Printf("🏓 match %s: player %d left (state now %s)", h.code, playerID, h.state)
}

// HandleInput refreshes the client's activity timestamp and enqueues the
// input. An input naming an unknown player is a state-invalid condition
// and is silently dropped.
func (h *Host) HandleInput(playerID uint8, y float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	slot, ok := h.clients[playerID]
	if !ok {
		return
	}
	slot.lastActivity = time.Now()
	h.netQueue.Push(world.Input{PlayerID: playerID, TargetY: y})
}

// HandleRestart processes a client's Restart message. Outside GameOver
// it's a state-invalid silent no-op. Inside GameOver, it marks that
// client ready; once every connected client is ready, the match actually
// restarts. This two-phase handshake stops the match from racing back
// into Countdown the instant one side clicks "play again".
func (h *Host) HandleRestart(playerID uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateGameOver {
		return
	}
	slot, ok := h.clients[playerID]
	if !ok {
		return
	}
	slot.readyRestart = true

	for _, s := range h.clients {
		if !s.readyRestart {
			return
		}
	}
	h.restartLocked()
}

// TickCountdown broadcasts the current countdown value, then decrements
// it. At 0 it transitions to Playing, serves the ball, and broadcasts
// GameStart. Must be invoked once per second while Countdown is active;
// calls while any other state is active are a no-op.
func (h *Host) TickCountdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateCountdown {
		return
	}

	h.broadcastLocked(protocol.EncodeCountdown(uint8(h.countdownRemaining)))
	h.countdownRemaining--

	if h.countdownRemaining <= 0 {
		h.state = StatePlaying
		ball, _ := h.w.Ball(h.ballID)
		sim.ServeBall(ball, h.m, h.simCfg, h.rng)
		h.broadcastLocked(protocol.EncodeGameStart())
	}
}

// Step advances the simulation by one fixed tick iff Playing. Returns the
// winning side and true if the match just ended.
func (h *Host) Step() (winner uint8, over bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StatePlaying {
		return 0, false
	}

	h.time.DT = h.simCfg.Step.FixedDT
	sim.Step(h.w, &h.time, h.m, h.simCfg, sim.Resources{
		Score:    &h.score,
		Events:   &h.events,
		NetQueue: &h.netQueue,
		RNG:      h.rng,
		Respawn:  &h.respawn,
	})
	h.tick++
	h.logEventsLocked()

	if side, ok := h.score.HasWinner(h.simCfg.Score.WinScore); ok {
		h.state = StateGameOver
		h.broadcastLocked(protocol.EncodeGameOver(side))
		h.logLocked(matchlog.EventMatchOver, matchlog.MatchOverPayload{Winner: side})
		return side, true
	}
	return 0, false
}

// logEventsLocked emits a log entry for each physics event flagged during
// the tick just stepped. Caller must hold h.mu.
func (h *Host) logEventsLocked() {
	if h.log == nil {
		return
	}
	if h.events.BallHitWall {
		h.logLocked(matchlog.EventBallHitWall, nil)
	}
	if h.events.BallHitPaddle {
		h.logLocked(matchlog.EventBallHitPaddle, nil)
	}
	if h.events.LeftScored {
		h.logLocked(matchlog.EventLeftScored, matchlog.ScorePayload{Left: h.score.Left, Right: h.score.Right})
	}
	if h.events.RightScored {
		h.logLocked(matchlog.EventRightScored, matchlog.ScorePayload{Left: h.score.Left, Right: h.score.Right})
	}
}

// logLocked emits a single event to the attached log, if any, subject to
// this match's own burst limit. Caller must hold h.mu.
func (h *Host) logLocked(eventType matchlog.EventType, payload interface{}) {
	if h.log == nil || !h.logLimiter.Allow() {
		return
	}
	h.log.EmitSimple(eventType, h.code, h.tick, payload)
}

// BroadcastState emits the current GameState snapshot to every client,
// iff Playing.
func (h *Host) BroadcastState() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StatePlaying {
		return
	}
	h.broadcastLocked(protocol.EncodeGameState(h.snapshotLocked()))
}

// SweepIdle disconnects any client whose last activity predates the
// configured idle timeout.
func (h *Host) SweepIdle() {
	h.mu.Lock()
	now := time.Now()
	var idle []uint8
	for id, slot := range h.clients {
		if now.Sub(slot.lastActivity) > h.matchCfg.IdleTimeout {
			idle = append(idle, id)
		}
	}
	h.mu.Unlock()

	for _, id := range idle {
		log.Printf("🏓 match %s: player %d idle past %s, disconnecting", h.code, id, h.matchCfg.IdleTimeout)
		h.RemovePlayer(id)
	}
}

// Start launches the host's tick scheduler in its own goroutine: a 60 Hz
// sim ticker with a time accumulator, a 20 Hz broadcast cadence, and a
// once-per-second countdown/idle-sweep ticker.
func (h *Host) Start() {
	go h.run()
}

// Stop halts the tick scheduler. Safe to call more than once.
func (h *Host) Stop() {
	select {
	case <-h.stopCh:
	default:
		close(h.stopCh)
	}
}

func (h *Host) run() {
	simInterval := time.Second / time.Duration(h.matchCfg.TickRate)
	simTicker := time.NewTicker(simInterval)
	defer simTicker.Stop()

	secondTicker := time.NewTicker(time.Second)
	defer secondTicker.Stop()

	broadcastEvery := h.matchCfg.TickRate / h.matchCfg.BroadcastRate
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}

	lastTick := time.Now()
	var accumulator float32
	var ticksSinceBroadcast int
	maxAccumulator := h.simCfg.Step.MaxDT * 5

	for {
		select {
		case now := <-simTicker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			accumulator += dt

			if accumulator > maxAccumulator {
				log.Printf("🏓 match %s: scheduler fell behind, dropping excess accumulator", h.code)
				accumulator = maxAccumulator
			}

			for accumulator >= h.simCfg.Step.FixedDT {
				h.Step()
				accumulator -= h.simCfg.Step.FixedDT
				ticksSinceBroadcast++
			}

			if ticksSinceBroadcast >= broadcastEvery {
				h.BroadcastState()
				ticksSinceBroadcast = 0
			}

		case <-secondTicker.C:
			h.TickCountdown()
			h.SweepIdle()

		case <-h.stopCh:
			return
		}
	}
}

// enterCountdownLocked transitions Waiting -> Countdown, resetting the
// ball to center with zero velocity (it is served when Countdown reaches
// zero, not before). Caller must hold h.mu.
func (h *Host) enterCountdownLocked() {
	h.state = StateCountdown
	h.countdownRemaining = h.matchCfg.CountdownSeconds

	ball, _ := h.w.Ball(h.ballID)
	cx, cy := h.m.Center()
	ball.X, ball.Y, ball.VX, ball.VY = cx, cy, 0, 0
}

// restartLocked clears the world, resets score/events/tick, respawns
// paddles for every still-connected client and a fresh ball, and enters
// Countdown. Caller must hold h.mu.
func (h *Host) restartLocked() {
	h.w.Clear()
	h.score.Reset()
	h.events.Clear()
	h.tick = 0
	h.time = world.Time{}

	for playerID, slot := range h.clients {
		paddleID := h.w.Spawn()
		h.w.InsertPaddle(paddleID, world.Paddle{PlayerID: playerID, Y: h.m.Height / 2})
		slot.paddleID = paddleID
		slot.readyRestart = false
	}

	h.ballID = h.w.Spawn()
	cx, cy := h.m.Center()
	h.w.InsertBall(h.ballID, world.Ball{X: cx, Y: cy})

	h.enterCountdownLocked()
}

// snapshotLocked builds the GameState value broadcast to clients. Caller
// must hold h.mu.
func (h *Host) snapshotLocked() protocol.GameStateSnapshot {
	ball, _ := h.w.Ball(h.ballID)

	var leftY, rightY float32
	for id, slot := range h.clients {
		p, ok := h.w.Paddle(slot.paddleID)
		if !ok {
			continue
		}
		if id == 0 {
			leftY = p.Y
		} else {
			rightY = p.Y
		}
	}

	return protocol.GameStateSnapshot{
		Tick:         h.tick,
		BallX:        ball.X,
		BallY:        ball.Y,
		BallVX:       ball.VX,
		BallVY:       ball.VY,
		PaddleLeftY:  leftY,
		PaddleRightY: rightY,
		ScoreLeft:    h.score.Left,
		ScoreRight:   h.score.Right,
	}
}

// broadcastLocked sends b to every connected client in player-id order,
// dropping (and logging) a frame for any client whose send fails rather
// than letting one bad connection stall the match. Caller must hold h.mu.
func (h *Host) broadcastLocked(b []byte) {
	for _, id := range [2]uint8{0, 1} {
		slot, ok := h.clients[id]
		if !ok {
			continue
		}
		if err := slot.sender.Send(b); err != nil {
			log.Printf("🏓 match %s: send to player %d failed, dropping frame: %v", h.code, id, err)
		}
	}
}
