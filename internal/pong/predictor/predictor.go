// Package predictor implements the client-side mirrored simulation that
// hides round-trip latency: it runs the same sim.Step pipeline the match
// host runs, locally and immediately, then reconciles against whatever
// the host's authoritative snapshots report.
package predictor

import (
	"fight-club/internal/config"
	"fight-club/internal/pong/mapgeo"
	"fight-club/internal/pong/protocol"
	"fight-club/internal/pong/rng"
	"fight-club/internal/pong/sim"
	"fight-club/internal/pong/world"
)

// Predictor mirrors a match host's World locally. Nil w means "not
// currently initialized" — every mutating method is a no-op until the
// first Initialize call, and reconciliation can tear w back down to nil
// on desync.
type Predictor struct {
	simCfg          config.SimConfig
	maxReconcileGap uint32

	w *world.World
	m mapgeo.Map

	rng      *rng.Source
	time     world.Time
	score    world.Score
	events   world.Events
	netQueue world.NetQueue
	respawn  world.RespawnState

	leftPaddleID  world.EntityID
	rightPaddleID world.EntityID
	ballID        world.EntityID

	predictedTick      uint32
	lastReconciledTick uint32

	accumulator    float32
	lastUpdateMs   uint32
	haveLastUpdate bool
}

// New constructs a Predictor that isn't initialized yet; call Initialize
// with the first GameState snapshot before driving it.
func New(simCfg config.SimConfig, maxReconcileGap uint32) *Predictor {
	return &Predictor{
		simCfg:          simCfg,
		maxReconcileGap: maxReconcileGap,
		m:               mapgeo.New(simCfg),
	}
}

// Initialized reports whether the predictor currently mirrors a world —
// false before the first Initialize and after a reconcile reset.
func (p *Predictor) Initialized() bool {
	return p.w != nil
}

// PredictedTick returns the local tick count the predictor has advanced
// to. Meaningless before Initialize.
func (p *Predictor) PredictedTick() uint32 {
	return p.predictedTick
}

// LastReconciledTick returns the most recent server tick folded into the
// predictor's bookkeeping.
func (p *Predictor) LastReconciledTick() uint32 {
	return p.lastReconciledTick
}

// Initialize creates paddles at the snapshot's positions, a ball at the
// snapshot's (pos, vel), and seeds predicted_tick = last_reconciled_tick =
// snapshot.tick. seed drives the predictor's own RNG stream; it is
// permitted to diverge from the host's stream because only the host's
// ball resets are authoritative (the predictor's own resets are
// overwritten by the next reconcile anyway).
func (p *Predictor) Initialize(localPlayerID uint8, snap protocol.GameStateSnapshot, seed int64) {
	w := world.New()

	p.leftPaddleID = w.Spawn()
	w.InsertPaddle(p.leftPaddleID, world.Paddle{PlayerID: 0, Y: snap.PaddleLeftY})

	p.rightPaddleID = w.Spawn()
	w.InsertPaddle(p.rightPaddleID, world.Paddle{PlayerID: 1, Y: snap.PaddleRightY})

	p.ballID = w.Spawn()
	w.InsertBall(p.ballID, world.Ball{X: snap.BallX, Y: snap.BallY, VX: snap.BallVX, VY: snap.BallVY})

	p.w = w
	p.rng = rng.New(seed)
	p.time = world.Time{}
	p.score = world.Score{Left: snap.ScoreLeft, Right: snap.ScoreRight}
	p.events = world.Events{}
	p.netQueue = world.NetQueue{}
	p.respawn = world.RespawnState{}

	p.predictedTick = snap.Tick
	p.lastReconciledTick = snap.Tick
	p.accumulator = 0
	p.haveLastUpdate = false
	_ = localPlayerID
}

// ProcessInput enqueues one input derived from a discrete ±1 direction
// press, runs one FIXED_DT step, and increments predictedTick. A no-op
// before Initialize.
func (p *Predictor) ProcessInput(playerID uint8, dir float32) {
	if !p.Initialized() {
		return
	}
	p.netQueue.Push(world.Input{PlayerID: playerID, TargetY: p.localTargetY(playerID, dir, p.simCfg.Step.FixedDT)})
	p.runStep()
}

// Update accumulates frame time from a wall-clock millisecond timestamp
// and, while the accumulator holds at least one FIXED_DT, clears the net
// queue, enqueues the current continuous input, and steps one
// micro-tick. A no-op before Initialize.
func (p *Predictor) Update(nowMs uint32, playerID uint8, currentDir float32) {
	if !p.Initialized() {
		return
	}
	if !p.haveLastUpdate {
		p.lastUpdateMs = nowMs
		p.haveLastUpdate = true
		return
	}
	dtMs := nowMs - p.lastUpdateMs
	p.lastUpdateMs = nowMs
	p.accumulator += float32(dtMs) / 1000.0

	for p.accumulator >= p.simCfg.Step.FixedDT {
		p.netQueue = world.NetQueue{}
		p.netQueue.Push(world.Input{PlayerID: playerID, TargetY: p.localTargetY(playerID, currentDir, p.simCfg.Step.FixedDT)})
		p.runStep()
		p.accumulator -= p.simCfg.Step.FixedDT
	}
}

// Reconcile folds a server tick into the predictor's bookkeeping.
//
//   - server_tick >= predicted_tick: the server has caught up or is
//     ahead; reset the predictor and record last_reconciled_tick =
//     predicted_tick = server_tick.
//   - predicted_tick - server_tick > max_gap: desync; reset the
//     predictor. The next GameState message triggers a fresh Initialize.
//   - otherwise: keep the predicted world, record last_reconciled_tick =
//     server_tick.
func (p *Predictor) Reconcile(serverTick uint32) {
	if !p.Initialized() {
		return
	}
	switch {
	case serverTick >= p.predictedTick:
		p.reset()
		p.predictedTick = serverTick
		p.lastReconciledTick = serverTick
	case p.predictedTick-serverTick > p.maxReconcileGap:
		p.reset()
	default:
		p.lastReconciledTick = serverTick
	}
}

// Ball returns the predicted ball state. Only meaningful while Initialized.
func (p *Predictor) Ball() world.Ball {
	b, _ := p.w.Ball(p.ballID)
	return *b
}

// PaddleY returns the predicted y for the given player's paddle. Only
// meaningful while Initialized.
func (p *Predictor) PaddleY(playerID uint8) float32 {
	id := p.leftPaddleID
	if playerID == 1 {
		id = p.rightPaddleID
	}
	pad, _ := p.w.Paddle(id)
	return pad.Y
}

// Score returns the predicted score.
func (p *Predictor) Score() world.Score {
	return p.score
}

func (p *Predictor) runStep() {
	p.time.DT = p.simCfg.Step.FixedDT
	sim.Step(p.w, &p.time, p.m, p.simCfg, sim.Resources{
		Score:    &p.score,
		Events:   &p.events,
		NetQueue: &p.netQueue,
		RNG:      p.rng,
		Respawn:  &p.respawn,
	})
	p.predictedTick++
}

// localTargetY converts a ±1 direction into the projected target y that
// the shared ingest system expects, so the predictor's local tick and the
// host's server tick run through the identical ingest implementation.
func (p *Predictor) localTargetY(playerID uint8, dir float32, dt float32) float32 {
	_, paddle, ok := p.w.PaddleByPlayer(playerID)
	if !ok {
		return 0
	}
	return paddle.Y + dir*p.simCfg.Paddle.Speed*dt
}

// reset clears all simulation state. The next Initialize call (triggered
// by the owning client on its next GameState message) rebuilds the world
// from scratch.
func (p *Predictor) reset() {
	p.w = nil
	p.netQueue = world.NetQueue{}
	p.events = world.Events{}
	p.accumulator = 0
	p.haveLastUpdate = false
}
