// Package sim implements the fixed-timestep simulation pipeline shared
// bit-for-bit by the match host and the client predictor. Both sides
// construct identical config and call Step with identical resources; that
// mutual contract is the entire point of this package living outside both
// of its callers.
package sim

import (
	"math"

	"fight-club/internal/config"
	"fight-club/internal/pong/mapgeo"
	"fight-club/internal/pong/rng"
	"fight-club/internal/pong/world"
)

// Resources bundles every world-scoped singleton a Step call touches. It
// exists so callers don't have to remember the argument order — the
// systems inside Step still run in a fixed sequence regardless.
type Resources struct {
	Score    *world.Score
	Events   *world.Events
	NetQueue *world.NetQueue
	RNG      *rng.Source
	Respawn  *world.RespawnState
}

// Step clamps time.DT to MAX_DT, then runs one or more FIXED_DT
// micro-steps until the clamped duration is exhausted. time.Now advances
// by the actual duration consumed (a whole number of FIXED_DT steps — any
// leftover sub-frame is dropped rather than carried as an accumulator
// inside Step itself; carrying leftover time across calls is the caller's
// job, see match.Host and predictor.Predictor).
func Step(w *world.World, t *world.Time, m mapgeo.Map, cfg config.SimConfig, res Resources) {
	dt := t.DT
	if dt > cfg.Step.MaxDT {
		dt = cfg.Step.MaxDT
	}
	if dt <= 0 {
		return
	}

	fixedDT := cfg.Step.FixedDT
	const epsilon = 1e-4
	steps := int((dt + epsilon) / fixedDT)
	if steps < 1 {
		steps = 1
	}

	for i := 0; i < steps; i++ {
		microStep(w, fixedDT, m, cfg, res)
		t.Now += fixedDT
	}
}

// microStep runs clear, ingest, integrate, collide, score in that fixed
// order. Determinism across platforms depends on this order never
// changing and on every query inside each system iterating entities by
// ascending id.
func microStep(w *world.World, dt float32, m mapgeo.Map, cfg config.SimConfig, res Resources) {
	res.Events.Clear()
	ingestInputs(w, res.NetQueue, cfg, m, dt)
	integrateBall(w, dt)
	resolveCollisions(w, m, cfg, res.Events)
	resolveScoring(w, m, cfg, res.Score, res.Events, res.RNG, res.Respawn)
	// Winner detection is read-only and has no state to mutate here; callers
	// check res.Score.HasWinner(cfg.Score.WinScore) after Step returns.
}

// ingestInputs drains the net queue and moves each referenced paddle's y
// toward the input's target y, rate-limited to paddle_speed * dt per
// micro-step, then clamps to the arena bounds. An input naming a player
// with no paddle is silently dropped.
func ingestInputs(w *world.World, nq *world.NetQueue, cfg config.SimConfig, m mapgeo.Map, dt float32) {
	for _, in := range nq.Drain() {
		_, paddle, ok := w.PaddleByPlayer(in.PlayerID)
		if !ok {
			continue
		}
		maxDelta := cfg.Paddle.Speed * dt
		paddle.Y = moveToward(paddle.Y, in.TargetY, maxDelta)
		paddle.Y = m.ClampPaddleY(paddle.Y)
	}
}

func moveToward(current, target, maxDelta float32) float32 {
	diff := target - current
	if diff > maxDelta {
		diff = maxDelta
	} else if diff < -maxDelta {
		diff = -maxDelta
	}
	return current + diff
}

// integrateBall advances every ball entity's position by velocity * dt.
func integrateBall(w *world.World, dt float32) {
	for _, id := range w.QueryBalls() {
		b, _ := w.Ball(id)
		b.X += b.VX * dt
		b.Y += b.VY * dt
	}
}

// resolveCollisions resolves wall and paddle collisions for every ball, in
// that order, per micro-step. Only one paddle hit is resolved per ball per
// micro-step.
func resolveCollisions(w *world.World, m mapgeo.Map, cfg config.SimConfig, events *world.Events) {
	for _, id := range w.QueryBalls() {
		b, _ := w.Ball(id)
		resolveWallCollision(b, m, events)
		for _, pid := range w.QueryPaddles() {
			p, _ := w.Paddle(pid)
			if resolvePaddleCollision(m, cfg, p, b, events) {
				break
			}
		}
	}
}

func resolveWallCollision(b *world.Ball, m mapgeo.Map, events *world.Events) {
	minY, maxY := m.BallYBounds()
	switch {
	case b.Y < minY:
		b.Y = minY
		b.VY = -b.VY
		events.BallHitWall = true
	case b.Y > maxY:
		b.Y = maxY
		b.VY = -b.VY
		events.BallHitWall = true
	}
}

// resolvePaddleCollision tests an AABB-vs-circle hit between paddle p and
// ball b, and if the ball's side and direction indicate it is approaching
// that paddle, reflects and re-speeds it. Returns true if a hit was
// resolved.
func resolvePaddleCollision(m mapgeo.Map, cfg config.SimConfig, p *world.Paddle, b *world.Ball, events *world.Events) bool {
	px := m.PaddleX(p.PlayerID)
	dx := b.X - px
	dy := b.Y - p.Y
	halfW := cfg.Paddle.Width/2 + cfg.Ball.Radius
	halfH := cfg.Paddle.Height/2 + cfg.Ball.Radius
	if absf32(dx) >= halfW || absf32(dy) >= halfH {
		return false
	}

	switch {
	case p.PlayerID == 0 && b.VX < 0:
		b.VX = absf32(b.VX)
		b.X = px + cfg.Paddle.Width/2 + cfg.Ball.Radius
	case p.PlayerID == 1 && b.VX > 0:
		b.VX = -absf32(b.VX)
		b.X = px - cfg.Paddle.Width/2 - cfg.Ball.Radius
	default:
		return false
	}

	scaleBallSpeed(b, cfg.Ball.PaddleHitGain, cfg.Ball.SpeedMax)
	events.BallHitPaddle = true
	return true
}

// scaleBallSpeed multiplies the ball's speed by gain (preserving
// direction), clamped to max. The ball is always moving while Playing, so
// the zero-magnitude case this would otherwise need to guard never
// arises.
func scaleBallSpeed(b *world.Ball, gain, max float32) {
	speed := ballSpeed(b) * gain
	if speed > max {
		speed = max
	}
	cur := ballSpeed(b)
	scale := speed / cur
	b.VX *= scale
	b.VY *= scale
}

func ballSpeed(b *world.Ball) float32 {
	return float32(math.Sqrt(float64(b.VX*b.VX + b.VY*b.VY)))
}

// resolveScoring awards a point and re-serves the ball when it has crossed
// either goal line.
func resolveScoring(w *world.World, m mapgeo.Map, cfg config.SimConfig, score *world.Score, events *world.Events, r *rng.Source, resp *world.RespawnState) {
	for _, id := range w.QueryBalls() {
		b, _ := w.Ball(id)
		switch {
		case m.OutOfBoundsLeft(b.X):
			score.Right++
			events.RightScored = true
			serveBall(b, m, cfg, r)
			resp.LastScorer, resp.HasScored = 1, true
		case m.OutOfBoundsRight(b.X):
			score.Left++
			events.LeftScored = true
			serveBall(b, m, cfg, r)
			resp.LastScorer, resp.HasScored = 0, true
		}
	}
}

// serveBall places the ball at arena center with a freshly randomized
// launch angle: right-going in [-45°,+45°] or left-going in [135°,225°],
// 50/50, at ball_speed_initial magnitude.
func serveBall(b *world.Ball, m mapgeo.Map, cfg config.SimConfig, r *rng.Source) {
	cx, cy := m.Center()
	b.X, b.Y = cx, cy

	var angleDeg float32
	if r.Bool() {
		angleDeg = -45 + r.Float32()*90
	} else {
		angleDeg = 135 + r.Float32()*90
	}
	rad := float64(angleDeg) * math.Pi / 180
	speed := cfg.Ball.SpeedInitial
	b.VX = speed * float32(math.Cos(rad))
	b.VY = speed * float32(math.Sin(rad))
}

// ServeBall places ball at arena center with a freshly randomized launch
// angle and ball_speed_initial magnitude. Exposed for callers that need to
// serve outside of a Step call: a match host's entry into Playing and its
// restart transition both serve a ball before the first tick runs.
func ServeBall(b *world.Ball, m mapgeo.Map, cfg config.SimConfig, r *rng.Source) {
	serveBall(b, m, cfg, r)
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
