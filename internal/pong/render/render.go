// Package render holds the client's render-side interpolation state: two
// consecutive server snapshots, a smoothed ball display position, and the
// interpolation clock driving both. None of this feeds back into the
// simulation — it only exists to make network snapshots look smooth on
// screen.
package render

import "fight-club/internal/pong/protocol"

// interpolationWindow is 2x the server's broadcast cadence (50ms), chosen
// to absorb jitter without adding visible lag. This is the floor; SetLatency
// widens it adaptively under poor network conditions.
const interpolationWindow = 0.100

// maxInterpolationWindow bounds how far SetLatency can widen the window,
// however high the reported latency, since a window wide enough to hide
// multi-hundred-millisecond latency would itself look like input lag.
const maxInterpolationWindow = 0.300

// ballSmoothing is the exponential-smoothing factor applied to the ball's
// display position each frame.
const ballSmoothing = 0.3

// GameState owns the render-side view of a match: the last two
// authoritative snapshots, and a ball display position that converges to
// an extrapolated target rather than snapping.
type GameState struct {
	previous protocol.GameStateSnapshot
	current  protocol.GameStateSnapshot
	haveAny  bool

	timeSinceUpdate float32
	window          float32

	ballDisplayX float32
	ballDisplayY float32
}

// New returns an empty GameState; call SetCurrent with the first snapshot
// before reading paddle/ball display values.
func New() *GameState {
	return &GameState{window: interpolationWindow}
}

// SetLatency widens the interpolation window under higher round-trip
// latency (fed by predictor.LatencyTracker.RollingAverageMs), so jitter on
// a slow connection doesn't show up as visible paddle/ball snapping. Never
// narrows below the base window or past maxInterpolationWindow, and never
// touches simulation state — display smoothing only.
func (g *GameState) SetLatency(rttMs uint32) {
	extra := float32(rttMs) / 1000
	w := interpolationWindow + extra
	if w > maxInterpolationWindow {
		w = maxInterpolationWindow
	}
	g.window = w
}

// SetCurrent rotates previous <- current, stores snap as the new current,
// and resets the interpolation clock to 0. The ball display position is
// left untouched — it converges toward the new snapshot smoothly rather
// than snapping, except on the very first snapshot where there is no
// "previous" to interpolate from.
func (g *GameState) SetCurrent(snap protocol.GameStateSnapshot) {
	if !g.haveAny {
		g.previous = snap
		g.ballDisplayX = snap.BallX
		g.ballDisplayY = snap.BallY
		g.haveAny = true
	} else {
		g.previous = g.current
	}
	g.current = snap
	g.timeSinceUpdate = 0
}

// Advance moves the interpolation clock forward by dt seconds and updates
// the smoothed ball display position toward its extrapolated target. Call
// once per render frame.
func (g *GameState) Advance(dt float32) {
	g.timeSinceUpdate += dt
	tx, ty := g.extrapolatedBallTarget()
	g.ballDisplayX += (tx - g.ballDisplayX) * ballSmoothing
	g.ballDisplayY += (ty - g.ballDisplayY) * ballSmoothing
}

// alpha is the paddle interpolation factor, clamped to [0, 1].
func (g *GameState) alpha() float32 {
	a := g.timeSinceUpdate / g.window
	if a > 1 {
		a = 1
	}
	if a < 0 {
		a = 0
	}
	return a
}

// PaddleLeftY returns the interpolated left paddle y.
func (g *GameState) PaddleLeftY() float32 {
	return lerp(g.previous.PaddleLeftY, g.current.PaddleLeftY, g.alpha())
}

// PaddleRightY returns the interpolated right paddle y.
func (g *GameState) PaddleRightY() float32 {
	return lerp(g.previous.PaddleRightY, g.current.PaddleRightY, g.alpha())
}

// BallDisplay returns the smoothed ball display position.
func (g *GameState) BallDisplay() (x, y float32) {
	return g.ballDisplayX, g.ballDisplayY
}

// Score returns the latest known score.
func (g *GameState) Score() (left, right uint8) {
	return g.current.ScoreLeft, g.current.ScoreRight
}

// Tick returns the latest known server tick.
func (g *GameState) Tick() uint32 {
	return g.current.Tick
}

// extrapolatedBallTarget projects the current snapshot's ball forward by
// time_since_update, capped at the interpolation window.
func (g *GameState) extrapolatedBallTarget() (x, y float32) {
	dt := g.timeSinceUpdate
	if dt > g.window {
		dt = g.window
	}
	x = g.current.BallX + g.current.BallVX*dt
	y = g.current.BallY + g.current.BallVY*dt
	return x, y
}

func lerp(a, b, alpha float32) float32 {
	return a + (b-a)*alpha
}
