package render

import (
	"testing"

	"fight-club/internal/pong/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleInterpolationAtFullAlphaEqualsCurrent(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 5, PaddleRightY: 5})
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 10, PaddleRightY: 20})

	g.Advance(interpolationWindow) // time_since_update == window -> alpha == 1.0

	assert.InDelta(t, float32(10), g.PaddleLeftY(), 1e-6, "left paddle at alpha=1.0 should equal current")
	assert.InDelta(t, float32(20), g.PaddleRightY(), 1e-6, "right paddle at alpha=1.0 should equal current")
}

func TestPaddleInterpolationAtZeroAlphaEqualsPrevious(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 5})
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 10})

	assert.InDelta(t, float32(5), g.PaddleLeftY(), 1e-6, "left paddle at alpha=0 should equal previous")
}

func TestAlphaClampsBeyondWindow(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 0})
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 100})

	g.Advance(interpolationWindow * 10)

	assert.InDelta(t, float32(100), g.PaddleLeftY(), 1e-6, "alpha clamp should keep paddle at current")
}

func TestBallDisplayConvergesWithoutSnapping(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{BallX: 16, BallY: 12})
	g.SetCurrent(protocol.GameStateSnapshot{BallX: 20, BallY: 12, BallVX: 0, BallVY: 0})

	x0, _ := g.BallDisplay()
	require.InDelta(t, float32(16), x0, 1e-6, "ball display should start at the old position")

	g.Advance(0.016)
	x1, _ := g.BallDisplay()
	assert.Greater(t, x1, x0, "ball display should move toward target, not stay put")
	assert.Less(t, x1, float32(20), "ball display should not snap straight to target")
}

func TestSetLatencyWidensInterpolationWindow(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 0})
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 10})

	g.SetLatency(150) // +150ms over the 100ms base window
	g.Advance(interpolationWindow)

	assert.Less(t, g.alpha(), float32(1), "a widened window should not yet be at alpha=1 after only the base window elapsed")
}

func TestSetLatencyClampsToMaxWindow(t *testing.T) {
	g := New()
	g.SetLatency(10_000) // absurdly high RTT
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 0})
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 10})

	g.Advance(maxInterpolationWindow)
	assert.InDelta(t, float32(1), g.alpha(), 1e-6, "window should clamp at maxInterpolationWindow, not grow unbounded")
}

func TestSetCurrentResetsInterpolationClock(t *testing.T) {
	g := New()
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 0})
	g.Advance(interpolationWindow)
	g.SetCurrent(protocol.GameStateSnapshot{PaddleLeftY: 10})

	assert.Zero(t, g.alpha(), "alpha should reset to 0 after SetCurrent")
}
