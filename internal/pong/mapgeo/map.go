// Package mapgeo describes the Pong arena: its bounds, the paddles' fixed
// x positions, and the bounds queries the simulation needs each tick. It
// holds no mutable state — every method is a pure function of a Map value
// and the config it was built from.
package mapgeo

import "fight-club/internal/config"

// Map is the arena geometry: a rectangle [0,W]x[0,H] plus the two fixed
// paddle x-columns derived from config.
type Map struct {
	Width, Height float32
	LeftX, RightX float32
	PaddleWidth   float32
	PaddleHeight  float32
	BallRadius    float32
}

// New builds a Map from the simulation config.
func New(cfg config.SimConfig) Map {
	return Map{
		Width:        cfg.Arena.Width,
		Height:       cfg.Arena.Height,
		LeftX:        cfg.Paddle.LeftX,
		RightX:       cfg.Paddle.RightX,
		PaddleWidth:  cfg.Paddle.Width,
		PaddleHeight: cfg.Paddle.Height,
		BallRadius:   cfg.Ball.Radius,
	}
}

// Center returns the arena's center point, where the ball is placed on
// match init and after every score.
func (m Map) Center() (x, y float32) {
	return m.Width / 2, m.Height / 2
}

// PaddleYBounds returns the inclusive [min, max] range a paddle's y may
// occupy so the whole paddle stays within the arena.
func (m Map) PaddleYBounds() (min, max float32) {
	half := m.PaddleHeight / 2
	return half, m.Height - half
}

// ClampPaddleY clamps y to PaddleYBounds.
func (m Map) ClampPaddleY(y float32) float32 {
	min, max := m.PaddleYBounds()
	if y < min {
		return min
	}
	if y > max {
		return max
	}
	return y
}

// BallYBounds returns the inclusive [min, max] range the ball's center may
// occupy after wall-collision resolution.
func (m Map) BallYBounds() (min, max float32) {
	return m.BallRadius, m.Height - m.BallRadius
}

// ClampBallY clamps y to BallYBounds.
func (m Map) ClampBallY(y float32) float32 {
	min, max := m.BallYBounds()
	if y < min {
		return min
	}
	if y > max {
		return max
	}
	return y
}

// PaddleX returns the fixed x column for a player's paddle.
// playerID 0 is left; any other value (normally 1) is right.
func (m Map) PaddleX(playerID uint8) float32 {
	if playerID == 0 {
		return m.LeftX
	}
	return m.RightX
}

// OutOfBoundsLeft reports whether a ball at x has crossed past the left
// edge, awarding a point to the right side.
func (m Map) OutOfBoundsLeft(x float32) bool {
	return x < 0
}

// OutOfBoundsRight reports whether a ball at x has crossed past the right
// edge, awarding a point to the left side.
func (m Map) OutOfBoundsRight(x float32) bool {
	return x > m.Width
}
