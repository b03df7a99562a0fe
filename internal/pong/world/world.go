// Package world implements the entity-component store shared by the match
// host and the client predictor. Entities are opaque ids; all state lives
// in per-kind component maps. The one invariant callers must respect: any
// query whose results feed back into a mutation must iterate entities in
// id order, so that two runs given identical inputs produce byte-identical
// trajectories regardless of Go's unspecified map iteration order.
package world

import "golang.org/x/exp/slices"

// EntityID is an opaque handle into the World. Zero is never issued by
// Spawn, so it doubles as a "no entity" sentinel for callers that track an
// id in a struct field.
type EntityID uint32

// Paddle is the paddle component: which player owns it, and its current
// vertical position. Clamping to the arena happens in the sim's ingest
// system, not here — the component itself carries no invariants.
type Paddle struct {
	PlayerID uint8
	Y        float32
}

// Ball is the ball component: position and velocity. Exactly one Ball
// entity exists during Playing; the simulation resets this component's
// values on score rather than despawning the entity.
type Ball struct {
	X, Y   float32
	VX, VY float32
}

// World is an entity store. It is not safe for concurrent use — it is
// private to its owner, a match host or a predictor, and never shared
// across goroutines.
type World struct {
	nextID EntityID
	alive  map[EntityID]struct{}

	paddles map[EntityID]*Paddle
	balls   map[EntityID]*Ball
}

// New returns an empty World.
func New() *World {
	return &World{
		alive:   make(map[EntityID]struct{}),
		paddles: make(map[EntityID]*Paddle),
		balls:   make(map[EntityID]*Ball),
	}
}

// Spawn creates a new entity and returns its id. The id is never reused
// within the lifetime of this World.
func (w *World) Spawn() EntityID {
	w.nextID++
	id := w.nextID
	w.alive[id] = struct{}{}
	return id
}

// Despawn removes an entity and all of its components.
func (w *World) Despawn(id EntityID) {
	delete(w.alive, id)
	delete(w.paddles, id)
	delete(w.balls, id)
}

// Clear removes every entity, resetting the World to empty. nextID is
// preserved so ids remain unique across a match restart.
func (w *World) Clear() {
	w.alive = make(map[EntityID]struct{})
	w.paddles = make(map[EntityID]*Paddle)
	w.balls = make(map[EntityID]*Ball)
}

// InsertPaddle attaches (or replaces) the Paddle component on id.
func (w *World) InsertPaddle(id EntityID, p Paddle) {
	if _, ok := w.alive[id]; !ok {
		return
	}
	w.paddles[id] = &p
}

// InsertBall attaches (or replaces) the Ball component on id.
func (w *World) InsertBall(id EntityID, b Ball) {
	if _, ok := w.alive[id]; !ok {
		return
	}
	w.balls[id] = &b
}

// Paddle returns a mutable reference to id's Paddle component, or false if
// it has none.
func (w *World) Paddle(id EntityID) (*Paddle, bool) {
	p, ok := w.paddles[id]
	return p, ok
}

// Ball returns a mutable reference to id's Ball component, or false if it
// has none.
func (w *World) Ball(id EntityID) (*Ball, bool) {
	b, ok := w.balls[id]
	return b, ok
}

// QueryPaddles returns the ids of every entity with a Paddle component, in
// ascending id order. Ordering is the determinism contract every system
// iterating paddles must honor.
func (w *World) QueryPaddles() []EntityID {
	ids := make([]EntityID, 0, len(w.paddles))
	for id := range w.paddles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// QueryBalls returns the ids of every entity with a Ball component, in
// ascending id order.
func (w *World) QueryBalls() []EntityID {
	ids := make([]EntityID, 0, len(w.balls))
	for id := range w.balls {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PaddleByPlayer returns the id and component for the paddle owned by
// playerID, or false if no such paddle exists. Iterates in id order so
// that the (unreachable in practice, since at most one paddle per player
// is an invariant) tie-break case is still deterministic.
func (w *World) PaddleByPlayer(playerID uint8) (EntityID, *Paddle, bool) {
	for _, id := range w.QueryPaddles() {
		p := w.paddles[id]
		if p.PlayerID == playerID {
			return id, p, true
		}
	}
	return 0, nil, false
}
