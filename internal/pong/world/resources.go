package world

// Time is the world-scoped clock resource. dt is the duration of the
// current Step() call before micro-step splitting; now accumulates actual
// simulated time (the sum of consumed micro-step durations, which can
// differ slightly from dt when MAX_DT clamps a slow caller).
type Time struct {
	DT  float32
	Now float32
}

// Score is the world-scoped scoreboard resource. Values are monotonic
// non-decreasing within a match; Reset() is the only way they go back to
// zero (on rematch).
type Score struct {
	Left  uint8
	Right uint8
}

// Reset zeroes the score, for a rematch.
func (s *Score) Reset() {
	s.Left = 0
	s.Right = 0
}

// HasWinner reports whether either side has reached winScore, and if so,
// which side (0 = left, 1 = right).
func (s *Score) HasWinner(winScore uint8) (side uint8, ok bool) {
	if s.Left >= winScore {
		return 0, true
	}
	if s.Right >= winScore {
		return 1, true
	}
	return 0, false
}

// Events is the per-tick scratch resource. Every field is cleared at the
// start of each micro-step and set at most once by the system that
// observes the corresponding event within that micro-step.
type Events struct {
	BallHitWall   bool
	BallHitPaddle bool
	LeftScored    bool
	RightScored   bool
}

// Clear zeroes every event flag.
func (e *Events) Clear() {
	*e = Events{}
}

// Input is one queued (player, target-y) instruction. The wire's C2S
// Input message carries a target y directly; queueing the target rather
// than a direction keeps the server's ingest system and the client's
// local-tick ingest system identical.
type Input struct {
	PlayerID uint8
	TargetY  float32
}

// NetQueue is the ordered pending-input resource drained once per
// micro-step by the ingest system. Inputs from one client are appended in
// arrival order and consumed in that same order.
type NetQueue struct {
	pending []Input
}

// Push appends an input to the end of the queue.
func (q *NetQueue) Push(in Input) {
	q.pending = append(q.pending, in)
}

// Drain returns and clears all pending inputs, in arrival order.
func (q *NetQueue) Drain() []Input {
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// RespawnState is opaque per-match scratch used by sim systems that need
// state across ticks beyond what Score/Events carry. Remembering which
// side serves next isn't needed today, since serve angle is re-randomized
// every point regardless of scorer, but the slot exists so a future system
// (e.g. serve alternation) doesn't need a World shape change.
type RespawnState struct {
	LastScorer uint8 // 0 = left, 1 = right; meaningful only after first score
	HasScored  bool
}
