// Package fsm implements the UI-facing state machine: a pure function
// from (state, action) to (state, action-to-perform). It holds no
// simulation state and knows nothing about the network — it exists so
// the rest of the client can ask "is this button allowed right now" and
// get a straight answer.
package fsm

// State is a UI lifecycle state.
type State uint8

const (
	Idle State = iota
	CountdownLocal
	PlayingLocal
	Connecting
	Waiting
	CountdownMulti
	PlayingMulti
	GameOverLocal
	GameOverMulti
	Disconnected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CountdownLocal:
		return "countdown_local"
	case PlayingLocal:
		return "playing_local"
	case Connecting:
		return "connecting"
	case Waiting:
		return "waiting"
	case CountdownMulti:
		return "countdown_multi"
	case PlayingMulti:
		return "playing_multi"
	case GameOverLocal:
		return "game_over_local"
	case GameOverMulti:
		return "game_over_multi"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Action is a UI-triggered or network-triggered event fed into the FSM.
type Action uint8

const (
	StartLocal Action = iota
	CreateMatch
	JoinMatch
	CountdownDone
	Quit
	GameOver
	Connected
	ConnectionFailed
	OpponentJoined
	Disconnect
	Leave
	PlayAgain
	RematchStarted
)

// transitions maps (state, action) to the destination state. Missing
// entries are rejected.
var transitions = map[State]map[Action]State{
	Idle: {
		StartLocal:  CountdownLocal,
		CreateMatch: Connecting,
		JoinMatch:   Connecting,
	},
	CountdownLocal: {
		CountdownDone: PlayingLocal,
		Quit:          Idle,
	},
	PlayingLocal: {
		GameOver: GameOverLocal,
		Quit:     Idle,
	},
	Connecting: {
		Connected:        Waiting,
		ConnectionFailed: Idle,
	},
	Waiting: {
		OpponentJoined: CountdownMulti,
		Disconnect:     Idle,
		Leave:          Idle,
	},
	CountdownMulti: {
		CountdownDone: PlayingMulti,
		Disconnect:    Disconnected,
	},
	PlayingMulti: {
		GameOver:   GameOverMulti,
		Disconnect: Disconnected,
	},
	GameOverLocal: {
		PlayAgain: CountdownLocal,
		Leave:     Idle,
	},
	GameOverMulti: {
		RematchStarted: CountdownMulti,
		Disconnect:     Disconnected,
		Leave:          Idle,
	},
	Disconnected: {
		Leave: Idle,
	},
}

// Transition attempts (from, action) and reports (success, from, to,
// action). On rejection, to equals from and success is false — the FSM
// never mutates on an invalid transition.
func Transition(from State, action Action) (success bool, resultFrom State, to State, resultAction Action) {
	if byAction, ok := transitions[from]; ok {
		if dest, ok := byAction[action]; ok {
			return true, from, dest, action
		}
	}
	return false, from, from, action
}

// Machine wraps Transition with a held current state, for callers that
// want a stateful handle rather than threading State through every call.
type Machine struct {
	state State
}

// NewMachine returns a Machine starting in Idle.
func NewMachine() *Machine {
	return &Machine{state: Idle}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.state
}

// Apply attempts action against the machine's current state, mutating it
// on success. Returns the same (success, from, to, action) tuple
// Transition does.
func (m *Machine) Apply(action Action) (success bool, from State, to State, resultAction Action) {
	success, from, to, resultAction = Transition(m.state, action)
	if success {
		m.state = to
	}
	return success, from, to, resultAction
}
