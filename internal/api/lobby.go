package api

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"fight-club/internal/config"
	"fight-club/internal/pong/match"
	"fight-club/internal/pong/matchlog"
)

// codeAlphabet is the character set match codes are drawn from: upper-case
// letters and digits, chosen for readability when a player types a code
// read off another screen.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength is the fixed width of a match code, matching the wire
// protocol's Join message field.
const codeLength = 5

// Registry owns every live match, keyed by its join code. It is the
// lobby's single source of truth for "does this match exist" and "is it
// still accepting players".
type Registry struct {
	mu        sync.Mutex
	matches   map[string]*match.Host
	createdAt map[string]time.Time
	simCfg    config.SimConfig
	matchCfg  config.MatchConfig
	log       *matchlog.Log
}

// NewRegistry returns an empty match registry.
func NewRegistry(simCfg config.SimConfig, matchCfg config.MatchConfig) *Registry {
	return &Registry{
		matches:   make(map[string]*match.Host),
		createdAt: make(map[string]time.Time),
		simCfg:    simCfg,
		matchCfg:  matchCfg,
	}
}

// MatchSummary is a spectator-safe, read-only view of one live match: no
// positions, scores, or player identities, just enough for an operational
// "what's the lobby doing" view.
type MatchSummary struct {
	Code      string  `json:"code"`
	State     string  `json:"state"`
	Players   int     `json:"players"`
	AgeSecond float64 `json:"age_seconds"`
}

// SetLog attaches the process-wide event log every match this registry
// creates from now on will emit to. Matches already created before this
// call are not retroactively attached.
func (reg *Registry) SetLog(l *matchlog.Log) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.log = l
}

// Create allocates a new match with a fresh unique code, starts its tick
// scheduler, and registers it. Rejects once the configured match cap is
// reached (DoS protection against unbounded match creation).
func (reg *Registry) Create() (*match.Host, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.matches) >= reg.matchCfg.MaxMatches {
		return nil, fmt.Errorf("lobby: match capacity reached (%d)", reg.matchCfg.MaxMatches)
	}

	code, err := reg.newUniqueCodeLocked()
	if err != nil {
		return nil, fmt.Errorf("lobby: generating match code: %w", err)
	}

	seed := time.Now().UnixNano()
	host := match.NewHost(code, reg.simCfg, reg.matchCfg, seed)
	if reg.log != nil {
		host.SetLog(reg.log)
	}
	reg.matches[code] = host
	reg.createdAt[code] = time.Now()
	host.Start()

	return host, nil
}

// Lookup returns the match registered under code, if any.
func (reg *Registry) Lookup(code string) (*match.Host, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	h, ok := reg.matches[code]
	return h, ok
}

// Count returns the number of currently registered matches.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.matches)
}

// Sweep removes finished matches (GameOver with no connected clients)
// from the registry and stops their schedulers. Intended to run
// periodically from the lobby's housekeeping loop.
func (reg *Registry) Sweep() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for code, host := range reg.matches {
		if host.State() == match.StateGameOver && host.PlayerCount() == 0 {
			host.Stop()
			delete(reg.matches, code)
			delete(reg.createdAt, code)
		}
	}
}

// Summaries returns a spectator-safe snapshot of every live match, for the
// operational "what's the lobby doing" endpoint.
func (reg *Registry) Summaries() []MatchSummary {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]MatchSummary, 0, len(reg.matches))
	now := time.Now()
	for code, host := range reg.matches {
		out = append(out, MatchSummary{
			Code:      code,
			State:     host.State().String(),
			Players:   host.PlayerCount(),
			AgeSecond: now.Sub(reg.createdAt[code]).Seconds(),
		})
	}
	return out
}

func (reg *Registry) newUniqueCodeLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, exists := reg.matches[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("exhausted attempts to find a free match code")
}

func randomCode() (string, error) {
	b := make([]byte, codeLength)
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
