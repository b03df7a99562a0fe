// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server tuning.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ARENA CONFIGURATION
// =============================================================================

// ArenaConfig holds the playfield dimensions. Units are arbitrary "world
// units", shared by the server simulation and the client predictor so both
// sides agree on bounds without unit conversion at the wire boundary.
type ArenaConfig struct {
	Width  float32
	Height float32
}

// DefaultArena returns the canonical arena dimensions.
func DefaultArena() ArenaConfig {
	return ArenaConfig{Width: 32.0, Height: 24.0}
}

// =============================================================================
// PADDLE CONFIGURATION
// =============================================================================

// PaddleConfig holds paddle geometry and movement tuning.
type PaddleConfig struct {
	Width    float32
	Height   float32
	Speed    float32 // units/sec
	LeftX    float32 // left paddle's fixed x position
	RightX   float32 // right paddle's fixed x position
}

// DefaultPaddle returns the canonical paddle tuning.
func DefaultPaddle(arena ArenaConfig) PaddleConfig {
	return PaddleConfig{
		Width:  0.8,
		Height: 4.0,
		Speed:  18.0,
		LeftX:  1.5,
		RightX: arena.Width - 1.5,
	}
}

// =============================================================================
// BALL CONFIGURATION
// =============================================================================

// BallConfig holds ball geometry and speed tuning.
type BallConfig struct {
	Radius          float32
	SpeedInitial    float32
	SpeedMax        float32
	PaddleHitGain   float32 // multiplier applied to |v| on a paddle hit
}

// DefaultBall returns the canonical ball tuning.
func DefaultBall() BallConfig {
	return BallConfig{
		Radius:        0.5,
		SpeedInitial:  12.0,
		SpeedMax:      24.0,
		PaddleHitGain: 1.05,
	}
}

// =============================================================================
// SCORE CONFIGURATION
// =============================================================================

// ScoreConfig holds the win condition.
type ScoreConfig struct {
	WinScore uint8
}

// DefaultScore returns the canonical win condition.
func DefaultScore() ScoreConfig {
	return ScoreConfig{WinScore: 5}
}

// =============================================================================
// STEP (SIMULATION) CONFIGURATION
// =============================================================================

// StepConfig holds the fixed-timestep simulation tuning.
type StepConfig struct {
	FixedDT float32 // duration of one simulation micro-step, seconds
	MaxDT   float32 // upper bound on a single Step() call's delta, seconds
}

// DefaultStep returns the canonical step tuning.
func DefaultStep() StepConfig {
	return StepConfig{FixedDT: 0.0166, MaxDT: 0.1}
}

// =============================================================================
// SIM CONFIGURATION (aggregate passed to every Step call)
// =============================================================================

// SimConfig aggregates every tuning constant the simulation needs. This is
// the bit-exact contract shared between the match host and the client
// predictor — both must construct it identically for trajectories to match.
type SimConfig struct {
	Arena  ArenaConfig
	Paddle PaddleConfig
	Ball   BallConfig
	Score  ScoreConfig
	Step   StepConfig
}

// DefaultSim returns the canonical simulation configuration.
func DefaultSim() SimConfig {
	arena := DefaultArena()
	return SimConfig{
		Arena:  arena,
		Paddle: DefaultPaddle(arena),
		Ball:   DefaultBall(),
		Score:  DefaultScore(),
		Step:   DefaultStep(),
	}
}

// =============================================================================
// MATCH HOST CONFIGURATION
// =============================================================================

// MatchConfig controls match lifecycle timing and resource limits.
type MatchConfig struct {
	CountdownSeconds int           // seconds counted down before Playing
	TickRate         int           // simulation ticks per second (60 Hz)
	BroadcastRate    int           // S2C GameState broadcasts per second (20 Hz)
	IdleTimeout      time.Duration // disconnect a client after this much inactivity
	ReconcileMaxGap  uint32        // predicted_tick - server_tick beyond which the predictor resets
	MaxMatches       int           // hard cap on concurrently hosted matches (DoS protection)
}

// DefaultMatch returns the canonical match host tuning.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		CountdownSeconds: 3,
		TickRate:         60,
		BroadcastRate:    20,
		IdleTimeout:      30 * time.Second,
		ReconcileMaxGap:  20,
		MaxMatches:       10_000,
	}
}

// MatchFromEnv returns match configuration with environment variable overrides.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if v := getEnvInt("MATCH_COUNTDOWN_SECONDS", 0); v > 0 {
		cfg.CountdownSeconds = v
	}
	if v := getEnvInt("MATCH_IDLE_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.IdleTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvInt("MATCH_MAX", 0); v > 0 {
		cfg.MaxMatches = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WS server settings.
type ServerConfig struct {
	Port int

	// CORSOrigins lists the origins allowed to open a WebSocket or call the
	// lobby HTTP API. Empty means "local development": localhost on any
	// port, nothing else.
	CORSOrigins []string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Port: 8080}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := getEnvList("CORS_ORIGINS", nil); origins != nil {
		cfg.CORSOrigins = origins
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Match  MatchConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
//
// Sim is intentionally NOT environment-overridable: the tuning constants
// are a bit-exact contract between server and client (see SimConfig), and
// letting deploy-time env vars drift it from the client build would break
// that contract silently.
func Load() AppConfig {
	return AppConfig{
		Sim:    DefaultSim(),
		Match:  MatchFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvList parses a comma-separated env var into a trimmed string slice.
// Returns defaultVal if the var is unset or empty.
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
