package api

import (
	"testing"

	"fight-club/internal/config"
	"fight-club/internal/pong/match"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(config.DefaultSim(), config.DefaultMatch())
}

func TestCreateAssignsUniqueFiveCharCode(t *testing.T) {
	reg := newTestRegistry(t)

	host, err := reg.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer host.Stop()

	if len(host.Code()) != codeLength {
		t.Fatalf("expected a %d-char code, got %q", codeLength, host.Code())
	}
	if _, ok := reg.Lookup(host.Code()); !ok {
		t.Fatal("expected newly created match to be looked up by its own code")
	}
}

func TestCreateRejectsOverCapacity(t *testing.T) {
	cfg := config.DefaultMatch()
	cfg.MaxMatches = 1
	reg := NewRegistry(config.DefaultSim(), cfg)

	host, err := reg.Create()
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	defer host.Stop()

	if _, err := reg.Create(); err == nil {
		t.Fatal("expected second Create to be rejected at capacity 1")
	}
}

func TestLookupUnknownCodeFails(t *testing.T) {
	reg := newTestRegistry(t)
	if _, ok := reg.Lookup("ZZZZZ"); ok {
		t.Fatal("expected lookup of an unregistered code to fail")
	}
}

func TestSummariesReportsLiveMatchState(t *testing.T) {
	reg := newTestRegistry(t)
	host, err := reg.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer host.Stop()

	summaries := reg.Summaries()
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Code != host.Code() {
		t.Errorf("expected code %q, got %q", host.Code(), s.Code)
	}
	if s.State != "waiting" {
		t.Errorf("expected state %q, got %q", "waiting", s.State)
	}
	if s.Players != 0 {
		t.Errorf("expected 0 players, got %d", s.Players)
	}
	if s.AgeSecond < 0 {
		t.Errorf("expected non-negative age, got %v", s.AgeSecond)
	}
}

func TestSweepKeepsMatchThatNeverReachedGameOver(t *testing.T) {
	reg := newTestRegistry(t)
	host, err := reg.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	host.Stop()

	// A freshly created match starts Waiting, not GameOver, so Sweep must
	// leave it registered regardless of its (already zero) player count.
	if host.State() != match.StateWaiting {
		t.Fatalf("expected a freshly created match to start Waiting, got %s", host.State())
	}

	reg.Sweep()
	if _, ok := reg.Lookup(host.Code()); !ok {
		t.Fatal("Sweep must not remove a match that never reached GameOver")
	}
}
