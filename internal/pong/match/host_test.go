package match

import (
	"errors"
	"testing"

	"fight-club/internal/config"
	"fight-club/internal/pong/matchlog"
	"fight-club/internal/pong/protocol"
)

type recordingSender struct {
	frames [][]byte
	failNext bool
}

func (s *recordingSender) Send(b []byte) error {
	if s.failNext {
		s.failNext = false
		return errors.New("send failed")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	s.frames = append(s.frames, cp)
	return nil
}

func newTestHost() *Host {
	return NewHost("ABCDE", config.DefaultSim(), config.DefaultMatch(), 1)
}

func TestAddPlayerAssignsAlternatingIDs(t *testing.T) {
	h := newTestHost()
	s1, s2 := &recordingSender{}, &recordingSender{}

	id1, wasFirst1, err := h.AddPlayer(s1)
	if err != nil || id1 != 0 || !wasFirst1 {
		t.Fatalf("expected (0, true, nil), got (%d, %v, %v)", id1, wasFirst1, err)
	}

	id2, wasFirst2, err := h.AddPlayer(s2)
	if err != nil || id2 != 1 || wasFirst2 {
		t.Fatalf("expected (1, false, nil), got (%d, %v, %v)", id2, wasFirst2, err)
	}

	if h.State() != StateCountdown {
		t.Errorf("expected state Countdown after second join, got %s", h.State())
	}
}

func TestAddPlayerRejectsThirdClient(t *testing.T) {
	h := newTestHost()
	h.AddPlayer(&recordingSender{})
	h.AddPlayer(&recordingSender{})

	_, _, err := h.AddPlayer(&recordingSender{})
	if err == nil {
		t.Error("expected capacity error on third join")
	}
}

func TestTickCountdownSequenceAndTransition(t *testing.T) {
	h := newTestHost()
	h.AddPlayer(&recordingSender{})
	sender2 := &recordingSender{}
	h.AddPlayer(sender2)

	h.TickCountdown() // broadcasts 3, remaining -> 2
	h.TickCountdown() // broadcasts 2, remaining -> 1
	h.TickCountdown() // broadcasts 1, remaining -> 0, transitions to Playing + GameStart

	if h.State() != StatePlaying {
		t.Fatalf("expected Playing after countdown completes, got %s", h.State())
	}

	var countdowns []uint8
	sawGameStart := false
	for _, f := range sender2.frames {
		switch f[0] {
		case protocol.TagCountdown:
			countdowns = append(countdowns, f[1])
		case protocol.TagGameStart:
			sawGameStart = true
		}
	}
	if len(countdowns) != 3 || countdowns[0] != 3 || countdowns[1] != 2 || countdowns[2] != 1 {
		t.Errorf("expected countdown sequence [3,2,1], got %v", countdowns)
	}
	if !sawGameStart {
		t.Error("expected a GameStart frame after countdown completes")
	}
}

func TestRemovePlayerDuringCountdownReturnsToWaiting(t *testing.T) {
	h := newTestHost()
	h.AddPlayer(&recordingSender{})
	h.AddPlayer(&recordingSender{})

	h.RemovePlayer(0)

	if h.State() != StateWaiting {
		t.Errorf("expected Waiting after a client leaves during Countdown, got %s", h.State())
	}
}

func TestStepIsNoOpOutsidePlaying(t *testing.T) {
	h := newTestHost()
	h.AddPlayer(&recordingSender{})

	_, over := h.Step()
	if over {
		t.Error("expected Step to be a no-op while Waiting")
	}
}

func TestHandleInputDropsUnknownPlayer(t *testing.T) {
	h := newTestHost()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("HandleInput panicked on unknown player: %v", r)
		}
	}()
	h.HandleInput(9, 5)
}

func TestRestartRequiresBothClientsReady(t *testing.T) {
	h := newTestHost()
	h.AddPlayer(&recordingSender{})
	h.AddPlayer(&recordingSender{})
	h.TickCountdown()
	h.TickCountdown()
	h.TickCountdown()

	// Force a game over by driving the score directly through Step isn't
	// convenient here; simulate GameOver state for the restart handshake.
	h.mu.Lock()
	h.state = StateGameOver
	h.mu.Unlock()

	h.HandleRestart(0)
	if h.State() != StateGameOver {
		t.Fatalf("expected still GameOver after only one client is ready, got %s", h.State())
	}

	h.HandleRestart(1)
	if h.State() != StateCountdown {
		t.Errorf("expected Countdown once both clients are ready, got %s", h.State())
	}
}

func TestLogLimiterDropsExcessEventsWithoutBlockingTheMatch(t *testing.T) {
	h := newTestHost()
	l := matchlog.New()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop()
	h.SetLog(l)

	accepted := 0
	for i := 0; i < maxLogEventsPerSec*2; i++ {
		h.mu.Lock()
		if h.logLimiter.Allow() {
			accepted++
		}
		h.mu.Unlock()
	}

	if accepted == 0 {
		t.Error("expected at least the initial burst to pass the host's own limiter")
	}
	if accepted >= maxLogEventsPerSec*2 {
		t.Error("expected the host's own limiter to drop events beyond its burst")
	}
}

func TestBroadcastDropsFailedSendAndContinues(t *testing.T) {
	h := newTestHost()
	s1, s2 := &recordingSender{}, &recordingSender{}
	h.AddPlayer(s1)
	s1.failNext = true
	h.AddPlayer(s2)

	// AddPlayer's second-join broadcast (MatchFound) should have hit s1's
	// failing send and s2's working one without panicking.
	found := false
	for _, f := range s2.frames {
		if f[0] == protocol.TagMatchFound {
			found = true
		}
	}
	if !found {
		t.Error("expected player 2 to receive MatchFound even though player 1's send failed")
	}
}
