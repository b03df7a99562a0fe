package matchlog

import (
	"bufio"
	"os"
	"testing"
	"time"
)

func TestEmitRejectsBeforeStart(t *testing.T) {
	l := New()
	if l.Emit(NewEvent(EventBallHitWall, "ABCDE", 1, nil)) {
		t.Fatal("expected Emit to reject events before Start")
	}
}

func TestEmitAcceptsAfterStart(t *testing.T) {
	l := New()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop()

	if !l.Emit(NewEvent(EventBallHitPaddle, "ABCDE", 1, nil)) {
		t.Fatal("expected Emit to accept an event after Start")
	}
	total, _ := l.Stats()
	if total != 1 {
		t.Errorf("expected total=1, got %d", total)
	}
}

func TestEmitFlushesToFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "matchlog-*.jsonl")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	l := New()
	if err := l.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	l.EmitSimple(EventLeftScored, "ABCDE", 42, ScorePayload{Left: 1, Right: 0})
	l.Stop() // Stop flushes any buffered events before returning.

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	if lines != 1 {
		t.Fatalf("expected exactly 1 logged line, got %d", lines)
	}
}

func TestGlobalRateLimitDropsExcessEvents(t *testing.T) {
	l := New()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop()

	accepted := 0
	for i := 0; i < maxEventsPerSec*2; i++ {
		if l.Emit(NewEvent(EventBallHitWall, "ABCDE", uint32(i), nil)) {
			accepted++
		}
	}
	_, dropped := l.Stats()
	if dropped == 0 {
		t.Error("expected the global rate limit to drop at least one burst event")
	}
	if accepted == 0 {
		t.Error("expected at least the initial burst to be accepted")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := New()
	if err := l.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	l.Stop()
	l.Stop() // must not panic or double-close stopChan

	time.Sleep(time.Millisecond) // let any stray goroutine settle
}
