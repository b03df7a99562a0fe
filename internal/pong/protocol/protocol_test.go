package protocol

import "testing"

func TestDecodeClientRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		enc  []byte
	}{
		{"join", mustJoin(t, "ABC12")},
		{"input", EncodeInput(1, 12.5, 42)},
		{"restart", EncodeRestart()},
		{"ping", EncodePing(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeClientMessage(tt.enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Tag != tt.enc[0] {
				t.Errorf("expected tag %d, got %d", tt.enc[0], msg.Tag)
			}
		})
	}
}

func mustJoin(t *testing.T, code string) []byte {
	t.Helper()
	b, err := EncodeJoin(code)
	if err != nil {
		t.Fatalf("EncodeJoin: %v", err)
	}
	return b
}

func TestDecodeClientInputFields(t *testing.T) {
	enc := EncodeInput(1, 12.5, 42)
	msg, err := DecodeClientMessage(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Input.PlayerID != 1 || msg.Input.Y != 12.5 || msg.Input.Seq != 42 {
		t.Errorf("unexpected decoded input: %+v", msg.Input)
	}
}

func TestDecodeClientJoinFields(t *testing.T) {
	enc := mustJoin(t, "ABC12")
	msg, err := DecodeClientMessage(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(msg.Join.Code[:]) != "ABC12" {
		t.Errorf("expected code ABC12, got %q", msg.Join.Code[:])
	}
}

func TestDecodeClientRejectsMalformedFrames(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{0xFF}},
		{"join wrong length", []byte{TagJoin, 'A', 'B'}},
		{"input wrong length", []byte{TagInput, 0}},
		{"restart with trailing bytes", []byte{TagRestart, 0}},
		{"ping wrong length", []byte{TagPing, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeClientMessage(tt.b); err == nil {
				t.Error("expected a protocol-decode error, got nil")
			}
		})
	}
}

func TestDecodeServerGameStateRoundTrip(t *testing.T) {
	snap := GameStateSnapshot{
		Tick:         7,
		BallX:        16,
		BallY:        12,
		BallVX:       -8.25,
		BallVY:       3.5,
		PaddleLeftY:  10,
		PaddleRightY: 14,
		ScoreLeft:    2,
		ScoreRight:   1,
	}
	enc := EncodeGameState(snap)
	msg, err := DecodeServerMessage(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.GameState != snap {
		t.Errorf("round-trip mismatch: got %+v, want %+v", msg.GameState, snap)
	}
}

func TestDecodeServerSimpleVariants(t *testing.T) {
	tests := []struct {
		name string
		enc  []byte
	}{
		{"welcome", EncodeWelcome(1)},
		{"match_found", EncodeMatchFound()},
		{"countdown", EncodeCountdown(3)},
		{"game_start", EncodeGameStart()},
		{"game_over", EncodeGameOver(0)},
		{"opponent_disconnected", EncodeOpponentDisconnected()},
		{"pong", EncodePong(500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeServerMessage(tt.enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Tag != tt.enc[0] {
				t.Errorf("expected tag %d, got %d", tt.enc[0], msg.Tag)
			}
		})
	}
}

func TestEncodeJoinRejectsWrongLength(t *testing.T) {
	if _, err := EncodeJoin("AB"); err == nil {
		t.Error("expected error for short join code")
	}
}
