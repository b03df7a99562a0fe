// Package protocol implements the binary tagged-union wire format shared
// by every client and the match host: a single variant-tag byte followed
// by that variant's fields in declaration order, little-endian, no
// padding. There is no length prefix — frame boundaries are the
// transport's job (one websocket message per encoded value).
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Client-to-server variant tags.
const (
	TagJoin uint8 = iota
	TagInput
	TagRestart
	TagPing
)

// Server-to-client variant tags.
const (
	TagWelcome uint8 = iota
	TagMatchFound
	TagCountdown
	TagGameStart
	TagGameState
	TagGameOver
	TagOpponentDisconnected
	TagPong
)

// codeLen is the fixed width of a match code field on the wire.
const codeLen = 5

// ClientMessage is the tagged-union decoded from a client frame. Exactly
// one of the typed fields is meaningful, selected by Tag.
type ClientMessage struct {
	Tag   uint8
	Join  JoinMsg
	Input InputMsg
	Ping  PingMsg
}

// JoinMsg is the Join variant: a 5-character ASCII match code, upper-case.
type JoinMsg struct {
	Code [codeLen]byte
}

// InputMsg is the Input variant: a target paddle y and a monotonic
// sequence number used only for client-side bookkeeping (the wire doesn't
// reorder, but seq lets a client detect gaps in its own send stream).
type InputMsg struct {
	PlayerID uint8
	Y        float32
	Seq      uint32
}

// PingMsg is the Ping variant, echoed back as Pong by the server.
type PingMsg struct {
	TMillis uint32
}

// EncodeJoin encodes a Join message. code must be exactly 5 bytes.
func EncodeJoin(code string) ([]byte, error) {
	if len(code) != codeLen {
		return nil, fmt.Errorf("protocol: join code must be %d bytes, got %d", codeLen, len(code))
	}
	buf := make([]byte, 1+codeLen)
	buf[0] = TagJoin
	copy(buf[1:], code)
	return buf, nil
}

// EncodeInput encodes an Input message.
func EncodeInput(playerID uint8, y float32, seq uint32) []byte {
	buf := make([]byte, 1+1+4+4)
	buf[0] = TagInput
	buf[1] = playerID
	binary.LittleEndian.PutUint32(buf[2:6], math.Float32bits(y))
	binary.LittleEndian.PutUint32(buf[6:10], seq)
	return buf
}

// EncodeRestart encodes a Restart message. Valid only while the match is
// in GameOver; the host silently ignores it otherwise (spec.md's "silent
// no-op" state-invalid policy is the host's concern, not this package's).
func EncodeRestart() []byte {
	return []byte{TagRestart}
}

// EncodePing encodes a Ping message.
func EncodePing(tMillis uint32) []byte {
	buf := make([]byte, 1+4)
	buf[0] = TagPing
	binary.LittleEndian.PutUint32(buf[1:5], tMillis)
	return buf
}

// DecodeClientMessage decodes a client frame. A malformed or unrecognized
// frame is a protocol-decode error; callers drop the frame (and may
// disconnect) rather than panic.
func DecodeClientMessage(b []byte) (ClientMessage, error) {
	if len(b) < 1 {
		return ClientMessage{}, fmt.Errorf("protocol: empty frame")
	}
	tag := b[0]
	body := b[1:]

	switch tag {
	case TagJoin:
		if len(body) != codeLen {
			return ClientMessage{}, fmt.Errorf("protocol: join frame wrong length: %d", len(body))
		}
		var msg JoinMsg
		copy(msg.Code[:], body)
		return ClientMessage{Tag: tag, Join: msg}, nil

	case TagInput:
		if len(body) != 9 {
			return ClientMessage{}, fmt.Errorf("protocol: input frame wrong length: %d", len(body))
		}
		return ClientMessage{Tag: tag, Input: InputMsg{
			PlayerID: body[0],
			Y:        math.Float32frombits(binary.LittleEndian.Uint32(body[1:5])),
			Seq:      binary.LittleEndian.Uint32(body[5:9]),
		}}, nil

	case TagRestart:
		if len(body) != 0 {
			return ClientMessage{}, fmt.Errorf("protocol: restart frame carries unexpected bytes")
		}
		return ClientMessage{Tag: tag}, nil

	case TagPing:
		if len(body) != 4 {
			return ClientMessage{}, fmt.Errorf("protocol: ping frame wrong length: %d", len(body))
		}
		return ClientMessage{Tag: tag, Ping: PingMsg{
			TMillis: binary.LittleEndian.Uint32(body),
		}}, nil

	default:
		return ClientMessage{}, fmt.Errorf("protocol: unknown client variant tag %d", tag)
	}
}

// GameStateSnapshot is the value object broadcast at the server's
// broadcast rate during Playing. It is copied, never shared, across the
// transport boundary.
type GameStateSnapshot struct {
	Tick         uint32
	BallX        float32
	BallY        float32
	BallVX       float32
	BallVY       float32
	PaddleLeftY  float32
	PaddleRightY float32
	ScoreLeft    uint8
	ScoreRight   uint8
}

const snapshotLen = 4 + 4*6 + 1 + 1

// EncodeWelcome encodes a Welcome message.
func EncodeWelcome(playerID uint8) []byte {
	return []byte{TagWelcome, playerID}
}

// EncodeMatchFound encodes a MatchFound message.
func EncodeMatchFound() []byte {
	return []byte{TagMatchFound}
}

// EncodeCountdown encodes a Countdown message.
func EncodeCountdown(seconds uint8) []byte {
	return []byte{TagCountdown, seconds}
}

// EncodeGameStart encodes a GameStart message.
func EncodeGameStart() []byte {
	return []byte{TagGameStart}
}

// EncodeGameState encodes a GameState message carrying snap.
func EncodeGameState(snap GameStateSnapshot) []byte {
	buf := make([]byte, 1+snapshotLen)
	buf[0] = TagGameState
	putSnapshot(buf[1:], snap)
	return buf
}

func putSnapshot(buf []byte, s GameStateSnapshot) {
	binary.LittleEndian.PutUint32(buf[0:4], s.Tick)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(s.BallX))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(s.BallY))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(s.BallVX))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(s.BallVY))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(s.PaddleLeftY))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(s.PaddleRightY))
	buf[28] = s.ScoreLeft
	buf[29] = s.ScoreRight
}

func getSnapshot(buf []byte) GameStateSnapshot {
	return GameStateSnapshot{
		Tick:         binary.LittleEndian.Uint32(buf[0:4]),
		BallX:        math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		BallY:        math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		BallVX:       math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		BallVY:       math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])),
		PaddleLeftY:  math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])),
		PaddleRightY: math.Float32frombits(binary.LittleEndian.Uint32(buf[24:28])),
		ScoreLeft:    buf[28],
		ScoreRight:   buf[29],
	}
}

// EncodeGameOver encodes a GameOver message.
func EncodeGameOver(winner uint8) []byte {
	return []byte{TagGameOver, winner}
}

// EncodeOpponentDisconnected encodes an OpponentDisconnected message.
func EncodeOpponentDisconnected() []byte {
	return []byte{TagOpponentDisconnected}
}

// EncodePong encodes a Pong message echoing tMillis back to the client.
func EncodePong(tMillis uint32) []byte {
	buf := make([]byte, 1+4)
	buf[0] = TagPong
	binary.LittleEndian.PutUint32(buf[1:5], tMillis)
	return buf
}

// ServerMessage is the tagged-union decoded from a server frame. Clients
// decode with this; the host only ever encodes (above).
type ServerMessage struct {
	Tag            uint8
	Welcome        uint8
	Countdown      uint8
	GameState      GameStateSnapshot
	GameOverWinner uint8
	Pong           uint32
}

// DecodeServerMessage decodes a server frame, for use by clients (the
// predictor's driving loop and test harnesses).
func DecodeServerMessage(b []byte) (ServerMessage, error) {
	if len(b) < 1 {
		return ServerMessage{}, fmt.Errorf("protocol: empty frame")
	}
	tag := b[0]
	body := b[1:]

	switch tag {
	case TagWelcome:
		if len(body) != 1 {
			return ServerMessage{}, fmt.Errorf("protocol: welcome frame wrong length: %d", len(body))
		}
		return ServerMessage{Tag: tag, Welcome: body[0]}, nil

	case TagMatchFound:
		if len(body) != 0 {
			return ServerMessage{}, fmt.Errorf("protocol: match_found frame carries unexpected bytes")
		}
		return ServerMessage{Tag: tag}, nil

	case TagCountdown:
		if len(body) != 1 {
			return ServerMessage{}, fmt.Errorf("protocol: countdown frame wrong length: %d", len(body))
		}
		return ServerMessage{Tag: tag, Countdown: body[0]}, nil

	case TagGameStart:
		if len(body) != 0 {
			return ServerMessage{}, fmt.Errorf("protocol: game_start frame carries unexpected bytes")
		}
		return ServerMessage{Tag: tag}, nil

	case TagGameState:
		if len(body) != snapshotLen {
			return ServerMessage{}, fmt.Errorf("protocol: game_state frame wrong length: %d", len(body))
		}
		return ServerMessage{Tag: tag, GameState: getSnapshot(body)}, nil

	case TagGameOver:
		if len(body) != 1 {
			return ServerMessage{}, fmt.Errorf("protocol: game_over frame wrong length: %d", len(body))
		}
		return ServerMessage{Tag: tag, GameOverWinner: body[0]}, nil

	case TagOpponentDisconnected:
		if len(body) != 0 {
			return ServerMessage{}, fmt.Errorf("protocol: opponent_disconnected frame carries unexpected bytes")
		}
		return ServerMessage{Tag: tag}, nil

	case TagPong:
		if len(body) != 4 {
			return ServerMessage{}, fmt.Errorf("protocol: pong frame wrong length: %d", len(body))
		}
		return ServerMessage{Tag: tag, Pong: binary.LittleEndian.Uint32(body)}, nil

	default:
		return ServerMessage{}, fmt.Errorf("protocol: unknown server variant tag %d", tag)
	}
}
