package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame wraps any frame that is not a JSON envelope.
var ErrMalformedFrame = errors.New("malformed frame")

// Inbound events.
const (
	EventCreateRoom        = "create-room"
	EventJoinRoom          = "join-room"
	EventToggleReady       = "toggle-ready"
	EventStartGame         = "start-game"
	EventSubmitClue        = "submit-clue"
	EventSubmitVote        = "submit-vote"
	EventDismissRoleReveal = "dismiss-role-reveal"
	EventGetRoomState      = "get-room-state"
	EventLeaveRoom         = "leave-room"
	EventPlayAgain         = "play-again"
)

// Outbound events.
const (
	EventRoomCreated      = "room-created"
	EventRoomJoined       = "room-joined"
	EventRoomUpdated      = "room-updated"
	EventGameStarted      = "game-started"
	EventGameStateUpdated = "game-state-updated"
	EventGameEnded        = "game-ended"
	EventError            = "error"
)

// Envelope is the JSON frame exchanged over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals payload into a ready-to-send frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Decode parses one frame.
func Decode(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return &env, nil
}
