package ws

import (
	"encoding/json"

	"github.com/benbeisheim/rulechess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeMove   MessageType = "move"
	MessageTypeResign MessageType = "resign"

	// server -> client
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeBoardDelta MessageType = "boardDelta"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// MovePayload carries move text such as "e2e4". Orientation says how the
// sending client has its board turned; squares are aligned before use.
type MovePayload struct {
	Move        string `json:"move"`
	Orientation string `json:"orientation,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type DeltaKind string

const (
	DeltaInit    DeltaKind = "init"
	DeltaMove    DeltaKind = "move"
	DeltaReplace DeltaKind = "replace"
	DeltaRemove  DeltaKind = "remove"
)

// BoardDelta is one step a client board applies to stay in sync.
type BoardDelta struct {
	Kind  DeltaKind       `json:"kind"`
	Board *model.Board    `json:"board,omitempty"`
	Move  *model.Move     `json:"move,omitempty"`
	At    *model.Position `json:"at,omitempty"`
	Piece *model.Piece    `json:"piece,omitempty"`
}
