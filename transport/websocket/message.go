package websocket

import (
	"encoding/json"
)

// Client requests.
const (
	ActionRoomsGet = "rooms:get"
	ActionIdentity = "player:identity"
	ActionMove     = "match:move"
	ActionRestart  = "match:restart"
)

// Server messages that are not coordinator events.
const (
	ActionConnected = "connected"
	ActionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type IdentityPayload struct {
	DisplayName  string `json:"displayName"`
	TargetRoomID string `json:"targetRoomId,omitempty"`
}

// MovePayload uses pointers so a missing coordinate can be told apart from zero.
type MovePayload struct {
	CellRow *int `json:"cellRow"`
	CellCol *int `json:"cellCol"`
}

type RestartPayload struct {
	RoomID string `json:"roomId"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Action  string `json:"action"`
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
