package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// Client -> server actions.
const (
	ActionCreatePlayer            = "CreatePlayer"
	ActionCreateNewGame           = "CreateNewGame"
	ActionJoinGame                = "JoinGame"
	ActionReadyToConnect          = "ReadyToConnect"
	ActionFinishSetup             = "FinishSetup"
	ActionMark                    = "Mark"
	ActionVoteToPlayAgain         = "VoteToPlayAgain"
	ActionOtherPlayerDisconnected = "OtherPlayerDisconnected"
	ActionOnBrowserClose          = "OnBrowserClose"
	ActionGetGameList             = "GetGameList"

	ActionError = "Error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the union of every client request payload.
type Payload struct {
	Name         string        `json:"name,omitempty"`
	GameID       string        `json:"game_id,omitempty"`
	Symbol       entity.Symbol `json:"symbol,omitempty"`
	Row          *int          `json:"row,omitempty"`
	Col          *int          `json:"col,omitempty"`
	ConnectionID string        `json:"connection_id,omitempty"`
}

type PlayerPayload struct {
	Player entity.Player `json:"player"`
}

type MatchPayload struct {
	Game    entity.GameView `json:"game"`
	Waiting bool            `json:"waiting"`
}

type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
