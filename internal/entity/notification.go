package entity

// Server -> client notification names.
const (
	NotifyStartGame         = "OnStartGame"
	NotifyBeginSetup        = "OnBeginSetup"
	NotifyFinishSetup       = "OnFinishSetup"
	NotifyRestartGame       = "OnRestartGame"
	NotifyGameOver          = "OnGameOver"
	NotifyGameInstance      = "GetGameInstance"
	NotifySelfConnected     = "SelfConnected"
	NotifyOtherConnected    = "OtherConnected"
	NotifyOtherDisconnected = "OtherDisconnected"
	NotifyGameList          = "GetGameList"
	NotifyUpdateGameList    = "UpdateGameList"
	NotifySessionExpired    = "OnSessionExpired"
)

// Notification is one outbound message produced by a state change. It is delivered
// after every lock is released.
type Notification struct {
	Name    string
	To      []string
	Lobby   bool   // deliver to every connection that has no game bound
	Except  string // connection skipped by a lobby broadcast
	Payload any
}

type GamePayload struct {
	Game GameView `json:"game"`
}

type SelfConnectedPayload struct {
	PlayerID string   `json:"player_id"`
	Game     GameView `json:"game"`
}

type OtherConnectedPayload struct {
	Player Player   `json:"player"`
	Game   GameView `json:"game"`
}

type OtherDisconnectedPayload struct {
	PlayerID string `json:"player_id"`
}

type GameListPayload struct {
	Games []Summary `json:"games"`
}

type GameSummaryPayload struct {
	Game Summary `json:"game"`
}

type SessionExpiredPayload struct {
	GameID string `json:"game_id"`
}

func NotifyPlayers(name string, to []string, payload any) Notification {
	return Notification{Name: name, To: to, Payload: payload}
}

func NotifyLobby(summary Summary, except string) Notification {
	return Notification{
		Name:    NotifyUpdateGameList,
		Lobby:   true,
		Except:  except,
		Payload: GameSummaryPayload{Game: summary},
	}
}
