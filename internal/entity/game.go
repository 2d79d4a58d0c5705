package entity

import (
	"time"
)

type GameKind string

const KindTicTacToe GameKind = "tictactoe"

type GameState string

const (
	StateWaiting GameState = "waiting"
	StateSetup   GameState = "setup"
	StatePlaying GameState = "playing"
	StateOver    GameState = "over"
)

type GameOverState string

const (
	NotOver GameOverState = "not_over"
	Win     GameOverState = "win"
	Tie     GameOverState = "tie"
	Lose    GameOverState = "lose"
)

type Symbol string

const (
	SymbolX     Symbol = "X"
	SymbolO     Symbol = "O"
	EmptySymbol Symbol = ""
)

// Opposite - the other marker. Anything that is not X maps to X.
func (that Symbol) Opposite() Symbol {
	if that == SymbolX {
		return SymbolO
	}
	return SymbolX
}

func (that Symbol) IsValid() bool {
	return that == SymbolX || that == SymbolO
}

// Board is the game-specific grid. Implementations are not safe for concurrent use;
// the owning Session serializes access.
type Board interface {
	Size() int
	Mark(symbol Symbol, row, col int) error
	IsWinFor(symbol Symbol) bool
	IsFull() bool
	Clear()
	Cells() [][]Symbol
}

// GameView is an immutable copy of a session, used for every outbound payload.
type GameView struct {
	ID       string     `json:"id"`
	Kind     GameKind   `json:"kind"`
	State    GameState  `json:"state"`
	Capacity int        `json:"capacity"`
	Board    [][]Symbol `json:"board"`
	Players  []Player   `json:"players"`
}

// Summary is the lobby listing of a game.
type Summary struct {
	ID          string    `json:"id"`
	Kind        GameKind  `json:"kind"`
	State       GameState `json:"state"`
	PlayerNames []string  `json:"player_names"`
	PlayerCount int       `json:"player_count"`
	Capacity    int       `json:"capacity"`
	UpdatedAt   time.Time `json:"updated_at"`
	Removed     bool      `json:"removed,omitempty"`
}

func (that Summary) IsJoinable() bool {
	return that.State == StateWaiting && that.PlayerCount < that.Capacity && !that.Removed
}
