package apperror

import (
	"errors"
	"fmt"
)

// ErrPrecondition is wrapped by every "binding missing" error so the dispatcher can
// tell a client ordering problem apart from a rejected game move.
var ErrPrecondition = errors.New("precondition not met")

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrWrongState       = errors.New("operation not allowed in current game state")
	ErrSetupNotBegun    = errors.New("setup has not begun")
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrAlreadyInGame    = errors.New("player is already in a game")
	ErrPlayerNotInGame  = errors.New("player is not part of this game")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInvalidName      = errors.New("invalid display name")
	ErrUnknownGameKind  = errors.New("unknown game kind")
	ErrNotYourOpponent  = errors.New("connection is not your opponent")
	ErrInvariantBroken  = errors.New("game session invariant broken")
	ErrUnknownAction    = errors.New("unknown action")
	ErrMalformedPayload = errors.New("malformed payload")
)

var (
	ErrPlayerNotBound   = fmt.Errorf("%w: player is not created yet", ErrPrecondition)
	ErrGameNotBound     = fmt.Errorf("%w: player has not created or joined a game", ErrPrecondition)
	ErrOpponentNotBound = fmt.Errorf("%w: game has no opponent yet", ErrPrecondition)
)
