package session

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// Context is what a connection knows about itself: its player, the game it sits in
// and the connection id of its opponent. Each binding is optional until the matching
// protocol step happened.
type Context struct {
	ConnectionID string

	mu       sync.RWMutex
	player   *entity.Player
	game     *entity.Session
	opponent string
}

func NewContext(connectionID string) *Context {
	return &Context{ConnectionID: connectionID}
}

func (that *Context) Bind(player *entity.Player) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.player = player
}

func (that *Context) BindGame(game *entity.Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.game = game
}

func (that *Context) BindOpponent(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.opponent = connectionID
}

// UnbindGame - forgets the game and, with it, the opponent.
func (that *Context) UnbindGame() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.game = nil
	that.opponent = ""
}

func (that *Context) UnbindOpponent() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.opponent = ""
}

func (that *Context) Player() (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.player == nil {
		return nil, apperror.ErrPlayerNotBound
	}

	return that.player, nil
}

func (that *Context) Game() (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.game == nil {
		return nil, apperror.ErrGameNotBound
	}

	return that.game, nil
}

func (that *Context) Opponent() (string, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.opponent == "" {
		return "", apperror.ErrOpponentNotBound
	}

	return that.opponent, nil
}

func (that *Context) InGame() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.game != nil
}
