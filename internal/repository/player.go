package repository

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// PlayerRepository is the registry of players keyed by connection id.
type PlayerRepository interface {
	Register(connectionID, name string) *entity.Player
	GetByID(connectionID string) (*entity.Player, error)
	DeleteByID(connectionID string)
	Exists(connectionID string) bool
	Count() int
}

type memPlayer struct {
	mu      sync.RWMutex
	players map[string]*entity.Player
}

func NewPlayerRepository() PlayerRepository {
	return &memPlayer{
		players: make(map[string]*entity.Player),
	}
}

// Register - creates a player for the connection, replacing any previous one.
func (that *memPlayer) Register(connectionID, name string) *entity.Player {
	player := entity.NewPlayer(connectionID, name)

	that.mu.Lock()
	that.players[connectionID] = player
	that.mu.Unlock()

	return player
}

func (that *memPlayer) GetByID(connectionID string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[connectionID]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return player, nil
}

func (that *memPlayer) DeleteByID(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.players, connectionID)
}

func (that *memPlayer) Exists(connectionID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.players[connectionID]
	return ok
}

func (that *memPlayer) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.players)
}
