package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// GameRepository is the directory of live sessions.
type GameRepository interface {
	CreateOrUpdate(session *entity.Session)
	GetByID(id string) (*entity.Session, error)
	DeleteByID(id string)
	List() []*entity.Session
	IdleSince(before time.Time) []*entity.Session
}

type memGame struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

func NewGameRepository() GameRepository {
	return &memGame{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *memGame) CreateOrUpdate(session *entity.Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = session
}

func (that *memGame) GetByID(id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return session, nil
}

func (that *memGame) DeleteByID(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
}

// List - every live session, oldest first. Ids are ULIDs so they sort by creation time.
func (that *memGame) List() []*entity.Session {
	that.mu.RLock()
	sessions := make([]*entity.Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session)
	}
	that.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	return sessions
}

// IdleSince - sessions whose last change happened before the given time.
func (that *memGame) IdleSince(before time.Time) []*entity.Session {
	var idle []*entity.Session
	for _, session := range that.List() {
		if session.UpdatedAt().Before(before) {
			idle = append(idle, session)
		}
	}

	return idle
}
