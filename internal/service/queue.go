package service

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// WaitingQueue holds players waiting for an opponent, oldest first. Entries whose
// connection went away are dropped when they reach the head.
type WaitingQueue interface {
	Enqueue(player *entity.Player) bool
	DequeueValidOpponent(alive func(connectionID string) bool, exclude string) *entity.Player
	Remove(connectionID string) bool
	Contains(connectionID string) bool
	Len() int
}

type waitingQueue struct {
	mu      sync.Mutex
	players []*entity.Player
}

func NewWaitingQueue() WaitingQueue {
	return &waitingQueue{}
}

// Enqueue - appends the player unless it is already waiting.
func (that *waitingQueue) Enqueue(player *entity.Player) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.indexOf(player.ConnectionID) >= 0 {
		return false
	}

	that.players = append(that.players, player)

	return true
}

// DequeueValidOpponent - pops players until one is alive and is not the excluded
// connection. Dead entries are discarded, the excluded one keeps its place.
func (that *waitingQueue) DequeueValidOpponent(alive func(connectionID string) bool, exclude string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	var skipped *entity.Player
	defer func() {
		if skipped != nil {
			that.players = append([]*entity.Player{skipped}, that.players...)
		}
	}()

	for len(that.players) > 0 {
		candidate := that.players[0]
		that.players[0] = nil
		that.players = that.players[1:]

		if !alive(candidate.ConnectionID) {
			continue
		}

		if candidate.ConnectionID == exclude {
			skipped = candidate
			continue
		}

		return candidate
	}

	return nil
}

func (that *waitingQueue) Remove(connectionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.indexOf(connectionID)
	if idx < 0 {
		return false
	}

	that.players = append(that.players[:idx], that.players[idx+1:]...)

	return true
}

func (that *waitingQueue) Contains(connectionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.indexOf(connectionID) >= 0
}

func (that *waitingQueue) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.players)
}

func (that *waitingQueue) indexOf(connectionID string) int {
	for i, player := range that.players {
		if player.ConnectionID == connectionID {
			return i
		}
	}

	return -1
}
