package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// LobbyRepository keeps the game summaries shown in the lobby.
type LobbyRepository interface {
	Save(ctx context.Context, summary entity.Summary) error
	GetByID(ctx context.Context, id string) (entity.Summary, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.Summary, error)
}

type memLobby struct {
	mu        sync.RWMutex
	summaries map[string]entity.Summary
}

func NewLobbyRepository() LobbyRepository {
	return &memLobby{
		summaries: make(map[string]entity.Summary),
	}
}

func (that *memLobby) Save(_ context.Context, summary entity.Summary) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.summaries[summary.ID] = summary

	return nil
}

func (that *memLobby) GetByID(_ context.Context, id string) (entity.Summary, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	summary, ok := that.summaries[id]
	if !ok {
		return entity.Summary{}, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	return summary, nil
}

func (that *memLobby) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.summaries, id)

	return nil
}

func (that *memLobby) List(_ context.Context) ([]entity.Summary, error) {
	that.mu.RLock()
	summaries := make([]entity.Summary, 0, len(that.summaries))
	for _, summary := range that.summaries {
		summaries = append(summaries, summary)
	}
	that.mu.RUnlock()

	sortSummaries(summaries)

	return summaries, nil
}

func sortSummaries(summaries []entity.Summary) {
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
}
