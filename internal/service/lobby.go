package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

// LobbyService publishes game summaries to the lobby listing.
type LobbyService interface {
	PublishGame(ctx context.Context, summary entity.Summary) error
	RemoveGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, gameID string) (entity.Summary, error)
	ListGames(ctx context.Context) ([]entity.Summary, error)
}

type lobbyRepo interface {
	Save(ctx context.Context, summary entity.Summary) error
	GetByID(ctx context.Context, id string) (entity.Summary, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.Summary, error)
}

type lobbyService struct {
	lobbyRepo lobbyRepo
}

func NewLobbyService(lobbyRepo lobbyRepo) LobbyService {
	return &lobbyService{
		lobbyRepo: lobbyRepo,
	}
}

func (that *lobbyService) PublishGame(ctx context.Context, summary entity.Summary) error {
	if err := that.lobbyRepo.Save(ctx, summary); err != nil {
		return fmt.Errorf("failed to publish game %s: %w", summary.ID, err)
	}

	return nil
}

func (that *lobbyService) RemoveGame(ctx context.Context, gameID string) error {
	if err := that.lobbyRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to remove game %s: %w", gameID, err)
	}

	return nil
}

func (that *lobbyService) GetGameByID(ctx context.Context, gameID string) (entity.Summary, error) {
	summary, err := that.lobbyRepo.GetByID(ctx, gameID)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to retrieve game from lobby: %w", err)
	}

	return summary, nil
}

// ListGames - every listed game, oldest first.
func (that *lobbyService) ListGames(ctx context.Context) ([]entity.Summary, error) {
	summaries, err := that.lobbyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby games: %w", err)
	}

	return summaries, nil
}
