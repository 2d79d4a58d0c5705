package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

type gameLister interface {
	ListGames(ctx context.Context) []entity.Summary
	GetGame(ctx context.Context, gameID string) (entity.Summary, error)
}

// GameHandler serves the read-only lobby listing.
type GameHandler struct {
	logger *slog.Logger
	games  gameLister
}

func NewGameHandler(logger *slog.Logger, games gameLister) *GameHandler {
	return &GameHandler{
		logger: logger,
		games:  games,
	}
}

func (that *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, entity.GameListPayload{Games: that.games.ListGames(r.Context())})
}

func (that *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	summary, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, apperror.ErrGameNotFound) {
		http.Error(w, "Game Not Found", http.StatusNotFound)
		return
	}

	if err != nil {
		that.logger.Error("failed to get game", "method", "GetGame", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, entity.GameSummaryPayload{Game: summary})
}

func (that *GameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
