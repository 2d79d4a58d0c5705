package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hub/internal/session"
	"github.com/rocketscienceinc/tictactoe-hub/internal/usecase"
)

const errInternal = "internal error"

// replyErrors are the errors whose text is shown to clients. Anything else is reported
// as an internal error.
var replyErrors = []error{
	apperror.ErrPlayerNotBound,
	apperror.ErrGameNotBound,
	apperror.ErrOpponentNotBound,
	apperror.ErrGameFinished,
	apperror.ErrGameIsNotStarted,
	apperror.ErrNotYourTurn,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
	apperror.ErrWrongState,
	apperror.ErrSetupNotBegun,
	apperror.ErrGameNotFound,
	apperror.ErrGameFull,
	apperror.ErrAlreadyInGame,
	apperror.ErrPlayerNotInGame,
	apperror.ErrPlayerNotFound,
	apperror.ErrInvalidName,
	apperror.ErrNotYourOpponent,
	apperror.ErrUnknownAction,
	apperror.ErrMalformedPayload,
}

func errorText(err error) string {
	for _, known := range replyErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return errInternal
}

func (that *Server) handleCreatePlayer(ctx context.Context, c *client, sc *session.Context, payload *Payload) error {
	player, err := that.manager.CreatePlayer(ctx, c.id, payload.Name)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	sc.Bind(player)
	that.reply(c, ActionCreatePlayer, PlayerPayload{Player: player.Clone()})

	return nil
}

func (that *Server) handleCreateNewGame(ctx context.Context, c *client, sc *session.Context, _ *Payload) error {
	if _, err := sc.Player(); err != nil {
		return err
	}

	result, notifications, err := that.manager.RequestMatch(ctx, c.id)
	if err != nil {
		return fmt.Errorf("failed to create new game: %w", err)
	}

	that.bindMatch(c.id, sc, result)
	that.reply(c, ActionCreateNewGame, MatchPayload{Game: result.Game.Snapshot(), Waiting: !result.Matched})
	that.deliver(notifications)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, sc *session.Context, payload *Payload) error {
	if _, err := sc.Player(); err != nil {
		return err
	}

	if payload.GameID == "" {
		return fmt.Errorf("%w: game_id is required", apperror.ErrMalformedPayload)
	}

	result, notifications, err := that.manager.JoinGame(ctx, c.id, payload.GameID)
	if err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	that.bindMatch(c.id, sc, result)
	that.reply(c, ActionJoinGame, MatchPayload{Game: result.Game.Snapshot(), Waiting: !result.Matched})
	that.deliver(notifications)

	return nil
}

// bindMatch points the caller and, once matched, its opponent at the game and at each other.
func (that *Server) bindMatch(connectionID string, sc *session.Context, result usecase.MatchResult) {
	sc.BindGame(result.Game)

	if !result.Matched {
		return
	}

	sc.BindOpponent(result.Opponent)

	if opponent, ok := that.sessions.Get(result.Opponent); ok {
		opponent.BindGame(result.Game)
		opponent.BindOpponent(connectionID)
	}
}

func (that *Server) handleReadyToConnect(ctx context.Context, c *client, sc *session.Context, _ *Payload) error {
	if _, err := sc.Game(); err != nil {
		return err
	}

	notifications, err := that.manager.ReadyToConnect(ctx, c.id)
	if err != nil {
		return fmt.Errorf("failed to get ready: %w", err)
	}

	that.deliver(notifications)

	return nil
}

func (that *Server) handleFinishSetup(ctx context.Context, c *client, sc *session.Context, payload *Payload) error {
	if _, err := sc.Game(); err != nil {
		return err
	}

	notifications, err := that.manager.FinishSetup(ctx, c.id, payload.Symbol)
	if err != nil {
		return fmt.Errorf("failed to finish setup: %w", err)
	}

	that.deliver(notifications)

	return nil
}

func (that *Server) handleMark(ctx context.Context, c *client, sc *session.Context, payload *Payload) error {
	if _, err := sc.Game(); err != nil {
		return err
	}

	if payload.Row == nil || payload.Col == nil {
		return fmt.Errorf("%w: row and col are required", apperror.ErrMalformedPayload)
	}

	notifications, err := that.manager.Mark(ctx, c.id, *payload.Row, *payload.Col)
	if err != nil {
		return fmt.Errorf("failed to mark: %w", err)
	}

	that.deliver(notifications)

	return nil
}

func (that *Server) handleVoteToPlayAgain(ctx context.Context, c *client, sc *session.Context, _ *Payload) error {
	if _, err := sc.Game(); err != nil {
		return err
	}

	notifications, err := that.manager.VotePlayAgain(ctx, c.id)
	if err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	that.deliver(notifications)

	return nil
}

// handleOtherPlayerDisconnected - a client reports its opponent gone. The report is only
// acted on when the opponent's connection is really closed.
func (that *Server) handleOtherPlayerDisconnected(ctx context.Context, c *client, sc *session.Context, payload *Payload) error {
	if _, err := sc.Game(); err != nil {
		return err
	}

	target := payload.ConnectionID
	if target == "" {
		target, _ = sc.Opponent()
	}

	if !that.manager.IsOpponent(c.id, target) {
		return fmt.Errorf("%w: %q", apperror.ErrNotYourOpponent, target)
	}

	if that.isConnected(target) {
		that.logger.Debug("opponent is still connected", "method", "handleOtherPlayerDisconnected", "opponent_id", target)
		return nil
	}

	that.leave(ctx, target)

	return nil
}

func (that *Server) handleBrowserClose(ctx context.Context, c *client, _ *session.Context, _ *Payload) error {
	that.leave(ctx, c.id)
	c.close()

	return nil
}

func (that *Server) handleGetGameList(ctx context.Context, c *client, _ *session.Context, _ *Payload) error {
	that.reply(c, entity.NotifyGameList, entity.GameListPayload{Games: that.manager.ListGames(ctx)})

	return nil
}
