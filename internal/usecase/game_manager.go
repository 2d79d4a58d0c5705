package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

type playerService interface {
	CreatePlayer(connectionID, name string) (*entity.Player, error)
	GetByID(connectionID string) (*entity.Player, error)
	DeleteByID(connectionID string)
	IsAlive(connectionID string) bool
}

type waitingQueue interface {
	Enqueue(player *entity.Player) bool
	DequeueValidOpponent(alive func(connectionID string) bool, exclude string) *entity.Player
	Remove(connectionID string) bool
}

type gameRepo interface {
	CreateOrUpdate(session *entity.Session)
	GetByID(id string) (*entity.Session, error)
	DeleteByID(id string)
	List() []*entity.Session
	IdleSince(before time.Time) []*entity.Session
}

type lobbyService interface {
	PublishGame(ctx context.Context, summary entity.Summary) error
	RemoveGame(ctx context.Context, gameID string) error
	GetGameByID(ctx context.Context, gameID string) (entity.Summary, error)
	ListGames(ctx context.Context) ([]entity.Summary, error)
}

type gameFactory interface {
	New(kind entity.GameKind, opts ...entity.SessionOption) (*entity.Session, error)
}

// MatchResult tells the caller where it was seated.
type MatchResult struct {
	Game     *entity.Session
	Opponent string
	Matched  bool
}

// LeaveResult lists the players left behind in the game the connection was seated in.
type LeaveResult struct {
	GameID    string
	Remaining []string
}

// ExpiredGame is a session removed by the idle reaper together with its former players.
type ExpiredGame struct {
	GameID  string
	Players []string
}

type Option func(*GameManager)

// WithSessionOptions - options passed to every session the manager creates.
func WithSessionOptions(opts ...entity.SessionOption) Option {
	return func(that *GameManager) {
		that.sessionOpts = append(that.sessionOpts, opts...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(that *GameManager) {
		that.now = now
	}
}

// GameManager coordinates players, the waiting queue and game sessions. Compound
// operations run under the lobby lock; moves inside a game only take the session lock.
// No method sends anything: state changes are returned as notifications which the
// transport delivers once every lock is released.
type GameManager struct {
	logger *slog.Logger

	playerService playerService
	queue         waitingQueue
	gameRepo      gameRepo
	lobbyService  lobbyService
	games         gameFactory

	kind        entity.GameKind
	sessionOpts []entity.SessionOption
	now         func() time.Time

	mu    sync.Mutex
	seats map[string]string // connection id -> game id
}

func NewGameManager(
	logger *slog.Logger,
	playerService playerService,
	queue waitingQueue,
	gameRepo gameRepo,
	lobbyService lobbyService,
	games gameFactory,
	opts ...Option,
) *GameManager {
	manager := &GameManager{
		logger:        logger.With("component", "game_manager"),
		playerService: playerService,
		queue:         queue,
		gameRepo:      gameRepo,
		lobbyService:  lobbyService,
		games:         games,
		kind:          entity.KindTicTacToe,
		now:           time.Now,
		seats:         make(map[string]string),
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// CreatePlayer - registers a display name for the connection. A seated connection
// keeps its player until it leaves the game.
func (that *GameManager) CreatePlayer(_ context.Context, connectionID, name string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, seated := that.seats[connectionID]; seated {
		return nil, apperror.ErrAlreadyInGame
	}

	player, err := that.playerService.CreatePlayer(connectionID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	that.logger.Debug("player created", "method", "CreatePlayer", "connection_id", connectionID, "name", player.Name)

	return player, nil
}

// RequestMatch - pairs the caller with the oldest live waiting player, or seats it
// alone in a new waiting game and queues it.
func (that *GameManager) RequestMatch(ctx context.Context, connectionID string) (MatchResult, []entity.Notification, error) {
	log := that.logger.With("method", "RequestMatch", "connection_id", connectionID)

	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerService.GetByID(connectionID)
	if err != nil {
		return MatchResult{}, nil, fmt.Errorf("failed to request match: %w", err)
	}

	if _, seated := that.seats[connectionID]; seated {
		return MatchResult{}, nil, apperror.ErrAlreadyInGame
	}

	opponent := that.queue.DequeueValidOpponent(that.playerService.IsAlive, connectionID)
	if opponent == nil {
		session, err := that.newSession(player)
		if err != nil {
			return MatchResult{}, nil, err
		}

		that.queue.Enqueue(player)

		log.Info("player is waiting for an opponent", "game_id", session.ID)

		return MatchResult{Game: session}, []entity.Notification{that.publish(ctx, session, connectionID)}, nil
	}

	var notifications []entity.Notification

	wasReady := false
	if previous, ok := that.seatedSession(opponent.ConnectionID); ok {
		wasReady = previous.IsReady(opponent.ConnectionID)
		notifications = append(notifications, that.unseat(ctx, previous, opponent.ConnectionID)...)
	}

	session, err := that.newSession(opponent)
	if err != nil {
		that.queue.Enqueue(opponent)
		return MatchResult{}, nil, err
	}

	if wasReady {
		if _, err = session.MarkReady(opponent.ConnectionID); err != nil {
			return MatchResult{}, nil, fmt.Errorf("failed to carry over ready flag: %w", err)
		}
	}

	if err = that.seat(session, player); err != nil {
		return MatchResult{}, nil, err
	}

	log.Info("players matched", "game_id", session.ID, "opponent_id", opponent.ConnectionID)

	view := session.Snapshot()

	notifications = append(notifications,
		entity.NotifyPlayers(entity.NotifyOtherConnected, []string{opponent.ConnectionID},
			entity.OtherConnectedPayload{Player: playerOf(view, connectionID), Game: view}),
		that.publish(ctx, session, connectionID),
	)

	return MatchResult{Game: session, Opponent: opponent.ConnectionID, Matched: true}, notifications, nil
}

// JoinGame - takes the free seat of a listed waiting game.
func (that *GameManager) JoinGame(ctx context.Context, connectionID, gameID string) (MatchResult, []entity.Notification, error) {
	log := that.logger.With("method", "JoinGame", "connection_id", connectionID, "game_id", gameID)

	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.playerService.GetByID(connectionID)
	if err != nil {
		return MatchResult{}, nil, fmt.Errorf("failed to join game: %w", err)
	}

	if _, seated := that.seats[connectionID]; seated {
		return MatchResult{}, nil, apperror.ErrAlreadyInGame
	}

	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		return MatchResult{}, nil, fmt.Errorf("failed to join game: %w", err)
	}

	if err = that.seat(session, player); err != nil {
		return MatchResult{}, nil, err
	}

	var others []string
	for _, id := range session.PlayerIDs() {
		if id != connectionID {
			that.queue.Remove(id)
			others = append(others, id)
		}
	}

	log.Info("player joined game")

	result := MatchResult{Game: session}
	notifications := []entity.Notification{that.publish(ctx, session, connectionID)}

	if len(others) > 0 {
		result.Opponent = others[0]
		result.Matched = true

		view := session.Snapshot()

		notifications = append(notifications, entity.NotifyPlayers(entity.NotifyOtherConnected, others,
			entity.OtherConnectedPayload{Player: playerOf(view, connectionID), Game: view}))
	}

	return result, notifications, nil
}

// ReadyToConnect - the client finished wiring itself into the game. Setup begins when
// every player of a full game is ready.
func (that *GameManager) ReadyToConnect(_ context.Context, connectionID string) ([]entity.Notification, error) {
	session, err := that.GameOf(connectionID)
	if err != nil {
		return nil, err
	}

	begin, err := session.MarkReady(connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ready: %w", err)
	}

	view := session.Snapshot()
	others := othersThan(view, connectionID)

	notifications := []entity.Notification{
		entity.NotifyPlayers(entity.NotifySelfConnected, []string{connectionID},
			entity.SelfConnectedPayload{PlayerID: connectionID, Game: view}),
	}

	if len(others) > 0 {
		notifications = append(notifications, entity.NotifyPlayers(entity.NotifyOtherConnected, others,
			entity.OtherConnectedPayload{Player: playerOf(view, connectionID), Game: view}))
	}

	if begin {
		that.logger.Info("setup begins", "method", "ReadyToConnect", "game_id", session.ID)

		notifications = append(notifications,
			entity.NotifyPlayers(entity.NotifyBeginSetup, allOf(view), entity.GamePayload{Game: view}))
	}

	return notifications, nil
}

// FinishSetup - acknowledges the setup step; play starts with the last acknowledgement.
func (that *GameManager) FinishSetup(ctx context.Context, connectionID string, symbol entity.Symbol) ([]entity.Notification, error) {
	session, err := that.GameOf(connectionID)
	if err != nil {
		return nil, err
	}

	started, err := session.FinishSetup(connectionID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to finish setup: %w", err)
	}

	view := session.Snapshot()
	if !started {
		return []entity.Notification{
			entity.NotifyPlayers(entity.NotifyGameInstance, []string{connectionID}, entity.GamePayload{Game: view}),
		}, nil
	}

	that.logger.Info("game started", "method", "FinishSetup", "game_id", session.ID)

	players := allOf(view)

	return []entity.Notification{
		entity.NotifyPlayers(entity.NotifyFinishSetup, players, entity.GamePayload{Game: view}),
		entity.NotifyPlayers(entity.NotifyStartGame, players, entity.GamePayload{Game: view}),
		that.publish(ctx, session, ""),
	}, nil
}

// Mark - places the caller's symbol. Every player gets the new board; a finished round
// also yields OnGameOver.
func (that *GameManager) Mark(ctx context.Context, connectionID string, row, col int) ([]entity.Notification, error) {
	session, err := that.GameOf(connectionID)
	if err != nil {
		return nil, err
	}

	outcome, err := session.Mark(connectionID, row, col)
	if err != nil {
		return nil, fmt.Errorf("failed to mark: %w", err)
	}

	view := session.Snapshot()
	players := allOf(view)

	notifications := []entity.Notification{
		entity.NotifyPlayers(entity.NotifyGameInstance, players, entity.GamePayload{Game: view}),
	}

	if outcome != entity.OutcomeContinue {
		that.logger.Info("game over", "method", "Mark", "game_id", session.ID, "outcome", outcome)

		notifications = append(notifications,
			entity.NotifyPlayers(entity.NotifyGameOver, players, entity.GamePayload{Game: view}),
			that.publish(ctx, session, ""),
		)
	}

	return notifications, nil
}

// VotePlayAgain - counts a rematch vote; the last vote sends the game back to setup.
func (that *GameManager) VotePlayAgain(ctx context.Context, connectionID string) ([]entity.Notification, error) {
	session, err := that.GameOf(connectionID)
	if err != nil {
		return nil, err
	}

	restarted, votes, err := session.VotePlayAgain(connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to vote: %w", err)
	}

	if !restarted {
		that.logger.Debug("vote counted", "method", "VotePlayAgain", "game_id", session.ID, "votes", votes)
		return nil, nil
	}

	that.logger.Info("game restarted", "method", "VotePlayAgain", "game_id", session.ID)

	view := session.Snapshot()
	players := allOf(view)

	return []entity.Notification{
		entity.NotifyPlayers(entity.NotifyRestartGame, players, entity.GamePayload{Game: view}),
		entity.NotifyPlayers(entity.NotifyBeginSetup, players, entity.GamePayload{Game: view}),
		that.publish(ctx, session, ""),
	}, nil
}

// Disconnect - forgets the connection. Its game goes back to waiting for the players
// left behind, who are queued again; an empty game is deleted.
func (that *GameManager) Disconnect(ctx context.Context, connectionID string) (LeaveResult, []entity.Notification) {
	log := that.logger.With("method", "Disconnect", "connection_id", connectionID)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.queue.Remove(connectionID)
	that.playerService.DeleteByID(connectionID)

	session, ok := that.seatedSession(connectionID)
	if !ok {
		return LeaveResult{}, nil
	}

	notifications := that.unseat(ctx, session, connectionID)
	remaining := session.PlayerIDs()

	for _, id := range remaining {
		player, err := that.playerService.GetByID(id)
		if err != nil {
			log.Warn("player left behind is not registered", "player_id", id, "error", err)
			continue
		}

		that.queue.Enqueue(player)
	}

	if len(remaining) > 0 {
		view := session.Snapshot()
		notifications = append(notifications,
			entity.NotifyPlayers(entity.NotifyOtherDisconnected, remaining, entity.OtherDisconnectedPayload{PlayerID: connectionID}),
			entity.NotifyPlayers(entity.NotifyGameInstance, remaining, entity.GamePayload{Game: view}),
		)
	}

	log.Info("player left game", "game_id", session.ID, "remaining", len(remaining))

	return LeaveResult{GameID: session.ID, Remaining: remaining}, notifications
}

// IsOpponent - true when both connections sit in the same game.
func (that *GameManager) IsOpponent(connectionID, otherID string) bool {
	if connectionID == otherID {
		return false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	gameID, ok := that.seats[connectionID]
	return ok && that.seats[otherID] == gameID
}

// ReapIdle - deletes games that did not change for the given duration.
func (that *GameManager) ReapIdle(ctx context.Context, idle time.Duration) ([]ExpiredGame, []entity.Notification) {
	log := that.logger.With("method", "ReapIdle")

	that.mu.Lock()
	defer that.mu.Unlock()

	var (
		expired       []ExpiredGame
		notifications []entity.Notification
	)

	for _, session := range that.gameRepo.IdleSince(that.now().Add(-idle)) {
		players := session.PlayerIDs()
		for _, id := range players {
			that.queue.Remove(id)
			delete(that.seats, id)
		}

		notifications = append(notifications, that.drop(ctx, session))

		if len(players) > 0 {
			notifications = append(notifications, entity.NotifyPlayers(entity.NotifySessionExpired, players,
				entity.SessionExpiredPayload{GameID: session.ID}))
		}

		expired = append(expired, ExpiredGame{GameID: session.ID, Players: players})

		log.Info("idle game expired", "game_id", session.ID, "players", len(players))
	}

	return expired, notifications
}

// ListGames - the lobby listing. Falls back to the live sessions when the lobby
// store is unavailable.
func (that *GameManager) ListGames(ctx context.Context) []entity.Summary {
	summaries, err := that.lobbyService.ListGames(ctx)
	if err == nil {
		return summaries
	}

	that.logger.Error("failed to list lobby games", "method", "ListGames", "error", err)

	sessions := that.gameRepo.List()
	summaries = make([]entity.Summary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}

	return summaries
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (entity.Summary, error) {
	if session, err := that.gameRepo.GetByID(gameID); err == nil {
		return session.Summary(), nil
	}

	summary, err := that.lobbyService.GetGameByID(ctx, gameID)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to get game: %w", err)
	}

	return summary, nil
}

// GameOf - the session the connection is seated in.
func (that *GameManager) GameOf(connectionID string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.seatedSession(connectionID)
	if !ok {
		return nil, apperror.ErrGameNotBound
	}

	return session, nil
}

func (that *GameManager) newSession(player *entity.Player) (*entity.Session, error) {
	session, err := that.games.New(that.kind, that.sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.seat(session, player); err != nil {
		return nil, err
	}

	that.gameRepo.CreateOrUpdate(session)

	return session, nil
}

// seat must be called with the lobby lock held.
func (that *GameManager) seat(session *entity.Session, player *entity.Player) error {
	if err := session.AddPlayer(player); err != nil {
		return fmt.Errorf("failed to add player to game: %w", err)
	}

	that.seats[player.ConnectionID] = session.ID

	return nil
}

// unseat removes the player from the session and deletes the session once it is
// empty. Must be called with the lobby lock held.
func (that *GameManager) unseat(ctx context.Context, session *entity.Session, connectionID string) []entity.Notification {
	delete(that.seats, connectionID)

	remaining, _ := session.RemovePlayer(connectionID)
	if len(remaining) == 0 {
		return []entity.Notification{that.drop(ctx, session)}
	}

	return []entity.Notification{that.publish(ctx, session, "")}
}

func (that *GameManager) seatedSession(connectionID string) (*entity.Session, bool) {
	gameID, ok := that.seats[connectionID]
	if !ok {
		return nil, false
	}

	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		delete(that.seats, connectionID)
		return nil, false
	}

	return session, true
}

// publish stores the summary in the lobby and returns the lobby broadcast for it.
// Lobby store failures are logged: the listing is a cache of the live sessions.
func (that *GameManager) publish(ctx context.Context, session *entity.Session, except string) entity.Notification {
	summary := session.Summary()

	if err := that.lobbyService.PublishGame(ctx, summary); err != nil {
		that.logger.Error("failed to publish game", "game_id", session.ID, "error", err)
	}

	return entity.NotifyLobby(summary, except)
}

func (that *GameManager) drop(ctx context.Context, session *entity.Session) entity.Notification {
	that.gameRepo.DeleteByID(session.ID)

	if err := that.lobbyService.RemoveGame(ctx, session.ID); err != nil {
		that.logger.Error("failed to remove game from lobby", "game_id", session.ID, "error", err)
	}

	summary := session.Summary()
	summary.Removed = true

	return entity.NotifyLobby(summary, "")
}

// playerOf - the seat of connectionID as it was when view was taken. Seated players are
// written under the session lock, so they are only read through a snapshot.
func playerOf(view entity.GameView, connectionID string) entity.Player {
	for _, player := range view.Players {
		if player.ConnectionID == connectionID {
			return player
		}
	}

	return entity.Player{ConnectionID: connectionID}
}

func allOf(view entity.GameView) []string {
	ids := make([]string, 0, len(view.Players))
	for _, player := range view.Players {
		ids = append(ids, player.ConnectionID)
	}

	return ids
}

func othersThan(view entity.GameView, connectionID string) []string {
	ids := make([]string, 0, len(view.Players))
	for _, player := range view.Players {
		if player.ConnectionID != connectionID {
			ids = append(ids, player.ConnectionID)
		}
	}

	return ids
}
