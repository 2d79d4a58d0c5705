package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hub/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-hub/internal/session"
	"github.com/rocketscienceinc/tictactoe-hub/internal/usecase"
)

type gameManager interface {
	CreatePlayer(ctx context.Context, connectionID, name string) (*entity.Player, error)
	RequestMatch(ctx context.Context, connectionID string) (usecase.MatchResult, []entity.Notification, error)
	JoinGame(ctx context.Context, connectionID, gameID string) (usecase.MatchResult, []entity.Notification, error)

	ReadyToConnect(ctx context.Context, connectionID string) ([]entity.Notification, error)
	FinishSetup(ctx context.Context, connectionID string, symbol entity.Symbol) ([]entity.Notification, error)
	Mark(ctx context.Context, connectionID string, row, col int) ([]entity.Notification, error)
	VotePlayAgain(ctx context.Context, connectionID string) ([]entity.Notification, error)

	Disconnect(ctx context.Context, connectionID string) (usecase.LeaveResult, []entity.Notification)
	IsOpponent(connectionID, otherID string) bool
	ReapIdle(ctx context.Context, idle time.Duration) ([]usecase.ExpiredGame, []entity.Notification)
	ListGames(ctx context.Context) []entity.Summary
}

type handlerFunc func(ctx context.Context, conn *client, sc *session.Context, payload *Payload) error

// Options tune a single connection.
type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func (that Options) pingPeriod() time.Duration {
	return that.PongWait * 9 / 10
}

type Server struct {
	logger   *slog.Logger
	manager  gameManager
	sessions *session.Directory
	options  Options
	upgrader websocket.Upgrader
	newID    func() string

	mu      sync.RWMutex
	clients map[string]*client

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager gameManager, sessions *session.Directory, options Options) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		manager:  manager,
		sessions: sessions,
		options:  options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		newID:    pkg.GenerateID,
		clients:  make(map[string]*client),
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionCreatePlayer] = server.handleCreatePlayer
	server.handlers[ActionCreateNewGame] = server.handleCreateNewGame
	server.handlers[ActionJoinGame] = server.handleJoinGame
	server.handlers[ActionReadyToConnect] = server.handleReadyToConnect
	server.handlers[ActionFinishSetup] = server.handleFinishSetup
	server.handlers[ActionMark] = server.handleMark
	server.handlers[ActionVoteToPlayAgain] = server.handleVoteToPlayAgain
	server.handlers[ActionOtherPlayerDisconnected] = server.handleOtherPlayerDisconnected
	server.handlers[ActionOnBrowserClose] = server.handleBrowserClose
	server.handlers[ActionGetGameList] = server.handleGetGameList

	return server
}

// ServeHTTP - upgrades the request and serves the connection until it goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.newID(), conn, that.options.SendBuffer)

	that.mu.Lock()
	that.clients[c.id] = c
	that.mu.Unlock()

	that.sessions.Open(c.id)

	log.Info("websocket connection established", "connection_id", c.id)

	go that.writePump(c)

	ctx := context.WithoutCancel(req.Context())
	that.reply(c, entity.NotifyGameList, entity.GameListPayload{Games: that.manager.ListGames(ctx)})
	that.readLoop(ctx, c)
}

// RunReaper - removes idle games every interval until ctx is done.
func (that *Server) RunReaper(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			that.reap(ctx, idle)
		}
	}
}

// Shutdown - closes every open connection.
func (that *Server) Shutdown() {
	that.mu.RLock()
	clients := make([]*client, 0, len(that.clients))
	for _, c := range that.clients {
		clients = append(clients, c)
	}
	that.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func (that *Server) reap(ctx context.Context, idle time.Duration) {
	expired, notifications := that.manager.ReapIdle(ctx, idle)

	for _, game := range expired {
		for _, id := range game.Players {
			if sc, ok := that.sessions.Get(id); ok {
				sc.UnbindGame()
			}
		}
	}

	that.deliver(notifications)
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "connection_id", c.id)

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic in handler", "panic", fmt.Sprint(r))
		}

		that.leave(ctx, c.id)
		c.close()

		log.Info("websocket connection closed")
	}()

	c.conn.SetReadLimit(that.options.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		if !that.handleMessage(ctx, c, data) {
			return
		}
	}
}

// handleMessage runs one request. Returns false once the connection should stop reading.
func (that *Server) handleMessage(ctx context.Context, c *client, data []byte) bool {
	log := that.logger.With("method", "handleMessage", "connection_id", c.id)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		that.sendErrorResponse(c, "", fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err))
		return true
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.sendErrorResponse(c, message.Action, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, message.Action))
		return true
	}

	var payload Payload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			that.sendErrorResponse(c, message.Action, fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err))
			return true
		}
	}

	sc, ok := that.sessions.Get(c.id)
	if !ok {
		return false
	}

	if err := handler(ctx, c, sc, &payload); err != nil {
		log.Warn("request rejected", "action", message.Action, "error", err)
		that.sendErrorResponse(c, message.Action, err)
	}

	return !c.isClosed()
}

func (that *Server) writePump(c *client) {
	ticker := time.NewTicker(that.options.pingPeriod())

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			that.flush(c)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(that.options.WriteWait))
			return
		}
	}
}

// flush writes what is still buffered so a closing client gets its last replies.
func (that *Server) flush(c *client) {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

// leave runs the disconnect of a connection and fixes up the contexts of the players
// it left behind. Safe to call more than once.
func (that *Server) leave(ctx context.Context, connectionID string) {
	result, notifications := that.manager.Disconnect(ctx, connectionID)

	that.sessions.Close(connectionID)

	that.mu.Lock()
	delete(that.clients, connectionID)
	that.mu.Unlock()

	for _, id := range result.Remaining {
		if sc, ok := that.sessions.Get(id); ok {
			sc.UnbindOpponent()
		}
	}

	that.deliver(notifications)
}

func (that *Server) isConnected(connectionID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	c, ok := that.clients[connectionID]
	return ok && !c.isClosed()
}

// deliver sends every notification to its recipients. It must run without any game
// or lobby lock held.
func (that *Server) deliver(notifications []entity.Notification) {
	for _, notification := range notifications {
		data, err := encode(notification.Name, notification.Payload)
		if err != nil {
			that.logger.Error("failed to encode notification", "name", notification.Name, "error", err)
			continue
		}

		recipients := notification.To
		if notification.Lobby {
			recipients = that.sessions.Lobby()
		}

		for _, id := range recipients {
			if id == notification.Except {
				continue
			}

			that.sendTo(id, data)
		}
	}
}

func (that *Server) sendTo(connectionID string, data []byte) {
	that.mu.RLock()
	c, ok := that.clients[connectionID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	if !c.enqueue(data) {
		that.logger.Warn("send buffer is full, closing connection", "connection_id", connectionID)
		c.close()
	}
}

func (that *Server) reply(c *client, action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode reply", "action", action, "error", err)
		return
	}

	if !c.enqueue(data) {
		c.close()
	}
}

func (that *Server) sendErrorResponse(c *client, action string, err error) {
	that.reply(c, ActionError, ErrorPayload{Action: action, Error: errorText(err)})
}

func encode(action string, payload any) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
