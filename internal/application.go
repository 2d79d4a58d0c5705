package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-hub/internal/config"
	"github.com/rocketscienceinc/tictactoe-hub/internal/game"
	"github.com/rocketscienceinc/tictactoe-hub/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hub/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-hub/internal/service"
	"github.com/rocketscienceinc/tictactoe-hub/internal/session"
	"github.com/rocketscienceinc/tictactoe-hub/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-hub/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hub/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until ctx is done or a termination signal arrives.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lobbyRepo, closeLobby, err := newLobbyRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeLobby(); err != nil {
			log.Error("could not close lobby storage", "error", err)
		}
	}()

	manager := usecase.NewGameManager(
		logger,
		service.NewPlayerService(repository.NewPlayerRepository()),
		service.NewWaitingQueue(),
		repository.NewGameRepository(),
		service.NewLobbyService(lobbyRepo),
		game.NewRegistry(),
	)

	wsServer := websocket.New(logger, manager, session.NewDirectory(), websocket.Options{
		SendBuffer:     conf.Websocket.SendBuffer,
		WriteWait:      conf.Websocket.WriteWait,
		PongWait:       conf.Websocket.PongWait,
		MaxMessageSize: conf.Websocket.MaxMessageSize,
	})

	router := rest.NewRouter(logger, manager, wsServer)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		return wsServer.RunReaper(ctx, conf.Session.ReapInterval, conf.Session.IdleTimeout)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Application context canceled, shutting down")
		wsServer.Shutdown()
		return nil
	})

	return group.Wait()
}

func newLobbyRepository(ctx context.Context, conf *config.Config) (repository.LobbyRepository, func() error, error) {
	if !conf.Redis.Enabled {
		return repository.NewLobbyRepository(), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewRedisLobbyRepository(redisStorage.Connection, conf.Redis.TTL), redisStorage.Close, nil
}
