package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

const MaxNameLength = 32

type PlayerService interface {
	CreatePlayer(connectionID, name string) (*entity.Player, error)
	GetByID(connectionID string) (*entity.Player, error)
	DeleteByID(connectionID string)
	IsAlive(connectionID string) bool
}

type playerRepo interface {
	Register(connectionID, name string) *entity.Player
	GetByID(connectionID string) (*entity.Player, error)
	DeleteByID(connectionID string)
	Exists(connectionID string) bool
}

type playerService struct {
	playerRepo playerRepo
}

func NewPlayerService(playerRepo playerRepo) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

// CreatePlayer - registers the display name for a connection, replacing a previous one.
func (that *playerService) CreatePlayer(connectionID, name string) (*entity.Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	return that.playerRepo.Register(connectionID, name), nil
}

func (that *playerService) GetByID(connectionID string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *playerService) DeleteByID(connectionID string) {
	that.playerRepo.DeleteByID(connectionID)
}

// IsAlive - a player is alive while its connection keeps it registered.
func (that *playerService) IsAlive(connectionID string) bool {
	return that.playerRepo.Exists(connectionID)
}

// NormalizeName - trims the name and checks it is neither empty nor too long.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("%w: name is empty", apperror.ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name is longer than %d characters", apperror.ErrInvalidName, MaxNameLength)
	}

	return name, nil
}
