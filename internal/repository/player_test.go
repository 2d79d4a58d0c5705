package repository

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_Register(t *testing.T) {
	playerRepo := NewPlayerRepository()

	// When: a player is registered
	player := playerRepo.Register("conn-1", "alice")

	// Then: it can be found by its connection id
	require.NotNil(t, player)
	assert.True(t, playerRepo.Exists("conn-1"))

	found, err := playerRepo.GetByID("conn-1")
	require.NoError(t, err)
	assert.Same(t, player, found)
	assert.Equal(t, "alice", found.Name)
}

func TestPlayerRepository_RegisterOverwrites(t *testing.T) {
	// Given: a registered player
	playerRepo := NewPlayerRepository()
	playerRepo.Register("conn-1", "alice")

	// When: the same connection registers again
	playerRepo.Register("conn-1", "alicia")

	// Then: only the new player is kept
	found, err := playerRepo.GetByID("conn-1")
	require.NoError(t, err)
	assert.Equal(t, "alicia", found.Name)
	assert.Equal(t, 1, playerRepo.Count())
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		playerRepo := NewPlayerRepository()

		// When: GetByID is called with a non-existent id
		player, err := playerRepo.GetByID("9999999")

		// Then: ErrPlayerNotFound is returned
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Nil(t, player)
	})
}

func TestPlayerRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		playerRepo := NewPlayerRepository()
		playerRepo.Register("conn-1", "alice")

		playerRepo.DeleteByID("conn-1")

		assert.False(t, playerRepo.Exists("conn-1"))
		assert.Zero(t, playerRepo.Count())
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		playerRepo := NewPlayerRepository()

		assert.NotPanics(t, func() { playerRepo.DeleteByID("9999999") })
	})
}
