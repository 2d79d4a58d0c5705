package game

import (
	"strings"
	"testing"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_New(t *testing.T) {
	t.Run("Creates a tic-tac-toe session", func(t *testing.T) {
		// Given: the default registry
		registry := NewRegistry()

		// When: a tic-tac-toe session is requested
		session, err := registry.New(entity.KindTicTacToe)

		// Then: a waiting two-seat session with a 3x3 board is returned
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(session.ID, "_tictactoe"))
		assert.Equal(t, 2, session.Capacity)
		assert.Equal(t, entity.StateWaiting, session.State())
		assert.Len(t, session.Snapshot().Board, 3)
	})

	t.Run("Every session gets its own id", func(t *testing.T) {
		registry := NewRegistry()

		first, err := registry.New(entity.KindTicTacToe)
		require.NoError(t, err)
		second, err := registry.New(entity.KindTicTacToe)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		// When: an unregistered kind is requested
		session, err := NewRegistry().New("chess")

		// Then: ErrUnknownGameKind is returned
		require.ErrorIs(t, err, apperror.ErrUnknownGameKind)
		assert.Nil(t, session)
	})
}

func TestRegistry_Kinds(t *testing.T) {
	assert.Equal(t, []entity.GameKind{entity.KindTicTacToe}, NewRegistry().Kinds())
}
