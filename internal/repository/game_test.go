package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hub/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(id string, updatedAt time.Time) *entity.Session {
	return entity.NewSession(id, entity.KindTicTacToe, tictactoe.Capacity, tictactoe.NewBoard(),
		entity.WithClock(func() time.Time { return updatedAt }))
}

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	gameRepo := NewGameRepository()

	// Given: a waiting session
	session := newTestSession("123", time.Now())

	// When: CreateOrUpdate is called
	gameRepo.CreateOrUpdate(session)

	// Then: the same session is returned by id
	found, err := gameRepo.GetByID("123")
	require.NoError(t, err)
	assert.Same(t, session, found)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		gameRepo := NewGameRepository()

		// When: GetByID is called with a non-existent id
		session, err := gameRepo.GetByID("9999999")

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, session)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	// Given: a stored session
	gameRepo := NewGameRepository()
	gameRepo.CreateOrUpdate(newTestSession("123", time.Now()))

	// When: DeleteByID is called twice
	gameRepo.DeleteByID("123")
	gameRepo.DeleteByID("123")

	// Then: the session is gone
	_, err := gameRepo.GetByID("123")
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
	assert.Empty(t, gameRepo.List())
}

func TestGameRepository_List(t *testing.T) {
	gameRepo := NewGameRepository()
	gameRepo.CreateOrUpdate(newTestSession("02", time.Now()))
	gameRepo.CreateOrUpdate(newTestSession("01", time.Now()))
	gameRepo.CreateOrUpdate(newTestSession("03", time.Now()))

	ids := make([]string, 0, 3)
	for _, session := range gameRepo.List() {
		ids = append(ids, session.ID)
	}

	assert.Equal(t, []string{"01", "02", "03"}, ids)
}

func TestGameRepository_IdleSince(t *testing.T) {
	// Given: one stale and one fresh session
	now := time.Now()
	gameRepo := NewGameRepository()
	gameRepo.CreateOrUpdate(newTestSession("stale", now.Add(-time.Hour)))
	gameRepo.CreateOrUpdate(newTestSession("fresh", now))

	// When: asking for sessions idle for ten minutes
	idle := gameRepo.IdleSince(now.Add(-10 * time.Minute))

	// Then: only the stale one is returned
	require.Len(t, idle, 1)
	assert.Equal(t, "stale", idle[0].ID)
}
