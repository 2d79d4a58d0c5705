package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_RecordResult(t *testing.T) {
	// Given: fresh stats
	stats := Stats{}

	// When: recording one of every result
	stats.RecordResult(Win)
	stats.RecordResult(Win)
	stats.RecordResult(Lose)
	stats.RecordResult(Tie)
	stats.RecordResult(NotOver)

	// Then: every counter reflects its results
	assert.Equal(t, Stats{Wins: 2, Losses: 1, Ties: 1}, stats)
}

func TestStats_PreferredSymbol(t *testing.T) {
	t.Run("None without history", func(t *testing.T) {
		assert.Equal(t, PreferredSymbolNone, NewPlayer("c1", "alice").Stats.PreferredSymbol)
	})

	t.Run("X on an even split", func(t *testing.T) {
		stats := Stats{}
		stats.RecordSymbol(SymbolX)
		stats.RecordSymbol(SymbolO)

		assert.Equal(t, "X", stats.PreferredSymbol)
	})

	t.Run("O when O dominates", func(t *testing.T) {
		stats := Stats{}
		stats.RecordSymbol(SymbolO)
		stats.RecordSymbol(SymbolO)
		stats.RecordSymbol(SymbolX)

		assert.Equal(t, "O", stats.PreferredSymbol)
	})

	t.Run("Serialized with the player", func(t *testing.T) {
		player := NewPlayer("c1", "alice")
		player.Stats.RecordSymbol(SymbolO)

		data, err := json.Marshal(player.Clone())

		require.NoError(t, err)
		assert.Contains(t, string(data), `"preferred_symbol":"O"`)
	})
}

func TestPlayer_Clone(t *testing.T) {
	// Given: a player with symbol history
	player := NewPlayer("c1", "alice")
	player.Stats.RecordSymbol(SymbolX)

	// When: the clone's history is changed
	clone := player.Clone()
	clone.Stats.SymbolHistory[0] = SymbolO

	// Then: the original is untouched
	assert.Equal(t, SymbolX, player.Stats.SymbolHistory[0])
	assert.Equal(t, NotOver, clone.GameOverState)
}

func TestSymbol_Opposite(t *testing.T) {
	assert.Equal(t, SymbolO, SymbolX.Opposite())
	assert.Equal(t, SymbolX, SymbolO.Opposite())
	assert.True(t, SymbolX.IsValid())
	assert.False(t, EmptySymbol.IsValid())
}

func TestSummary_IsJoinable(t *testing.T) {
	assert.True(t, Summary{State: StateWaiting, PlayerCount: 1, Capacity: 2}.IsJoinable())
	assert.False(t, Summary{State: StateSetup, PlayerCount: 2, Capacity: 2}.IsJoinable())
	assert.False(t, Summary{State: StateWaiting, PlayerCount: 1, Capacity: 2, Removed: true}.IsJoinable())
}
