package service

import (
	"sync"
	"testing"

	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliveSet(ids ...string) func(string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return func(id string) bool { return set[id] }
}

func TestWaitingQueue_Enqueue(t *testing.T) {
	queue := NewWaitingQueue()
	player := entity.NewPlayer("p1", "alice")

	assert.True(t, queue.Enqueue(player))
	assert.False(t, queue.Enqueue(player))
	assert.Equal(t, 1, queue.Len())
	assert.True(t, queue.Contains("p1"))
}

func TestWaitingQueue_DequeueValidOpponent(t *testing.T) {
	t.Run("Oldest live player first", func(t *testing.T) {
		queue := NewWaitingQueue()
		queue.Enqueue(entity.NewPlayer("p1", "alice"))
		queue.Enqueue(entity.NewPlayer("p2", "bob"))

		opponent := queue.DequeueValidOpponent(aliveSet("p1", "p2"), "p3")

		require.NotNil(t, opponent)
		assert.Equal(t, "p1", opponent.ConnectionID)
		assert.Equal(t, 1, queue.Len())
	})

	t.Run("Stale entries are skipped and discarded", func(t *testing.T) {
		// Given: P1 queued and then disconnected, P2 queued and still connected
		queue := NewWaitingQueue()
		queue.Enqueue(entity.NewPlayer("p1", "alice"))
		queue.Enqueue(entity.NewPlayer("p2", "bob"))

		// When: P3 asks for an opponent
		opponent := queue.DequeueValidOpponent(aliveSet("p2", "p3"), "p3")

		// Then: P3 is matched with P2 and P1 is gone from the queue
		require.NotNil(t, opponent)
		assert.Equal(t, "p2", opponent.ConnectionID)
		assert.Zero(t, queue.Len())
		assert.False(t, queue.Contains("p1"))
	})

	t.Run("Only stale entries", func(t *testing.T) {
		queue := NewWaitingQueue()
		queue.Enqueue(entity.NewPlayer("p1", "alice"))

		opponent := queue.DequeueValidOpponent(aliveSet(), "p3")

		assert.Nil(t, opponent)
		assert.Zero(t, queue.Len())
	})

	t.Run("Never matches a player with itself", func(t *testing.T) {
		// Given: the requester is already waiting
		queue := NewWaitingQueue()
		queue.Enqueue(entity.NewPlayer("p1", "alice"))

		// When: the same player asks for an opponent
		opponent := queue.DequeueValidOpponent(aliveSet("p1"), "p1")

		// Then: nobody is returned and the entry keeps its place
		assert.Nil(t, opponent)
		assert.True(t, queue.Contains("p1"))
	})

	t.Run("Excluded entry keeps its place ahead of the rest", func(t *testing.T) {
		queue := NewWaitingQueue()
		queue.Enqueue(entity.NewPlayer("p1", "alice"))
		queue.Enqueue(entity.NewPlayer("p2", "bob"))
		queue.Enqueue(entity.NewPlayer("p3", "carol"))

		opponent := queue.DequeueValidOpponent(aliveSet("p1", "p2", "p3"), "p1")

		require.NotNil(t, opponent)
		assert.Equal(t, "p2", opponent.ConnectionID)

		next := queue.DequeueValidOpponent(aliveSet("p1", "p3"), "p9")
		require.NotNil(t, next)
		assert.Equal(t, "p1", next.ConnectionID)
	})
}

func TestWaitingQueue_Remove(t *testing.T) {
	queue := NewWaitingQueue()
	queue.Enqueue(entity.NewPlayer("p1", "alice"))
	queue.Enqueue(entity.NewPlayer("p2", "bob"))

	assert.True(t, queue.Remove("p1"))
	assert.False(t, queue.Remove("p1"))
	assert.Equal(t, 1, queue.Len())
	assert.True(t, queue.Contains("p2"))
}

func TestWaitingQueue_ConcurrentDequeue(t *testing.T) {
	// Given: one waiting player
	queue := NewWaitingQueue()
	queue.Enqueue(entity.NewPlayer("p1", "alice"))

	// When: many requesters race for it
	var wg sync.WaitGroup
	results := make(chan *entity.Player, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- queue.DequeueValidOpponent(aliveSet("p1"), "")
		}()
	}
	wg.Wait()
	close(results)

	// Then: exactly one of them got it
	matched := 0
	for opponent := range results {
		if opponent != nil {
			matched++
		}
	}

	assert.Equal(t, 1, matched)
}
