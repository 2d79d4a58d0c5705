package session

import (
	"sort"
	"sync"
)

// Directory holds the context of every open connection.
type Directory struct {
	mu       sync.RWMutex
	contexts map[string]*Context
}

func NewDirectory() *Directory {
	return &Directory{
		contexts: make(map[string]*Context),
	}
}

// Open - returns the context of the connection, creating an empty one if needed.
func (that *Directory) Open(connectionID string) *Context {
	that.mu.Lock()
	defer that.mu.Unlock()

	if ctx, ok := that.contexts[connectionID]; ok {
		return ctx
	}

	ctx := NewContext(connectionID)
	that.contexts[connectionID] = ctx

	return ctx
}

func (that *Directory) Get(connectionID string) (*Context, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ctx, ok := that.contexts[connectionID]
	return ctx, ok
}

func (that *Directory) Close(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.contexts, connectionID)
}

// Lobby - connections that are not bound to a game, sorted.
func (that *Directory) Lobby() []string {
	that.mu.RLock()
	ids := make([]string, 0, len(that.contexts))
	for id, ctx := range that.contexts {
		if !ctx.InGame() {
			ids = append(ids, id)
		}
	}
	that.mu.RUnlock()

	sort.Strings(ids)

	return ids
}

func (that *Directory) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.contexts)
}
