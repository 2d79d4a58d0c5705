package pkg

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint: gosec // ids are not secrets
	ulidEntropyMu sync.Mutex
)

// GenerateID - generates a new sortable unique id, used for connections.
func GenerateID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// GenerateGameID - generates a game id that carries the game kind as a suffix.
func GenerateGameID(kind string) string {
	return GenerateID() + "_" + kind
}
