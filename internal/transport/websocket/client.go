package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client is one websocket connection. Writes go through send and are performed by the
// write pump only; done is closed once the connection should shut down.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks: it reports false when the client is closed or its buffer is full.
func (that *client) enqueue(data []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *client) isClosed() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}
