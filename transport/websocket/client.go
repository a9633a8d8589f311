package websocket

import (
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
)

// client is one upgraded connection. Outgoing frames go through send and are written
// by writePump only; a full queue means the peer is too slow and the connection is dropped.
type client struct {
	id   string
	conn *gorillaws.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	options Options
}

func newClient(id string, conn *gorillaws.Conn, options Options) *client {
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, options.SendBuffer),
		done:    make(chan struct{}),
		options: options,
	}
}

// enqueue - never blocks; false means the frame was not queued.
func (that *client) enqueue(frame []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- frame:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.once.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(that.options.PingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case frame := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait))
			if err := that.conn.WriteMessage(gorillaws.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait))
			if err := that.conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			return
		}
	}
}

// readPump - blocks until the peer goes away, passing every text frame to handle.
func (that *client) readPump(handle func(data []byte)) {
	defer that.close()

	that.conn.SetReadLimit(that.options.ReadLimit)
	_ = that.conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	})

	for {
		messageType, data, err := that.conn.ReadMessage()
		if err != nil {
			return
		}

		if messageType != gorillaws.TextMessage {
			continue
		}

		handle(data)
	}
}
