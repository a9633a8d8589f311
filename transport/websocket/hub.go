package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type hubMetrics interface {
	IncOnlineConnections()
	DecOnlineConnections()
}

// Hub routes events to connected players by id.
type Hub struct {
	logger  *slog.Logger
	metrics hubMetrics

	connectionsMutex sync.RWMutex
	connections      map[string]*client
}

func NewHub(logger *slog.Logger, metrics hubMetrics) *Hub {
	return &Hub{
		logger:      logger.With("component", "hub"),
		metrics:     metrics,
		connections: make(map[string]*client),
	}
}

// Notify - queues event for playerID. Unknown players are ignored; a player whose queue is
// full is disconnected.
func (that *Hub) Notify(playerID string, event entity.Event) {
	that.send(playerID, event.Action(), event)
}

func (that *Hub) Online() int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.connections)
}

func (that *Hub) send(playerID, action string, payload any) {
	log := that.logger.With("method", "send", "player_id", playerID, "action", action)

	that.connectionsMutex.RLock()
	conn, ok := that.connections[playerID]
	that.connectionsMutex.RUnlock()

	if !ok {
		log.Debug("connection not found")
		return
	}

	frame, err := encode(action, payload)
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	if !conn.enqueue(frame) {
		log.Warn("send queue is full, dropping connection")
		conn.close()
	}
}

func (that *Hub) register(conn *client) {
	that.connectionsMutex.Lock()
	that.connections[conn.id] = conn
	that.connectionsMutex.Unlock()

	that.metrics.IncOnlineConnections()
}

func (that *Hub) unregister(conn *client) {
	that.connectionsMutex.Lock()
	current, ok := that.connections[conn.id]
	removed := ok && current == conn
	if removed {
		delete(that.connections, conn.id)
	}
	that.connectionsMutex.Unlock()

	if removed {
		that.metrics.DecOnlineConnections()
	}
}

// closeAll - drops every connection; used on shutdown.
func (that *Hub) closeAll() {
	that.connectionsMutex.RLock()
	conns := make([]*client, 0, len(that.connections))
	for _, conn := range that.connections {
		conns = append(conns, conn)
	}
	that.connectionsMutex.RUnlock()

	for _, conn := range conns {
		conn.close()
	}
}
