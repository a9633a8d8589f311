package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	DefaultSendBuffer = 32
	DefaultPingPeriod = 30 * time.Second
	DefaultPongWait   = 60 * time.Second
	DefaultWriteWait  = 10 * time.Second
	DefaultReadLimit  = 4 << 10

	handlerTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	ListRooms(ctx context.Context) ([]entity.RoomSummary, error)
	SubmitIdentity(ctx context.Context, playerID, displayName, targetRoomID string) (entity.Room, error)
	SubmitMove(ctx context.Context, playerID string, cell entity.Cell) (entity.MoveApplied, error)
	RequestRestart(ctx context.Context, playerID, roomID string) error
	Disconnect(ctx context.Context, playerID string)
}

type serverMetrics interface {
	IncMessagesReceived(action string)
	IncRejections(code string)
	ObserveMessageLatency(duration time.Duration)
}

type Options struct {
	SendBuffer int
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	ReadLimit  int64
}

func (that Options) withDefaults() Options {
	if that.SendBuffer <= 0 {
		that.SendBuffer = DefaultSendBuffer
	}
	if that.PingPeriod <= 0 {
		that.PingPeriod = DefaultPingPeriod
	}
	if that.PongWait <= 0 {
		that.PongWait = DefaultPongWait
	}
	if that.PongWait <= that.PingPeriod {
		that.PongWait = 2 * that.PingPeriod
	}
	if that.WriteWait <= 0 {
		that.WriteWait = DefaultWriteWait
	}
	if that.ReadLimit <= 0 {
		that.ReadLimit = DefaultReadLimit
	}
	return that
}

type Server struct {
	logger  *slog.Logger
	hub     *Hub
	uGame   uGame
	metrics serverMetrics
	options Options

	upgrader gorillaws.Upgrader
	handlers map[string]func(ctx context.Context, playerID string, message *Message) error
}

func New(logger *slog.Logger, hub *Hub, uGame uGame, metrics serverMetrics, options Options) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		hub:     hub,
		uGame:   uGame,
		metrics: metrics,
		options: options.withDefaults(),

		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers[ActionRoomsGet] = server.handleRoomsGet
	server.handlers[ActionIdentity] = server.handleIdentity
	server.handlers[ActionMove] = server.handleMove
	server.handlers[ActionRestart] = server.handleRestart

	return server
}

// Handler - serves the upgrade endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("websocket server started", "port", port)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	that.hub.closeAll()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info("websocket server stopped")

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until the peer leaves.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := uuid.NewString()
	log = log.With("player_id", playerID)

	c := newClient(playerID, conn, that.options)
	that.hub.register(c)

	go c.writePump()

	that.hub.send(playerID, ActionConnected, ConnectedPayload{PlayerID: playerID})

	log.Info("WebSocket connection established")

	c.readPump(func(data []byte) {
		that.handleMessage(ctx, playerID, data)
	})

	that.hub.unregister(c)
	that.uGame.Disconnect(context.WithoutCancel(ctx), playerID)

	log.Info("WebSocket connection closed")
}
