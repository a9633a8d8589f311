package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type lobby interface {
	ListRooms(ctx context.Context) ([]entity.RoomSummary, error)
}

type matchHistory interface {
	ListByRoom(ctx context.Context, roomID string, limit int) ([]entity.MatchRecord, error)
}

type Server struct {
	logger  *slog.Logger
	lobby   lobby
	matches matchHistory
	metrics http.Handler
}

func New(logger *slog.Logger, lobby lobby, matches matchHistory, metrics http.Handler) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		lobby:   lobby,
		matches: matches,
		metrics: metrics,
	}
}

func (that *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.Use(recovery(that.logger))
	router.Use(logging(that.logger))

	router.HandleFunc("/ping", that.pingHandler).Methods(http.MethodGet)
	router.HandleFunc("/rooms", that.roomsHandler).Methods(http.MethodGet)
	router.HandleFunc("/rooms/{id}/matches", that.matchesHandler).Methods(http.MethodGet)

	if that.metrics != nil {
		router.Handle("/metrics", that.metrics).Methods(http.MethodGet)
	}

	return router
}

// Start - serves the REST API and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("rest server started", "port", port)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info("rest server stopped")

	return nil
}
