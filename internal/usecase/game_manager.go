package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/room"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

const MaxDisplayNameLength = 32

type notifier interface {
	Notify(playerID string, event entity.Event)
}

type matchRepo interface {
	Save(ctx context.Context, record entity.MatchRecord) error
}

type roomRegistry interface {
	ListJoinable(ctx context.Context) ([]entity.RoomSummary, error)
	Create(ctx context.Context, host *entity.Player, hook registry.Hook) (entity.Room, error)
	Join(ctx context.Context, roomID string, player *entity.Player, hook registry.Hook) (entity.Room, error)
	RemovePlayer(ctx context.Context, playerID string, hook registry.Hook) (entity.Room, error)
	Get(roomID string) (*room.Actor, error)
	RoomOf(playerID string) (string, bool)
	Count() int
}

type gameMetrics interface {
	SetActiveRooms(count int)
	IncMovesApplied(outcome string)
}

// GameManager drives rooms on behalf of connected players and pushes the resulting events.
// Rejections are returned to the caller and never broadcast.
type GameManager struct {
	logger   *slog.Logger
	registry roomRegistry
	matches  matchRepo
	metrics  gameMetrics
	notifier notifier

	now func() time.Time
}

func NewGameManager(logger *slog.Logger, rooms roomRegistry, matches matchRepo, metrics gameMetrics, notifier notifier) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		registry: rooms,
		matches:  matches,
		metrics:  metrics,
		notifier: notifier,

		now: time.Now,
	}
}

func (that *GameManager) ListRooms(ctx context.Context) ([]entity.RoomSummary, error) {
	rooms, err := that.registry.ListJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// SubmitIdentity - creates a room when targetRoomID is empty, otherwise joins it.
func (that *GameManager) SubmitIdentity(ctx context.Context, playerID, displayName, targetRoomID string) (entity.Room, error) {
	log := that.logger.With("method", "SubmitIdentity", "player_id", playerID)

	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return entity.Room{}, fmt.Errorf("%w: display name is longer than %d characters", apperror.ErrInvalidRequest, MaxDisplayNameLength)
	}

	if roomID, ok := that.registry.RoomOf(playerID); ok {
		return entity.Room{}, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, roomID)
	}

	player := entity.NewPlayer(playerID, displayName)
	targetRoomID = strings.TrimSpace(targetRoomID)

	var (
		snapshot entity.Room
		err      error
	)

	if targetRoomID == "" {
		snapshot, err = that.registry.Create(ctx, player, func(created entity.Room) {
			that.notifier.Notify(playerID, entity.RoomJoined{RoomID: created.ID, PlayerID: playerID})
		})
	} else {
		snapshot, err = that.registry.Join(ctx, targetRoomID, player, func(joined entity.Room) {
			that.notifier.Notify(playerID, entity.RoomJoined{RoomID: joined.ID, PlayerID: playerID})
			that.broadcast(joined, entity.MatchStarted{RoomID: joined.ID, Players: joined.Roster()})
		})
	}
	if err != nil {
		return entity.Room{}, err
	}

	that.metrics.SetActiveRooms(that.registry.Count())

	log.Info("player seated", "room_id", snapshot.ID, "players", len(snapshot.Players))

	return snapshot, nil
}

func (that *GameManager) SubmitMove(ctx context.Context, playerID string, cell entity.Cell) (entity.MoveApplied, error) {
	log := that.logger.With("method", "SubmitMove", "player_id", playerID)

	actor, err := that.seatedRoom(playerID)
	if err != nil {
		return entity.MoveApplied{}, err
	}

	var (
		move    entity.MoveApplied
		record  entity.MatchRecord
		moveErr error
	)

	err = actor.Do(ctx, func(r *entity.Room) {
		move, moveErr = tictactoe.MakeTurn(r, playerID, cell)
		if moveErr != nil {
			return
		}

		that.broadcast(*r, move)

		if move.Finished() {
			record = entity.NewMatchRecord(r, move, that.now())
		}
	})
	if err != nil {
		return entity.MoveApplied{}, roomGone(actor.ID(), err)
	}
	if moveErr != nil {
		return entity.MoveApplied{}, moveErr
	}

	that.metrics.IncMovesApplied(move.Outcome)

	if move.Finished() {
		log.Info("match finished", "room_id", move.RoomID, "outcome", move.Outcome)
		that.recordMatch(ctx, record)
	}

	return move, nil
}

// RequestRestart - roomID may be empty, then the room the player sits in is used.
func (that *GameManager) RequestRestart(ctx context.Context, playerID, roomID string) error {
	log := that.logger.With("method", "RequestRestart", "player_id", playerID)

	if roomID == "" {
		seated, ok := that.registry.RoomOf(playerID)
		if !ok {
			return apperror.ErrNotInRoom
		}
		roomID = seated
	}

	actor, err := that.registry.Get(roomID)
	if err != nil {
		return err
	}

	var restartErr error
	err = actor.Do(ctx, func(r *entity.Room) {
		if restartErr = tictactoe.Restart(r, playerID); restartErr != nil {
			return
		}

		that.broadcast(*r, entity.MatchStarted{RoomID: r.ID, Players: r.Roster()})
	})
	if err != nil {
		return roomGone(roomID, err)
	}
	if restartErr != nil {
		return restartErr
	}

	log.Info("match restarted", "room_id", roomID)

	return nil
}

// Disconnect - the room of a departing player is torn down; the opponent is told and detached.
func (that *GameManager) Disconnect(ctx context.Context, playerID string) {
	log := that.logger.With("method", "Disconnect", "player_id", playerID)

	last, err := that.registry.RemovePlayer(ctx, playerID, func(last entity.Room) {
		for _, player := range last.Players {
			if player.ID != playerID {
				that.notifier.Notify(player.ID, entity.OpponentLeft{RoomID: last.ID, PlayerID: playerID})
			}
		}
	})
	if errors.Is(err, apperror.ErrNotInRoom) {
		return
	}
	if err != nil {
		log.Error("failed to remove player", "error", err)
		return
	}

	that.metrics.SetActiveRooms(that.registry.Count())

	log.Info("room closed", "room_id", last.ID)
}

func (that *GameManager) seatedRoom(playerID string) (*room.Actor, error) {
	roomID, ok := that.registry.RoomOf(playerID)
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	actor, err := that.registry.Get(roomID)
	if err != nil {
		return nil, apperror.ErrNotInRoom
	}

	return actor, nil
}

// broadcast - sends event to every seated player, in seat order.
func (that *GameManager) broadcast(snapshot entity.Room, event entity.Event) {
	for _, player := range snapshot.Players {
		that.notifier.Notify(player.ID, event)
	}
}

func (that *GameManager) recordMatch(ctx context.Context, record entity.MatchRecord) {
	log := that.logger.With("method", "recordMatch", "room_id", record.RoomID)

	if err := that.matches.Save(ctx, record); err != nil {
		log.Error("failed to save match record", "error", err)
	}
}

func roomGone(roomID string, err error) error {
	if errors.Is(err, room.ErrClosed) {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return fmt.Errorf("failed to reach room %s: %w", roomID, err)
}
