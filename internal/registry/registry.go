package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/room"
)

const roomIDLength = 8

// Hook runs on the room's goroutine right after a successful change, with the resulting snapshot.
// Events sent from a hook reach clients in the order the changes were applied.
type Hook func(snapshot entity.Room)

// Registry keeps the live rooms. The maps are guarded by mu; the rooms themselves are
// only touched through their actors.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*room.Actor
	order []string
	seats map[string]string // playerID -> roomID

	newID func() string
	now   func() time.Time
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("component", "registry"),
		rooms:  make(map[string]*room.Actor),
		seats:  make(map[string]string),
		newID:  NewRoomID,
		now:    time.Now,
	}
}

// NewRoomID - short upper case code cut from a random uuid.
func NewRoomID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength])
}

// ListJoinable - summaries of rooms with a free seat, oldest first.
func (that *Registry) ListJoinable(ctx context.Context) ([]entity.RoomSummary, error) {
	that.mu.RLock()
	actors := make([]*room.Actor, 0, len(that.order))
	for _, id := range that.order {
		actors = append(actors, that.rooms[id])
	}
	that.mu.RUnlock()

	summaries := make([]entity.RoomSummary, 0, len(actors))
	for _, actor := range actors {
		var (
			summary  entity.RoomSummary
			joinable bool
		)

		err := actor.Do(ctx, func(r *entity.Room) {
			joinable = r.IsWaiting() && !r.IsFull() && !r.IsEmpty()
			summary = r.Summary()
		})
		if errors.Is(err, room.ErrClosed) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read room %s: %w", actor.ID(), err)
		}

		if joinable {
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// Create - opens a new waiting room hosted by host.
func (that *Registry) Create(_ context.Context, host *entity.Player, hook Hook) (entity.Room, error) {
	log := that.logger.With("method", "Create")

	that.mu.Lock()
	defer that.mu.Unlock()

	if roomID, ok := that.seats[host.ID]; ok {
		return entity.Room{}, fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, roomID)
	}

	id := that.newID()
	for that.rooms[id] != nil {
		id = that.newID()
	}

	player := *host
	created := entity.NewRoom(id, &player, that.now())
	snapshot := created.Clone()

	if hook != nil {
		hook(snapshot)
	}

	that.rooms[id] = room.NewActor(created)
	that.order = append(that.order, id)
	that.seats[host.ID] = id

	log.Debug("room created", "room_id", id, "host_id", host.ID)

	return snapshot, nil
}

// Join - seats player in a waiting room and starts the match.
func (that *Registry) Join(ctx context.Context, roomID string, player *entity.Player, hook Hook) (entity.Room, error) {
	log := that.logger.With("method", "Join")

	actor, err := that.Get(roomID)
	if err != nil {
		return entity.Room{}, err
	}

	var (
		snapshot entity.Room
		joinErr  error
	)

	err = actor.Do(ctx, func(r *entity.Room) {
		that.mu.Lock()
		if seated, ok := that.seats[player.ID]; ok {
			that.mu.Unlock()
			joinErr = fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, seated)
			return
		}

		joiner := *player
		if joinErr = r.Join(&joiner); joinErr != nil {
			that.mu.Unlock()
			return
		}

		that.seats[player.ID] = r.ID
		that.mu.Unlock()

		snapshot = r.Clone()
		if hook != nil {
			hook(snapshot)
		}
	})
	if errors.Is(err, room.ErrClosed) {
		return entity.Room{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}
	if err != nil {
		return entity.Room{}, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}
	if joinErr != nil {
		return entity.Room{}, joinErr
	}

	log.Debug("player joined", "room_id", roomID, "player_id", player.ID)

	return snapshot, nil
}

// RemovePlayer - detaches playerID and tears the room down; the other occupant, if any,
// is detached too. Returns the room as it was right before the teardown.
func (that *Registry) RemovePlayer(ctx context.Context, playerID string, hook Hook) (entity.Room, error) {
	log := that.logger.With("method", "RemovePlayer")

	roomID, ok := that.RoomOf(playerID)
	if !ok {
		return entity.Room{}, apperror.ErrNotInRoom
	}

	actor, err := that.Get(roomID)
	if err != nil {
		return entity.Room{}, err
	}

	var (
		snapshot entity.Room
		removed  bool
	)

	err = actor.Do(ctx, func(r *entity.Room) {
		if r.PlayerByID(playerID) == nil {
			return
		}

		snapshot = r.Clone()
		removed = true

		that.mu.Lock()
		for _, p := range r.Players {
			if that.seats[p.ID] == r.ID {
				delete(that.seats, p.ID)
			}
		}
		that.dropLocked(r.ID)
		that.mu.Unlock()

		r.Players = nil

		if hook != nil {
			hook(snapshot)
		}
	})
	if errors.Is(err, room.ErrClosed) {
		return entity.Room{}, apperror.ErrNotInRoom
	}
	if err != nil {
		return entity.Room{}, fmt.Errorf("failed to leave room %s: %w", roomID, err)
	}
	if !removed {
		return entity.Room{}, apperror.ErrNotInRoom
	}

	actor.Stop()

	log.Debug("room closed", "room_id", roomID, "player_id", playerID)

	return snapshot, nil
}

func (that *Registry) Get(roomID string) (*room.Actor, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	actor, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return actor, nil
}

func (that *Registry) RoomOf(playerID string) (string, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	roomID, ok := that.seats[playerID]
	return roomID, ok
}

func (that *Registry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Close - stops every room actor.
func (that *Registry) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, actor := range that.rooms {
		actor.Stop()
		delete(that.rooms, id)
	}
	that.order = nil
	clear(that.seats)
}

func (that *Registry) dropLocked(roomID string) {
	delete(that.rooms, roomID)

	for i, id := range that.order {
		if id == roomID {
			that.order = append(that.order[:i], that.order[i+1:]...)
			break
		}
	}
}
