package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry := New(suite.NopLogger())
	t.Cleanup(registry.Close)

	return registry
}

func TestRegistry_Create(t *testing.T) {
	t.Run("host gets the first turn and X", func(t *testing.T) {
		// Given: an empty registry
		registry := newTestRegistry(t)
		ctx := context.Background()

		// When: a player creates a room
		room, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)

		// Then: the room waits for an opponent
		require.Len(t, room.Players, 1)
		host := room.Players[0]
		assert.True(t, host.IsHost)
		assert.True(t, host.HasTurn)
		assert.Equal(t, entity.SymbolX, host.Symbol)
		assert.Equal(t, entity.StatusWaiting, room.Status)
		assert.Len(t, room.ID, roomIDLength)

		roomID, ok := registry.RoomOf("p1")
		assert.True(t, ok)
		assert.Equal(t, room.ID, roomID)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("ids are redrawn on collision", func(t *testing.T) {
		// Given: an id generator that repeats itself
		registry := newTestRegistry(t)
		ids := []string{"AAAA0000", "AAAA0000", "BBBB1111"}
		registry.newID = func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}

		// When: two rooms are created
		first, err := registry.Create(context.Background(), entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)
		second, err := registry.Create(context.Background(), entity.NewPlayer("p2", "Bob"), nil)
		require.NoError(t, err)

		// Then: the ids differ
		assert.Equal(t, "AAAA0000", first.ID)
		assert.Equal(t, "BBBB1111", second.ID)
	})

	t.Run("seated player cannot create another room", func(t *testing.T) {
		registry := newTestRegistry(t)
		_, err := registry.Create(context.Background(), entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)

		_, err = registry.Create(context.Background(), entity.NewPlayer("p1", "Ann"), nil)

		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("hook sees the new room", func(t *testing.T) {
		registry := newTestRegistry(t)

		var hooked entity.Room
		room, err := registry.Create(context.Background(), entity.NewPlayer("p1", "Ann"), func(snapshot entity.Room) {
			hooked = snapshot
		})

		require.NoError(t, err)
		assert.Equal(t, room, hooked)
	})
}

func TestRegistry_Join(t *testing.T) {
	t.Run("joiner fills the room", func(t *testing.T) {
		// Given: a waiting room
		registry := newTestRegistry(t)
		ctx := context.Background()
		created, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)

		// When: a second player joins
		var hooked entity.Room
		room, err := registry.Join(ctx, created.ID, entity.NewPlayer("p2", "Bob"), func(snapshot entity.Room) {
			hooked = snapshot
		})
		require.NoError(t, err)

		// Then: the match is active and the joiner waits for the host
		assert.Equal(t, entity.StatusActive, room.Status)
		require.Len(t, room.Players, 2)
		joiner := room.Players[1]
		assert.False(t, joiner.IsHost)
		assert.False(t, joiner.HasTurn)
		assert.Equal(t, entity.SymbolO, joiner.Symbol)
		assert.Equal(t, room, hooked)

		roomID, ok := registry.RoomOf("p2")
		assert.True(t, ok)
		assert.Equal(t, created.ID, roomID)
	})

	t.Run("second join is rejected as full", func(t *testing.T) {
		// Given: a full room
		registry := newTestRegistry(t)
		ctx := context.Background()
		created, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)
		_, err = registry.Join(ctx, created.ID, entity.NewPlayer("p2", "Bob"), nil)
		require.NoError(t, err)

		// When: a third player joins
		_, err = registry.Join(ctx, created.ID, entity.NewPlayer("p3", "Cid"), nil)

		// Then: the join is rejected
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		_, ok := registry.RoomOf("p3")
		assert.False(t, ok)
	})

	t.Run("unknown room", func(t *testing.T) {
		registry := newTestRegistry(t)

		_, err := registry.Join(context.Background(), "NOPE0000", entity.NewPlayer("p2", "Bob"), nil)

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("concurrent joins admit exactly one player", func(t *testing.T) {
		// Given: a waiting room
		registry := newTestRegistry(t)
		ctx := context.Background()
		created, err := registry.Create(ctx, entity.NewPlayer("host", "Ann"), nil)
		require.NoError(t, err)

		// When: many players race for the free seat
		const racers = 20
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			joined int
			full   int
		)
		for i := range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := registry.Join(ctx, created.ID, entity.NewPlayer(fmt.Sprintf("p%d", i), "racer"), nil)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					joined++
				case apperror.Code(err) == apperror.CodeRoomFull:
					full++
				}
			}()
		}
		wg.Wait()

		// Then: one wins and everybody else sees ROOM_FULL
		assert.Equal(t, 1, joined)
		assert.Equal(t, racers-1, full)
	})
}

func TestRegistry_ListJoinable(t *testing.T) {
	// Given: two waiting rooms and one full room
	registry := newTestRegistry(t)
	ctx := context.Background()

	first, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
	require.NoError(t, err)
	full, err := registry.Create(ctx, entity.NewPlayer("p2", "Bob"), nil)
	require.NoError(t, err)
	last, err := registry.Create(ctx, entity.NewPlayer("p3", "Cid"), nil)
	require.NoError(t, err)
	_, err = registry.Join(ctx, full.ID, entity.NewPlayer("p4", "Dan"), nil)
	require.NoError(t, err)

	// When: listing rooms
	rooms, err := registry.ListJoinable(ctx)
	require.NoError(t, err)

	// Then: only rooms with a free seat are listed, oldest first
	assert.Equal(t, []entity.RoomSummary{
		{RoomID: first.ID, HostDisplayName: "Ann", PlayerCount: 1},
		{RoomID: last.ID, HostDisplayName: "Cid", PlayerCount: 1},
	}, rooms)
}

func TestRegistry_RemovePlayer(t *testing.T) {
	t.Run("departure tears the room down", func(t *testing.T) {
		// Given: an active room
		registry := newTestRegistry(t)
		ctx := context.Background()
		created, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)
		_, err = registry.Join(ctx, created.ID, entity.NewPlayer("p2", "Bob"), nil)
		require.NoError(t, err)
		actor, err := registry.Get(created.ID)
		require.NoError(t, err)

		// When: the joiner leaves
		var hooked entity.Room
		last, err := registry.RemovePlayer(ctx, "p2", func(snapshot entity.Room) {
			hooked = snapshot
		})
		require.NoError(t, err)

		// Then: both players are detached and the room is gone
		assert.Len(t, last.Players, 2)
		assert.Equal(t, last, hooked)
		assert.Equal(t, 0, registry.Count())
		assert.True(t, actor.Stopped())

		_, ok := registry.RoomOf("p1")
		assert.False(t, ok)
		_, ok = registry.RoomOf("p2")
		assert.False(t, ok)

		_, err = registry.Get(created.ID)
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("host alone", func(t *testing.T) {
		registry := newTestRegistry(t)
		ctx := context.Background()
		_, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)

		_, err = registry.RemovePlayer(ctx, "p1", nil)
		require.NoError(t, err)

		rooms, err := registry.ListJoinable(ctx)
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})

	t.Run("player without a room", func(t *testing.T) {
		registry := newTestRegistry(t)

		_, err := registry.RemovePlayer(context.Background(), "ghost", nil)

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("join after teardown", func(t *testing.T) {
		registry := newTestRegistry(t)
		ctx := context.Background()
		created, err := registry.Create(ctx, entity.NewPlayer("p1", "Ann"), nil)
		require.NoError(t, err)
		_, err = registry.RemovePlayer(ctx, "p1", nil)
		require.NoError(t, err)

		_, err = registry.Join(ctx, created.ID, entity.NewPlayer("p2", "Bob"), nil)

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
