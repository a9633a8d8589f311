package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-rooms/mocks/usecase"
	"github.com/rocketscienceinc/tictactoe-rooms/testing/suite"
)

var errRedisDown = errors.New("redis down")

type fakeNotifier struct {
	mu     sync.Mutex
	events map[string][]entity.Event
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(map[string][]entity.Event)}
}

func (that *fakeNotifier) Notify(playerID string, event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events[playerID] = append(that.events[playerID], event)
}

func (that *fakeNotifier) of(playerID string) []entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Event(nil), that.events[playerID]...)
}

func (that *fakeNotifier) last(playerID string) entity.Event {
	events := that.of(playerID)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

func (that *fakeNotifier) reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	clear(that.events)
}

type fixture struct {
	manager  *GameManager
	registry *registry.Registry
	notifier *fakeNotifier
	matches  *mockedUseCase.MockmatchRepo
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := suite.NopLogger()
	rooms := registry.New(logger)
	t.Cleanup(rooms.Close)

	f := &fixture{
		registry: rooms,
		notifier: newFakeNotifier(),
		matches:  mockedUseCase.NewMockmatchRepo(t),
		metrics:  metrics.New("test"),
	}
	f.manager = NewGameManager(logger, rooms, f.matches, f.metrics, f.notifier)

	return f
}

// startMatch - Scenario A setup: "host" creates a room and "joiner" joins it.
func (that *fixture) startMatch(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	created, err := that.manager.SubmitIdentity(ctx, "host", "Ann", "")
	require.NoError(t, err)

	_, err = that.manager.SubmitIdentity(ctx, "joiner", "Bea", created.ID)
	require.NoError(t, err)

	return created.ID
}

func (that *fixture) play(t *testing.T, cells ...entity.Cell) entity.MoveApplied {
	t.Helper()

	var move entity.MoveApplied
	for i, c := range cells {
		playerID := "host"
		if i%2 == 1 {
			playerID = "joiner"
		}

		var err error
		move, err = that.manager.SubmitMove(context.Background(), playerID, c)
		require.NoError(t, err)
	}

	return move
}

func (that *fixture) snapshot(t *testing.T, roomID string) entity.Room {
	t.Helper()

	actor, err := that.registry.Get(roomID)
	require.NoError(t, err)

	var snapshot entity.Room
	require.NoError(t, actor.Do(context.Background(), func(r *entity.Room) {
		snapshot = r.Clone()
	}))

	return snapshot
}

func cell(row, col int) entity.Cell {
	return entity.Cell{Row: row, Col: col}
}

func TestGameManager_SubmitIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario A: both players receive the same roster", func(t *testing.T) {
		// Given: a host waiting in a new room
		f := newFixture(t)
		created, err := f.manager.SubmitIdentity(ctx, "host", "Ann", "")
		require.NoError(t, err)
		assert.Equal(t, []entity.Event{entity.RoomJoined{RoomID: created.ID, PlayerID: "host"}}, f.notifier.of("host"))

		// When: Bea joins the room
		joined, err := f.manager.SubmitIdentity(ctx, "joiner", "Bea", created.ID)
		require.NoError(t, err)

		// Then: both receive matchStarted with the host holding the turn
		started, ok := f.notifier.last("host").(entity.MatchStarted)
		require.True(t, ok)
		assert.Equal(t, started, f.notifier.last("joiner"))
		assert.Equal(t, entity.RoomJoined{RoomID: created.ID, PlayerID: "joiner"}, f.notifier.of("joiner")[0])

		require.Len(t, started.Players, 2)
		assert.Equal(t, "Ann", started.Players[0].DisplayName)
		assert.True(t, started.Players[0].HasTurn)
		assert.Equal(t, "Bea", started.Players[1].DisplayName)
		assert.False(t, started.Players[1].HasTurn)
		assert.Equal(t, entity.StatusActive, joined.Status)
	})

	t.Run("display name is trimmed", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.manager.SubmitIdentity(ctx, "host", "  Ann  ", "")

		require.NoError(t, err)
		assert.Equal(t, "Ann", created.Players[0].DisplayName)
	})

	t.Run("empty display name is allowed", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.manager.SubmitIdentity(ctx, "host", "", "")

		require.NoError(t, err)
		assert.Empty(t, created.Players[0].DisplayName)
	})

	t.Run("display name too long", func(t *testing.T) {
		// Given: a name one rune over the limit
		f := newFixture(t)
		name := strings.Repeat("é", MaxDisplayNameLength+1)

		// When: submitting it
		_, err := f.manager.SubmitIdentity(ctx, "host", name, "")

		// Then: the request is invalid and no room exists
		require.ErrorIs(t, err, apperror.ErrInvalidRequest)
		assert.Equal(t, 0, f.registry.Count())
		assert.Empty(t, f.notifier.of("host"))
	})

	t.Run("identity while seated", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.SubmitIdentity(ctx, "host", "Ann", "")
		require.NoError(t, err)

		_, err = f.manager.SubmitIdentity(ctx, "host", "Ann", "")

		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
		assert.Equal(t, apperror.CodeInvalidRequest, apperror.Code(err))
		assert.Equal(t, 1, f.registry.Count())
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.manager.SubmitIdentity(ctx, "joiner", "Bea", "NOPE0000")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Empty(t, f.notifier.of("joiner"))
	})

	t.Run("full room", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		roomID := f.startMatch(t)
		f.notifier.reset()

		// When: a third player tries to join
		_, err := f.manager.SubmitIdentity(ctx, "third", "Cid", roomID)

		// Then: ROOM_FULL and nobody is notified
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Empty(t, f.notifier.of("third"))
		assert.Empty(t, f.notifier.of("host"))
	})
}

func TestGameManager_ListRooms(t *testing.T) {
	// Given: one waiting room and one started match
	f := newFixture(t)
	f.startMatch(t)
	waiting, err := f.manager.SubmitIdentity(context.Background(), "solo", "Dan", "")
	require.NoError(t, err)

	// When: listing rooms
	rooms, err := f.manager.ListRooms(context.Background())

	// Then: only the waiting room is listed
	require.NoError(t, err)
	assert.Equal(t, []entity.RoomSummary{{RoomID: waiting.ID, HostDisplayName: "Dan", PlayerCount: 1}}, rooms)
}

func TestGameManager_SubmitMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario B: the turn passes to the joiner", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		roomID := f.startMatch(t)

		// When: the host plays (1,1)
		move, err := f.manager.SubmitMove(ctx, "host", cell(1, 1))
		require.NoError(t, err)

		// Then: both players see the move and the joiner holds the turn
		assert.Equal(t, entity.OutcomeNone, move.Outcome)
		assert.Equal(t, move, f.notifier.last("host"))
		assert.Equal(t, move, f.notifier.last("joiner"))

		snapshot := f.snapshot(t, roomID)
		assert.False(t, snapshot.PlayerByID("host").HasTurn)
		assert.True(t, snapshot.PlayerByID("joiner").HasTurn)
	})

	t.Run("Scenario C: X completes row 2", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		roomID := f.startMatch(t)
		f.matches.EXPECT().
			Save(mock.Anything, mock.MatchedBy(func(record entity.MatchRecord) bool {
				return record.RoomID == roomID &&
					record.Outcome == entity.OutcomeWin &&
					record.WinnerID == "host" &&
					record.WinnerName == "Ann" &&
					record.Moves == 5
			})).
			Return(nil).
			Once()

		// When: the host completes row 2
		move := f.play(t, cell(2, 1), cell(1, 1), cell(2, 2), cell(1, 2), cell(2, 3))

		// Then: the move wins and the room is finished
		assert.Equal(t, entity.OutcomeWin, move.Outcome)
		assert.Equal(t, entity.SymbolX, move.Symbol)
		assert.Equal(t, []entity.Cell{cell(2, 1), cell(2, 2), cell(2, 3)}, move.WinningLine)
		assert.Equal(t, move, f.notifier.last("joiner"))

		snapshot := f.snapshot(t, roomID)
		assert.Equal(t, entity.StatusFinished, snapshot.Status)
		assert.True(t, snapshot.PlayerByID("host").HasWon)
		assert.False(t, snapshot.PlayerByID("host").HasTurn)
		assert.False(t, snapshot.PlayerByID("joiner").HasTurn)
	})

	t.Run("Scenario D: full board without a line", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		f.startMatch(t)
		f.matches.EXPECT().
			Save(mock.Anything, mock.MatchedBy(func(record entity.MatchRecord) bool {
				return record.Outcome == entity.OutcomeDraw && record.WinnerID == "" && record.Moves == 9
			})).
			Return(nil).
			Once()

		// When: all nine cells are filled
		move := f.play(t,
			cell(1, 1), cell(1, 2),
			cell(1, 3), cell(2, 2),
			cell(2, 1), cell(2, 3),
			cell(3, 2), cell(3, 1),
			cell(3, 3),
		)

		// Then: the last move is a draw
		assert.Equal(t, entity.OutcomeDraw, move.Outcome)
		assert.Equal(t, move, f.notifier.last("host"))
	})

	t.Run("history failure does not reject the move", func(t *testing.T) {
		// Given: a history store that is down
		f := newFixture(t)
		f.startMatch(t)
		f.matches.EXPECT().
			Save(mock.Anything, mock.Anything).
			Return(errRedisDown).
			Once()

		// When: the host wins
		move := f.play(t, cell(2, 1), cell(1, 1), cell(2, 2), cell(1, 2), cell(2, 3))

		// Then: the win is still reported
		assert.Equal(t, entity.OutcomeWin, move.Outcome)
	})

	t.Run("rejected move notifies nobody", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		roomID := f.startMatch(t)
		f.notifier.reset()
		before := f.snapshot(t, roomID)

		// When: the joiner moves out of turn
		_, err := f.manager.SubmitMove(ctx, "joiner", cell(1, 1))

		// Then: the move is rejected without side effects
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, "not_your_turn", apperror.Reason(err))
		assert.Empty(t, f.notifier.of("host"))
		assert.Empty(t, f.notifier.of("joiner"))
		assert.Equal(t, before, f.snapshot(t, roomID))
	})

	t.Run("move in a waiting room", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.SubmitIdentity(ctx, "host", "Ann", "")
		require.NoError(t, err)

		_, err = f.manager.SubmitMove(ctx, "host", cell(1, 1))

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, "room_not_active", apperror.Reason(err))
	})

	t.Run("move without a room", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.manager.SubmitMove(ctx, "ghost", cell(1, 1))

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})
}

func TestGameManager_RequestRestart(t *testing.T) {
	ctx := context.Background()

	finishedMatch := func(t *testing.T) (*fixture, string) {
		f := newFixture(t)
		roomID := f.startMatch(t)
		f.matches.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
		f.play(t, cell(2, 1), cell(1, 1), cell(2, 2), cell(1, 2), cell(2, 3))
		f.notifier.reset()
		return f, roomID
	}

	t.Run("Scenario E: non-host is rejected", func(t *testing.T) {
		// Given: a finished match
		f, roomID := finishedMatch(t)
		before := f.snapshot(t, roomID)

		// When: the joiner asks for a rematch
		err := f.manager.RequestRestart(ctx, "joiner", roomID)

		// Then: NOT_HOST and the room is unchanged
		require.ErrorIs(t, err, apperror.ErrNotHost)
		assert.Equal(t, apperror.CodeNotHost, apperror.Code(err))
		assert.Equal(t, before, f.snapshot(t, roomID))
		assert.Empty(t, f.notifier.of("host"))
	})

	t.Run("host restarts", func(t *testing.T) {
		// Given: a finished match
		f, roomID := finishedMatch(t)

		// When: the host asks for a rematch
		err := f.manager.RequestRestart(ctx, "host", roomID)
		require.NoError(t, err)

		// Then: both players get a fresh matchStarted with the host first
		started, ok := f.notifier.last("host").(entity.MatchStarted)
		require.True(t, ok)
		assert.Equal(t, started, f.notifier.last("joiner"))
		assert.True(t, started.Players[0].HasTurn)
		assert.False(t, started.Players[0].HasWon)
		assert.False(t, started.Players[1].HasTurn)

		snapshot := f.snapshot(t, roomID)
		assert.Equal(t, entity.StatusActive, snapshot.Status)
		assert.Equal(t, entity.Board{}, snapshot.Board)
	})

	t.Run("room id defaults to the seat", func(t *testing.T) {
		f, _ := finishedMatch(t)

		err := f.manager.RequestRestart(ctx, "host", "")

		require.NoError(t, err)
	})

	t.Run("restart mid-match", func(t *testing.T) {
		f := newFixture(t)
		roomID := f.startMatch(t)

		err := f.manager.RequestRestart(ctx, "host", roomID)

		require.ErrorIs(t, err, apperror.ErrInvalidRequest)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		err := f.manager.RequestRestart(ctx, "host", "NOPE0000")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestGameManager_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("opponent is told and freed", func(t *testing.T) {
		// Given: a started match
		f := newFixture(t)
		roomID := f.startMatch(t)

		// When: the joiner disconnects
		f.manager.Disconnect(ctx, "joiner")

		// Then: the host learns about it and the room is gone
		assert.Equal(t, entity.OpponentLeft{RoomID: roomID, PlayerID: "joiner"}, f.notifier.last("host"))
		assert.Equal(t, 0, f.registry.Count())

		_, err := f.manager.SubmitMove(ctx, "host", cell(1, 1))
		require.ErrorIs(t, err, apperror.ErrNotInRoom)

		// And: the host can open a new room
		_, err = f.manager.SubmitIdentity(ctx, "host", "Ann", "")
		require.NoError(t, err)
	})

	t.Run("player without a room", func(t *testing.T) {
		f := newFixture(t)

		assert.NotPanics(t, func() {
			f.manager.Disconnect(ctx, "ghost")
		})
		assert.Empty(t, f.notifier.of("ghost"))
	})
}

func TestGameManager_ConcurrentRooms(t *testing.T) {
	// Given: many independent matches
	f := newFixture(t)
	f.matches.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)

	const matches = 10
	roomIDs := make([]string, matches)
	for i := range matches {
		host := "host-" + string(rune('a'+i))
		created, err := f.manager.SubmitIdentity(context.Background(), host, host, "")
		require.NoError(t, err)
		_, err = f.manager.SubmitIdentity(context.Background(), "joiner-"+string(rune('a'+i)), "j", created.ID)
		require.NoError(t, err)
		roomIDs[i] = created.ID
	}

	// When: every host wins its match concurrently
	var wg sync.WaitGroup
	for i := range matches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			host, joiner := "host-"+string(rune('a'+i)), "joiner-"+string(rune('a'+i))
			for j, c := range []entity.Cell{cell(2, 1), cell(1, 1), cell(2, 2), cell(1, 2), cell(2, 3)} {
				mover := host
				if j%2 == 1 {
					mover = joiner
				}
				_, err := f.manager.SubmitMove(context.Background(), mover, c)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// Then: every room is finished
	for _, roomID := range roomIDs {
		assert.Equal(t, entity.StatusFinished, f.snapshot(t, roomID).Status)
	}
}
