package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// MakeTurn - validates and applies a move, then settles the match state.
// A rejected move leaves the room untouched.
func MakeTurn(room *entity.Room, playerID string, cell entity.Cell) (entity.MoveApplied, error) {
	player, err := validateMove(room, playerID, cell)
	if err != nil {
		return entity.MoveApplied{}, err
	}

	room.Board.Set(cell, player.Symbol)
	room.Moves++
	player.HasTurn = false

	move := entity.MoveApplied{
		RoomID:   room.ID,
		PlayerID: player.ID,
		Row:      cell.Row,
		Col:      cell.Col,
		Symbol:   player.Symbol,
		Outcome:  entity.OutcomeNone,
	}

	updateRoomStatus(room, player, &move)

	return move, nil
}

// validateMove - checks if the move is valid and returns the mover.
func validateMove(room *entity.Room, playerID string, cell entity.Cell) (*entity.Player, error) {
	if !room.IsActive() {
		return nil, apperror.InvalidMove(fmt.Errorf("%w: room %s is %s", apperror.ErrRoomNotActive, room.ID, room.Status))
	}

	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotInRoom, room.ID)
	}

	if !player.HasTurn {
		return nil, apperror.InvalidMove(apperror.ErrNotYourTurn)
	}

	if !cell.InRange() {
		return nil, apperror.InvalidMove(fmt.Errorf("%w: (%d,%d)", apperror.ErrInvalidCell, cell.Row, cell.Col))
	}

	if room.Board.At(cell) != entity.EmptyCell {
		return nil, apperror.InvalidMove(fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOccupied, cell.Row, cell.Col))
	}

	return player, nil
}

// updateRoomStatus - win is settled before draw, so a winning last move is never a draw.
func updateRoomStatus(room *entity.Room, mover *entity.Player, move *entity.MoveApplied) {
	if evaluation := Evaluate(room.Board, move.Cell(), mover.Symbol); evaluation.Win {
		mover.HasWon = true
		room.Status = entity.StatusFinished
		move.Outcome = entity.OutcomeWin
		move.WinningLine = evaluation.WinningLine
		return
	}

	if IsFull(room.Board) {
		room.Status = entity.StatusFinished
		move.Outcome = entity.OutcomeDraw
		return
	}

	if opponent := room.Opponent(mover.ID); opponent != nil {
		opponent.HasTurn = true
	}
}

// Restart - host-only rematch of a finished room; the host always moves first.
func Restart(room *entity.Room, playerID string) error {
	player := room.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("%w: %s", apperror.ErrNotInRoom, room.ID)
	}

	if !player.IsHost {
		return apperror.ErrNotHost
	}

	if !room.IsFinished() {
		return fmt.Errorf("%w: room %s is %s", apperror.ErrInvalidRequest, room.ID, room.Status)
	}

	room.Board.Clear()
	room.Moves = 0
	room.Status = entity.StatusActive

	for _, p := range room.Players {
		p.HasWon = false
		p.HasTurn = p.IsHost
	}

	return nil
}
