package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrInvalidMove    = errors.New("invalid move")
	ErrNotHost        = errors.New("only the host can restart the match")
	ErrInvalidRequest = errors.New("invalid request")

	ErrRoomNotActive = errors.New("room is not active")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrCellOccupied  = errors.New("cell is already occupied")

	ErrAlreadyInRoom = fmt.Errorf("%w: player is already in a room", ErrInvalidRequest)
	ErrNotInRoom     = fmt.Errorf("%w: player is not in a room", ErrInvalidRequest)
)

// Error codes reported to the requesting connection.
const (
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeInvalidMove    = "INVALID_MOVE"
	CodeNotHost        = "NOT_HOST"
	CodeInvalidRequest = "INVALID_REQUEST"
)

// InvalidMove - wraps a move rejection reason into ErrInvalidMove.
func InvalidMove(reason error) error {
	return fmt.Errorf("%w: %w", ErrInvalidMove, reason)
}

// Code - maps an error to the code sent to clients. Unknown errors are reported as INVALID_REQUEST.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, ErrInvalidMove):
		return CodeInvalidMove
	case errors.Is(err, ErrNotHost):
		return CodeNotHost
	default:
		return CodeInvalidRequest
	}
}

// Reason - returns the machine readable reason of a rejected move, or "" for other errors.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotActive):
		return "room_not_active"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrInvalidCell):
		return "invalid_cell"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	default:
		return ""
	}
}
