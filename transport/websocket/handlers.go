package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// handleMessage - decodes one frame and runs its handler. A panicking handler only fails this message.
func (that *Server) handleMessage(ctx context.Context, playerID string, data []byte) {
	log := that.logger.With("method", "handleMessage", "player_id", playerID)

	started := time.Now()

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.sendErrorResponse(playerID, "", fmt.Errorf("%w: malformed message", apperror.ErrInvalidRequest))
		return
	}

	log = log.With("action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action")
		that.sendErrorResponse(playerID, message.Action, fmt.Errorf("%w: unknown action %q", apperror.ErrInvalidRequest, message.Action))
		return
	}

	that.metrics.IncMessagesReceived(message.Action)
	defer func() {
		that.metrics.ObserveMessageLatency(time.Since(started))
	}()

	defer func() {
		if p := recover(); p != nil {
			log.Error("handler panicked", "panic", p)
			that.sendErrorResponse(playerID, message.Action, fmt.Errorf("%w: internal error", apperror.ErrInvalidRequest))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	if err := handler(ctx, playerID, &message); err != nil {
		log.Info("request rejected", "error", err)
		that.sendErrorResponse(playerID, message.Action, err)
	}
}

func (that *Server) handleRoomsGet(ctx context.Context, playerID string, _ *Message) error {
	rooms, err := that.uGame.ListRooms(ctx)
	if err != nil {
		return err
	}

	that.hub.Notify(playerID, entity.RoomList{Rooms: rooms})

	return nil
}

func (that *Server) handleIdentity(ctx context.Context, playerID string, msg *Message) error {
	var payloadReq IdentityPayload
	if err := unmarshalPayload(msg, &payloadReq); err != nil {
		return err
	}

	if _, err := that.uGame.SubmitIdentity(ctx, playerID, payloadReq.DisplayName, payloadReq.TargetRoomID); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleMove(ctx context.Context, playerID string, msg *Message) error {
	var payloadReq MovePayload
	if err := unmarshalPayload(msg, &payloadReq); err != nil {
		return err
	}

	if payloadReq.CellRow == nil || payloadReq.CellCol == nil {
		return fmt.Errorf("%w: cellRow and cellCol are required", apperror.ErrInvalidRequest)
	}

	cell := entity.Cell{Row: *payloadReq.CellRow, Col: *payloadReq.CellCol}
	if _, err := that.uGame.SubmitMove(ctx, playerID, cell); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, playerID string, msg *Message) error {
	var payloadReq RestartPayload
	if len(msg.Payload) > 0 {
		if err := unmarshalPayload(msg, &payloadReq); err != nil {
			return err
		}
	}

	return that.uGame.RequestRestart(ctx, playerID, payloadReq.RoomID)
}

// sendErrorResponse - reports a rejection to the requester only.
func (that *Server) sendErrorResponse(playerID, action string, err error) {
	code := apperror.Code(err)
	that.metrics.IncRejections(code)

	that.hub.send(playerID, ActionError, ErrorPayload{
		Action:  action,
		Code:    code,
		Reason:  apperror.Reason(err),
		Message: err.Error(),
	})
}

func unmarshalPayload(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", apperror.ErrInvalidRequest)
	}

	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: failed to unmarshal payload: %w", apperror.ErrInvalidRequest, err)
	}

	return nil
}
