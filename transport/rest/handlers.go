package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type roomsResponse struct {
	Rooms []entity.RoomSummary `json:"rooms"`
}

type matchesResponse struct {
	RoomID  string               `json:"roomId"`
	Matches []entity.MatchRecord `json:"matches"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (that *Server) roomsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "roomsHandler")

	rooms, err := that.lobby.ListRooms(r.Context())
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to list rooms"})
		return
	}

	that.writeJSON(w, http.StatusOK, roomsResponse{Rooms: rooms})
}

func (that *Server) matchesHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "matchesHandler")

	roomID := mux.Vars(r)["id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{
				Code:    apperror.CodeInvalidRequest,
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	matches, err := that.matches.ListByRoom(r.Context(), roomID, limit)
	if err != nil {
		log.Error("failed to list matches", "room_id", roomID, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "failed to list matches"})
		return
	}

	that.writeJSON(w, http.StatusOK, matchesResponse{RoomID: roomID, Matches: matches})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
