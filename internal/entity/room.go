package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"

	MaxPlayers = 2
)

type Room struct {
	ID        string    `json:"id"`
	Players   []*Player `json:"players"`
	Board     Board     `json:"board"`
	Status    string    `json:"status"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomSummary is the lobby view of a joinable room.
type RoomSummary struct {
	RoomID          string `json:"roomId"`
	HostDisplayName string `json:"hostDisplayName"`
	PlayerCount     int    `json:"playerCount"`
}

// NewRoom - creates a waiting room with host as its first occupant.
func NewRoom(id string, host *Player, createdAt time.Time) *Room {
	host.IsHost = true
	host.HasTurn = true
	host.HasWon = false
	host.Symbol = SymbolX

	return &Room{
		ID:        id,
		Players:   []*Player{host},
		Status:    StatusWaiting,
		CreatedAt: createdAt,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) Host() *Player {
	for _, player := range that.Players {
		if player.IsHost {
			return player
		}
	}
	return nil
}

func (that *Room) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

func (that *Room) Opponent(id string) *Player {
	for _, player := range that.Players {
		if player.ID != id {
			return player
		}
	}
	return nil
}

// Join - seats player as the joiner and starts the match.
func (that *Room) Join(player *Player) error {
	if that.PlayerByID(player.ID) != nil {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyInRoom, that.ID)
	}

	if that.IsFull() {
		return fmt.Errorf("%w: %s", apperror.ErrRoomFull, that.ID)
	}

	if !that.IsWaiting() || that.Host() == nil {
		return fmt.Errorf("%w: room %s is %s", apperror.ErrInvalidRequest, that.ID, that.Status)
	}

	player.IsHost = false
	player.HasTurn = false
	player.HasWon = false
	player.Symbol = Complement(that.Host().Symbol)

	that.Players = append(that.Players, player)
	that.Status = StatusActive

	return nil
}

// Remove - drops a player from the room and reports whether they were seated.
func (that *Room) Remove(playerID string) bool {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Roster - copies of the seated players in seat order.
func (that *Room) Roster() []Player {
	roster := make([]Player, 0, len(that.Players))
	for _, player := range that.Players {
		roster = append(roster, *player)
	}
	return roster
}

func (that *Room) Summary() RoomSummary {
	summary := RoomSummary{
		RoomID:      that.ID,
		PlayerCount: len(that.Players),
	}

	if host := that.Host(); host != nil {
		summary.HostDisplayName = host.DisplayName
	}

	return summary
}

// Clone - deep copy safe to hand out of the room's goroutine.
func (that *Room) Clone() Room {
	clone := *that
	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}
	return clone
}
