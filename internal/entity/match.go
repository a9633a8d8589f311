package entity

import "time"

// MatchRecord is the history entry written when a match finishes.
type MatchRecord struct {
	RoomID     string    `json:"roomId"`
	Outcome    string    `json:"outcome"`
	WinnerID   string    `json:"winnerId,omitempty"`
	WinnerName string    `json:"winnerName,omitempty"`
	Players    []Player  `json:"players"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finishedAt"`
}

func NewMatchRecord(room *Room, move MoveApplied, finishedAt time.Time) MatchRecord {
	record := MatchRecord{
		RoomID:     room.ID,
		Outcome:    move.Outcome,
		Players:    room.Roster(),
		Moves:      room.Moves,
		FinishedAt: finishedAt,
	}

	if move.Outcome == OutcomeWin {
		record.WinnerID = move.PlayerID
		if winner := room.PlayerByID(move.PlayerID); winner != nil {
			record.WinnerName = winner.DisplayName
		}
	}

	return record
}
