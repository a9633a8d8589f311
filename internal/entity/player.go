package entity

type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Symbol      string `json:"symbol,omitempty"`
	IsHost      bool   `json:"isHost"`
	HasTurn     bool   `json:"hasTurn"`
	HasWon      bool   `json:"hasWon"`
}

func NewPlayer(id, displayName string) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
	}
}

// Complement - returns the mark the other player uses.
func Complement(symbol string) string {
	if symbol == SymbolX {
		return SymbolO
	}
	return SymbolX
}
