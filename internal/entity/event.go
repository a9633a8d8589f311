package entity

const (
	ActionRoomList     = "rooms:list"
	ActionRoomJoined   = "room:joined"
	ActionMatchStarted = "match:started"
	ActionMoveApplied  = "move:applied"
	ActionOpponentLeft = "opponent:left"

	OutcomeNone = "none"
	OutcomeWin  = "win"
	OutcomeDraw = "draw"
)

// Event is anything the coordinator pushes to a connected player.
type Event interface {
	Action() string
}

type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

func (RoomList) Action() string { return ActionRoomList }

type RoomJoined struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (RoomJoined) Action() string { return ActionRoomJoined }

// MatchStarted carries the full roster; both players receive the same payload.
type MatchStarted struct {
	RoomID  string   `json:"roomId"`
	Players []Player `json:"players"`
}

func (MatchStarted) Action() string { return ActionMatchStarted }

type MoveApplied struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	Row         int    `json:"cellRow"`
	Col         int    `json:"cellCol"`
	Symbol      string `json:"symbol"`
	Outcome     string `json:"outcome"`
	WinningLine []Cell `json:"winningLine,omitempty"`
}

func (MoveApplied) Action() string { return ActionMoveApplied }

func (that MoveApplied) Cell() Cell {
	return Cell{Row: that.Row, Col: that.Col}
}

func (that MoveApplied) Finished() bool {
	return that.Outcome == OutcomeWin || that.Outcome == OutcomeDraw
}

type OpponentLeft struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (OpponentLeft) Action() string { return ActionOpponentLeft }
