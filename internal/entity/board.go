package entity

const (
	BoardSize = 3

	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""
)

// Board is the 3x3 grid, indexed [row-1][col-1].
type Board [BoardSize][BoardSize]string

// Cell addresses a board square with 1-based coordinates.
type Cell struct {
	Row int `json:"cellRow"`
	Col int `json:"cellCol"`
}

func (that Cell) InRange() bool {
	return that.Row >= 1 && that.Row <= BoardSize && that.Col >= 1 && that.Col <= BoardSize
}

func (that *Board) At(cell Cell) string {
	return that[cell.Row-1][cell.Col-1]
}

func (that *Board) Set(cell Cell, symbol string) {
	that[cell.Row-1][cell.Col-1] = symbol
}

func (that *Board) Clear() {
	*that = Board{}
}

// Evaluation is the outcome of checking a single move for a completed line.
type Evaluation struct {
	Win         bool
	WinningLine []Cell
}
