package tictactoe

import "github.com/rocketscienceinc/tictactoe-rooms/internal/entity"

// lineFn - builds the cells of one candidate line through the last move.
type lineFn func(last entity.Cell) []entity.Cell

// winLines is the authoritative check order: column, row, main diagonal, anti-diagonal.
// The first complete line is reported even when a move completes two.
var winLines = []lineFn{
	columnOf,
	rowOf,
	mainDiagonal,
	antiDiagonal,
}

// Evaluate - reports whether symbol occupies a whole line through the last move.
func Evaluate(board entity.Board, last entity.Cell, symbol string) entity.Evaluation {
	if symbol == entity.EmptyCell || !last.InRange() {
		return entity.Evaluation{}
	}

	for _, line := range winLines {
		cells := line(last)
		if isComplete(board, cells, symbol) {
			return entity.Evaluation{Win: true, WinningLine: cells}
		}
	}

	return entity.Evaluation{}
}

// IsFull - true when no cell is empty.
func IsFull(board entity.Board) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == entity.EmptyCell {
				return false
			}
		}
	}
	return true
}

func isComplete(board entity.Board, cells []entity.Cell, symbol string) bool {
	for _, cell := range cells {
		if board.At(cell) != symbol {
			return false
		}
	}
	return true
}

func columnOf(last entity.Cell) []entity.Cell {
	cells := make([]entity.Cell, 0, entity.BoardSize)
	for row := 1; row <= entity.BoardSize; row++ {
		cells = append(cells, entity.Cell{Row: row, Col: last.Col})
	}
	return cells
}

func rowOf(last entity.Cell) []entity.Cell {
	cells := make([]entity.Cell, 0, entity.BoardSize)
	for col := 1; col <= entity.BoardSize; col++ {
		cells = append(cells, entity.Cell{Row: last.Row, Col: col})
	}
	return cells
}

// mainDiagonal and antiDiagonal do not depend on the last move.
func mainDiagonal(_ entity.Cell) []entity.Cell {
	cells := make([]entity.Cell, 0, entity.BoardSize)
	for i := 1; i <= entity.BoardSize; i++ {
		cells = append(cells, entity.Cell{Row: i, Col: i})
	}
	return cells
}

func antiDiagonal(_ entity.Cell) []entity.Cell {
	cells := make([]entity.Cell, 0, entity.BoardSize)
	for i := 1; i <= entity.BoardSize; i++ {
		cells = append(cells, entity.Cell{Row: i, Col: entity.BoardSize + 1 - i})
	}
	return cells
}
