package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

const (
	Size     = 3
	Capacity = 2
)

// WinCombos - every winning line as flat cell indexes (row*Size + col).
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board struct {
	cells [Size * Size]entity.Symbol
}

func NewBoard() *Board {
	return &Board{}
}

// NewBoardFrom - builds a board from rows, used by tests and replays.
func NewBoardFrom(rows [Size][Size]entity.Symbol) *Board {
	board := &Board{}
	for row := range rows {
		for col := range rows[row] {
			board.cells[row*Size+col] = rows[row][col]
		}
	}

	return board
}

func (that *Board) Size() int {
	return Size
}

func (that *Board) Mark(symbol entity.Symbol, row, col int) error {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return fmt.Errorf("%w: [%d, %d]", apperror.ErrInvalidCell, row, col)
	}

	if !symbol.IsValid() {
		return fmt.Errorf("%w: symbol %q", apperror.ErrInvalidCell, symbol)
	}

	cell := row*Size + col
	if that.cells[cell] != entity.EmptySymbol {
		return apperror.ErrCellOccupied
	}

	that.cells[cell] = symbol

	return nil
}

func (that *Board) IsWinFor(symbol entity.Symbol) bool {
	return IsWinFor(that.cells, symbol)
}

func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == entity.EmptySymbol {
			return false
		}
	}

	return true
}

func (that *Board) Clear() {
	that.cells = [Size * Size]entity.Symbol{}
}

func (that *Board) Cells() [][]entity.Symbol {
	rows := make([][]entity.Symbol, Size)
	for row := range rows {
		rows[row] = append([]entity.Symbol(nil), that.cells[row*Size:(row+1)*Size]...)
	}

	return rows
}

// IsWinFor - true when symbol fills a full row, column or diagonal.
func IsWinFor(cells [Size * Size]entity.Symbol, symbol entity.Symbol) bool {
	if symbol == entity.EmptySymbol {
		return false
	}

	for _, combo := range WinCombos {
		if cells[combo[0]] == symbol && cells[combo[1]] == symbol && cells[combo[2]] == symbol {
			return true
		}
	}

	return false
}
