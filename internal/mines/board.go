package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Shape is a rectangular playable mask: 1 marks a cell that belongs to the
// region, 0 a cell outside of it.
type Shape [][]int

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Cell struct {
	Playable bool
	Mine     bool
	Revealed bool
	Flagged  bool
	Adjacent int /* unused for mines */
}

// Board is a row-major grid of cells. Cells outside the shape mask are kept
// as inert placeholders so that positions map directly onto the mask.
type Board struct {
	Rows, Cols int
	Cells      []Cell
}

func (s Shape) Dimensions() (rows, cols int, err error) {
	rows = len(s)
	if rows == 0 || len(s[0]) == 0 {
		return 0, 0, ErrInvalidShape
	}
	cols = len(s[0])
	for r, row := range s {
		if len(row) != cols {
			return 0, 0, fmt.Errorf(
				"%w: row %d has %d columns, expected %d",
				ErrInvalidShape, r, len(row), cols,
			)
		}
		for c, v := range row {
			if v != 0 && v != 1 {
				return 0, 0, fmt.Errorf(
					"%w: value %d at %d:%d", ErrInvalidShape, v, r, c,
				)
			}
		}
	}
	return rows, cols, nil
}

func (s Shape) PlayableCount() (n int) {
	for _, row := range s {
		for _, v := range row {
			if v == 1 {
				n++
			}
		}
	}
	return
}

// Build creates a board from shape and places min(mineCount, playable cells)
// mines uniformly at random among the playable cells.
func Build(shape Shape, mineCount int, r *rand.Rand) (*Board, error) {
	rows, cols, err := shape.Dimensions()
	if err != nil {
		return nil, err
	}
	if mineCount < 0 {
		return nil, ErrNegativeMineCount
	}

	b := &Board{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]Cell, rows*cols),
	}

	candidates := make([]int, 0, rows*cols)
	for row := range rows {
		for col := range cols {
			if shape[row][col] == 1 {
				i := row*cols + col
				b.Cells[i].Playable = true
				candidates = append(candidates, i)
			}
		}
	}

	/*
	 * Pick mines off the candidate list, dropping every pick so that no
	 * cell is chosen twice.
	 */
	k := len(candidates)
	for range min(mineCount, len(candidates)) {
		i := r.IntN(k)
		b.Cells[candidates[i]].Mine = true
		k--
		candidates[i] = candidates[k]
	}

	b.countAdjacent()

	return b, nil
}

func (b *Board) countAdjacent() {
	for i := range b.Cells {
		cell := &b.Cells[i]
		cell.Adjacent = 0
		if !cell.Playable || cell.Mine {
			continue
		}
		for _, p := range b.Neighbors(i/b.Cols, i%b.Cols) {
			if b.at(p).Mine {
				cell.Adjacent++
			}
		}
	}
}

func (b *Board) index(row, col int) int {
	return row*b.Cols + col
}

func (b *Board) at(p Position) *Cell {
	return &b.Cells[b.index(p.Row, p.Col)]
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.Rows && 0 <= col && col < b.Cols
}

func (b *Board) Playable(row, col int) bool {
	return b.InBounds(row, col) && b.Cells[b.index(row, col)].Playable
}

// Cell returns the playable cell at row:col.
func (b *Board) Cell(row, col int) (*Cell, error) {
	if !b.Playable(row, col) {
		return nil, &InvalidPositionError{Row: row, Col: col}
	}
	return &b.Cells[b.index(row, col)], nil
}

// Neighbors returns the playable positions at Chebyshev distance 1.
func (b *Board) Neighbors(row, col int) []Position {
	ps := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.Playable(row+dr, col+dc) {
				ps = append(ps, Position{row + dr, col + dc})
			}
		}
	}
	return ps
}

func (b *Board) PlayableCount() (n int) {
	for _, c := range b.Cells {
		if c.Playable {
			n++
		}
	}
	return
}

func (b *Board) MineCount() (n int) {
	for _, c := range b.Cells {
		if c.Mine {
			n++
		}
	}
	return
}

// SafeCount is the number of cells that must be revealed to win.
func (b *Board) SafeCount() int {
	return b.PlayableCount() - b.MineCount()
}

// String renders the whole board including hidden mines.
func (b *Board) String() string {
	var sb strings.Builder
	for row := range b.Rows {
		for col := range b.Cols {
			c := b.Cells[b.index(row, col)]
			switch {
			case !c.Playable:
				sb.WriteString("  ")
			case c.Mine:
				sb.WriteString("* ")
			case c.Adjacent == 0:
				sb.WriteString(". ")
			default:
				fmt.Fprintf(&sb, "%d ", c.Adjacent)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
