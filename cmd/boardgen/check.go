package main

import (
	"fmt"

	"github.com/vancomm/regionsweeper/internal/mines"
)

// check verifies what Build promises about a board: its cells mirror the
// shape, it holds the requested number of mines and every count matches
// the mines around it.
func check(b *mines.Board, shape mines.Shape, mineCount int) error {
	rows, cols, err := shape.Dimensions()
	if err != nil {
		return err
	}
	if b.Rows != rows || b.Cols != cols {
		return fmt.Errorf("board is %dx%d, shape is %dx%d", b.Rows, b.Cols, rows, cols)
	}
	if want := min(mineCount, shape.PlayableCount()); b.MineCount() != want {
		return fmt.Errorf("board has %d mines, want %d", b.MineCount(), want)
	}
	for row := range rows {
		for col := range cols {
			cell := b.Cells[row*cols+col]
			if cell.Playable != (shape[row][col] == 1) {
				return fmt.Errorf("cell %d:%d does not follow the shape", row, col)
			}
			if !cell.Playable {
				if cell.Mine || cell.Revealed || cell.Adjacent != 0 {
					return fmt.Errorf("inert cell %d:%d carries state", row, col)
				}
				continue
			}
			if cell.Mine {
				continue
			}
			n := 0
			for _, p := range b.Neighbors(row, col) {
				if b.Cells[p.Row*cols+p.Col].Mine {
					n++
				}
			}
			if n != cell.Adjacent {
				return fmt.Errorf("cell %d:%d counts %d mines, has %d", row, col, cell.Adjacent, n)
			}
		}
	}
	return nil
}
