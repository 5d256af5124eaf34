package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Void           CellState = -4
	Unknown        CellState = -2
	Flagged        CellState = -1
	Mine           CellState = 64
	ExplodedMine   CellState = 65
	FalselyFlagged CellState = 66
	/*
	 * Each item in a player grid is one of the following values:
	 *
	 *  - 0 to 8 mean the square is open and has a surrounding mine
	 *    count.
	 *
	 *  - -1 means the square is flagged.
	 *
	 *  - -2 means the square is unknown.
	 *
	 *  - -4 means the square is outside the region.
	 *
	 *  - 64 means the square has had a mine revealed when the game
	 *    was lost.
	 *
	 *  - 65 means the square had a mine revealed and this was the
	 *    one the player hit.
	 *
	 *  - 66 means the square has a crossed-out flag because the
	 *    player had incorrectly marked it.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Void:
		return " "
	case s == Unknown:
		return "#"
	case s == Flagged:
		return "F"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	case s == Mine:
		return "*"
	case s == ExplodedMine:
		return "X"
	case s == FalselyFlagged:
		return "x"
	default:
		return "!"
	}
}

// Grid is the player's view of a board in row-major order.
type Grid []CellState

// PlayerGrid hides everything the player is not supposed to know yet.
func PlayerGrid(g *GameState) Grid {
	b := g.Board
	grid := make(Grid, len(b.Cells))
	for i, c := range b.Cells {
		switch {
		case !c.Playable:
			grid[i] = Void
		case c.Flagged && g.Status == Lost && !c.Mine:
			grid[i] = FalselyFlagged
		case c.Flagged:
			grid[i] = Flagged
		case !c.Revealed:
			grid[i] = Unknown
		case c.Mine:
			grid[i] = Mine
		default:
			grid[i] = CellState(c.Adjacent)
		}
	}
	if g.Exploded != nil {
		grid[b.index(g.Exploded.Row, g.Exploded.Col)] = ExplodedMine
	}
	return grid
}

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
