package mines

import "math/rand/v2"

// Reveal opens row:col and flood-fills through cells with no adjacent mines.
// It returns the number of cells that became revealed. Flags on revealed
// cells are cleared. A mine is never opened here: detonation is the caller's
// business, so revealing a mine is a no-op.
func (b *Board) Reveal(row, col int) (int, error) {
	if !b.Playable(row, col) {
		return 0, &InvalidPositionError{Row: row, Col: col}
	}
	start := Position{row, col}
	if b.at(start).Mine {
		return 0, nil
	}

	revealed := 0
	stack := []Position{start}
	visited := map[Position]bool{start: true}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cell := b.at(p)
		if !cell.Revealed {
			cell.Revealed = true
			cell.Flagged = false
			revealed++
		}

		if cell.Mine || cell.Adjacent != 0 {
			continue
		}
		for _, n := range b.Neighbors(p.Row, p.Col) {
			if !visited[n] && !b.at(n).Revealed {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}

	return revealed, nil
}

// Chord reveals every unflagged neighbor of a revealed numbered cell when
// the number of flagged neighbors equals its mine count. If any of those
// neighbors is a mine nothing safe is revealed: all mines are exposed and
// hitMine is true.
func (b *Board) Chord(row, col int) (revealed int, hitMine bool, err error) {
	cell, err := b.Cell(row, col)
	if err != nil {
		return 0, false, err
	}
	if !cell.Revealed || cell.Mine || cell.Adjacent == 0 {
		return 0, false, nil
	}

	flagged := 0
	targets := make([]Position, 0, 8)
	for _, n := range b.Neighbors(row, col) {
		switch c := b.at(n); {
		case c.Flagged:
			flagged++
		case !c.Revealed:
			targets = append(targets, n)
		}
	}
	if flagged != cell.Adjacent {
		return 0, false, nil
	}

	for _, t := range targets {
		if b.at(t).Mine {
			b.RevealMines()
			return 0, true, nil
		}
	}

	for _, t := range targets {
		n, _ := b.Reveal(t.Row, t.Col)
		revealed += n
	}
	return revealed, false, nil
}

// ToggleFlag flips the flag on an unrevealed cell and reports the new flag.
// Revealed cells cannot carry a flag and are left untouched.
func (b *Board) ToggleFlag(row, col int) (bool, error) {
	cell, err := b.Cell(row, col)
	if err != nil {
		return false, err
	}
	if cell.Revealed {
		return false, nil
	}
	cell.Flagged = !cell.Flagged
	return cell.Flagged, nil
}

// RevealMines exposes every mine, used for display once a game is lost.
// Flags stay where they are so that correctly flagged mines still read as
// flagged.
func (b *Board) RevealMines() {
	for i := range b.Cells {
		if b.Cells[i].Mine {
			b.Cells[i].Revealed = true
		}
	}
}

// Opening picks the cell for the automatic first reveal: a random safe cell
// with no adjacent mines if there is one, otherwise any random safe cell.
func (b *Board) Opening(r *rand.Rand) (Position, bool) {
	var zeros, safe []Position
	for i, c := range b.Cells {
		if !c.Playable || c.Mine {
			continue
		}
		p := Position{i / b.Cols, i % b.Cols}
		safe = append(safe, p)
		if c.Adjacent == 0 {
			zeros = append(zeros, p)
		}
	}
	switch {
	case len(zeros) > 0:
		return zeros[r.IntN(len(zeros))], true
	case len(safe) > 0:
		return safe[r.IntN(len(safe))], true
	default:
		return Position{}, false
	}
}
