package mines

import (
	"bytes"
	"encoding/gob"
	"log/slog"
	"math/rand/v2"
)

var Log *slog.Logger = slog.Default()

type Status uint8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// GameState tracks one attempt at a board: the cumulative revealed count
// used for the win condition, the flag counter and the final outcome.
type GameState struct {
	Board     *Board
	Status    Status
	Revealed  int /* cumulative reveal deltas */
	Flags     int
	Exploded  *Position
	AutoChord bool
}

type Option func(*GameState)

// WithAutoChord makes placing a flag try to chord the numbered cells around
// it.
func WithAutoChord(enabled bool) Option {
	return func(g *GameState) { g.AutoChord = enabled }
}

// NewGame builds a board and opens the first cell on the player's behalf.
func NewGame(shape Shape, mineCount int, r *rand.Rand, opts ...Option) (*GameState, error) {
	board, err := Build(shape, mineCount, r)
	if err != nil {
		return nil, err
	}
	g := &GameState{Board: board}
	for _, opt := range opts {
		opt(g)
	}

	if p, ok := board.Opening(r); ok {
		n, err := board.Reveal(p.Row, p.Col)
		if err != nil {
			return nil, err
		}
		g.Revealed = n
		Log.Debug("opening move", "row", p.Row, "col", p.Col, "revealed", n)
	}
	g.checkWin()

	return g, nil
}

func DecodeGameState(buf []byte) (*GameState, error) {
	var game GameState
	err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (g GameState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(g)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GameState) Over() bool {
	return g.Status != Playing
}

func (g *GameState) MineCount() int {
	return g.Board.MineCount()
}

// RemainingFlags is the number of mines not yet accounted for by flags. It
// goes negative when the player over-flags.
func (g *GameState) RemainingFlags() int {
	return g.MineCount() - g.Flags
}

func (g *GameState) checkWin() {
	if g.Status == Playing && g.Revealed == g.Board.SafeCount() {
		g.Status = Won
	}
}

func (g *GameState) lose(p Position) {
	g.Status = Lost
	g.Exploded = &p
	g.Board.RevealMines()
	g.recountFlags()
}

// Open reveals a cell. Flagged and already revealed cells are ignored;
// opening a mine loses the game.
func (g *GameState) Open(row, col int) (int, error) {
	if g.Over() {
		return 0, ErrGameOver
	}
	cell, err := g.Board.Cell(row, col)
	if err != nil {
		return 0, err
	}
	if cell.Flagged || cell.Revealed {
		return 0, nil
	}
	if cell.Mine {
		g.lose(Position{row, col})
		return 0, nil
	}

	n, err := g.Board.Reveal(row, col)
	if err != nil {
		return 0, err
	}
	g.Revealed += n
	g.recountFlags()
	g.checkWin()
	return n, nil
}

// Flag toggles the flag on an unrevealed cell.
func (g *GameState) Flag(row, col int) (int, error) {
	if g.Over() {
		return 0, ErrGameOver
	}
	cell, err := g.Board.Cell(row, col)
	if err != nil {
		return 0, err
	}
	if cell.Revealed {
		return 0, nil
	}
	flagged, err := g.Board.ToggleFlag(row, col)
	if err != nil {
		return 0, err
	}
	if !flagged {
		g.Flags--
		return 0, nil
	}
	g.Flags++

	if !g.AutoChord {
		return 0, nil
	}
	total := 0
	for _, n := range g.Board.Neighbors(row, col) {
		c := g.Board.at(n)
		if !c.Revealed || c.Mine || c.Adjacent == 0 {
			continue
		}
		revealed, err := g.Chord(n.Row, n.Col)
		if err != nil {
			return total, err
		}
		total += revealed
		if g.Over() {
			break
		}
	}
	return total, nil
}

// Chord reveals around a satisfied numbered cell.
func (g *GameState) Chord(row, col int) (int, error) {
	if g.Over() {
		return 0, ErrGameOver
	}
	var trap *Position
	if g.Board.Playable(row, col) {
		for _, p := range g.Board.Neighbors(row, col) {
			if c := g.Board.at(p); c.Mine && !c.Flagged && !c.Revealed {
				trap = &p
				break
			}
		}
	}
	n, hit, err := g.Board.Chord(row, col)
	if err != nil {
		return 0, err
	}
	if hit {
		g.lose(*trap)
		return 0, nil
	}
	g.Revealed += n
	g.recountFlags()
	g.checkWin()
	return n, nil
}

// Forfeit gives the game up and exposes the mines.
func (g *GameState) Forfeit() {
	if g.Over() {
		return
	}
	g.Status = Lost
	g.Board.RevealMines()
	g.recountFlags()
}

// Flood fill clears flags on revealed cells, so the counter is derived
// from the board after every reveal.
func (g *GameState) recountFlags() {
	g.Flags = 0
	for _, c := range g.Board.Cells {
		if c.Flagged {
			g.Flags++
		}
	}
}
