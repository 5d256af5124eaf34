package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, rows ...string) *GameState {
	t.Helper()
	return &GameState{Board: fixture(t, rows...)}
}

func TestNewGameOpensFirstCell(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for name, shape := range testShapes {
		t.Run(name, func(t *testing.T) {
			g, err := NewGame(shape, shape.PlayableCount()/4, r)
			require.NoError(t, err)
			assert.Positive(t, g.Revealed)
			assert.Len(t, revealedSet(g.Board), g.Revealed)
			for p := range revealedSet(g.Board) {
				assert.False(t, g.Board.at(p).Mine)
			}
		})
	}
}

func TestNewGameWithoutSafeCells(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGame(Shape{{1, 1}}, 5, r)
	require.NoError(t, err)
	assert.Equal(t, Won, g.Status)
	assert.Zero(t, g.Revealed)
}

func TestNewGameWithoutMinesIsWonImmediately(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGame(Shape{{1, 1, 1, 1, 1}}, 0, r)
	require.NoError(t, err)
	assert.Equal(t, Won, g.Status)
	assert.Equal(t, 5, g.Revealed)
}

func TestOpenMineLoses(t *testing.T) {
	g := newTestGame(t, "#*##", "####")
	g.Board.ToggleFlag(1, 3)

	n, err := g.Open(0, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, Lost, g.Status)
	assert.Equal(t, &Position{0, 1}, g.Exploded)
	assert.True(t, g.Board.Cells[1].Revealed)

	_, err = g.Open(0, 0)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestOpenIgnoresFlaggedCells(t *testing.T) {
	g := newTestGame(t, "##*")
	_, err := g.Flag(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Flags)

	n, err := g.Open(0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, g.Board.Cells[0].Revealed)
}

func TestWinDetection(t *testing.T) {
	g := newTestGame(t,
		"#*#",
		"###",
	)
	for _, p := range []Position{{0, 0}, {0, 2}, {1, 0}, {1, 1}} {
		_, err := g.Open(p.Row, p.Col)
		require.NoError(t, err)
		assert.Equal(t, Playing, g.Status)
	}
	_, err := g.Open(1, 2)
	require.NoError(t, err)
	assert.Equal(t, Won, g.Status)
	assert.Equal(t, g.Board.SafeCount(), g.Revealed)

	_, err = g.Flag(0, 1)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestWinEquivalence(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))
	for name, shape := range testShapes {
		t.Run(name, func(t *testing.T) {
			for range 20 {
				g, err := NewGame(shape, shape.PlayableCount()/5, r)
				require.NoError(t, err)
				for i, c := range g.Board.Cells {
					if g.Over() {
						break
					}
					if c.Playable && !c.Mine {
						_, err := g.Open(i/g.Board.Cols, i%g.Board.Cols)
						require.NoError(t, err)
					}
				}
				assert.Equal(t, Won, g.Status)
				assert.Equal(t, g.Board.SafeCount(), g.Revealed)
				for _, c := range g.Board.Cells {
					if c.Playable && !c.Mine {
						assert.True(t, c.Revealed)
					}
				}
			}
		})
	}
}

func TestFlagCounter(t *testing.T) {
	g := newTestGame(t, "#*#", "###", "###")
	_, err := g.Flag(0, 1)
	require.NoError(t, err)
	_, err = g.Flag(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Flags)
	assert.Equal(t, -1, g.RemainingFlags())

	// flood fill clears the flag on (2, 2)
	_, err = g.Open(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Flags)
	assert.Zero(t, g.RemainingFlags())

	_, err = g.Flag(0, 1)
	require.NoError(t, err)
	assert.Zero(t, g.Flags)
}

func TestChordDetonationLoses(t *testing.T) {
	g := newTestGame(t,
		"*#*",
		"###",
		"###",
	)
	_, err := g.Open(1, 1)
	require.NoError(t, err)
	_, err = g.Flag(0, 0)
	require.NoError(t, err)
	_, err = g.Flag(0, 1)
	require.NoError(t, err)

	n, err := g.Chord(1, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, Lost, g.Status)
	assert.Equal(t, &Position{0, 2}, g.Exploded)
	assert.Equal(t, 1, g.Revealed)
	// both the correct and the wrong flag survive for display
	assert.Equal(t, 2, g.Flags)
	assert.True(t, g.Board.Cells[0].Flagged)
}

func TestChordWins(t *testing.T) {
	g := newTestGame(t,
		"*##",
		"###",
		"##*",
	)
	_, err := g.Open(1, 1)
	require.NoError(t, err)
	g.Flag(0, 0)
	g.Flag(2, 2)

	n, err := g.Chord(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, Won, g.Status)
}

func TestAutoChordOnFlag(t *testing.T) {
	g := newTestGame(t,
		"*##",
		"###",
		"###",
	)
	g.AutoChord = true
	_, err := g.Open(1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, g.Revealed)

	n, err := g.Flag(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, Won, g.Status)
}

func TestAutoChordDisabled(t *testing.T) {
	g := newTestGame(t,
		"*##",
		"###",
		"###",
	)
	_, err := g.Open(1, 1)
	require.NoError(t, err)

	n, err := g.Flag(0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, g.Revealed)
}

func TestForfeit(t *testing.T) {
	g := newTestGame(t, "#*#")
	g.Forfeit()
	assert.Equal(t, Lost, g.Status)
	assert.Nil(t, g.Exploded)
	assert.True(t, g.Board.Cells[1].Revealed)
	assert.False(t, g.Board.Cells[0].Revealed)
}

func TestGameStateBytes(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGame(testShapes["peninsula"], 4, r, WithAutoChord(true))
	require.NoError(t, err)
	g.Flag(0, 1)

	b, err := g.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeGameState(b)
	require.NoError(t, err)
	assert.Equal(t, g, decoded)
}

func TestPlayerGrid(t *testing.T) {
	g := newTestGame(t,
		".#*",
		"#*#",
	)
	_, err := g.Open(1, 0)
	require.NoError(t, err)
	_, err = g.Flag(0, 1)
	require.NoError(t, err)

	assert.Equal(t,
		Grid{Void, Flagged, Unknown, 1, Unknown, Unknown},
		PlayerGrid(g),
	)

	_, err = g.Open(1, 1)
	require.NoError(t, err)
	assert.Equal(t,
		Grid{Void, FalselyFlagged, Mine, 1, ExplodedMine, Unknown},
		PlayerGrid(g),
	)
	assert.Equal(t, "  x * \n1 X # \n", PlayerGrid(g).ToString(3))
}

func TestLossKeepsCorrectFlags(t *testing.T) {
	g := newTestGame(t,
		".#*",
		"#*#",
	)
	_, err := g.Flag(0, 2)
	require.NoError(t, err)
	_, err = g.Open(1, 1)
	require.NoError(t, err)
	require.Equal(t, Lost, g.Status)

	assert.Equal(t, 1, g.Flags)
	assert.Equal(t,
		Grid{Void, Unknown, Flagged, Unknown, ExplodedMine, Unknown},
		PlayerGrid(g),
	)
}
