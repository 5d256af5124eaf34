package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revealedSet(b *Board) map[Position]bool {
	set := make(map[Position]bool)
	for i, c := range b.Cells {
		if c.Revealed {
			set[Position{i / b.Cols, i % b.Cols}] = true
		}
	}
	return set
}

// closure computes the cells a flood fill from start must reveal: the
// connected zero region plus its numbered border.
func closure(b *Board, start Position) map[Position]bool {
	want := map[Position]bool{start: true}
	queue := []Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if b.at(p).Adjacent != 0 {
			continue
		}
		for _, n := range b.Neighbors(p.Row, p.Col) {
			if !want[n] {
				want[n] = true
				queue = append(queue, n)
			}
		}
	}
	return want
}

func TestRevealStripWithoutMines(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for col := range 5 {
		b, err := Build(Shape{{1, 1, 1, 1, 1}}, 0, r)
		require.NoError(t, err)
		n, err := b.Reveal(0, col)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	}
}

func TestRevealNumberedCellStops(t *testing.T) {
	b := fixture(t, "##*##")
	assert.Equal(t, []int{0, 1, 0, 1, 0}, []int{
		b.Cells[0].Adjacent, b.Cells[1].Adjacent, 0,
		b.Cells[3].Adjacent, b.Cells[4].Adjacent,
	})

	b = fixture(t, "#*###")
	require.Equal(t, 1, b.Cells[0].Adjacent)
	n, err := b.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[Position]bool{{0, 0}: true}, revealedSet(b))
}

func TestRevealFloodFillClosure(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	for name, shape := range testShapes {
		t.Run(name, func(t *testing.T) {
			for range 30 {
				b, err := Build(shape, shape.PlayableCount()/5, r)
				require.NoError(t, err)
				for i, c := range b.Cells {
					if !c.Playable || c.Mine || c.Adjacent != 0 {
						continue
					}
					start := Position{i / b.Cols, i % b.Cols}
					fresh := b.clone()
					n, err := fresh.Reveal(start.Row, start.Col)
					require.NoError(t, err)

					want := closure(b, start)
					assert.Equal(t, want, revealedSet(fresh))
					assert.Equal(t, len(want), n)
					for p := range want {
						assert.False(t, fresh.at(p).Mine)
					}
				}
			}
		})
	}
}

func TestRevealDoesNotCrossInertCells(t *testing.T) {
	b := fixture(t,
		"##.##",
		"##.##",
	)
	n, err := b.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, b.Cells[3].Revealed)
	assert.False(t, b.Cells[2].Revealed)
}

func TestRevealAlreadyRevealed(t *testing.T) {
	b := fixture(t, "####")
	n, err := b.Reveal(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = b.Reveal(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRevealMineIsNoop(t *testing.T) {
	b := fixture(t, "#*#")
	n, err := b.Reveal(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, revealedSet(b))
}

func TestRevealClearsFlags(t *testing.T) {
	b := fixture(t,
		"####",
		"####",
		"###*",
	)
	_, err := b.ToggleFlag(0, 3)
	require.NoError(t, err)
	_, err = b.ToggleFlag(0, 0)
	require.NoError(t, err)

	n, err := b.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	for _, c := range b.Cells {
		if c.Revealed {
			assert.False(t, c.Flagged)
		}
	}
	assert.False(t, b.Cells[11].Revealed)
}

func TestRevealInvalidPosition(t *testing.T) {
	b := fixture(t, "#.#")
	before := b.clone()
	for _, p := range []Position{{0, 1}, {-1, 0}, {0, 3}, {1, 0}} {
		_, err := b.Reveal(p.Row, p.Col)
		var ipe *InvalidPositionError
		require.ErrorAs(t, err, &ipe)
		assert.Equal(t, p.Row, ipe.Row)
		assert.Equal(t, p.Col, ipe.Col)
	}
	assert.Equal(t, before, b)
}

func TestRevealMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	shape := testShapes["peninsula"]
	b, err := Build(shape, 3, r)
	require.NoError(t, err)

	seen := make(map[Position]bool)
	for range 200 {
		row, col := r.IntN(b.Rows), r.IntN(b.Cols)
		switch r.IntN(3) {
		case 0:
			b.Reveal(row, col)
		case 1:
			b.ToggleFlag(row, col)
		case 2:
			b.Chord(row, col)
		}
		for p := range seen {
			assert.True(t, b.at(p).Revealed, "%v was hidden again", p)
		}
		for p := range revealedSet(b) {
			seen[p] = true
		}
	}
}

func TestToggleFlag(t *testing.T) {
	b := fixture(t, "#*")

	flagged, err := b.ToggleFlag(0, 1)
	require.NoError(t, err)
	assert.True(t, flagged)
	flagged, err = b.ToggleFlag(0, 1)
	require.NoError(t, err)
	assert.False(t, flagged)

	_, err = b.Reveal(0, 0)
	require.NoError(t, err)
	flagged, err = b.ToggleFlag(0, 0)
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.False(t, b.Cells[0].Flagged)
}

func TestChordGating(t *testing.T) {
	b := fixture(t,
		"*##",
		"###",
		"##*",
	)
	_, err := b.Reveal(1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, b.Cells[4].Adjacent)

	// no flags
	before := b.clone()
	n, hit, err := b.Chord(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, hit)
	assert.Equal(t, before, b)

	// too few flags
	b.ToggleFlag(0, 0)
	before = b.clone()
	n, hit, err = b.Chord(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, hit)
	assert.Equal(t, before, b)

	// too many flags
	b.ToggleFlag(2, 2)
	b.ToggleFlag(0, 1)
	before = b.clone()
	n, hit, err = b.Chord(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, hit)
	assert.Equal(t, before, b)
}

func TestChordRevealsNeighbors(t *testing.T) {
	b := fixture(t,
		"*##",
		"###",
		"##*",
	)
	_, err := b.Reveal(1, 1)
	require.NoError(t, err)
	b.ToggleFlag(0, 0)
	b.ToggleFlag(2, 2)

	n, hit, err := b.Chord(1, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 6, n)
	for i, c := range b.Cells {
		assert.Equal(t, !c.Mine, c.Revealed, "cell %d", i)
	}
}

func TestChordCascades(t *testing.T) {
	b := fixture(t,
		"*#####",
		"######",
		"######",
	)
	_, err := b.Reveal(1, 0)
	require.NoError(t, err)
	b.ToggleFlag(0, 0)

	n, hit, err := b.Chord(1, 0)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, b.SafeCount()-1, n)
	assert.Len(t, revealedSet(b), b.SafeCount())
}

func TestChordDetonation(t *testing.T) {
	b := fixture(t,
		"*#*",
		"###",
		"###",
	)
	_, err := b.Reveal(1, 1)
	require.NoError(t, err)
	require.Equal(t, 2, b.Cells[4].Adjacent)
	// wrong flags: the count matches but both mines stay unflagged
	b.ToggleFlag(0, 1)
	b.ToggleFlag(1, 0)

	n, hit, err := b.Chord(1, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 0, n)
	assert.True(t, b.Cells[0].Revealed)
	assert.True(t, b.Cells[2].Revealed)
	for i, c := range b.Cells {
		if !c.Mine && i != 4 {
			assert.False(t, c.Revealed, "safe cell %d revealed by detonating chord", i)
		}
	}
}

func TestChordNoopOnHiddenOrZeroCells(t *testing.T) {
	b := fixture(t,
		"###",
		"###",
		"##*",
	)
	n, hit, err := b.Chord(0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, hit)

	_, err = b.Reveal(0, 0)
	require.NoError(t, err)
	n, hit, err = b.Chord(0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, hit)
}

func TestChordCountsOnlyPlayableFlags(t *testing.T) {
	b := fixture(t,
		".#*",
		"###",
		"###",
	)
	_, err := b.Reveal(1, 1)
	require.NoError(t, err)
	b.ToggleFlag(0, 2)

	n, hit, err := b.Chord(1, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 6, n)
	assert.False(t, b.Cells[0].Revealed)
}

func TestOpeningPrefersZeroCells(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b := fixture(t, "###*#")
	for range 50 {
		p, ok := b.Opening(r)
		require.True(t, ok)
		assert.Equal(t, 0, b.at(p).Adjacent)
		assert.False(t, b.at(p).Mine)
	}

	b = fixture(t, "#*#")
	p, ok := b.Opening(r)
	require.True(t, ok)
	assert.Contains(t, []Position{{0, 0}, {0, 2}}, p)

	b = fixture(t, "*.*")
	_, ok = b.Opening(r)
	assert.False(t, ok)
}
