package session

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/vancomm/regionsweeper/internal/mines"
	"github.com/vancomm/regionsweeper/internal/regions"
)

var (
	ErrNotCleared  = errors.New("current region has not been cleared yet")
	ErrBadMove     = errors.New("move must be one of 'open', 'flag', 'chord'")
	ErrTourOver    = errors.New("every region has been cleared")
	ErrSessionOver = errors.New("game is over, restart or travel to continue")
)

type Move uint8

const (
	Open Move = iota + 1
	Flag
	Chord
)

func (m Move) String() string {
	switch m {
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	default:
		return "unknown"
	}
}

func ParseMove(s string) (Move, error) {
	switch strings.ToLower(s) {
	case "open":
		return Open, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	default:
		return 0, ErrBadMove
	}
}

// Session is one player's tour together with the board of the region they
// are currently attempting.
type Session struct {
	ID        int64
	Dealt     string /* region of the current game */
	Tour      regions.Tour
	Game      *mines.GameState
	StartedAt time.Time
	EndedAt   *time.Time
	AutoChord bool
}

type Options struct {
	Region    string
	AutoChord bool
}

func New(c *regions.Catalog, r *rand.Rand, opts Options) (*Session, error) {
	tour, err := regions.NewTour(c, opts.Region)
	if err != nil {
		return nil, err
	}
	s := &Session{Tour: *tour, AutoChord: opts.AutoChord}
	if err := s.start(c, r); err != nil {
		return nil, err
	}
	return s, nil
}

// Region is the region the current game was dealt for. After an
// auto-advancing clear it lags behind the tour until the next restart.
func (s *Session) Region() string {
	return s.Dealt
}

// start deals a board for the current region of the tour. A board that the
// opening reveal already won is closed on the spot but does not clear the
// region: the player made no move, so the tour stays where it is.
func (s *Session) start(c *regions.Catalog, r *rand.Rand) error {
	region, err := c.Get(s.Tour.Current)
	if err != nil {
		return err
	}
	game, err := mines.NewGame(
		region.Shape, region.Mines, r, mines.WithAutoChord(s.AutoChord),
	)
	if err != nil {
		return fmt.Errorf("unable to build %q: %w", region.Key, err)
	}
	s.Dealt = region.Key
	s.Game = game
	s.StartedAt = time.Now().UTC()
	s.EndedAt = nil
	if game.Over() {
		ended := s.StartedAt
		s.EndedAt = &ended
	}
	return nil
}

// settle closes the attempt once the game is over. A cleared region is
// recorded on the tour, which may move the tour on to the next region.
func (s *Session) settle(c *regions.Catalog) *regions.Clearance {
	if !s.Game.Over() || s.EndedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	s.EndedAt = &now
	if s.Game.Status != mines.Won {
		return nil
	}
	clearance := s.Tour.Clear(c)
	return &clearance
}

// Apply dispatches a player move to the current game. The returned
// clearance is non-nil when this move cleared the region.
func (s *Session) Apply(c *regions.Catalog, move Move, row, col int) (*regions.Clearance, error) {
	if s.Game.Over() {
		return nil, ErrSessionOver
	}
	var err error
	switch move {
	case Open:
		_, err = s.Game.Open(row, col)
	case Flag:
		_, err = s.Game.Flag(row, col)
	case Chord:
		_, err = s.Game.Chord(row, col)
	default:
		err = ErrBadMove
	}
	if err != nil {
		return nil, err
	}
	return s.settle(c), nil
}

// Restart deals a fresh board. After a cleared region whose tour
// auto-advanced, this is how the next region is entered; after the whole
// catalog is cleared it starts a new tour.
func (s *Session) Restart(c *regions.Catalog, r *rand.Rand) error {
	if s.Tour.Champion(c) {
		s.Tour = regions.Tour{Current: c.Start}
	}
	return s.start(c, r)
}

// cleared reports whether the dealt region was won by the player. A board
// won by its opening reveal does not count.
func (s *Session) cleared() bool {
	return s.Game.Status == mines.Won && s.Tour.HasBeaten(s.Dealt)
}

// Destinations lists where the session may travel once the current region
// is cleared. A tour that advanced on its own offers only its new region.
func (s *Session) Destinations(c *regions.Catalog) []string {
	if !s.cleared() || s.Tour.Champion(c) {
		return nil
	}
	if s.Tour.Current != s.Dealt {
		return []string{s.Tour.Current}
	}
	return s.Tour.Destinations(c)
}

// Travel moves a tour whose current region was just cleared to one of the
// offered destinations.
func (s *Session) Travel(c *regions.Catalog, r *rand.Rand, key string) error {
	if s.Tour.Champion(c) {
		return ErrTourOver
	}
	if !s.cleared() {
		return ErrNotCleared
	}
	if _, err := c.Get(key); err != nil {
		return err
	}
	if s.Tour.Current != s.Dealt {
		if key != s.Tour.Current {
			return fmt.Errorf("%w: %q", regions.ErrNotADestination, key)
		}
	} else if err := s.Tour.Travel(c, key); err != nil {
		return err
	}
	return s.start(c, r)
}

func (s *Session) Forfeit(c *regions.Catalog) {
	s.Game.Forfeit()
	s.settle(c)
}

// Playtime is the time spent on the current attempt.
func (s *Session) Playtime() time.Duration {
	if s.EndedAt == nil {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

func Decode(buf []byte) (*Session, error) {
	var s Session
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s Session) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
