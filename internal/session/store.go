package session

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/regionsweeper/internal/regions"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrBusy     = errors.New("session is being modified by another request")
)

// Clear is a region cleared within a session, used for highscores.
type Clear struct {
	SessionID  int64     `json:"session_id"`
	Region     string    `json:"region"`
	PlaytimeMs float64   `json:"playtime_ms"`
	ClearedAt  time.Time `json:"cleared_at"`
}

// NewClear records the clearance reported by Apply. The tour may already
// have moved on, so the region comes from the clearance.
func NewClear(s *Session, clearance *regions.Clearance) Clear {
	clear := Clear{
		SessionID:  s.ID,
		Region:     clearance.Region,
		PlaytimeMs: float64(s.Playtime().Microseconds()) / 1000,
		ClearedAt:  time.Now().UTC(),
	}
	if s.EndedAt != nil {
		clear.ClearedAt = *s.EndedAt
	}
	return clear
}

type HighscoreFilter struct {
	Region *string
	Limit  int
}

// Store persists sessions. Update must not run fn concurrently for the same
// session: implementations either wait or fail with ErrBusy.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id int64) (*Session, error)
	Update(ctx context.Context, id int64, fn func(*Session) error) (*Session, error)
	RecordClear(ctx context.Context, clear Clear) error
	Highscores(ctx context.Context, filter HighscoreFilter) ([]Clear, error)
}
