package kvstore

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vancomm/regionsweeper/internal/session"
)

const (
	sessionSeq = "session_seq"
	clearSeq   = "clear_seq"
)

// SessionStore keeps sessions and clears in sqlite. Updates of the same
// session wait for each other.
type SessionStore struct {
	db       *sql.DB
	meta     *Table
	sessions *Table
	clears   *Table

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

var _ session.Store = (*SessionStore)(nil)

func Open(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite db: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New takes over db. sqlite allows a single writer, so the pool is limited
// to one connection.
func New(db *sql.DB) (*SessionStore, error) {
	db.SetMaxOpenConns(1)
	s := &SessionStore{db: db, locks: make(map[int64]*sync.Mutex)}
	var err error
	if s.meta, err = NewTable(db, "meta"); err != nil {
		return nil, err
	}
	if s.sessions, err = NewTable(db, "game_session"); err != nil {
		return nil, err
	}
	if s.clears, err = NewTable(db, "region_clear"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func key(id int64) string {
	return fmt.Sprintf("%020d", id)
}

func (s *SessionStore) next(seq string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if err := s.meta.Get(seq, &n); err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	n++
	if err := s.meta.Set(seq, n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SessionStore) lock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = new(sync.Mutex)
		s.locks[id] = l
	}
	return l
}

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := s.next(sessionSeq)
	if err != nil {
		return fmt.Errorf("unable to allocate session id: %w", err)
	}
	sess.ID = id
	return s.sessions.Set(key(id), sess)
}

func (s *SessionStore) Get(ctx context.Context, id int64) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sess session.Session
	if err := s.sessions.Get(key(id), &sess); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Update(
	ctx context.Context, id int64, fn func(*session.Session) error,
) (*session.Session, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(key(id), sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) RecordClear(ctx context.Context, clear session.Clear) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := s.next(clearSeq)
	if err != nil {
		return fmt.Errorf("unable to allocate clear id: %w", err)
	}
	return s.clears.Set(key(id), clear)
}

func (s *SessionStore) Highscores(
	ctx context.Context, filter session.HighscoreFilter,
) ([]session.Clear, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := s.clears.Keys()
	if err != nil {
		return nil, err
	}
	clears := make([]session.Clear, 0, len(keys))
	for _, k := range keys {
		var clear session.Clear
		if err := s.clears.Get(k, &clear); err != nil {
			return nil, err
		}
		if filter.Region != nil && clear.Region != *filter.Region {
			continue
		}
		clears = append(clears, clear)
	}
	slices.SortStableFunc(clears, func(a, b session.Clear) int {
		return cmp.Compare(a.PlaytimeMs, b.PlaytimeMs)
	})
	if filter.Limit > 0 && len(clears) > filter.Limit {
		clears = clears[:filter.Limit]
	}
	return clears, nil
}
