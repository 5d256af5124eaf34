package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/regionsweeper/internal/session"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), session.ErrNotFound)

	locked := fmt.Errorf("select: %w", &pgconn.PgError{Code: pgerrcode.LockNotAvailable})
	assert.ErrorIs(t, mapError(locked), session.ErrBusy)

	other := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	assert.Equal(t, error(other), mapError(other))

	assert.NoError(t, mapError(nil))

	boom := errors.New("boom")
	assert.Equal(t, boom, mapError(boom))
}

func TestUpdateGameSessionParamsSetClause(t *testing.T) {
	clause, args := UpdateGameSessionParams{}.SetClause()
	assert.Equal(t, "updated_at = now()", clause)
	assert.Empty(t, args)

	status := "won"
	state := []byte{1, 2, 3}
	clause, args = UpdateGameSessionParams{Status: &status, State: &state}.SetClause()
	assert.Equal(t, "updated_at = now(), status = @status, state = @state", clause)
	assert.Equal(t, map[string]any{"status": "won", "state": state}, args)
}

func TestHighscoreFilterWhereClause(t *testing.T) {
	clause, args := HighscoreFilter{}.WhereClause()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	region := "spain"
	clause, args = HighscoreFilter{Region: &region, Limit: 5}.WhereClause()
	assert.Equal(t, "region = @region", clause)
	assert.Equal(t, pgx.NamedArgs{"region": "spain"}, args)
}

func TestEndedAt(t *testing.T) {
	sess := &session.Session{}
	assert.False(t, endedAt(sess).Valid)

	now := time.Now().UTC()
	sess.EndedAt = &now
	ended := endedAt(sess)
	require.True(t, ended.Valid)
	assert.True(t, now.Equal(ended.Time))
}
