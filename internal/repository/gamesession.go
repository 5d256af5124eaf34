package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/regionsweeper/internal/session"
)

type GameSession struct {
	GameSessionId int64
	Region        string
	Status        string
	StartedAt     pgtype.Timestamptz
	EndedAt       pgtype.Timestamptz
	State         []byte
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func (g GameSession) Session() (*session.Session, error) {
	sess, err := session.Decode(g.State)
	if err != nil {
		return nil, fmt.Errorf("unable to decode session %d: %w", g.GameSessionId, err)
	}
	sess.ID = g.GameSessionId
	return sess, nil
}

func endedAt(sess *session.Session) pgtype.Timestamptz {
	if sess.EndedAt == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *sess.EndedAt, Valid: true}
}

func (q Queries) Create(ctx context.Context, sess *session.Session) error {
	state, err := sess.Bytes()
	if err != nil {
		return err
	}

	args := pgx.NamedArgs{
		"region":     sess.Region(),
		"status":     sess.Game.Status.String(),
		"started_at": sess.StartedAt,
		"ended_at":   endedAt(sess),
		"state":      state,
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (region, status, started_at, ended_at, state)
		VALUES (@region, @status, @started_at, @ended_at, @state)
		RETURNING *;`,
		args,
	)
	row, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
	if err != nil {
		return err
	}
	sess.ID = row.GameSessionId
	return nil
}

func (q Queries) FetchGameSession(ctx context.Context, id int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		id,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return row, mapError(err)
}

func (q Queries) Get(ctx context.Context, id int64) (*session.Session, error) {
	row, err := q.FetchGameSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.Session()
}

type UpdateGameSessionParams struct {
	Region  *string
	Status  *string
	EndedAt *pgtype.Timestamptz
	State   *[]byte
}

func NewUpdateGameSessionParams(sess *session.Session) (UpdateGameSessionParams, error) {
	state, err := sess.Bytes()
	if err != nil {
		return UpdateGameSessionParams{}, err
	}
	region := sess.Region()
	status := sess.Game.Status.String()
	ended := endedAt(sess)
	return UpdateGameSessionParams{
		Region:  &region,
		Status:  &status,
		EndedAt: &ended,
		State:   &state,
	}, nil
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any) {
	parts := []string{"updated_at = now()"}
	args := make(map[string]any)

	if p.Region != nil {
		parts = append(parts, "region = @region")
		args["region"] = *p.Region
	}
	if p.Status != nil {
		parts = append(parts, "status = @status")
		args["status"] = *p.Status
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, id int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = id
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		pgx.NamedArgs(args),
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return row, mapError(err)
}

// Update locks the row for the duration of fn. A concurrent update of the
// same session fails fast with [session.ErrBusy].
func (q Queries) Update(
	ctx context.Context, id int64, fn func(*session.Session) error,
) (*session.Session, error) {
	tx, err := q.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, _ := tx.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1 FOR UPDATE NOWAIT",
		id,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	if err != nil {
		return nil, mapError(err)
	}
	sess, err := row.Session()
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}

	params, err := NewUpdateGameSessionParams(sess)
	if err != nil {
		return nil, err
	}
	if _, err := New(tx).UpdateGameSession(ctx, id, params); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}
