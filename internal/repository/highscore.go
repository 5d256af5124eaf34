package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/regionsweeper/internal/session"
)

func (q Queries) RecordClear(ctx context.Context, clear session.Clear) error {
	_, err := q.db.Exec(
		ctx,
		`INSERT INTO region_clear (game_session_id, region, playtime_ms, cleared_at)
		VALUES (@game_session_id, @region, @playtime_ms, @cleared_at);`,
		pgx.NamedArgs{
			"game_session_id": clear.SessionID,
			"region":          clear.Region,
			"playtime_ms":     clear.PlaytimeMs,
			"cleared_at":      clear.ClearedAt,
		},
	)
	return err
}

type HighscoreFilter session.HighscoreFilter

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Region != nil {
		clauses = append(clauses, "region = @region")
		args["region"] = *f.Region
	}
	return strings.Join(clauses, " AND "), args
}

func (q Queries) Highscores(
	ctx context.Context, filter session.HighscoreFilter,
) ([]session.Clear, error) {
	query := `
	SELECT
		game_session_id session_id,
		region,
		playtime_ms,
		cleared_at
	FROM region_clear
	`

	whereClause, args := HighscoreFilter(filter).WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	query += " ORDER BY playtime_ms, cleared_at"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[session.Clear])
}
