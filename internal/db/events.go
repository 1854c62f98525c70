package db

import (
	"context"
	"database/sql"
	"errors"

	"educrm/internal/models"
)

func CreateEvent(ctx context.Context, q Querier, e *models.Event) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO events (event_name, date, place)
		VALUES ($1, $2, $3) RETURNING id
	`, e.Name, e.Date, e.Place).Scan(&e.ID)
}

func GetEventByID(ctx context.Context, q Querier, id int64) (*models.Event, error) {
	var e models.Event
	var changes []byte
	err := q.QueryRowContext(ctx, `
		SELECT id, event_name, date, place, changes FROM events WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Date, &e.Place, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Changes = changes
	return &e, nil
}

func ListEvents(ctx context.Context, q Querier, search string, limit, offset int) ([]models.Event, int, error) {
	var total int
	if err := q.QueryRowContext(ctx, `
		SELECT count(*) FROM events WHERE event_name ILIKE '%' || $1 || '%'
	`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, event_name, date, place, changes
		FROM events
		WHERE event_name ILIKE '%' || $1 || '%'
		ORDER BY date DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		var changes []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Place, &changes); err != nil {
			return nil, 0, err
		}
		e.Changes = changes
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func UpdateEvent(ctx context.Context, q Querier, e *models.Event) error {
	res, err := q.ExecContext(ctx, `
		UPDATE events SET event_name = $1, date = $2, place = $3 WHERE id = $4
	`, e.Name, e.Date, e.Place, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func DeleteEvent(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
