package db

import (
	"context"
	"database/sql"
	"errors"

	"educrm/internal/models"
)

func CreateCourse(ctx context.Context, q Querier, c *models.Course) error {
	taken, err := courseNameTaken(ctx, q, c.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyCourseExists)
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO courses (name, payments)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, c.Name, mustJSON(c.Payments)).Scan(&c.ID, &c.CreatedAt)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyCourseExists)
	}
	return err
}

func GetCourseByID(ctx context.Context, q Querier, id int64) (*models.Course, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, payments, changes, created_at
		FROM courses WHERE id = $1
	`, id)

	var c models.Course
	var payments, changes []byte
	if err := row.Scan(&c.ID, &c.Name, &payments, &changes, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := scanJSON(payments, &c.Payments); err != nil {
		return nil, err
	}
	c.Changes = changes
	return &c, nil
}

func ListCourses(ctx context.Context, q Querier) ([]models.Course, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, payments, changes, created_at
		FROM courses ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Course
	for rows.Next() {
		var c models.Course
		var payments, changes []byte
		if err := rows.Scan(&c.ID, &c.Name, &payments, &changes, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := scanJSON(payments, &c.Payments); err != nil {
			return nil, err
		}
		c.Changes = changes
		out = append(out, c)
	}
	return out, rows.Err()
}

func UpdateCourse(ctx context.Context, q Querier, c *models.Course) error {
	taken, err := courseNameTaken(ctx, q, c.Name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyCourseExists)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE courses SET name = $1, payments = $2 WHERE id = $3
	`, c.Name, mustJSON(c.Payments), c.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyCourseExists)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func DeleteCourse(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Имя курса уникально без учёта регистра — как и pre-check в остальных местах,
// это гонко-опасная проверка, уникальный индекс подстраховывает.
func courseNameTaken(ctx context.Context, q Querier, name string, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM courses WHERE lower(name) = lower($1) AND id <> $2
		)
	`, name, excludeID).Scan(&exists)
	return exists, err
}
