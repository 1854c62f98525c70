package db

import (
	"context"
	"database/sql"
	"errors"

	"educrm/internal/models"
)

func CreateSyllabus(ctx context.Context, q Querier, s *models.Syllabus) error {
	taken, err := syllabusOrderTaken(ctx, q, s.CourseID, s.OrderNumber, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeySyllabusOrderTaken)
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO syllabus (course_id, order_number, name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, s.CourseID, s.OrderNumber, s.Name).Scan(&s.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeySyllabusOrderTaken)
	}
	return err
}

func GetSyllabusByID(ctx context.Context, q Querier, id int64) (*models.Syllabus, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, course_id, order_number, name, changes
		FROM syllabus WHERE id = $1
	`, id)

	var s models.Syllabus
	var changes []byte
	if err := row.Scan(&s.ID, &s.CourseID, &s.OrderNumber, &s.Name, &changes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	s.Changes = changes
	return &s, nil
}

// ListSyllabusByCourse — темы курса в порядке прохождения.
// Генератор уроков потребляет их последовательно.
func ListSyllabusByCourse(ctx context.Context, q Querier, courseID int64) ([]models.Syllabus, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, course_id, order_number, name, changes
		FROM syllabus
		WHERE course_id = $1
		ORDER BY order_number
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Syllabus
	for rows.Next() {
		var s models.Syllabus
		var changes []byte
		if err := rows.Scan(&s.ID, &s.CourseID, &s.OrderNumber, &s.Name, &changes); err != nil {
			return nil, err
		}
		s.Changes = changes
		out = append(out, s)
	}
	return out, rows.Err()
}

func UpdateSyllabus(ctx context.Context, q Querier, s *models.Syllabus) error {
	taken, err := syllabusOrderTaken(ctx, q, s.CourseID, s.OrderNumber, s.ID)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeySyllabusOrderTaken)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE syllabus SET order_number = $1, name = $2 WHERE id = $3
	`, s.OrderNumber, s.Name, s.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeySyllabusOrderTaken)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func DeleteSyllabus(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM syllabus WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func syllabusOrderTaken(ctx context.Context, q Querier, courseID int64, order int, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM syllabus
			WHERE course_id = $1 AND order_number = $2 AND id <> $3
		)
	`, courseID, order, excludeID).Scan(&exists)
	return exists, err
}
