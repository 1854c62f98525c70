package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"educrm/internal/models"
)

func CreateStudent(ctx context.Context, q Querier, s *models.Student) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO students (full_name, email, phone, fin, seria, birthday, courses, where_coming, where_send)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, s.FullName, s.Email, s.Phone, s.Fin, s.Seria, s.Birthday,
		pq.Array(s.Courses), whereOrOther(s.WhereComing), whereOrOther(s.WhereSend)).
		Scan(&s.ID, &s.CreatedAt)
}

func whereOrOther(v string) string {
	if v == "" {
		return "other"
	}
	return v
}

// GetStudentByID возвращает студента вместе с его enrollment-записями.
func GetStudentByID(ctx context.Context, q Querier, id int64) (*models.Student, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, fin, seria, birthday, courses,
		       where_coming, where_send, deleted, changes, created_at
		FROM students WHERE id = $1
	`, id)
	s, err := scanStudent(row)
	if err != nil {
		return nil, err
	}
	s.Groups, err = ListEnrollmentsByStudent(ctx, q, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetStudentByFin — поиск по ФИН-коду; им же дедуплицируется промоушен консультаций.
func GetStudentByFin(ctx context.Context, q Querier, fin string) (*models.Student, error) {
	if fin == "" {
		return nil, models.ErrNotFound
	}
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, phone, fin, seria, birthday, courses,
		       where_coming, where_send, deleted, changes, created_at
		FROM students WHERE fin = $1 LIMIT 1
	`, fin)
	s, err := scanStudent(row)
	if err != nil {
		return nil, err
	}
	s.Groups, err = ListEnrollmentsByStudent(ctx, q, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanStudent(row *sql.Row) (*models.Student, error) {
	var s models.Student
	var courses pq.Int64Array
	var changes []byte
	err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.Fin, &s.Seria, &s.Birthday,
		&courses, &s.WhereComing, &s.WhereSend, &s.Deleted, &changes, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Courses = courses
	s.Changes = changes
	return &s, nil
}

func ListStudents(ctx context.Context, q Querier, search string, courseID int64, limit, offset int) ([]models.Student, int, error) {
	filter := `NOT deleted AND full_name ILIKE '%' || $1 || '%' AND ($2 = 0 OR $2 = ANY(courses))`

	var total int
	if err := q.QueryRowContext(ctx,
		`SELECT count(*) FROM students WHERE `+filter, search, courseID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, full_name, email, phone, fin, seria, birthday, courses,
		       where_coming, where_send, deleted, changes, created_at
		FROM students
		WHERE `+filter+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, search, courseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		var s models.Student
		var courses pq.Int64Array
		var changes []byte
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.Fin, &s.Seria, &s.Birthday,
			&courses, &s.WhereComing, &s.WhereSend, &s.Deleted, &changes, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		s.Courses = courses
		s.Changes = changes
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// UpdateStudentRow пишет только скалярные поля; членство в группах
// ведёт синхронизатор.
func UpdateStudentRow(ctx context.Context, q Querier, s *models.Student) error {
	res, err := q.ExecContext(ctx, `
		UPDATE students
		SET full_name = $1, email = $2, phone = $3, fin = $4, seria = $5,
		    birthday = $6, courses = $7, where_coming = $8, where_send = $9
		WHERE id = $10
	`, s.FullName, s.Email, s.Phone, s.Fin, s.Seria, s.Birthday,
		pq.Array(s.Courses), whereOrOther(s.WhereComing), whereOrOther(s.WhereSend), s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Студенты не удаляются физически.
func SoftDeleteStudent(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `UPDATE students SET deleted = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
