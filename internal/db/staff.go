package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"educrm/internal/models"
)

// EmailTaken проверяет e-mail сразу по трём коллекциям персонала.
// exclude — таблица и id редактируемой записи (пустая таблица = создание).
func EmailTaken(ctx context.Context, q Querier, email, excludeTable string, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM admins
			WHERE lower(email) = lower($1) AND NOT ($2 = 'admins' AND id = $3)
		) OR EXISTS (
			SELECT 1 FROM workers
			WHERE lower(email) = lower($1) AND NOT ($2 = 'workers' AND id = $3)
		) OR EXISTS (
			SELECT 1 FROM teachers
			WHERE lower(email) = lower($1) AND NOT ($2 = 'teachers' AND id = $3)
		)
	`, email, excludeTable, excludeID).Scan(&exists)
	return exists, err
}

func CreateAdmin(ctx context.Context, q Querier, a *models.Admin) error {
	taken, err := EmailTaken(ctx, q, a.Email, "", 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyEmailExists)
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO admins (full_name, email, password)
		VALUES ($1, $2, $3) RETURNING id
	`, a.FullName, a.Email, a.Password).Scan(&a.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyEmailExists)
	}
	return err
}

func GetAdminByEmail(ctx context.Context, q Querier, email string) (*models.Admin, error) {
	var a models.Admin
	err := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, password FROM admins WHERE lower(email) = lower($1)
	`, email).Scan(&a.ID, &a.FullName, &a.Email, &a.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateTeacher(ctx context.Context, q Querier, t *models.Teacher) error {
	taken, err := EmailTaken(ctx, q, t.Email, "", 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyEmailExists)
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO teachers (full_name, email, password, role, courses, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, t.FullName, t.Email, t.Password, string(t.Role), pq.Array(t.Courses), t.Status).Scan(&t.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyEmailExists)
	}
	return err
}

func GetTeacherByID(ctx context.Context, q Querier, id int64) (*models.Teacher, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, password, role, courses, status, deleted, changes
		FROM teachers WHERE id = $1
	`, id)
	return scanTeacher(row)
}

func GetTeacherByEmail(ctx context.Context, q Querier, email string) (*models.Teacher, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, password, role, courses, status, deleted, changes
		FROM teachers WHERE lower(email) = lower($1) AND NOT deleted
	`, email)
	return scanTeacher(row)
}

func scanTeacher(row *sql.Row) (*models.Teacher, error) {
	var t models.Teacher
	var role string
	var courses pq.Int64Array
	var changes []byte
	err := row.Scan(&t.ID, &t.FullName, &t.Email, &t.Password, &role, &courses, &t.Status, &t.Deleted, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Role = models.Role(role)
	t.Courses = courses
	t.Changes = changes
	return &t, nil
}

func ListTeachers(ctx context.Context, q Querier, role models.Role, activeOnly bool) ([]models.Teacher, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, full_name, email, password, role, courses, status, deleted, changes
		FROM teachers
		WHERE NOT deleted AND role = $1 AND ($2 = false OR status)
		ORDER BY full_name
	`, string(role), activeOnly)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Teacher
	for rows.Next() {
		var t models.Teacher
		var r string
		var courses pq.Int64Array
		var changes []byte
		if err := rows.Scan(&t.ID, &t.FullName, &t.Email, &t.Password, &r, &courses, &t.Status, &t.Deleted, &changes); err != nil {
			return nil, err
		}
		t.Role = models.Role(r)
		t.Courses = courses
		t.Changes = changes
		out = append(out, t)
	}
	return out, rows.Err()
}

func UpdateTeacher(ctx context.Context, q Querier, t *models.Teacher) error {
	taken, err := EmailTaken(ctx, q, t.Email, "teachers", t.ID)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyEmailExists)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE teachers
		SET full_name = $1, email = $2, password = $3, role = $4, courses = $5, status = $6
		WHERE id = $7
	`, t.FullName, t.Email, t.Password, string(t.Role), pq.Array(t.Courses), t.Status, t.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyEmailExists)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func SoftDeleteTeacher(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `UPDATE teachers SET deleted = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func CreateWorker(ctx context.Context, q Querier, w *models.Worker) error {
	taken, err := EmailTaken(ctx, q, w.Email, "", 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyEmailExists)
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO workers (full_name, email, password, phone, position, profiles)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, w.FullName, w.Email, w.Password, w.Phone, w.Position, mustJSON(w.Profiles)).Scan(&w.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyEmailExists)
	}
	return err
}

func GetWorkerByID(ctx context.Context, q Querier, id int64) (*models.Worker, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, password, phone, position, profiles, changes
		FROM workers WHERE id = $1
	`, id)
	return scanWorker(row)
}

func GetWorkerByEmail(ctx context.Context, q Querier, email string) (*models.Worker, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, full_name, email, password, phone, position, profiles, changes
		FROM workers WHERE lower(email) = lower($1)
	`, email)
	return scanWorker(row)
}

func scanWorker(row *sql.Row) (*models.Worker, error) {
	var w models.Worker
	var profiles, changes []byte
	err := row.Scan(&w.ID, &w.FullName, &w.Email, &w.Password, &w.Phone, &w.Position, &profiles, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSON(profiles, &w.Profiles); err != nil {
		return nil, err
	}
	w.Changes = changes
	return &w, nil
}

func UpdateWorker(ctx context.Context, q Querier, w *models.Worker) error {
	taken, err := EmailTaken(ctx, q, w.Email, "workers", w.ID)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyEmailExists)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE workers
		SET full_name = $1, email = $2, password = $3, phone = $4, position = $5, profiles = $6
		WHERE id = $7
	`, w.FullName, w.Email, w.Password, w.Phone, w.Position, mustJSON(w.Profiles), w.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyEmailExists)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func DeleteWorker(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
