package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educrm/internal/models"
)

func CreateConsultation(ctx context.Context, q Querier, c *models.Consultation) error {
	if c.Status == "" {
		c.Status = models.ConsultAppointed
	}
	// Группа назначается только промоушеном после продажи.
	c.GroupID = nil
	return q.QueryRowContext(ctx, `
		INSERT INTO consultations (contact_date, cons_date, cons_time, student_name, student_phone,
		                           fin, course_id, teacher_id, persona, where_coming, knowledge,
		                           cancel_reason, add_info, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`, c.ContactDate, c.ConsDate, c.ConsTime, c.StudentName, c.StudentPhone,
		c.Fin, c.CourseID, c.TeacherID, c.Persona, whereOrOther(c.WhereComing), c.Knowledge,
		c.CancelReason, c.AddInfo, string(c.Status)).Scan(&c.ID)
}

func GetConsultationByID(ctx context.Context, q Querier, id int64) (*models.Consultation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, contact_date, cons_date, cons_time, student_name, student_phone, fin,
		       course_id, teacher_id, group_id, student_id, persona, where_coming, knowledge,
		       cancel_reason, add_info, status, changes
		FROM consultations WHERE id = $1
	`, id)
	return scanConsultation(row)
}

func scanConsultation(row *sql.Row) (*models.Consultation, error) {
	var c models.Consultation
	var status string
	var changes []byte
	err := row.Scan(&c.ID, &c.ContactDate, &c.ConsDate, &c.ConsTime, &c.StudentName, &c.StudentPhone,
		&c.Fin, &c.CourseID, &c.TeacherID, &c.GroupID, &c.StudentID, &c.Persona, &c.WhereComing,
		&c.Knowledge, &c.CancelReason, &c.AddInfo, &status, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Status = models.ConsultationStatus(status)
	c.Changes = changes
	return &c, nil
}

type ConsultationFilter struct {
	Search      string
	Status      models.ConsultationStatus
	CourseID    int64
	WhereComing string
	From, To    *time.Time
	Limit       int
	Offset      int
}

func ListConsultations(ctx context.Context, q Querier, f ConsultationFilter) ([]models.Consultation, int, error) {
	filter := `
		student_name ILIKE '%' || $1 || '%'
		AND ($2 = '' OR status = $2)
		AND ($3 = 0 OR course_id = $3)
		AND ($4 = '' OR where_coming = $4)
		AND ($5::timestamptz IS NULL OR contact_date >= $5)
		AND ($6::timestamptz IS NULL OR contact_date <= $6)`
	args := []any{f.Search, string(f.Status), f.CourseID, f.WhereComing, f.From, f.To}

	var total int
	if err := q.QueryRowContext(ctx,
		`SELECT count(*) FROM consultations WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, contact_date, cons_date, cons_time, student_name, student_phone, fin,
		       course_id, teacher_id, group_id, student_id, persona, where_coming, knowledge,
		       cancel_reason, add_info, status, changes
		FROM consultations
		WHERE `+filter+`
		ORDER BY contact_date DESC
		LIMIT $7 OFFSET $8
	`, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Consultation
	for rows.Next() {
		var c models.Consultation
		var status string
		var changes []byte
		if err := rows.Scan(&c.ID, &c.ContactDate, &c.ConsDate, &c.ConsTime, &c.StudentName,
			&c.StudentPhone, &c.Fin, &c.CourseID, &c.TeacherID, &c.GroupID, &c.StudentID,
			&c.Persona, &c.WhereComing, &c.Knowledge, &c.CancelReason, &c.AddInfo,
			&status, &changes); err != nil {
			return nil, 0, err
		}
		c.Status = models.ConsultationStatus(status)
		c.Changes = changes
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func UpdateConsultationRow(ctx context.Context, q Querier, c *models.Consultation) error {
	res, err := q.ExecContext(ctx, `
		UPDATE consultations
		SET contact_date = $1, cons_date = $2, cons_time = $3, student_name = $4,
		    student_phone = $5, fin = $6, course_id = $7, teacher_id = $8, group_id = $9,
		    persona = $10, where_coming = $11, knowledge = $12, cancel_reason = $13,
		    add_info = $14, status = $15
		WHERE id = $16
	`, c.ContactDate, c.ConsDate, c.ConsTime, c.StudentName, c.StudentPhone, c.Fin,
		c.CourseID, c.TeacherID, c.GroupID, c.Persona, whereOrOther(c.WhereComing),
		c.Knowledge, c.CancelReason, c.AddInfo, string(c.Status), c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func SetConsultationStudent(ctx context.Context, q Querier, consultationID, studentID int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE consultations SET student_id = $2 WHERE id = $1`, consultationID, studentID)
	return err
}

func SetConsultationGroup(ctx context.Context, q Querier, consultationID, groupID int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE consultations SET group_id = $2 WHERE id = $1`, consultationID, groupID)
	return err
}

func DeleteConsultation(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
