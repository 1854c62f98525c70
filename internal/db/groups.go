package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"educrm/internal/models"
)

func CreateGroup(ctx context.Context, q Querier, g *models.Group) error {
	taken, err := groupNameTaken(ctx, q, g.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyGroupExists)
	}
	if g.Status == "" {
		g.Status = models.GroupWaiting
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO groups (name, group_number, course_id, teachers, mentors,
		                    start_date, end_date, lesson_days, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, g.Name, g.GroupNumber, g.CourseID, pq.Array(g.Teachers), pq.Array(g.Mentors),
		g.StartDate, g.EndDate, mustJSON(g.LessonDays), string(g.Status)).Scan(&g.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyGroupExists)
	}
	if err != nil {
		return err
	}
	return ReplaceGroupStudents(ctx, q, g.ID, g.Students)
}

func GetGroupByID(ctx context.Context, q Querier, id int64) (*models.Group, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, group_number, course_id, teachers, mentors,
		       start_date, end_date, lesson_days, status, changes
		FROM groups WHERE id = $1
	`, id)
	g, err := scanGroup(row)
	if err != nil {
		return nil, err
	}
	g.Students, err = ListGroupStudentIDs(ctx, q, g.ID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	var g models.Group
	var teachers, mentors pq.Int64Array
	var lessonDays, changes []byte
	var status string
	err := row.Scan(&g.ID, &g.Name, &g.GroupNumber, &g.CourseID, &teachers, &mentors,
		&g.StartDate, &g.EndDate, &lessonDays, &status, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSON(lessonDays, &g.LessonDays); err != nil {
		return nil, err
	}
	g.Teachers = teachers
	g.Mentors = mentors
	g.Status = models.GroupStatus(status)
	g.Changes = changes
	return &g, nil
}

func ListGroups(ctx context.Context, q Querier, search string, status models.GroupStatus, limit, offset int) ([]models.Group, int, error) {
	filter := `name ILIKE '%' || $1 || '%' AND ($2 = '' OR status = $2)`

	var total int
	if err := q.QueryRowContext(ctx,
		`SELECT count(*) FROM groups WHERE `+filter, search, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, group_number, course_id, teachers, mentors,
		       start_date, end_date, lesson_days, status, changes
		FROM groups
		WHERE `+filter+`
		ORDER BY name
		LIMIT $3 OFFSET $4
	`, search, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Group
	for rows.Next() {
		var g models.Group
		var teachers, mentors pq.Int64Array
		var lessonDays, changes []byte
		var st string
		if err := rows.Scan(&g.ID, &g.Name, &g.GroupNumber, &g.CourseID, &teachers, &mentors,
			&g.StartDate, &g.EndDate, &lessonDays, &st, &changes); err != nil {
			return nil, 0, err
		}
		if err := scanJSON(lessonDays, &g.LessonDays); err != nil {
			return nil, 0, err
		}
		g.Teachers = teachers
		g.Mentors = mentors
		g.Status = models.GroupStatus(st)
		g.Changes = changes
		if g.Students, err = ListGroupStudentIDs(ctx, q, g.ID); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// UpdateGroupRow пишет только поля самой группы; состав студентов
// заменяется отдельно внутри той же транзакции.
func UpdateGroupRow(ctx context.Context, q Querier, g *models.Group) error {
	taken, err := groupNameTaken(ctx, q, g.Name, g.ID)
	if err != nil {
		return err
	}
	if taken {
		return models.Conflict(models.KeyGroupExists)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE groups
		SET name = $1, group_number = $2, course_id = $3, teachers = $4, mentors = $5,
		    start_date = $6, end_date = $7, lesson_days = $8, status = $9
		WHERE id = $10
	`, g.Name, g.GroupNumber, g.CourseID, pq.Array(g.Teachers), pq.Array(g.Mentors),
		g.StartDate, g.EndDate, mustJSON(g.LessonDays), string(g.Status), g.ID)
	if models.IsUniqueViolation(err) {
		return models.Conflict(models.KeyGroupExists)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func ListGroupStudentIDs(ctx context.Context, q Querier, groupID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT student_id FROM group_students WHERE group_id = $1 ORDER BY position, student_id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func ReplaceGroupStudents(ctx context.Context, q Querier, groupID int64, studentIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM group_students WHERE group_id = $1`, groupID); err != nil {
		return err
	}
	for i, sid := range studentIDs {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO group_students (group_id, student_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, student_id) DO UPDATE SET position = EXCLUDED.position
		`, groupID, sid, i); err != nil {
			return err
		}
	}
	return nil
}

func AddGroupStudent(ctx context.Context, q Querier, groupID, studentID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO group_students (group_id, student_id, position)
		VALUES ($1, $2, COALESCE((SELECT max(position) + 1 FROM group_students WHERE group_id = $1), 0))
		ON CONFLICT (group_id, student_id) DO NOTHING
	`, groupID, studentID)
	return err
}

func RemoveGroupStudent(ctx context.Context, q Querier, groupID, studentID int64) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM group_students WHERE group_id = $1 AND student_id = $2
	`, groupID, studentID)
	return err
}

// FindWaitingGroupWithCapacity — "ожидающая" группа курса со свободным
// местом. preferredID, если задан и подходит, выигрывает.
func FindWaitingGroupWithCapacity(ctx context.Context, q Querier, courseID, preferredID int64, capacity int) (*models.Group, error) {
	row := q.QueryRowContext(ctx, `
		SELECT g.id, g.name, g.group_number, g.course_id, g.teachers, g.mentors,
		       g.start_date, g.end_date, g.lesson_days, g.status, g.changes
		FROM groups g
		WHERE g.course_id = $1 AND g.status = 'waiting'
		  AND (SELECT count(*) FROM group_students gs WHERE gs.group_id = g.id) < $2
		ORDER BY (g.id = $3) DESC, g.group_number
		LIMIT 1
	`, courseID, capacity, preferredID)
	g, err := scanGroup(row)
	if err != nil {
		return nil, err
	}
	g.Students, err = ListGroupStudentIDs(ctx, q, g.ID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LastGroupByCourse — группа с максимальным номером; от неё выводится
// имя и номер следующей группы курса.
func LastGroupByCourse(ctx context.Context, q Querier, courseID int64) (*models.Group, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, group_number, course_id, teachers, mentors,
		       start_date, end_date, lesson_days, status, changes
		FROM groups
		WHERE course_id = $1
		ORDER BY group_number DESC
		LIMIT 1
	`, courseID)
	return scanGroup(row)
}

// Удаление группы каскадом сносит её уроки и membership-строки.
func DeleteGroup(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func groupNameTaken(ctx context.Context, q Querier, name string, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM groups WHERE lower(name) = lower($1) AND id <> $2
		)
	`, name, excludeID).Scan(&exists)
	return exists, err
}
