package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"educrm/internal/models"
)

func LessonsExistForGroup(ctx context.Context, q Querier, groupID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lessons WHERE group_id = $1)`, groupID).Scan(&exists)
	return exists, err
}

// InsertLessons — пачечная вставка сгенерированного календаря вместе
// с посадкой текущего состава группы в каждый урок.
func InsertLessons(ctx context.Context, tx *sql.Tx, lessons []models.Lesson) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lessons (group_id, course_id, date, day, time, teacher_id, mentor_id, topic, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := range lessons {
		l := &lessons[i]
		var topic []byte
		if l.Topic != nil {
			topic = mustJSON(l.Topic)
		}
		if l.Status == "" {
			l.Status = models.LessonUnviewed
		}
		if err := stmt.QueryRowContext(ctx, l.GroupID, l.CourseID, l.Date, l.Day, l.Time,
			l.Teacher, l.Mentor, topic, string(l.Status)).Scan(&l.ID); err != nil {
			return err
		}
		for _, ls := range l.Students {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lesson_students (lesson_id, student_id, attendance, rating_by_student)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (lesson_id, student_id) DO NOTHING
			`, l.ID, ls.StudentID, ls.Attendance, ls.RatingByStudent); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetLessonByID(ctx context.Context, q Querier, id int64) (*models.Lesson, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, group_id, course_id, date, day, time, teacher_id, mentor_id, topic, status, changes
		FROM lessons WHERE id = $1
	`, id)
	l, err := scanLesson(row)
	if err != nil {
		return nil, err
	}
	l.Students, err = listLessonStudents(ctx, q, l.ID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func scanLesson(row *sql.Row) (*models.Lesson, error) {
	var l models.Lesson
	var topic, changes []byte
	var status string
	err := row.Scan(&l.ID, &l.GroupID, &l.CourseID, &l.Date, &l.Day, &l.Time,
		&l.Teacher, &l.Mentor, &topic, &status, &changes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(topic) > 0 {
		l.Topic = &models.Topic{}
		if err := scanJSON(topic, l.Topic); err != nil {
			return nil, err
		}
	}
	l.Status = models.LessonStatus(status)
	l.Changes = changes
	return &l, nil
}

func listLessonStudents(ctx context.Context, q Querier, lessonID int64) ([]models.LessonStudent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT student_id, attendance, rating_by_student
		FROM lesson_students WHERE lesson_id = $1 ORDER BY student_id
	`, lessonID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.LessonStudent
	for rows.Next() {
		var ls models.LessonStudent
		if err := rows.Scan(&ls.StudentID, &ls.Attendance, &ls.RatingByStudent); err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

func ListLessonsByGroup(ctx context.Context, q Querier, groupID int64, from, to time.Time, limit, offset int) ([]models.Lesson, int, error) {
	var total int
	if err := q.QueryRowContext(ctx, `
		SELECT count(*) FROM lessons WHERE group_id = $1 AND date >= $2 AND date <= $3
	`, groupID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, group_id, course_id, date, day, time, teacher_id, mentor_id, topic, status, changes
		FROM lessons
		WHERE group_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, time
		LIMIT $4 OFFSET $5
	`, groupID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Lesson
	for rows.Next() {
		var l models.Lesson
		var topic, changes []byte
		var status string
		if err := rows.Scan(&l.ID, &l.GroupID, &l.CourseID, &l.Date, &l.Day, &l.Time,
			&l.Teacher, &l.Mentor, &topic, &status, &changes); err != nil {
			return nil, 0, err
		}
		if len(topic) > 0 {
			l.Topic = &models.Topic{}
			if err := scanJSON(topic, l.Topic); err != nil {
				return nil, 0, err
			}
		}
		l.Status = models.LessonStatus(status)
		l.Changes = changes
		if l.Students, err = listLessonStudents(ctx, q, l.ID); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func UpdateLesson(ctx context.Context, q Querier, l *models.Lesson) error {
	var topic []byte
	if l.Topic != nil {
		topic = mustJSON(l.Topic)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE lessons
		SET date = $1, day = $2, time = $3, teacher_id = $4, mentor_id = $5, topic = $6, status = $7
		WHERE id = $8
	`, l.Date, l.Day, l.Time, l.Teacher, l.Mentor, topic, string(l.Status), l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	for _, ls := range l.Students {
		if _, err := q.ExecContext(ctx, `
			UPDATE lesson_students SET attendance = $1, rating_by_student = $2
			WHERE lesson_id = $3 AND student_id = $4
		`, ls.Attendance, ls.RatingByStudent, l.ID, ls.StudentID); err != nil {
			return err
		}
	}
	return nil
}

func DeleteLesson(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddStudentToGroupLessons сажает студента во все уроки группы —
// прошлые и будущие, идемпотентно.
func AddStudentToGroupLessons(ctx context.Context, q Querier, groupID, studentID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO lesson_students (lesson_id, student_id)
		SELECT id, $2 FROM lessons WHERE group_id = $1
		ON CONFLICT (lesson_id, student_id) DO NOTHING
	`, groupID, studentID)
	return err
}

func RemoveStudentFromGroupLessons(ctx context.Context, q Querier, groupID, studentID int64) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM lesson_students
		WHERE student_id = $2
		  AND lesson_id IN (SELECT id FROM lessons WHERE group_id = $1)
	`, groupID, studentID)
	return err
}

// BackfillLessonStaff проставляет преподавателя/ментора только там, где
// они ещё не назначены: точечные замены на уроках не перетираются.
func BackfillLessonStaff(ctx context.Context, q Querier, groupID int64, teacherID, mentorID *int64) error {
	if teacherID != nil {
		if _, err := q.ExecContext(ctx, `
			UPDATE lessons SET teacher_id = $2 WHERE group_id = $1 AND teacher_id IS NULL
		`, groupID, *teacherID); err != nil {
			return err
		}
	}
	if mentorID != nil {
		if _, err := q.ExecContext(ctx, `
			UPDATE lessons SET mentor_id = $2 WHERE group_id = $1 AND mentor_id IS NULL
		`, groupID, *mentorID); err != nil {
			return err
		}
	}
	return nil
}
