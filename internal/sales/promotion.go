// Package sales — превращение проданной консультации в студента с
// местом в группе.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"educrm/internal/db"
	"educrm/internal/models"
)

// GroupCapacity — предел состава группы при автоназначении.
const GroupCapacity = 18

// Result — итог промоушена: студент и группа, в которую он посажен.
type Result struct {
	Student *models.Student `json:"student"`
	Group   *models.Group   `json:"group"`
}

// PromoteConsultation гарантирует ровно одного студента для проданной
// консультации и место в группе со свободной вместимостью. Вызывается
// внутри транзакции после того, как статус sold уже записан.
//
// Дедупликация — по fin: существующий студент не дублируется, а
// линкуется. Уже промоушенная консультация (studentId заполнен) — no-op.
func PromoteConsultation(ctx context.Context, q db.Querier, c *models.Consultation, preferredGroupID *int64) (*Result, error) {
	if c.StudentID != nil {
		student, err := db.GetStudentByID(ctx, q, *c.StudentID)
		if err != nil {
			return nil, fmt.Errorf("студент консультации: %w", err)
		}
		return &Result{Student: student}, nil
	}

	student, err := db.GetStudentByFin(ctx, q, c.Fin)
	switch {
	case errors.Is(err, models.ErrNotFound):
		student = &models.Student{
			FullName: c.StudentName,
			Phone:    c.StudentPhone,
			Fin:      c.Fin,
			Courses:  []int64{c.CourseID},
		}
		if err := db.CreateStudent(ctx, q, student); err != nil {
			return nil, fmt.Errorf("создание студента: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("поиск студента по fin: %w", err)
	}

	if err := db.SetConsultationStudent(ctx, q, c.ID, student.ID); err != nil {
		return nil, fmt.Errorf("привязка студента: %w", err)
	}

	group, err := assignGroup(ctx, q, c.CourseID, student.ID, preferredGroupID)
	if err != nil {
		return nil, err
	}
	if err := db.SetConsultationGroup(ctx, q, c.ID, group.ID); err != nil {
		return nil, fmt.Errorf("привязка группы: %w", err)
	}
	return &Result{Student: student, Group: group}, nil
}

// assignGroup сажает студента в ожидающую группу курса со свободным
// местом, предпочитая явно запрошенную. Когда свободных нет — заводит
// новую с номером lastGroup+1. Уроков у ожидающей группы ещё нет,
// поэтому синхронизация уроков здесь не нужна.
func assignGroup(ctx context.Context, q db.Querier, courseID, studentID int64, preferredGroupID *int64) (*models.Group, error) {
	var preferred int64
	if preferredGroupID != nil {
		preferred = *preferredGroupID
	}

	group, err := db.FindWaitingGroupWithCapacity(ctx, q, courseID, preferred, GroupCapacity)
	switch {
	case err == nil:
		if err := db.AddGroupStudent(ctx, q, group.ID, studentID); err != nil {
			return nil, fmt.Errorf("включение в группу %d: %w", group.ID, err)
		}
		if err := db.AddEnrollmentIfAbsent(ctx, q, studentID, group.ID); err != nil {
			return nil, fmt.Errorf("enrollment в группу %d: %w", group.ID, err)
		}
		return group, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("поиск ожидающей группы: %w", err)
	}

	last, err := db.LastGroupByCourse(ctx, q, courseID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Нумерацию новой группы не из чего вывести.
			return nil, fmt.Errorf("у курса %d нет ни одной группы: %w", courseID, err)
		}
		return nil, fmt.Errorf("последняя группа курса: %w", err)
	}

	next := last.GroupNumber + 1
	group = &models.Group{
		Name:        DeriveGroupName(last.Name, next),
		GroupNumber: next,
		CourseID:    courseID,
		Students:    []int64{studentID},
		Status:      models.GroupWaiting,
	}
	if err := db.CreateGroup(ctx, q, group); err != nil {
		return nil, fmt.Errorf("создание группы %q: %w", group.Name, err)
	}
	if err := db.AddEnrollmentIfAbsent(ctx, q, studentID, group.ID); err != nil {
		return nil, fmt.Errorf("enrollment в новую группу: %w", err)
	}
	return group, nil
}

// DeriveGroupName выкидывает из имени предыдущей группы все цифры и
// дописывает новый номер: "Front 5" → "Front 6".
func DeriveGroupName(lastName string, nextNumber int) string {
	var b []rune
	for _, r := range lastName {
		if !unicode.IsDigit(r) {
			b = append(b, r)
		}
	}
	return string(b) + strconv.Itoa(nextNumber)
}
