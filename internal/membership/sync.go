// Package membership держит Group.students, Student.groups и
// Lesson.students взаимно согласованными. Все операции идемпотентны
// и выполняются внутри транзакции вызывающего воркфлоу.
package membership

import (
	"context"
	"fmt"

	"educrm/internal/db"
	"educrm/internal/metrics"
	"educrm/internal/models"
)

// Diff — разность множеств id с сохранением порядка появления.
func Diff(old, updated []int64) (added, removed []int64) {
	oldSet := make(map[int64]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	newSet := make(map[int64]bool, len(updated))
	for _, id := range updated {
		newSet[id] = true
	}
	for _, id := range updated {
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// ReconcileGroup разводит последствия изменения состава группы:
// enrollment-записи добавленных/убранных студентов и их посадка во все
// уроки группы (прошлые и будущие). Преподаватель/ментор доливаются
// только в уроки без назначения.
func ReconcileGroup(ctx context.Context, q db.Querier, oldGroup, newGroup *models.Group) error {
	added, removed := Diff(oldGroup.Students, newGroup.Students)

	for _, sid := range added {
		if err := db.AddEnrollmentIfAbsent(ctx, q, sid, newGroup.ID); err != nil {
			return fmt.Errorf("enrollment студента %d: %w", sid, err)
		}
		if err := db.AddStudentToGroupLessons(ctx, q, newGroup.ID, sid); err != nil {
			return fmt.Errorf("посадка студента %d в уроки: %w", sid, err)
		}
	}
	for _, sid := range removed {
		if err := db.DeleteEnrollment(ctx, q, sid, newGroup.ID); err != nil {
			return fmt.Errorf("снятие enrollment студента %d: %w", sid, err)
		}
		if err := db.RemoveStudentFromGroupLessons(ctx, q, newGroup.ID, sid); err != nil {
			return fmt.Errorf("снятие студента %d с уроков: %w", sid, err)
		}
	}

	if err := db.BackfillLessonStaff(ctx, q, newGroup.ID, first(newGroup.Teachers), first(newGroup.Mentors)); err != nil {
		return fmt.Errorf("долив преподавателя/ментора: %w", err)
	}

	metrics.MembershipSyncs.Inc()
	return nil
}

// ReconcileStudent — симметричное направление: правка student.groups
// отражается в group_students и уроках затронутых групп. Контрактные
// поля сохранившихся enrollment-записей тоже перезаписываются — их
// правка и есть типичная причина такого апдейта.
func ReconcileStudent(ctx context.Context, q db.Querier, oldStudent, newStudent *models.Student) error {
	oldIDs := enrollmentGroupIDs(oldStudent.Groups)
	newIDs := enrollmentGroupIDs(newStudent.Groups)
	addedIDs, removedIDs := Diff(oldIDs, newIDs)

	addedSet := make(map[int64]bool, len(addedIDs))
	for _, id := range addedIDs {
		addedSet[id] = true
	}

	for _, e := range newStudent.Groups {
		if err := db.SaveEnrollment(ctx, q, newStudent.ID, e); err != nil {
			return fmt.Errorf("enrollment в группу %d: %w", e.GroupID, err)
		}
		if !addedSet[e.GroupID] {
			continue
		}
		if err := db.AddGroupStudent(ctx, q, e.GroupID, newStudent.ID); err != nil {
			return fmt.Errorf("включение в группу %d: %w", e.GroupID, err)
		}
		if err := db.AddStudentToGroupLessons(ctx, q, e.GroupID, newStudent.ID); err != nil {
			return fmt.Errorf("посадка в уроки группы %d: %w", e.GroupID, err)
		}
	}

	for _, gid := range removedIDs {
		if err := db.RemoveGroupStudent(ctx, q, gid, newStudent.ID); err != nil {
			return fmt.Errorf("исключение из группы %d: %w", gid, err)
		}
		if err := db.DeleteEnrollment(ctx, q, newStudent.ID, gid); err != nil {
			return fmt.Errorf("снятие enrollment группы %d: %w", gid, err)
		}
		if err := db.RemoveStudentFromGroupLessons(ctx, q, gid, newStudent.ID); err != nil {
			return fmt.Errorf("снятие с уроков группы %d: %w", gid, err)
		}
	}

	metrics.MembershipSyncs.Inc()
	return nil
}

func enrollmentGroupIDs(es []models.Enrollment) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.GroupID)
	}
	return out
}

func first(ids []int64) *int64 {
	if len(ids) == 0 {
		return nil
	}
	return &ids[0]
}
