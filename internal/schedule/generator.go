// Package schedule строит календарь уроков группы из её диапазона дат,
// недельного расписания и силлабуса курса.
package schedule

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"educrm/internal/db"
	"educrm/internal/metrics"
	"educrm/internal/models"
)

type Generator struct {
	database *sql.DB
	log      *zap.SugaredLogger
}

func NewGenerator(database *sql.DB, log *zap.SugaredLogger) *Generator {
	return &Generator{database: database, log: log}
}

// GenerateLessons материализует календарь уроков группы один раз.
// Неполные предусловия и уже сгенерированная группа — no-op, не ошибка.
// Сбой генерации логируется и возвращается как false: он не должен
// ронять создание или правку группы, к которым генерация привязана.
func (g *Generator) GenerateLessons(ctx context.Context, grp *models.Group) bool {
	if grp.StartDate == nil || grp.EndDate == nil || len(grp.LessonDays) == 0 {
		return true
	}

	exists, err := db.LessonsExistForGroup(ctx, g.database, grp.ID)
	if err != nil {
		g.fail(grp.ID, "проверка существующих уроков", err)
		return false
	}
	if exists {
		return true
	}

	syllabus, err := db.ListSyllabusByCourse(ctx, g.database, grp.CourseID)
	if err != nil {
		g.fail(grp.ID, "чтение силлабуса", err)
		return false
	}

	lessons, exhausted := buildLessons(grp, syllabus)
	if exhausted > 0 {
		// Тем в силлабусе меньше, чем занятий: хвост остаётся без темы.
		g.log.Warnw("силлабус исчерпан до конца расписания",
			"group_id", grp.ID, "course_id", grp.CourseID, "уроков без темы", exhausted)
	}
	if len(lessons) == 0 {
		return true
	}

	tx, err := g.database.BeginTx(ctx, nil)
	if err != nil {
		g.fail(grp.ID, "begin tx", err)
		return false
	}
	defer tx.Rollback()

	if err := db.InsertLessons(ctx, tx, lessons); err != nil {
		g.fail(grp.ID, "вставка уроков", err)
		return false
	}
	if err := tx.Commit(); err != nil {
		g.fail(grp.ID, "commit", err)
		return false
	}

	metrics.LessonsGenerated.Add(float64(len(lessons)))
	g.log.Infow("уроки сгенерированы", "group_id", grp.ID, "count", len(lessons))
	return true
}

func (g *Generator) fail(groupID int64, step string, err error) {
	metrics.WorkflowErrors.WithLabelValues("lesson_generation").Inc()
	g.log.Errorw("генерация уроков не удалась", "group_id", groupID, "step", step, "err", err)
}

// buildLessons обходит каждый календарный день диапазона включительно.
// Возвращает уроки и число занятий, оставшихся без темы после
// исчерпания силлабуса.
func buildLessons(grp *models.Group, syllabus []models.Syllabus) ([]models.Lesson, int) {
	var lessons []models.Lesson
	cursor := 0
	exhausted := 0

	seed := make([]models.LessonStudent, 0, len(grp.Students))
	for _, sid := range grp.Students {
		seed = append(seed, models.LessonStudent{StudentID: sid})
	}

	for d := *grp.StartDate; !d.After(*grp.EndDate); d = d.AddDate(0, 0, 1) {
		if IsHoliday(d) {
			continue
		}
		slot := slotFor(grp.LessonDays, isoWeekday(d))
		if slot == nil {
			continue
		}

		var topic *models.Topic
		switch {
		case slot.Practical:
			topic = &models.Topic{Name: "Praktika"}
		case cursor < len(syllabus):
			topic = &models.Topic{Name: syllabus[cursor].Name, OrderNumber: syllabus[cursor].OrderNumber}
			cursor++
		default:
			exhausted++
		}

		lessons = append(lessons, models.Lesson{
			GroupID:  grp.ID,
			CourseID: grp.CourseID,
			Date:     d,
			Day:      slot.Day,
			Time:     slot.Time,
			Teacher:  firstRef(grp.Teachers),
			Mentor:   firstRef(grp.Mentors),
			Students: append([]models.LessonStudent(nil), seed...),
			Topic:    topic,
			Status:   models.LessonUnviewed,
		})
	}
	return lessons, exhausted
}

// isoWeekday: воскресенье из 0 нормализуется в 7.
func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func slotFor(slots []models.LessonSlot, day int) *models.LessonSlot {
	for i := range slots {
		if slots[i].Day == day {
			return &slots[i]
		}
	}
	return nil
}

func firstRef(ids []int64) *int64 {
	if len(ids) == 0 {
		return nil
	}
	return &ids[0]
}
