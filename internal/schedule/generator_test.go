package schedule

import (
	"testing"
	"time"

	"educrm/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsoWeekday(t *testing.T) {
	// 2026-08-31 — понедельник, 2026-09-06 — воскресенье.
	if got := isoWeekday(date(2026, time.August, 31)); got != 1 {
		t.Errorf("понедельник = %d, ожидали 1", got)
	}
	if got := isoWeekday(date(2026, time.September, 6)); got != 7 {
		t.Errorf("воскресенье = %d, ожидали 7", got)
	}
}

func TestIsHoliday(t *testing.T) {
	if !IsHoliday(date(2026, time.March, 21)) {
		t.Error("21 марта — Новруз, должен быть праздником")
	}
	if !IsHoliday(date(2027, time.January, 1)) {
		t.Error("праздники фиксированы по месяцу и числу, год не важен")
	}
	if IsHoliday(date(2026, time.April, 15)) {
		t.Error("15 апреля не праздник")
	}
}

func testGroup(start, end time.Time, slots []models.LessonSlot) *models.Group {
	return &models.Group{
		ID:         1,
		CourseID:   10,
		Teachers:   []int64{100},
		Mentors:    []int64{200},
		Students:   []int64{1, 2, 3},
		StartDate:  &start,
		EndDate:    &end,
		LessonDays: slots,
	}
}

func TestBuildLessons(t *testing.T) {
	// Две недели, 2026-08-31 (пн) .. 2026-09-13 (вс).
	grp := testGroup(date(2026, time.August, 31), date(2026, time.September, 13), []models.LessonSlot{
		{Day: 1, Time: "11:00"},
		{Day: 3, Time: "18:00", Practical: true},
	})
	syllabus := []models.Syllabus{
		{CourseID: 10, OrderNumber: 1, Name: "Введение"},
		{CourseID: 10, OrderNumber: 2, Name: "Типы данных"},
		{CourseID: 10, OrderNumber: 3, Name: "Функции"},
	}

	lessons, exhausted := buildLessons(grp, syllabus)
	if len(lessons) != 4 {
		t.Fatalf("уроков = %d, ожидали 4", len(lessons))
	}
	if exhausted != 0 {
		t.Fatalf("exhausted = %d, ожидали 0", exhausted)
	}

	// Понедельники получают темы по порядку, среды — практику без
	// продвижения курсора.
	if lessons[0].Topic == nil || lessons[0].Topic.Name != "Введение" {
		t.Errorf("первый урок: topic = %+v", lessons[0].Topic)
	}
	if lessons[1].Topic == nil || lessons[1].Topic.Name != "Praktika" {
		t.Errorf("практика: topic = %+v", lessons[1].Topic)
	}
	if lessons[2].Topic == nil || lessons[2].Topic.Name != "Типы данных" {
		t.Errorf("второй понедельник: topic = %+v", lessons[2].Topic)
	}
	if lessons[2].Topic.OrderNumber != 2 {
		t.Errorf("orderNumber = %d, ожидали 2", lessons[2].Topic.OrderNumber)
	}

	for i, l := range lessons {
		if len(l.Students) != 3 {
			t.Errorf("урок %d: студентов %d, ожидали 3", i, len(l.Students))
		}
		if l.Teacher == nil || *l.Teacher != 100 {
			t.Errorf("урок %d: teacher = %v", i, l.Teacher)
		}
		if l.Status != models.LessonUnviewed {
			t.Errorf("урок %d: status = %s", i, l.Status)
		}
	}
}

func TestBuildLessonsHolidaySkip(t *testing.T) {
	// Единственный слот — суббота, диапазон покрывает только
	// праздничные субботы: 2026-03-21 (Новруз).
	grp := testGroup(date(2026, time.March, 16), date(2026, time.March, 22), []models.LessonSlot{
		{Day: 6, Time: "10:00"},
	})
	lessons, _ := buildLessons(grp, nil)
	if len(lessons) != 0 {
		t.Fatalf("ожидали 0 уроков, получили %d", len(lessons))
	}
}

func TestBuildLessonsSyllabusExhaustion(t *testing.T) {
	grp := testGroup(date(2026, time.August, 31), date(2026, time.September, 21), []models.LessonSlot{
		{Day: 1, Time: "11:00"},
	})
	syllabus := []models.Syllabus{{CourseID: 10, OrderNumber: 1, Name: "Введение"}}

	lessons, exhausted := buildLessons(grp, syllabus)
	if len(lessons) != 4 {
		t.Fatalf("уроков = %d, ожидали 4", len(lessons))
	}
	if exhausted != 3 {
		t.Errorf("exhausted = %d, ожидали 3", exhausted)
	}
	if lessons[1].Topic != nil {
		t.Errorf("после исчерпания тема должна быть пустой, получили %+v", lessons[1].Topic)
	}
}

func TestBuildLessonsSundayNormalized(t *testing.T) {
	grp := testGroup(date(2026, time.September, 6), date(2026, time.September, 6), []models.LessonSlot{
		{Day: 7, Time: "12:00"},
	})
	lessons, _ := buildLessons(grp, nil)
	if len(lessons) != 1 {
		t.Fatalf("воскресный слот не сработал: уроков %d", len(lessons))
	}
	if lessons[0].Day != 7 {
		t.Errorf("day = %d, ожидали 7", lessons[0].Day)
	}
}
