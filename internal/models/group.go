package models

import (
	"encoding/json"
	"time"
)

type GroupStatus string

const (
	GroupWaiting GroupStatus = "waiting"
	GroupCurrent GroupStatus = "current"
	GroupEnded   GroupStatus = "ended"
)

// LessonSlot — один еженедельный слот расписания группы.
// День недели по ISO: 1 = понедельник, 7 = воскресенье.
type LessonSlot struct {
	Day       int    `json:"day"`
	Time      string `json:"time"`
	Practical bool   `json:"practical"`
}

type Group struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	GroupNumber int             `json:"groupNumber"`
	CourseID    int64           `json:"course"`
	Teachers    []int64         `json:"teachers"`
	Mentors     []int64         `json:"mentors"`
	Students    []int64         `json:"students"` // авторитетный список состава, порядок сохраняется
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	LessonDays  []LessonSlot    `json:"lessonDate"`
	Status      GroupStatus     `json:"status"`
	Changes     json.RawMessage `json:"changes,omitempty"`
}
