package models

import (
	"encoding/json"
	"time"
)

type LessonStatus string

const (
	LessonUnviewed  LessonStatus = "unviewed"
	LessonConfirmed LessonStatus = "confirmed"
	LessonCancelled LessonStatus = "cancelled"
)

// Attendance: -1 — отсутствовал, 0 — не отмечен, 1 — присутствовал, 2 — заморозка.
type LessonStudent struct {
	StudentID       int64 `json:"student"`
	Attendance      int   `json:"attendance"`
	RatingByStudent int   `json:"ratingByStudent"`
}

// Topic — денормализованная тема из силлабуса; для практик {name:"Praktika"}.
type Topic struct {
	Name        string `json:"name"`
	OrderNumber int    `json:"orderNumber,omitempty"`
}

type Lesson struct {
	ID       int64           `json:"id"`
	GroupID  int64           `json:"group"`
	CourseID int64           `json:"course"`
	Date     time.Time       `json:"date"`
	Day      int             `json:"day"` // 1 = понедельник … 7 = воскресенье
	Time     string          `json:"time"`
	Teacher  *int64          `json:"teacher"`
	Mentor   *int64          `json:"mentor"`
	Students []LessonStudent `json:"students"`
	Topic    *Topic          `json:"topic"`
	Status   LessonStatus    `json:"status"`
	Changes  json.RawMessage `json:"changes,omitempty"`
}
