package models

import (
	"encoding/json"
	"time"
)

type Course struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Payments  []PaymentPlan   `json:"payments"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PaymentPlan — вариант оплаты курса (целиком / по частям).
type PaymentPlan struct {
	PaymentType string  `json:"paymentType"`
	Part        int     `json:"part"`
	Payment     float64 `json:"payment"`
}

type Syllabus struct {
	ID          int64           `json:"id"`
	CourseID    int64           `json:"courseId"`
	OrderNumber int             `json:"orderNumber"`
	Name        string          `json:"name"`
	Changes     json.RawMessage `json:"changes,omitempty"`
}

type Event struct {
	ID      int64           `json:"id"`
	Name    string          `json:"eventName"`
	Date    *time.Time      `json:"date"`
	Place   string          `json:"place"`
	Changes json.RawMessage `json:"changes,omitempty"`
}
