package models

import (
	"encoding/json"
	"time"
)

type EnrollmentStatus string

const (
	EnrollGraduate EnrollmentStatus = "graduate"
	EnrollContinue EnrollmentStatus = "continue"
	EnrollStopped  EnrollmentStatus = "stopped"
	EnrollFreeze   EnrollmentStatus = "freeze"
)

type Student struct {
	ID          int64           `json:"id"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Fin         string          `json:"fin"`
	Seria       string          `json:"seria"`
	Birthday    *time.Time      `json:"birthday"`
	Courses     []int64         `json:"courses"`
	WhereComing string          `json:"whereComing"`
	WhereSend   string          `json:"whereSend"`
	Groups      []Enrollment    `json:"groups"`
	Deleted     bool            `json:"deleted"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Enrollment — контрактная запись об участии студента в группе.
// Существует тогда и только тогда, когда студент числится в group_students.
type Enrollment struct {
	GroupID           int64            `json:"group"`
	ContractStartDate *time.Time       `json:"contractStartDate"`
	ContractEndDate   *time.Time       `json:"contractEndDate"`
	Payments          []Payment        `json:"payments"`
	Paids             []Paid           `json:"paids"`
	Status            EnrollmentStatus `json:"status"`
	TotalAmount       float64          `json:"totalAmount"`
	Discount          float64          `json:"discount"`
	DiscountReason    string           `json:"discountReason"`
	Degree            string           `json:"degree"`
	WorkStatus        []string         `json:"workStatus"`
	CurrentWorkPlace  string           `json:"currentWorkPlace"`
	CurrentWorkPos    string           `json:"currentWorkPosition"`
}

type Payment struct {
	Payment     float64    `json:"payment"`
	PaymentDate *time.Time `json:"paymentDate"`
	Status      string     `json:"status"` // wait|paid
}

type Paid struct {
	Payment     float64    `json:"payment"`
	PaymentDate *time.Time `json:"paymentDate"`
	Confirmed   bool       `json:"confirmed"`
}
