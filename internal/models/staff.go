package models

import "encoding/json"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWorker  Role = "worker"
	RoleTeacher Role = "teacher"
	RoleMentor  Role = "mentor"
)

type Admin struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type Teacher struct {
	ID       int64           `json:"id"`
	FullName string          `json:"fullName"`
	Email    string          `json:"email"`
	Password string          `json:"-"`
	Role     Role            `json:"role"` // teacher|mentor
	Courses  []int64         `json:"courses"`
	Status   bool            `json:"status"`
	Deleted  bool            `json:"deleted"`
	Changes  json.RawMessage `json:"changes,omitempty"`
}

// Profile — права воркера на один раздел системы.
// Power: "all" — полный доступ, "update" — только через подтверждение,
// "only-show" — чтение.
type Profile struct {
	Profile string `json:"profile"`
	Power   string `json:"power"`
}

type Worker struct {
	ID       int64           `json:"id"`
	FullName string          `json:"fullName"`
	Email    string          `json:"email"`
	Password string          `json:"-"`
	Phone    string          `json:"phone"`
	Position string          `json:"position"`
	Profiles []Profile       `json:"profiles"`
	Changes  json.RawMessage `json:"changes,omitempty"`
}
