package models

import (
	"encoding/json"
	"time"
)

type ConsultationStatus string

const (
	ConsultAppointed    ConsultationStatus = "appointed"
	ConsultSold         ConsultationStatus = "sold"
	ConsultCancelled    ConsultationStatus = "cancelled"
	ConsultThinks       ConsultationStatus = "thinks"
	ConsultNotOpenCall  ConsultationStatus = "not-open-call"
	ConsultCallMissing  ConsultationStatus = "call-missing"
	ConsultWhatsappInfo ConsultationStatus = "whatsapp_info"
)

type Consultation struct {
	ID           int64              `json:"id"`
	ContactDate  time.Time          `json:"contactDate"`
	ConsDate     *time.Time         `json:"consDate"`
	ConsTime     string             `json:"consTime"`
	StudentName  string             `json:"studentName"`
	StudentPhone string             `json:"studentPhone"`
	Fin          string             `json:"fin"`
	CourseID     int64              `json:"course"`
	TeacherID    *int64             `json:"teacher"`
	GroupID      *int64             `json:"group"`
	StudentID    *int64             `json:"studentId"`
	Persona      string             `json:"persona"`
	WhereComing  string             `json:"whereComing"`
	Knowledge    string             `json:"knowledge"`
	CancelReason string             `json:"cancelReason"`
	AddInfo      string             `json:"addInfo"`
	Status       ConsultationStatus `json:"status"`
	Changes      json.RawMessage    `json:"changes,omitempty"`
}
