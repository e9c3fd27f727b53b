package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Staying in the same state is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// AttachedFile references an uploaded document by its stored name.
type AttachedFile struct {
	FileName   string    `json:"fileName"`
	FileHash   string    `json:"fileHash"`
	UploadDate time.Time `json:"uploadDate"`
}

// Appointment model
type Appointment struct {
	ID                 string                            `gorm:"primaryKey;size:36;column:id" json:"id"`
	PatientID          string                            `gorm:"size:36;not null;index;column:patient_id" json:"patientId"`
	DoctorID           string                            `gorm:"size:36;not null;index;column:doctor_id" json:"doctorId"`
	PatientAddress     string                            `gorm:"size:255;not null;column:patient_address" json:"patientAddress"`
	DoctorAddress      string                            `gorm:"size:255;not null;column:doctor_address" json:"doctorAddress"`
	HealthProblem      string                            `gorm:"type:text;not null;column:health_problem" json:"healthProblem"`
	AppointmentDate    time.Time                         `gorm:"not null;index;column:appointment_date" json:"appointmentDate"`
	Status             AppointmentStatus                 `gorm:"size:20;not null;index;default:pending;column:status" json:"status"`
	Priority           Priority                          `gorm:"size:20;not null;default:medium;column:priority" json:"priority"`
	AttachedFiles      datatypes.JSONSlice[AttachedFile] `gorm:"column:attached_files" json:"attachedFiles"`
	DoctorNotes        string                            `gorm:"type:text;column:doctor_notes" json:"doctorNotes"`
	DoctorMessage      string                            `gorm:"type:text;column:doctor_message" json:"doctorMessage"`
	DoctorResponseDate *time.Time                        `gorm:"column:doctor_response_date" json:"doctorResponseDate,omitempty"`
	CreatedAt          time.Time                         `gorm:"autoCreateTime;index;column:created_at" json:"createdAt"`
	UpdatedAt          time.Time                         `gorm:"autoUpdateTime;column:updated_at" json:"updatedAt"`
	Patient            *Account                          `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	Doctor             *Account                          `gorm:"foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// AppointmentSummary is the appointment view returned alongside patient records.
type AppointmentSummary struct {
	ID              string            `json:"id"`
	HealthProblem   string            `json:"healthProblem"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Status          AppointmentStatus `json:"status"`
	Priority        Priority          `json:"priority"`
}

func (a *Appointment) Summary() *AppointmentSummary {
	return &AppointmentSummary{
		ID:              a.ID,
		HealthProblem:   a.HealthProblem,
		AppointmentDate: a.AppointmentDate,
		Status:          a.Status,
		Priority:        a.Priority,
	}
}
