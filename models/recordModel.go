package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalRecord is a patient-owned document reference.
type MedicalRecord struct {
	ID             string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	PatientAddress string    `gorm:"size:255;not null;index;column:patient_address" json:"patientAddress"`
	FileHash       string    `gorm:"size:512;not null;column:file_hash" json:"fileHash"`
	FileName       string    `gorm:"size:255;not null;column:file_name" json:"fileName"`
	Description    string    `gorm:"type:text;column:description" json:"description"`
	Date           time.Time `gorm:"not null;index;column:date" json:"date"`
	DoctorNote     string    `gorm:"type:text;column:doctor_note" json:"doctorNote"`
	UploadedBy     string    `gorm:"size:255;not null;column:uploaded_by" json:"uploadedBy"`
	CreatedAt      time.Time `gorm:"autoCreateTime;column:created_at" json:"createdAt"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}

func (r *MedicalRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
