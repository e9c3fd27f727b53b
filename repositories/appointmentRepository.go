package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MediChain/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const accountSummaryColumns = "id, name, email, role, wallet_address"

// AppointmentFilter narrows a listing to one patient or one doctor.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error)
}

type appointmentRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db, now: time.Now}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appointment models.Appointment
	err := r.withParties(r.db.WithContext(ctx)).First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// List returns the newest appointments first.
func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.withParties(r.db.WithContext(ctx))
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}

	var appointments []models.Appointment
	if err := query.Order("created_at DESC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Update writes the mutable columns and stamps UpdatedAt on appointment.
func (r *appointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	appointment.UpdatedAt = r.now()
	err := r.db.WithContext(ctx).Model(appointment).
		Select("status", "doctor_notes", "doctor_message", "doctor_response_date", "updated_at").
		Updates(map[string]interface{}{
			"status":               appointment.Status,
			"doctor_notes":         appointment.DoctorNotes,
			"doctor_message":       appointment.DoctorMessage,
			"doctor_response_date": appointment.DoctorResponseDate,
			"updated_at":           appointment.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Appointment{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []struct {
		Status models.AppointmentStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments by status: %w", err)
	}

	counts := make(map[models.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *appointmentRepository) withParties(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Patient", func(db *gorm.DB) *gorm.DB {
			return db.Select(accountSummaryColumns)
		}).
		Preload("Doctor", func(db *gorm.DB) *gorm.DB {
			return db.Select(accountSummaryColumns)
		})
}
