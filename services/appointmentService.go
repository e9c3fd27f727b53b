package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"MediChain/apperror"
	"MediChain/models"
	"MediChain/rbac"
	"MediChain/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxHealthProblemLength = 1000
	maxDoctorMessageLength = 1000
	maxDoctorNotesLength   = 2000
)

type CreateAppointmentInput struct {
	DoctorID        string                `json:"doctorId"`
	HealthProblem   string                `json:"healthProblem"`
	AppointmentDate time.Time             `json:"appointmentDate"`
	Priority        models.Priority       `json:"priority"`
	AttachedFiles   []models.AttachedFile `json:"attachedFiles"`
}

func (in CreateAppointmentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.DoctorID, validation.Required.Error("Doctor is required")),
		validation.Field(&in.HealthProblem,
			validation.Required.Error("Health problem description is required"),
			validation.RuneLength(1, maxHealthProblemLength)),
		validation.Field(&in.AppointmentDate, validation.Required.Error("Appointment date is required")),
	)
}

type RespondInput struct {
	DoctorMessage *string `json:"doctorMessage"`
	DoctorNotes   *string `json:"doctorNotes"`
}

func (in RespondInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.DoctorMessage, validation.RuneLength(0, maxDoctorMessageLength)),
		validation.Field(&in.DoctorNotes, validation.RuneLength(0, maxDoctorNotesLength)),
	)
}

// PatientRecords is what the assigned doctor sees for an appointment.
type PatientRecords struct {
	Records     []models.MedicalRecord     `json:"records"`
	Patient     *models.AccountSummary     `json:"patient"`
	Appointment *models.AppointmentSummary `json:"appointment"`
}

type AppointmentService interface {
	Create(ctx context.Context, claims *models.Claims, input CreateAppointmentInput) (*models.Appointment, error)
	List(ctx context.Context, claims *models.Claims) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, claims *models.Claims, id string, status models.AppointmentStatus) (*models.Appointment, error)
	Respond(ctx context.Context, claims *models.Claims, id string, input RespondInput) (*models.Appointment, error)
	PatientRecords(ctx context.Context, claims *models.Claims, id string) (*PatientRecords, error)
}

type appointmentService struct {
	appointments repositories.AppointmentRepository
	accounts     repositories.AccountRepository
	records      repositories.RecordRepository
	log          *slog.Logger
	now          func() time.Time
}

func NewAppointmentService(
	appointments repositories.AppointmentRepository,
	accounts repositories.AccountRepository,
	records repositories.RecordRepository,
	log *slog.Logger,
) AppointmentService {
	return &appointmentService{
		appointments: appointments,
		accounts:     accounts,
		records:      records,
		log:          log,
		now:          time.Now,
	}
}

func (s *appointmentService) Create(ctx context.Context, claims *models.Claims, input CreateAppointmentInput) (*models.Appointment, error) {
	if err := rbac.Authorize(claims, models.RolePatient); err != nil {
		return nil, err
	}

	input.HealthProblem = strings.TrimSpace(input.HealthProblem)
	if err := input.Validate(); err != nil {
		return nil, invalidArgument(err)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperror.NewInvalidArgument(msgInvalidPriority)
	}
	if !input.AppointmentDate.After(s.now()) {
		return nil, apperror.NewInvalidArgument(msgDateNotInFuture)
	}

	doctor, err := s.accounts.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load doctor", err)
	}
	if doctor == nil || doctor.Role != models.RoleDoctor {
		return nil, apperror.NewInvalidArgument(msgInvalidDoctor)
	}

	patient, err := s.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load patient", err)
	}
	if patient == nil {
		return nil, apperror.NewNotFound(msgPatientNotFound)
	}

	appointment := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		PatientAddress:  patient.WalletAddress,
		DoctorAddress:   doctor.WalletAddress,
		HealthProblem:   input.HealthProblem,
		AppointmentDate: input.AppointmentDate,
		Status:          models.StatusPending,
		Priority:        input.Priority,
		AttachedFiles:   input.AttachedFiles,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, apperror.NewInternal("failed to create appointment", err)
	}

	s.log.Info("appointment created", "id", appointment.ID, "patient", patient.ID, "doctor", doctor.ID)
	return appointment, nil
}

// List returns the appointments visible to the caller, newest first.
func (s *appointmentService) List(ctx context.Context, claims *models.Claims) ([]models.Appointment, error) {
	if claims == nil {
		return nil, apperror.NewUnauthenticated("Authentication required")
	}

	var filter repositories.AppointmentFilter
	switch claims.Role {
	case models.RolePatient:
		filter.PatientID = claims.UserID
	case models.RoleDoctor:
		filter.DoctorID = claims.UserID
	case models.RoleAdmin:
	default:
		return nil, apperror.NewForbidden("Forbidden: insufficient privileges")
	}

	appointments, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal("failed to list appointments", err)
	}
	return appointments, nil
}

// UpdateStatus moves the appointment along the status graph. Setting the
// current status again is a no-op.
func (s *appointmentService) UpdateStatus(ctx context.Context, claims *models.Claims, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if err := rbac.Authorize(claims, models.RoleDoctor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.NewInvalidArgument(msgInvalidStatus)
	}

	appointment, err := s.loadAssigned(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == status {
		return appointment, nil
	}
	if !appointment.Status.CanTransitionTo(status) {
		return nil, apperror.NewInvalidArgument(
			"Cannot change appointment status from " + string(appointment.Status) + " to " + string(status))
	}

	appointment.Status = status
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, apperror.NewInternal("failed to update appointment", err)
	}
	return appointment, nil
}

// Respond records the doctor's message and notes. The first response to a
// pending appointment confirms it.
func (s *appointmentService) Respond(ctx context.Context, claims *models.Claims, id string, input RespondInput) (*models.Appointment, error) {
	if err := rbac.Authorize(claims, models.RoleDoctor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	appointment, err := s.loadAssigned(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	if input.DoctorMessage != nil {
		appointment.DoctorMessage = *input.DoctorMessage
	}
	if input.DoctorNotes != nil {
		appointment.DoctorNotes = *input.DoctorNotes
	}
	respondedAt := s.now()
	appointment.DoctorResponseDate = &respondedAt
	if appointment.Status == models.StatusPending {
		appointment.Status = models.StatusConfirmed
	}

	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, apperror.NewInternal("failed to update appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) PatientRecords(ctx context.Context, claims *models.Claims, id string) (*PatientRecords, error) {
	if err := rbac.Authorize(claims, models.RoleDoctor, models.RoleAdmin); err != nil {
		return nil, err
	}

	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to load appointment", err)
	}
	if appointment == nil {
		return nil, apperror.NewNotFound(msgAppointmentNotFound)
	}
	if claims.Role == models.RoleDoctor && appointment.DoctorID != claims.UserID {
		return nil, apperror.NewForbidden("Only the assigned doctor can view these records")
	}

	patient, err := s.accounts.GetByWallet(ctx, appointment.PatientAddress)
	if err != nil {
		return nil, apperror.NewInternal("failed to load patient", err)
	}
	if patient == nil || patient.Role != models.RolePatient {
		return nil, apperror.NewNotFound(msgPatientNotFound)
	}

	records, err := s.records.ListByPatient(ctx, patient.WalletAddress)
	if err != nil {
		return nil, apperror.NewInternal("failed to list records", err)
	}
	return &PatientRecords{
		Records:     records,
		Patient:     patient.Summary(),
		Appointment: appointment.Summary(),
	}, nil
}

// loadAssigned fetches the appointment and checks the caller is its doctor.
func (s *appointmentService) loadAssigned(ctx context.Context, claims *models.Claims, id string) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to load appointment", err)
	}
	if appointment == nil {
		return nil, apperror.NewNotFound(msgAppointmentNotFound)
	}
	if appointment.DoctorID != claims.UserID {
		return nil, apperror.NewForbidden(msgNotAssignedDoctor)
	}
	return appointment, nil
}
