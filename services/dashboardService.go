package services

import (
	"context"
	"time"

	"MediChain/apperror"
	"MediChain/models"
	"MediChain/rbac"
	"MediChain/repositories"
)

type AppointmentStats struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type DashboardStats struct {
	TotalPatients       int64            `json:"totalPatients"`
	TotalDoctors        int64            `json:"totalDoctors"`
	NewMembersThisMonth int64            `json:"newMembersThisMonth"`
	TotalAppointments   int64            `json:"totalAppointments"`
	TotalRecords        int64            `json:"totalRecords"`
	AppointmentStats    AppointmentStats `json:"appointmentStats"`
}

type DashboardService interface {
	Stats(ctx context.Context, claims *models.Claims) (*DashboardStats, error)
}

type dashboardService struct {
	accounts     repositories.AccountRepository
	appointments repositories.AppointmentRepository
	records      repositories.RecordRepository
	now          func() time.Time
}

func NewDashboardService(
	accounts repositories.AccountRepository,
	appointments repositories.AppointmentRepository,
	records repositories.RecordRepository,
) DashboardService {
	return &dashboardService{
		accounts:     accounts,
		appointments: appointments,
		records:      records,
		now:          time.Now,
	}
}

func (s *dashboardService) Stats(ctx context.Context, claims *models.Claims) (*DashboardStats, error) {
	if err := rbac.Authorize(claims, models.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		stats DashboardStats
		err   error
	)
	if stats.TotalPatients, err = s.accounts.CountByRole(ctx, models.RolePatient); err != nil {
		return nil, apperror.NewInternal("failed to count patients", err)
	}
	if stats.TotalDoctors, err = s.accounts.CountByRole(ctx, models.RoleDoctor); err != nil {
		return nil, apperror.NewInternal("failed to count doctors", err)
	}
	if stats.NewMembersThisMonth, err = s.accounts.CountCreatedSince(ctx, startOfMonth(s.now()), models.RolePatient, models.RoleDoctor); err != nil {
		return nil, apperror.NewInternal("failed to count new members", err)
	}
	if stats.TotalAppointments, err = s.appointments.Count(ctx); err != nil {
		return nil, apperror.NewInternal("failed to count appointments", err)
	}
	if stats.TotalRecords, err = s.records.Count(ctx); err != nil {
		return nil, apperror.NewInternal("failed to count records", err)
	}

	byStatus, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to count appointments by status", err)
	}
	stats.AppointmentStats = AppointmentStats{
		Pending:   byStatus[models.StatusPending],
		Confirmed: byStatus[models.StatusConfirmed],
		Completed: byStatus[models.StatusCompleted],
		Cancelled: byStatus[models.StatusCancelled],
	}
	return &stats, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
