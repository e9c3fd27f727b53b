package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"MediChain/apperror"
	"MediChain/ledger"
	"MediChain/models"
	"MediChain/rbac"
	"MediChain/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxDoctorNoteLength = 2000

type UploadRecordInput struct {
	PatientAddress string     `json:"patientAddress"`
	FileHash       string     `json:"fileHash"`
	FileName       string     `json:"fileName"`
	Description    string     `json:"description"`
	Date           *time.Time `json:"date"`
}

func (in UploadRecordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.PatientAddress, validation.Required.Error("Patient address is required")),
		validation.Field(&in.FileHash, validation.Required.Error("File hash is required")),
		validation.Field(&in.FileName, validation.Required.Error("File name is required"), validation.Length(1, 255)),
	)
}

// PatientRecordList is a patient's records together with the patient.
type PatientRecordList struct {
	Records []models.MedicalRecord `json:"records"`
	Patient *models.AccountSummary `json:"patient"`
}

type RecordService interface {
	Upload(ctx context.Context, claims *models.Claims, input UploadRecordInput) (*models.MedicalRecord, error)
	ListOwn(ctx context.Context, claims *models.Claims) ([]models.MedicalRecord, error)
	ListFor(ctx context.Context, claims *models.Claims, patientAddress string) (*PatientRecordList, error)
	SetDoctorNote(ctx context.Context, claims *models.Claims, recordID, note string) (*models.MedicalRecord, error)
}

type recordService struct {
	records  repositories.RecordRepository
	accounts repositories.AccountRepository
	mirror   ledger.Mirror
	log      *slog.Logger
	now      func() time.Time
}

func NewRecordService(
	records repositories.RecordRepository,
	accounts repositories.AccountRepository,
	mirror ledger.Mirror,
	log *slog.Logger,
) RecordService {
	return &recordService{
		records:  records,
		accounts: accounts,
		mirror:   mirror,
		log:      log,
		now:      time.Now,
	}
}

// Upload stores a record reference under the caller's own wallet.
func (s *recordService) Upload(ctx context.Context, claims *models.Claims, input UploadRecordInput) (*models.MedicalRecord, error) {
	if err := rbac.Authorize(claims, models.RolePatient); err != nil {
		return nil, err
	}

	input.PatientAddress = strings.TrimSpace(input.PatientAddress)
	input.FileName = strings.TrimSpace(input.FileName)
	if err := input.Validate(); err != nil {
		return nil, invalidArgument(err)
	}
	if input.PatientAddress != claims.WalletAddress {
		return nil, apperror.NewForbidden(msgOwnRecordsOnly)
	}

	patient, err := s.findPatient(ctx, input.PatientAddress)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
	}
	record := &models.MedicalRecord{
		PatientAddress: patient.WalletAddress,
		FileHash:       input.FileHash,
		FileName:       input.FileName,
		Description:    strings.TrimSpace(input.Description),
		Date:           date,
		UploadedBy:     claims.WalletAddress,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperror.NewInternal("failed to save record", err)
	}

	s.mirror.UploadRecord(record.PatientAddress, record.FileHash, record.FileName, record.UploadedBy)
	s.log.Info("record uploaded", "id", record.ID, "patient", patient.ID)
	return record, nil
}

func (s *recordService) ListOwn(ctx context.Context, claims *models.Claims) ([]models.MedicalRecord, error) {
	if err := rbac.Authorize(claims, models.RolePatient); err != nil {
		return nil, err
	}
	records, err := s.records.ListByPatient(ctx, claims.WalletAddress)
	if err != nil {
		return nil, apperror.NewInternal("failed to list records", err)
	}
	return records, nil
}

// ListFor returns a patient's records to any Doctor or Admin. The wallet
// must still belong to a Patient account.
func (s *recordService) ListFor(ctx context.Context, claims *models.Claims, patientAddress string) (*PatientRecordList, error) {
	if err := rbac.Authorize(claims, models.RoleDoctor, models.RoleAdmin); err != nil {
		return nil, err
	}

	patient, err := s.findPatient(ctx, strings.TrimSpace(patientAddress))
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListByPatient(ctx, patient.WalletAddress)
	if err != nil {
		return nil, apperror.NewInternal("failed to list records", err)
	}
	return &PatientRecordList{Records: records, Patient: patient.Summary()}, nil
}

func (s *recordService) SetDoctorNote(ctx context.Context, claims *models.Claims, recordID, note string) (*models.MedicalRecord, error) {
	if err := rbac.Authorize(claims, models.RoleDoctor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if recordID == "" {
		return nil, apperror.NewInvalidArgument("Record id is required")
	}
	if err := validation.Validate(note, validation.RuneLength(0, maxDoctorNoteLength)); err != nil {
		return nil, invalidArgument(err)
	}

	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load record", err)
	}
	if record == nil {
		return nil, apperror.NewNotFound(msgRecordNotFound)
	}

	record.DoctorNote = note
	if err := s.records.UpdateDoctorNote(ctx, record); err != nil {
		return nil, apperror.NewInternal("failed to update record", err)
	}
	return record, nil
}

func (s *recordService) findPatient(ctx context.Context, walletAddress string) (*models.Account, error) {
	if walletAddress == "" {
		return nil, apperror.NewNotFound(msgPatientNotFound)
	}
	patient, err := s.accounts.GetByWallet(ctx, walletAddress)
	if err != nil {
		return nil, apperror.NewInternal("failed to load patient", err)
	}
	if patient == nil || patient.Role != models.RolePatient {
		return nil, apperror.NewNotFound(msgPatientNotFound)
	}
	return patient, nil
}
