package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MediChain/models"

	"gorm.io/gorm"
)

const (
	RecordCacheExpiry = 24 * time.Hour
)

type RecordRepository interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, id string) (*models.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientAddress string) ([]models.MedicalRecord, error)
	UpdateDoctorNote(ctx context.Context, record *models.MedicalRecord) error
	DeleteByPatient(ctx context.Context, patientAddress string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type recordRepository struct {
	db    *gorm.DB
	cache Cache
	log   *slog.Logger
}

func NewRecordRepository(db *gorm.DB, cache Cache, log *slog.Logger) RecordRepository {
	return &recordRepository{db: db, cache: cache, log: log}
}

func (r *recordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", translate(err))
	}
	r.invalidate(ctx, record.PatientAddress)
	return nil
}

func (r *recordRepository) GetByID(ctx context.Context, id string) (*models.MedicalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var record models.MedicalRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &record, nil
}

// ListByPatient returns a patient's records, newest record date first.
func (r *recordRepository) ListByPatient(ctx context.Context, patientAddress string) ([]models.MedicalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cacheKey := recordsCacheKey(patientAddress)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err != nil {
		r.log.Warn("failed to get records from cache", "key", cacheKey, "error", err)
	} else if cached != "" {
		var records []models.MedicalRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
	}

	records := []models.MedicalRecord{}
	err = r.db.WithContext(ctx).
		Where("patient_address = ?", patientAddress).
		Order("date DESC").
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cacheKey, recordsJSON, RecordCacheExpiry); err != nil {
		r.log.Warn("failed to set records in cache", "key", cacheKey, "error", err)
	}
	return records, nil
}

func (r *recordRepository) UpdateDoctorNote(ctx context.Context, record *models.MedicalRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.WithContext(ctx).Model(&models.MedicalRecord{}).
		Where("id = ?", record.ID).
		Update("doctor_note", record.DoctorNote).Error
	if err != nil {
		return fmt.Errorf("failed to update doctor note: %w", err)
	}
	r.invalidate(ctx, record.PatientAddress)
	return nil
}

func (r *recordRepository) DeleteByPatient(ctx context.Context, patientAddress string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result := r.db.WithContext(ctx).Where("patient_address = ?", patientAddress).Delete(&models.MedicalRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete records: %w", result.Error)
	}
	r.invalidate(ctx, patientAddress)
	return result.RowsAffected, nil
}

func (r *recordRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MedicalRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *recordRepository) invalidate(ctx context.Context, patientAddress string) {
	if err := r.cache.Delete(ctx, recordsCacheKey(patientAddress)); err != nil {
		r.log.Warn("failed to delete records cache", "patient", patientAddress, "error", err)
	}
}

func recordsCacheKey(patientAddress string) string {
	return fmt.Sprintf("records_cache:%s", patientAddress)
}
