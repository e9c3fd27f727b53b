package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"MediChain/models"
	"MediChain/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	clock    time.Time
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		accounts: map[string]models.Account{},
		clock:    time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeAccounts) Create(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email || existing.WalletAddress == account.WalletAddress {
			return repositories.ErrDuplicate
		}
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = f.clock
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.public(f.find(func(a models.Account) bool { return a.ID == id })), nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.public(f.find(func(a models.Account) bool { return a.Email == email })), nil
}

func (f *fakeAccounts) GetByWallet(_ context.Context, walletAddress string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.public(f.find(func(a models.Account) bool { return a.WalletAddress == walletAddress })), nil
}

func (f *fakeAccounts) GetCredentialsByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(a models.Account) bool { return a.Email == email }), nil
}

func (f *fakeAccounts) GetCredentialsByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(a models.Account) bool { return a.ID == id }), nil
}

func (f *fakeAccounts) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(a models.Account) bool { return a.Email == email && a.ID != excludeID }) != nil, nil
}

func (f *fakeAccounts) WalletTaken(_ context.Context, walletAddress, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(a models.Account) bool { return a.WalletAddress == walletAddress && a.ID != excludeID }) != nil, nil
}

func (f *fakeAccounts) List(_ context.Context, role models.Role) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.accounts {
		if role == "" || a.Role == role {
			a.PasswordHash = ""
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeAccounts) Update(_ context.Context, current *models.Account, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[current.ID]
	if !ok {
		return errors.New("record not found")
	}
	for key, value := range fields {
		switch key {
		case "name":
			a.Name = value.(string)
		case "email":
			a.Email = value.(string)
		case "wallet_address":
			a.WalletAddress = value.(string)
		case "role":
			a.Role = value.(models.Role)
		}
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, current *models.Account, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[current.ID]
	if !ok {
		return errors.New("record not found")
	}
	a.PasswordHash = hashedPassword
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, account.ID)
	return nil
}

func (f *fakeAccounts) CountByRole(_ context.Context, role models.Role) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeAccounts) CountCreatedSince(_ context.Context, since time.Time, roles ...models.Role) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.accounts {
		if a.CreatedAt.Before(since) {
			continue
		}
		for _, role := range roles {
			if a.Role == role {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeAccounts) find(match func(models.Account) bool) *models.Account {
	for _, a := range f.accounts {
		if match(a) {
			found := a
			return &found
		}
	}
	return nil
}

func (f *fakeAccounts) public(a *models.Account) *models.Account {
	if a != nil {
		a.PasswordHash = ""
	}
	return a
}

type fakeAppointments struct {
	mu           sync.Mutex
	appointments []models.Appointment
	clock        time.Time
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeAppointments) Create(_ context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	f.clock = f.clock.Add(time.Minute)
	appointment.CreatedAt = f.clock
	f.appointments = append(f.appointments, *appointment)
	return nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointments) List(_ context.Context, filter repositories.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appointments {
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID != "" && a.DoctorID != filter.DoctorID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAppointments) Update(_ context.Context, appointment *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.appointments {
		if a.ID == appointment.ID {
			f.appointments[i] = *appointment
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeAppointments) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.appointments)), nil
}

func (f *fakeAppointments) CountByStatus(_ context.Context) (map[models.AppointmentStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[models.AppointmentStatus]int64{}
	for _, a := range f.appointments {
		counts[a.Status]++
	}
	return counts, nil
}

type fakeRecords struct {
	mu        sync.Mutex
	records   []models.MedicalRecord
	deleteErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{}
}

func (f *fakeRecords) Create(_ context.Context, record *models.MedicalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeRecords) GetByID(_ context.Context, id string) (*models.MedicalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRecords) ListByPatient(_ context.Context, patientAddress string) ([]models.MedicalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MedicalRecord{}
	for _, r := range f.records {
		if r.PatientAddress == patientAddress {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeRecords) UpdateDoctorNote(_ context.Context, record *models.MedicalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == record.ID {
			f.records[i].DoctorNote = record.DoctorNote
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeRecords) DeleteByPatient(_ context.Context, patientAddress string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.records[:0]
	var removed int64
	for _, r := range f.records {
		if r.PatientAddress == patientAddress {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return removed, nil
}

func (f *fakeRecords) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (f *fakeLocker) NewLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = value
	return true, nil
}

func (f *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == value {
		delete(f.held, key)
	}
	return nil
}

type memoryCodeStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{values: map[string]string{}}
}

func (m *memoryCodeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value.(string)
	return nil
}

func (m *memoryCodeStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryCodeStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) AddPatient(walletAddress, name string) {
	m.Called(walletAddress, name)
}

func (m *mockMirror) AddDoctor(walletAddress, name string) {
	m.Called(walletAddress, name)
}

func (m *mockMirror) UploadRecord(patientAddress, fileHash, fileName, uploadedBy string) {
	m.Called(patientAddress, fileHash, fileName, uploadedBy)
}

func (m *mockMirror) Close() {
	m.Called()
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendResetCodeEmail(email, code string) error {
	return m.Called(email, code).Error(0)
}

func claimsFor(a *models.Account) *models.Claims {
	return &models.Claims{UserID: a.ID, Email: a.Email, Role: a.Role, WalletAddress: a.WalletAddress}
}
