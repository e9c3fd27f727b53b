package services

import (
	"context"
	"testing"
	"time"

	"MediChain/models"
	"MediChain/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSymmetricKey = "0123456789abcdef0123456789abcdef"

var testAdmin = AdminIdentity{
	Name:          "System Administrator",
	Email:         "admin@medichain.test",
	Password:      "admin-secret",
	WalletAddress: "0xADMIN",
}

type testEnv struct {
	accounts     *fakeAccounts
	appointments *fakeAppointments
	records      *fakeRecords
	locker       *fakeLocker
	codes        *memoryCodeStore
	mirror       *mockMirror
	mailer       *mockMailer
	tokens       *utils.TokenMaker
	now          time.Time

	auth        AuthService
	users       UserService
	appointment *appointmentService
	record      *recordService
	dashboard   *dashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := utils.NewTokenMaker(testSymmetricKey, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		accounts:     newFakeAccounts(),
		appointments: newFakeAppointments(),
		records:      newFakeRecords(),
		locker:       newFakeLocker(),
		codes:        newMemoryCodeStore(),
		mirror:       &mockMirror{},
		mailer:       &mockMailer{},
		tokens:       tokens,
		now:          time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
	env.mirror.On("AddPatient", mock.Anything, mock.Anything).Maybe()
	env.mirror.On("AddDoctor", mock.Anything, mock.Anything).Maybe()
	env.mirror.On("UploadRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

	env.auth = NewAuthService(env.accounts, env.locker, env.codes, tokens, env.mailer, env.mirror, testAdmin, discardLogger)
	env.users = NewUserService(env.accounts, env.records, env.locker, env.mirror, testAdmin, discardLogger)

	env.appointment = NewAppointmentService(env.appointments, env.accounts, env.records, discardLogger).(*appointmentService)
	env.appointment.now = func() time.Time { return env.now }
	env.record = NewRecordService(env.records, env.accounts, env.mirror, discardLogger).(*recordService)
	env.record.now = func() time.Time { return env.now }
	env.dashboard = NewDashboardService(env.accounts, env.appointments, env.records).(*dashboardService)
	env.dashboard.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) register(t *testing.T, role models.Role, name, email, wallet string) *models.Account {
	t.Helper()
	result, err := e.auth.Register(context.Background(), AccountInput{
		Name:          name,
		Email:         email,
		WalletAddress: wallet,
		Password:      "secret123",
	}, role)
	require.NoError(t, err)
	return result.User
}

func adminClaims() *models.Claims {
	return &models.Claims{
		UserID:        models.BuiltinAdminID,
		Email:         testAdmin.Email,
		Role:          models.RoleAdmin,
		WalletAddress: testAdmin.WalletAddress,
	}
}
