package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"MediChain/apperror"
	"MediChain/models"
	"MediChain/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestListUsersRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	patient := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	env.register(t, models.RoleDoctor, "Bob", "bob@example.com", "0xBBB")

	_, err := env.users.List(context.Background(), claimsFor(patient), "")
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	all, err := env.users.List(context.Background(), adminClaims(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	doctors, err := env.users.List(context.Background(), adminClaims(), "Doctor")
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Bob", doctors[0].Name)
	assert.Empty(t, doctors[0].PasswordHash)

	_, err = env.users.List(context.Background(), adminClaims(), "Nurse")
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))
}

func TestListDoctors(t *testing.T) {
	env := newTestEnv(t)
	patient := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	env.register(t, models.RoleDoctor, "Zed", "zed@example.com", "0xZZZ")
	env.register(t, models.RoleDoctor, "Bob", "bob@example.com", "0xBBB")

	doctors, err := env.users.ListDoctors(context.Background(), claimsFor(patient))
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Bob", doctors[0].Name)
	assert.Equal(t, "Zed", doctors[1].Name)
}

func TestAdminCreatesUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.users.Create(ctx, adminClaims(), AccountInput{
		Name: "Second Admin", Email: "ops@example.com", WalletAddress: "0xOPS", Password: "secret123", Role: "Admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, created.Role)

	_, err = env.users.Create(ctx, claimsFor(created), AccountInput{
		Name: "X", Email: "x@example.com", WalletAddress: "0xX", Password: "secret123", Role: "Superuser",
	})
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))

	doctor := env.register(t, models.RoleDoctor, "Bob", "bob@example.com", "0xBBB")
	_, err = env.users.Create(ctx, claimsFor(doctor), AccountInput{
		Name: "Y", Email: "y@example.com", WalletAddress: "0xY", Password: "secret123", Role: "Patient",
	})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestAdminCannotChangeOwnRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Update(ctx, adminClaims(), models.BuiltinAdminID, UpdateUserInput{Role: strPtr("Patient")})
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	stored, err := env.users.Create(ctx, adminClaims(), AccountInput{
		Name: "Ops", Email: "ops@example.com", WalletAddress: "0xOPS", Password: "secret123", Role: "Admin",
	})
	require.NoError(t, err)

	_, err = env.users.Update(ctx, claimsFor(stored), stored.ID, UpdateUserInput{Role: strPtr("Doctor")})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, msgCannotChangeOwnRole, apperror.Message(err))

	unchanged, err := env.accounts.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, unchanged.Role)
}

func TestUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	doctor := env.register(t, models.RoleDoctor, "Bob", "bob@example.com", "0xBBB")

	_, err := env.users.Update(ctx, claimsFor(doctor), patient.ID, UpdateUserInput{Role: strPtr("Doctor")})
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	_, err = env.users.Update(ctx, adminClaims(), patient.ID, UpdateUserInput{Role: strPtr("doctor")})
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))

	updated, err := env.users.Update(ctx, adminClaims(), patient.ID, UpdateUserInput{Role: strPtr("Doctor")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, updated.Role)

	_, err = env.users.Update(ctx, adminClaims(), "missing", UpdateUserInput{Role: strPtr("Doctor")})
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	bob := env.register(t, models.RolePatient, "Bob", "bob@example.com", "0xBBB")

	updated, err := env.users.Update(ctx, claimsFor(alice), alice.ID, UpdateUserInput{
		Name:  strPtr("Alice Smith"),
		Email: strPtr("ALICE.SMITH@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "alice.smith@example.com", updated.Email)
	assert.Equal(t, "0xAAA", updated.WalletAddress)

	_, err = env.users.Update(ctx, claimsFor(alice), alice.ID, UpdateUserInput{Email: strPtr("bob@example.com")})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	_, err = env.users.Update(ctx, claimsFor(alice), alice.ID, UpdateUserInput{WalletAddress: strPtr("0xBBB")})
	assert.True(t, apperror.Is(err, apperror.Conflict))

	_, err = env.users.Update(ctx, claimsFor(alice), alice.ID, UpdateUserInput{WalletAddress: strPtr("0xAAA")})
	assert.NoError(t, err, "keeping the own wallet is not a collision")

	_, err = env.users.Update(ctx, claimsFor(alice), bob.ID, UpdateUserInput{Name: strPtr("Hacked")})
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	_, err = env.users.Update(ctx, claimsFor(alice), bob.ID, UpdateUserInput{})
	assert.True(t, apperror.Is(err, apperror.Forbidden), "an empty update still needs ownership")

	byAdmin, err := env.users.Update(ctx, adminClaims(), bob.ID, UpdateUserInput{Name: strPtr("Robert")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", byAdmin.Name)

	_, err = env.users.Update(ctx, claimsFor(alice), alice.ID, UpdateUserInput{Email: strPtr("nope")})
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))

	_, err = env.users.Update(ctx, adminClaims(), models.BuiltinAdminID, UpdateUserInput{Name: strPtr("Root")})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestDeletePatientCascadesRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	bob := env.register(t, models.RolePatient, "Bob", "bob@example.com", "0xBBB")

	for _, p := range []*models.Account{alice, alice, bob} {
		_, err := env.record.Upload(ctx, claimsFor(p), UploadRecordInput{
			PatientAddress: p.WalletAddress, FileHash: "hash-" + p.Name, FileName: "scan.pdf",
		})
		require.NoError(t, err)
	}

	require.NoError(t, env.users.Delete(ctx, adminClaims(), alice.ID))

	gone, err := env.accounts.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	left, err := env.records.ListByPatient(ctx, "0xAAA")
	require.NoError(t, err)
	assert.Empty(t, left)

	bobs, err := env.records.ListByPatient(ctx, "0xBBB")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func TestDeletePatientKeepsAccountWhenRecordsFail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	env.records.deleteErr = errors.New("db down")

	err := env.users.Delete(ctx, adminClaims(), alice.ID)
	assert.True(t, apperror.Is(err, apperror.Internal))

	kept, err := env.accounts.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestDeleteDoctorLeavesAppointments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	bob := env.register(t, models.RoleDoctor, "Bob", "bob@example.com", "0xBBB")

	appointment, err := env.appointment.Create(ctx, claimsFor(alice), CreateAppointmentInput{
		DoctorID: bob.ID, HealthProblem: "Headache", AppointmentDate: env.now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, adminClaims(), bob.ID))

	kept, err := env.appointments.GetByID(ctx, appointment.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, bob.ID, kept.DoctorID)
}

func TestDeleteGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")

	err := env.users.Delete(ctx, claimsFor(alice), alice.ID)
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	err = env.users.Delete(ctx, adminClaims(), models.BuiltinAdminID)
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	stored, err := env.users.Create(ctx, adminClaims(), AccountInput{
		Name: "Ops", Email: "ops@example.com", WalletAddress: "0xOPS", Password: "secret123", Role: "Admin",
	})
	require.NoError(t, err)
	err = env.users.Delete(ctx, claimsFor(stored), stored.ID)
	assert.True(t, apperror.Is(err, apperror.Forbidden))
	assert.Equal(t, msgCannotDeleteSelf, apperror.Message(err))

	err = env.users.Delete(ctx, adminClaims(), "missing")
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, models.RolePatient, "Alice", "alice@example.com", "0xAAA")
	bob := env.register(t, models.RolePatient, "Bob", "bob@example.com", "0xBBB")

	tests := []struct {
		name    string
		claims  *models.Claims
		id      string
		current string
		next    string
		kind    apperror.Kind
	}{
		{"other user", claimsFor(bob), alice.ID, "secret123", "newsecret", apperror.Forbidden},
		{"admin on other user", adminClaims(), alice.ID, "secret123", "newsecret", apperror.Forbidden},
		{"missing fields", claimsFor(alice), alice.ID, "", "newsecret", apperror.InvalidArgument},
		{"too short", claimsFor(alice), alice.ID, "secret123", "abc", apperror.InvalidArgument},
		{"too long", claimsFor(alice), alice.ID, "secret123", strings.Repeat("n", utils.MaxPasswordLength+1), apperror.InvalidArgument},
		{"wrong current", claimsFor(alice), alice.ID, "wrong", "newsecret", apperror.InvalidCredentials},
		{"unchanged", claimsFor(alice), alice.ID, "secret123", "secret123", apperror.InvalidArgument},
		{"builtin admin", adminClaims(), models.BuiltinAdminID, "admin-secret", "newsecret", apperror.Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.users.ChangePassword(ctx, tt.claims, tt.id, tt.current, tt.next)
			assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
		})
	}

	require.NoError(t, env.users.ChangePassword(ctx, claimsFor(alice), alice.ID, "secret123", "newsecret"))
	_, err := env.auth.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, "alice@example.com", "secret123")
	assert.True(t, apperror.Is(err, apperror.InvalidCredentials))
}
