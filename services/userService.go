package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"MediChain/apperror"
	"MediChain/ledger"
	"MediChain/models"
	"MediChain/rbac"
	"MediChain/repositories"
	"MediChain/utils"
)

// UpdateUserInput holds the optional fields of PUT /users/:id. A nil field
// is left unchanged.
type UpdateUserInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	WalletAddress *string `json:"walletAddress"`
	Role          *string `json:"role"`
}

func (in UpdateUserInput) hasProfileFields() bool {
	return in.Name != nil || in.Email != nil || in.WalletAddress != nil
}

type UserService interface {
	List(ctx context.Context, claims *models.Claims, role string) ([]models.Account, error)
	ListDoctors(ctx context.Context, claims *models.Claims) ([]models.Account, error)
	Create(ctx context.Context, claims *models.Claims, input AccountInput) (*models.Account, error)
	Update(ctx context.Context, claims *models.Claims, id string, input UpdateUserInput) (*models.Account, error)
	Delete(ctx context.Context, claims *models.Claims, id string) error
	ChangePassword(ctx context.Context, claims *models.Claims, id, currentPassword, newPassword string) error
}

type userService struct {
	directory
	records repositories.RecordRepository
}

func NewUserService(
	accounts repositories.AccountRepository,
	records repositories.RecordRepository,
	locker Locker,
	mirror ledger.Mirror,
	admin AdminIdentity,
	log *slog.Logger,
) UserService {
	return &userService{
		directory: directory{accounts: accounts, locker: locker, mirror: mirror, admin: admin, log: log},
		records:   records,
	}
}

func (s *userService) List(ctx context.Context, claims *models.Claims, role string) ([]models.Account, error) {
	if err := rbac.Authorize(claims, models.RoleAdmin); err != nil {
		return nil, err
	}

	var filter models.Role
	if role != "" {
		parsed, ok := models.ParseRole(role)
		if !ok {
			return nil, apperror.NewInvalidArgument(msgInvalidRole)
		}
		filter = parsed
	}

	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal("failed to list users", err)
	}
	return accounts, nil
}

func (s *userService) ListDoctors(ctx context.Context, claims *models.Claims) ([]models.Account, error) {
	if err := rbac.Authorize(claims, models.RoleAdmin, models.RoleDoctor, models.RolePatient); err != nil {
		return nil, err
	}
	doctors, err := s.accounts.List(ctx, models.RoleDoctor)
	if err != nil {
		return nil, apperror.NewInternal("failed to list doctors", err)
	}
	return doctors, nil
}

// Create lets an administrator add an account of any role.
func (s *userService) Create(ctx context.Context, claims *models.Claims, input AccountInput) (*models.Account, error) {
	if err := rbac.Authorize(claims, models.RoleAdmin); err != nil {
		return nil, err
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		return nil, apperror.NewInvalidArgument(msgInvalidRole)
	}
	return s.createAccount(ctx, input, role)
}

// Update applies a role change, a profile change, or both. Role changes
// are admin-only and never apply to the caller's own account.
func (s *userService) Update(ctx context.Context, claims *models.Claims, id string, input UpdateUserInput) (*models.Account, error) {
	var newRole models.Role
	if input.Role != nil {
		if err := rbac.Authorize(claims, models.RoleAdmin); err != nil {
			return nil, err
		}
		if id == claims.UserID {
			return nil, apperror.NewForbidden(msgCannotChangeOwnRole)
		}
		role, ok := models.ParseRole(*input.Role)
		if !ok {
			return nil, apperror.NewInvalidArgument(msgInvalidRole)
		}
		newRole = role
	}
	if input.hasProfileFields() || input.Role == nil {
		if err := rbac.AuthorizeOwnership(claims, id); err != nil {
			return nil, err
		}
	}
	if id == models.BuiltinAdminID {
		return nil, apperror.NewForbidden(msgBuiltinAdminReadOnly)
	}
	if err := utils.ValidateProfileData(input.Name, input.Email, input.WalletAddress); err != nil {
		return nil, invalidArgument(err)
	}

	lockKey := fmt.Sprintf("user_lock:%s", id)
	err := withLock(ctx, s.locker, s.log, lockKey, func() error {
		current, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return apperror.NewInternal("failed to load user", err)
		}
		if current == nil {
			return apperror.NewNotFound(msgUserNotFound)
		}

		fields := map[string]interface{}{}
		var email, wallet string
		if input.Name != nil {
			fields["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			email = utils.NormalizeEmail(*input.Email)
			fields["email"] = email
		}
		if input.WalletAddress != nil {
			wallet = strings.TrimSpace(*input.WalletAddress)
			fields["wallet_address"] = wallet
		}
		if newRole != "" {
			fields["role"] = newRole
		}
		if len(fields) == 0 {
			return nil
		}

		if err := s.ensureUnique(ctx, email, wallet, id); err != nil {
			return err
		}
		if err := s.accounts.Update(ctx, current, fields); err != nil {
			return storeError("failed to update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal("failed to load user", err)
	}
	if updated == nil {
		return nil, apperror.NewNotFound(msgUserNotFound)
	}
	return updated, nil
}

// Delete removes an account. A patient's records are deleted first so a
// failure leaves the account in place; appointments are kept.
func (s *userService) Delete(ctx context.Context, claims *models.Claims, id string) error {
	if err := rbac.Authorize(claims, models.RoleAdmin); err != nil {
		return err
	}
	if id == claims.UserID {
		return apperror.NewForbidden(msgCannotDeleteSelf)
	}
	if id == models.BuiltinAdminID {
		return apperror.NewForbidden(msgBuiltinAdminReadOnly)
	}

	lockKey := fmt.Sprintf("user_lock:%s", id)
	return withLock(ctx, s.locker, s.log, lockKey, func() error {
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return apperror.NewInternal("failed to load user", err)
		}
		if account == nil {
			return apperror.NewNotFound(msgUserNotFound)
		}

		if account.Role == models.RolePatient {
			removed, err := s.records.DeleteByPatient(ctx, account.WalletAddress)
			if err != nil {
				return apperror.NewInternal("failed to delete patient records", err)
			}
			s.log.Info("patient records deleted", "id", account.ID, "count", removed)
		}

		if err := s.accounts.Delete(ctx, account); err != nil {
			return apperror.NewInternal("failed to delete user", err)
		}
		s.log.Info("account deleted", "id", account.ID, "role", account.Role, "by", claims.UserID)
		return nil
	})
}

func (s *userService) ChangePassword(ctx context.Context, claims *models.Claims, id, currentPassword, newPassword string) error {
	if err := rbac.AuthorizeSelf(claims, id); err != nil {
		return err
	}
	if id == models.BuiltinAdminID {
		return apperror.NewForbidden(msgBuiltinAdminReadOnly)
	}
	if currentPassword == "" || newPassword == "" {
		return apperror.NewInvalidArgument(msgPasswordsRequired)
	}
	if err := utils.ValidateNewPassword(newPassword); err != nil {
		return apperror.Wrap(apperror.InvalidArgument, err.Error(), err)
	}

	lockKey := fmt.Sprintf("user_lock:%s", id)
	return withLock(ctx, s.locker, s.log, lockKey, func() error {
		account, err := s.accounts.GetCredentialsByID(ctx, id)
		if err != nil {
			return apperror.NewInternal("failed to load user", err)
		}
		if account == nil {
			return apperror.NewNotFound(msgUserNotFound)
		}
		if !utils.CheckPassword(account.PasswordHash, currentPassword) {
			return apperror.New(apperror.InvalidCredentials, msgCurrentPasswordWrong)
		}
		if currentPassword == newPassword {
			return apperror.NewInvalidArgument(msgPasswordUnchanged)
		}

		hashedPassword, err := utils.HashPassword(newPassword)
		if err != nil {
			return apperror.NewInternal("failed to hash password", err)
		}
		if err := s.accounts.UpdatePassword(ctx, account, hashedPassword); err != nil {
			return apperror.NewInternal("failed to update password", err)
		}
		return nil
	})
}
