package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"MediChain/apperror"
	"MediChain/ledger"
	"MediChain/models"
	"MediChain/repositories"
	"MediChain/utils"
)

// AdminIdentity is the configured administrator that never touches the
// accounts table.
type AdminIdentity struct {
	Name          string
	Email         string
	Password      string
	WalletAddress string
}

func (a AdminIdentity) configured() bool {
	return a.Email != "" && a.Password != ""
}

func (a AdminIdentity) account() *models.Account {
	return &models.Account{
		ID:            models.BuiltinAdminID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          models.RoleAdmin,
		WalletAddress: a.WalletAddress,
	}
}

// AccountInput carries the fields of a new account.
type AccountInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	Password      string `json:"password"`
	Role          string `json:"role,omitempty"`
}

// directory holds the account-creation path shared by self-registration
// and admin-created users.
type directory struct {
	accounts repositories.AccountRepository
	locker   Locker
	mirror   ledger.Mirror
	admin    AdminIdentity
	log      *slog.Logger
}

func (d *directory) createAccount(ctx context.Context, input AccountInput, role models.Role) (*models.Account, error) {
	input.Email = utils.NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.WalletAddress = strings.TrimSpace(input.WalletAddress)

	if err := utils.ValidateAccountData(input.Name, input.Email, input.WalletAddress, input.Password); err != nil {
		return nil, invalidArgument(err)
	}
	if !role.Valid() {
		return nil, apperror.NewInvalidArgument(msgInvalidRole)
	}

	var account *models.Account
	lockKey := fmt.Sprintf("user_lock:%s", input.Email)
	err := withLock(ctx, d.locker, d.log, lockKey, func() error {
		if err := d.ensureUnique(ctx, input.Email, input.WalletAddress, ""); err != nil {
			return err
		}

		hashedPassword, err := utils.HashPassword(input.Password)
		if err != nil {
			return apperror.NewInternal("failed to hash password", err)
		}

		account = &models.Account{
			Name:          input.Name,
			Email:         input.Email,
			PasswordHash:  hashedPassword,
			Role:          role,
			WalletAddress: input.WalletAddress,
		}
		if err := d.accounts.Create(ctx, account); err != nil {
			return storeError("failed to create account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.mirrorAccount(account)
	d.log.Info("account created", "id", account.ID, "role", account.Role)
	return account, nil
}

// ensureUnique rejects an email or wallet already used by another account,
// the built-in administrator included.
func (d *directory) ensureUnique(ctx context.Context, email, walletAddress, excludeID string) error {
	if email != "" {
		if d.admin.Email != "" && strings.EqualFold(email, d.admin.Email) {
			return apperror.NewConflict(msgEmailTaken)
		}
		taken, err := d.accounts.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return apperror.NewInternal("failed to check email", err)
		}
		if taken {
			return apperror.NewConflict(msgEmailTaken)
		}
	}
	if walletAddress != "" {
		if d.admin.WalletAddress != "" && walletAddress == d.admin.WalletAddress {
			return apperror.NewConflict(msgWalletTaken)
		}
		taken, err := d.accounts.WalletTaken(ctx, walletAddress, excludeID)
		if err != nil {
			return apperror.NewInternal("failed to check wallet address", err)
		}
		if taken {
			return apperror.NewConflict(msgWalletTaken)
		}
	}
	return nil
}

func (d *directory) mirrorAccount(account *models.Account) {
	switch account.Role {
	case models.RolePatient:
		d.mirror.AddPatient(account.WalletAddress, account.Name)
	case models.RoleDoctor:
		d.mirror.AddDoctor(account.WalletAddress, account.Name)
	case models.RoleAdmin:
	}
}
