package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"MediChain/apperror"
	"MediChain/ledger"
	"MediChain/models"
	"MediChain/repositories"
	"MediChain/utils"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	IssueToken(claims models.Claims) (string, error)
}

// ResetMailer delivers password reset codes.
type ResetMailer interface {
	SendResetCodeEmail(email, code string) error
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string          `json:"token"`
	User  *models.Account `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input AccountInput, role models.Role) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type authService struct {
	directory
	tokens TokenIssuer
	codes  utils.CodeStore
	mailer ResetMailer
}

func NewAuthService(
	accounts repositories.AccountRepository,
	locker Locker,
	codes utils.CodeStore,
	tokens TokenIssuer,
	mailer ResetMailer,
	mirror ledger.Mirror,
	admin AdminIdentity,
	log *slog.Logger,
) AuthService {
	return &authService{
		directory: directory{accounts: accounts, locker: locker, mirror: mirror, admin: admin, log: log},
		tokens:    tokens,
		codes:     codes,
		mailer:    mailer,
	}
}

// Login checks the built-in administrator first, then the directory. Both
// failure modes return the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperror.NewInvalidArgument("Email and password are required")
	}

	if s.admin.configured() && email == s.admin.Email {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) != 1 {
			return nil, apperror.NewInvalidCredentials()
		}
		return s.issue(s.admin.account())
	}

	account, err := s.accounts.GetCredentialsByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.Wrap(apperror.Unavailable, msgDatabaseUnavailable, err)
	}
	if account == nil || !utils.CheckPassword(account.PasswordHash, password) {
		return nil, apperror.NewInvalidCredentials()
	}
	return s.issue(account)
}

// Register self-registers a Doctor or Patient.
func (s *authService) Register(ctx context.Context, input AccountInput, role models.Role) (*AuthResult, error) {
	if role != models.RoleDoctor && role != models.RolePatient {
		return nil, apperror.NewForbidden("Self-registration is only available for patients and doctors")
	}
	account, err := s.createAccount(ctx, input, role)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

// RequestPasswordReset never reveals whether the email exists.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return apperror.NewInvalidArgument("Email is required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NewInternal("failed to load account", err)
	}
	if account == nil {
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return apperror.NewInternal("failed to generate reset code", err)
	}
	if err := utils.SetResetCode(ctx, s.codes, email, code); err != nil {
		return apperror.Wrap(apperror.Unavailable, msgCacheUnavailable, err)
	}
	if err := s.mailer.SendResetCodeEmail(email, code); err != nil {
		return apperror.NewInternal("failed to send reset code email", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidatePasswordReset(code, newPassword); err != nil {
		return invalidArgument(err)
	}

	stored, err := utils.GetResetCode(ctx, s.codes, email)
	if err != nil {
		return apperror.Wrap(apperror.Unavailable, msgCacheUnavailable, err)
	}
	if stored == nil || subtle.ConstantTimeCompare([]byte(*stored), []byte(code)) != 1 {
		return apperror.New(apperror.InvalidCredentials, msgInvalidResetCode)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NewInternal("failed to load account", err)
	}
	if account == nil {
		return apperror.NewNotFound(msgUserNotFound)
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperror.NewInternal("failed to hash password", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account, hashedPassword); err != nil {
		return apperror.NewInternal("failed to update password", err)
	}
	if err := utils.DeleteResetCode(ctx, s.codes, email); err != nil {
		s.log.Warn("failed to delete reset code", "error", err)
	}
	return nil
}

func (s *authService) issue(account *models.Account) (*AuthResult, error) {
	token, err := s.tokens.IssueToken(models.Claims{
		UserID:        account.ID,
		Email:         account.Email,
		Role:          account.Role,
		WalletAddress: account.WalletAddress,
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	return &AuthResult{Token: token, User: account}, nil
}
