package utils

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is the most bcrypt will hash, in bytes.
	MaxPasswordLength = 72
)

// Validation errors
var (
	ErrPasswordTooShort = errors.New("New password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes long")
	ErrInvalidResetCode = errors.New("invalid reset code")
)

// ValidateAccountData checks the fields every new account must carry.
func ValidateAccountData(name, email, walletAddress, password string) error {
	return validation.Errors{
		"name":          validation.Validate(strings.TrimSpace(name), validation.Required, validation.Length(1, 100)),
		"email":         validation.Validate(email, validation.Required, is.EmailFormat),
		"walletAddress": validation.Validate(strings.TrimSpace(walletAddress), validation.Required, validation.Length(1, 255)),
		"password":      validation.Validate(password, validation.Required, validation.Length(1, MaxPasswordLength).Error(ErrPasswordTooLong.Error())),
	}.Filter()
}

// ValidateProfileData checks the optional fields of a profile update.
func ValidateProfileData(name, email, walletAddress *string) error {
	errs := validation.Errors{}
	if name != nil {
		errs["name"] = validation.Validate(strings.TrimSpace(*name), validation.Required, validation.Length(1, 100))
	}
	if email != nil {
		errs["email"] = validation.Validate(*email, validation.Required, is.EmailFormat)
	}
	if walletAddress != nil {
		errs["walletAddress"] = validation.Validate(strings.TrimSpace(*walletAddress), validation.Required, validation.Length(1, 255))
	}
	return errs.Filter()
}

// ValidateNewPassword checks the length rule for a replacement password.
func ValidateNewPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	return validation.Errors{
		"code":        validation.Validate(resetCode, validation.Required.Error(ErrInvalidResetCode.Error())),
		"newPassword": validation.Validate(newPassword, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
	}.Filter()
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
