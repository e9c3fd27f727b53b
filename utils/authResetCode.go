package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const ResetCodeExpiry = 15 * time.Minute

// CodeStore is the key/value subset of the cache used for reset codes.
type CodeStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SetResetCode stores the reset code for a given email for 15 minutes.
func SetResetCode(ctx context.Context, store CodeStore, email, code string) error {
	return store.Set(ctx, resetCodeKey(email), code, ResetCodeExpiry)
}

// GetResetCode returns nil when no code is pending for email.
func GetResetCode(ctx context.Context, store CodeStore, email string) (*string, error) {
	code, err := store.Get(ctx, resetCodeKey(email))
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, nil
	}
	return &code, nil
}

func DeleteResetCode(ctx context.Context, store CodeStore, email string) error {
	return store.Delete(ctx, resetCodeKey(email))
}

func resetCodeKey(email string) string {
	return "reset_code:" + email
}
