package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"MediChain/apperror"
	"MediChain/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const lockTTL = time.Minute

// Locker serializes writes to one account across server instances.
type Locker interface {
	NewLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// withLock runs fn while holding the Redis lock at key.
func withLock(ctx context.Context, locker Locker, log *slog.Logger, key string, fn func() error) error {
	lockValue := uuid.New().String()
	locked, err := locker.NewLock(ctx, key, lockValue, lockTTL)
	if err != nil {
		return apperror.Wrap(apperror.Unavailable, msgCacheUnavailable, err)
	}
	if !locked {
		return apperror.NewConflict(msgLockBusy)
	}
	defer func() {
		if err := locker.ReleaseLock(ctx, key, lockValue); err != nil {
			log.Warn("failed to release lock", "key", key, "error", err)
		}
	}()
	return fn()
}

// invalidArgument turns an ozzo validation error into a client error.
func invalidArgument(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperror.Wrap(apperror.InvalidArgument, verrs.Error(), err)
	}
	return apperror.Wrap(apperror.InvalidArgument, err.Error(), err)
}

// storeError maps a repository failure to the client taxonomy.
func storeError(msg string, err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperror.Wrap(apperror.Conflict, msgAccountTaken, err)
	}
	return apperror.NewInternal(msg, err)
}
