package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const queryTimeout = 5 * time.Second

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// Cache is the subset of the Redis cache the repositories use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteBatch(ctx context.Context, keys ...string) error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
