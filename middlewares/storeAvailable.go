package middlewares

import (
	"context"
	"time"

	"MediChain/apperror"

	"github.com/gin-gonic/gin"
)

const storePingTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreAvailable short-circuits with 503 when the database cannot be reached.
func StoreAvailable(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), storePingTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			HttpError(c, apperror.Wrap(apperror.Unavailable, "Database not connected", err))
			c.Abort()
			return
		}
		c.Next()
	}
}
