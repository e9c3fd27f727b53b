package middlewares

import (
	"context"
	"errors"

	"MediChain/apperror"
	"MediChain/models"
	"MediChain/rbac"
	"MediChain/utils"

	"github.com/gin-gonic/gin"
)

// contextKey defines a custom context key type to store the caller in the context.
type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator checks a session token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*utils.TokenClaims, error)
}

// TokenAuthMiddleware validates the bearer token and adds the caller's
// claims to the request context.
func TokenAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HttpError(c, apperror.NewUnauthenticated("Access token required"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			HttpError(c, err)
			c.Abort()
			return
		}

		caller := claims.Claims
		ctx := context.WithValue(c.Request.Context(), claimsKey, &caller)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RoleAuthMiddleware restricts access to callers holding one of roles.
func RoleAuthMiddleware(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ClaimsFromContext(c.Request.Context())
		if err != nil {
			HttpError(c, apperror.NewUnauthenticated("Access token required"))
			c.Abort()
			return
		}
		if err := rbac.Authorize(claims, roles...); err != nil {
			HttpError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFromContext retrieves the authenticated caller from the context.
func ClaimsFromContext(ctx context.Context) (*models.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*models.Claims)
	if !ok || claims == nil {
		return nil, errors.New("claims not found in context")
	}
	return claims, nil
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
