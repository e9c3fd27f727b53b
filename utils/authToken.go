package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"MediChain/apperror"
	"MediChain/models"

	"github.com/o1egl/paseto"
)

const (
	// AccessTokenExpiry is the default session lifetime.
	AccessTokenExpiry = time.Hour
)

// TokenClaims is the PASETO payload: the caller identity plus its expiry.
type TokenClaims struct {
	models.Claims
	Expiry time.Time `json:"expiry"`
}

// TokenMaker issues and validates v2.local session tokens with a shared key.
type TokenMaker struct {
	symmetricKey []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenMaker ensures the key has the correct length (32 bytes).
func NewTokenMaker(symmetricKey string, ttl time.Duration) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}
	if ttl <= 0 {
		ttl = AccessTokenExpiry
	}
	return &TokenMaker{symmetricKey: []byte(symmetricKey), ttl: ttl, now: time.Now}, nil
}

// IssueToken generates a token embedding the caller identity, role and wallet.
func (m *TokenMaker) IssueToken(claims models.Claims) (string, error) {
	payload := TokenClaims{
		Claims: claims,
		Expiry: m.now().Add(m.ttl),
	}
	token, err := paseto.NewV2().Encrypt(m.symmetricKey, payload, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken decrypts the token and checks its expiry.
func (m *TokenMaker) ValidateToken(token string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(token, m.symmetricKey, &claims, nil); err != nil {
		return nil, apperror.Wrap(apperror.Unauthenticated, "Invalid token", err)
	}
	if !m.now().Before(claims.Expiry) {
		return nil, apperror.NewUnauthenticated("Token expired")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, apperror.NewUnauthenticated("Invalid token")
	}
	return &claims, nil
}

// ErrMissingBearer is returned when the Authorization header carries no bearer token.
var ErrMissingBearer = errors.New("missing bearer token")

// ExtractBearerToken pulls the token out of an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
