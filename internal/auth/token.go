package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const Issuer = "dev-connector"

var (
	ErrTokenRevoked = errors.New("token revoked")
	// ErrRevocationUnavailable means the revocation list could not be read,
	// so the token could be neither accepted nor rejected.
	ErrRevocationUnavailable = errors.New("revocation list unavailable")
)

// Revoker persists logged-out token ids.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Tokens issues and verifies HS256 bearer tokens signed with a shared secret.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	revoked Revoker
}

// NewTokens returns a token service. revoked may be nil, in which case
// logout is a no-op and every well-signed unexpired token is accepted.
func NewTokens(secret string, ttl time.Duration, revoked Revoker) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, revoked: revoked}
}

// Issue signs a token whose subject is userID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, expiry and revocation, and returns the
// claims of a usable token.
func (t *Tokens) Verify(ctx context.Context, raw string) (*jwt.RegisteredClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if t.revoked != nil && claims.ID != "" {
		revoked, err := t.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRevocationUnavailable, err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke blocks the token described by claims for the rest of its lifetime.
func (t *Tokens) Revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if t.revoked == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return t.revoked.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
