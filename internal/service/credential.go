package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/irhis/internal/domain"
)

// DefaultCredentialTTL is how long an issued credential stays valid.
const DefaultCredentialTTL = 24 * time.Hour

// Credential is the verified content of a session token.
type Credential struct {
	UserID    string
	ExpiresAt time.Time
}

// CredentialCodec issues and verifies HS256-signed session tokens binding a
// user ID to an expiry instant. Tokens are stateless; expiry is their only
// lifecycle bound.
type CredentialCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCredentialCodec creates a codec signing with secret. A non-positive ttl
// falls back to DefaultCredentialTTL.
func NewCredentialCodec(secret string, ttl time.Duration) *CredentialCodec {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &CredentialCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads the current time from now.
func (c *CredentialCodec) WithClock(now func() time.Time) *CredentialCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs a credential for userID that expires one TTL from now.
func (c *CredentialCodec) Issue(userID string) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign credential: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks the signature, algorithm and expiry of token. Every failure
// is reported as domain.ErrUnauthenticated so callers cannot tell a tampered
// token from an expired one.
func (c *CredentialCodec) Verify(token string) (Credential, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Credential{}, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return Credential{}, domain.ErrUnauthenticated
	}

	return Credential{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
