package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/irhis/internal/domain"
	"github.com/msomdec/irhis/internal/service"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestCredentialCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := service.NewCredentialCodec(testJWTSecret, 0)
	token, expiresAt, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cred, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if cred.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q", cred.UserID)
	}
	if !cred.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", cred.ExpiresAt, expiresAt)
	}
	if d := time.Until(expiresAt); d < 23*time.Hour || d > 24*time.Hour {
		t.Fatalf("expected default TTL of 24h, got %v", d)
	}
}

func TestCredentialCodec_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	codec := service.NewCredentialCodec(testJWTSecret, 24*time.Hour).WithClock(fixedClock(&now))

	token, expiresAt, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.Equal(issuedAt.Add(24 * time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", issuedAt.Add(24*time.Hour), expiresAt)
	}

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"at issue", issuedAt, true},
		{"one second before expiry", expiresAt.Add(-time.Second), true},
		{"at expiry", expiresAt, false},
		{"after expiry", expiresAt.Add(time.Hour), false},
	}
	for _, tc := range tests {
		now = tc.at
		_, err := codec.Verify(token)
		if tc.valid && err != nil {
			t.Fatalf("%s: expected valid, got %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", tc.name, err)
		}
	}
}

func TestCredentialCodec_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := service.NewCredentialCodec("right-secret", time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = service.NewCredentialCodec("wrong-secret", time.Hour).Verify(token)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCredentialCodec_RejectsMalformed(t *testing.T) {
	t.Parallel()

	codec := service.NewCredentialCodec(testJWTSecret, time.Hour)
	for _, token := range []string{"", "abc", "a.b.c", strings.Repeat("x", 200)} {
		if _, err := codec.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestCredentialCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{
		Subject:   "u3",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}

	codec := service.NewCredentialCodec(testJWTSecret, time.Hour)
	for name, token := range map[string]string{"none": unsigned, "HS512": hs512} {
		if _, err := codec.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestCredentialCodec_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u4"}).
		SignedString([]byte(testJWTSecret))
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testJWTSecret))

	codec := service.NewCredentialCodec(testJWTSecret, time.Hour)
	for name, token := range map[string]string{"no exp": noExp, "no sub": noSub} {
		if _, err := codec.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}
