package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	PasswordArgon2id = "argon2id"
	PasswordBcrypt   = "bcrypt"
)

// Argon2Params tunes the argon2id key derivation.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Params matches the OWASP baseline for argon2id.
var DefaultArgon2Params = Argon2Params{Time: 3, Memory: 64 * 1024, Threads: 2, KeyLen: 32, SaltLen: 16}

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies digests of either supported format.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2Params
}

// NewPasswordHasher creates a PasswordHasher. Unknown algorithms fall back to argon2id.
func NewPasswordHasher(algorithm string, bcryptCost int, argon Argon2Params) *PasswordHasher {
	if algorithm != PasswordBcrypt {
		algorithm = PasswordArgon2id
	}
	return &PasswordHasher{algorithm: algorithm, bcryptCost: bcryptCost, argon: argon}
}

// Hash returns a salted digest of plaintext. The salt and cost parameters are
// embedded in the digest.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if h.algorithm == PasswordBcrypt {
		digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}
		return string(digest), nil
	}

	salt := make([]byte, h.argon.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.argon.Time, h.argon.Memory, h.argon.Threads, h.argon.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.argon.Memory, h.argon.Time, h.argon.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never match.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if strings.HasPrefix(digest, "$argon2id$") {
		return verifyArgon2id(plaintext, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// verifyArgon2id parses "$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>".
func verifyArgon2id(plaintext, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
