package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/irhis/internal/repository/memory"
	"github.com/msomdec/irhis/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

// Cheap parameters so hashing does not dominate test time.
var testArgon2Params = service.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTestHasher() *service.PasswordHasher {
	return service.NewPasswordHasher(service.PasswordArgon2id, 4, testArgon2Params)
}

func newTestAuthService(t *testing.T) (*service.AuthService, *memory.Store) {
	t.Helper()
	store := memory.New()
	codec := service.NewCredentialCodec(testJWTSecret, 24*time.Hour)
	auth := service.NewAuthService(store.Users(), store.Patients(), newTestHasher(), codec)
	return auth, store
}
