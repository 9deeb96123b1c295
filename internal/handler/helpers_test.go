package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/irhis/internal/config"
	"github.com/msomdec/irhis/internal/domain"
	"github.com/msomdec/irhis/internal/handler"
	"github.com/msomdec/irhis/internal/repository/memory"
	"github.com/msomdec/irhis/internal/repository/sqlite"
	"github.com/msomdec/irhis/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testPassword  = "password123"
)

type testEnv struct {
	srv   *httptest.Server
	auth  *service.AuthService
	store domain.Store
}

var storeDrivers = []string{config.StoreMemory, config.StoreSQLite}

func newTestStore(t *testing.T, driver string) domain.Store {
	t.Helper()
	var store domain.Store
	switch driver {
	case config.StoreMemory:
		store = memory.New()
	case config.StoreSQLite:
		db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("New DB: %v", err)
		}
		store = db
	default:
		t.Fatalf("unknown store driver %q", driver)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAuthService(store domain.Store) *service.AuthService {
	hasher := service.NewPasswordHasher(service.PasswordBcrypt, 4, service.DefaultArgon2Params)
	codec := service.NewCredentialCodec(testJWTSecret, 24*time.Hour)
	return service.NewAuthService(store.Users(), store.Patients(), hasher, codec)
}

func newTestServices(t *testing.T) (*service.AuthService, domain.Store) {
	t.Helper()
	store := newTestStore(t, config.StoreSQLite)
	return newTestAuthService(store), store
}

func newTestEnvOn(t *testing.T, driver string, limiter service.RateLimiter) *testEnv {
	t.Helper()
	store := newTestStore(t, driver)
	auth := newTestAuthService(store)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		auth,
		service.NewPatientService(store.Patients()),
		service.NewAssignmentService(store.Assignments(), store.Patients()),
		limiter,
	)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, auth: auth, store: store}
}

func newTestEnvWithLimiter(t *testing.T, limiter service.RateLimiter) *testEnv {
	t.Helper()
	return newTestEnvOn(t, config.StoreMemory, limiter)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, config.StoreMemory, service.NewTokenBucket(1000, 1000))
}

// runOnStores runs fn once per store driver, each against a fresh server.
func runOnStores(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	t.Helper()
	for _, driver := range storeDrivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, newTestEnvOn(t, driver, service.NewTokenBucket(1000, 1000)))
		})
	}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type sessionBody struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type patientBody struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	RecoveryProcess []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Completed bool   `json:"completed"`
	} `json:"recovery_process"`
	Details struct {
		Height       float64 `json:"height"`
		Weight       float64 `json:"weight"`
		BMI          float64 `json:"bmi"`
		ClinicalInfo string  `json:"clinicalInfo"`
	} `json:"details"`
	Feedback []struct {
		SessionID string `json:"sessionId"`
		Timestamp string `json:"timestamp"`
		Pain      int    `json:"pain"`
		Comments  string `json:"comments"`
	} `json:"feedback"`
}

// signup registers a user over HTTP and returns the session.
func (e *testEnv) signup(t *testing.T, email, role, name string) sessionBody {
	t.Helper()
	var s sessionBody
	status := e.do(t, http.MethodPost, "/signup", "", map[string]string{
		"email":    email,
		"password": testPassword,
		"role":     role,
		"name":     name,
	}, &s)
	if status != http.StatusOK {
		t.Fatalf("signup %s: expected 200, got %d", email, status)
	}
	return s
}
