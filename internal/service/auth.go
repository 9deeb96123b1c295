package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/irhis/internal/domain"
)

// Session is the result of a successful signup or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Email    string
	Password string
	Role     string
	Name     string
}

// AuthService handles signup, login and resolving the caller identity from a
// bearer credential.
type AuthService struct {
	users    domain.UserRepository
	patients domain.PatientRepository
	hasher   *PasswordHasher
	codec    *CredentialCodec

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, patients domain.PatientRepository, hasher *PasswordHasher, codec *CredentialCodec) *AuthService {
	return &AuthService{
		users:    users,
		patients: patients,
		hasher:   hasher,
		codec:    codec,
	}
}

// Signup registers a user and issues a credential. Patient-role users also
// get an empty patient record.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || in.Role == "" || name == "" {
		return nil, fmt.Errorf("%w: email, password, role, and name are required", domain.ErrInvalidInput)
	}
	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be patient or doctor", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if role == domain.RolePatient {
		if err := s.patients.Create(ctx, &domain.Patient{ID: user.ID, Name: user.Name}); err != nil {
			// Without a patient record the account is unusable, so drop it.
			if derr := s.users.Delete(ctx, user.ID); derr != nil {
				slog.ErrorContext(ctx, "remove user after failed patient create", "user_id", user.ID, "error", derr)
			}
			return nil, fmt.Errorf("create patient record: %w", err)
		}
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.ID, "role", user.Role)
	return s.newSession(user)
}

// Login verifies the email, password and requested role and issues a
// credential. Unknown emails, wrong passwords and role mismatches all yield
// domain.ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" || role == "" {
		return nil, fmt.Errorf("%w: email, password, and role are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Spend the same hashing time as a real check.
			s.hasher.Verify(password, s.dummyHash())
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrUnauthenticated
	}
	if string(user.Role) != role {
		return nil, domain.ErrUnauthenticated
	}

	return s.newSession(user)
}

// Authenticate resolves the caller identity from a raw Authorization header
// value of the form "Bearer <token>". Any missing, malformed, expired or
// orphaned credential yields domain.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (*domain.User, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	cred, err := s.codec.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, cred.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(ctx, "load credential user", "error", err)
		}
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) newSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("irhis-dummy-password")
	})
	return s.dummyDigest
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
