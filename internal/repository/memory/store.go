// Package memory implements the resource store in process memory. State is
// lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/irhis/internal/domain"
)

// Store holds users, patients and doctor assignments behind a single
// RWMutex for the maps, plus one mutex per patient record so concurrent
// read-modify-write sequences on the same patient are serialized.
type Store struct {
	mu sync.RWMutex

	users       map[string]domain.User
	emails      map[string]string
	patients    map[string]*patientEntry
	assignments map[string]map[string]struct{}
}

type patientEntry struct {
	mu      sync.Mutex
	patient domain.Patient
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		emails:      make(map[string]string),
		patients:    make(map[string]*patientEntry),
		assignments: make(map[string]map[string]struct{}),
	}
}

// Migrate is a no-op; the in-memory store has no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) Users() domain.UserRepository             { return (*userRepository)(s) }
func (s *Store) Patients() domain.PatientRepository       { return (*patientRepository)(s) }
func (s *Store) Assignments() domain.AssignmentRepository { return (*assignmentRepository)(s) }

type userRepository Store

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.emails[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := r.users[id]; ok {
		return domain.ErrDuplicateID
	}
	user.ID = id
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[id] = *user
	r.emails[user.Email] = id
	return nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	delete(r.emails, user.Email)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

type patientRepository Store

func (r *patientRepository) Create(_ context.Context, patient *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[patient.ID]; ok {
		return fmt.Errorf("%w: patient %s already exists", domain.ErrInvalidInput, patient.ID)
	}
	patient.UpdatedAt = time.Now().UTC()
	r.patients[patient.ID] = &patientEntry{patient: *patient.Clone()}
	return nil
}

func (r *patientRepository) entry(id string) (*patientEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.patients[id]
	return e, ok
}

func (r *patientRepository) GetByID(_ context.Context, id string) (*domain.Patient, error) {
	e, ok := r.entry(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patient.Clone(), nil
}

func (r *patientRepository) List(_ context.Context) ([]domain.Patient, error) {
	r.mu.RLock()
	entries := make([]*patientEntry, 0, len(r.patients))
	for _, e := range r.patients {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	patients := make([]domain.Patient, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		patients = append(patients, *e.patient.Clone())
		e.mu.Unlock()
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	return patients, nil
}

func (r *patientRepository) Update(_ context.Context, id string, fn func(*domain.Patient) error) (*domain.Patient, error) {
	e, ok := r.entry(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.patient.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = time.Now().UTC()
	e.patient = *working
	return working.Clone(), nil
}

type assignmentRepository Store

func (r *assignmentRepository) Add(_ context.Context, doctorID, patientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.assignments[doctorID]
	if !ok {
		set = make(map[string]struct{})
		r.assignments[doctorID] = set
	}
	if _, exists := set[patientID]; exists {
		return false, nil
	}
	set[patientID] = struct{}{}
	return true, nil
}

func (r *assignmentRepository) ListPatientIDs(_ context.Context, doctorID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.assignments[doctorID]))
	for id := range r.assignments[doctorID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *assignmentRepository) AssignedPatientIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assigned := make(map[string]struct{})
	for _, set := range r.assignments {
		for id := range set {
			assigned[id] = struct{}{}
		}
	}
	return assigned, nil
}
