package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/irhis/internal/domain"
)

type demoUser struct {
	user     domain.User
	patient  *domain.Patient
	assigned []string
}

var demoUsers = []demoUser{
	{
		user: domain.User{ID: "1", Email: "patient@test.com", Name: "John Doe", Role: domain.RolePatient},
		patient: &domain.Patient{
			ID:   "1",
			Name: "John Doe",
			RecoveryProcess: []domain.Exercise{
				{ID: "rp1", Name: "Knee Bends", Completed: false},
				{ID: "rp2", Name: "Leg Raises", Completed: true},
			},
		},
	},
	{
		user:     domain.User{ID: "2", Email: "doctor@test.com", Name: "Dr. Smith", Role: domain.RoleDoctor},
		assigned: []string{"1"},
	},
}

// SeedDemo inserts the demo patient and doctor with the given password. It is
// idempotent: users whose email already exists are skipped, and an assignment
// is only added when its patient record exists.
func SeedDemo(ctx context.Context, store domain.Store, hasher *PasswordHasher, password string) error {
	for _, d := range demoUsers {
		_, err := store.Users().GetByEmail(ctx, d.user.Email)
		if err == nil {
			continue // already exists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check demo user %s: %w", d.user.Email, err)
		}

		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash demo password: %w", err)
		}
		u := d.user
		u.PasswordHash = hash
		if err := store.Users().Create(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if d.patient != nil {
			if err := store.Patients().Create(ctx, d.patient.Clone()); err != nil {
				return fmt.Errorf("seed patient %s: %w", d.patient.ID, err)
			}
		}
		for _, patientID := range d.assigned {
			if _, err := store.Patients().GetByID(ctx, patientID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					slog.WarnContext(ctx, "demo patient missing, skipping assignment", "doctor_id", u.ID, "patient_id", patientID)
					continue
				}
				return fmt.Errorf("check demo patient %s: %w", patientID, err)
			}
			if _, err := store.Assignments().Add(ctx, u.ID, patientID); err != nil {
				return fmt.Errorf("seed assignment %s->%s: %w", u.ID, patientID, err)
			}
		}
	}
	return nil
}
