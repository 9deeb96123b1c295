package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/irhis/internal/domain"
)

// AssignmentService maintains the doctor -> patient relation and the
// unassigned-patient view.
type AssignmentService struct {
	assignments domain.AssignmentRepository
	patients    domain.PatientRepository
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignments domain.AssignmentRepository, patients domain.PatientRepository) *AssignmentService {
	return &AssignmentService{assignments: assignments, patients: patients}
}

// Assign adds patientID to the doctor's set. Assigning an already assigned
// patient succeeds without changes.
func (s *AssignmentService) Assign(ctx context.Context, doctorID, patientID string) error {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("get patient: %w", err)
	}

	added, err := s.assignments.Add(ctx, doctorID, patientID)
	if err != nil {
		return fmt.Errorf("add assignment: %w", err)
	}
	if added {
		slog.InfoContext(ctx, "patient assigned", "doctor_id", doctorID, "patient_id", patientID)
	}
	return nil
}

// PatientsForDoctor returns the patient records in the doctor's set, ordered
// by ID. Assignments whose patient record has disappeared are skipped.
func (s *AssignmentService) PatientsForDoctor(ctx context.Context, doctorID string) ([]domain.Patient, error) {
	ids, err := s.assignments.ListPatientIDs(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	patients := make([]domain.Patient, 0, len(ids))
	for _, id := range ids {
		p, err := s.patients.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get patient %s: %w", id, err)
		}
		patients = append(patients, *p)
	}
	return patients, nil
}

// Unassigned returns every patient that is in no doctor's set. It is
// recomputed from the full patient list on each call.
func (s *AssignmentService) Unassigned(ctx context.Context) ([]domain.Patient, error) {
	// TODO: push the set difference into the store (NOT EXISTS on doctor_patients)
	// once the patient population no longer fits a full scan.
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	assigned, err := s.assignments.AssignedPatientIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assigned patients: %w", err)
	}

	unassigned := make([]domain.Patient, 0, len(all))
	for _, p := range all {
		if _, ok := assigned[p.ID]; !ok {
			unassigned = append(unassigned, p)
		}
	}
	return unassigned, nil
}
