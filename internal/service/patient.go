package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/irhis/internal/domain"
)

// PatientService reads and edits patient records. Callers are expected to
// have passed the authorization policy already; every method reports
// domain.ErrNotFound for a missing patient.
type PatientService struct {
	patients domain.PatientRepository
	now      func() time.Time
}

// NewPatientService creates a new PatientService.
func NewPatientService(patients domain.PatientRepository) *PatientService {
	return &PatientService{patients: patients, now: time.Now}
}

// Get returns the patient record with the given ID.
func (s *PatientService) Get(ctx context.Context, id string) (*domain.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// UpdateRecoveryProcess replaces the patient's ordered exercise list.
// Exercises without an ID are given one.
func (s *PatientService) UpdateRecoveryProcess(ctx context.Context, id string, exercises []domain.Exercise) (*domain.Patient, error) {
	process := make([]domain.Exercise, len(exercises))
	for i, e := range exercises {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		process[i] = e
	}

	return s.update(ctx, id, func(p *domain.Patient) error {
		p.RecoveryProcess = process
		return nil
	})
}

// UpdateDetails merges a partial update into the patient's clinical details.
func (s *PatientService) UpdateDetails(ctx context.Context, id string, update domain.DetailsUpdate) (*domain.Patient, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: no details provided", domain.ErrInvalidInput)
	}
	if err := validateDetails(update); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(p *domain.Patient) error {
		p.Details = MergeDetails(p.Details, update)
		return nil
	})
}

// SubmitFeedback appends entries to the patient's feedback log in order.
// Missing session IDs and timestamps are filled in.
func (s *PatientService) SubmitFeedback(ctx context.Context, id string, entries []domain.Feedback) (*domain.Patient, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: feedback is required", domain.ErrInvalidInput)
	}

	now := s.now().UTC().Format(time.RFC3339)
	stamped := make([]domain.Feedback, len(entries))
	for i, f := range entries {
		if f.SessionID == "" {
			f.SessionID = uuid.NewString()
		}
		if f.Timestamp == "" {
			f.Timestamp = now
		}
		stamped[i] = f
	}

	p, err := s.update(ctx, id, func(p *domain.Patient) error {
		p.Feedback = append(p.Feedback, stamped...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "feedback submitted", "patient_id", id, "entries", len(stamped))
	return p, nil
}

func (s *PatientService) update(ctx context.Context, id string, fn func(*domain.Patient) error) (*domain.Patient, error) {
	p, err := s.patients.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

// Accepted measurement ranges. Zero clears a measurement.
const (
	minHeightM  = 0.3
	maxHeightM  = 3.0
	minWeightKg = 1.0
	maxWeightKg = 700.0
	maxAge      = 150
)

func validateDetails(u domain.DetailsUpdate) error {
	if u.Height != nil && !inRangeOrZero(*u.Height, minHeightM, maxHeightM) {
		return fmt.Errorf("%w: height must be between %.1f and %.1f meters", domain.ErrInvalidInput, minHeightM, maxHeightM)
	}
	if u.Weight != nil && !inRangeOrZero(*u.Weight, minWeightKg, maxWeightKg) {
		return fmt.Errorf("%w: weight must be between %.0f and %.0f kg", domain.ErrInvalidInput, minWeightKg, maxWeightKg)
	}
	if u.Age != nil && (*u.Age < 0 || *u.Age > maxAge) {
		return fmt.Errorf("%w: age must be between 0 and %d", domain.ErrInvalidInput, maxAge)
	}
	return nil
}

func inRangeOrZero(v, lo, hi float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v == 0 || (v >= lo && v <= hi)
}

// MergeDetails applies update on top of current. BMI is recomputed only when
// the update carries height or weight and both resulting values are positive;
// otherwise the previous BMI is kept.
func MergeDetails(current domain.Details, update domain.DetailsUpdate) domain.Details {
	merged := current
	if update.Age != nil {
		merged.Age = *update.Age
	}
	if update.Sex != nil {
		merged.Sex = *update.Sex
	}
	if update.Height != nil {
		merged.Height = *update.Height
	}
	if update.Weight != nil {
		merged.Weight = *update.Weight
	}
	if update.ClinicalInfo != nil {
		merged.ClinicalInfo = *update.ClinicalInfo
	}
	if update.MedicalHistory != nil {
		merged.MedicalHistory = *update.MedicalHistory
	}
	if update.Allergies != nil {
		merged.Allergies = append([]string(nil), (*update.Allergies)...)
	}

	if (update.Height != nil || update.Weight != nil) && merged.Height > 0 && merged.Weight > 0 {
		if bmi := BMI(merged.Weight, merged.Height); !math.IsNaN(bmi) && !math.IsInf(bmi, 0) {
			merged.BMI = bmi
		}
	}
	return merged
}

// BMI computes weight / height² rounded to two decimals. Height is in meters.
func BMI(weightKg, heightM float64) float64 {
	return math.Round(weightKg/(heightM*heightM)*100) / 100
}
