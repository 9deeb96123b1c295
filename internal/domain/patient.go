package domain

import (
	"context"
	"time"
)

// Exercise is one step of a patient's recovery process.
type Exercise struct {
	ID                string
	Name              string
	Completed         bool
	TargetRepetitions int
	TargetSets        int
	Instructions      string
	AssignedDate      string
	LastModified      string
	VideoURL          string
}

// Details holds the clinical attributes of a patient.
// Height is in meters and Weight in kilograms. BMI is derived from both.
type Details struct {
	Age            int
	Sex            string
	Height         float64
	Weight         float64
	BMI            float64
	ClinicalInfo   string
	MedicalHistory string
	Allergies      []string
}

// DetailsUpdate is a partial update of Details. Nil fields are left unchanged.
type DetailsUpdate struct {
	Age            *int
	Sex            *string
	Height         *float64
	Weight         *float64
	ClinicalInfo   *string
	MedicalHistory *string
	Allergies      *[]string
}

// Empty reports whether the update carries no fields.
func (u DetailsUpdate) Empty() bool {
	return u.Age == nil && u.Sex == nil && u.Height == nil && u.Weight == nil &&
		u.ClinicalInfo == nil && u.MedicalHistory == nil && u.Allergies == nil
}

// Feedback is a self-reported entry about a training session.
type Feedback struct {
	SessionID  string
	Timestamp  string
	Pain       int
	Fatigue    int
	Difficulty int
	Comments   string
}

// Patient is the clinical record owned by a patient-role user. Its ID equals
// the owning user's ID.
type Patient struct {
	ID              string
	Name            string
	RecoveryProcess []Exercise
	Details         Details
	Feedback        []Feedback
	UpdatedAt       time.Time
}

// Clone returns a deep copy so callers never share slices with the store.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	c := *p
	c.RecoveryProcess = append([]Exercise(nil), p.RecoveryProcess...)
	c.Feedback = append([]Feedback(nil), p.Feedback...)
	c.Details.Allergies = append([]string(nil), p.Details.Allergies...)
	return &c
}

// PatientRepository defines persistence operations for patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	// List returns every patient ordered by ID.
	List(ctx context.Context) ([]Patient, error)
	// Update loads the patient, applies fn and stores the result. The whole
	// sequence is atomic with respect to other writers of the same record.
	// Returns ErrNotFound if the patient does not exist; an error from fn
	// aborts the update.
	Update(ctx context.Context, id string, fn func(*Patient) error) (*Patient, error)
}
