package domain

import "context"

// AssignmentRepository stores the many-to-many doctor -> patient relation.
// A patient may be assigned to any number of doctors.
type AssignmentRepository interface {
	// Add inserts patientID into the doctor's set. It reports whether the
	// membership was newly created; adding an existing pair is a no-op.
	Add(ctx context.Context, doctorID, patientID string) (bool, error)
	ListPatientIDs(ctx context.Context, doctorID string) ([]string, error)
	// AssignedPatientIDs returns the union of every doctor's set.
	AssignedPatientIDs(ctx context.Context) (map[string]struct{}, error)
}
