package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// AssignmentRepository implements domain.AssignmentRepository using SQLite.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new SQLite-backed AssignmentRepository.
func NewAssignmentRepository(db *DB) *AssignmentRepository {
	return &AssignmentRepository{db: db.SqlDB}
}

func (r *AssignmentRepository) Add(ctx context.Context, doctorID, patientID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO doctor_patients (doctor_id, patient_id) VALUES (?, ?)`,
		doctorID, patientID,
	)
	if err != nil {
		return false, fmt.Errorf("insert assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *AssignmentRepository) ListPatientIDs(ctx context.Context, doctorID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT patient_id FROM doctor_patients WHERE doctor_id = ? ORDER BY patient_id`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AssignmentRepository) AssignedPatientIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT patient_id FROM doctor_patients`)
	if err != nil {
		return nil, fmt.Errorf("query assigned patients: %w", err)
	}
	defer rows.Close()

	assigned := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assigned patient: %w", err)
		}
		assigned[id] = struct{}{}
	}
	return assigned, rows.Err()
}
