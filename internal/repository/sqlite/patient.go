package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/irhis/internal/domain"
)

// PatientRepository implements domain.PatientRepository using SQLite.
// The recovery process, details and feedback log are stored as JSON columns.
type PatientRepository struct {
	db *sql.DB
}

// NewPatientRepository creates a new SQLite-backed PatientRepository.
func NewPatientRepository(db *DB) *PatientRepository {
	return &PatientRepository{db: db.SqlDB}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	process, details, feedback, err := encodePatient(patient)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, recovery_process, details, feedback, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		patient.ID, patient.Name, process, details, feedback, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: patient %s already exists", domain.ErrInvalidInput, patient.ID)
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	patient.UpdatedAt = now
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return getPatient(ctx, r.db, id)
}

func (r *PatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, recovery_process, details, feedback, updated_at
		 FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var patients []domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) Update(ctx context.Context, id string, fn func(*domain.Patient) error) (*domain.Patient, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	patient, err := getPatient(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(patient); err != nil {
		return nil, err
	}
	patient.ID = id

	process, details, feedback, err := encodePatient(patient)
	if err != nil {
		return nil, err
	}
	patient.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE patients SET name = ?, recovery_process = ?, details = ?, feedback = ?, updated_at = ?
		 WHERE id = ?`,
		patient.Name, process, details, feedback, patient.UpdatedAt, id,
	); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return patient, nil
}

func getPatient(ctx context.Context, q queryer, id string) (*domain.Patient, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, recovery_process, details, feedback, updated_at
		 FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(s scanner) (*domain.Patient, error) {
	p := &domain.Patient{}
	var process, details, feedback string
	if err := s.Scan(&p.ID, &p.Name, &process, &details, &feedback, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	if err := json.Unmarshal([]byte(process), &p.RecoveryProcess); err != nil {
		return nil, fmt.Errorf("decode recovery process: %w", err)
	}
	if err := json.Unmarshal([]byte(details), &p.Details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	if err := json.Unmarshal([]byte(feedback), &p.Feedback); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return p, nil
}

func encodePatient(p *domain.Patient) (process, details, feedback string, err error) {
	exercises := p.RecoveryProcess
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	entries := p.Feedback
	if entries == nil {
		entries = []domain.Feedback{}
	}

	b, err := json.Marshal(exercises)
	if err != nil {
		return "", "", "", fmt.Errorf("encode recovery process: %w", err)
	}
	process = string(b)

	if b, err = json.Marshal(p.Details); err != nil {
		return "", "", "", fmt.Errorf("encode details: %w", err)
	}
	details = string(b)

	if b, err = json.Marshal(entries); err != nil {
		return "", "", "", fmt.Errorf("encode feedback: %w", err)
	}
	feedback = string(b)
	return process, details, feedback, nil
}
