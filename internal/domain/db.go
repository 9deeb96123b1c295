package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (memory, SQLite) owns its own migration
// strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Store is the resource store shared by every request handler.
type Store interface {
	Database
	Users() UserRepository
	Patients() PatientRepository
	Assignments() AssignmentRepository
}
