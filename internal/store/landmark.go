package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LandmarkRole is one row of the landmark role table.
type LandmarkRole struct {
	Role      string
	Index     int
	UpdatedAt time.Time
}

// LandmarkRepository reads and writes landmark role assignments.
type LandmarkRepository struct {
	db *sql.DB
}

// Landmarks returns the landmark role repository for this store.
func (s *Store) Landmarks() *LandmarkRepository {
	return &LandmarkRepository{db: s.db}
}

// SeedDefaults inserts every role in defaults that has no row yet.
// Existing assignments are left untouched.
func (r *LandmarkRepository) SeedDefaults(defaults map[string]int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for role, idx := range defaults {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO landmark_roles (role, idx, updated_at) VALUES (?, ?, ?)`,
			role, idx, now,
		); err != nil {
			return fmt.Errorf("seed %s: %w", role, err)
		}
	}

	return tx.Commit()
}

// Get retrieves the assignment for a role.
func (r *LandmarkRepository) Get(role string) (*LandmarkRole, error) {
	lr := &LandmarkRole{}

	err := r.db.QueryRow(
		`SELECT role, idx, updated_at FROM landmark_roles WHERE role = ?`,
		role,
	).Scan(&lr.Role, &lr.Index, &lr.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return lr, nil
}

// List returns every assignment ordered by role.
func (r *LandmarkRepository) List() ([]*LandmarkRole, error) {
	rows, err := r.db.Query(`SELECT role, idx, updated_at FROM landmark_roles ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*LandmarkRole
	for rows.Next() {
		lr := &LandmarkRole{}
		if err := rows.Scan(&lr.Role, &lr.Index, &lr.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, lr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

// Upsert sets the landmark index for a role.
func (r *LandmarkRepository) Upsert(lr *LandmarkRole) error {
	if lr.Index < 0 {
		return fmt.Errorf("landmark index %d for %s must be non-negative", lr.Index, lr.Role)
	}
	lr.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO landmark_roles (role, idx, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(role) DO UPDATE SET idx = excluded.idx, updated_at = excluded.updated_at`,
		lr.Role, lr.Index, lr.UpdatedAt,
	)
	return err
}

// Delete removes the assignment for a role.
func (r *LandmarkRepository) Delete(role string) error {
	result, err := r.db.Exec(`DELETE FROM landmark_roles WHERE role = ?`, role)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Map returns all assignments keyed by role.
func (r *LandmarkRepository) Map() (map[string]int, error) {
	roles, err := r.List()
	if err != nil {
		return nil, err
	}

	m := make(map[string]int, len(roles))
	for _, lr := range roles {
		m[lr.Role] = lr.Index
	}
	return m, nil
}
