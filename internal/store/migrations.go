package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Landmark roles - maps a logical eye/mouth point to a detector landmark index
		`CREATE TABLE IF NOT EXISTS landmark_roles (
			role TEXT PRIMARY KEY,
			idx INTEGER NOT NULL CHECK(idx >= 0),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
