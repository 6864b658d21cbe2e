package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Fixtures table - one recorded face per row
		`CREATE TABLE IF NOT EXISTS fixtures (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			expected TEXT NOT NULL CHECK(expected IN (
				'Surprised', 'Happy', 'Sad', 'Angry', 'Disgust',
				'Fear', 'Contempt', 'Confused', 'Neutral')),
			frame_width INTEGER NOT NULL CHECK(frame_width > 0),
			frame_height INTEGER NOT NULL CHECK(frame_height > 0),
			thumbnail BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Fixture landmarks table - normalized face mesh points
		`CREATE TABLE IF NOT EXISTS fixture_landmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fixture_id TEXT NOT NULL REFERENCES fixtures(id) ON DELETE CASCADE,
			landmark_index INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_fixture_landmarks_fixture_id ON fixture_landmarks(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_fixtures_expected ON fixtures(expected)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
