package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/bhava/internal/emotion"
	"github.com/ayusman/bhava/internal/landmark"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFixture is returned when a fixture cannot be stored.
	ErrInvalidFixture = errors.New("invalid fixture")
)

// Fixture is a recorded face: its landmarks, the frame size they were
// captured in and the label it is expected to classify as.
type Fixture struct {
	ID          string
	Name        string
	Expected    emotion.Label
	FrameWidth  int
	FrameHeight int
	Landmarks   []landmark.Point3D
	Thumbnail   []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Face returns the fixture landmarks as a face.
func (f *Fixture) Face() landmark.Face {
	return landmark.Face{Points: f.Landmarks}
}

func (f *Fixture) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFixture)
	}
	if !f.Expected.Valid() {
		return fmt.Errorf("%w: unknown label %q", ErrInvalidFixture, f.Expected)
	}
	if f.FrameWidth <= 0 || f.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidFixture, f.FrameWidth, f.FrameHeight)
	}
	return nil
}

// FixtureRepository provides CRUD operations for fixtures.
type FixtureRepository struct {
	db *sql.DB
}

// Fixtures returns the fixture repository for this store.
func (s *Store) Fixtures() *FixtureRepository {
	return &FixtureRepository{db: s.db}
}

// Create inserts a fixture and its landmarks in a single transaction. A new
// ID is assigned when f.ID is empty.
func (r *FixtureRepository) Create(f *Fixture) error {
	if err := f.validate(); err != nil {
		return err
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO fixtures (id, name, expected, frame_width, frame_height, thumbnail, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, string(f.Expected), f.FrameWidth, f.FrameHeight, f.Thumbnail, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertLandmarks(tx, f.ID, f.Landmarks); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLandmarks(tx *sql.Tx, fixtureID string, points []landmark.Point3D) error {
	stmt, err := tx.Prepare(`INSERT INTO fixture_landmarks (fixture_id, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.Exec(fixtureID, i, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a fixture with its landmarks. The thumbnail is not
// loaded; use Thumbnail.
func (r *FixtureRepository) GetByID(id string) (*Fixture, error) {
	f := &Fixture{}
	var expected string

	err := r.db.QueryRow(
		`SELECT id, name, expected, frame_width, frame_height, created_at, updated_at
		 FROM fixtures WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.Name, &expected, &f.FrameWidth, &f.FrameHeight, &f.CreatedAt, &f.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	f.Expected = emotion.Label(expected)

	f.Landmarks, err = r.GetLandmarks(id)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// GetLandmarks retrieves the landmarks of a fixture in index order.
func (r *FixtureRepository) GetLandmarks(id string) ([]landmark.Point3D, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z FROM fixture_landmarks
		 WHERE fixture_id = ?
		 ORDER BY landmark_index`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []landmark.Point3D
	for rows.Next() {
		var p landmark.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// List retrieves all fixtures, newest first, without landmarks or
// thumbnails.
func (r *FixtureRepository) List() ([]*Fixture, error) {
	rows, err := r.db.Query(
		`SELECT id, name, expected, frame_width, frame_height, created_at, updated_at
		 FROM fixtures ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixtures []*Fixture
	for rows.Next() {
		f := &Fixture{}
		var expected string

		err := rows.Scan(&f.ID, &f.Name, &expected, &f.FrameWidth, &f.FrameHeight, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, err
		}

		f.Expected = emotion.Label(expected)
		fixtures = append(fixtures, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fixtures, nil
}

// Update changes the name and expected label of a fixture.
func (r *FixtureRepository) Update(f *Fixture) error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFixture)
	}
	if !f.Expected.Valid() {
		return fmt.Errorf("%w: unknown label %q", ErrInvalidFixture, f.Expected)
	}

	f.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE fixtures SET name = ?, expected = ?, updated_at = ?
		 WHERE id = ?`,
		f.Name, string(f.Expected), f.UpdatedAt, f.ID,
	)
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

// Delete removes a fixture and its landmarks by ID.
func (r *FixtureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM fixtures WHERE id = ?`, id)
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

// Thumbnail returns the JPEG thumbnail of a fixture. It returns nil without
// error when the fixture has none.
func (r *FixtureRepository) Thumbnail(id string) ([]byte, error) {
	var data []byte

	err := r.db.QueryRow(`SELECT thumbnail FROM fixtures WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return data, nil
}
