package store

import (
	"context"
	"database/sql"

	"github.com/uvify/apiserver/types"
)

// ReadingRepository handles persistence for UV readings.
type ReadingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// readingColumns casts date and time to text so rows scan into the
// wire format directly.
const readingColumns = `reading_id, user_id, date::text, "time"::text, uvi, level, created_at`

func (r *ReadingRepository) Create(ctx context.Context, reading types.Reading) (types.Reading, error) {
	const query = `
		INSERT INTO uv_readings (user_id, date, "time", uvi, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + readingColumns
	row := r.db.QueryRowContext(
		ctx,
		query,
		reading.UserID,
		reading.Date,
		reading.Time,
		reading.UVI,
		reading.Level,
	)
	return scanReading(row.Scan)
}

func (r *ReadingRepository) ListForUser(ctx context.Context, userID int) ([]types.Reading, error) {
	const query = `
		SELECT ` + readingColumns + `
		FROM uv_readings
		WHERE user_id = $1
		ORDER BY created_at DESC, reading_id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectReadings(rows)
}

// ListAll returns every reading, newest first. A non-nil userID
// restricts the result to that user.
func (r *ReadingRepository) ListAll(ctx context.Context, userID *int) ([]types.Reading, error) {
	const query = `
		SELECT ` + readingColumns + `
		FROM uv_readings
		WHERE $1::integer IS NULL OR user_id = $1
		ORDER BY created_at DESC, reading_id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectReadings(rows)
}

// DeleteForUser removes all readings belonging to the user and
// reports how many rows went away. Deleting an empty history is not
// an error.
func (r *ReadingRepository) DeleteForUser(ctx context.Context, userID int) (int64, error) {
	const query = `DELETE FROM uv_readings WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectReadings(rows *sql.Rows) ([]types.Reading, error) {
	defer rows.Close()

	readings := make([]types.Reading, 0)
	for rows.Next() {
		reading, err := scanReading(rows.Scan)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

func scanReading(scan func(...any) error) (types.Reading, error) {
	var reading types.Reading
	err := scan(
		&reading.ID,
		&reading.UserID,
		&reading.Date,
		&reading.Time,
		&reading.UVI,
		&reading.Level,
		&reading.CreatedAt,
	)
	if err != nil {
		return types.Reading{}, err
	}
	return reading, nil
}
