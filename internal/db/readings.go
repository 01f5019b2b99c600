package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"telemetry-service/internal/models"
)

const (
	codeDuplicateTable   = "42P07"
	codeUniqueViolation  = "23505" // concurrent CREATE TABLE races on pg_type
	readingColumns       = "sensor_id, temperature, humidity, sound, light, factory, location, timestamp"
	createReadingsFormat = `CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    sensor_id VARCHAR(10) NOT NULL,
    temperature DOUBLE PRECISION NOT NULL,
    humidity DOUBLE PRECISION NOT NULL,
    sound DOUBLE PRECISION NOT NULL,
    light DOUBLE PRECISION NOT NULL,
    factory VARCHAR(10) NOT NULL,
    location VARCHAR(10) NOT NULL,
    timestamp TIMESTAMP(0) WITH TIME ZONE NOT NULL
)`
)

// StorageError is returned for any failure writing or reading a dataset.
type StorageError struct {
	Dataset string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Dataset, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// EnsureSchema creates the readings table for a dataset if it does not exist.
// Successful checks are remembered for the life of the process.
func (d *DB) EnsureSchema(ctx context.Context, table string) error {
	if _, ok := d.ensured.Load(table); ok {
		return nil
	}
	query := fmt.Sprintf(createReadingsFormat, pgx.Identifier{table}.Sanitize())
	if _, err := d.SQL.ExecContext(ctx, query); err != nil && !isDuplicateObject(err) {
		return &StorageError{Dataset: table, Op: "create table", Err: err}
	}
	d.ensured.Store(table, struct{}{})
	return nil
}

// StoreReading appends one reading to the dataset and sets its surrogate key.
func (d *DB) StoreReading(ctx context.Context, table string, r *models.Reading) error {
	if err := d.EnsureSchema(ctx, table); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id",
		pgx.Identifier{table}.Sanitize(), readingColumns,
	)
	err := d.SQL.QueryRowContext(ctx, query,
		r.SensorID,
		r.Temperature,
		r.Humidity,
		r.Sound,
		r.Light,
		r.Factory,
		r.Location,
		r.Timestamp,
	).Scan(&r.ID)
	if err != nil {
		return &StorageError{Dataset: table, Op: "insert reading into", Err: err}
	}
	return nil
}

// ListRecent returns up to limit readings, newest first by id.
func (d *DB) ListRecent(ctx context.Context, table string, limit int) ([]models.Reading, error) {
	query := fmt.Sprintf(
		"SELECT id, %s FROM %s ORDER BY id DESC LIMIT $1",
		readingColumns, pgx.Identifier{table}.Sanitize(),
	)
	rows, err := d.SQL.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, &StorageError{Dataset: table, Op: "query", Err: err}
	}
	defer rows.Close()

	list := make([]models.Reading, 0, limit)
	for rows.Next() {
		var r models.Reading
		err := rows.Scan(
			&r.ID,
			&r.SensorID,
			&r.Temperature,
			&r.Humidity,
			&r.Sound,
			&r.Light,
			&r.Factory,
			&r.Location,
			&r.Timestamp,
		)
		if err != nil {
			return nil, &StorageError{Dataset: table, Op: "scan reading from", Err: err}
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Dataset: table, Op: "query", Err: err}
	}
	return list, nil
}

func isDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeDuplicateTable || pgErr.Code == codeUniqueViolation
}
