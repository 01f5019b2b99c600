package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"telemetry-service/internal/models"
)

func ptr[T any](v T) *T { return &v }

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewFromSQL(conn), mock
}

var (
	createSQL = regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "sensor_data"`)
	insertSQL = regexp.QuoteMeta(`INSERT INTO "sensor_data" (sensor_id, temperature, humidity, sound, light, factory, location, timestamp) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`)
	selectSQL = regexp.QuoteMeta(`SELECT id, sensor_id, temperature, humidity, sound, light, factory, location, timestamp FROM "sensor_data" ORDER BY id DESC LIMIT $1`)
)

func sample(ts time.Time) *models.Reading {
	return &models.Reading{
		SensorID:    ptr("S1"),
		Temperature: ptr(39.5),
		Humidity:    ptr(50.0),
		Sound:       ptr(10.0),
		Light:       ptr(200.0),
		Factory:     ptr("F1"),
		Location:    ptr("L1"),
		Timestamp:   ts,
	}
}

func TestStoreReadingEnsuresSchemaOnce(t *testing.T) {
	d, mock := newMock(t)
	ts := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(createSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertSQL).
		WithArgs("S1", 39.5, 50.0, 10.0, 200.0, "F1", "L1", ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(insertSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

	first := sample(ts)
	if err := d.StoreReading(context.Background(), "sensor_data", first); err != nil {
		t.Fatalf("store: %v", err)
	}
	second := sample(ts)
	if err := d.StoreReading(context.Background(), "sensor_data", second); err != nil {
		t.Fatalf("store: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaIgnoresDuplicateObject(t *testing.T) {
	for _, code := range []string{codeDuplicateTable, codeUniqueViolation} {
		d, mock := newMock(t)
		mock.ExpectExec(createSQL).WillReturnError(&pgconn.PgError{Code: code})

		if err := d.EnsureSchema(context.Background(), "sensor_data"); err != nil {
			t.Fatalf("code %s: expected race to be treated as success, got %v", code, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}
}

func TestStoreReadingCreateFailure(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec(createSQL).WillReturnError(errors.New("connection refused"))
	mock.ExpectExec(createSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertSQL).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	err := d.StoreReading(context.Background(), "sensor_data", sample(time.Now()))
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if storageErr.Dataset != "sensor_data" {
		t.Fatalf("unexpected dataset %s", storageErr.Dataset)
	}

	// a failed create is retried on the next write
	if err := d.StoreReading(context.Background(), "sensor_data", sample(time.Now())); err != nil {
		t.Fatalf("store after recovery: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreReadingInsertFailure(t *testing.T) {
	d, mock := newMock(t)
	cause := errors.New(`null value in column "sensor_id"`)
	mock.ExpectExec(createSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertSQL).WillReturnError(cause)

	r := sample(time.Now())
	r.SensorID = nil
	err := d.StoreReading(context.Background(), "sensor_data", r)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRecent(t *testing.T) {
	d, mock := newMock(t)
	ts := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

	cols := []string{"id", "sensor_id", "temperature", "humidity", "sound", "light", "factory", "location", "timestamp"}
	rows := sqlmock.NewRows(cols).
		AddRow(int64(60), "S1", 21.5, 40.0, 3.0, 100.0, "F1", "L1", ts.Add(time.Minute)).
		AddRow(int64(59), "S2", 22.0, 41.0, 4.0, nil, "F1", "L2", ts)
	mock.ExpectQuery(selectSQL).WithArgs(50).WillReturnRows(rows)

	list, err := d.ListRecent(context.Background(), "sensor_data", 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(list))
	}
	if list[0].ID != 60 || list[1].ID != 59 {
		t.Fatalf("expected newest first, got %d, %d", list[0].ID, list[1].ID)
	}
	if list[1].Light != nil {
		t.Fatalf("expected NULL light to scan as nil, got %v", *list[1].Light)
	}
	if *list[0].SensorID != "S1" || !list[0].Timestamp.Equal(ts.Add(time.Minute)) {
		t.Fatalf("unexpected first reading: %+v", list[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRecentQueryFailure(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery(selectSQL).WillReturnError(errors.New(`relation "sensor_data" does not exist`))

	_, err := d.ListRecent(context.Background(), "sensor_data", 50)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}
