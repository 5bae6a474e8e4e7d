package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clinics (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		working_start TEXT NOT NULL DEFAULT '',
		working_end TEXT NOT NULL DEFAULT '',
		working_days TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		clinic_id BIGINT REFERENCES clinics(id),
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id BIGSERIAL PRIMARY KEY,
		clinic_id BIGINT NOT NULL,
		patient_name TEXT NOT NULL,
		service_id BIGINT,
		service_name TEXT,
		start_time TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_clinic ON appointments (clinic_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS available_services (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dentist_services (
		dentist_id BIGINT NOT NULL,
		position INT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		duration INT NOT NULL,
		PRIMARY KEY (dentist_id, position)
	)`,
}

// Migrate creates the tables when they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
