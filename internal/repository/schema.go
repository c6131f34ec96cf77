package repository

import (
	"context"

	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// EnsureSchema creates the attendance tables if they do not exist yet.
// Safe to run on every startup.
func EnsureSchema(ctx context.Context, pg *db.Postgres) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id bigserial PRIMARY KEY,
			employee_code text NOT NULL UNIQUE,
			full_name text NOT NULL,
			email text NOT NULL UNIQUE,
			role text NOT NULL DEFAULT 'employee',
			password_hash text,
			is_active boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_logs (
			id bigserial PRIMARY KEY,
			employee_id bigint NOT NULL REFERENCES employees(id),
			event_type text NOT NULL,
			event_time timestamptz NOT NULL,
			source text NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_logs_employee_day
			ON attendance_logs (employee_id, (event_time::date))`,
		`CREATE TABLE IF NOT EXISTS attendance_summary (
			id bigserial PRIMARY KEY,
			employee_id bigint NOT NULL REFERENCES employees(id),
			date date NOT NULL,
			first_in timestamptz,
			last_out timestamptz,
			total_duration_seconds bigint NOT NULL DEFAULT 0,
			notes text,
			UNIQUE (employee_id, date)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pg.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account when configured.
// Idempotent: employees.email is unique.
func (r EmployeeRepository) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.DB.Pool.Exec(ctx, `
		INSERT INTO employees (employee_code, full_name, email, role, password_hash, is_active, created_at)
		VALUES ('ADMIN001', 'Administrator', $1, $2, $3, true, now())
		ON CONFLICT (email) DO NOTHING
	`, email, domain.RoleAdmin, string(hash))
	return err
}
