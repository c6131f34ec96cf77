package repository

import (
	"context"
	"errors"

	"github.com/Tajaar/Employee-Attendence-System/internal/db"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/jackc/pgx/v5"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

type CreateEmployeeParams struct {
	Code         string
	FullName     string
	Email        string
	Role         domain.Role
	PasswordHash string
}

func (r EmployeeRepository) Create(ctx context.Context, p CreateEmployeeParams) (*domain.Employee, error) {
	query := `
		INSERT INTO employees (employee_code, full_name, email, role, password_hash, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5, true, now())
		RETURNING id, employee_code, full_name, email, role, is_active, password_hash, created_at
	`
	row := r.DB.Pool.QueryRow(ctx, query, p.Code, p.FullName, p.Email, p.Role, p.PasswordHash)
	return scanEmployee(row)
}

func (r EmployeeRepository) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `
		SELECT id, employee_code, full_name, email, role, is_active, password_hash, created_at
		FROM employees
		WHERE id=$1
	`
	return r.one(ctx, query, id)
}

func (r EmployeeRepository) GetByCode(ctx context.Context, code string) (*domain.Employee, error) {
	query := `
		SELECT id, employee_code, full_name, email, role, is_active, password_hash, created_at
		FROM employees
		WHERE employee_code=$1
	`
	return r.one(ctx, query, code)
}

// GetByLogin resolves a login identifier that may be either an email or an
// employee code.
func (r EmployeeRepository) GetByLogin(ctx context.Context, login string) (*domain.Employee, error) {
	query := `
		SELECT id, employee_code, full_name, email, role, is_active, password_hash, created_at
		FROM employees
		WHERE lower(email)=lower($1) OR employee_code=$1
		ORDER BY id ASC
		LIMIT 1
	`
	return r.one(ctx, query, login)
}

func (r EmployeeRepository) ListActive(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, employee_code, full_name, email, role, is_active, password_hash, created_at
		FROM employees
		WHERE is_active
		ORDER BY employee_code ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r EmployeeRepository) one(ctx context.Context, query string, arg any) (*domain.Employee, error) {
	e, err := scanEmployee(r.DB.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func scanEmployee(row interface {
	Scan(dest ...any) error
}) (*domain.Employee, error) {
	var (
		e    domain.Employee
		role string
	)
	if err := row.Scan(
		&e.ID,
		&e.Code,
		&e.FullName,
		&e.Email,
		&role,
		&e.IsActive,
		&e.PasswordHash,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Role = domain.Role(role)
	return &e, nil
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEvent is returned when the day's latest event for an employee
// already has the requested kind.
var ErrDuplicateEvent = errors.New("duplicate attendance event")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}
