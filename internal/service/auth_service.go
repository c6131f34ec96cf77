package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/config"
	"github.com/Tajaar/Employee-Attendence-System/internal/domain"
	"github.com/Tajaar/Employee-Attendence-System/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// EmployeeAccounts is the slice of the employee directory auth needs.
type EmployeeAccounts interface {
	GetByLogin(ctx context.Context, login string) (*domain.Employee, error)
	Create(ctx context.Context, p repository.CreateEmployeeParams) (*domain.Employee, error)
}

type AuthService struct {
	Config    config.Config
	Employees EmployeeAccounts
	Logger    *slog.Logger
}

type AuthResult struct {
	AccessToken string
	Employee    domain.Employee
	ExpiresAt   time.Time
}

type LoginInput struct {
	// Login is an email address or an employee code.
	Login    string
	Password string
}

type RegisterInput struct {
	Code     string
	FullName string
	Email    string
	Password string
	Role     domain.Role
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if in.Login == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", ErrValidation)
	}
	emp, err := s.Employees.GetByLogin(ctx, in.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !emp.IsActive || emp.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(emp)
}

// Register creates a new employee account. Role defaults to employee.
// Callers gate this behind admin authorization.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Employee, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if in.Role == "" {
		in.Role = domain.RoleEmployee
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, string(in.Role))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	emp, err := s.Employees.Create(ctx, repository.CreateEmployeeParams{
		Code:         in.Code,
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: employee code or email already used", ErrValidation)
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("employee registered", "employee_id", emp.ID, "code", emp.Code, "role", emp.Role)
	}
	return emp, nil
}

func (s AuthService) issueToken(emp *domain.Employee) (*AuthResult, error) {
	now := time.Now()
	exp := now.Add(s.Config.AccessTokenTTL)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", emp.ID),
		"email":      emp.Email,
		"code":       emp.Code,
		"role":       emp.Role,
		"token_type": "access",
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken: token,
		Employee:    *emp,
		ExpiresAt:   exp,
	}, nil
}
