// Package auth implements register and login on top of the app_user table:
// password hashing, credential checks, and JWT issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expensahq/expensa/internal/domain/expense"
	pkgauth "github.com/expensahq/expensa/pkg/auth"
)

// ErrInvalidCredentials is returned by Login for a wrong email or password.
// A single error for both cases avoids leaking whether an email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is already
// taken by a user with a password set.
var ErrEmailAlreadyExists = errors.New("email already registered")

// RegisterInput holds the data needed to create a user account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after a successful Register or Login. Token is a signed
// JWT carrying the UserID and Role claims.
type Result struct {
	Token  string
	UserID string
	Role   string
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
}

type service struct {
	db *sql.DB
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Register creates a user and returns a JWT. If the email belongs to a seeded
// demo user without a password, registration claims that account instead of
// failing, keeping the demo users loginable.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	role := input.Role
	if role == "" {
		role = expense.RoleEmployee
	}
	if role != expense.RoleEmployee && role != expense.RoleManager {
		return nil, fmt.Errorf("role must be employee or manager")
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	now := time.Now().UTC().Format(time.RFC3339)

	var existingID string
	var existingHash sql.NullString
	var existingRole string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, password_hash, role FROM app_user WHERE email = ?`, email,
	).Scan(&existingID, &existingHash, &existingRole)
	switch {
	case err == nil && existingHash.Valid:
		return nil, ErrEmailAlreadyExists
	case err == nil:
		// Passwordless demo account: claim it, keep its seeded role.
		if _, err := s.db.ExecContext(ctx,
			`UPDATE app_user SET password_hash = ?, updated_at = ? WHERE id = ?`,
			hash, now, existingID,
		); err != nil {
			return nil, fmt.Errorf("claim demo user: %w", err)
		}
		return s.issue(existingID, existingRole)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	userID := uuid.Must(uuid.NewV7()).String()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, email, display_name, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, email, input.DisplayName, hash, role, now, now); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(userID, role)
}

// Login verifies the credentials and returns a JWT.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var userID, role string
	var hash sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash, role FROM app_user WHERE email = ?`, email,
	).Scan(&userID, &hash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !hash.Valid || !pkgauth.VerifyPassword(hash.String, input.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(userID, role)
}

func (s *service) issue(userID, role string) (*Result, error) {
	token, err := pkgauth.GenerateToken(userID, role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Result{Token: token, UserID: userID, Role: role}, nil
}
