package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
        id, email, password_hash, verified,
        verification_code, verification_code_validation,
        forgot_password_code, forgot_password_code_validation,
        created_at, updated_at
`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Verified,
		&u.VerificationCode, &u.VerificationCodeValidation,
		&u.ForgotPasswordCode, &u.ForgotPasswordCodeValidation,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, verified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	return r.db.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.Verified).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// FindByEmail returns a user by email, code columns included.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// FindByID returns a user by id, code columns included.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, passwordHash)
	return err
}

// SetVerificationCode stores a verification-code digest and its
// issuance timestamp.
func (r *UserRepository) SetVerificationCode(ctx context.Context, id, digest string, issuedAt time.Time) error {
	query := `
        UPDATE users
        SET verification_code = $2, verification_code_validation = $3, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id, digest, issuedAt)
	return err
}

// MarkVerified flips the verified flag and clears the verification
// code columns in one statement.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	query := `
        UPDATE users
        SET verified = TRUE,
            verification_code = NULL, verification_code_validation = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// SetForgotPasswordCode stores a forgot-password-code digest and its
// issuance timestamp.
func (r *UserRepository) SetForgotPasswordCode(ctx context.Context, id, digest string, issuedAt time.Time) error {
	query := `
        UPDATE users
        SET forgot_password_code = $2, forgot_password_code_validation = $3, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id, digest, issuedAt)
	return err
}

// ResetPassword replaces the password hash and clears the
// forgot-password code columns in one statement.
func (r *UserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	query := `
        UPDATE users
        SET password_hash = $2,
            forgot_password_code = NULL, forgot_password_code_validation = NULL,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id, passwordHash)
	return err
}
