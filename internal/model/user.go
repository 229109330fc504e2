package model

import "time"

// User is an account row. PasswordHash and the code columns are
// excluded from JSON responses.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Verified     bool   `json:"verified"`

	// A code digest and its issuance timestamp are set and cleared
	// together; they are nil when no code is outstanding.
	VerificationCode             *string    `json:"-"`
	VerificationCodeValidation   *time.Time `json:"-"`
	ForgotPasswordCode           *string    `json:"-"`
	ForgotPasswordCodeValidation *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
