package service

import "errors"

// Operation failures callers are expected to branch on. Code-check
// failures (missing/expired/mismatch) come from the otp package,
// validation failures from the validate package.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("user already exist")
	ErrInvalidLogin    = errors.New("invalid email or password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyVerified = errors.New("already verified")
	ErrNotVerified     = errors.New("not verified")
	ErrSendFailed      = errors.New("code send failed")
	ErrThrottled       = errors.New("too many code requests")
)
