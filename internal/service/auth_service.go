package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"postboard/internal/events"
	"postboard/internal/hashing"
	"postboard/internal/mailer"
	"postboard/internal/metrics"
	"postboard/internal/model"
	"postboard/internal/otp"
	"postboard/internal/ratelimit"
	"postboard/internal/token"
	"postboard/internal/validate"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetVerificationCode(ctx context.Context, id, digest string, issuedAt time.Time) error
	MarkVerified(ctx context.Context, id string) error
	SetForgotPasswordCode(ctx context.Context, id, digest string, issuedAt time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
}

const (
	purposeVerification   = "verification"
	purposeForgotPassword = "forgot_password"
)

type AuthService struct {
	users      UserStore
	mail       mailer.Mailer
	codes      *otp.Codes
	tokens     *token.Issuer
	limiter    *ratelimit.CodeSender
	publisher  *events.Publisher
	logger     *zap.Logger
	mailFrom   string
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(
	users UserStore,
	mail mailer.Mailer,
	codes *otp.Codes,
	tokens *token.Issuer,
	limiter *ratelimit.CodeSender,
	publisher *events.Publisher,
	logger *zap.Logger,
	mailFrom string,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:      users,
		mail:       mail,
		codes:      codes,
		tokens:     tokens,
		limiter:    limiter,
		publisher:  publisher,
		logger:     logger,
		mailFrom:   mailFrom,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Signup creates an unverified user with a hashed password.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	if err := validate.Signup(email, password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := hashing.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.UserSignedUp, events.UserPayload{
		UserID: u.ID, Email: u.Email, At: s.now(),
	})
	metrics.AuthOperationCount.WithLabelValues("signup", "success").Inc()
	return u, nil
}

// Signin checks credentials and issues a session token.
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidLogin
		}
		return "", err
	}

	if !hashing.CheckPassword(password, u.PasswordHash) {
		metrics.AuthOperationCount.WithLabelValues("signin", "failed").Inc()
		return "", ErrUnauthorized
	}

	tok, err := s.tokens.Issue(u.ID, u.Email, u.Verified)
	if err != nil {
		return "", err
	}

	metrics.AuthOperationCount.WithLabelValues("signin", "success").Inc()
	return tok, nil
}

// sendCode generates a one-time code, mails it, and returns the digest
// and issuance time. Nothing is persisted unless the transport
// confirmed acceptance by the target address.
func (s *AuthService) sendCode(ctx context.Context, u *model.User, subject string) (string, time.Time, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return "", time.Time{}, err
	}

	accepted, err := s.mail.Send(ctx, mailer.Message{
		From:    s.mailFrom,
		To:      u.Email,
		Subject: subject,
		HTML:    "<h1>" + code + "</h1>",
	})
	if err != nil {
		s.logger.Error("Code mail send failed", zap.String("email", u.Email), zap.Error(err))
		return "", time.Time{}, ErrSendFailed
	}

	for _, addr := range accepted {
		if addr == u.Email {
			return s.codes.Digest(code), s.now(), nil
		}
	}
	return "", time.Time{}, ErrSendFailed
}

// SendVerificationCode mails a fresh verification code and stores its
// digest. Rejected for users who are already verified.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if u.Verified {
		return ErrAlreadyVerified
	}

	if !s.limiter.Allow(ctx, purposeVerification, u.ID) {
		return ErrThrottled
	}

	digest, issuedAt, err := s.sendCode(ctx, u, "verification code")
	if err != nil {
		return err
	}

	if err := s.users.SetVerificationCode(ctx, u.ID, digest, issuedAt); err != nil {
		return err
	}
	metrics.CodeIssuedCount.WithLabelValues(purposeVerification).Inc()
	return nil
}

// VerifyVerificationCode redeems a verification code and marks the
// user verified. The stored code is single use: success clears it.
func (s *AuthService) VerifyVerificationCode(ctx context.Context, email, providedCode string) error {
	if err := validate.AcceptCode(email, providedCode); err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if u.Verified {
		return ErrAlreadyVerified
	}

	if err := s.codes.Check(u.VerificationCode, u.VerificationCodeValidation, providedCode); err != nil {
		return err
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return err
	}

	s.publisher.Publish(events.UserVerified, events.UserPayload{
		UserID: u.ID, Email: u.Email, At: s.now(),
	})
	return nil
}

// ChangePassword replaces the password of an authenticated, verified
// user after re-checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validate.ChangePassword(oldPassword, newPassword); err != nil {
		return err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !u.Verified {
		return ErrNotVerified
	}

	if !hashing.CheckPassword(oldPassword, u.PasswordHash) {
		return ErrUnauthorized
	}

	hash, err := hashing.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

// SendForgotPasswordCode mails a fresh forgot-password code and stores
// its digest. Unlike verification codes, verified status is not
// checked.
func (s *AuthService) SendForgotPasswordCode(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if !s.limiter.Allow(ctx, purposeForgotPassword, u.ID) {
		return ErrThrottled
	}

	digest, issuedAt, err := s.sendCode(ctx, u, "Forgot password code")
	if err != nil {
		return err
	}

	if err := s.users.SetForgotPasswordCode(ctx, u.ID, digest, issuedAt); err != nil {
		return err
	}
	metrics.CodeIssuedCount.WithLabelValues(purposeForgotPassword).Inc()
	return nil
}

// VerifyForgotPasswordCode redeems a forgot-password code and accepts
// the new password. Success clears the stored code.
func (s *AuthService) VerifyForgotPasswordCode(ctx context.Context, email, providedCode, newPassword string) error {
	if err := validate.AcceptForgotPasswordCode(email, providedCode, newPassword); err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.codes.Check(u.ForgotPasswordCode, u.ForgotPasswordCodeValidation, providedCode); err != nil {
		return err
	}

	hash, err := hashing.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, u.ID, hash)
}
