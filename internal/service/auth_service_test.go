package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"postboard/internal/hashing"
	"postboard/internal/mailer"
	"postboard/internal/model"
	"postboard/internal/otp"
	"postboard/internal/token"
	"postboard/internal/validate"
)

// -------- test fakes --------

type fakeUserStore struct {
	byEmail map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*model.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *model.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) get(email string) *model.User { return f.byEmail[email] }

func (f *fakeUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
		}
	}
	return nil
}

func (f *fakeUserStore) SetVerificationCode(_ context.Context, id, digest string, issuedAt time.Time) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.VerificationCode = &digest
			t := issuedAt
			u.VerificationCodeValidation = &t
		}
	}
	return nil
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Verified = true
			u.VerificationCode = nil
			u.VerificationCodeValidation = nil
		}
	}
	return nil
}

func (f *fakeUserStore) SetForgotPasswordCode(_ context.Context, id, digest string, issuedAt time.Time) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.ForgotPasswordCode = &digest
			t := issuedAt
			u.ForgotPasswordCodeValidation = &t
		}
	}
	return nil
}

func (f *fakeUserStore) ResetPassword(_ context.Context, id, hash string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			u.ForgotPasswordCode = nil
			u.ForgotPasswordCodeValidation = nil
		}
	}
	return nil
}

type fakeMailer struct {
	sent     []mailer.Message
	accepted []string // nil means "accept the recipient"
	err      error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	if f.accepted != nil {
		return f.accepted, nil
	}
	return []string{msg.To}, nil
}

// lastCode extracts the plaintext code from the most recent mail.
func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	html := f.sent[len(f.sent)-1].HTML
	code := strings.TrimSuffix(strings.TrimPrefix(html, "<h1>"), "</h1>")
	require.NotEmpty(t, code)
	return code
}

func newAuthService(users UserStore, mail mailer.Mailer) *AuthService {
	return NewAuthService(
		users,
		mail,
		otp.New("code-secret"),
		token.NewIssuer("token-secret"),
		nil, // no throttle
		nil, // no events
		zap.NewNop(),
		"noreply@postboard.test",
		4, // low bcrypt cost keeps tests fast
	)
}

// -------- signup / signin --------

func TestSignup(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newAuthService(users, &fakeMailer{})

	u, err := svc.Signup(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.False(t, u.Verified)
	assert.NotEqual(t, "Secret123!", u.PasswordHash)
	assert.True(t, hashing.CheckPassword("Secret123!", u.PasswordHash))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newAuthService(users, &fakeMailer{})

	_, err := svc.Signup(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "a@x.com", "Other456!")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSignup_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{})

	_, err := svc.Signup(context.Background(), "not-an-email", "Secret123!")
	var ve *validate.Error
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Signup(context.Background(), "a@x.com", "weak")
	assert.ErrorAs(t, err, &ve)
}

func TestSignin(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newAuthService(users, &fakeMailer{})

	_, err := svc.Signup(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	tok, err := svc.Signin(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	claims, err := token.NewIssuer("token-secret").Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.False(t, claims.Verified)
}

func TestSignin_WrongPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newAuthService(users, &fakeMailer{})

	_, err := svc.Signup(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	_, err = svc.Signin(context.Background(), "a@x.com", "Wrong456!")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignin_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{})

	_, err := svc.Signin(context.Background(), "nobody@x.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

// -------- verification codes --------

func signedUpUser(t *testing.T, users *fakeUserStore, mail mailer.Mailer) *AuthService {
	t.Helper()
	svc := newAuthService(users, mail)
	_, err := svc.Signup(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)
	return svc
}

func TestSendVerificationCode(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "a@x.com"))

	u := users.get("a@x.com")
	require.NotNil(t, u.VerificationCode)
	require.NotNil(t, u.VerificationCodeValidation)
	// only the digest is stored
	assert.NotEqual(t, mail.lastCode(t), *u.VerificationCode)
}

func TestSendVerificationCode_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{})
	assert.ErrorIs(t, svc.SendVerificationCode(context.Background(), "nobody@x.com"), ErrNotFound)
}

func TestSendVerificationCode_AlreadyVerified(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := signedUpUser(t, users, &fakeMailer{})
	users.get("a@x.com").Verified = true

	assert.ErrorIs(t, svc.SendVerificationCode(context.Background(), "a@x.com"), ErrAlreadyVerified)
}

func TestSendVerificationCode_NotAccepted(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{accepted: []string{"someone-else@x.com"}}
	svc := signedUpUser(t, users, mail)

	err := svc.SendVerificationCode(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrSendFailed)

	// rejected send must not leave code state behind
	u := users.get("a@x.com")
	assert.Nil(t, u.VerificationCode)
	assert.Nil(t, u.VerificationCodeValidation)
}

func TestVerifyVerificationCode(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "a@x.com"))
	code := mail.lastCode(t)

	require.NoError(t, svc.VerifyVerificationCode(context.Background(), "a@x.com", code))

	u := users.get("a@x.com")
	assert.True(t, u.Verified)
	assert.Nil(t, u.VerificationCode)
	assert.Nil(t, u.VerificationCodeValidation)
}

func TestVerifyVerificationCode_SecondAttemptFindsNoCode(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "a@x.com"))
	code := mail.lastCode(t)
	require.NoError(t, svc.VerifyVerificationCode(context.Background(), "a@x.com", code))

	// the stored code was cleared, but the user is now verified, so
	// the already-verified check fires first
	err := svc.VerifyVerificationCode(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyVerificationCode_Expired(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "a@x.com"))
	code := mail.lastCode(t)

	stale := time.Now().Add(-otp.TTL - time.Minute)
	users.get("a@x.com").VerificationCodeValidation = &stale

	err := svc.VerifyVerificationCode(context.Background(), "a@x.com", code)
	assert.ErrorIs(t, err, otp.ErrCodeExpired)
}

func TestVerifyVerificationCode_Mismatch(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "a@x.com"))

	wrong := "1"
	if mail.lastCode(t) == wrong {
		wrong = "2"
	}
	err := svc.VerifyVerificationCode(context.Background(), "a@x.com", wrong)
	assert.ErrorIs(t, err, otp.ErrCodeMismatch)
}

func TestVerifyVerificationCode_NoCodeOutstanding(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := signedUpUser(t, users, &fakeMailer{})

	err := svc.VerifyVerificationCode(context.Background(), "a@x.com", "123456")
	assert.ErrorIs(t, err, otp.ErrCodeMissing)
}

// -------- change password --------

func TestChangePassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := signedUpUser(t, users, &fakeMailer{})
	u := users.get("a@x.com")
	u.Verified = true

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "Secret123!", "NewSecret1"))
	assert.True(t, hashing.CheckPassword("NewSecret1", users.get("a@x.com").PasswordHash))
}

func TestChangePassword_NotVerified(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := signedUpUser(t, users, &fakeMailer{})
	u := users.get("a@x.com")

	err := svc.ChangePassword(context.Background(), u.ID, "Secret123!", "NewSecret1")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := signedUpUser(t, users, &fakeMailer{})
	u := users.get("a@x.com")
	u.Verified = true

	err := svc.ChangePassword(context.Background(), u.ID, "Wrong456!", "NewSecret1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// -------- forgot password --------

func TestForgotPasswordFlow(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	mail := &fakeMailer{}
	svc := signedUpUser(t, users, mail)

	// unverified users may still reset their password
	require.NoError(t, svc.SendForgotPasswordCode(context.Background(), "a@x.com"))
	code := mail.lastCode(t)

	require.NoError(t, svc.VerifyForgotPasswordCode(context.Background(), "a@x.com", code, "NewSecret1"))

	u := users.get("a@x.com")
	assert.True(t, hashing.CheckPassword("NewSecret1", u.PasswordHash))
	assert.Nil(t, u.ForgotPasswordCode)
	assert.Nil(t, u.ForgotPasswordCodeValidation)

	// the code was cleared, replaying it fails
	err := svc.VerifyForgotPasswordCode(context.Background(), "a@x.com", code, "Another2x")
	assert.ErrorIs(t, err, otp.ErrCodeMissing)
}

func TestSendForgotPasswordCode_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{})
	assert.ErrorIs(t, svc.SendForgotPasswordCode(context.Background(), "nobody@x.com"), ErrNotFound)
}
