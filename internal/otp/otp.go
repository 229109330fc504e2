package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"postboard/internal/hashing"
)

// TTL is how long an issued code stays redeemable.
const TTL = 5 * time.Minute

var (
	ErrCodeMissing  = errors.New("no code outstanding")
	ErrCodeExpired  = errors.New("code expired")
	ErrCodeMismatch = errors.New("code mismatch")
)

// Codes generates and checks one-time numeric codes. Only the HMAC
// digest of a code is ever stored.
type Codes struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string) *Codes {
	return &Codes{secret: secret, ttl: TTL, now: time.Now}
}

// Generate returns a uniform random value in [0, 999999] as a decimal
// string. The string is not zero-padded, so short codes like "7" are
// valid.
func (c *Codes) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// Digest returns the stored form of a code.
func (c *Codes) Digest(code string) string {
	return hashing.HMACDigest(code, c.secret)
}

// Check validates a provided code against the stored digest and
// issuance timestamp. Digest and timestamp are nil together when no
// code is outstanding.
func (c *Codes) Check(digest *string, issuedAt *time.Time, provided string) error {
	if digest == nil || issuedAt == nil {
		return ErrCodeMissing
	}
	if c.now().Sub(*issuedAt) > c.ttl {
		return ErrCodeExpired
	}
	if !hmac.Equal([]byte(c.Digest(provided)), []byte(*digest)) {
		return ErrCodeMismatch
	}
	return nil
}
