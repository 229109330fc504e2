package token

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long an issued session token stays valid.
const TTL = 8 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity a session token asserts.
type Claims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret string
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

// Issue creates a signed token for the user, expiring after TTL.
func (i *Issuer) Issue(userID, email string, verified bool) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:   userID,
		Email:    email,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(i.secret))
}

// Parse validates a token and returns its claims. Expired or tampered
// tokens fail with ErrInvalidToken.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(i.secret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Extract pulls the bearer token from the Authorization header, falling
// back to the Authorization cookie set at signin. The cookie value is
// stored URL-escaped because of the space in "Bearer <token>".
func Extract(r *http.Request) string {
	value := r.Header.Get("Authorization")
	if value == "" {
		if c, err := r.Cookie("Authorization"); err == nil {
			if decoded, err := url.QueryUnescape(c.Value); err == nil {
				value = decoded
			}
		}
	}
	if value == "" {
		return ""
	}

	parts := strings.Split(value, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
