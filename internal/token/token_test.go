package token

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("super-secret")
	tok, err := iss.Issue("user-1", "a@x.com", true)
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.Verified)
	assert.WithinDuration(t, time.Now().Add(TTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("super-secret")
	tok, err := iss.Issue("user-1", "a@x.com", false)
	require.NoError(t, err)

	// move the verifier's clock past expiry
	iss.now = func() time.Time { return time.Now().Add(TTL + time.Minute) }

	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret").Issue("user-1", "a@x.com", false)
	require.NoError(t, err)

	_, err = NewIssuer("wrong-secret").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("k").Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", Extract(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", Extract(r))

	r.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", Extract(r))
}

func TestExtractFromCookie(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Cookie", "Authorization="+url.QueryEscape("Bearer abc123"))
	assert.Equal(t, "abc123", Extract(r))
}
