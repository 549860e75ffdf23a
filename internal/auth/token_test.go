package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	token, expiresAt, err := issuer.Issue(7, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)
}

func TestTokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	now := time.Now()

	a, _, err := issuer.Issue(1, now)
	require.NoError(t, err)
	b, _, err := issuer.Issue(1, now)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejects(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	expired, _, err := NewTokenIssuer([]byte("secret"), time.Minute).Issue(1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	forged, _, err := NewTokenIssuer([]byte("other"), time.Hour).Issue(1, time.Now())
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"garbage": "not-a-token",
		"empty":   "",
	} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
