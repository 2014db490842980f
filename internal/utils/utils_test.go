package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	exp := time.Now().UTC().Add(time.Hour)
	tok, err := NewAccessToken("s3cret", Claims{SessionID: "sid-1", AttendeeID: "U4", Role: "ATTENDEE"}, exp)
	require.NoError(t, err)

	c, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", c.SessionID)
	assert.Equal(t, "U4", c.AttendeeID)
	assert.Equal(t, "ATTENDEE", c.Role)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("s3cret", Claims{SessionID: "sid", AttendeeID: "U1"}, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseAccessToken("s3cret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("longenough", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "longenough"))
	assert.False(t, VerifyPassword(h, "longenougH"))
}
