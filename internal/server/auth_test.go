package server

import (
	"testing"
	"time"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, now func() time.Time) *Server {
	t.Helper()
	s, err := New(nil, Options{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		SessionTTL: time.Hour,
		Mode:       gin.TestMode,
		Now:        now,
	}, nil)
	require.NoError(t, err)
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTokenServer(t, func() time.Time { return now })

	token, expires, err := s.issueToken(model.User{ID: "u1", Username: "asha"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	sess, err := s.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "asha", sess.Username)
	assert.Equal(t, token, sess.Token)
	assert.True(t, sess.ExpiresAt.Equal(expires))
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTokenServer(t, func() time.Time { return now })
	token, _, err := s.issueToken(model.User{ID: "u1"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTokenServer(t, func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.parseToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := New(nil, Options{Secret: []byte("a-completely-different-secret-value"), Now: s.opts.Now}, nil)
		require.NoError(t, err)
		_, err = other.parseToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.parseToken(unsigned)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		anon, _, err := s.issueToken(model.User{})
		require.NoError(t, err)
		_, err = s.parseToken(anon)
		assert.Error(t, err)
	})
}
