package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, h.Verify(hash, "hunter22"))
	assert.False(t, h.Verify(hash, "hunter23"))

	again, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted hashes differ")

	_, err = h.Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{TTL: time.Minute, SigningKey: []byte("secret")})

	tok, exp, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "stackit", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer(TokenConfig{TTL: time.Minute, SigningKey: []byte("secret")})
	tok, _, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other := NewTokenIssuer(TokenConfig{TTL: time.Minute, SigningKey: []byte("other")})
		_, err := other.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer(TokenConfig{TTL: time.Minute, SigningKey: []byte("secret")})
		late.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := late.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:    "stackit",
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(s)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		anon, _, err := issuer.Issue("")
		require.NoError(t, err)
		_, err = issuer.Parse(anon)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
