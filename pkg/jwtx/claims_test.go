package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/vidhub/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	c, err := jwtx.NewClaims("user-1", "vidhub", time.Minute, now)
	require.NoError(t, err)
	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "vidhub", c.Issuer)
	require.Equal(t, now.Add(time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)

	other, err := jwtx.NewClaims("user-1", "vidhub", time.Minute, now)
	require.NoError(t, err)
	require.NotEqual(t, c.ID, other.ID, "jti must differ between mints")
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "vidhub"}}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("vidhub"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
	})
}

func TestValidateSubject(t *testing.T) {
	c := &jwtx.Claims{}
	require.ErrorIs(t, c.ValidateSubject(), jwtx.ErrInvalidClaim)

	c.Subject = "user-1"
	require.NoError(t, c.ValidateSubject())
}
