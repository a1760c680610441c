package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/vidhub/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T, secret string, opts jwtx.VerifyOptions) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()

	s, err := jwtx.NewSignerHS256([]byte(secret))
	require.NoError(t, err)
	v, err := jwtx.NewVerifierHS256([]byte(secret), opts)
	require.NoError(t, err)
	return s, v
}

func TestHS256_SignAndVerify(t *testing.T) {
	s, v := newPair(t, "access-secret", jwtx.VerifyOptions{Issuer: "vidhub"})
	require.Equal(t, "HS256", s.Alg())

	c, err := jwtx.NewClaims("user-1", "vidhub", time.Minute, time.Now())
	require.NoError(t, err)

	tok, err := s.Sign(c)
	require.NoError(t, err)

	got, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, c.ID, got.ID)
}

func TestHS256_Rejections(t *testing.T) {
	now := time.Now()
	s, v := newPair(t, "access-secret", jwtx.VerifyOptions{Issuer: "vidhub"})
	other, _ := newPair(t, "refresh-secret", jwtx.VerifyOptions{})

	sign := func(signer jwtx.Signer, sub, iss string, ttl time.Duration, at time.Time) string {
		c, err := jwtx.NewClaims(sub, iss, ttl, at)
		require.NoError(t, err)
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.jwt", jwtx.ErrMalformed},
		{"empty", "", jwtx.ErrMalformed},
		{"other secret", sign(other, "user-1", "vidhub", time.Minute, now), jwtx.ErrInvalidSig},
		{"expired", sign(s, "user-1", "vidhub", time.Minute, now.Add(-time.Hour)), jwtx.ErrExpired},
		{"not yet valid", sign(s, "user-1", "vidhub", time.Hour, now.Add(time.Hour)), jwtx.ErrNotYetValid},
		{"wrong issuer", sign(s, "user-1", "someone-else", time.Minute, now), jwtx.ErrIssuer},
		{"no subject", sign(s, "", "vidhub", time.Minute, now), jwtx.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHS256_RejectsOtherAlgorithms(t *testing.T) {
	_, v := newPair(t, "access-secret", jwtx.VerifyOptions{})

	c, err := jwtx.NewClaims("user-1", "", time.Minute, time.Now())
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = v.Verify(tok)
	require.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(unsigned)
	require.Error(t, err)
}

func TestHS256_ClockOverride(t *testing.T) {
	issued := time.Unix(1700000000, 0)
	s, v := newPair(t, "access-secret", jwtx.VerifyOptions{
		Now: func() time.Time { return issued.Add(30 * time.Second) },
	})

	c, err := jwtx.NewClaims("user-1", "", time.Minute, issued)
	require.NoError(t, err)
	tok, err := s.Sign(c)
	require.NoError(t, err)

	_, err = v.Verify(tok)
	require.NoError(t, err)
}

func TestHS256_EmptySecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256(nil)
	require.Error(t, err)
	_, err = jwtx.NewVerifierHS256([]byte{}, jwtx.VerifyOptions{})
	require.Error(t, err)
}
