package jwtx

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/vidhub/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes for the two token classes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 10 * 24 * time.Hour
)

// Claims carry only the registered set. The subject is the user ID; the jti
// makes two tokens minted for the same user in the same second distinct.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds claims for subject valid from now until now+ttl.
func NewClaims(subject, issuer string, ttl time.Duration, now time.Time) (Claims, error) {
	jti, err := NewJTI()
	if err != nil {
		return Claims{}, err
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}, nil
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() (string, error) {
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: jti: %w", err)
	}
	return jti, nil
}

// ValidateIssuer checks the issuer against expected. Empty expected means
// nothing to enforce.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateSubject rejects tokens that do not name a user.
func (c *Claims) ValidateSubject() error {
	if c.Subject == "" {
		return fmt.Errorf("%w: missing sub", ErrInvalidClaim)
	}
	return nil
}
