package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/pkg/jwtx"
)

// TokenKind selects which secret and TTL a token is minted or checked with.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// TokenConfig is everything the issuer needs. Nothing is read from the
// environment here.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// IssuedToken is a signed token and the instant it stops being valid.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies the two token classes. It holds no
// per-user state and is safe for concurrent use.
type TokenIssuer struct {
	cfg TokenConfig

	accessSigner    jwtx.Signer
	refreshSigner   jwtx.Signer
	accessVerifier  jwtx.Verifier
	refreshVerifier jwtx.Verifier
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token issuer: access and refresh secrets are required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("token issuer: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token issuer: token lifetimes must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	accessSigner, err := jwtx.NewSignerHS256(cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	refreshSigner, err := jwtx.NewSignerHS256(cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	opts := jwtx.VerifyOptions{Issuer: cfg.Issuer, Now: cfg.Now}
	accessVerifier, err := jwtx.NewVerifierHS256(cfg.AccessSecret, opts)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	refreshVerifier, err := jwtx.NewVerifierHS256(cfg.RefreshSecret, opts)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	return &TokenIssuer{
		cfg:             cfg,
		accessSigner:    accessSigner,
		refreshSigner:   refreshSigner,
		accessVerifier:  accessVerifier,
		refreshVerifier: refreshVerifier,
	}, nil
}

func (t *TokenIssuer) IssueAccessToken(u domain.User) (IssuedToken, error) {
	return t.issue(u, t.accessSigner, t.cfg.AccessTTL)
}

func (t *TokenIssuer) IssueRefreshToken(u domain.User) (IssuedToken, error) {
	return t.issue(u, t.refreshSigner, t.cfg.RefreshTTL)
}

func (t *TokenIssuer) issue(u domain.User, signer jwtx.Signer, ttl time.Duration) (IssuedToken, error) {
	now := t.cfg.Now()
	claims, err := jwtx.NewClaims(u.ID, t.cfg.Issuer, ttl, now)
	if err != nil {
		return IssuedToken{}, err
	}
	token, err := signer.Sign(claims)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, algorithm, issuer and expiry for the given class
// and returns the subject. Every failure is an InvalidToken error.
func (t *TokenIssuer) Verify(token string, kind TokenKind) (jwtx.Claims, error) {
	v := t.accessVerifier
	if kind == RefreshToken {
		v = t.refreshVerifier
	}

	claims, err := v.Verify(token)
	if err != nil {
		return jwtx.Claims{}, invalidTokenError(fmt.Sprintf("Invalid %s token", kind), err)
	}
	return claims, nil
}

// AccessVerifier is handed to the authentication middleware.
func (t *TokenIssuer) AccessVerifier() jwtx.Verifier { return t.accessVerifier }

// TTL returns the configured lifetime for kind.
func (t *TokenIssuer) TTL(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return t.cfg.RefreshTTL
	}
	return t.cfg.AccessTTL
}
