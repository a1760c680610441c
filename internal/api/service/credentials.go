package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/pkg/cryptox"
	"github.com/aussiebroadwan/vidhub/pkg/idx"
)

// NewUser is the input to CredentialStore.Create. Avatar and CoverImage are
// already-uploaded URLs.
type NewUser struct {
	Fullname   string
	Email      string
	Username   string
	Password   string
	Avatar     string
	CoverImage string
}

// CredentialStore owns user records: lookups, password checks and the stored
// refresh token. Refresh tokens are persisted as fingerprints only.
type CredentialStore struct {
	Users store.Users
	Now   func() time.Time
}

// Timestamps are kept at millisecond precision, which both drivers store.
func (c *CredentialStore) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC().Truncate(time.Millisecond)
	}
	return time.Now().UTC().Truncate(time.Millisecond)
}

// normalizeUsername is applied on every write and lookup so usernames are
// case-insensitive.
func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindByUsernameOrEmail matches the lowercased username or the exact email.
// Empty criteria are ignored.
func (c *CredentialStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	return c.Users.FindUserByUsernameOrEmail(ctx, normalizeUsername(username), strings.TrimSpace(email))
}

func (c *CredentialStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	return c.Users.GetUserByID(ctx, id)
}

// Create hashes the password and inserts the record. A duplicate username or
// email surfaces as a Conflict error.
func (c *CredentialStore) Create(ctx context.Context, in NewUser) (domain.User, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, internalError("Something went wrong while registering the user", err)
	}

	now := c.now()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     normalizeUsername(in.Username),
		Email:        strings.TrimSpace(in.Email),
		Fullname:     strings.TrimSpace(in.Fullname),
		Avatar:       in.Avatar,
		CoverImage:   in.CoverImage,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, conflictError("User with email or username already exists")
		}
		return domain.User{}, internalError("Something went wrong while registering the user", err)
	}
	return u, nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
func (c *CredentialStore) VerifyPassword(u domain.User, plaintext string) bool {
	return cryptox.VerifyPassword(plaintext, u.PasswordHash) == nil
}

// SetRefreshToken unconditionally stores token as the user's only live
// refresh token.
func (c *CredentialStore) SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return c.Users.SetRefreshToken(ctx, userID, cryptox.FingerprintToken(token), expiresAt)
}

func (c *CredentialStore) ClearRefreshToken(ctx context.Context, userID string) error {
	return c.Users.SetRefreshToken(ctx, userID, "", time.Time{})
}

// MatchesRefreshToken compares presented against the stored fingerprint in
// constant time. A user with no stored token matches nothing.
func (c *CredentialStore) MatchesRefreshToken(u domain.User, presented string) bool {
	if u.RefreshToken == "" || presented == "" {
		return false
	}
	fp := cryptox.FingerprintToken(presented)
	return subtle.ConstantTimeCompare([]byte(fp), []byte(u.RefreshToken)) == 1
}

// RotateRefreshToken replaces presented with next only if presented is still
// the stored token. Losing the race is an Auth error.
func (c *CredentialStore) RotateRefreshToken(ctx context.Context, userID, presented, next string, expiresAt time.Time) error {
	err := c.Users.SwapRefreshToken(ctx, userID,
		cryptox.FingerprintToken(presented), cryptox.FingerprintToken(next), expiresAt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrTokenMismatch):
		return authError("Refresh token is expired or used")
	default:
		return internalError("Something went wrong while refreshing the session", err)
	}
}
