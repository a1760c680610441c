package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrTokenMismatch is returned by SwapRefreshToken when the stored token
	// is no longer the one the caller presented.
	ErrTokenMismatch = errors.New("store: refresh token mismatch")
)

// Store is the root data access interface implemented by the mongo and
// sqlite drivers. There are no multi-statement transactions: every write the
// services need is a single conditional update, which both drivers can do
// atomically.
type Store interface {
	Users() Users
	Videos() Videos

	// ApplyMigrations brings the schema (sqlite) or indexes (mongo) up to
	// date. Safe to call on every start.
	ApplyMigrations(ctx context.Context) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// FindUserByUsernameOrEmail returns the first user whose username equals
	// username or whose email equals email. Empty criteria are ignored; when
	// both are empty it returns ErrNotFound.
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error)

	// CreateUser inserts u. Duplicate username or email yields
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// SetRefreshToken replaces the stored refresh token unconditionally. An
	// empty token clears it. ErrNotFound when the user does not exist.
	SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// SwapRefreshToken stores next only if the stored token still equals
	// current, otherwise ErrTokenMismatch. This is the rotation primitive.
	SwapRefreshToken(ctx context.Context, userID, current, next string, expiresAt time.Time) error

	// ClearExpiredRefreshTokens drops refresh tokens whose expiry is before
	// now and reports how many accounts were touched.
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type Videos interface {
	// CreateVideo inserts v (id is provided by the caller).
	CreateVideo(ctx context.Context, v domain.Video) error

	// GetVideoByID returns a video by id.
	GetVideoByID(ctx context.Context, id string) (domain.Video, error)

	// IncrementVideoViews adds one to the view counter.
	IncrementVideoViews(ctx context.Context, id string) error

	// SetVideoPublished sets the publish flag and bumps updated_at.
	SetVideoPublished(ctx context.Context, id string, published bool, now time.Time) error
}
