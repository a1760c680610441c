package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

// EventRecorder receives one event per session operation. outcome is "ok"
// or the failing Kind's name.
type EventRecorder interface {
	SessionEvent(op, outcome string)
}

// RegisterInput is a registration request. Avatar is required; CoverImage
// may be nil.
type RegisterInput struct {
	Fullname   string
	Email      string
	Username   string
	Password   string
	Avatar     *upload.File
	CoverImage *upload.File
}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	User   domain.Profile
	Tokens domain.TokenPair
}

// SessionService drives the account lifecycle:
//
//	ANONYMOUS -> AUTHENTICATED -> (REFRESHED)* -> LOGGED_OUT
//
// Each operation does at most one read followed by one write against the
// store. Rotation relies on the store's compare-and-swap, so there is no
// in-process session state.
type SessionService struct {
	Credentials *CredentialStore
	Tokens      *TokenIssuer
	Uploader    upload.Uploader
	Events      EventRecorder
}

func (s *SessionService) record(op string, err error) {
	if s.Events == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	s.Events.SessionEvent(op, outcome)
}

// Register validates the input, uploads the images and creates the account.
// No record is created if an upload fails, and images already stored for a
// failed registration are removed.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (_ domain.Profile, err error) {
	defer func() { s.record("register", err) }()
	log := slogx.FromContext(ctx)

	for _, f := range []string{in.Fullname, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(f) == "" {
			return domain.Profile{}, validationError("All fields are required")
		}
	}

	_, err = s.Credentials.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		return domain.Profile{}, conflictError("User with email or username already exists")
	case !errors.Is(err, store.ErrNotFound):
		return domain.Profile{}, internalError("Something went wrong while registering the user", err)
	}

	if in.Avatar == nil {
		return domain.Profile{}, validationError("Avatar file is required")
	}

	avatar, err := s.Uploader.Upload(ctx, upload.FolderAvatars, *in.Avatar)
	if err != nil {
		log.Error("avatar upload failed", slog.Any("error", err))
		return domain.Profile{}, uploadError("Error while uploading avatar", err)
	}

	var cover upload.Result
	if in.CoverImage != nil {
		cover, err = s.Uploader.Upload(ctx, upload.FolderCovers, *in.CoverImage)
		if err != nil {
			log.Error("cover image upload failed", slog.Any("error", err))
			discardUploads(ctx, s.Uploader, avatar)
			return domain.Profile{}, uploadError("Error while uploading cover image", err)
		}
	}

	u, err := s.Credentials.Create(ctx, NewUser{
		Fullname:   in.Fullname,
		Email:      in.Email,
		Username:   in.Username,
		Password:   in.Password,
		Avatar:     avatar.URL,
		CoverImage: cover.URL,
	})
	if err != nil {
		discardUploads(ctx, s.Uploader, avatar, cover)
		return domain.Profile{}, err
	}

	log.Info("user registered", slog.String("user_id", u.ID), slog.String("username", u.Username))
	return u.Profile(), nil
}

// Login checks the password and starts a new session. Any earlier refresh
// token for the account stops working.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (_ Session, err error) {
	defer func() { s.record("login", err) }()
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "" {
		return Session{}, validationError("username or email is required")
	}

	u, err := s.Credentials.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, notFoundError("User does not exist")
		}
		return Session{}, internalError("Something went wrong while logging in", err)
	}

	if !s.Credentials.VerifyPassword(u, in.Password) {
		log.Info("login rejected", slog.String("user_id", u.ID))
		return Session{}, authError("Invalid user credentials")
	}

	pair, err := s.mint(u)
	if err != nil {
		return Session{}, err
	}
	if err := s.Credentials.SetRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return Session{}, internalError("Something went wrong while generating access and refresh token", err)
	}

	log.Info("user logged in", slog.String("user_id", u.ID))
	return Session{User: u.Profile(), Tokens: pair}, nil
}

// Logout drops the stored refresh token. Calling it again, or for an account
// that no longer exists, is not an error. Access tokens already issued stay
// valid until they expire.
func (s *SessionService) Logout(ctx context.Context, userID string) (err error) {
	defer func() { s.record("logout", err) }()

	if err := s.Credentials.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return internalError("Something went wrong while logging out", err)
	}
	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", userID))
	return nil
}

// Refresh exchanges the presented refresh token for a new pair. The
// presented token is spent whether or not the caller keeps the new one; of
// two concurrent calls with the same token exactly one succeeds.
func (s *SessionService) Refresh(ctx context.Context, presented string) (_ domain.TokenPair, err error) {
	defer func() { s.record("refresh", err) }()
	log := slogx.FromContext(ctx)

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return domain.TokenPair{}, authError("Unauthorized request")
	}

	claims, err := s.Tokens.Verify(presented, RefreshToken)
	if err != nil {
		log.Info("refresh token rejected", slog.Any("error", err))
		return domain.TokenPair{}, err
	}

	u, err := s.Credentials.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, notFoundError("User does not exist")
		}
		return domain.TokenPair{}, internalError("Something went wrong while refreshing the session", err)
	}

	if !s.Credentials.MatchesRefreshToken(u, presented) {
		log.Warn("refresh token reuse or stale session", slog.String("user_id", u.ID))
		return domain.TokenPair{}, authError("Refresh token is expired or used")
	}

	pair, err := s.mint(u)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.Credentials.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		log.Warn("refresh token rotation lost", slog.String("user_id", u.ID))
		return domain.TokenPair{}, err
	}

	log.Info("session refreshed", slog.String("user_id", u.ID))
	return pair, nil
}

func (s *SessionService) mint(u domain.User) (domain.TokenPair, error) {
	access, err := s.Tokens.IssueAccessToken(u)
	if err != nil {
		return domain.TokenPair{}, internalError("Something went wrong while generating access and refresh token", err)
	}
	refresh, err := s.Tokens.IssueRefreshToken(u)
	if err != nil {
		return domain.TokenPair{}, internalError("Something went wrong while generating access and refresh token", err)
	}
	return domain.TokenPair{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
