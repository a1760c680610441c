package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	profile, err := f.sessions.Register(ctx, registerInput("Ana", "ana@x.io"))
	require.NoError(t, err)
	require.Equal(t, "ana", profile.Username)
	require.NotEmpty(t, profile.ID)
	require.Contains(t, profile.Avatar, "https://cdn.test/avatars/")
	require.Empty(t, profile.CoverImage)

	body, err := json.Marshal(profile)
	require.NoError(t, err)
	require.NotContains(t, string(body), "argon2id")
	require.NotContains(t, string(body), "password")
	require.NotContains(t, string(body), "refreshToken")

	stored, err := f.store.Users().GetUserByID(ctx, profile.ID)
	require.NoError(t, err)
	require.True(t, f.creds.VerifyPassword(stored, "s3cret"))
	require.False(t, f.creds.VerifyPassword(stored, "S3CRET"))
}

func TestRegisterFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   func() RegisterInput
		wantErr error
	}{
		{"blank fullname", func() RegisterInput {
			in := registerInput("bob", "bob@x.io")
			in.Fullname = "   "
			return in
		}, ErrValidation},
		{"blank password", func() RegisterInput {
			in := registerInput("bob", "bob@x.io")
			in.Password = ""
			return in
		}, ErrValidation},
		{"username taken in another case", func() RegisterInput {
			return registerInput("ANA", "other@x.io")
		}, ErrConflict},
		{"email taken", func() RegisterInput {
			return registerInput("bob", "ana@x.io")
		}, ErrConflict},
		{"conflict reported before missing avatar", func() RegisterInput {
			in := registerInput("ana", "bob@x.io")
			in.Avatar = nil
			return in
		}, ErrConflict},
		{"missing avatar", func() RegisterInput {
			in := registerInput("bob", "bob@x.io")
			in.Avatar = nil
			return in
		}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Register(ctx, tt.input())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterUploadFailureCreatesNothing(t *testing.T) {
	ctx := context.Background()

	for _, folder := range []string{upload.FolderAvatars, upload.FolderCovers} {
		t.Run(folder, func(t *testing.T) {
			f := newFixture(t)
			f.uploader.failFor[folder] = true

			in := registerInput("ana", "ana@x.io")
			in.CoverImage = file("cover.jpg")
			_, err := f.sessions.Register(ctx, in)
			require.ErrorIs(t, err, ErrUpload)

			_, err = f.creds.FindByUsernameOrEmail(ctx, "ana", "")
			require.Error(t, err)
			require.Empty(t, f.uploader.storedKeys(), "uploads of a failed registration are removed")
		})
	}
}

// blindLookup never finds a user, so a duplicate only surfaces when the
// store rejects the insert.
type blindLookup struct {
	store.Users
}

func (blindLookup) FindUserByUsernameOrEmail(context.Context, string, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func TestRegisterLostRaceRemovesUploads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)
	kept := f.uploader.storedKeys()
	require.Len(t, kept, 1)

	f.creds.Users = blindLookup{Users: f.store.Users()}

	in := registerInput("ana", "other@x.io")
	in.CoverImage = file("cover.jpg")
	_, err = f.sessions.Register(ctx, in)
	require.ErrorIs(t, err, ErrConflict)
	require.ElementsMatch(t, kept, f.uploader.storedKeys())
}

func TestRegisterEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	upper, err := f.sessions.Register(ctx, registerInput("ana", "Ana@x.io"))
	require.NoError(t, err)
	require.Equal(t, "Ana@x.io", upper.Email)

	lower, err := f.sessions.Register(ctx, registerInput("bob", "ana@x.io"))
	require.NoError(t, err)
	require.NotEqual(t, upper.ID, lower.ID)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	t.Run("by username any case", func(t *testing.T) {
		s, err := f.sessions.Login(ctx, LoginInput{Username: "ANA", Password: "s3cret"})
		require.NoError(t, err)
		require.Equal(t, "ana", s.User.Username)
		require.NotEmpty(t, s.Tokens.AccessToken)
		require.NotEmpty(t, s.Tokens.RefreshToken)

		claims, err := f.tokens.Verify(s.Tokens.AccessToken, AccessToken)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, claims.Subject)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := f.sessions.Login(ctx, LoginInput{Email: "ana@x.io", Password: "s3cret"})
		require.NoError(t, err)
	})

	tests := []struct {
		name    string
		in      LoginInput
		wantErr error
	}{
		{"no identifier", LoginInput{Password: "s3cret"}, ErrValidation},
		{"unknown user", LoginInput{Username: "bob", Password: "s3cret"}, ErrNotFound},
		{"wrong password", LoginInput{Username: "ana", Password: "nope"}, ErrAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Login(ctx, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStoredRefreshTokenIsFingerprint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)

	u, err := f.store.Users().GetUserByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotEmpty(t, u.RefreshToken)
	require.NotEqual(t, s.Tokens.RefreshToken, u.RefreshToken)
	require.True(t, f.creds.MatchesRefreshToken(u, s.Tokens.RefreshToken))
	require.NotNil(t, u.RefreshTokenExpiresAt)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)
	r1 := s.Tokens.RefreshToken

	pair, err := f.sessions.Refresh(ctx, r1)
	require.NoError(t, err)
	require.NotEqual(t, r1, pair.RefreshToken)
	require.NotEqual(t, s.Tokens.AccessToken, pair.AccessToken)

	// The spent token is rejected; the new one works.
	_, err = f.sessions.Refresh(ctx, r1)
	require.ErrorIs(t, err, ErrAuth)

	_, err = f.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)
	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)

	ghost, err := f.tokens.IssueRefreshToken(userWithID("01J00000000000000000000000"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"absent", "", ErrAuth},
		{"whitespace", "  ", ErrAuth},
		{"garbage", "abc.def.ghi", ErrInvalidToken},
		{"access token presented", s.Tokens.AccessToken, ErrInvalidToken},
		{"user gone", ghost.Token, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Refresh(ctx, tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("validly signed but not the stored one", func(t *testing.T) {
		other, err := f.tokens.IssueRefreshToken(userWithID(p.ID))
		require.NoError(t, err)
		_, err = f.sessions.Refresh(ctx, other.Token)
		require.ErrorIs(t, err, ErrAuth)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)
	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx, p.ID))
	require.NoError(t, f.sessions.Logout(ctx, p.ID))
	require.NoError(t, f.sessions.Logout(ctx, "01J00000000000000000000000"))

	_, err = f.sessions.Refresh(ctx, s.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrAuth)

	// Access tokens are stateless and outlive the session.
	_, err = f.tokens.Verify(s.Tokens.AccessToken, AccessToken)
	require.NoError(t, err)
}

// Register, log in, refresh, then replay the original refresh token.
func TestSessionLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)

	_, err = f.sessions.Refresh(ctx, s.Tokens.RefreshToken)
	require.NoError(t, err)

	_, err = f.sessions.Refresh(ctx, s.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrAuth)

	// A second login replaces whatever session was live.
	s2, err := f.sessions.Login(ctx, LoginInput{Email: "ana@x.io", Password: "s3cret"})
	require.NoError(t, err)
	_, err = f.sessions.Refresh(ctx, s2.Tokens.RefreshToken)
	require.NoError(t, err)

	require.Equal(t, []string{
		"register:ok", "login:ok", "refresh:ok", "refresh:auth", "login:ok", "refresh:ok",
	}, f.events.events)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)
	s, err := f.sessions.Login(ctx, LoginInput{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 6)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.sessions.Refresh(ctx, s.Tokens.RefreshToken)
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, ErrAuth)
	}
	require.Equal(t, 1, wins)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.sessions.Register(ctx, registerInput("ana", "ana@x.io"))
	require.NoError(t, err)

	got, err := f.users.CurrentUser(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p, got)

	_, err = f.users.CurrentUser(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
