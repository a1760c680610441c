package mongodb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore starts a throwaway mongod and returns a migrated store backed
// by a fresh database. Skipped when no container runtime is available.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("mongo integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, c)
	require.NoError(t, err)

	uri, err := c.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	s, err := NewStore(uri, "vidhub_test_"+idx.New().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.ApplyMigrations(ctx))
	return s
}

func newUser(username, email string) domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		Fullname:     "Test " + username,
		Avatar:       "https://cdn.example/" + username + ".png",
		PasswordHash: "$argon2id$fake",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMongoStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := newUser("ana", "ana@x.io")
	require.NoError(t, s.Users().CreateUser(ctx, ana))

	t.Run("lookup", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, ana.ID)
		require.NoError(t, err)
		require.Equal(t, ana, got)

		got, err = s.Users().FindUserByUsernameOrEmail(ctx, "nobody", "ana@x.io")
		require.NoError(t, err)
		require.Equal(t, ana.ID, got.ID)

		_, err = s.Users().FindUserByUsernameOrEmail(ctx, "", "")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique indexes", func(t *testing.T) {
		require.ErrorIs(t, s.Users().CreateUser(ctx, newUser("ana", "new@x.io")), store.ErrAlreadyExists)
		require.ErrorIs(t, s.Users().CreateUser(ctx, newUser("new", "ana@x.io")), store.ErrAlreadyExists)
	})

	t.Run("refresh token compare and swap", func(t *testing.T) {
		exp := time.Now().Add(time.Hour)
		require.NoError(t, s.Users().SetRefreshToken(ctx, ana.ID, "r1", exp))

		var (
			wg   sync.WaitGroup
			errs = make([]error, 8)
		)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = s.Users().SwapRefreshToken(ctx, ana.ID, "r1", fmt.Sprintf("next-%d", i), exp)
			}()
		}
		wg.Wait()

		success := 0
		for _, err := range errs {
			if err == nil {
				success++
				continue
			}
			require.ErrorIs(t, err, store.ErrTokenMismatch)
		}
		require.Equal(t, 1, success)

		require.NoError(t, s.Users().SetRefreshToken(ctx, ana.ID, "", time.Time{}))
		got, err := s.Users().GetUserByID(ctx, ana.ID)
		require.NoError(t, err)
		require.Empty(t, got.RefreshToken)
		require.Nil(t, got.RefreshTokenExpiresAt)
	})

	t.Run("clear expired", func(t *testing.T) {
		bob := newUser("bob", "bob@x.io")
		require.NoError(t, s.Users().CreateUser(ctx, bob))
		require.NoError(t, s.Users().SetRefreshToken(ctx, bob.ID, "old", time.Now().Add(-time.Minute)))

		n, err := s.Users().ClearExpiredRefreshTokens(ctx, time.Now())
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("videos", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		v := domain.Video{
			ID: idx.New().String(), OwnerID: ana.ID, VideoFile: "v", Thumbnail: "t",
			Title: "First", Description: "d", Duration: 3.5, IsPublished: true,
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, s.Videos().CreateVideo(ctx, v))
		require.NoError(t, s.Videos().IncrementVideoViews(ctx, v.ID))
		require.NoError(t, s.Videos().SetVideoPublished(ctx, v.ID, false, now))

		got, err := s.Videos().GetVideoByID(ctx, v.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, got.Views)
		require.False(t, got.IsPublished)

		require.ErrorIs(t, s.Videos().IncrementVideoViews(ctx, "missing"), store.ErrNotFound)
	})
}
