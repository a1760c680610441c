package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
)

type UserService struct {
	Credentials *CredentialStore
}

// CurrentUser returns the profile of the authenticated account.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Credentials.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, notFoundError("User does not exist")
		}
		return domain.Profile{}, internalError("Something went wrong while fetching the user", err)
	}
	return u.Profile(), nil
}
