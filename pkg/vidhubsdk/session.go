package vidhubsdk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// Session is an authenticated client holding the current token pair.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	user         User
	accessToken  string
	refreshToken string
}

// User returns the profile captured at login.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Refresh rotates both tokens.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return errors.New("no refresh token available")
	}

	out, err := s.client.RefreshTokens(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.accessToken = out.AccessToken
	s.refreshToken = out.RefreshToken
	return nil
}

// Logout ends the session on the server and forgets the refresh token. The
// access token keeps working until it expires.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/v1/users/logout", nil, "")
	if err != nil {
		return err
	}
	if err := decodeEnvelope(resp, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// Me fetches the current profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/v1/users/me", nil, "")
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeEnvelope(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Session) doAuthRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, errors.New("session has no access token")
	}
	return s.client.doRequest(ctx, method, path, body, contentType, token)
}
