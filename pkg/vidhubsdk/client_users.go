package vidhubsdk

import (
	"context"
	"net/http"
)

// Register creates an account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	body, contentType, err := multipartForm(
		map[string]string{
			"fullname": req.Fullname,
			"email":    req.Email,
			"username": req.Username,
			"password": req.Password,
		},
		map[string]*FileUpload{
			"avatar":     req.Avatar,
			"coverImage": req.CoverImage,
		},
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/users/register", body, contentType, "")
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeEnvelope(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a session.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/users/login", body, "application/json", "")
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeEnvelope(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(out.User, out.AccessToken, out.RefreshToken), nil
}

// RefreshTokens exchanges refreshToken for a new pair. The old refresh token
// is spent whether or not the caller keeps the result.
func (c *SDKClient) RefreshTokens(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body, err := jsonBody(RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/users/refresh-token", body, "application/json", "")
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeEnvelope(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
