package vidhubsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to one vidhub server. Unauthenticated operations live
// here; authenticated ones live on Session.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 30 second timeout. Uploads can be
// large, so callers sending video files may want a longer one.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewSessionFromTokens wraps tokens obtained elsewhere.
func (c *SDKClient) NewSessionFromTokens(user User, accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		user:         user,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}
