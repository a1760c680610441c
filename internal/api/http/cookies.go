package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
)

// RefreshTokenCookie carries the refresh token for browser clients.
const RefreshTokenCookie = "refreshToken"

// cookieJar places the session cookies. Secure is only turned off for local
// development over plain HTTP.
type cookieJar struct {
	Secure bool
}

func (c cookieJar) set(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, c.cookie(httpx.AccessTokenCookie, pair.AccessToken, maxAge(pair.AccessExpiresAt)))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, maxAge(pair.RefreshExpiresAt)))
}

func (c cookieJar) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(httpx.AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c cookieJar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// maxAge is never 0, which net/http would drop from the header.
func maxAge(expiresAt time.Time) int {
	return max(int(time.Until(expiresAt).Seconds()), 1)
}
