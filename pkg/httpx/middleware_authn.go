package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vidhub/pkg/jwtx"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

// AccessTokenCookie is the cookie browsers send the access token in.
const AccessTokenCookie = "accessToken"

// AuthnMiddleware admits requests carrying a valid access token, taken from
// the access token cookie or, failing that, an Authorization bearer header.
// The verified subject is stored under CtxKeyUserID.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := AccessTokenFromRequest(r)
			if raw == "" {
				writeBearerError(w, "missing access token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				writeBearerError(w, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// AccessTokenFromRequest returns the raw access token or "".
func AccessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if len(authz) > len("Bearer ") && strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return ""
}

// RFC 6750 challenge plus the usual failure envelope.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteFailure(w, http.StatusUnauthorized, "Unauthorized request", desc)
}
