package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/vidhub/internal/api/service"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindAuth, service.KindInvalidToken:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a failure envelope. Causes are logged, never
// sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var se *service.Error
	if !errors.As(err, &se) {
		log.Error("unhandled error", "error", err)
		httpx.WriteFailure(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	code := statusFor(se.Kind)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "kind", se.Kind.String(), "error", err)
	}

	msg := se.Message
	if msg == "" {
		msg = http.StatusText(code)
	}
	httpx.WriteFailure(w, code, msg)
}
