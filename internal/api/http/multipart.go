package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
)

// multipartMemory is how much of a form is buffered in memory before parts
// spill to temp files.
const multipartMemory = 8 << 20

// parseMultipart limits the body to maxBytes and parses it. It writes the
// failure response itself and reports whether the handler may continue.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		httpx.WriteFailure(w, http.StatusBadRequest, "Invalid multipart form")
		return false
	}
	return true
}

// formFile opens the named part. A missing or empty part yields nil; the
// returned closer is always safe to call.
func formFile(r *http.Request, field string) (*upload.File, func(), error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	if hdr.Size == 0 {
		_ = f.Close()
		return nil, func() {}, nil
	}
	return fileFromPart(f, hdr), func() { _ = f.Close() }, nil
}

func fileFromPart(f multipart.File, hdr *multipart.FileHeader) *upload.File {
	return &upload.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	}
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// maxJSONBody caps the JSON bodies of the session endpoints.
const maxJSONBody = 1 << 20

// decodeJSON reads r's body, capped at maxJSONBody, into v. An empty body is
// accepted only when allowEmpty is set. On failure it writes the response and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.WriteFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	httpx.WriteFailure(w, http.StatusBadRequest, "Invalid request body")
	return false
}
