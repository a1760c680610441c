package vidhubsdk

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSDKClientTrimsSlash(t *testing.T) {
	t.Parallel()
	require.Equal(t, "https://api.example.com", NewSDKClient("https://api.example.com/").BaseURL)
}

func TestLoginAndRefresh(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"status":401,"message":"Invalid user credentials","success":false,"errors":[]}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":200,"success":true,"message":"ok","data":{"user":{"id":"u1","username":"ana"},"accessToken":"a1","refreshToken":"r1"}}`)
	})
	mux.HandleFunc("POST /api/v1/users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "r1", req.RefreshToken)
		_, _ = io.WriteString(w, `{"status":200,"success":true,"message":"ok","data":{"accessToken":"a2","refreshToken":"r2"}}`)
	})
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer a2", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"status":200,"success":true,"message":"ok","data":{"id":"u1","username":"ana"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)

	_, err := client.Login(t.Context(), LoginRequest{Username: "ana", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid user credentials", apiErr.Message)

	session, err := client.Login(t.Context(), LoginRequest{Username: "ana", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "u1", session.User().ID)
	require.Equal(t, "a1", session.AccessToken())

	require.NoError(t, session.Refresh(t.Context()))
	require.Equal(t, "a2", session.AccessToken())
	require.Equal(t, "r2", session.RefreshToken())

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ana", me.Username)
}

func TestRegisterSendsMultipart(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "ana", r.FormValue("username"))

		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "me.png", hdr.Filename)

		_, _, err = r.FormFile("coverImage")
		require.ErrorIs(t, err, http.ErrMissingFile)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":201,"success":true,"message":"User registered successfully","data":{"id":"u1","username":"ana"}}`)
	}))
	t.Cleanup(srv.Close)

	user, err := NewSDKClient(srv.URL).Register(t.Context(), RegisterRequest{
		Fullname: "Ana",
		Email:    "ana@example.com",
		Username: "ana",
		Password: "s3cret",
		Avatar:   &FileUpload{Name: "me.png", Content: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestNonJSONErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).RefreshTokens(t.Context(), "r1")
	require.Equal(t, http.StatusBadGateway, StatusCode(err))
}
