package http

import (
	"net/http"

	"github.com/aussiebroadwan/vidhub/internal/api/service"
	"github.com/aussiebroadwan/vidhub/pkg/httpx"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
	"github.com/aussiebroadwan/vidhub/pkg/vidhubsdk"
)

// RegisterHandler serves POST /api/v1/users/register.
type RegisterHandler struct {
	SessionService *service.SessionService
	MaxBytes       int64
}

// ServeHTTP godoc
//
//	@Summary		Register a user
//	@Description	Creates an account. The avatar is uploaded to object storage before the record is written; nothing is created if an upload fails.
//	@Tags			Users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			fullname	formData	string												true	"Full name"
//	@Param			email		formData	string												true	"Email"
//	@Param			username	formData	string												true	"Username (stored lowercase)"
//	@Param			password	formData	string												true	"Password"
//	@Param			avatar		formData	file												true	"Avatar image"
//	@Param			coverImage	formData	file												false	"Cover image"
//	@Success		201			{object}	httpx.SuccessResponse{data=vidhubsdk.User}	"Registered user"
//	@Failure		400			{object}	httpx.ErrorResponse									"Missing field or avatar"
//	@Failure		409			{object}	httpx.ErrorResponse									"Username or email taken"
//	@Failure		413			{object}	httpx.ErrorResponse									"Body too large"
//	@Failure		500			{object}	httpx.ErrorResponse									"Upload or server error"
//	@Router			/api/v1/users/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.MaxBytes) {
		return
	}
	defer cleanupMultipart(r)

	avatar, closeAvatar, err := formFile(r, "avatar")
	if err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "Invalid avatar file")
		return
	}
	defer closeAvatar()

	cover, closeCover, err := formFile(r, "coverImage")
	if err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "Invalid cover image file")
		return
	}
	defer closeCover()

	profile, err := h.SessionService.Register(r.Context(), service.RegisterInput{
		Fullname:   r.FormValue("fullname"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, toUser(profile), "User registered successfully")
}

// LoginHandler serves POST /api/v1/users/login.
type LoginHandler struct {
	SessionService *service.SessionService
	Cookies        cookieJar
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Verifies the password and starts a session. Tokens are returned in the body and set as HttpOnly cookies. Logging in again invalidates the previous refresh token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		vidhubsdk.LoginRequest										true	"Username or email, and password"
//	@Success		200		{object}	httpx.SuccessResponse{data=vidhubsdk.LoginResponse}	"Profile and token pair"
//	@Failure		400		{object}	httpx.ErrorResponse											"No identifier given"
//	@Failure		401		{object}	httpx.ErrorResponse											"Wrong password"
//	@Failure		404		{object}	httpx.ErrorResponse											"Unknown user"
//	@Header			200		{string}	Set-Cookie													"accessToken, refreshToken"
//	@Router			/api/v1/users/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req vidhubsdk.LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	sess, err := h.SessionService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.set(w, sess.Tokens)
	httpx.WriteSuccess(w, http.StatusOK, vidhubsdk.LoginResponse{
		User:         toUser(sess.User),
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// LogoutHandler serves POST /api/v1/users/logout.
type LogoutHandler struct {
	SessionService *service.SessionService
	Cookies        cookieJar
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Drops the stored refresh token and clears both cookies. The access token stays valid until it expires.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.SuccessResponse	"Logged out"
//	@Failure		401	{object}	httpx.ErrorResponse		"Missing or invalid access token"
//	@Router			/api/v1/users/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	if err := h.SessionService.Logout(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.clear(w)
	httpx.WriteSuccess(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshHandler serves POST /api/v1/users/refresh-token.
type RefreshHandler struct {
	SessionService *service.SessionService
	Cookies        cookieJar
}

// ServeHTTP godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Exchanges a refresh token for a new pair. The token is read from the refreshToken cookie, or from the JSON body when no cookie is sent. A refresh token can be used once.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		vidhubsdk.RefreshRequest									false	"Refresh token when not sent as a cookie"
//	@Success		200		{object}	httpx.SuccessResponse{data=vidhubsdk.TokenResponse}	"New token pair"
//	@Failure		401		{object}	httpx.ErrorResponse											"Missing, invalid, expired or reused token"
//	@Failure		404		{object}	httpx.ErrorResponse											"Account no longer exists"
//	@Header			200		{string}	Set-Cookie													"accessToken, refreshToken"
//	@Router			/api/v1/users/refresh-token [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	presented := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		presented = c.Value
	}

	if presented == "" {
		var req vidhubsdk.RefreshRequest
		if !decodeJSON(w, r, &req, true) {
			return
		}
		presented = req.RefreshToken
	}

	pair, err := h.SessionService.Refresh(r.Context(), presented)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookies.set(w, pair)
	httpx.WriteSuccess(w, http.StatusOK, vidhubsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

// MeHandler serves GET /api/v1/users/me.
type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the authenticated account.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.SuccessResponse{data=vidhubsdk.User}	"Profile"
//	@Failure		401	{object}	httpx.ErrorResponse							"Missing or invalid access token"
//	@Failure		404	{object}	httpx.ErrorResponse							"Account no longer exists"
//	@Router			/api/v1/users/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	profile, err := h.UserService.CurrentUser(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to load user", "user_id", userID, "err", err)
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, toUser(profile), "Current user fetched successfully")
}
