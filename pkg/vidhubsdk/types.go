package vidhubsdk

import (
	"encoding/json"
	"io"
	"time"
)

// ============================================================================
// Envelopes
// ============================================================================

// envelope covers both the success and failure shapes.
type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Errors  []string        `json:"errors"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies /readyz looks at.
type HealthChecks struct {
	Database string `json:"database"`
}

// ============================================================================
// User & Session Types
// ============================================================================

// User is the public profile of an account.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Fullname   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FileUpload is a file sent as a multipart part.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// RegisterRequest is sent as multipart/form-data. Avatar is required by the
// server.
type RegisterRequest struct {
	Fullname   string
	Email      string
	Username   string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// LoginRequest identifies the account by username or email.
type LoginRequest struct {
	Username string `json:"username,omitempty" example:"ana"`
	Email    string `json:"email,omitempty" example:"ana@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest carries the refresh token when no cookie is sent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is the data of a successful refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ============================================================================
// Video Types
// ============================================================================

// Video is a video metadata record.
type Video struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublishVideoRequest is sent as multipart/form-data.
type PublishVideoRequest struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *FileUpload
	Thumbnail   *FileUpload
}
