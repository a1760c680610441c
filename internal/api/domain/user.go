package domain

import "time"

// User is the persisted account record. RefreshToken holds the fingerprint of
// the single refresh token currently honoured for the account, or "" when the
// account has no active session.
type User struct {
	ID         string
	Username   string // always lowercase
	Email      string
	Fullname   string
	Avatar     string
	CoverImage string

	PasswordHash string

	RefreshToken          string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is what leaves the process. It never carries the password hash or
// the refresh token.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Fullname   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Fullname:   u.Fullname,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
