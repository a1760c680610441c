package domain

import "time"

// TokenPair is a freshly minted access/refresh pair. The expiry fields drive
// cookie lifetimes and are not serialized.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}
