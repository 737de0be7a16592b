package domain

import (
	"time"
)

// User represents a registered account. The username is the unique identity;
// it is stored lowercased and trimmed so lookups are case-insensitive.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPair holds a freshly minted access and refresh token. This is the
// wire shape returned by register, login, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenTypeBearer is the only token_type this service issues.
const TokenTypeBearer = "bearer"

// NewTokenPair builds a TokenPair with the bearer token type set.
func NewTokenPair(access, refresh string) *TokenPair {
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
	}
}
