package auth

import (
	"time"

	"social-calling/internal/pricing"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape. Gender and join date feed
// pricing and withdrawal rules; the backend that signs the token owns them.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Gender    string    `json:"gender,omitempty"`
	JoinedAt  int64     `json:"joined_at,omitempty"` // unix seconds
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// Identity is the verified caller.
type Identity struct {
	UserID   string
	Gender   pricing.Gender
	JoinedAt time.Time
	Role     string
}

func (c Claims) Identity() Identity {
	id := Identity{
		UserID: c.UserID,
		Gender: pricing.ParseGender(c.Gender),
		Role:   c.Role,
	}
	if c.JoinedAt > 0 {
		id.JoinedAt = time.Unix(c.JoinedAt, 0).UTC()
	}
	return id
}
