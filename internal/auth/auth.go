package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated subject resolved from a session token.
// Role is intentionally not part of the identity: it can change between
// requests and is looked up fresh from the roles store every time.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type Authenticator interface {
	GenerateTokens(userID int64, email string) (string, string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
	ValidateRefreshToken(token string) (*jwt.Token, error)
}
