package auth

import (
	"fmt"
	"time"

	"chat-notify/domain"
	"chat-notify/errors"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chat-notify"

// CustomClaims defines the structure of the data stored inside the JWT.
// The chat server mints these tokens; this hub only verifies them.
type CustomClaims struct {
	UserID int64 `json:"user_id"`
	WsID   int64 `json:"ws_id"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens against a shared secret loaded from
// configuration (never hardcoded; the secret is shared with the chat
// server that issues the tokens).
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a token
// and resolves the connected user.
func (v *Verifier) Verify(tokenString string) (domain.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return v.secret, nil
		})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, errors.ErrInvalidToken
	}
	return domain.UserID(claims.UserID), nil
}

// GenerateToken creates a signed JWT for a specific user. Used by the
// tokengen dev tool and by tests; production tokens come from the chat
// server with the same secret.
func GenerateToken(secret string, userID domain.UserID, wsID int64,
	tokenDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: int64(userID),
		WsID:   wsID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
