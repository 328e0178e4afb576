// Package auth issues and verifies bearer tokens, hashes passwords and
// carries the caller identity through request contexts.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims: registered claims plus a snapshot of the
// user's display fields taken at login.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Identity converts claims to the identity attached to requests.
func (c *Claims) Identity() models.Identity {
	return models.Identity{
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: c.AvatarURL,
	}
}

// GenerateToken signs an HS256 token for id valid for validityDuration.
func GenerateToken(id models.Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    id.UserID,
		Name:      id.Name,
		Email:     id.Email,
		AvatarURL: id.AvatarURL,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies signature, algorithm and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
