package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/naasdev/naas/internal/config"
	ierr "github.com/naasdev/naas/internal/errors"
)

// Claims are the identity carried by a bearer token
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HMAC signed bearer tokens
type TokenService struct {
	secret []byte
}

func NewTokenService(cfg *config.Configuration) *TokenService {
	return &TokenService{secret: []byte(cfg.Auth.Secret)}
}

// GenerateToken signs a token for the user valid for ttl from issuedAt
func (s *TokenService) GenerateToken(userID string, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}
	return token, nil
}

// ValidateToken parses the token and returns its claims
func (s *TokenService) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", t.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid or expired token").
			Mark(ierr.ErrPermissionDenied)
	}

	if !parsed.Valid || claims.UserID == "" {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	return claims, nil
}
