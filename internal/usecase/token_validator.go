package usecase

import (
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, string, error)
}

type tokenValidatorImpl struct {
	secret string
}

func NewTokenValidator(cfg config.AuthConfig) TokenValidator {
	return &tokenValidatorImpl{secret: cfg.JWTSecret}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, string, error) {
	claims, err := jwt.ParseToken(t.secret, tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.Role, nil
}
